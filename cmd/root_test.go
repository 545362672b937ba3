package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitsummary/cmd/common"
)

func initRepo(t *testing.T, dir string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, util.WriteFile(worktree.Filesystem, "docs/README.md", []byte("hi"), 0o644))
	_, err = worktree.Add("docs/README.md")
	require.NoError(t, err)
	signature := &object.Signature{Name: "dana", Email: "dana@example.com", When: time.Now()}
	_, err = worktree.Commit("init", &git.CommitOptions{Author: signature, Committer: signature})
	require.NoError(t, err)
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, NewCommand(), args...)
}

func execute(t *testing.T, rootCmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	out := filepath.Join(t.TempDir(), "out.jsonl")
	t.Cleanup(func() { _ = common.CloseOutput() })

	rootCmd.SetArgs(append(args, "--format", "json", "--output", out))
	err := rootCmd.Execute()
	return out, err
}

func readRecords(t *testing.T, path string) []common.Record {
	t.Helper()
	lines, err := common.ReadFile(path)
	require.NoError(t, err)
	records := make([]common.Record, 0, len(lines))
	for _, line := range lines {
		var record common.Record
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func TestAnalyzeCommand(t *testing.T) {
	repoDir := t.TempDir()
	initRepo(t, repoDir)

	out, err := runCommand(t, "analyze", repoDir)
	require.NoError(t, err)

	lines, err := common.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	var record common.Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, repoDir, record.Repository)
	assert.NotEmpty(t, record.RunID)
	require.NotNil(t, record.Report)
	assert.Equal(t, 1, record.Report.CommitCount)
	assert.Equal(t, 1, record.Report.FileCount)
	assert.Equal(t, 1, record.Report.Contributors["dana"])
	assert.Len(t, record.Report.Branches, 1)
}

func TestAnalyzeCommandReportsFailures(t *testing.T) {
	good := t.TempDir()
	initRepo(t, good)
	notRepo := t.TempDir()

	out, err := runCommand(t, "analyze", "--repos", good+","+notRepo)
	assert.ErrorIs(t, err, common.ErrFailed)
	assert.Same(t, os.Stdout, common.Out(), "output file left open after a failed run")

	lines, err := common.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	failures := 0
	for _, line := range lines {
		var record common.Record
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		if record.Failed() {
			failures++
			assert.Equal(t, notRepo, record.Repository)
			assert.Equal(t, "open", record.Error[0].Stage)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestGithubCommandRequiresToken(t *testing.T) {
	_, err := runCommand(t, "github", "--owner", "someone")
	assert.EqualError(t, err, "specify -t/--token")
}

func TestRootCommandAnalyzesArguments(t *testing.T) {
	repoDir := t.TempDir()
	initRepo(t, repoDir)

	out, err := runCommand(t, repoDir)
	require.NoError(t, err)
	assert.Same(t, os.Stdout, common.Out())

	records := readRecords(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, repoDir, records[0].Repository)
	require.NotNil(t, records[0].Report)
	assert.Equal(t, 1, records[0].Report.CommitCount)
	assert.Equal(t, 1, records[0].Report.FileCount)
}

func TestRootCommandAcceptsAnalyzeFlags(t *testing.T) {
	good := t.TempDir()
	initRepo(t, good)

	out, err := runCommand(t, "--repos", good, "--threads", "1")
	require.NoError(t, err)
	assert.Len(t, readRecords(t, out), 1)
}

func TestCommandsDoNotShareConfigFile(t *testing.T) {
	repoDir := t.TempDir()
	initRepo(t, repoDir)
	first, second := NewCommand(), NewCommand()

	_, err := execute(t, first, repoDir, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	out, err := execute(t, second, repoDir)
	require.NoError(t, err)
	assert.Len(t, readRecords(t, out), 1)
}
