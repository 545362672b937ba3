package analyze

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitsummary/cmd/common"
)

type fakePrompt struct {
	answer string
	err    error
	calls  int
}

func (p *fakePrompt) Run() (string, error) {
	p.calls++
	return p.answer, p.err
}

func newOptions(repos []string, frepos string, pass bool) options {
	return options{GitRepos: &repos, FGitRepos: &frepos, PassPrompt: &pass}
}

func TestInputsFromArgsAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repos.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://example.com/c.git\n"), 0o600))
	prompt := &fakePrompt{}

	inputs, err := newOptions(nil, path, false).inputs([]string{" /srv/a ", ""}, prompt)
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/a", "https://example.com/c.git"}, inputs)

	inputs, err = newOptions([]string{"https://example.com/b.git"}, "", false).inputs(nil, prompt)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/b.git"}, inputs)
	assert.Zero(t, prompt.calls)
}

func TestInputsRejectsBothRepoFlags(t *testing.T) {
	_, err := newOptions([]string{"a"}, "file", false).inputs(nil, &fakePrompt{})
	assert.Error(t, err)
}

func TestInputsFallsBackToPrompt(t *testing.T) {
	prompt := &fakePrompt{answer: "  https://example.com/a.git "}

	inputs, err := newOptions(nil, "", false).inputs(nil, prompt)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a.git"}, inputs)
	assert.Equal(t, 1, prompt.calls)

	aborted := errors.New("^C")
	_, err = newOptions(nil, "", false).inputs(nil, &fakePrompt{err: aborted})
	assert.ErrorIs(t, err, aborted)
}

func TestValidateInput(t *testing.T) {
	assert.Error(t, validateInput(""))
	assert.Error(t, validateInput("   "))
	assert.NoError(t, validateInput("."))
}

func TestAuth(t *testing.T) {
	auth, err := newOptions(nil, "", false).auth(&common.Config{}, &fakePrompt{})
	require.NoError(t, err)
	assert.Nil(t, auth)

	auth, err = newOptions(nil, "", false).auth(&common.Config{Username: "u", Token: "t"}, &fakePrompt{})
	require.NoError(t, err)
	require.NotNil(t, auth)
	assert.Equal(t, "http-basic-auth", auth.Name())

	prompt := &fakePrompt{answer: "secret"}
	auth, err = newOptions(nil, "", true).auth(&common.Config{Username: "u"}, prompt)
	require.NoError(t, err)
	require.NotNil(t, auth)
	assert.Equal(t, 1, prompt.calls)

	_, err = newOptions(nil, "", false).auth(&common.Config{Username: "u", SSHKeyPath: filepath.Join(t.TempDir(), "id_missing")}, &fakePrompt{})
	assert.Error(t, err)
}
