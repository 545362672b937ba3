package git

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

type testCommit struct {
	author string
	files  map[string]string
}

// scenarioCommits is alice twice, bob once, five files across nested directories.
var scenarioCommits = []testCommit{
	{author: "alice", files: map[string]string{"README.md": "hello", "go.mod": "module x"}},
	{author: "bob", files: map[string]string{"cmd/main.go": "package main", "pkg/a/a.go": "package a"}},
	{author: "alice", files: map[string]string{"pkg/a/b/b.go": "package b"}},
}

func newMemoryRepo(t *testing.T) (*git.Repository, *memory.Storage, billy.Filesystem) {
	t.Helper()
	storer := memory.NewStorage()
	fs := memfs.New()
	repo, err := git.Init(storer, fs)
	require.NoError(t, err)
	setHeadBranch(t, repo, "main")
	return repo, storer, fs
}

func newDiskRepo(t *testing.T, dir string) (*git.Repository, billy.Filesystem) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	setHeadBranch(t, repo, "main")
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	return repo, worktree.Filesystem
}

func setHeadBranch(t *testing.T, repo *git.Repository, branch string) {
	t.Helper()
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	require.NoError(t, repo.Storer.SetReference(head))
}

func commitAll(t *testing.T, repo *git.Repository, fs billy.Filesystem, commits []testCommit) []plumbing.Hash {
	t.Helper()
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	var hashes []plumbing.Hash
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range commits {
		for path, content := range c.files {
			require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
			_, err := worktree.Add(path)
			require.NoError(t, err)
		}
		signature := &object.Signature{
			Name:  c.author,
			Email: c.author + "@example.com",
			When:  when.Add(time.Duration(i) * time.Hour),
		}
		hash, err := worktree.Commit("commit", &git.CommitOptions{
			Author:            signature,
			Committer:         signature,
			AllowEmptyCommits: true,
		})
		require.NoError(t, err)
		hashes = append(hashes, hash)
	}
	return hashes
}

func createBranch(t *testing.T, repo *git.Repository, name string, hash plumbing.Hash) {
	t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	require.NoError(t, repo.Storer.SetReference(ref))
}

func deleteObject(storer *memory.Storage, hash plumbing.Hash) {
	delete(storer.ObjectStorage.Objects, hash)
	delete(storer.ObjectStorage.Commits, hash)
	delete(storer.ObjectStorage.Trees, hash)
}

// storeObject encodes obj into the repository storage and returns its hash.
func storeObject(t *testing.T, storer *memory.Storage, obj interface {
	Encode(plumbing.EncodedObject) error
}) plumbing.Hash {
	t.Helper()
	encoded := storer.NewEncodedObject()
	require.NoError(t, obj.Encode(encoded))
	hash, err := storer.SetEncodedObject(encoded)
	require.NoError(t, err)
	return hash
}
