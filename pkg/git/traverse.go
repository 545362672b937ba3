package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// errSkipItem marks a per-item failure: the item is dropped, the traversal goes on.
var errSkipItem = errors.New("item skipped")

// ResolveHead returns the commit HEAD points at, or the zero hash when HEAD is
// unborn.
func ResolveHead(repo *git.Repository) (plumbing.Hash, error) {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, nil
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: resolve HEAD: %w", ErrHistory, err)
	}
	return head.Hash(), nil
}

// Branches yields the short name of every local and remote-tracking branch.
// A reference without a printable name is yielded as an error wrapping
// errSkipItem.
func Branches(repo *git.Repository) (iter.Seq2[string, error], error) {
	refs, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBranches, err)
	}

	return func(yield func(string, error) bool) {
		defer refs.Close()
		_ = refs.ForEach(func(ref *plumbing.Reference) error {
			name := ref.Name()
			if !name.IsBranch() && !name.IsRemote() {
				return nil
			}
			short := name.Short()
			var ok bool
			if short == "" || !utf8.ValidString(string(name)) {
				ok = yield("", fmt.Errorf("%w: branch %q", errSkipItem, string(name)))
			} else {
				ok = yield(short, nil)
			}
			if !ok {
				return storer.ErrStop
			}
			return nil
		})
	}, nil
}

// ListBranches collects Branches, dropping the ones that could not be named.
func ListBranches(repo *git.Repository) ([]string, error) {
	seq, err := Branches(repo)
	if err != nil {
		return nil, err
	}
	branches := []string{}
	for name, err := range seq {
		if err != nil {
			continue
		}
		branches = append(branches, name)
	}
	return branches, nil
}

// Commits visits head and all its ancestors exactly once. A commit that fails
// to load is yielded as an error wrapping errSkipItem and its parents are not
// followed; only a failure to load head itself is fatal.
func Commits(repo *git.Repository, head plumbing.Hash) (iter.Seq2[CommitRecord, error], error) {
	if head.IsZero() {
		return func(func(CommitRecord, error) bool) {}, nil
	}
	first, err := repo.CommitObject(head)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", ErrHistory, head, err)
	}

	return func(yield func(CommitRecord, error) bool) {
		seen := map[plumbing.Hash]struct{}{head: {}}
		stack := []plumbing.Hash{}
		visit := func(c *object.Commit) bool {
			for _, p := range c.ParentHashes {
				if _, ok := seen[p]; !ok {
					seen[p] = struct{}{}
					stack = append(stack, p)
				}
			}
			return yield(CommitRecord{Hash: c.Hash, Author: authorName(c)}, nil)
		}

		if !visit(first) {
			return
		}
		for len(stack) > 0 {
			h := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			c, err := repo.CommitObject(h)
			if err != nil {
				if !yield(CommitRecord{Hash: h}, fmt.Errorf("%w: commit %s: %w", errSkipItem, h, err)) {
					return
				}
				continue
			}
			if !visit(c) {
				return
			}
		}
	}, nil
}

func authorName(c *object.Commit) string {
	if c.Author.Name == "" {
		return UnknownAuthor
	}
	return c.Author.Name
}

// WalkHistory folds Commits into a commit count and a per-author tally.
func WalkHistory(repo *git.Repository, head plumbing.Hash) (History, error) {
	return walkHistory(context.Background(), repo, head, nil)
}

func walkHistory(ctx context.Context, repo *git.Repository, head plumbing.Hash, skipped func(error)) (History, error) {
	seq, err := Commits(repo, head)
	if err != nil {
		return History{}, err
	}
	history := History{Head: head, Contributors: Tally{}}
	for record, err := range seq {
		if ctx.Err() != nil {
			return History{}, fmt.Errorf("%w: %w", ErrHistory, ctx.Err())
		}
		if err != nil {
			if skipped != nil {
				skipped(err)
			}
			history.Skipped++
			continue
		}
		history.Commits++
		history.Contributors[record.Author]++
	}
	return history, nil
}

// CountFiles counts regular files in the tree of head, recursively.
func CountFiles(repo *git.Repository, head plumbing.Hash) (int, error) {
	if head.IsZero() {
		return 0, nil
	}
	commit, err := repo.CommitObject(head)
	if err != nil {
		return 0, fmt.Errorf("%w: load %s: %w", ErrTree, head, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return 0, fmt.Errorf("%w: load tree %s: %w", ErrTree, commit.TreeHash, err)
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	count := 0
	for {
		_, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrTree, err)
		}
		if isFile(entry.Mode) {
			count++
		}
	}
	return count, nil
}

func isFile(mode filemode.FileMode) bool {
	switch mode {
	case filemode.Regular, filemode.Deprecated, filemode.Executable:
		return true
	}
	return false
}
