package git

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Workspace is an openable repository location. A temporary workspace owns
// its directory and removes it on Close; a local one never touches disk.
type Workspace struct {
	Source Source
	Path   string

	fs        billy.Filesystem
	dir       string
	closeOnce sync.Once
	closeErr  error
}

func localWorkspace(source Source) *Workspace {
	return &Workspace{Source: source, Path: source.Location}
}

// newTempWorkspace creates a fresh uniquely named directory under root.
func newTempWorkspace(root string, source Source) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	fs := osfs.New(root)
	dir, err := util.TempDir(fs, ".", tempDirPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkspace, err)
	}
	return &Workspace{
		Source: source,
		Path:   filepath.Join(root, dir),
		fs:     fs,
		dir:    dir,
	}, nil
}

func (w *Workspace) IsTemporary() bool {
	return w.fs != nil
}

// Close removes the temporary directory and everything in it. It is safe to
// call more than once.
func (w *Workspace) Close() error {
	if !w.IsTemporary() {
		return nil
	}
	w.closeOnce.Do(func() {
		w.closeErr = util.RemoveAll(w.fs, w.dir)
	})
	return w.closeErr
}
