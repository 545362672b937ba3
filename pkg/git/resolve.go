package git

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"go.uber.org/zap"
)

// ParseSource treats anything that exists on the local filesystem as a local
// repository and everything else as a remote locator.
func ParseSource(input string) Source {
	if _, err := os.Stat(input); err == nil {
		return Source{Kind: SourceLocal, Location: input}
	}
	return Source{Kind: SourceRemote, Location: input}
}

// Cloner materializes a remote repository into an existing empty directory.
type Cloner interface {
	Clone(ctx context.Context, dir, url string) error
}

// GitCloner clones with go-git. The clone is bare: only the object database
// and references are needed for analysis.
type GitCloner struct {
	Auth            transport.AuthMethod
	InsecureSkipTLS bool
}

func (c *GitCloner) Clone(ctx context.Context, dir, url string) error {
	_, err := git.PlainCloneContext(ctx, dir, true, &git.CloneOptions{
		URL:             url,
		RemoteName:      remoteName,
		InsecureSkipTLS: c.InsecureSkipTLS,
		Auth:            c.Auth,
	})
	return err
}

func SSHAuth(username, privateKeyFile, password string) (transport.AuthMethod, error) {
	keys, err := ssh.NewPublicKeysFromFile(username, privateKeyFile, password)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func BasicAuth(username, password string) transport.AuthMethod {
	return &githttp.BasicAuth{
		Username: username,
		Password: password,
	}
}

type Resolver struct {
	Cloner Cloner
	// TempRoot is where temporary clones are created; empty means os.TempDir().
	TempRoot string
	// Timeout bounds a single clone when positive.
	Timeout time.Duration
	Logger  *zap.Logger
}

func NewResolver(cloner Cloner, logger *zap.Logger) *Resolver {
	if cloner == nil {
		cloner = &GitCloner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{Cloner: cloner, Logger: logger}
}

// Resolve returns a workspace for input. Local paths are used in place and the
// cloner is never called for them. Remote locators are cloned into a new
// temporary directory which the caller must Close. On failure nothing is left
// on disk.
func (r *Resolver) Resolve(ctx context.Context, input string) (*Workspace, error) {
	logger := r.logger()
	source := ParseSource(input)
	if source.Kind == SourceLocal {
		logger.Debug("using local repository", zap.String("path", input))
		return localWorkspace(source), nil
	}

	ws, err := newTempWorkspace(r.TempRoot, source)
	if err != nil {
		return nil, &ResolutionError{Input: input, Err: err}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	logger.Info("cloning remote repository", zap.String("url", input), zap.String("dir", ws.Path))
	start := time.Now()
	if err := r.cloner().Clone(ctx, ws.Path, input); err != nil {
		if cerr := ws.Close(); cerr != nil {
			logger.Warn("failed to remove temporary workspace", zap.String("dir", ws.Path), zap.Error(cerr))
		}
		return nil, &ResolutionError{Input: input, Err: fmt.Errorf("%w: %w", ErrClone, err)}
	}
	logger.Info("cloned remote repository", zap.String("url", input), zap.Duration("took", time.Since(start)))

	return ws, nil
}

func (r *Resolver) cloner() Cloner {
	if r.Cloner == nil {
		return &GitCloner{}
	}
	return r.Cloner
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
