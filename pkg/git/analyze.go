package git

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs the three traversals over a resolved repository. Each
// traversal opens its own repository handle.
type Analyzer struct {
	Resolver *Resolver
	Open     func(path string) (*git.Repository, error)
	Logger   *zap.Logger
}

func NewAnalyzer(resolver *Resolver, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = NewResolver(nil, logger)
	}
	return &Analyzer{Resolver: resolver, Open: git.PlainOpen, Logger: logger}
}

// Aggregate builds the report. It copies branches and the tally so the
// report shares nothing with the traversals that produced them.
func Aggregate(path string, branches []string, history History, fileCount int) Report {
	report := Report{
		RepositoryPath: path,
		Branches:       append([]string{}, branches...),
		CommitCount:    history.Commits,
		Contributors:   history.Contributors.clone(),
		FileCount:      fileCount,
	}
	if !history.Head.IsZero() {
		report.Head = history.Head.String()
	}
	return report
}

// AnalyzeInput resolves input, analyzes it and always releases the workspace.
// The report is labelled with input rather than the workspace path, which for
// remote repositories no longer exists once this returns.
func (a *Analyzer) AnalyzeInput(ctx context.Context, input string) (report Report, err error) {
	logger := a.logger().With(zap.String("repository", input))
	ws, err := a.resolver().Resolve(ctx, input)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			logger.Warn("failed to remove temporary workspace", zap.String("dir", ws.Path), zap.Error(cerr))
		} else if ws.IsTemporary() {
			logger.Debug("removed temporary workspace", zap.String("dir", ws.Path))
		}
	}()

	report, err = a.Analyze(ctx, ws.Path)
	if err != nil {
		return Report{}, err
	}
	report.RepositoryPath = input
	return report, nil
}

// Analyze inspects the repository at path. HEAD is resolved once and the
// same commit is handed to the history and tree traversals.
func (a *Analyzer) Analyze(ctx context.Context, path string) (Report, error) {
	logger := a.logger().With(zap.String("path", path))

	repo, err := a.open(path)
	if err != nil {
		return Report{}, err
	}
	head, err := ResolveHead(repo)
	if err != nil {
		return Report{}, err
	}
	if head.IsZero() {
		logger.Debug("HEAD is unborn")
	}

	var (
		branches  []string
		history   History
		fileCount int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := a.open(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBranches, err)
		}
		branches, err = ListBranches(r)
		return err
	})
	g.Go(func() error {
		r, err := a.open(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHistory, err)
		}
		history, err = walkHistory(ctx, r, head, func(err error) {
			logger.Debug("skipping unreadable commit", zap.Error(err))
		})
		return err
	})
	g.Go(func() error {
		r, err := a.open(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTree, err)
		}
		fileCount, err = CountFiles(r, head)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	logger.Debug("analysis finished",
		zap.Int("branches", len(branches)),
		zap.Int("commits", history.Commits),
		zap.Int("skipped_commits", history.Skipped),
		zap.Int("files", fileCount))
	return Aggregate(path, branches, history, fileCount), nil
}

// AnalyzeAll analyzes inputs with at most threads concurrent runs. Each run
// owns its workspace. Results arrive in completion order and the channel is
// closed when all runs are done or ctx is cancelled.
func (a *Analyzer) AnalyzeAll(ctx context.Context, inputs []string, threads int) <-chan Result {
	if threads < 1 {
		threads = 1
	}

	var wg sync.WaitGroup
	wg.Add(threads)

	resultCh := make(chan Result, len(inputs))
	inputCh := make(chan string, len(inputs))

	for i := 0; i < threads; i++ {
		go func() {
			defer wg.Done()
			for input := range inputCh {
				if ctx.Err() != nil {
					return
				}
				runID := uuid.NewString()
				a.logger().Info("analyzing repository", zap.String("run_id", runID), zap.String("repository", input))
				report, err := a.AnalyzeInput(ctx, input)
				resultCh <- Result{Input: input, RunID: runID, Report: report, Error: err}
			}
		}()
	}

	for _, input := range inputs {
		inputCh <- input
	}
	close(inputCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	return resultCh
}

func (a *Analyzer) open(path string) (*git.Repository, error) {
	open := a.Open
	if open == nil {
		open = git.PlainOpen
	}
	repo, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	return repo, nil
}

func (a *Analyzer) resolver() *Resolver {
	if a.Resolver == nil {
		return NewResolver(nil, a.logger())
	}
	return a.Resolver
}

func (a *Analyzer) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
