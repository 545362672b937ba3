package common

import (
	"errors"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"gitsummary/pkg/git"
)

// ErrFailed is returned once every record is written if any repository failed.
var ErrFailed = errors.New("one or more repositories failed")

func (rt *Runtime) NewAnalyzer(auth transport.AuthMethod) *git.Analyzer {
	cloner := &git.GitCloner{Auth: auth, InsecureSkipTLS: rt.Config.InsecureSkipTLS}
	resolver := git.NewResolver(cloner, rt.Logger)
	resolver.Timeout = rt.Config.Timeout
	return git.NewAnalyzer(resolver, rt.Logger)
}

// Analyze runs inputs through the analyzer and writes a record per repository.
func (rt *Runtime) Analyze(analyzer *git.Analyzer, inputs []string) error {
	failed := false
	for result := range analyzer.AnalyzeAll(rt.Ctx, inputs, rt.Config.Threads) {
		record := NewRecord(result)
		if record.Failed() {
			failed = true
		}
		if err := record.Write(); err != nil {
			return err
		}
	}
	if err := rt.Ctx.Err(); err != nil {
		return err
	}
	if failed {
		return ErrFailed
	}
	return nil
}
