package github

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitsummary/cmd/common"
	"gitsummary/pkg/git"
	"gitsummary/pkg/github"
)

func NewCommand(rt *common.Runtime) *cobra.Command {
	var opts options
	githubCmd := &cobra.Command{
		Use:     "github",
		Short:   "Summarize every repository of a GitHub user or organization",
		Aliases: []string{"gh"},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rt.Close()
			return githubMain(rt, opts)
		},
	}

	flags := githubCmd.Flags()
	flags.SortFlags = false
	opts.Owner = flags.String("owner", "", "GitHub user or organization")
	opts.Token = flags.StringP("token", "t", "", "GitHub authentication token (required)")
	opts.Rate = flags.Bool("rate", false, "Rate limits of the current token")
	opts.Forks = flags.Bool("forks", false, "Include forked repositories")
	opts.BaseURL = flags.String("baseurl", "https://api.github.com/", "GitHub Base API URL")
	opts.UploadURL = flags.String("uploadurl", "https://uploads.github.com/", "GitHub Upload API URL")
	flags.Int("threads", 4, "Concurrent analyses")
	flags.Duration("timeout", 0, "Clone timeout (default 10m)")
	flags.Bool("insecure", false, "Skip TLS verification when cloning")

	return githubCmd
}

func (o options) validate() error {
	if *o.Token == "" {
		return errors.New("specify -t/--token")
	}
	if *o.Owner == "" && !*o.Rate {
		return errors.New("specify --owner or --rate")
	}
	return nil
}

func githubMain(rt *common.Runtime, opts options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	client, err := github.NewClient(rt.Ctx, *opts.Token, *opts.BaseURL, *opts.UploadURL)
	if err != nil {
		return fmt.Errorf("invalid client: (%s)", err)
	}

	if *opts.Rate {
		limits, err := client.RateLimits(rt.Ctx)
		if err != nil {
			return err
		}
		return common.PrintJSON(common.Out(), limits)
	}

	currentUser, err := client.GetUserOrOrganization(rt.Ctx, "")
	if err != nil {
		return fmt.Errorf("invalid token: (%s)", err)
	}

	urls, err := client.CloneURLs(rt.Ctx, *opts.Owner, *opts.Forks)
	if err != nil {
		return fmt.Errorf("failed to list repositories of '%s': (%s)", *opts.Owner, err)
	}
	rt.Logger.Info("listed repositories", zap.String("owner", *opts.Owner), zap.Int("count", len(urls)))
	if len(urls) == 0 {
		return nil
	}

	auth := git.BasicAuth(currentUser.GetLogin(), *opts.Token)
	return rt.Analyze(rt.NewAnalyzer(auth), urls)
}
