package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gitsummary/cmd/analyze"
	"gitsummary/cmd/common"
	"gitsummary/cmd/github"

	"github.com/spf13/cobra"
)

var ErrCmd error = errors.New("errCmd")

// NewCommand builds the command tree. The root analyzes its arguments the
// same way the analyze subcommand does.
func NewCommand() *cobra.Command {
	rt := &common.Runtime{Ctx: context.Background()}
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "gitsummary [path-or-url...]",
		Short: "Gitsummary summarizes Git repositories: branches, commits per author and tracked files.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config, err := common.LoadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := common.SetOutput(config.Output, common.Format(config.Format)); err != nil {
				return err
			}
			logger, err := common.NewLogger(config.LogLevel, config.LogFormat)
			if err != nil {
				_ = common.CloseOutput()
				return err
			}

			rt.Config = config
			rt.Logger = logger
			rt.Start(cmd.Context())
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceErrors:     true,
		SilenceUsage:      true,
	}
	analyze.Bind(rootCmd, rt)

	rootCmd.Flags().SortFlags = false
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default .gitsummary.yaml in . or $HOME)")
	flags.StringP("output", "o", "", "Output file")
	flags.StringP("format", "f", string(common.FormatTable), "Output format: table or json")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.String("log-format", "console", "Log format: console or structured")

	rootCmd.AddCommand(analyze.NewCommand(rt))
	rootCmd.AddCommand(github.NewCommand(rt))

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.Printf("Error: %s\n", err)
		return ErrCmd
	})

	return rootCmd
}

func Execute() {
	rootCmd := NewCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if err != ErrCmd && err != common.ErrFailed {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
