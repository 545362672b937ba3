package analyze

import (
	"errors"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"gitsummary/cmd/common"
	pkggit "gitsummary/pkg/git"
)

// Prompter asks for a value on the terminal.
type Prompter interface {
	Run() (string, error)
}

// NewRepoPrompt asks for a repository path or URL until something non-blank is entered.
func NewRepoPrompt() Prompter {
	return &promptui.Prompt{
		Label:    "Enter the path or URL to the Git repository",
		Validate: validateInput,
	}
}

func newPasswordPrompt() Prompter {
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}",
		Valid:   "{{ . }}",
		Success: "{{ . }}",
		Invalid: "{{ . }}",
	}
	return &promptui.Prompt{
		Label:       "Enter password: ",
		Mask:        '*',
		Templates:   templates,
		HideEntered: true,
	}
}

func validateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("please enter a valid path or URL")
	}
	return nil
}

func NewCommand(rt *common.Runtime) *cobra.Command {
	analyseCmd := &cobra.Command{
		Use:   "analyze [path-or-url...]",
		Short: "Summarize local or remote Git repositories",
		Long: `Summarize Git repositories given as local paths or remote URLs.
Remote repositories are cloned into a temporary directory that is removed
once the analysis finishes. Without arguments the repository is read from
an interactive prompt.`,
		Aliases: []string{"git"},
	}
	Bind(analyseCmd, rt)
	return analyseCmd
}

// Bind registers the analysis flags on cmd and makes it analyze its
// arguments. The root command and the analyze subcommand share it.
func Bind(cmd *cobra.Command, rt *common.Runtime) {
	var opts options
	cmd.Args = cobra.ArbitraryArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defer rt.Close()
		inputs, err := opts.inputs(args, NewRepoPrompt())
		if err != nil {
			return err
		}
		auth, err := opts.auth(rt.Config, newPasswordPrompt())
		if err != nil {
			return err
		}
		return rt.Analyze(rt.NewAnalyzer(auth), inputs)
	}

	flags := cmd.Flags()
	opts.GitRepos = flags.StringSlice("repos", []string{}, "Comma-delimited locations of Git repositories")
	opts.FGitRepos = flags.String("frepos", "", "Newline-delimited locations of Git repositories")
	flags.StringP("username", "u", "", "Git authentication username")
	flags.StringP("token", "t", "", "Git authentication token")
	flags.String("ssh", "", "Path to the Git authentication key")
	opts.PassPrompt = flags.BoolP("pass", "p", false, "Password prompt")
	flags.Bool("insecure", false, "Skip TLS verification when cloning")
	flags.Int("threads", 4, "Concurrent analyses")
	flags.Duration("timeout", 0, "Clone timeout (default 10m)")
	flags.SortFlags = false
}

// inputs merges positional arguments, --repos and --frepos, falling back to
// the prompt when none are given.
func (o options) inputs(args []string, prompt Prompter) ([]string, error) {
	if len(*o.GitRepos) != 0 && *o.FGitRepos != "" {
		return nil, errors.New("specify either --repos or --frepos")
	}

	inputs := append([]string{}, args...)
	inputs = append(inputs, *o.GitRepos...)
	if *o.FGitRepos != "" {
		lines, err := common.ReadFile(*o.FGitRepos)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, lines...)
	}

	var cleaned []string
	for _, input := range inputs {
		if input = strings.TrimSpace(input); input != "" {
			cleaned = append(cleaned, input)
		}
	}
	if len(cleaned) > 0 {
		return cleaned, nil
	}

	input, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	return []string{strings.TrimSpace(input)}, nil
}

func (o options) auth(config *common.Config, prompt Prompter) (transport.AuthMethod, error) {
	token := config.Token
	if config.Username != "" && *o.PassPrompt {
		result, err := prompt.Run()
		if err != nil {
			return nil, err
		}
		token = result
	}

	switch {
	case config.Username != "" && config.SSHKeyPath != "":
		if _, err := os.Stat(config.SSHKeyPath); err != nil {
			return nil, err
		}
		return pkggit.SSHAuth(config.Username, config.SSHKeyPath, token)
	case config.Username != "" && token != "":
		return pkggit.BasicAuth(config.Username, token), nil
	}
	return nil, nil
}
