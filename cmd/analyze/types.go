package analyze

type options struct {
	GitRepos   *[]string
	FGitRepos  *string
	PassPrompt *bool
}
