package github

type options struct {
	Owner     *string
	Token     *string
	Rate      *bool
	Forks     *bool
	BaseURL   *string
	UploadURL *string
}
