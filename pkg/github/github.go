package github

import (
	"context"

	"github.com/google/go-github/v35/github"
	"golang.org/x/oauth2"
)

type Client struct {
	client *github.Client
}

func NewClient(ctx context.Context, token, baseURL, uploadURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	var c *github.Client
	var err error
	if len(baseURL) == 0 || len(uploadURL) == 0 {
		c = github.NewClient(tc)
	} else {
		c, err = github.NewEnterpriseClient(baseURL, uploadURL, tc)
		if err != nil {
			return nil, err
		}
	}
	return &Client{client: c}, nil
}

// GetUserOrOrganization returns the authenticated user when name is empty.
func (c Client) GetUserOrOrganization(ctx context.Context, name string) (*github.User, error) {
	user, _, err := c.client.Users.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ListRepositories pages through every repository of a user or organization.
func (c Client) ListRepositories(ctx context.Context, owner, ownerType string, includeForks bool) ([]*github.Repository, error) {
	options := github.ListOptions{PerPage: 100}
	optUser := &github.RepositoryListOptions{
		Type:        "all",
		ListOptions: options,
	}
	optOrg := &github.RepositoryListByOrgOptions{
		ListOptions: options,
	}

	var allRepos []*github.Repository
	for {
		var (
			repos []*github.Repository
			resp  *github.Response
			err   error
		)
		if ownerType == "User" {
			repos, resp, err = c.client.Repositories.List(ctx, owner, optUser)
		} else {
			repos, resp, err = c.client.Repositories.ListByOrg(ctx, owner, optOrg)
		}
		if err != nil {
			return allRepos, err
		}

		for _, repo := range repos {
			if !repo.GetFork() || includeForks {
				allRepos = append(allRepos, repo)
			}
		}

		if resp.NextPage == 0 {
			break
		}

		if ownerType == "User" {
			optUser.Page = resp.NextPage
		} else {
			optOrg.Page = resp.NextPage
		}
	}
	return allRepos, nil
}

// CloneURLs lists the HTTPS clone URL of every repository of owner.
func (c Client) CloneURLs(ctx context.Context, owner string, includeForks bool) ([]string, error) {
	user, err := c.GetUserOrOrganization(ctx, owner)
	if err != nil {
		return nil, err
	}
	repos, err := c.ListRepositories(ctx, user.GetLogin(), user.GetType(), includeForks)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(repos))
	for _, repo := range repos {
		if url := repo.GetCloneURL(); url != "" {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

func (c Client) RateLimits(ctx context.Context) (*github.RateLimits, error) {
	limits, _, err := c.client.RateLimits(ctx)
	return limits, err
}
