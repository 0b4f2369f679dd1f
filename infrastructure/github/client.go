// Package github wraps the GitHub API for repository metadata probes.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gh "github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// RepositoryInfo is the metadata the submission flow cares about.
type RepositoryInfo struct {
	Name    string
	Private bool
}

// Client is a thin wrapper over the GitHub API client.
type Client struct {
	api    *gh.Client
	logger *slog.Logger
}

// NewClient creates a Client. An empty token yields an unauthenticated
// client limited to public repositories.
func NewClient(token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	var api *gh.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		api = gh.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		api = gh.NewClient(nil)
	}

	return &Client{api: api, logger: logger}
}

// GetRepositoryInfo fetches name and visibility for an owner/repo pair.
func (c *Client) GetRepositoryInfo(ctx context.Context, owner, repo string) (RepositoryInfo, error) {
	r, _, err := c.api.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return RepositoryInfo{}, fmt.Errorf("get repository %s/%s: %w", owner, repo, err)
	}
	return RepositoryInfo{
		Name:    r.GetName(),
		Private: r.GetPrivate(),
	}, nil
}

// ParseOwnerRepo extracts the owner and repository name from a GitHub
// URL. The second return is false for URLs not pointing at github.com.
func ParseOwnerRepo(url string) (owner, repo string, ok bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(url), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	const host = "github.com"
	idx := strings.Index(trimmed, host)
	if idx < 0 {
		return "", "", false
	}

	path := strings.Trim(trimmed[idx+len(host):], ":/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
