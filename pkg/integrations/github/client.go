package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/protocomposer/pkg/cache"
	"github.com/matzehuels/protocomposer/pkg/integrations"
)

// SourceName identifies this source in cache keys and logs.
const SourceName = "github"

// maxPages bounds pagination; composer/composer has well under 10k tags.
const maxPages = 100

// Client lists repository tags through the GitHub API.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
func NewClient(c cache.Cache, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &Client{
		Client:  integrations.NewClient(c, "", cacheTTL, headers),
		baseURL: "https://api.github.com",
		keyer:   cache.NewDefaultKeyer(),
	}
}

// WithKeyer replaces the keyer used for cache entries.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keyer = k
	}
	return c
}

// ListTags returns every tag name of the repository at repoURL, in the order
// the API reports them. If refresh is true, cached data is bypassed.
func (c *Client) ListTags(ctx context.Context, repoURL string, refresh bool) ([]string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	var tags []string
	err = c.Cached(ctx, c.keyer.TagsKey(SourceName, repoURL), refresh, &tags, func() error {
		fetched, err := c.fetchTags(ctx, owner, repo)
		if err != nil {
			return err
		}
		tags = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) fetchTags(ctx context.Context, owner, repo string) ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=100", c.baseURL, owner, repo)
	tags := []string{}

	for page := 0; url != "" && page < maxPages; page++ {
		var data []tagResponse
		next, err := c.GetPage(ctx, url, &data)
		if err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return nil, fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
			}
			return nil, err
		}
		for _, t := range data {
			tags = append(tags, t.Name)
		}
		url = next
	}
	return tags, nil
}

type tagResponse struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}
