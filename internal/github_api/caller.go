// Package githubapi talks to the GitHub REST API: repository search with a raw
// query string and single repository lookups.
package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v82/github"
	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/limiter"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/log"
	"golang.org/x/oauth2"
)

const searchPath = "/search/repositories"

type Caller struct {
	Logger      log.Logger
	Config      *cfg.Config
	httpClient  *http.Client
	gh          *github.Client
	rateLimiter *limiter.RateLimiter
}

func NewCaller(logger log.Logger, config *cfg.Config) (*Caller, error) {
	httpClient := newHTTPClient(config.GithubApi.AccessToken, config.GithubApi.TimeoutSec)

	gh := github.NewClient(httpClient)
	base, err := apiBaseURL(config.GithubApi.ApiUrl)
	if err != nil {
		return nil, err
	}
	gh.BaseURL = base

	return &Caller{
		Logger:      logger,
		Config:      config,
		httpClient:  httpClient,
		gh:          gh,
		rateLimiter: limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond),
	}, nil
}

func newHTTPClient(token string, timeoutSec int) *http.Client {
	var client *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = oauth2.NewClient(context.Background(), ts)
	} else {
		client = &http.Client{}
	}
	if timeoutSec > 0 {
		client.Timeout = time.Duration(timeoutSec) * time.Second
	}
	return client
}

// apiBaseURL derives the REST root from the configured search endpoint.
func apiBaseURL(searchURL string) (*url.URL, error) {
	root := strings.TrimSuffix(strings.TrimRight(searchURL, "/"), searchPath)
	base, err := url.Parse(root + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid github api url %q: %w", searchURL, err)
	}
	return base, nil
}

// EncodeQuery escapes a free-text query for GetJSONRepos.
func EncodeQuery(query string) string {
	return url.QueryEscape(query)
}

// GetJSONRepos searches repositories. The query is appended to the URL as is,
// so callers must encode it first.
func (c *Caller) GetJSONRepos(ctx context.Context, query string) (*model.SearchResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	fullUrl := c.Config.GithubApi.ApiUrl + "?q=" + query
	c.Logger.Debug(ctx, "Calling GitHub API: %s", fullUrl)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		c.Logger.Error(ctx, "Cannot build request: %v", err)
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.Logger.Error(ctx, "Cannot send request: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	c.Logger.Debug(ctx, "Rate limit remaining: %s", resp.Header.Get("X-RateLimit-Remaining"))

	if err := github.CheckResponse(resp); err != nil {
		c.logRateLimit(ctx, err)
		return nil, err
	}

	result := &model.SearchResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	c.Logger.Info(ctx, "Total repositories found: %d, items received: %d", result.TotalCount, len(result.Items))
	return result, nil
}

// GetRepo fetches a single repository by its numeric id.
func (c *Caller) GetRepo(ctx context.Context, id int64) (*model.Repository, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	repo, _, err := c.gh.Repositories.GetByID(ctx, id)
	if err != nil {
		c.logRateLimit(ctx, err)
		return nil, err
	}

	out := FromGithub(repo)
	return &out, nil
}

// logRateLimit reports when GitHub will accept requests again.
func (c *Caller) logRateLimit(ctx context.Context, err error) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		resetTime := rateErr.Rate.Reset.Time
		waitTime := time.Until(resetTime)
		if waitTime < 0 {
			waitTime = time.Duration(c.Config.GithubApi.RateLimitResetMin) * time.Minute
		}
		c.Logger.Warn(ctx, "Rate limit hit! Need to wait %v until %v",
			waitTime.Round(time.Second), resetTime.Format(time.RFC3339))
		return
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		c.Logger.Warn(ctx, "Secondary rate limit hit, retry after %v", abuseErr.GetRetryAfter())
		return
	}

	c.Logger.Error(ctx, "GitHub API error: %v", err)
}

// FromGithub converts a go-github repository to the client model.
func FromGithub(repo *github.Repository) model.Repository {
	return model.Repository{
		ID:              repo.GetID(),
		Name:            repo.GetName(),
		FullName:        repo.GetFullName(),
		HTMLURL:         repo.GetHTMLURL(),
		Description:     repo.GetDescription(),
		Language:        repo.GetLanguage(),
		StargazersCount: int64(repo.GetStargazersCount()),
		Owner: model.Owner{
			Login: repo.GetOwner().GetLogin(),
			ID:    repo.GetOwner().GetID(),
		},
	}
}
