// Package kudosapi is the HTTP client for the kudos backend.
package kudosapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/log"
	"golang.org/x/oauth2"
)

// APIError is returned for any non-2xx answer from the kudos API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client calls the kudos REST API with the configured bearer token.
type Client struct {
	Logger     log.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for kudos_api.base_url.
func NewClient(logger log.Logger, config *cfg.Config) *Client {
	var httpClient *http.Client
	if config.KudosApi.AccessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.KudosApi.AccessToken})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	if config.KudosApi.TimeoutSec > 0 {
		httpClient.Timeout = time.Duration(config.KudosApi.TimeoutSec) * time.Second
	}

	return &Client{
		Logger:     logger,
		baseURL:    strings.TrimRight(config.KudosApi.BaseUrl, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) GetKudos(ctx context.Context) ([]model.Kudo, error) {
	var kudos []model.Kudo
	if err := c.do(ctx, http.MethodGet, "/kudos", nil, &kudos); err != nil {
		return nil, err
	}
	return kudos, nil
}

// CreateKudo persists a kudo for repo and returns the stored record.
func (c *Client) CreateKudo(ctx context.Context, repo model.Repository) (model.Kudo, error) {
	var kudo model.Kudo
	err := c.do(ctx, http.MethodPost, "/kudos", repo, &kudo)
	return kudo, err
}

func (c *Client) UpdateKudo(ctx context.Context, kudo model.Kudo) (model.Kudo, error) {
	var updated model.Kudo
	err := c.do(ctx, http.MethodPut, kudoPath(kudo.RepoID), kudo.Repository(), &updated)
	return updated, err
}

func (c *Client) DeleteKudo(ctx context.Context, repoID int64) error {
	return c.do(ctx, http.MethodDelete, kudoPath(repoID), nil, nil)
}

func kudoPath(repoID int64) string {
	return "/kudos/" + strconv.FormatInt(repoID, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.Logger.Error(ctx, "%s %s failed: %v", method, path, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
