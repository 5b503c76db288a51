package githubapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-github/v82/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/pkg/log"
)

func newTestCaller(t *testing.T, handler http.HandlerFunc) *Caller {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	config := cfg.Defaults()
	config.GithubApi.ApiUrl = srv.URL + "/search/repositories"
	config.GithubApi.RequestsPerSecond = 0

	logger, err := log.NewLogrusLoggerTo(io.Discard, "debug")
	require.NoError(t, err)

	caller, err := NewCaller(logger, config)
	require.NoError(t, err)

	return caller
}

func TestCaller_GetJSONRepos(t *testing.T) {
	var rawQuery string
	caller := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		rawQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total_count":2,"incomplete_results":false,"items":[
			{"id":1,"name":"go","full_name":"golang/go","owner":{"login":"golang","id":4314092}},
			{"id":2,"name":"kit","full_name":"go-kit/kit"}]}`)
	})

	result, err := caller.GetJSONRepos(context.Background(), "language:go+stars:>10")
	require.NoError(t, err)

	require.Equal(t, "q=language:go+stars:>10", rawQuery)
	require.Equal(t, 2, result.TotalCount)
	require.Len(t, result.Items, 2)
	require.Equal(t, int64(1), result.Items[0].ID)
	require.Equal(t, "golang", result.Items[0].Owner.Login)
	require.Equal(t, "go-kit/kit", result.Items[1].FullName)
}

func TestCaller_GetJSONRepos_RejectsErrorStatus(t *testing.T) {
	caller := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"Validation Failed"}`)
	})

	_, err := caller.GetJSONRepos(context.Background(), "")
	require.Error(t, err)

	var errResp *github.ErrorResponse
	require.True(t, errors.As(err, &errResp))
	require.Equal(t, http.StatusUnprocessableEntity, errResp.Response.StatusCode)
}

func TestCaller_GetJSONRepos_RateLimited(t *testing.T) {
	caller := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "10")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded for 127.0.0.1."}`)
	})

	_, err := caller.GetJSONRepos(context.Background(), "go")

	var rateErr *github.RateLimitError
	require.True(t, errors.As(err, &rateErr), "got %T: %v", err, err)
}

func TestCaller_GetRepo(t *testing.T) {
	caller := newTestCaller(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repositories/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":42,"name":"repo","full_name":"acme/repo","html_url":"https://github.com/acme/repo",
			"language":"Go","stargazers_count":12,"owner":{"login":"acme","id":9}}`)
	})

	repo, err := caller.GetRepo(context.Background(), 42)
	require.NoError(t, err)

	require.Equal(t, int64(42), repo.ID)
	require.Equal(t, "acme/repo", repo.FullName)
	require.Equal(t, int64(12), repo.StargazersCount)
	require.Equal(t, "acme", repo.Owner.Login)
}

func TestAPIBaseURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "public", input: "https://api.github.com/search/repositories", want: "https://api.github.com/"},
		{name: "trailing slash", input: "https://api.github.com/search/repositories/", want: "https://api.github.com/"},
		{name: "enterprise", input: "https://ghe.local/api/v3/search/repositories", want: "https://ghe.local/api/v3/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := apiBaseURL(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestEncodeQuery(t *testing.T) {
	require.Equal(t, "vue+golang", EncodeQuery("vue golang"))
	require.Equal(t, "a%26b", EncodeQuery("a&b"))
}
