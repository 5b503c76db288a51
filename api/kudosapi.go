// Package api exposes the kudos client to the CLI: it wires configuration,
// logging, the GitHub search client, the kudos API client and the state store.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/github-kudos/cfg"
	githubapi "github.com/thep200/github-kudos/internal/github_api"
	"github.com/thep200/github-kudos/internal/kudosapi"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/internal/store"
	"github.com/thep200/github-kudos/pkg/log"
)

var ErrNotKudo = errors.New("repository is not a kudo")

// RepoView is a search result annotated with the user's kudo flag.
type RepoView struct {
	model.Repository `yaml:",inline"`
	Kudo             bool `json:"kudo" yaml:"kudo"`
}

type KudosAPI struct {
	config *cfg.Config
	logger log.Logger
	caller *githubapi.Caller
	client *kudosapi.Client
	store  *store.Store
}

func NewKudosAPI() *KudosAPI {
	return &KudosAPI{}
}

// SetLogger replaces the logger Initialize would build from the config.
func (a *KudosAPI) SetLogger(logger log.Logger) {
	a.logger = logger
}

// Initialize loads the configuration and builds every client.
func (a *KudosAPI) Initialize(ctx context.Context, loader cfg.Loader) error {
	config, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return a.InitializeWith(ctx, config)
}

// InitializeWith builds every client from an already loaded configuration.
func (a *KudosAPI) InitializeWith(ctx context.Context, config *cfg.Config) error {
	a.config = config

	var err error

	if a.logger == nil {
		a.logger, err = log.NewLogrusLogger(a.config.App.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
	}

	a.caller, err = githubapi.NewCaller(a.logger, a.config)
	if err != nil {
		a.logger.Error(ctx, "Failed to create GitHub client: %v", err)
		return fmt.Errorf("failed to create github client: %w", err)
	}

	a.client = kudosapi.NewClient(a.logger, a.config)
	a.store = store.NewStore(a.logger, a.client, a.caller)
	a.store.Subscribe(func(st store.State) {
		a.logger.Debug(ctx, "State changed: %d repos, %d kudos", len(st.Repos), st.Kudos.Len())
	})

	a.logger.Debug(ctx, "Kudos client initialized against %s", a.config.KudosApi.BaseUrl)
	return nil
}

func (a *KudosAPI) Config() *cfg.Config {
	return a.config
}

func (a *KudosAPI) Store() *store.Store {
	return a.store
}

// Search runs a free-text repository search and marks the user's kudos.
func (a *KudosAPI) Search(ctx context.Context, query string) ([]RepoView, error) {
	if err := a.store.GetKudos(ctx); err != nil {
		return nil, err
	}
	if err := a.store.SearchRepos(ctx, githubapi.EncodeQuery(query)); err != nil {
		return nil, err
	}

	repos := a.store.Repos()
	views := make([]RepoView, 0, len(repos))
	for _, repo := range repos {
		views = append(views, RepoView{Repository: repo, Kudo: a.store.IsKudo(repo.ID)})
	}
	return views, nil
}

// Kudos reloads and returns the user's kudos ordered by repository id.
func (a *KudosAPI) Kudos(ctx context.Context) ([]model.Kudo, error) {
	if err := a.store.GetKudos(ctx); err != nil {
		return nil, err
	}
	return a.store.AllKudos(), nil
}

// Toggle flips the kudo for the repository with repoID and reports whether it
// is a kudo afterwards.
func (a *KudosAPI) Toggle(ctx context.Context, repoID int64) (bool, error) {
	if err := a.store.GetKudos(ctx); err != nil {
		return false, err
	}

	repo, err := a.lookup(ctx, repoID)
	if err != nil {
		return false, err
	}
	return a.store.ToggleKudo(ctx, repo)
}

// lookup prefers the last search result and the stored kudo before asking
// GitHub.
func (a *KudosAPI) lookup(ctx context.Context, repoID int64) (model.Repository, error) {
	for _, repo := range a.store.Repos() {
		if repo.ID == repoID {
			return repo, nil
		}
	}
	if kudo, ok := a.store.Kudos().Get(repoID); ok {
		return kudo.Repository(), nil
	}

	repo, err := a.caller.GetRepo(ctx, repoID)
	if err != nil {
		return model.Repository{}, fmt.Errorf("fetch repository %d: %w", repoID, err)
	}
	return *repo, nil
}

// Note sets the notes of an existing kudo.
func (a *KudosAPI) Note(ctx context.Context, repoID int64, notes string) (model.Kudo, error) {
	if err := a.store.GetKudos(ctx); err != nil {
		return model.Kudo{}, err
	}

	kudo, ok := a.store.Kudos().Get(repoID)
	if !ok {
		return model.Kudo{}, fmt.Errorf("%w: %d", ErrNotKudo, repoID)
	}

	kudo.Notes = notes
	if err := a.store.UpdateKudo(ctx, kudo); err != nil {
		return model.Kudo{}, err
	}
	return kudo, nil
}
