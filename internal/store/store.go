// Package store holds the client state: the last repository search and the
// user's kudos. Reads go through getters, writes through Commit, and the
// actions call the remote APIs before committing.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/log"
)

// KudosAPI is the remote kudo persistence the actions depend on.
type KudosAPI interface {
	GetKudos(ctx context.Context) ([]model.Kudo, error)
	CreateKudo(ctx context.Context, repo model.Repository) (model.Kudo, error)
	UpdateKudo(ctx context.Context, kudo model.Kudo) (model.Kudo, error)
	DeleteKudo(ctx context.Context, repoID int64) error
}

// RepoSearcher runs a GitHub repository search with a pre-encoded query.
type RepoSearcher interface {
	GetJSONRepos(ctx context.Context, query string) (*model.SearchResult, error)
}

// State is a snapshot of the store. Commits replace whole fields, so a State
// handed out never changes afterwards.
type State struct {
	Repos []model.Repository
	Kudos KudoSet

	// kudosGen is bumped by every commit that replaces Kudos.
	kudosGen uint64
}

// Mutation derives the next state from the current one. It must not block.
type Mutation func(State) State

// Store holds the client State and runs the actions that change it.
type Store struct {
	Logger   log.Logger
	api      KudosAPI
	searcher RepoSearcher

	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int

	locks *keyedMutex
}

// NewStore returns an empty store backed by api and searcher.
func NewStore(logger log.Logger, api KudosAPI, searcher RepoSearcher) *Store {
	return &Store{
		Logger:   logger,
		api:      api,
		searcher: searcher,
		state:    State{Repos: []model.Repository{}, Kudos: NewKudoSet()},
		subs:     make(map[int]func(State)),
		locks:    newKeyedMutex(),
	}
}

// Commit applies m atomically and notifies subscribers with the new state.
func (s *Store) Commit(m Mutation) {
	s.mu.Lock()
	s.state = m(s.state)
	next := s.state
	s.mu.Unlock()

	s.notify(next)
}

// Subscribe registers fn to run after every commit and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// Mutations

func (s *Store) ResetRepos(repos []model.Repository) {
	cp := append([]model.Repository(nil), repos...)
	s.Commit(func(st State) State {
		st.Repos = cp
		return st
	})
}

func (s *Store) ResetKudos(kudos KudoSet) {
	s.Commit(func(st State) State {
		st.Kudos = kudos
		st.kudosGen++
		return st
	})
}

// Getters

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Repos returns the last search result in the order GitHub returned it.
func (s *Store) Repos() []model.Repository {
	return append([]model.Repository(nil), s.State().Repos...)
}

func (s *Store) Kudos() KudoSet {
	return s.State().Kudos
}

func (s *Store) AllKudos() []model.Kudo {
	return s.State().Kudos.Values()
}

func (s *Store) IsKudo(repoID int64) bool {
	return s.State().Kudos.Has(repoID)
}

// Actions

// SearchRepos replaces the repository list with the search result.
func (s *Store) SearchRepos(ctx context.Context, query string) error {
	result, err := s.searcher.GetJSONRepos(ctx, query)
	if err != nil {
		return fmt.Errorf("search repositories: %w", err)
	}

	s.ResetRepos(result.Items)
	return nil
}

// GetKudos reloads every kudo from the API.
func (s *Store) GetKudos(ctx context.Context) error {
	gen := s.State().kudosGen

	kudos, err := s.api.GetKudos(ctx)
	if err != nil {
		return fmt.Errorf("load kudos: %w", err)
	}

	// A kudo commit that landed while the list was in flight is newer than
	// the list, so the stale list is dropped.
	applied := false
	fetched := NewKudoSet(kudos...)
	s.Commit(func(st State) State {
		if st.kudosGen != gen {
			return st
		}
		applied = true
		st.Kudos = fetched
		st.kudosGen++
		return st
	})

	if !applied {
		s.Logger.Debug(ctx, "Discarded %d loaded kudos, state changed during load", len(kudos))
		return nil
	}
	s.Logger.Debug(ctx, "Loaded %d kudos", len(kudos))
	return nil
}

// UpdateKudo saves kudo remotely and, only when that succeeds, stores it
// under its repository id.
func (s *Store) UpdateKudo(ctx context.Context, kudo model.Kudo) error {
	unlock := s.locks.Lock(kudo.RepoID)
	defer unlock()

	if _, err := s.api.UpdateKudo(ctx, kudo); err != nil {
		return fmt.Errorf("update kudo %d: %w", kudo.RepoID, err)
	}

	s.Commit(func(st State) State {
		st.Kudos = st.Kudos.Insert(kudo)
		st.kudosGen++
		return st
	})
	return nil
}

// ToggleKudo creates a kudo for repo when there is none and deletes it
// otherwise. It reports whether the repository is a kudo afterwards. State is
// left alone when the API call fails.
func (s *Store) ToggleKudo(ctx context.Context, repo model.Repository) (bool, error) {
	unlock := s.locks.Lock(repo.ID)
	defer unlock()

	if !s.IsKudo(repo.ID) {
		kudo, err := s.api.CreateKudo(ctx, repo)
		if err != nil {
			return false, fmt.Errorf("create kudo %d: %w", repo.ID, err)
		}

		s.Commit(func(st State) State {
			st.Kudos = st.Kudos.Insert(kudo)
			st.kudosGen++
			return st
		})
		s.Logger.Debug(ctx, "Kudo added for repo %d", repo.ID)
		return true, nil
	}

	if err := s.api.DeleteKudo(ctx, repo.ID); err != nil {
		return true, fmt.Errorf("delete kudo %d: %w", repo.ID, err)
	}

	s.Commit(func(st State) State {
		st.Kudos = st.Kudos.Remove(repo.ID)
		st.kudosGen++
		return st
	})
	s.Logger.Debug(ctx, "Kudo removed for repo %d", repo.ID)
	return false, nil
}
