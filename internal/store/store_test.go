package store

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/log"
)

type fakeAPI struct {
	mu      sync.Mutex
	kudos   []model.Kudo
	err     error
	delay   time.Duration
	creates int
	deletes int
	updates int

	// listing and release, when set, hold GetKudos inside the call.
	listing chan struct{}
	release chan struct{}
}

func (f *fakeAPI) GetKudos(ctx context.Context) ([]model.Kudo, error) {
	if f.listing != nil {
		close(f.listing)
		<-f.release
	}
	return f.kudos, f.err
}

func (f *fakeAPI) CreateKudo(ctx context.Context, repo model.Repository) (model.Kudo, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Kudo{}, f.err
	}
	f.creates++
	return *model.KudoFor("user-1", repo), nil
}

func (f *fakeAPI) UpdateKudo(ctx context.Context, kudo model.Kudo) (model.Kudo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Kudo{}, f.err
	}
	f.updates++
	return kudo, nil
}

func (f *fakeAPI) DeleteKudo(ctx context.Context, repoID int64) error {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deletes++
	return nil
}

type fakeSearcher struct {
	result *model.SearchResult
	err    error
	query  string
}

func (f *fakeSearcher) GetJSONRepos(ctx context.Context, query string) (*model.SearchResult, error) {
	f.query = query
	return f.result, f.err
}

func newTestStore(t *testing.T, api *fakeAPI, searcher *fakeSearcher) *Store {
	t.Helper()

	logger, err := log.NewLogrusLoggerTo(io.Discard, "debug")
	require.NoError(t, err)

	if searcher == nil {
		searcher = &fakeSearcher{}
	}
	return NewStore(logger, api, searcher)
}

func TestStore_InitiallyEmpty(t *testing.T) {
	s := newTestStore(t, &fakeAPI{}, nil)

	require.Empty(t, s.Repos())
	require.Equal(t, 0, s.Kudos().Len())
	require.Empty(t, s.AllKudos())
	require.False(t, s.IsKudo(1))
}

func TestStore_ResetReposKeepsOrder(t *testing.T) {
	s := newTestStore(t, &fakeAPI{}, nil)
	r1 := model.Repository{ID: 2, Name: "second"}
	r2 := model.Repository{ID: 1, Name: "first"}

	s.ResetRepos([]model.Repository{r1, r2})

	require.Equal(t, []model.Repository{r1, r2}, s.Repos())
}

func TestStore_ToggleFromAbsent(t *testing.T) {
	api := &fakeAPI{}
	s := newTestStore(t, api, nil)

	present, err := s.ToggleKudo(context.Background(), model.Repository{ID: 5, Name: "x"})
	require.NoError(t, err)
	require.True(t, present)

	require.True(t, s.IsKudo(5))
	all := s.AllKudos()
	require.Len(t, all, 1)
	require.Equal(t, int64(5), all[0].RepoID)
	require.Equal(t, 1, api.creates)
}

func TestStore_ToggleFromPresent(t *testing.T) {
	api := &fakeAPI{}
	s := newTestStore(t, api, nil)
	s.ResetKudos(NewKudoSet(model.Kudo{RepoID: 5}))

	present, err := s.ToggleKudo(context.Background(), model.Repository{ID: 5})
	require.NoError(t, err)
	require.False(t, present)

	require.False(t, s.IsKudo(5))
	require.Empty(t, s.AllKudos())
	require.Equal(t, 1, api.deletes)
}

func TestStore_ToggleFailureLeavesState(t *testing.T) {
	api := &fakeAPI{err: errors.New("network down")}
	s := newTestStore(t, api, nil)
	s.ResetKudos(NewKudoSet(model.Kudo{RepoID: 1}))

	_, err := s.ToggleKudo(context.Background(), model.Repository{ID: 2})
	require.Error(t, err)
	require.False(t, s.IsKudo(2))

	_, err = s.ToggleKudo(context.Background(), model.Repository{ID: 1})
	require.ErrorIs(t, err, api.err)
	require.True(t, s.IsKudo(1))
}

func TestStore_UpdateKudo(t *testing.T) {
	api := &fakeAPI{}
	s := newTestStore(t, api, nil)
	s.ResetKudos(NewKudoSet(model.Kudo{RepoID: 3, Notes: "old"}, model.Kudo{RepoID: 4}))

	require.NoError(t, s.UpdateKudo(context.Background(), model.Kudo{RepoID: 3, Notes: "new"}))

	kudo, ok := s.Kudos().Get(3)
	require.True(t, ok)
	require.Equal(t, "new", kudo.Notes)
	require.Equal(t, 2, s.Kudos().Len())
}

func TestStore_UpdateKudoFailureLeavesState(t *testing.T) {
	api := &fakeAPI{err: errors.New("500")}
	s := newTestStore(t, api, nil)
	before := NewKudoSet(model.Kudo{RepoID: 3, Notes: "old"})
	s.ResetKudos(before)

	err := s.UpdateKudo(context.Background(), model.Kudo{RepoID: 3, Notes: "new"})
	require.ErrorIs(t, err, api.err)

	require.Equal(t, before.Map(), s.Kudos().Map())
}

func TestStore_GetKudosLastWins(t *testing.T) {
	api := &fakeAPI{kudos: []model.Kudo{
		{RepoID: 1, Notes: "first"},
		{RepoID: 2},
		{RepoID: 1, Notes: "last"},
	}}
	s := newTestStore(t, api, nil)

	require.NoError(t, s.GetKudos(context.Background()))

	require.Equal(t, 2, s.Kudos().Len())
	kudo, _ := s.Kudos().Get(1)
	require.Equal(t, "last", kudo.Notes)
}

func TestStore_GetKudosFailure(t *testing.T) {
	api := &fakeAPI{err: errors.New("unauthorized")}
	s := newTestStore(t, api, nil)
	s.ResetKudos(NewKudoSet(model.Kudo{RepoID: 8}))

	require.Error(t, s.GetKudos(context.Background()))
	require.True(t, s.IsKudo(8))
}

func TestStore_GetKudosDoesNotUndoConcurrentToggle(t *testing.T) {
	api := &fakeAPI{listing: make(chan struct{}), release: make(chan struct{})}
	s := newTestStore(t, api, nil)

	loaded := make(chan error, 1)
	go func() { loaded <- s.GetKudos(context.Background()) }()
	<-api.listing

	on, err := s.ToggleKudo(context.Background(), model.Repository{ID: 9})
	require.NoError(t, err)
	require.True(t, on)

	close(api.release)
	require.NoError(t, <-loaded)

	require.Equal(t, 1, api.creates)
	require.True(t, s.IsKudo(9))
}

func TestStore_SearchRepos(t *testing.T) {
	searcher := &fakeSearcher{result: &model.SearchResult{
		TotalCount: 2,
		Items:      []model.Repository{{ID: 10}, {ID: 11}},
	}}
	s := newTestStore(t, &fakeAPI{}, searcher)

	require.NoError(t, s.SearchRepos(context.Background(), "vue+golang"))
	require.Equal(t, "vue+golang", searcher.query)
	require.Len(t, s.Repos(), 2)

	searcher.err = errors.New("422")
	require.Error(t, s.SearchRepos(context.Background(), "bad"))
	require.Len(t, s.Repos(), 2)
}

func TestStore_ConcurrentTogglesSerialize(t *testing.T) {
	api := &fakeAPI{delay: 10 * time.Millisecond}
	s := newTestStore(t, api, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ToggleKudo(context.Background(), model.Repository{ID: 7})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, api.creates)
	require.Equal(t, 1, api.deletes)
	require.False(t, s.IsKudo(7))
	require.Equal(t, 0, s.locks.size())
}

func TestStore_UnrelatedActionsDoNotClobber(t *testing.T) {
	api := &fakeAPI{delay: 5 * time.Millisecond}
	s := newTestStore(t, api, nil)

	var wg sync.WaitGroup
	for id := int64(1); id <= 5; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := s.ToggleKudo(context.Background(), model.Repository{ID: id})
			require.NoError(t, err)
		}(id)
	}
	wg.Wait()

	require.Equal(t, 5, s.Kudos().Len())
}

func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(t, &fakeAPI{}, nil)

	var seen []int
	unsubscribe := s.Subscribe(func(st State) {
		seen = append(seen, st.Kudos.Len())
	})

	s.ResetKudos(NewKudoSet(model.Kudo{RepoID: 1}))
	_, err := s.ToggleKudo(context.Background(), model.Repository{ID: 2})
	require.NoError(t, err)

	unsubscribe()
	s.ResetKudos(NewKudoSet())

	require.Equal(t, []int{1, 2}, seen)
}
