package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/log"
)

func setupBolt(t *testing.T) *BoltRepository {
	t.Helper()

	logger, err := log.NewLogrusLoggerTo(io.Discard, "info")
	require.NoError(t, err)

	repo, err := NewBoltRepository(logger, filepath.Join(t.TempDir(), "kudos.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestBolt_CreateAndFind(t *testing.T) {
	repo := setupBolt(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Kudo{UserID: "u1", RepoID: 10}))

	kudo, err := repo.Find(ctx, "u1", 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), kudo.RepoID)
	require.False(t, kudo.CreatedAt.IsZero())

	_, err = repo.Find(ctx, "u2", 10)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBolt_CreateUpserts(t *testing.T) {
	repo := setupBolt(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Kudo{UserID: "u1", RepoID: 10}))
	require.NoError(t, repo.Create(ctx, &model.Kudo{UserID: "u1", RepoID: 10, Language: "golang"}))

	kudo, err := repo.Find(ctx, "u1", 10)
	require.NoError(t, err)
	require.Equal(t, "golang", kudo.Language)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestBolt_FindAll(t *testing.T) {
	repo := setupBolt(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx,
		&model.Kudo{UserID: "u1", RepoID: 3, Language: "golang"},
		&model.Kudo{UserID: "u1", RepoID: 1, Language: "golang"},
		&model.Kudo{UserID: "u1", RepoID: 2, Language: "erlang"},
		&model.Kudo{UserID: "u10", RepoID: 4, Language: "golang"},
	))

	tests := []struct {
		name     string
		selector Selector
		want     []int64
	}{
		{name: "all", selector: Selector{}, want: []int64{1, 2, 3, 4}},
		{name: "by user", selector: Selector{UserID: "u1"}, want: []int64{1, 2, 3}},
		{name: "by user and language", selector: Selector{UserID: "u1", Language: "golang"}, want: []int64{1, 3}},
		{name: "by language", selector: Selector{Language: "erlang"}, want: []int64{2}},
		{name: "unknown user", selector: Selector{UserID: "nobody"}, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kudos, err := repo.FindAll(ctx, tt.selector)
			require.NoError(t, err)

			got := make([]int64, 0, len(kudos))
			for _, k := range kudos {
				got = append(got, k.RepoID)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBolt_Update(t *testing.T) {
	repo := setupBolt(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Kudo{UserID: "u1", RepoID: 5}))
	require.NoError(t, repo.Update(ctx, &model.Kudo{UserID: "u1", RepoID: 5, Notes: "nice"}))

	kudo, err := repo.Find(ctx, "u1", 5)
	require.NoError(t, err)
	require.Equal(t, "nice", kudo.Notes)

	require.ErrorIs(t, repo.Update(ctx, &model.Kudo{UserID: "u1", RepoID: 6}), ErrNotFound)
}

func TestBolt_Delete(t *testing.T) {
	repo := setupBolt(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx,
		&model.Kudo{UserID: "u1", RepoID: 1},
		&model.Kudo{UserID: "u1", RepoID: 2},
	))

	require.NoError(t, repo.Delete(ctx, &model.Kudo{UserID: "u1", RepoID: 1}))
	require.ErrorIs(t, repo.Delete(ctx, &model.Kudo{UserID: "u1", RepoID: 1}), ErrNotFound)

	kudos, err := repo.FindAll(ctx, Selector{})
	require.NoError(t, err)
	require.Len(t, kudos, 1)
	require.Equal(t, int64(2), kudos[0].RepoID)
}

func TestNew_Drivers(t *testing.T) {
	logger, err := log.NewLogrusLoggerTo(io.Discard, "info")
	require.NoError(t, err)

	config := cfg.Defaults()
	config.Bolt.Path = filepath.Join(t.TempDir(), "factory.bolt")

	repo, err := New(config, logger)
	require.NoError(t, err)
	require.IsType(t, &BoltRepository{}, repo)
	require.NoError(t, repo.Close())

	config.Storage.Driver = "mysql"
	repo, err = New(config, logger)
	require.NoError(t, err)
	require.IsType(t, &MysqlRepository{}, repo)

	config.Storage.Driver = "mongo"
	_, err = New(config, logger)
	require.Error(t, err)
}
