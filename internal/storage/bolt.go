package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/db"
	"github.com/thep200/github-kudos/pkg/log"
	"go.etcd.io/bbolt"
)

const boltBucketKudos = "kudos" // key: userID \x00 zero-padded repoID -> Kudo JSON

type BoltRepository struct {
	Logger  log.Logger
	storage *bbolt.DB
}

func NewBoltRepository(logger log.Logger, path string) (*BoltRepository, error) {
	instance, err := db.OpenBoltPath(path, boltBucketKudos)
	if err != nil {
		return nil, err
	}
	return &BoltRepository{Logger: logger, storage: instance}, nil
}

func userPrefix(userID string) []byte {
	return append([]byte(userID), 0)
}

func kudoKey(userID string, repoID int64) []byte {
	return append(userPrefix(userID), []byte(fmt.Sprintf("%020d", repoID))...)
}

func (r *BoltRepository) Find(ctx context.Context, userID string, repoID int64) (*model.Kudo, error) {
	var kudo *model.Kudo
	err := r.storage.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(boltBucketKudos)).Get(kudoKey(userID, repoID))
		if raw == nil {
			return ErrNotFound
		}
		kudo = &model.Kudo{}
		return json.Unmarshal(raw, kudo)
	})
	if err != nil {
		return nil, err
	}
	return kudo, nil
}

func (r *BoltRepository) FindAll(ctx context.Context, selector Selector) ([]*model.Kudo, error) {
	kudos := []*model.Kudo{}
	err := r.storage.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(boltBucketKudos)).Cursor()

		var prefix []byte
		if selector.UserID != "" {
			prefix = userPrefix(selector.UserID)
		}

		k, v := c.First()
		if prefix != nil {
			k, v = c.Seek(prefix)
		}

		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			kudo := &model.Kudo{}
			if err := json.Unmarshal(v, kudo); err != nil {
				return fmt.Errorf("decode kudo %q: %w", k, err)
			}
			if selector.matches(kudo) {
				kudos = append(kudos, kudo)
			}
		}
		return nil
	})
	if err != nil {
		r.Logger.Error(ctx, "Failed to fetch kudos: %v", err)
		return nil, err
	}
	return kudos, nil
}

func (r *BoltRepository) Create(ctx context.Context, kudos ...*model.Kudo) error {
	now := time.Now().UTC()
	return r.storage.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(boltBucketKudos))
		for _, kudo := range kudos {
			key := kudoKey(kudo.UserID, kudo.RepoID)

			kudo.CreatedAt = now
			if raw := b.Get(key); raw != nil {
				var existing model.Kudo
				if err := json.Unmarshal(raw, &existing); err == nil {
					kudo.CreatedAt = existing.CreatedAt
				}
			}
			kudo.UpdatedAt = now

			if err := putKudo(b, key, kudo); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BoltRepository) Update(ctx context.Context, kudo *model.Kudo) error {
	return r.storage.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(boltBucketKudos))
		key := kudoKey(kudo.UserID, kudo.RepoID)

		raw := b.Get(key)
		if raw == nil {
			return ErrNotFound
		}
		var existing model.Kudo
		if err := json.Unmarshal(raw, &existing); err != nil {
			return err
		}

		kudo.CreatedAt = existing.CreatedAt
		kudo.UpdatedAt = time.Now().UTC()
		return putKudo(b, key, kudo)
	})
}

func (r *BoltRepository) Delete(ctx context.Context, kudo *model.Kudo) error {
	return r.storage.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(boltBucketKudos))
		key := kudoKey(kudo.UserID, kudo.RepoID)
		if b.Get(key) == nil {
			return ErrNotFound
		}
		return b.Delete(key)
	})
}

func (r *BoltRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.storage.View(func(tx *bbolt.Tx) error {
		count = int64(tx.Bucket([]byte(boltBucketKudos)).Stats().KeyN)
		return nil
	})
	return count, err
}

func (r *BoltRepository) Close() error {
	return r.storage.Close()
}

func putKudo(b *bbolt.Bucket, key []byte, kudo *model.Kudo) error {
	data, err := json.Marshal(kudo)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}
