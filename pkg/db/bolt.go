package db

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// OpenBoltPath opens the bolt file at path and makes sure every bucket exists.
func OpenBoltPath(path string, buckets ...string) (*bbolt.DB, error) {
	instance, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return instance, nil
}
