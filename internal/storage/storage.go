// Package storage persists kudos on the server side.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/db"
	"github.com/thep200/github-kudos/pkg/log"
)

var ErrNotFound = errors.New("kudo not found")

// Selector narrows FindAll. Zero fields match everything.
type Selector struct {
	UserID   string
	Language string
}

func (s Selector) matches(k *model.Kudo) bool {
	if s.UserID != "" && k.UserID != s.UserID {
		return false
	}
	if s.Language != "" && k.Language != s.Language {
		return false
	}
	return true
}

// Repository is implemented by every kudo backend. Kudos are identified by
// (user id, repository id).
type Repository interface {
	Find(ctx context.Context, userID string, repoID int64) (*model.Kudo, error)
	FindAll(ctx context.Context, selector Selector) ([]*model.Kudo, error)
	// Create upserts, so a user never holds two kudos for one repository.
	Create(ctx context.Context, kudos ...*model.Kudo) error
	Update(ctx context.Context, kudo *model.Kudo) error
	Delete(ctx context.Context, kudo *model.Kudo) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

const (
	DriverMysql = "mysql"
	DriverBolt  = "bolt"
)

// New picks the backend named by storage.driver.
func New(config *cfg.Config, logger log.Logger) (Repository, error) {
	switch config.Storage.Driver {
	case DriverMysql:
		mysql, err := db.NewMysql(config)
		if err != nil {
			return nil, err
		}
		return NewMysqlRepository(logger, mysql), nil
	case DriverBolt, "":
		return NewBoltRepository(logger, config.Bolt.Path)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", config.Storage.Driver)
	}
}
