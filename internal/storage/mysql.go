package storage

import (
	"context"
	"errors"
	"time"

	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/db"
	"github.com/thep200/github-kudos/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MysqlRepository struct {
	Logger log.Logger
	Mysql  *db.Mysql
}

func NewMysqlRepository(logger log.Logger, mysql *db.Mysql) *MysqlRepository {
	return &MysqlRepository{Logger: logger, Mysql: mysql}
}

func (r *MysqlRepository) conn(ctx context.Context) (*gorm.DB, error) {
	db, err := r.Mysql.Db()
	if err != nil {
		r.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return nil, err
	}
	return db.WithContext(ctx), nil
}

func (r *MysqlRepository) Migrate() error {
	return r.Mysql.Migrate(&model.Kudo{})
}

func (r *MysqlRepository) Find(ctx context.Context, userID string, repoID int64) (*model.Kudo, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var kudo model.Kudo
	err = db.Where("user_id = ? AND repo_id = ?", userID, repoID).First(&kudo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.Logger.Error(ctx, "Failed to find kudo: %v", err)
		return nil, err
	}
	return &kudo, nil
}

func (r *MysqlRepository) FindAll(ctx context.Context, selector Selector) ([]*model.Kudo, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Order("repo_id ASC")
	if selector.UserID != "" {
		query = query.Where("user_id = ?", selector.UserID)
	}
	if selector.Language != "" {
		query = query.Where("language = ?", selector.Language)
	}

	kudos := []*model.Kudo{}
	if err := query.Find(&kudos).Error; err != nil {
		r.Logger.Error(ctx, "Failed to fetch kudos: %v", err)
		return nil, err
	}
	return kudos, nil
}

func (r *MysqlRepository) Create(ctx context.Context, kudos ...*model.Kudo) error {
	if len(kudos) == 0 {
		return nil
	}

	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, kudo := range kudos {
		kudo.CreatedAt = now
		kudo.UpdatedAt = now
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "repo_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"repo_name", "repo_url", "language", "description", "notes", "updated_at"}),
		}).Create(kudos).Error
	})
}

func (r *MysqlRepository) Update(ctx context.Context, kudo *model.Kudo) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	kudo.UpdatedAt = time.Now()
	result := db.Model(&model.Kudo{}).
		Where("user_id = ? AND repo_id = ?", kudo.UserID, kudo.RepoID).
		Updates(map[string]interface{}{
			"repo_name":   kudo.RepoName,
			"repo_url":    kudo.RepoURL,
			"language":    kudo.Language,
			"description": kudo.Description,
			"notes":       kudo.Notes,
			"updated_at":  kudo.UpdatedAt,
		})
	if result.Error != nil {
		r.Logger.Error(ctx, "Failed to update kudo: %v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MysqlRepository) Delete(ctx context.Context, kudo *model.Kudo) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Where("user_id = ? AND repo_id = ?", kudo.UserID, kudo.RepoID).Delete(&model.Kudo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MysqlRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	err = db.Model(&model.Kudo{}).Count(&count).Error
	return count, err
}

func (r *MysqlRepository) Close() error {
	return r.Mysql.Close()
}
