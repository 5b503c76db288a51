package model

import (
	"time"

	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/pkg/db"
	"github.com/thep200/github-kudos/pkg/log"
)

type Model struct {
	Config    *cfg.Config `gorm:"-" json:"-"`
	Logger    log.Logger  `gorm:"-" json:"-"`
	Mysql     *db.Mysql   `gorm:"-" json:"-"`
	ID        uint        `json:"-" gorm:"primaryKey"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
