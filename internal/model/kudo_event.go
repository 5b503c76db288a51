package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/pkg/db"
	"github.com/thep200/github-kudos/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	KudoCreated = "kudo.created"
	KudoUpdated = "kudo.updated"
	KudoDeleted = "kudo.deleted"
)

// KudoMessage is the kudo lifecycle event sent to Kafka. The event type is
// also used as the message key.
type KudoMessage struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Kudo       Kudo      `json:"kudo"`
	OccurredAt time.Time `json:"occurred_at"`
}

// KudoEvent is the persisted audit row for a KudoMessage.
type KudoEvent struct {
	Model
	EventID    string    `json:"event_id" gorm:"column:event_id;type:varchar(64);uniqueIndex;not null"`
	Type       string    `json:"type" gorm:"column:type;type:varchar(32);not null"`
	UserID     string    `json:"user_id" gorm:"column:user_id;type:varchar(255);index"`
	RepoID     int64     `json:"repo_id" gorm:"column:repo_id;index"`
	Payload    string    `json:"payload" gorm:"column:payload;type:text"`
	OccurredAt time.Time `json:"occurred_at" gorm:"column:occurred_at"`
}

func NewKudoEvent(config *cfg.Config, logger log.Logger, db *db.Mysql) (*KudoEvent, error) {
	event := &KudoEvent{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return event, nil
}

func (e *KudoEvent) TableName() string {
	return "kudo_events"
}

// CreateBatch stores messages in one transaction. Redelivered events are
// ignored by event id.
func (e *KudoEvent) CreateBatch(messages []KudoMessage) error {
	db, err := e.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	events, err := EventsFromMessages(messages)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).CreateInBatches(events, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch create kudo events: %w", result.Error)
		}

		return nil
	})
}

// EventsFromMessages turns Kafka messages into audit rows.
func EventsFromMessages(messages []KudoMessage) ([]KudoEvent, error) {
	events := make([]KudoEvent, 0, len(messages))
	now := time.Now()

	for _, msg := range messages {
		payload, err := json.Marshal(msg.Kudo)
		if err != nil {
			return nil, fmt.Errorf("failed to encode kudo payload: %w", err)
		}

		events = append(events, KudoEvent{
			Model:      Model{CreatedAt: now, UpdatedAt: now},
			EventID:    msg.EventID,
			Type:       msg.Type,
			UserID:     TruncateString(msg.UserID, 255),
			RepoID:     msg.Kudo.RepoID,
			Payload:    string(payload),
			OccurredAt: msg.OccurredAt,
		})
	}

	return events, nil
}
