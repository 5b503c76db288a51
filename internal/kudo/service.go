// Package kudo implements the server-side kudo operations for one user.
package kudo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/internal/storage"
	"github.com/thep200/github-kudos/pkg/log"
)

// Publisher receives kudo lifecycle events.
type Publisher interface {
	PublishKudo(ctx context.Context, msg model.KudoMessage) error
}

// NopPublisher drops every event. It is used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishKudo(context.Context, model.KudoMessage) error { return nil }

type Service struct {
	userID    string
	repo      storage.Repository
	publisher Publisher
	logger    log.Logger
}

func NewService(repo storage.Repository, publisher Publisher, logger log.Logger, userID string) Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return Service{
		userID:    userID,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s Service) GetKudos(ctx context.Context) ([]*model.Kudo, error) {
	return s.GetKudosIn(ctx, "")
}

// GetKudosIn lists the user's kudos for one language. An empty language
// matches all.
func (s Service) GetKudosIn(ctx context.Context, language string) ([]*model.Kudo, error) {
	return s.repo.FindAll(ctx, storage.Selector{UserID: s.userID, Language: language})
}

// CreateKudoFor stores a kudo for githubRepo, replacing any previous one.
func (s Service) CreateKudoFor(ctx context.Context, githubRepo model.Repository) (*model.Kudo, error) {
	kudo := model.KudoFor(s.userID, githubRepo)
	if err := s.repo.Create(ctx, kudo); err != nil {
		return nil, err
	}
	s.publish(ctx, model.KudoCreated, kudo)
	return kudo, nil
}

// UpdateKudoWith overwrites an existing kudo. storage.ErrNotFound is returned
// when the user has no kudo for the repository.
func (s Service) UpdateKudoWith(ctx context.Context, githubRepo model.Repository) (*model.Kudo, error) {
	kudo := model.KudoFor(s.userID, githubRepo)
	if err := s.repo.Update(ctx, kudo); err != nil {
		return nil, err
	}
	s.publish(ctx, model.KudoUpdated, kudo)
	return kudo, nil
}

// RemoveKudo deletes the user's kudo for githubRepo and returns the stored
// record, so the deleted event carries the full snapshot even when only the id
// is known. storage.ErrNotFound is returned when there is nothing to delete.
func (s Service) RemoveKudo(ctx context.Context, githubRepo model.Repository) (*model.Kudo, error) {
	kudo, err := s.repo.Find(ctx, s.userID, githubRepo.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, kudo); err != nil {
		return nil, err
	}
	s.publish(ctx, model.KudoDeleted, kudo)
	return kudo, nil
}

// publish never fails the request: the write already happened.
func (s Service) publish(ctx context.Context, eventType string, kudo *model.Kudo) {
	msg := model.KudoMessage{
		EventID:    uuid.NewString(),
		Type:       eventType,
		UserID:     s.userID,
		Kudo:       *kudo,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishKudo(ctx, msg); err != nil {
		s.logger.Warn(ctx, "Failed to publish %s for repo %d: %v", eventType, kudo.RepoID, err)
	}
}
