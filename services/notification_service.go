package services

import (
	"context"

	"hotel-reservation/models"
	"hotel-reservation/repositories"

	"go.uber.org/zap"
)

// NotificationSink publishes staff/client notices. Notify is fire-and-forget.
type NotificationSink interface {
	Notify(title, body, category, audience string)
}

const (
	AudienceStaff  = "STAFF"
	AudienceAdmins = "ADMINS"
)

type NotificationService struct {
	repo     repositories.NotificationRepository
	dispatch *dispatcher[models.Notification]
	clock    Clock
}

func NewNotificationService(repo repositories.NotificationRepository, clock Clock, buffer int, logger *zap.SugaredLogger) *NotificationService {
	s := &NotificationService{repo: repo, clock: clock}
	s.dispatch = newDispatcher("notification", buffer, func(ctx context.Context, n models.Notification) error {
		return repo.Create(ctx, &n)
	}, logger)
	return s
}

func (s *NotificationService) Notify(title, body, category, audience string) {
	s.dispatch.submit(models.Notification{
		Title:     title,
		Body:      body,
		Category:  category,
		Audience:  audience,
		CreatedAt: s.clock.Now(),
	})
}

func (s *NotificationService) Recent(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.Recent(ctx, limit)
}

func (s *NotificationService) Close(ctx context.Context) error {
	return s.dispatch.close(ctx)
}
