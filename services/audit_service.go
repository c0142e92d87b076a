package services

import (
	"context"
	"encoding/json"

	"hotel-reservation/models"
	"hotel-reservation/repositories"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// AuditSink records who did what. Record is fire-and-forget.
type AuditSink interface {
	Record(actor, actionType, detail, entityType string, entityID uint)
}

type AuditService struct {
	repo     repositories.AuditRepository
	logger   *zap.SugaredLogger
	dispatch *dispatcher[models.AuditLog]
	clock    Clock
}

func NewAuditService(repo repositories.AuditRepository, clock Clock, buffer int, logger *zap.SugaredLogger) *AuditService {
	s := &AuditService{repo: repo, logger: logger, clock: clock}
	s.dispatch = newDispatcher("audit", buffer, func(ctx context.Context, entry models.AuditLog) error {
		return repo.Create(ctx, &entry)
	}, logger)
	return s
}

func (s *AuditService) Record(actor, actionType, detail, entityType string, entityID uint) {
	s.RecordWithMeta(actor, actionType, detail, entityType, entityID, nil)
}

// RecordWithMeta attaches a JSON document to the entry. A meta value that
// fails to encode is logged and the entry is kept without it.
func (s *AuditService) RecordWithMeta(actor, actionType, detail, entityType string, entityID uint, meta map[string]interface{}) {
	if actor == "" {
		actor = SystemActor.Name
	}
	entry := models.AuditLog{
		Actor:      actor,
		ActionType: actionType,
		Detail:     detail,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  s.clock.Now(),
	}
	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			s.logger.Warnw("audit meta not encodable", "action", actionType, "error", err)
		} else {
			entry.Meta = datatypes.JSON(raw)
		}
	}
	s.dispatch.submit(entry)
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.Recent(ctx, limit)
}

func (s *AuditService) Close(ctx context.Context) error {
	return s.dispatch.close(ctx)
}
