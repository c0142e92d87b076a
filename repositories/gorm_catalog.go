package repositories

import (
	"context"

	"hotel-reservation/models"

	"gorm.io/gorm"
)

type gormServices struct {
	db *gorm.DB
}

func (r *gormServices) FindByID(ctx context.Context, id uint) (*models.ExtraService, error) {
	var s models.ExtraService
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

func (r *gormServices) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.ExtraService, error) {
	out := make(map[uint]models.ExtraService, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []models.ExtraService
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

func (r *gormServices) FindAll(ctx context.Context, onlyActive bool) ([]models.ExtraService, error) {
	var list []models.ExtraService
	db := r.db.WithContext(ctx)
	if onlyActive {
		db = db.Where("active = ?", true)
	}
	err := db.Order("id ASC").Find(&list).Error
	return list, translateError(err)
}

func (r *gormServices) Save(ctx context.Context, s *models.ExtraService) error {
	return translateError(r.db.WithContext(ctx).Save(s).Error)
}

type gormAudit struct {
	db *gorm.DB
}

func (r *gormAudit) Create(ctx context.Context, entry *models.AuditLog) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *gormAudit) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var list []models.AuditLog
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&list).Error
	return list, translateError(err)
}

type gormNotifications struct {
	db *gorm.DB
}

func (r *gormNotifications) Create(ctx context.Context, n *models.Notification) error {
	return translateError(r.db.WithContext(ctx).Create(n).Error)
}

func (r *gormNotifications) Recent(ctx context.Context, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&list).Error
	return list, translateError(err)
}
