package repositories

import (
	"context"
	"strings"

	"hotel-reservation/models"

	"gorm.io/gorm"
)

type gormDiscounts struct {
	db *gorm.DB
}

func (r *gormDiscounts) FindByID(ctx context.Context, id uint) (*models.Discount, error) {
	var d models.Discount
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &d, nil
}

func (r *gormDiscounts) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	var d models.Discount
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&d).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &d, nil
}

func (r *gormDiscounts) FindAll(ctx context.Context) ([]models.Discount, error) {
	var list []models.Discount
	err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error
	return list, translateError(err)
}

func (r *gormDiscounts) Save(ctx context.Context, d *models.Discount) error {
	return saveVersioned(r.db.WithContext(ctx), d, d.ID, &d.Version)
}

// IncrementUsage relies on the conditional UPDATE so concurrent callers on
// different instances can never push uses_current past uses_max.
func (r *gormDiscounts) IncrementUsage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id = ? AND uses_current < uses_max", id).
		Updates(map[string]interface{}{
			"uses_current": gorm.Expr("uses_current + 1"),
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrUsageExhausted
	}
	return nil
}

func (r *gormDiscounts) ReleaseUsage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id = ? AND uses_current > 0", id).
		Updates(map[string]interface{}{
			"uses_current": gorm.Expr("uses_current - 1"),
			"version":      gorm.Expr("version + 1"),
		})
	return translateError(res.Error)
}
