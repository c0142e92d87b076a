package repositories

import (
	"context"
	"time"

	"hotel-reservation/models"

	"gorm.io/gorm"
)

type gormReservations struct {
	db *gorm.DB
}

func (r *gormReservations) find(ctx context.Context, query string, args ...interface{}) ([]models.Reservation, error) {
	var list []models.Reservation
	db := r.db.WithContext(ctx)
	if query != "" {
		db = db.Where(query, args...)
	}
	err := db.Order("id ASC").Find(&list).Error
	return list, translateError(err)
}

func (r *gormReservations) FindAll(ctx context.Context) ([]models.Reservation, error) {
	return r.find(ctx, "")
}

func (r *gormReservations) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &res, nil
}

func (r *gormReservations) FindByRoom(ctx context.Context, roomID uint) ([]models.Reservation, error) {
	return r.find(ctx, "room_id = ?", roomID)
}

func (r *gormReservations) FindByClient(ctx context.Context, clientID uint) ([]models.Reservation, error) {
	return r.find(ctx, "client_id = ?", clientID)
}

func (r *gormReservations) FindByPeriod(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	return r.find(ctx, "start_date <= ? AND end_date >= ?", to, from)
}

func (r *gormReservations) FindByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	return r.find(ctx, "status IN ?", statuses)
}

func (r *gormReservations) Save(ctx context.Context, res *models.Reservation) error {
	return saveVersioned(r.db.WithContext(ctx), res, res.ID, &res.Version)
}

func (r *gormReservations) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Reservation{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormReservations) CountByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make(map[models.ReservationStatus]int64, len(rows))
	for _, row := range rows {
		out[models.ReservationStatus(row.Status)] = row.Total
	}
	return out, nil
}
