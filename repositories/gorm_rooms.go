package repositories

import (
	"context"

	"hotel-reservation/models"

	"gorm.io/gorm"
)

type gormRooms struct {
	db *gorm.DB
}

func (r *gormRooms) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &room, nil
}

func (r *gormRooms) FindAll(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rooms).Error
	return rooms, translateError(err)
}

func (r *gormRooms) FindByNumber(ctx context.Context, number string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Where("room_number = ?", number).First(&room).Error; err != nil {
		return nil, translateError(err)
	}
	return &room, nil
}

func (r *gormRooms) FindByType(ctx context.Context, roomType string) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).Where("type = ?", roomType).Order("id ASC").Find(&rooms).Error
	return rooms, translateError(err)
}

func (r *gormRooms) Save(ctx context.Context, room *models.Room) error {
	return saveVersioned(r.db.WithContext(ctx), room, room.ID, &room.Version)
}

// Delete removes the row for good so the room number can be reused.
func (r *gormRooms) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&models.Room{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRooms) CountByStatus(ctx context.Context) (map[models.RoomStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make(map[models.RoomStatus]int64, len(rows))
	for _, row := range rows {
		out[models.RoomStatus(row.Status)] = row.Total
	}
	return out, nil
}
