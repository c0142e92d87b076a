package repositories

import (
	"context"
	"time"

	"hotel-reservation/models"
)

// Save on every store inserts when ID is zero. Otherwise it updates only if
// the stored Version equals the entity's Version, then bumps Version in place.

type RoomRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindAll(ctx context.Context) ([]models.Room, error)
	FindByNumber(ctx context.Context, number string) (*models.Room, error)
	FindByType(ctx context.Context, roomType string) ([]models.Room, error)
	Save(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[models.RoomStatus]int64, error)
}

type ReservationRepository interface {
	FindAll(ctx context.Context) ([]models.Reservation, error)
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByRoom(ctx context.Context, roomID uint) ([]models.Reservation, error)
	FindByClient(ctx context.Context, clientID uint) ([]models.Reservation, error)
	// FindByPeriod returns reservations whose [start, end] intersects [from, to].
	FindByPeriod(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
	FindByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error)
	Save(ctx context.Context, r *models.Reservation) error
	DeleteByID(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error)
}

type DiscountRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Discount, error)
	FindByCode(ctx context.Context, code string) (*models.Discount, error)
	FindAll(ctx context.Context) ([]models.Discount, error)
	Save(ctx context.Context, d *models.Discount) error
	// IncrementUsage adds one use only while usesCurrent < usesMax.
	IncrementUsage(ctx context.Context, id uint) error
	// ReleaseUsage undoes an IncrementUsage whose reservation write failed.
	ReleaseUsage(ctx context.Context, id uint) error
}

type ServiceRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ExtraService, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]models.ExtraService, error)
	FindAll(ctx context.Context, onlyActive bool) ([]models.ExtraService, error)
	Save(ctx context.Context, s *models.ExtraService) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	Recent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Recent(ctx context.Context, limit int) ([]models.Notification, error)
}

// Store bundles every repository a running instance needs.
type Store struct {
	Rooms         RoomRepository
	Reservations  ReservationRepository
	Discounts     DiscountRepository
	Services      ServiceRepository
	Audit         AuditRepository
	Notifications NotificationRepository
}
