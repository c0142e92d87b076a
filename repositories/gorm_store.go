package repositories

import (
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// NewGormStore wires every repository to the same *gorm.DB.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Rooms:         &gormRooms{db: db},
		Reservations:  &gormReservations{db: db},
		Discounts:     &gormDiscounts{db: db},
		Services:      &gormServices{db: db},
		Audit:         &gormAudit{db: db},
		Notifications: &gormNotifications{db: db},
	}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", ErrDuplicate, myErr.Message)
	}
	if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

// saveVersioned inserts when id is zero, otherwise issues
// UPDATE ... WHERE id = ? AND version = ? and bumps *version on success.
func saveVersioned(db *gorm.DB, entity interface{}, id uint, version *uint) error {
	if id == 0 {
		*version = 1
		return translateError(db.Create(entity).Error)
	}

	old := *version
	*version = old + 1
	res := db.Model(entity).
		Where("version = ?", old).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(entity)
	if res.Error != nil {
		*version = old
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		*version = old
		return ErrVersionConflict
	}
	return nil
}

type statusCount struct {
	Status string
	Total  int64
}
