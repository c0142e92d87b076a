package services

import (
	"errors"
	"fmt"

	"hotel-reservation/repositories"
)

var (
	ErrValidation             = errors.New("validation error")
	ErrRoomUnavailable        = errors.New("room unavailable")
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrDiscountInvalid        = errors.New("discount invalid")
	ErrForbidden              = errors.New("forbidden")

	// ErrConflict means the entity lock could not be acquired in time or the
	// write kept losing the version race. Safe to retry.
	ErrConflict = errors.New("concurrent modification")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(entity string, key interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, key)
}

func transitionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidStateTransition, fmt.Sprintf(format, args...))
}

// storeErr maps a repository error onto the service taxonomy.
func storeErr(entity string, key interface{}, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return notFound(entity, key)
	case errors.Is(err, repositories.ErrVersionConflict):
		return fmt.Errorf("%w: %s %v", ErrConflict, entity, key)
	case errors.Is(err, repositories.ErrDuplicate):
		return validationf("%s %v already exists", entity, key)
	default:
		return fmt.Errorf("%s %v: %w", entity, key, err)
	}
}
