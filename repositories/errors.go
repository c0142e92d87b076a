package repositories

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned by Save when the stored version no longer
	// matches the one the caller loaded. The caller reloads and retries.
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicate is returned when a unique column (room number, discount code) already exists.
	ErrDuplicate = errors.New("duplicate key")

	// ErrUsageExhausted is returned by IncrementUsage once usesCurrent reached usesMax.
	ErrUsageExhausted = errors.New("discount usage exhausted")
)
