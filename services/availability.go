package services

import (
	"context"
	"errors"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/repositories"
)

// AvailabilityOracle answers whether a room can take a stay. It never writes;
// callers that act on the answer must hold the room lock while doing so.
type AvailabilityOracle struct {
	rooms        repositories.RoomRepository
	reservations repositories.ReservationRepository
}

func NewAvailabilityOracle(rooms repositories.RoomRepository, reservations repositories.ReservationRepository) *AvailabilityOracle {
	return &AvailabilityOracle{rooms: rooms, reservations: reservations}
}

func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return validationf("start and end dates are required")
	}
	if !end.After(start) {
		return validationf("end date must be after start date")
	}
	return nil
}

// IsAvailable is false for unknown rooms, rooms in maintenance and rooms with
// a live reservation overlapping [start, end] (both days inclusive).
func (o *AvailabilityOracle) IsAvailable(ctx context.Context, roomID uint, start, end time.Time) (bool, error) {
	if err := checkRange(start, end); err != nil {
		return false, err
	}
	room, err := o.rooms.FindByID(ctx, roomID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("room", roomID, err)
	}
	if room.InMaintenance() {
		return false, nil
	}

	existing, err := o.reservations.FindByRoom(ctx, roomID)
	if err != nil {
		return false, storeErr("room reservations", roomID, err)
	}
	return !hasConflict(existing, start, end, 0), nil
}

// ListAvailable returns every room IsAvailable would accept for the range.
func (o *AvailabilityOracle) ListAvailable(ctx context.Context, start, end time.Time) ([]models.Room, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	rooms, err := o.rooms.FindAll(ctx)
	if err != nil {
		return nil, storeErr("rooms", "all", err)
	}
	overlapping, err := o.reservations.FindByPeriod(ctx, start, end)
	if err != nil {
		return nil, storeErr("reservations", "period", err)
	}

	blocked := make(map[uint]bool)
	for _, r := range overlapping {
		if r.Status.IsLive() {
			blocked[r.RoomID] = true
		}
	}

	out := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.InMaintenance() || blocked[room.ID] {
			continue
		}
		out = append(out, room)
	}
	return out, nil
}

// hasConflict reports a live reservation other than skipID overlapping the range.
func hasConflict(existing []models.Reservation, start, end time.Time, skipID uint) bool {
	for i := range existing {
		r := &existing[i]
		if r.ID == skipID || !r.Status.IsLive() {
			continue
		}
		if r.Overlaps(start, end) {
			return true
		}
	}
	return false
}
