package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/repositories"
	"hotel-reservation/utils"

	"go.uber.org/zap"
)

type RoomService struct {
	rooms        repositories.RoomRepository
	reservations repositories.ReservationRepository
	locker       Locker
	clock        Clock
	audit        AuditSink
	logger       *zap.SugaredLogger
	lockWait     time.Duration
}

func NewRoomService(
	rooms repositories.RoomRepository,
	reservations repositories.ReservationRepository,
	locker Locker,
	clock Clock,
	audit AuditSink,
	lockWait time.Duration,
	logger *zap.SugaredLogger,
) *RoomService {
	return &RoomService{
		rooms:        rooms,
		reservations: reservations,
		locker:       locker,
		clock:        clock,
		audit:        audit,
		logger:       logger,
		lockWait:     lockWait,
	}
}

// DeriveRoomStatus computes the occupancy a room should report today from
// its reservations. Maintenance is sticky; Cleaning is not and gets replaced.
func DeriveRoomStatus(current models.RoomStatus, reservations []models.Reservation, today time.Time) models.RoomStatus {
	if current == models.RoomMaintenance {
		return models.RoomMaintenance
	}
	for i := range reservations {
		r := &reservations[i]
		if r.Status == models.StatusActive {
			return models.RoomOccupied
		}
		if r.Status == models.StatusPending && r.Covers(today) {
			return models.RoomOccupied
		}
	}
	return models.RoomAvailable
}

// recompute writes the derived status when it differs. The caller holds the room lock.
func (s *RoomService) recompute(ctx context.Context, roomID uint) (bool, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return false, storeErr("room", roomID, err)
	}
	if room.InMaintenance() {
		return false, nil
	}
	list, err := s.reservations.FindByRoom(ctx, roomID)
	if err != nil {
		return false, storeErr("room reservations", roomID, err)
	}
	next := DeriveRoomStatus(room.Status, list, s.clock.Today())
	if next == room.Status {
		return false, nil
	}
	prev := room.Status
	room.Status = next
	if err := s.rooms.Save(ctx, room); err != nil {
		return false, storeErr("room", roomID, err)
	}
	s.logger.Debugw("room status recomputed", "room", room.RoomNumber, "from", prev, "to", next)
	return true, nil
}

// RecomputeStatus takes the room lock and re-derives the room's status.
func (s *RoomService) RecomputeStatus(ctx context.Context, roomID uint) (bool, error) {
	unlock, err := acquire(ctx, s.locker, RoomLockKey(roomID), s.lockWait)
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.recompute(ctx, roomID)
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("room", id, err)
	}
	return room, nil
}

func (s *RoomService) GetAll(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		return nil, storeErr("rooms", "all", err)
	}
	return rooms, nil
}

type RoomInput struct {
	RoomNumber    string  `json:"roomNumber" binding:"required"`
	Type          string  `json:"type" binding:"required"`
	PricePerNight float64 `json:"pricePerNight" binding:"required,gt=0"`
	Description   string  `json:"description"`
}

func (in *RoomInput) normalize() error {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	in.Type = strings.TrimSpace(in.Type)
	if in.RoomNumber == "" {
		return validationf("room number is required")
	}
	if in.Type == "" {
		return validationf("room type is required")
	}
	if in.PricePerNight <= 0 {
		return validationf("price per night must be positive")
	}
	in.PricePerNight = utils.Round2(in.PricePerNight)
	return nil
}

func (s *RoomService) Create(ctx context.Context, actor Actor, in RoomInput) (*models.Room, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.rooms.FindByNumber(ctx, in.RoomNumber); err == nil {
		return nil, validationf("room number %s already exists", in.RoomNumber)
	}
	room := &models.Room{
		RoomNumber:    in.RoomNumber,
		Type:          in.Type,
		PricePerNight: in.PricePerNight,
		Description:   in.Description,
		Status:        models.RoomAvailable,
	}
	if err := s.rooms.Save(ctx, room); err != nil {
		return nil, storeErr("room", in.RoomNumber, err)
	}
	s.audit.Record(actor.String(), "ROOM_CREATE", fmt.Sprintf("room %s created", room.RoomNumber), "Room", room.ID)
	return room, nil
}

// Update edits the room's descriptive fields. A price change is applied to
// every room of the same type.
func (s *RoomService) Update(ctx context.Context, actor Actor, id uint, in RoomInput) (*models.Room, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	unlock, err := acquire(ctx, s.locker, RoomLockKey(id), s.lockWait)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		unlock()
		return nil, storeErr("room", id, err)
	}
	if room.RoomNumber != in.RoomNumber {
		if other, err := s.rooms.FindByNumber(ctx, in.RoomNumber); err == nil && other.ID != id {
			unlock()
			return nil, validationf("room number %s already exists", in.RoomNumber)
		}
	}
	priceChanged := room.PricePerNight != in.PricePerNight
	room.RoomNumber = in.RoomNumber
	room.Type = in.Type
	room.PricePerNight = in.PricePerNight
	room.Description = in.Description
	err = s.rooms.Save(ctx, room)
	unlock()
	if err != nil {
		return nil, storeErr("room", id, err)
	}
	s.audit.Record(actor.String(), "ROOM_UPDATE", fmt.Sprintf("room %s updated", room.RoomNumber), "Room", room.ID)

	if priceChanged {
		s.propagatePrice(ctx, actor, room)
	}
	return room, nil
}

// propagatePrice locks sibling rooms one at a time; failures are logged only.
func (s *RoomService) propagatePrice(ctx context.Context, actor Actor, source *models.Room) {
	siblings, err := s.rooms.FindByType(ctx, source.Type)
	if err != nil {
		s.logger.Warnw("price propagation lookup failed", "type", source.Type, "error", err)
		return
	}
	updated := 0
	for _, sib := range siblings {
		if sib.ID == source.ID || sib.PricePerNight == source.PricePerNight {
			continue
		}
		if err := s.setPrice(ctx, sib.ID, source.PricePerNight); err != nil {
			s.logger.Warnw("price propagation failed", "room", sib.RoomNumber, "error", err)
			continue
		}
		updated++
	}
	if updated > 0 {
		s.audit.Record(actor.String(), "ROOM_PRICE_PROPAGATE",
			fmt.Sprintf("price %.2f applied to %d %s rooms", source.PricePerNight, updated, source.Type), "Room", source.ID)
	}
}

func (s *RoomService) setPrice(ctx context.Context, id uint, price float64) error {
	unlock, err := acquire(ctx, s.locker, RoomLockKey(id), s.lockWait)
	if err != nil {
		return err
	}
	defer unlock()
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return storeErr("room", id, err)
	}
	room.PricePerNight = price
	return storeErr("room", id, s.rooms.Save(ctx, room))
}

// Delete refuses while a live reservation still points at the room.
func (s *RoomService) Delete(ctx context.Context, actor Actor, id uint) error {
	unlock, err := acquire(ctx, s.locker, RoomLockKey(id), s.lockWait)
	if err != nil {
		return err
	}
	defer unlock()

	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return storeErr("room", id, err)
	}
	list, err := s.reservations.FindByRoom(ctx, id)
	if err != nil {
		return storeErr("room reservations", id, err)
	}
	for _, r := range list {
		if r.Status.IsLive() {
			return transitionf("room %s has live reservation %d", room.RoomNumber, r.ID)
		}
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		return storeErr("room", id, err)
	}
	s.audit.Record(actor.String(), "ROOM_DELETE", fmt.Sprintf("room %s deleted", room.RoomNumber), "Room", id)
	return nil
}

// SetMaintenance is the only explicit status write. Leaving maintenance
// re-derives the status from the calendar in the same write.
func (s *RoomService) SetMaintenance(ctx context.Context, actor Actor, id uint, on bool) (*models.Room, error) {
	unlock, err := acquire(ctx, s.locker, RoomLockKey(id), s.lockWait)
	if err != nil {
		return nil, err
	}
	defer unlock()

	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("room", id, err)
	}
	if on == room.InMaintenance() {
		return room, nil
	}

	next := models.RoomMaintenance
	if !on {
		list, err := s.reservations.FindByRoom(ctx, id)
		if err != nil {
			return nil, storeErr("room reservations", id, err)
		}
		next = DeriveRoomStatus(models.RoomAvailable, list, s.clock.Today())
	}
	room.Status = next
	if err := s.rooms.Save(ctx, room); err != nil {
		return nil, storeErr("room", id, err)
	}

	action := "ROOM_MAINTENANCE_ON"
	if !on {
		action = "ROOM_MAINTENANCE_OFF"
	}
	s.audit.Record(actor.String(), action, fmt.Sprintf("room %s is now %s", room.RoomNumber, room.Status), "Room", id)
	return room, nil
}

func (s *RoomService) CountByStatus(ctx context.Context) (map[models.RoomStatus]int64, error) {
	counts, err := s.rooms.CountByStatus(ctx)
	if err != nil {
		return nil, storeErr("rooms", "count", err)
	}
	for _, st := range models.AllRoomStatuses {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

type RoomStats struct {
	Total            int64                       `json:"total"`
	ByStatus         map[models.RoomStatus]int64 `json:"byStatus"`
	OccupancyPercent float64                     `json:"occupancyPercent"`
}

func (s *RoomService) Stats(ctx context.Context) (RoomStats, error) {
	counts, err := s.CountByStatus(ctx)
	if err != nil {
		return RoomStats{}, err
	}
	stats := RoomStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	if stats.Total > 0 {
		stats.OccupancyPercent = utils.Round2(float64(counts[models.RoomOccupied]) * 100 / float64(stats.Total))
	}
	return stats, nil
}
