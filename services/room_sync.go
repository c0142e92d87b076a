package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-reservation/metrics"
	"hotel-reservation/models"
	"hotel-reservation/repositories"

	"go.uber.org/zap"
)

const (
	PassHourly = "hourly"
	PassDeep   = "deep"
)

type SyncReport struct {
	Kind         string        `json:"kind"`
	Today        string        `json:"today"`
	Finalized    int           `json:"finalized"`
	Activated    int           `json:"activated"`
	RoomsUpdated int           `json:"roomsUpdated"`
	Failures     int           `json:"failures"`
	Skipped      int           `json:"skipped"`
	Violations   int           `json:"violations"`
	Aborted      bool          `json:"aborted"`
	Duration     time.Duration `json:"duration"`
}

// Writes is the number of entities the pass changed.
func (r SyncReport) Writes() int {
	return r.Finalized + r.Activated + r.RoomsUpdated
}

// metaRecorder is implemented by sinks that can keep a structured payload.
type metaRecorder interface {
	RecordWithMeta(actor, actionType, detail, entityType string, entityID uint, meta map[string]interface{})
}

// RoomSynchronizer advances reservations by date and re-derives room status.
// It takes the same room locks as the request path, so a pass never
// overwrites a concurrent check-in or check-out.
type RoomSynchronizer struct {
	rooms        repositories.RoomRepository
	reservations repositories.ReservationRepository
	roomSvc      *RoomService
	locker       Locker
	clock        Clock
	audit        AuditSink
	lockWait     time.Duration
	logger       *zap.SugaredLogger
}

func NewRoomSynchronizer(
	rooms repositories.RoomRepository,
	reservations repositories.ReservationRepository,
	roomSvc *RoomService,
	locker Locker,
	clock Clock,
	audit AuditSink,
	lockWait time.Duration,
	logger *zap.SugaredLogger,
) *RoomSynchronizer {
	return &RoomSynchronizer{
		rooms:        rooms,
		reservations: reservations,
		roomSvc:      roomSvc,
		locker:       locker,
		clock:        clock,
		audit:        audit,
		lockWait:     lockWait,
		logger:       logger,
	}
}

// RunPass finalizes expired stays, activates started ones and re-derives
// every room not in maintenance. Errors stay inside the report.
func (s *RoomSynchronizer) RunPass(ctx context.Context) SyncReport {
	return s.run(ctx, PassHourly)
}

// DeepPass is RunPass followed by a calendar consistency audit.
func (s *RoomSynchronizer) DeepPass(ctx context.Context) SyncReport {
	report := s.run(ctx, PassDeep)
	if report.Aborted {
		return report
	}
	report.Violations = s.auditCalendar(ctx)

	meta := map[string]interface{}{
		"finalized":    report.Finalized,
		"activated":    report.Activated,
		"roomsUpdated": report.RoomsUpdated,
		"failures":     report.Failures,
		"skipped":      report.Skipped,
		"violations":   report.Violations,
	}
	detail := fmt.Sprintf("deep sync for %s: %d writes, %d failures, %d violations",
		report.Today, report.Writes(), report.Failures, report.Violations)
	if mr, ok := s.audit.(metaRecorder); ok {
		mr.RecordWithMeta(SystemActor.Name, "SYNC_DEEP_PASS", detail, "System", 0, meta)
	} else {
		s.audit.Record(SystemActor.Name, "SYNC_DEEP_PASS", detail, "System", 0)
	}
	return report
}

func (s *RoomSynchronizer) run(ctx context.Context, kind string) SyncReport {
	started := time.Now()
	today := s.clock.Today()
	report := SyncReport{Kind: kind, Today: today.Format("2006-01-02")}

	defer func() {
		report.Duration = time.Since(started)
		metrics.SyncPasses.WithLabelValues(kind).Inc()
		metrics.SyncPassDuration.WithLabelValues(kind).Observe(report.Duration.Seconds())
		s.logger.Infow("sync pass finished",
			"kind", kind,
			"today", report.Today,
			"finalized", report.Finalized,
			"activated", report.Activated,
			"roomsUpdated", report.RoomsUpdated,
			"failures", report.Failures,
			"skipped", report.Skipped,
			"aborted", report.Aborted,
			"duration", report.Duration)
	}()

	// 1. Pending/Active stays whose last day is behind us.
	expired, err := s.reservations.FindByStatus(ctx, models.StatusPending, models.StatusActive)
	if err != nil {
		s.logger.Errorw("sync: listing live reservations failed", "error", err)
		report.Failures++
	}
	for _, r := range expired {
		if s.stop(ctx, &report) {
			return report
		}
		if !r.EndDate.Before(today) {
			continue
		}
		s.step(&report, "reservation", r.ID, &report.Finalized, func() (bool, error) {
			return s.advance(ctx, r.ID, r.RoomID, func(cur *models.Reservation) bool {
				if !cur.Status.In(models.StatusPending, models.StatusActive) || !cur.EndDate.Before(today) {
					return false
				}
				cur.Status = models.StatusFinalized
				return true
			})
		})
	}

	// 2. Pending stays whose first day has come.
	pending, err := s.reservations.FindByStatus(ctx, models.StatusPending)
	if err != nil {
		s.logger.Errorw("sync: listing pending reservations failed", "error", err)
		report.Failures++
	}
	for _, r := range pending {
		if s.stop(ctx, &report) {
			return report
		}
		if r.StartDate.After(today) || r.EndDate.Before(today) {
			continue
		}
		s.step(&report, "reservation", r.ID, &report.Activated, func() (bool, error) {
			return s.advance(ctx, r.ID, r.RoomID, func(cur *models.Reservation) bool {
				if cur.Status != models.StatusPending || cur.StartDate.After(today) || cur.EndDate.Before(today) {
					return false
				}
				cur.Status = models.StatusActive
				return true
			})
		})
	}

	// 3. Every room outside maintenance, written only when the status changes.
	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		s.logger.Errorw("sync: listing rooms failed", "error", err)
		report.Failures++
	}
	for _, room := range rooms {
		if s.stop(ctx, &report) {
			return report
		}
		if room.InMaintenance() {
			continue
		}
		id := room.ID
		s.step(&report, "room", id, &report.RoomsUpdated, func() (bool, error) {
			return s.roomSvc.RecomputeStatus(ctx, id)
		})
	}

	s.refreshGauges(ctx, kind)
	return report
}

func (s *RoomSynchronizer) stop(ctx context.Context, report *SyncReport) bool {
	if ctx.Err() == nil {
		return false
	}
	if !report.Aborted {
		report.Aborted = true
		s.logger.Warnw("sync pass stopped early", "kind", report.Kind, "error", ctx.Err())
	}
	return true
}

// step runs one entity update in isolation: a panic or error is logged and
// counted, and the pass moves on.
func (s *RoomSynchronizer) step(report *SyncReport, entity string, id uint, counter *int, fn func() (bool, error)) {
	changed, err := func() (changed bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()

	switch {
	case err == nil:
		if changed {
			*counter++
			metrics.SyncWrites.WithLabelValues(entity).Inc()
		}
	case errors.Is(err, ErrConflict):
		report.Skipped++
		s.logger.Infow("sync: entity busy, leaving it for the next pass", "entity", entity, "id", id, "error", err)
	default:
		report.Failures++
		metrics.SyncFailures.WithLabelValues(entity).Inc()
		s.logger.Errorw("sync: entity update failed", "entity", entity, "id", id, "error", err)
	}
}

// advance reloads the reservation under its room lock and applies change only
// if the condition still holds. The room is re-derived in the same critical section.
func (s *RoomSynchronizer) advance(ctx context.Context, id, roomID uint, change func(*models.Reservation) bool) (bool, error) {
	unlock, err := acquire(ctx, s.locker, RoomLockKey(roomID), s.lockWait)
	if err != nil {
		return false, err
	}
	defer unlock()

	cur, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return false, storeErr("reservation", id, err)
	}
	from := cur.Status
	if !change(cur) {
		return false, nil
	}
	if err := s.reservations.Save(ctx, cur); err != nil {
		return false, storeErr("reservation", id, err)
	}
	metrics.ReservationTransitions.WithLabelValues(string(from), string(cur.Status)).Inc()
	s.audit.Record(SystemActor.Name, "SYNC_TRANSITION",
		fmt.Sprintf("%s -> %s", from, cur.Status), "Reservation", id)

	if _, err := s.roomSvc.recompute(ctx, roomID); err != nil {
		s.logger.Warnw("sync: room recompute after transition failed", "room", roomID, "error", err)
	}
	return true, nil
}

// auditCalendar looks for states the locking should make impossible:
// overlapping live stays on one room and stays on a missing room.
func (s *RoomSynchronizer) auditCalendar(ctx context.Context) int {
	live, err := s.reservations.FindByStatus(ctx, models.LiveStatuses...)
	if err != nil {
		s.logger.Errorw("sync: invariant scan failed", "error", err)
		return 0
	}
	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		s.logger.Errorw("sync: invariant scan failed", "error", err)
		return 0
	}
	known := make(map[uint]bool, len(rooms))
	for _, room := range rooms {
		known[room.ID] = true
	}

	byRoom := make(map[uint][]models.Reservation)
	for _, r := range live {
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}

	violations := 0
	for roomID, list := range byRoom {
		if !known[roomID] {
			violations += len(list)
			metrics.InvariantViolations.WithLabelValues("missing_room").Add(float64(len(list)))
			s.logger.Errorw("sync: live reservations reference a missing room", "room", roomID, "count", len(list))
			continue
		}
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				if list[i].Overlaps(list[j].StartDate, list[j].EndDate) {
					violations++
					metrics.InvariantViolations.WithLabelValues("overlap").Inc()
					s.logger.Errorw("sync: overlapping live reservations",
						"room", roomID, "first", list[i].ID, "second", list[j].ID)
				}
			}
		}
	}
	return violations
}

func (s *RoomSynchronizer) refreshGauges(ctx context.Context, kind string) {
	roomCounts, err := s.roomSvc.CountByStatus(ctx)
	if err != nil {
		s.logger.Warnw("sync: room gauges not refreshed", "error", err)
		return
	}
	var total int64
	for status, n := range roomCounts {
		metrics.RoomsByStatus.WithLabelValues(string(status)).Set(float64(n))
		total += n
	}
	if total > 0 {
		metrics.OccupancyRatio.Set(float64(roomCounts[models.RoomOccupied]) / float64(total))
	}

	if kind != PassDeep {
		resCounts, err := countReservations(ctx, s.reservations)
		if err != nil {
			s.logger.Warnw("sync: reservation gauges not refreshed", "error", err)
			return
		}
		setReservationGauges(resCounts)
		return
	}

	stats, err := collectReservationStats(ctx, s.reservations, s.clock.Today())
	if err != nil {
		s.logger.Warnw("sync: reservation gauges not refreshed", "error", err)
		return
	}
	setReservationGauges(stats.ByStatus)
	metrics.RevenueTotal.Set(stats.Revenue)
	metrics.ArrivalsToday.Set(float64(stats.ArrivalsToday))
	metrics.DeparturesToday.Set(float64(stats.DeparturesToday))
}

func setReservationGauges(counts map[models.ReservationStatus]int64) {
	for status, n := range counts {
		metrics.ReservationsByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}
