package services

import (
	"context"
	"testing"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type testEnv struct {
	ctx   context.Context
	mem   *repositories.MemoryStore
	store *repositories.Store
	now   time.Time

	locker *KeyedLocker
	log    *zap.SugaredLogger

	oracle       *AvailabilityOracle
	evaluator    *DiscountEvaluator
	catalog      *CatalogService
	rooms        *RoomService
	discounts    *DiscountService
	reservations *ReservationService
	syncer       *RoomSynchronizer
	audit        *AuditService
	notify       *NotificationService
}

// newTestEnv wires every service over a memory store with "today" pinned.
func newTestEnv(t *testing.T, today string) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	env := &testEnv{
		ctx: context.Background(),
		mem: repositories.NewMemoryStore(),
		now: day(today).Add(9 * time.Hour),
	}
	env.store = env.mem.Store()
	clock := ClockFunc(func() time.Time { return env.now })
	env.locker = NewKeyedLocker()
	env.log = log
	locker := env.locker
	wait := 2 * time.Second

	env.audit = NewAuditService(env.store.Audit, clock, 1024, log)
	env.notify = NewNotificationService(env.store.Notifications, clock, 1024, log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = env.audit.Close(ctx)
		_ = env.notify.Close(ctx)
	})

	env.oracle = NewAvailabilityOracle(env.store.Rooms, env.store.Reservations)
	env.evaluator = NewDiscountEvaluator(env.store.Discounts, clock)
	env.catalog = NewCatalogService(env.store.Services, env.audit)
	env.rooms = NewRoomService(env.store.Rooms, env.store.Reservations, locker, clock, env.audit, wait, log)
	env.discounts = NewDiscountService(env.store.Discounts, locker, env.audit, wait)
	env.reservations = NewReservationService(ReservationDeps{
		Rooms:        env.store.Rooms,
		Reservations: env.store.Reservations,
		Oracle:       env.oracle,
		Discounts:    env.evaluator,
		Catalog:      env.catalog,
		RoomService:  env.rooms,
		Locker:       locker,
		Payments:     NewLocalPaymentProcessor(log),
		Audit:        env.audit,
		Notify:       env.notify,
		Clock:        clock,
		LockWait:     wait,
		Logger:       log,
	})
	env.syncer = NewRoomSynchronizer(env.store.Rooms, env.store.Reservations, env.rooms, locker, clock, env.audit, wait, log)
	return env
}

var staff = Actor{Name: "front-desk", Role: RoleReceptionist}

func (e *testEnv) addRoom(t *testing.T, number string, price float64) *models.Room {
	t.Helper()
	room := &models.Room{RoomNumber: number, Type: "Doble", PricePerNight: price, Status: models.RoomAvailable}
	require.NoError(t, e.store.Rooms.Save(e.ctx, room))
	return room
}

// addReservation stores a reservation directly, bypassing lifecycle checks.
func (e *testEnv) addReservation(t *testing.T, roomID uint, start, end string, status models.ReservationStatus) *models.Reservation {
	t.Helper()
	r := &models.Reservation{
		RoomID:    roomID,
		ClientID:  7,
		StartDate: day(start),
		EndDate:   day(end),
		Nights:    int(day(end).Sub(day(start)).Hours() / 24),
		Status:    status,
	}
	require.NoError(t, e.store.Reservations.Save(e.ctx, r))
	return r
}

func (e *testEnv) addDiscount(t *testing.T, d models.Discount) *models.Discount {
	t.Helper()
	if d.ValidFrom.IsZero() {
		d.ValidFrom = day("2024-01-01")
	}
	if d.ValidTo.IsZero() {
		d.ValidTo = day("2030-12-31")
	}
	d.Active = true
	require.NoError(t, e.store.Discounts.Save(e.ctx, &d))
	return &d
}

func (e *testEnv) create(roomID uint, start, end string) (*models.Reservation, error) {
	return e.reservations.Create(e.ctx, staff, CreateReservationInput{
		ClientID:  7,
		RoomID:    roomID,
		StartDate: day(start),
		EndDate:   day(end),
	})
}

func (e *testEnv) roomStatus(t *testing.T, id uint) models.RoomStatus {
	t.Helper()
	room, err := e.store.Rooms.FindByID(e.ctx, id)
	require.NoError(t, err)
	return room.Status
}

func (e *testEnv) status(t *testing.T, id uint) models.ReservationStatus {
	t.Helper()
	r, err := e.store.Reservations.FindByID(e.ctx, id)
	require.NoError(t, err)
	return r.Status
}
