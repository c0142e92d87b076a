package repositories

import (
	"context"
	"testing"
	"time"

	"hotel-reservation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestMemoryStore_VersionedSave(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := mem.Store()

	res := &models.Reservation{RoomID: 1, ClientID: 2, StartDate: date("2025-01-01"), EndDate: date("2025-01-03"), Status: models.StatusProcessing}
	require.NoError(t, store.Reservations.Save(ctx, res))
	assert.Equal(t, uint(1), res.ID)
	assert.Equal(t, uint(1), res.Version)

	a, err := store.Reservations.FindByID(ctx, res.ID)
	require.NoError(t, err)
	b, err := store.Reservations.FindByID(ctx, res.ID)
	require.NoError(t, err)

	a.Status = models.StatusPending
	require.NoError(t, store.Reservations.Save(ctx, a))
	assert.Equal(t, uint(2), a.Version)

	b.Status = models.StatusCancelled
	assert.ErrorIs(t, store.Reservations.Save(ctx, b), ErrVersionConflict)

	stored, err := store.Reservations.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, int64(2), mem.Writes())

	ghost := &models.Reservation{ID: 42, Version: 1}
	assert.ErrorIs(t, store.Reservations.Save(ctx, ghost), ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	res := &models.Reservation{RoomID: 1, ServiceIDs: []uint{1, 2}, Status: models.StatusPending}
	require.NoError(t, store.Reservations.Save(ctx, res))
	res.ServiceIDs[0] = 99

	got, err := store.Reservations.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ServiceIDs[0])

	got.ServiceIDs[1] = 77
	again, _ := store.Reservations.FindByID(ctx, res.ID)
	assert.Equal(t, uint(2), again.ServiceIDs[1])
}

func TestMemoryStore_UniqueColumns(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	require.NoError(t, store.Rooms.Save(ctx, &models.Room{RoomNumber: "101", Type: "Simple"}))
	assert.ErrorIs(t, store.Rooms.Save(ctx, &models.Room{RoomNumber: "101", Type: "Doble"}), ErrDuplicate)

	require.NoError(t, store.Discounts.Save(ctx, &models.Discount{Code: "VERANO2025"}))
	assert.ErrorIs(t, store.Discounts.Save(ctx, &models.Discount{Code: "verano2025"}), ErrDuplicate)

	require.NoError(t, store.Services.Save(ctx, &models.ExtraService{Name: "Spa"}))
	assert.ErrorIs(t, store.Services.Save(ctx, &models.ExtraService{Name: "spa"}), ErrDuplicate)
}

func TestMemoryStore_FindByPeriodInclusive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	for _, r := range []models.Reservation{
		{RoomID: 1, StartDate: date("2025-01-01"), EndDate: date("2025-01-05")},
		{RoomID: 1, StartDate: date("2025-01-10"), EndDate: date("2025-01-12")},
		{RoomID: 2, StartDate: date("2025-01-05"), EndDate: date("2025-01-06")},
	} {
		r := r
		require.NoError(t, store.Reservations.Save(ctx, &r))
	}

	list, err := store.Reservations.FindByPeriod(ctx, date("2025-01-05"), date("2025-01-09"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint(1), list[0].ID)
	assert.Equal(t, uint(3), list[1].ID)
}

func TestMemoryStore_DiscountUsage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	d := &models.Discount{Code: "ONE", UsesMax: 1}
	require.NoError(t, store.Discounts.Save(ctx, d))

	require.NoError(t, store.Discounts.IncrementUsage(ctx, d.ID))
	assert.ErrorIs(t, store.Discounts.IncrementUsage(ctx, d.ID), ErrUsageExhausted)
	assert.ErrorIs(t, store.Discounts.IncrementUsage(ctx, 99), ErrNotFound)

	// A stale copy cannot overwrite the counter.
	assert.ErrorIs(t, store.Discounts.Save(ctx, d), ErrVersionConflict)

	require.NoError(t, store.Discounts.ReleaseUsage(ctx, d.ID))
	require.NoError(t, store.Discounts.ReleaseUsage(ctx, d.ID))
	got, err := store.Discounts.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UsesCurrent)
}

func TestMemoryStore_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	for _, action := range []string{"A", "B", "C"} {
		require.NoError(t, store.Audit.Create(ctx, &models.AuditLog{ActionType: action}))
	}

	logs, err := store.Audit.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "C", logs[0].ActionType)
	assert.Equal(t, "B", logs[1].ActionType)

	logs, _ = store.Audit.Recent(ctx, 0)
	assert.Len(t, logs, 3)
}

func TestMemoryStore_CountByStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	require.NoError(t, store.Rooms.Save(ctx, &models.Room{RoomNumber: "1", Status: models.RoomAvailable}))
	require.NoError(t, store.Rooms.Save(ctx, &models.Room{RoomNumber: "2", Status: models.RoomAvailable}))
	require.NoError(t, store.Rooms.Save(ctx, &models.Room{RoomNumber: "3", Status: models.RoomMaintenance}))

	counts, err := store.Rooms.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.RoomAvailable])
	assert.Equal(t, int64(1), counts[models.RoomMaintenance])
}
