package services

import (
	"sync"
	"sync/atomic"
	"testing"

	"hotel-reservation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestComputeDiscountAmount(t *testing.T) {
	cases := []struct {
		name string
		d    models.Discount
		base float64
		want float64
	}{
		{"percentage", models.Discount{Kind: models.DiscountPercentage, Value: 20}, 100, 20},
		{"percentage capped", models.Discount{Kind: models.DiscountPercentage, Value: 50, MaxDiscountAmount: ptr(30)}, 100, 30},
		{"percentage under cap", models.Discount{Kind: models.DiscountPercentage, Value: 10, MaxDiscountAmount: ptr(30)}, 100, 10},
		{"percentage rounds", models.Discount{Kind: models.DiscountPercentage, Value: 15}, 33.33, 5},
		{"fixed", models.Discount{Kind: models.DiscountFixedAmount, Value: 50}, 120, 50},
		{"fixed larger than base", models.Discount{Kind: models.DiscountFixedAmount, Value: 50}, 30, 30},
		{"zero base", models.Discount{Kind: models.DiscountFixedAmount, Value: 50}, 0, 0},
		{"unknown kind", models.Discount{Kind: "BOGUS", Value: 50}, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ComputeDiscountAmount(&tc.d, tc.base), 0.001)
		})
	}
}

func TestValidateAndFind_Rejections(t *testing.T) {
	env := newTestEnv(t, "2025-06-15")
	env.addDiscount(t, models.Discount{Code: "OK", Kind: models.DiscountPercentage, Value: 10, UsesMax: 5})
	env.addDiscount(t, models.Discount{Code: "MIN200", Kind: models.DiscountFixedAmount, Value: 10, UsesMax: 5, MinAmount: ptr(200)})
	env.addDiscount(t, models.Discount{Code: "OLD", Kind: models.DiscountFixedAmount, Value: 10, UsesMax: 5,
		ValidFrom: day("2024-01-01"), ValidTo: day("2025-06-14")})
	env.addDiscount(t, models.Discount{Code: "SOON", Kind: models.DiscountFixedAmount, Value: 10, UsesMax: 5,
		ValidFrom: day("2025-06-16"), ValidTo: day("2025-12-31")})
	env.addDiscount(t, models.Discount{Code: "LASTDAY", Kind: models.DiscountFixedAmount, Value: 10, UsesMax: 5,
		ValidFrom: day("2025-06-01"), ValidTo: day("2025-06-15")})
	env.addDiscount(t, models.Discount{Code: "USED", Kind: models.DiscountFixedAmount, Value: 10, UsesMax: 1, UsesCurrent: 1})
	_, err := env.discounts.Deactivate(env.ctx, staff, "OK")
	require.NoError(t, err)
	env.addDiscount(t, models.Discount{Code: "LIVE", Kind: models.DiscountPercentage, Value: 10, UsesMax: 5})

	for _, code := range []string{"OK", "MIN200", "OLD", "SOON", "USED", "NOPE", ""} {
		_, err := env.evaluator.ValidateAndFind(env.ctx, code, 100)
		assert.ErrorIs(t, err, ErrDiscountInvalid, code)
	}

	_, err = env.evaluator.ValidateAndFind(env.ctx, "NOPE", 100)
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := env.evaluator.ValidateAndFind(env.ctx, " live ", 100)
	require.NoError(t, err)
	assert.Equal(t, "LIVE", d.Code)

	_, err = env.evaluator.ValidateAndFind(env.ctx, "LASTDAY", 100)
	assert.NoError(t, err, "validTo is inclusive")

	_, err = env.evaluator.ValidateAndFind(env.ctx, "MIN200", 200)
	assert.NoError(t, err)
}

func TestApplyDiscount_Verano2025(t *testing.T) {
	env := newTestEnv(t, "2025-01-10")
	room := env.addRoom(t, "101", 100)
	verano := env.addDiscount(t, models.Discount{Code: "VERANO2025", Kind: models.DiscountPercentage, Value: 20, UsesMax: 100})

	r, err := env.create(room.ID, "2025-01-12", "2025-01-13")
	require.NoError(t, err)

	r, err = env.reservations.ApplyDiscount(env.ctx, staff, r.ID, "verano2025")
	require.NoError(t, err)
	assert.Equal(t, 20.0, r.DiscountAmount)
	assert.Equal(t, "VERANO2025", r.DiscountCode)
	require.NotNil(t, r.DiscountID)
	assert.Equal(t, verano.ID, *r.DiscountID)
	assert.Equal(t, 80.0, r.TotalWithDiscount())

	stored, err := env.store.Discounts.FindByID(env.ctx, verano.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsesCurrent)

	// Reapplying the same code does not consume another use.
	_, err = env.reservations.ApplyDiscount(env.ctx, staff, r.ID, "VERANO2025")
	require.NoError(t, err)
	stored, _ = env.store.Discounts.FindByID(env.ctx, verano.ID)
	assert.Equal(t, 1, stored.UsesCurrent)

	// Removing and cancelling keep the use consumed.
	r, err = env.reservations.RemoveDiscount(env.ctx, staff, r.ID)
	require.NoError(t, err)
	assert.Nil(t, r.DiscountID)
	assert.Zero(t, r.DiscountAmount)
	_, err = env.reservations.Cancel(env.ctx, staff, r.ID)
	require.NoError(t, err)
	stored, _ = env.store.Discounts.FindByID(env.ctx, verano.ID)
	assert.Equal(t, 1, stored.UsesCurrent)
}

func TestApplyDiscount_HundredAndFirstUseRejected(t *testing.T) {
	env := newTestEnv(t, "2025-01-10")
	verano := env.addDiscount(t, models.Discount{Code: "VERANO2025", Kind: models.DiscountPercentage, Value: 20, UsesMax: 100})

	for i := 0; i < 100; i++ {
		d, err := env.evaluator.ValidateAndFind(env.ctx, "VERANO2025", 100)
		require.NoError(t, err, "use %d", i+1)
		assert.Equal(t, 20.0, env.evaluator.ComputeAmount(d, 100))
		require.NoError(t, env.evaluator.IncrementUsage(env.ctx, d))
	}

	_, err := env.evaluator.ValidateAndFind(env.ctx, "VERANO2025", 100)
	assert.ErrorIs(t, err, ErrDiscountInvalid)

	// The same through the lifecycle.
	room := env.addRoom(t, "101", 100)
	r, err := env.create(room.ID, "2025-01-12", "2025-01-13")
	require.NoError(t, err)
	_, err = env.reservations.ApplyDiscount(env.ctx, staff, r.ID, "VERANO2025")
	assert.ErrorIs(t, err, ErrDiscountInvalid)

	stored, err := env.store.Discounts.FindByID(env.ctx, verano.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.UsesCurrent)
}

func TestApplyDiscount_ReplacesPrevious(t *testing.T) {
	env := newTestEnv(t, "2025-01-10")
	room := env.addRoom(t, "101", 100)
	env.addDiscount(t, models.Discount{Code: "VERANO2025", Kind: models.DiscountPercentage, Value: 20, UsesMax: 100})
	env.addDiscount(t, models.Discount{Code: "BIENVENIDA", Kind: models.DiscountFixedAmount, Value: 50, UsesMax: 50})

	r, err := env.create(room.ID, "2025-01-12", "2025-01-14")
	require.NoError(t, err)
	_, err = env.reservations.ApplyDiscount(env.ctx, staff, r.ID, "VERANO2025")
	require.NoError(t, err)
	r, err = env.reservations.ApplyDiscount(env.ctx, staff, r.ID, "BIENVENIDA")
	require.NoError(t, err)
	assert.Equal(t, "BIENVENIDA", r.DiscountCode)
	assert.Equal(t, 50.0, r.DiscountAmount)
	assert.Equal(t, 150.0, r.TotalWithDiscount())
}

func TestIncrementUsage_ConcurrentNeverExceedsMax(t *testing.T) {
	env := newTestEnv(t, "2025-01-10")
	d := env.addDiscount(t, models.Discount{Code: "FLASH", Kind: models.DiscountFixedAmount, Value: 5, UsesMax: 10})

	var (
		wg sync.WaitGroup
		ok atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := *d
			if err := env.evaluator.IncrementUsage(env.ctx, &local); err == nil {
				ok.Add(1)
			} else {
				assert.ErrorIs(t, err, ErrDiscountInvalid)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	stored, err := env.store.Discounts.FindByID(env.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.UsesCurrent)
}

func TestApplyDiscount_ConcurrentAcrossRooms(t *testing.T) {
	env := newTestEnv(t, "2025-01-10")
	d := env.addDiscount(t, models.Discount{Code: "FLASH", Kind: models.DiscountFixedAmount, Value: 5, UsesMax: 3})

	ids := make([]uint, 0, 10)
	for i := 0; i < 10; i++ {
		room := env.addRoom(t, string(rune('A'+i)), 100)
		r, err := env.create(room.ID, "2025-01-12", "2025-01-13")
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	var (
		wg      sync.WaitGroup
		applied atomic.Int32
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			if _, err := env.reservations.ApplyDiscount(env.ctx, staff, id, "FLASH"); err == nil {
				applied.Add(1)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int32(3), applied.Load())
	stored, _ := env.store.Discounts.FindByID(env.ctx, d.ID)
	assert.Equal(t, 3, stored.UsesCurrent)
}

func TestDiscountService_Create(t *testing.T) {
	env := newTestEnv(t, "2025-01-10")

	d, err := env.discounts.Create(env.ctx, staff, DiscountInput{
		Code: " spring ", Kind: models.DiscountPercentage, Value: 15, UsesMax: 10,
		ValidFrom: "2025-03-01", ValidTo: "2025-05-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "SPRING", d.Code)
	assert.True(t, d.Active)

	_, err = env.discounts.Create(env.ctx, staff, DiscountInput{
		Code: "SPRING", Kind: models.DiscountFixedAmount, Value: 5, UsesMax: 1, ValidFrom: "2025-03-01", ValidTo: "2025-05-31",
	})
	assert.ErrorIs(t, err, ErrValidation, "duplicate code")

	bad := []DiscountInput{
		{Code: "X", Kind: models.DiscountPercentage, Value: 120, UsesMax: 1, ValidFrom: "2025-03-01", ValidTo: "2025-05-31"},
		{Code: "X", Kind: "BOGUS", Value: 10, UsesMax: 1, ValidFrom: "2025-03-01", ValidTo: "2025-05-31"},
		{Code: "X", Kind: models.DiscountFixedAmount, Value: 10, UsesMax: 0, ValidFrom: "2025-03-01", ValidTo: "2025-05-31"},
		{Code: "X", Kind: models.DiscountFixedAmount, Value: 10, UsesMax: 1, ValidFrom: "2025-06-01", ValidTo: "2025-05-31"},
		{Code: "X", Kind: models.DiscountFixedAmount, Value: 10, UsesMax: 1, ValidFrom: "01/06/2025", ValidTo: "2025-05-31"},
	}
	for i, in := range bad {
		_, err := env.discounts.Create(env.ctx, staff, in)
		assert.ErrorIs(t, err, ErrValidation, "case %d", i)
	}
}
