package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"2025-01-10", "2025-01-15", "2025-01-12", "2025-01-20", true},
		{"2025-01-10", "2025-01-15", "2025-01-15", "2025-01-20", true},
		{"2025-01-10", "2025-01-15", "2025-01-16", "2025-01-20", false},
		{"2025-01-10", "2025-01-15", "2025-01-05", "2025-01-10", true},
		{"2025-01-10", "2025-01-15", "2025-01-05", "2025-01-09", false},
		{"2025-01-10", "2025-01-15", "2025-01-11", "2025-01-12", true},
		{"2025-01-10", "2025-01-15", "2025-01-01", "2025-01-31", true},
	}
	for _, tc := range cases {
		got := RangesOverlap(d(tc.aStart), d(tc.aEnd), d(tc.bStart), d(tc.bEnd))
		assert.Equal(t, tc.want, got, "%s..%s vs %s..%s", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
		assert.Equal(t, got, RangesOverlap(d(tc.bStart), d(tc.bEnd), d(tc.aStart), d(tc.aEnd)), "symmetric")
	}
}

func TestReservation_Totals(t *testing.T) {
	r := Reservation{BasePrice: 200, ServicesSubtotal: 45}
	assert.Equal(t, 245.0, r.Subtotal())
	assert.Equal(t, 245.0, r.TotalWithDiscount())

	r.DiscountAmount = 45
	assert.Equal(t, 200.0, r.TotalWithDiscount())

	r.DiscountAmount = 500
	assert.Equal(t, 0.0, r.TotalWithDiscount())
}

func TestReservation_Covers(t *testing.T) {
	r := Reservation{StartDate: d("2025-03-01"), EndDate: d("2025-03-03")}
	assert.False(t, r.Covers(d("2025-02-28")))
	assert.True(t, r.Covers(d("2025-03-01")))
	assert.True(t, r.Covers(d("2025-03-03")))
	assert.False(t, r.Covers(d("2025-03-04")))
}

func TestReservation_Paid(t *testing.T) {
	r := Reservation{}
	assert.False(t, r.Paid())
	empty := ""
	r.PaymentRef = &empty
	assert.False(t, r.Paid())
	ref := "PAY-1"
	r.PaymentRef = &ref
	assert.True(t, r.Paid())
}

func TestReservationStatus_Classes(t *testing.T) {
	for _, s := range []ReservationStatus{StatusProcessing, StatusPending, StatusActive} {
		assert.True(t, s.IsLive(), s)
		assert.False(t, s.IsClosed(), s)
	}
	for _, s := range []ReservationStatus{StatusFinalized, StatusCancelled} {
		assert.False(t, s.IsLive(), s)
		assert.True(t, s.IsClosed(), s)
	}
	assert.False(t, StatusArchived.IsLive())
	assert.False(t, StatusArchived.IsClosed())
}
