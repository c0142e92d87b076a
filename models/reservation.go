package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

type ReservationStatus string

const (
	StatusProcessing ReservationStatus = "PROCESSING"
	StatusPending    ReservationStatus = "PENDING"
	StatusActive     ReservationStatus = "ACTIVE"
	StatusFinalized  ReservationStatus = "FINALIZED"
	StatusCancelled  ReservationStatus = "CANCELLED"
	StatusArchived   ReservationStatus = "ARCHIVED"
)

// AllReservationStatuses lists every status in lifecycle order.
var AllReservationStatuses = []ReservationStatus{
	StatusProcessing, StatusPending, StatusActive, StatusFinalized, StatusCancelled, StatusArchived,
}

// LiveStatuses are the states that hold a room and take part in overlap checks.
var LiveStatuses = []ReservationStatus{StatusProcessing, StatusPending, StatusActive}

// IsLive reports whether the reservation still blocks its room's calendar.
func (s ReservationStatus) IsLive() bool {
	return s == StatusProcessing || s == StatusPending || s == StatusActive
}

// IsClosed reports whether the reservation reached Finalized or Cancelled.
// Archived is handled separately.
func (s ReservationStatus) IsClosed() bool {
	return s == StatusFinalized || s == StatusCancelled
}

func (s ReservationStatus) In(set ...ReservationStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RoomID   uint `gorm:"column:room_id;index;not null" json:"roomId"`
	ClientID uint `gorm:"column:client_id;index;not null" json:"clientId"`

	// StartDate and EndDate are calendar days (midnight UTC); both are inclusive.
	StartDate time.Time `gorm:"column:start_date;type:date;index" json:"startDate"`
	EndDate   time.Time `gorm:"column:end_date;type:date;index" json:"endDate"`
	Nights    int       `gorm:"column:nights" json:"nights"`
	BasePrice float64   `gorm:"column:base_price" json:"basePrice"`

	// ServiceIDs keeps the order and duplicates of the attached services.
	// A duplicated id is billed once per occurrence.
	ServiceIDs       datatypes.JSONSlice[uint] `gorm:"column:service_ids" json:"serviceIds"`
	ServicesSubtotal float64                   `gorm:"column:services_subtotal" json:"servicesSubtotal"`

	DiscountID     *uint   `gorm:"column:discount_id;index" json:"discountId,omitempty"`
	DiscountCode   string  `gorm:"column:discount_code;size:64" json:"discountCode,omitempty"`
	DiscountAmount float64 `gorm:"column:discount_amount" json:"discountAmount"`

	Status         ReservationStatus `gorm:"column:status;size:20;index" json:"status"`
	ActualCheckout *time.Time        `gorm:"column:actual_checkout" json:"actualCheckout,omitempty"`
	PaymentRef     *string           `gorm:"column:payment_ref;size:64" json:"paymentRef,omitempty"`
	PaymentMethod  string            `gorm:"column:payment_method;size:20" json:"paymentMethod,omitempty"`

	Version uint `gorm:"not null;default:1" json:"version"`
}

// Subtotal is the room price plus attached services, before any discount.
func (r *Reservation) Subtotal() float64 {
	return r.BasePrice + r.ServicesSubtotal
}

// TotalWithDiscount is max(0, base + services - discount).
func (r *Reservation) TotalWithDiscount() float64 {
	return math.Max(0, r.Subtotal()-r.DiscountAmount)
}

func (r *Reservation) Paid() bool {
	return r.PaymentRef != nil && *r.PaymentRef != ""
}

// Overlaps applies the inclusive overlap rule against [start, end].
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return RangesOverlap(r.StartDate, r.EndDate, start, end)
}

// Covers reports whether day falls inside [StartDate, EndDate].
func (r *Reservation) Covers(day time.Time) bool {
	return !day.Before(r.StartDate) && !day.After(r.EndDate)
}

// RangesOverlap is NOT(bEnd < aStart OR bStart > aEnd). Both ends are
// inclusive, so a stay ending on day N conflicts with one starting on day N.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(bEnd.Before(aStart) || bStart.After(aEnd))
}
