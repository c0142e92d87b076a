package models

import (
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomCleaning    RoomStatus = "CLEANING"
)

// AllRoomStatuses lists every status a room can report, in display order.
var AllRoomStatuses = []RoomStatus{RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning}

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning:
		return true
	}
	return false
}

// Room is a bookable unit. Status is derived from the reservation calendar,
// except RoomMaintenance which only an operator sets or clears.
// A room never points back at its reservations.
type Room struct {
	gorm.Model

	RoomNumber    string     `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`
	Type          string     `json:"type" gorm:"type:varchar(64);index"`
	PricePerNight float64    `json:"pricePerNight" gorm:"column:price_per_night"`
	Status        RoomStatus `json:"status" gorm:"type:varchar(20);index"`
	Description   string     `json:"description" gorm:"type:text"`

	// Version is bumped on every successful save; writes are conditional on it.
	Version uint `json:"version" gorm:"not null;default:1"`
}

func (r *Room) InMaintenance() bool {
	return r.Status == RoomMaintenance
}
