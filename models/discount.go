package models

import "time"

type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "PERCENTAGE"
	DiscountFixedAmount DiscountKind = "FIXED_AMOUNT"
)

func (k DiscountKind) Valid() bool {
	return k == DiscountPercentage || k == DiscountFixedAmount
}

type Discount struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Code        string       `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Description string       `gorm:"size:255" json:"description"`
	Kind        DiscountKind `gorm:"size:20;not null" json:"kind"`
	Value       float64      `json:"value"`

	MinAmount         *float64 `json:"minAmount,omitempty"`
	MaxDiscountAmount *float64 `json:"maxDiscountAmount,omitempty"`

	UsesMax     int `gorm:"not null" json:"usesMax"`
	UsesCurrent int `gorm:"not null;default:0" json:"usesCurrent"`

	ValidFrom time.Time `gorm:"type:date" json:"validFrom"`
	ValidTo   time.Time `gorm:"type:date" json:"validTo"`
	Active    bool      `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   uint      `gorm:"not null;default:1" json:"version"`
}

func (d *Discount) Exhausted() bool {
	return d.UsesCurrent >= d.UsesMax
}
