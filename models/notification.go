package models

import "time"

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Category  string    `gorm:"size:64;index" json:"category"`
	Audience  string    `gorm:"size:64;index" json:"audience"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
