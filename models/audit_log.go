package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Actor      string         `gorm:"size:150;index" json:"actor"`
	ActionType string         `gorm:"size:64;index" json:"actionType"`
	Detail     string         `gorm:"type:text" json:"detail"`
	EntityType string         `gorm:"size:64;index" json:"entityType"`
	EntityID   uint           `gorm:"index" json:"entityId"`
	Meta       datatypes.JSON `json:"meta,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
}
