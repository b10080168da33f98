package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures one-way events emitted by the attempt engine,
// consumed by the audit trail and notification surfaces.
type ActivityLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"not null;index" json:"user_id"`
	EventType   string            `gorm:"size:64;not null" json:"event_type"`
	Description string            `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}
