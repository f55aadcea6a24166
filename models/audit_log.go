package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a notable user action. Writes are best-effort and must
// never fail the operation being logged.
type AuditLog struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID   uuid.UUID `gorm:"type:uuid;index" json:"actor_id"`
	Action    string    `gorm:"not null;index" json:"action"`
	Details   string    `json:"details"` // JSON blob
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}
