package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is the immutable record of one completed purchase. Orders are keyed
// by the external checkout session id so a redelivered payment event cannot
// record the same sale twice.
type Order struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"buyer_id"`
	PromptID  uuid.UUID `gorm:"type:uuid;not null;index" json:"prompt_id"`
	Price     int64     `gorm:"not null" json:"price"` // cents, captured at purchase time
	SessionID string    `gorm:"uniqueIndex;not null" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}
