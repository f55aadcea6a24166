package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaceholderToken is the reserved marker inside a prompt template where the
// sample input is substituted before generation.
const PlaceholderToken = "{INPUT}"

// PromptType selects how generated preview output is interpreted.
type PromptType string

const (
	PromptTypeText  PromptType = "text"
	PromptTypeImage PromptType = "image"
)

func (t PromptType) Valid() bool {
	return t == PromptTypeText || t == PromptTypeImage
}

// ModerationStatus is the lifecycle gate controlling buyer visibility.
// Only approved listings are visible to buyers or purchasable.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

// Prompt is a seller's listing: a template with a sample input used to
// demonstrate it. Any content edit sends it back through review.
type Prompt struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string           `gorm:"not null" json:"title"`
	Body          string           `gorm:"not null" json:"body"` // must contain PlaceholderToken
	Description   string           `gorm:"not null" json:"description"`
	Tags          string           `gorm:"index" json:"tags"` // comma-joined, lowercase
	SampleInput   string           `gorm:"not null" json:"sample_input"`
	Price         int64            `gorm:"not null" json:"price"` // cents
	Type          PromptType       `gorm:"not null" json:"type"`
	Status        ModerationStatus `gorm:"not null;default:pending;index" json:"status"`
	ThumbnailID   string           `gorm:"not null" json:"thumbnail_id"`
	ThumbnailURL  string           `gorm:"not null" json:"thumbnail_url"`
	PurchaseCount uint64           `gorm:"not null;default:0" json:"purchase_count"`
	OwnerID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// HasPlaceholder reports whether the template carries the substitution token.
func (p *Prompt) HasPlaceholder() bool {
	return strings.Contains(p.Body, PlaceholderToken)
}
