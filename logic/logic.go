package logic

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/models"
)

// Error kinds. Logic wraps these with fmt.Errorf("%w: ...") and the
// controller layer maps them to HTTP statuses.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream failure")
)

// mapNotFound translates the store's missing-record error into the
// not-found kind.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// EventPublisher emits marketplace events to downstream consumers.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// audit writes a best-effort audit entry. Failures are logged and never
// propagate to the operation being recorded.
func audit(ctx context.Context, rec AuditRecorder, actor uuid.UUID, action string, details any) {
	if rec == nil {
		return
	}
	var blob string
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			blob = string(b)
		}
	}
	entry := &models.AuditLog{
		ActorID:   actor,
		Action:    action,
		Details:   blob,
		IPAddress: clientIP(ctx),
	}
	if err := rec.Record(ctx, entry); err != nil {
		log.Printf("audit: record %s: %v", action, err)
	}
}

// clientIP reads the caller address stashed in the request context by the
// HTTP layer, when present.
func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value("client_ip").(string)
	return ip
}
