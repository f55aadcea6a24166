package logic

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/models"
)

// PromptStore is the persistence contract the catalog logic depends on.
// *dao.PromptDAO satisfies it.
type PromptStore interface {
	Create(ctx context.Context, p *models.Prompt) error
	ByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error)
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Prompt, error)
	ListApproved(ctx context.Context, page, limit int, tag string) ([]models.Prompt, int64, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.Prompt, error)
	ListAll(ctx context.Context, page, limit int) ([]models.Prompt, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Prompt, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.ModerationStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.ModerationStatus) (int64, error)
}

// ThumbnailStore manages listing thumbnails on the image CDN.
// *pkg.StorageClient satisfies it.
type ThumbnailStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (publicID, url string, err error)
	Destroy(ctx context.Context, publicID string) error
}

// PromptLogic handles catalog business logic.
type PromptLogic struct {
	prompts PromptStore
	thumbs  ThumbnailStore
	audits  AuditRecorder
}

func NewPromptLogic(prompts PromptStore, thumbs ThumbnailStore, audits AuditRecorder) *PromptLogic {
	return &PromptLogic{prompts: prompts, thumbs: thumbs, audits: audits}
}

type CreatePromptInput struct {
	Title         string
	Body          string
	Description   string
	Tags          string
	SampleInput   string
	Price         int64
	Type          models.PromptType
	ThumbnailName string
	Thumbnail     io.Reader
}

// normalizeTags lowercases and trims a comma-separated tag list.
func normalizeTags(raw string) string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ",")
}

// Create lists a new prompt. Sellers only; every content field and a
// thumbnail are required, and the template must carry the placeholder token.
// New listings start pending review.
func (l *PromptLogic) Create(ctx context.Context, caller *models.User, in CreatePromptInput) (*models.Prompt, error) {
	if err := authorize(caller, uuid.Nil, models.RoleSeller); err != nil {
		return nil, fmt.Errorf("%w: only sellers can create prompts", ErrForbidden)
	}
	if in.Title == "" || in.Body == "" || in.Description == "" || in.Tags == "" || in.SampleInput == "" {
		return nil, fmt.Errorf("%w: title, body, description, tags and sample input are required", ErrValidation)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: prompt type must be text or image", ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if !strings.Contains(in.Body, models.PlaceholderToken) {
		return nil, fmt.Errorf("%w: prompt body must contain the %s placeholder", ErrValidation, models.PlaceholderToken)
	}
	if in.Thumbnail == nil {
		return nil, fmt.Errorf("%w: thumbnail image is required", ErrValidation)
	}

	publicID, url, err := l.thumbs.Upload(ctx, in.ThumbnailName, in.Thumbnail)
	if err != nil {
		return nil, fmt.Errorf("%w: thumbnail upload: %v", ErrUpstream, err)
	}

	prompt := &models.Prompt{
		Title:        in.Title,
		Body:         in.Body,
		Description:  in.Description,
		Tags:         normalizeTags(in.Tags),
		SampleInput:  in.SampleInput,
		Price:        in.Price,
		Type:         in.Type,
		Status:       models.ModerationPending,
		ThumbnailID:  publicID,
		ThumbnailURL: url,
		OwnerID:      caller.ID,
	}
	if err := l.prompts.Create(ctx, prompt); err != nil {
		return nil, err
	}
	audit(ctx, l.audits, caller.ID, "PROMPT_CREATED", map[string]any{"prompt_id": prompt.ID})
	return prompt, nil
}

// ListApproved returns the public, buyer-visible catalog page.
func (l *PromptLogic) ListApproved(ctx context.Context, page, limit int, tag string) ([]models.Prompt, int64, error) {
	return l.prompts.ListApproved(ctx, page, limit, strings.ToLower(strings.TrimSpace(tag)))
}

// ListMine returns every listing the caller owns, regardless of status.
func (l *PromptLogic) ListMine(ctx context.Context, caller *models.User) ([]models.Prompt, error) {
	return l.prompts.ListByOwner(ctx, caller.ID)
}

// Get returns a single approved listing. Unapproved listings are invisible
// to the public and read as missing.
func (l *PromptLogic) Get(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	prompt, err := l.prompts.ByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if prompt.Status != models.ModerationApproved {
		return nil, ErrNotFound
	}
	return prompt, nil
}

type UpdatePromptInput struct {
	Title       *string            `json:"title"`
	Body        *string            `json:"body"`
	Description *string            `json:"description"`
	Tags        *string            `json:"tags"`
	SampleInput *string            `json:"sample_input"`
	Price       *int64             `json:"price"`
	Type        *models.PromptType `json:"type"`
}

// Update edits a listing the caller owns. Any content change sends the
// listing back to pending review, and the placeholder invariant is
// re-checked against the resulting template.
func (l *PromptLogic) Update(ctx context.Context, caller *models.User, id uuid.UUID, in UpdatePromptInput) (*models.Prompt, error) {
	prompt, err := l.prompts.ByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := authorize(caller, prompt.OwnerID, ""); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil && *in.Title != "" {
		fields["title"] = *in.Title
	}
	if in.Body != nil {
		if !strings.Contains(*in.Body, models.PlaceholderToken) {
			return nil, fmt.Errorf("%w: prompt body must contain the %s placeholder", ErrValidation, models.PlaceholderToken)
		}
		fields["body"] = *in.Body
	}
	if in.Description != nil && *in.Description != "" {
		fields["description"] = *in.Description
	}
	if in.Tags != nil {
		fields["tags"] = normalizeTags(*in.Tags)
	}
	if in.SampleInput != nil && *in.SampleInput != "" {
		fields["sample_input"] = *in.SampleInput
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		fields["price"] = *in.Price
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, fmt.Errorf("%w: prompt type must be text or image", ErrValidation)
		}
		fields["type"] = *in.Type
	}

	// Every edit goes back through review.
	fields["status"] = models.ModerationPending
	updated, err := l.prompts.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	audit(ctx, l.audits, caller.ID, "PROMPT_UPDATED", map[string]any{"prompt_id": id})
	return updated, nil
}

// Delete removes a listing the caller owns and releases its stored
// thumbnail. A CDN failure does not keep the listing alive.
func (l *PromptLogic) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	prompt, err := l.prompts.ByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if err := authorize(caller, prompt.OwnerID, ""); err != nil {
		return err
	}
	if prompt.ThumbnailID != "" {
		if err := l.thumbs.Destroy(ctx, prompt.ThumbnailID); err != nil {
			log.Printf("prompt delete: release thumbnail %s: %v", prompt.ThumbnailID, err)
		}
	}
	if err := l.prompts.Delete(ctx, id); err != nil {
		return err
	}
	audit(ctx, l.audits, caller.ID, "PROMPT_DELETED", map[string]any{"prompt_id": id})
	return nil
}

// SetStatus moves a listing to approved or rejected. Administrators only;
// pending cannot be set directly, it is re-entered by edits.
func (l *PromptLogic) SetStatus(ctx context.Context, caller *models.User, id uuid.UUID, status models.ModerationStatus) (*models.Prompt, error) {
	if err := authorize(caller, uuid.Nil, models.RoleAdmin); err != nil {
		return nil, err
	}
	if status != models.ModerationApproved && status != models.ModerationRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}
	if _, err := l.prompts.ByID(ctx, id); err != nil {
		return nil, mapNotFound(err)
	}
	if err := l.prompts.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	audit(ctx, l.audits, caller.ID, "PROMPT_STATUS_UPDATED", map[string]any{"prompt_id": id, "status": status})
	return l.prompts.ByID(ctx, id)
}
