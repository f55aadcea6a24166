package logic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/models"
)

// AdminLogic serves moderation views and account status changes.
type AdminLogic struct {
	users   UserStore
	prompts PromptStore
	orders  OrderStore
	audits  AuditRecorder
}

func NewAdminLogic(users UserStore, prompts PromptStore, orders OrderStore, audits AuditRecorder) *AdminLogic {
	return &AdminLogic{users: users, prompts: prompts, orders: orders, audits: audits}
}

// Stats is the marketplace dashboard snapshot.
type Stats struct {
	TotalUsers      int64 `json:"total_users"`
	ActiveBuyers    int64 `json:"active_buyers"`
	ActiveSellers   int64 `json:"active_sellers"`
	BannedUsers     int64 `json:"banned_users"`
	DeletedUsers    int64 `json:"deleted_users"`
	TotalOrders     int64 `json:"total_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
	TotalPrompts    int64 `json:"total_prompts"`
	ApprovedPrompts int64 `json:"approved_prompts"`
	PendingPrompts  int64 `json:"pending_prompts"`
	RejectedPrompts int64 `json:"rejected_prompts"`
}

func (l *AdminLogic) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	var err error
	if s.TotalUsers, err = l.users.Count(ctx); err != nil {
		return nil, err
	}
	if s.ActiveBuyers, err = l.users.CountActiveByRole(ctx, models.RoleBuyer); err != nil {
		return nil, err
	}
	if s.ActiveSellers, err = l.users.CountActiveByRole(ctx, models.RoleSeller); err != nil {
		return nil, err
	}
	if s.BannedUsers, err = l.users.CountByStatus(ctx, models.StatusBanned); err != nil {
		return nil, err
	}
	if s.DeletedUsers, err = l.users.CountByStatus(ctx, models.StatusDeleted); err != nil {
		return nil, err
	}
	if s.TotalOrders, err = l.orders.Count(ctx); err != nil {
		return nil, err
	}
	if s.TotalRevenue, err = l.orders.Revenue(ctx); err != nil {
		return nil, err
	}
	if s.TotalPrompts, err = l.prompts.Count(ctx); err != nil {
		return nil, err
	}
	if s.ApprovedPrompts, err = l.prompts.CountByStatus(ctx, models.ModerationApproved); err != nil {
		return nil, err
	}
	if s.PendingPrompts, err = l.prompts.CountByStatus(ctx, models.ModerationPending); err != nil {
		return nil, err
	}
	if s.RejectedPrompts, err = l.prompts.CountByStatus(ctx, models.ModerationRejected); err != nil {
		return nil, err
	}
	return &s, nil
}

func (l *AdminLogic) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	return l.users.List(ctx, page, limit)
}

func (l *AdminLogic) ListPrompts(ctx context.Context, page, limit int) ([]models.Prompt, int64, error) {
	return l.prompts.ListAll(ctx, page, limit)
}

// SetUserStatus changes an account's status (ban, unban, soft delete).
func (l *AdminLogic) SetUserStatus(ctx context.Context, caller *models.User, target uuid.UUID, status models.Status) (*models.User, error) {
	if err := authorize(caller, uuid.Nil, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status value", ErrValidation)
	}
	if _, err := l.users.ByID(ctx, target); err != nil {
		return nil, mapNotFound(err)
	}
	if err := l.users.SetStatus(ctx, target, status); err != nil {
		return nil, err
	}
	audit(ctx, l.audits, caller.ID, "USER_STATUS_UPDATED", map[string]any{"user_id": target, "status": status})
	return l.users.ByID(ctx, target)
}
