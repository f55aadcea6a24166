package dao

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/models"
)

// PromptDAO handles listing-related database operations.
type PromptDAO struct {
	db *gorm.DB
}

func NewPromptDAO(db *gorm.DB) *PromptDAO {
	return &PromptDAO{db: db}
}

func (d *PromptDAO) Create(ctx context.Context, p *models.Prompt) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return d.db.WithContext(ctx).Create(p).Error
}

func (d *PromptDAO) ByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	var p models.Prompt
	if err := d.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *PromptDAO) ByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Prompt, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var prompts []models.Prompt
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

// ListApproved returns buyer-visible listings newest-first, optionally
// filtered by tag.
func (d *PromptDAO) ListApproved(ctx context.Context, page, limit int, tag string) ([]models.Prompt, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	qb := d.db.WithContext(ctx).Model(&models.Prompt{}).
		Where("status = ?", models.ModerationApproved)
	if tag != "" {
		qb = qb.Where("? = ANY(string_to_array(tags, ','))", tag)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var prompts []models.Prompt
	if err := qb.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&prompts).Error; err != nil {
		return nil, 0, err
	}
	return prompts, total, nil
}

func (d *PromptDAO) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.Prompt, error) {
	var prompts []models.Prompt
	if err := d.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("created_at DESC").
		Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

// ListAll returns every listing regardless of status, for moderation.
func (d *PromptDAO) ListAll(ctx context.Context, page, limit int) ([]models.Prompt, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 100
	}
	var total int64
	if err := d.db.WithContext(ctx).Model(&models.Prompt{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var prompts []models.Prompt
	if err := d.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&prompts).Error; err != nil {
		return nil, 0, err
	}
	return prompts, total, nil
}

func (d *PromptDAO) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Prompt, error) {
	if err := d.db.WithContext(ctx).Model(&models.Prompt{}).
		Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return d.ByID(ctx, id)
}

func (d *PromptDAO) SetStatus(ctx context.Context, id uuid.UUID, status models.ModerationStatus) error {
	return d.db.WithContext(ctx).Model(&models.Prompt{}).
		Where("id = ?", id).Update("status", status).Error
}

func (d *PromptDAO) Delete(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Delete(&models.Prompt{}, "id = ?", id).Error
}

// IncrementPurchaseCount bumps the derived sales counter atomically so
// concurrent fulfillments of the same listing cannot lose updates.
func (d *PromptDAO) IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Model(&models.Prompt{}).
		Where("id = ?", id).
		Update("purchase_count", gorm.Expr("purchase_count + ?", 1)).Error
}

func (d *PromptDAO) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.Prompt{}).Count(&n).Error
	return n, err
}

func (d *PromptDAO) CountByStatus(ctx context.Context, status models.ModerationStatus) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.Prompt{}).
		Where("status = ?", status).Count(&n).Error
	return n, err
}
