package dao

import (
	"context"

	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/models"
)

// AuditLogDAO handles audit trail storage.
type AuditLogDAO struct {
	db *gorm.DB
}

func NewAuditLogDAO(db *gorm.DB) *AuditLogDAO {
	return &AuditLogDAO{db: db}
}

func (d *AuditLogDAO) Record(ctx context.Context, entry *models.AuditLog) error {
	return d.db.WithContext(ctx).Create(entry).Error
}
