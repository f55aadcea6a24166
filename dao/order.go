package dao

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/models"
)

// OrderDAO handles the purchase ledger. Orders are append-only; nothing here
// mutates or deletes an existing record.
type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{db: db}
}

func (d *OrderDAO) Create(ctx context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return d.db.WithContext(ctx).Create(o).Error
}

// ExistsBySession reports whether a fulfillment for the external checkout
// session was already recorded.
func (d *OrderDAO) ExistsBySession(ctx context.Context, sessionID string) (bool, error) {
	var n int64
	if err := d.db.WithContext(ctx).Model(&models.Order{}).
		Where("session_id = ?", sessionID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *OrderDAO) ListByBuyer(ctx context.Context, buyer uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := d.db.WithContext(ctx).
		Where("buyer_id = ?", buyer).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *OrderDAO) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

// Revenue sums the price captured on every order.
func (d *OrderDAO) Revenue(ctx context.Context) (int64, error) {
	var total int64
	err := d.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(price), 0)").Scan(&total).Error
	return total, err
}
