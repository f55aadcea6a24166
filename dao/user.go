package dao

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/models"
)

// UserDAO handles user-related database operations.
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// Create inserts a new user, assigning an id if none is set.
func (d *UserDAO) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return d.db.WithContext(ctx).Create(u).Error
}

func (d *UserDAO) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ByLogin retrieves a user by username or email.
func (d *UserDAO) ByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *UserDAO) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *UserDAO) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *UserDAO) ByGoogleID(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, "google_id = ?", sub).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateFields applies a partial update and returns the fresh record.
func (d *UserDAO) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error) {
	if err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return d.ByID(ctx, id)
}

func (d *UserDAO) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	return d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).Update("status", status).Error
}

func (d *UserDAO) SetRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).Update("role", role).Error
}

// DeleteWithPrompts removes the user and all listings they own in one
// transaction. Historical orders referencing those listings are kept.
func (d *UserDAO) DeleteWithPrompts(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", id).Delete(&models.Prompt{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}

func (d *UserDAO) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 100
	}
	var total int64
	if err := d.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := d.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (d *UserDAO) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (d *UserDAO) CountByStatus(ctx context.Context, status models.Status) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("status = ?", status).Count(&n).Error
	return n, err
}

// CountActiveByRole counts active accounts holding a role.
func (d *UserDAO) CountActiveByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND status = ?", role, models.StatusActive).Count(&n).Error
	return n, err
}
