package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/stratus-tools/bug-advisor/internal/models"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

type AdminUserRepo interface {
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	// RecordFailure bumps login_attempts and applies the lockout in a
	// single statement, so concurrent bad logins cannot exceed the
	// threshold before the lock lands.
	RecordFailure(ctx context.Context, id int64, threshold int, lockUntil time.Time) error
	// RecordSuccess resets the attempt counter, clears any lock, and
	// stamps last_login.
	RecordSuccess(ctx context.Context, id int64, at time.Time) error
	// ResetLock clears an elapsed lockout so the next attempt is fresh.
	ResetLock(ctx context.Context, id int64) error
}

type adminUserRepo struct {
	db *gorm.DB
}

func NewAdminUserRepo(db *gorm.DB) AdminUserRepo {
	return &adminUserRepo{db: db}
}

func (r *adminUserRepo) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var row models.AdminUser
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *adminUserRepo) RecordFailure(ctx context.Context, id int64, threshold int, lockUntil time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"login_attempts": gorm.Expr("login_attempts + 1"),
			"locked_until":   gorm.Expr("CASE WHEN login_attempts + 1 >= ? THEN ? ELSE locked_until END", threshold, lockUntil),
		}).Error
}

func (r *adminUserRepo) RecordSuccess(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"login_attempts": 0,
			"locked_until":   nil,
			"last_login":     at,
		}).Error
}

func (r *adminUserRepo) ResetLock(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"login_attempts": 0,
			"locked_until":   nil,
		}).Error
}
