package models

import "time"

type AdminUser struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username      string     `gorm:"column:username;type:text;uniqueIndex" json:"username"`
	Email         string     `gorm:"column:email;type:text" json:"email,omitempty"`
	PasswordHash  string     `gorm:"column:password_hash;type:text" json:"-"`
	IsActive      bool       `gorm:"column:is_active" json:"is_active"`
	LoginAttempts int        `gorm:"column:login_attempts" json:"-"`
	LockedUntil   *time.Time `gorm:"column:locked_until;type:timestamptz" json:"-"`
	LastLogin     *time.Time `gorm:"column:last_login;type:timestamptz" json:"last_login,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (AdminUser) TableName() string { return "admin_users" }

// Locked reports whether a lockout is still in force.
func (u *AdminUser) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
