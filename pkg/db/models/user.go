package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. Every inventory row in the
// system is scoped to exactly one user.
type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email               string     `gorm:"type:text;not null;uniqueIndex"`
	Username            string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash        string     `gorm:"column:password_hash;not null"`
	IsVerified          bool       `gorm:"column:is_verified;not null;default:false"`
	VerificationToken   *string    `gorm:"column:verification_token"`
	ResetToken          *string    `gorm:"column:reset_token"`
	ResetTokenExpiresAt *time.Time `gorm:"column:reset_token_expires_at"`
	LastLoginAt         *time.Time `gorm:"column:last_login_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
