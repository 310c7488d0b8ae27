package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocktally-backend/internal/users"
	pkgerrors "stocktally-backend/pkg/errors"
	"stocktally-backend/pkg/security"
)

// resetTokenTTL bounds how long a password reset token stays redeemable.
const resetTokenTTL = time.Hour

// ForgotPasswordRequest asks for a password reset token to be issued.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest redeems a reset token for a new password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// VerifyEmail redeems a verification token and marks the account verified.
func (s *registerService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification token is required")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		user, err := userRepo.FindByVerificationToken(ctx, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invalid verification token")
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up verification token")
		}

		if err := userRepo.MarkVerified(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark user verified")
		}
		return nil
	})
}

// ForgotPassword issues a time-limited reset token for the account. The
// response is identical whether or not the email exists, so the endpoint
// cannot be used to enumerate accounts. Like the verification token, the
// reset token is only persisted; nothing delivers it today.
func (s *registerService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		user, err := userRepo.FindByEmail(ctx, email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up user email")
		}

		token := uuid.NewString()
		expiresAt := time.Now().UTC().Add(resetTokenTTL)
		if err := userRepo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
		}
		return nil
	})
}

// ResetPassword validates the reset token and replaces the password hash.
// The token is single-use: a successful reset clears it.
func (s *registerService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset token is required")
	}

	passwordHash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		user, err := userRepo.FindByResetToken(ctx, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invalid reset token")
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up reset token")
		}

		if user.ResetTokenExpiresAt == nil || time.Now().UTC().After(*user.ResetTokenExpiresAt) {
			return pkgerrors.New(pkgerrors.CodeValidation, "reset token expired")
		}

		if err := userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
		}
		return nil
	})
}
