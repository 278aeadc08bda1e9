package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

const resetTokenTTL = time.Hour

type PasswordResetService struct {
	repos  *repository.Repositories
	mailer Mailer
	logger *zap.Logger
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(repos *repository.Repositories, mailer Mailer, logger *zap.Logger) *PasswordResetService {
	return &PasswordResetService{
		repos:  repos,
		mailer: mailer,
		logger: logger,
	}
}

// RequestReset issues a single-use reset token and emails it to the account.
// Unknown emails are a silent success so the endpoint can't be used to probe
// which addresses have accounts. A mail delivery failure is surfaced: the
// caller would otherwise wait for a code that never arrives.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return errors.Internal("failed to look up account", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return errors.Internal("failed to generate reset token", err)
	}

	reset := &domain.PasswordReset{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: time.Now().Add(resetTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := s.repos.PasswordReset.Create(ctx, reset); err != nil {
		return errors.Internal("failed to store reset token", err)
	}

	if err := s.mailer.Send(user.Email, "Password reset", passwordResetBody(token)); err != nil {
		s.logger.Error("Failed to send password reset email",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return errors.Internal("failed to send reset email", err)
	}

	s.logger.Info("Password reset token issued", zap.String("user_id", user.ID.String()))
	return nil
}

// CompleteReset verifies a reset token and sets the new password. The token
// is consumed on success.
func (s *PasswordResetService) CompleteReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return &errors.ErrValidation{Message: "password must be at least 8 characters"}
	}

	reset, err := s.repos.PasswordReset.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return &errors.ErrValidation{Message: "invalid or expired reset token"}
		}
		return errors.Internal("failed to look up reset token", err)
	}

	if reset.Used || time.Now().After(reset.ExpiresAt) {
		return &errors.ErrValidation{Message: "invalid or expired reset token"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Internal("failed to hash password", err)
	}

	if err := s.repos.User.UpdatePasswordHash(ctx, reset.UserID, string(hash)); err != nil {
		return errors.Internal("failed to update password", err)
	}

	if err := s.repos.PasswordReset.MarkUsed(ctx, reset.ID); err != nil {
		// The password change already took effect; the stale token will age
		// out via expiry.
		s.logger.Warn("Failed to mark reset token used",
			zap.String("reset_id", reset.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Password reset completed", zap.String("user_id", reset.UserID.String()))
	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
