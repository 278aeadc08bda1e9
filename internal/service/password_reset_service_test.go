package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

var resetCodePattern = regexp.MustCompile(`[0-9a-f]{64}`)

func seedAccount(t *testing.T, repos *repository.Repositories) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:       uuid.New(),
		Email:    "ada@example.com",
		Role:     domain.RoleCustomer,
		IsActive: true,
	}
	require.NoError(t, repos.User.Create(context.Background(), user))
	return user
}

func TestRequestResetEmailsToken(t *testing.T) {
	repos := newFakeRepos()
	user := seedAccount(t, repos)
	mailer := &recordingMailer{}
	svc := NewPasswordResetService(repos, mailer, zap.NewNop())

	require.NoError(t, svc.RequestReset(context.Background(), user.Email))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, user.Email, mailer.sent[0].to)
	token := resetCodePattern.FindString(mailer.sent[0].body)
	require.NotEmpty(t, token)

	// Only the hash is stored, never the raw token.
	_, err := repos.PasswordReset.GetByTokenHash(context.Background(), token)
	assert.Error(t, err)
	_, err = repos.PasswordReset.GetByTokenHash(context.Background(), hashResetToken(token))
	assert.NoError(t, err)
}

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	repos := newFakeRepos()
	mailer := &recordingMailer{}
	svc := NewPasswordResetService(repos, mailer, zap.NewNop())

	require.NoError(t, svc.RequestReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mailer.sent)
}

func TestRequestResetMailFailureSurfaces(t *testing.T) {
	repos := newFakeRepos()
	user := seedAccount(t, repos)
	mailer := &recordingMailer{failAll: true}
	svc := NewPasswordResetService(repos, mailer, zap.NewNop())

	err := svc.RequestReset(context.Background(), user.Email)
	require.Error(t, err)
	assert.IsType(t, &errors.ErrInternal{}, err)
}

func TestCompleteResetUpdatesPassword(t *testing.T) {
	repos := newFakeRepos()
	user := seedAccount(t, repos)
	mailer := &recordingMailer{}
	svc := NewPasswordResetService(repos, mailer, zap.NewNop())

	require.NoError(t, svc.RequestReset(context.Background(), user.Email))
	token := resetCodePattern.FindString(mailer.sent[0].body)

	require.NoError(t, svc.CompleteReset(context.Background(), token, "hunter2hunter2"))

	stored, err := repos.User.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")))

	// Token is single-use.
	err = svc.CompleteReset(context.Background(), token, "anotherpassword")
	require.Error(t, err)
	assert.IsType(t, &errors.ErrValidation{}, err)
}

func TestCompleteResetRejectsExpiredToken(t *testing.T) {
	repos := newFakeRepos()
	user := seedAccount(t, repos)
	svc := NewPasswordResetService(repos, &recordingMailer{}, zap.NewNop())

	token, err := generateResetToken()
	require.NoError(t, err)
	require.NoError(t, repos.PasswordReset.Create(context.Background(), &domain.PasswordReset{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	err = svc.CompleteReset(context.Background(), token, "hunter2hunter2")
	require.Error(t, err)
	assert.IsType(t, &errors.ErrValidation{}, err)
}

func TestCompleteResetRejectsShortPassword(t *testing.T) {
	repos := newFakeRepos()
	svc := NewPasswordResetService(repos, &recordingMailer{}, zap.NewNop())

	err := svc.CompleteReset(context.Background(), "whatever", "short")
	require.Error(t, err)
	assert.IsType(t, &errors.ErrValidation{}, err)
}

func TestCompleteResetUnknownToken(t *testing.T) {
	repos := newFakeRepos()
	svc := NewPasswordResetService(repos, &recordingMailer{}, zap.NewNop())

	err := svc.CompleteReset(context.Background(), "bogus-token", "hunter2hunter2")
	require.Error(t, err)
	assert.IsType(t, &errors.ErrValidation{}, err)
}
