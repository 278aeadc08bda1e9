package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

type stubUserRepo struct {
	users map[string]*domain.User // keyed by api_key_lookup
}

func (r *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
}

func (r *stubUserRepo) GetByAPIKeyLookup(ctx context.Context, lookup string) (*domain.User, error) {
	user, ok := r.users[lookup]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: lookup}
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, &errors.ErrNotFound{Resource: "user", ID: email}
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }

func (r *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return nil
}

func newAuthRouter(t *testing.T, users ...*domain.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		repo.users[u.APIKeyLookup] = u
	}
	repos := &repository.Repositories{User: repo}

	router := gin.New()
	authed := router.Group("", AuthMiddleware(repos, zap.NewNop()))
	authed.GET("/me", func(c *gin.Context) {
		user, _ := GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	admin := authed.Group("/admin", RequireAdmin())
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func makeUser(t *testing.T, apiKey string, role domain.UserRole, active bool) *domain.User {
	t.Helper()
	hash, err := HashAPIKey(apiKey)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		Email:        "u@example.com",
		Role:         role,
		APIKeyHash:   hash,
		APIKeyLookup: LookupHash(apiKey),
		IsActive:     active,
	}
}

func get(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidKey(t *testing.T) {
	user := makeUser(t, "key-123", domain.RoleCustomer, true)
	router := newAuthRouter(t, user)

	w := get(router, "/me", "Bearer key-123")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u@example.com")
}

func TestAuthMiddlewareRejections(t *testing.T) {
	user := makeUser(t, "key-123", domain.RoleCustomer, true)
	router := newAuthRouter(t, user)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic key-123"},
		{"empty key", "Bearer "},
		{"unknown key", "Bearer nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(router, "/me", tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), errors.CodeUnauthorized)
		})
	}
}

func TestAuthMiddlewareRejectsInactiveUser(t *testing.T) {
	user := makeUser(t, "key-off", domain.RoleCustomer, false)
	router := newAuthRouter(t, user)

	w := get(router, "/me", "Bearer key-off")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	customer := makeUser(t, "key-cust", domain.RoleCustomer, true)
	admin := makeUser(t, "key-admin", domain.RoleAdmin, true)
	router := newAuthRouter(t, customer, admin)

	w := get(router, "/admin/ping", "Bearer key-cust")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeForbidden)

	w = get(router, "/admin/ping", "Bearer key-admin")
	assert.Equal(t, http.StatusOK, w.Code)
}
