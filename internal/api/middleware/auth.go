package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
	"github.com/zahrastore/storeapi/pkg/response"
)

const UserContextKey = "user"

// AuthMiddleware authenticates requests using a bearer API key. Keys are
// located by SHA256 lookup hash and verified against the stored bcrypt hash.
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		apiKey := strings.TrimSpace(parts[1])
		if apiKey == "" {
			abortUnauthorized(c, "missing API key")
			return
		}

		user, err := repos.User.GetByAPIKeyLookup(c.Request.Context(), LookupHash(apiKey))
		if err != nil {
			logger.Warn("Failed to authenticate API key", zap.Error(err))
			abortUnauthorized(c, "invalid API key")
			return
		}

		if !VerifyAPIKey(apiKey, user.APIKeyHash) {
			logger.Warn("API key hash mismatch", zap.String("user_id", user.ID.String()))
			abortUnauthorized(c, "invalid API key")
			return
		}

		if !user.IsActive {
			abortUnauthorized(c, "account is inactive")
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// RequireAdmin gates a route group to admin users. Must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			abortUnauthorized(c, "unauthorized")
			return
		}
		if user.Role != domain.RoleAdmin {
			response.Error(c, &errors.ErrForbidden{Message: "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user from the Gin context
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// LookupHash computes the SHA256 lookup hash for an API key. Bcrypt output is
// salted, so the raw key can't be used as a database key directly.
func LookupHash(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// HashAPIKey hashes an API key for storage using bcrypt.
func HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey verifies an API key against a stored bcrypt hash.
func VerifyAPIKey(apiKey, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) == nil
}

func abortUnauthorized(c *gin.Context, message string) {
	response.Error(c, &errors.ErrUnauthorized{Message: message})
	c.Abort()
}
