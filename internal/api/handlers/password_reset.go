package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/service"
	"github.com/zahrastore/storeapi/pkg/errors"
	"github.com/zahrastore/storeapi/pkg/response"
)

// RequestResetRequest is the payload for requesting a password reset token.
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ConfirmResetRequest is the payload for completing a password reset.
type ConfirmResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// HandleRequestPasswordReset handles POST /v1/password-reset/request
func HandleRequestPasswordReset(svc *service.PasswordResetService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RequestResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, &errors.ErrValidation{Message: err.Error()})
			return
		}

		if err := svc.RequestReset(c.Request.Context(), req.Email); err != nil {
			logger.Error("Password reset request failed", zap.Error(err))
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, gin.H{"message": "reset email sent if the account exists"})
	}
}

// HandleConfirmPasswordReset handles POST /v1/password-reset/confirm
func HandleConfirmPasswordReset(svc *service.PasswordResetService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, &errors.ErrValidation{Message: err.Error()})
			return
		}

		if err := svc.CompleteReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, gin.H{"message": "password updated"})
	}
}
