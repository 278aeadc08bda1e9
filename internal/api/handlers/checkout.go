package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/api/middleware"
	"github.com/zahrastore/storeapi/internal/service"
	"github.com/zahrastore/storeapi/pkg/errors"
	"github.com/zahrastore/storeapi/pkg/response"
)

// HandleCreateCheckoutSession handles POST /v1/checkout/session
func HandleCreateCheckoutSession(svc *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			response.Error(c, &errors.ErrUnauthorized{})
			return
		}

		var req service.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, &errors.ErrValidation{Message: err.Error()})
			return
		}

		result, err := svc.CreateCheckoutSession(c.Request.Context(), user.ID, req)
		if err != nil {
			logger.Warn("Failed to create checkout session",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusCreated, result)
	}
}

// HandleConfirmPayment handles POST /v1/checkout/confirm
func HandleConfirmPayment(svc *service.PaymentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			response.Error(c, &errors.ErrUnauthorized{})
			return
		}

		var req service.ConfirmPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, &errors.ErrValidation{Message: err.Error()})
			return
		}

		order, err := svc.ConfirmPayment(c.Request.Context(), user.ID, req.SessionID)
		if err != nil {
			logger.Warn("Payment confirmation failed",
				zap.String("user_id", user.ID.String()),
				zap.String("session_id", req.SessionID),
				zap.Error(err))
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, order)
	}
}
