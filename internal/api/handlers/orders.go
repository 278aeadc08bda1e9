package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/api/middleware"
	"github.com/zahrastore/storeapi/internal/service"
	"github.com/zahrastore/storeapi/pkg/errors"
	"github.com/zahrastore/storeapi/pkg/response"
)

// HandleCreateOrder handles POST /v1/orders
func HandleCreateOrder(svc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			response.Error(c, &errors.ErrUnauthorized{})
			return
		}

		var req service.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, &errors.ErrValidation{Message: err.Error()})
			return
		}

		result, err := svc.CreateOrder(c.Request.Context(), user.ID, req)
		if err != nil {
			logger.Warn("Failed to create order",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusCreated, result)
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(svc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			response.Error(c, &errors.ErrUnauthorized{})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.Error(c, &errors.ErrValidation{Message: "invalid order id"})
			return
		}

		result, err := svc.GetOrder(c.Request.Context(), user, orderID)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, result)
	}
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(svc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			response.Error(c, &errors.ErrUnauthorized{})
			return
		}

		limit, offset := paginationParams(c)
		orders, err := svc.ListOrders(c.Request.Context(), user.ID, limit, offset)
		if err != nil {
			logger.Error("Failed to list orders",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, orders)
	}
}

func paginationParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
