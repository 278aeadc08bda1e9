package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/api/middleware"
	"github.com/zahrastore/storeapi/internal/cj"
	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/service"
	"github.com/zahrastore/storeapi/pkg/errors"
	"github.com/zahrastore/storeapi/pkg/response"
)

// UpdateOrderStatusRequest is the admin payload for PATCH /v1/admin/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status          string  `json:"status" binding:"required"`
	TrackingCarrier *string `json:"tracking_carrier"`
	TrackingNumber  *string `json:"tracking_number"`
}

// HandleAdminListOrders handles GET /v1/admin/orders
func HandleAdminListOrders(svc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := paginationParams(c)
		orders, err := svc.ListAllOrders(c.Request.Context(), limit, offset)
		if err != nil {
			logger.Error("Failed to list orders", zap.Error(err))
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, orders)
	}
}

// HandleAdminGetOrder handles GET /v1/admin/orders/:id
func HandleAdminGetOrder(svc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
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

// HandleFulfillOrder handles POST /v1/admin/orders/:id/fulfill
func HandleFulfillOrder(svc *service.FulfillmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.Error(c, &errors.ErrValidation{Message: "invalid order id"})
			return
		}

		order, err := svc.CreateFulfillmentOrder(c.Request.Context(), orderID)
		if err != nil {
			logger.Warn("Fulfillment request failed",
				zap.String("order_id", orderID.String()),
				zap.Error(err))
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusCreated, order)
	}
}

// HandleUpdateOrderStatus handles PATCH /v1/admin/orders/:id/status
func HandleUpdateOrderStatus(svc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.Error(c, &errors.ErrValidation{Message: "invalid order id"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, &errors.ErrValidation{Message: err.Error()})
			return
		}

		if req.TrackingCarrier != nil || req.TrackingNumber != nil {
			if _, err := svc.UpdateTracking(c.Request.Context(), orderID, req.TrackingCarrier, req.TrackingNumber); err != nil {
				response.Error(c, err)
				return
			}
		}

		order, err := svc.UpdateStatus(c.Request.Context(), orderID, domain.OrderStatus(req.Status))
		if err != nil {
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, order)
	}
}

// HandleCJGetOrder handles GET /v1/admin/cj/orders/:id
func HandleCJGetOrder(client *cj.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")
		detail, err := client.GetOrder(c.Request.Context(), orderID)
		if err != nil {
			logger.Warn("CJ order lookup failed",
				zap.String("cj_order_id", orderID),
				zap.Error(err))
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, detail)
	}
}

// HandleCJSearch handles GET /v1/admin/cj/search
func HandleCJSearch(client *cj.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
		minPrice, _ := strconv.ParseFloat(c.Query("min_price"), 64)
		maxPrice, _ := strconv.ParseFloat(c.Query("max_price"), 64)

		result, err := client.SearchProducts(c.Request.Context(), cj.SearchParams{
			Keyword:     c.Query("keyword"),
			CategoryID:  c.Query("category_id"),
			Page:        page,
			Size:        size,
			MinPrice:    minPrice,
			MaxPrice:    maxPrice,
			CountryCode: c.Query("country"),
		})
		if err != nil {
			logger.Warn("CJ product search failed", zap.Error(err))
			response.Error(c, err)
			return
		}

		response.OK(c, http.StatusOK, result)
	}
}
