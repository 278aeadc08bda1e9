package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/config"
	"github.com/zahrastore/storeapi/internal/payments"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

type CheckoutService struct {
	repos    *repository.Repositories
	provider payments.Provider
	checkout config.CheckoutConfig
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repos *repository.Repositories, provider payments.Provider, checkout config.CheckoutConfig, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		repos:    repos,
		provider: provider,
		checkout: checkout,
		logger:   logger,
	}
}

// CreateCheckoutSession recomputes cart pricing from the product store and
// opens a payment-provider session. Client-submitted prices are never used.
// The order itself already exists upstream in pending state.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutSessionResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, &errors.ErrValidation{Message: "invalid order_id"}
	}

	lineItems := make([]payments.LineItem, 0, len(req.Items)+1)
	var totalMinor int64
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, &errors.ErrValidation{Message: "invalid product_id: " + item.ProductID}
		}

		// Re-fetch the authoritative product; any missing reference fails
		// the whole request so no partial session is opened.
		product, err := s.repos.Product.GetByID(ctx, productID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				return nil, err
			}
			return nil, errors.Internal("failed to load product for checkout", err)
		}

		unitMinor := toMinorUnits(product.Price)
		lineItems = append(lineItems, payments.LineItem{
			Name:       product.Name,
			UnitAmount: unitMinor,
			Quantity:   int64(item.Quantity),
		})
		totalMinor += unitMinor * int64(item.Quantity)
	}

	if req.Shipping.Price > 0 {
		shippingMinor := toMinorUnits(req.Shipping.Price)
		label := req.Shipping.Label
		if label == "" {
			label = "Shipping"
		}
		lineItems = append(lineItems, payments.LineItem{
			Name:       label,
			UnitAmount: shippingMinor,
			Quantity:   1,
		})
		totalMinor += shippingMinor
	}

	shippingJSON, err := json.Marshal(req.Shipping)
	if err != nil {
		return nil, errors.Internal("failed to serialize shipping selection", err)
	}

	session, err := s.provider.CreateSession(ctx, payments.SessionParams{
		LineItems:  lineItems,
		Currency:   s.checkout.Currency,
		SuccessURL: s.checkout.SuccessURL,
		CancelURL:  s.checkout.CancelURL,
		Metadata: map[string]string{
			"order_id": orderID.String(),
			"user_id":  userID.String(),
			"shipping": string(shippingJSON),
		},
	})
	if err != nil {
		return nil, errors.Internal("failed to create checkout session", err)
	}

	// Payment confirmation locates the order by its stored session id. The
	// session has not been handed to the client yet, so a failed link fails
	// the whole request instead of leaving a payable session no confirmation
	// can ever match.
	if err := s.repos.Order.SetCheckoutSessionID(ctx, orderID, session.ID); err != nil {
		s.logger.Error("Failed to link checkout session to order",
			zap.String("order_id", orderID.String()),
			zap.String("session_id", session.ID),
			zap.Error(err))
		return nil, errors.Internal("failed to link checkout session to order", err)
	}

	s.logger.Info("Checkout session created",
		zap.String("order_id", orderID.String()),
		zap.String("session_id", session.ID),
		zap.Int64("total_minor", totalMinor),
	)

	return &CheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// toMinorUnits converts a decimal price to integer minor currency units,
// rounding half up to the nearest minor unit.
func toMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
