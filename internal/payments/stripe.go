package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/config"
)

// StripeProvider implements Provider using Stripe Checkout sessions.
type StripeProvider struct {
	logger *zap.Logger
}

// NewStripeProvider creates a new Stripe checkout provider
func NewStripeProvider(cfg config.StripeConfig, logger *zap.Logger) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{
		logger: logger,
	}
}

// CreateSession opens a payment-mode checkout session with per-item line
// descriptors and metadata.
func (p *StripeProvider) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.LineItems))
	for _, item := range params.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(params.Currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sessionParams.Context = ctx
	for k, v := range params.Metadata {
		sessionParams.AddMetadata(k, v)
	}

	s, err := session.New(sessionParams)
	if err != nil {
		p.logger.Error("Failed to create Stripe checkout session", zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	p.logger.Info("Created Stripe checkout session",
		zap.String("session_id", s.ID),
		zap.Int64("amount_total", s.AmountTotal),
	)

	return fromStripeSession(s), nil
}

// GetSession retrieves a checkout session, including its payment status.
func (p *StripeProvider) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx

	s, err := session.Get(sessionID, getParams)
	if err != nil {
		p.logger.Error("Failed to retrieve Stripe checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to retrieve checkout session: %w", err)
	}

	return fromStripeSession(s), nil
}

func fromStripeSession(s *stripe.CheckoutSession) *Session {
	return &Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Metadata:      s.Metadata,
	}
}
