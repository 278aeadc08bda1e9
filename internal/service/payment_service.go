package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/payments"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

type PaymentService struct {
	repos    *repository.Repositories
	provider payments.Provider
	mailer   Mailer
	logger   *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(repos *repository.Repositories, provider payments.Provider, mailer Mailer, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		repos:    repos,
		provider: provider,
		mailer:   mailer,
		logger:   logger,
	}
}

// ConfirmPayment verifies a completed provider session and transitions the
// local order to paid. Repeated calls for an already-paid order are a
// success-shaped no-op so clients can safely retry.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID uuid.UUID, sessionID string) (*domain.Order, error) {
	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		return nil, errors.Internal("failed to retrieve payment session", err)
	}

	if session.PaymentStatus != payments.PaymentStatusPaid {
		return nil, &errors.ErrPaymentNotConfirmed{SessionID: sessionID, Status: session.PaymentStatus}
	}

	order, err := s.repos.Order.GetByCheckoutSessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, &errors.ErrForbidden{Message: "order does not belong to caller"}
	}

	// Already processed: don't touch state or resend the confirmation email.
	if order.PaymentStatus == domain.PaymentStatusPaid {
		s.logger.Info("Payment already confirmed, skipping",
			zap.String("order_id", order.ID.String()),
			zap.String("session_id", sessionID))
		return order, nil
	}

	if err := s.repos.Order.MarkPaid(ctx, order.ID); err != nil {
		return nil, errors.Internal("failed to mark order paid", err)
	}
	order.PaymentStatus = domain.PaymentStatusPaid
	order.Status = domain.OrderStatusProcessing
	order.EmailSent = false

	// Payment truth already changed; email failure must never fail the
	// confirmation response.
	s.sendConfirmationEmail(ctx, order)

	return order, nil
}

func (s *PaymentService) sendConfirmationEmail(ctx context.Context, order *domain.Order) {
	user, err := s.repos.User.GetByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("Confirmation email skipped: user lookup failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return
	}

	items, err := s.repos.OrderItem.GetByOrderID(ctx, order.ID)
	if err != nil {
		s.logger.Warn("Confirmation email skipped: items lookup failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return
	}

	if err := s.mailer.Send(user.Email, "Your order is confirmed", orderConfirmationBody(order, items)); err != nil {
		s.logger.Warn("Failed to send order confirmation email",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return
	}

	if err := s.repos.Order.SetEmailSent(ctx, order.ID, true); err != nil {
		s.logger.Warn("Failed to record email sent flag",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return
	}
	order.EmailSent = true
}
