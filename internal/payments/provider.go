package payments

import "context"

// PaymentStatusPaid is the provider status that confirms a completed payment.
const PaymentStatusPaid = "paid"

// LineItem is one priced line of a checkout session. UnitAmount is in minor
// currency units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionParams describes a checkout session to open with the provider.
type SessionParams struct {
	LineItems  []LineItem
	Currency   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Session is the provider's record of a checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	Metadata      map[string]string
}

// Provider opens and retrieves payment-provider checkout sessions.
type Provider interface {
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}
