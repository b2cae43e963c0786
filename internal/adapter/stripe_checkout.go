package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// Ensure StripeCheckoutAdapter implements CheckoutAdapter.
var _ CheckoutAdapter = (*StripeCheckoutAdapter)(nil)

// StripeCheckoutAdapter implements CheckoutAdapter against Stripe Checkout
// Sessions.
type StripeCheckoutAdapter struct {
	client *stripe.Client
	logger *zap.Logger
}

// NewStripeCheckoutAdapter creates a checkout adapter for the given Stripe
// secret key.
func NewStripeCheckoutAdapter(secretKey string, logger *zap.Logger) *StripeCheckoutAdapter {
	return &StripeCheckoutAdapter{
		client: stripe.NewClient(secretKey, nil),
		logger: logger,
	}
}

// CreateCheckoutSession opens a hosted Checkout Session in payment mode.
// JPY is a zero-decimal currency, so UnitAmount carries whole yen.
func (a *StripeCheckoutAdapter) CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error) {
	lineItems := []*stripe.CheckoutSessionCreateLineItemParams{
		{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(params.Currency)),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name:        stripe.String(params.WorkshopTitle),
					Description: stripe.String(params.Description),
				},
				UnitAmount: stripe.Int64(params.Amount),
			},
			Quantity: stripe.Int64(1),
		},
	}

	createParams := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String("payment"),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		CustomerEmail:     stripe.String(params.CustomerEmail),
		ClientReferenceID: stripe.String(params.BookingID.String()),
		Metadata:          params.Metadata,
	}

	session, err := a.client.V1CheckoutSessions.Create(ctx, createParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	a.logger.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.String("booking_id", params.BookingID.String()),
		zap.Int64("amount", params.Amount),
	)

	return toCheckoutSession(session), nil
}

// RetrieveCheckoutSession fetches the session with its payment intent expanded.
func (a *StripeCheckoutAdapter) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionRetrieveParams{
		Expand: []*string{stripe.String("payment_intent")},
	}

	session, err := a.client.V1CheckoutSessions.Retrieve(ctx, sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, err)
	}
	return toCheckoutSession(session), nil
}

// ExpireCheckoutSession invalidates an open session.
func (a *StripeCheckoutAdapter) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	if _, err := a.client.V1CheckoutSessions.Expire(ctx, sessionID, &stripe.CheckoutSessionExpireParams{}); err != nil {
		return fmt.Errorf("failed to expire checkout session %s: %w", sessionID, err)
	}
	return nil
}

func toCheckoutSession(s *stripe.CheckoutSession) *CheckoutSession {
	status := string(s.PaymentStatus)
	if s.Status == stripe.CheckoutSessionStatusExpired {
		status = SessionStatusExpired
	}
	return &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: status,
		AmountTotal:   s.AmountTotal,
		Currency:      strings.ToUpper(string(s.Currency)),
	}
}
