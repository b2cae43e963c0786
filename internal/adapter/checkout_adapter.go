package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session statuses reported by the payment provider.
const (
	SessionStatusOpen    = "open"
	SessionStatusPaid    = "paid"
	SessionStatusExpired = "expired"
)

// CreateSessionParams carries everything needed to open a hosted checkout
// session. Metadata is attached opaquely to the session; the provider never
// validates it.
type CreateSessionParams struct {
	BookingID     uuid.UUID
	WorkshopTitle string
	Description   string
	Amount        int64 // integral yen
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is the provider-side session as seen by this service.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
}

// CheckoutAdapter is the Anti-Corruption Layer interface for the hosted
// checkout provider. It decouples the domain from the external payment API.
type CheckoutAdapter interface {
	// CreateCheckoutSession opens a hosted checkout session the customer is
	// redirected to.
	CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error)

	// RetrieveCheckoutSession fetches the current state of a session.
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// ExpireCheckoutSession invalidates an open session.
	ExpireCheckoutSession(ctx context.Context, sessionID string) error
}

// MockCheckoutAdapter is a development/testing implementation. Sessions it
// creates are immediately reported as paid so the confirm flow can be
// exercised without a provider account.
type MockCheckoutAdapter struct {
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*CheckoutSession
}

// NewMockCheckoutAdapter creates a mock checkout adapter for development.
func NewMockCheckoutAdapter(logger *zap.Logger) *MockCheckoutAdapter {
	return &MockCheckoutAdapter{
		logger:   logger,
		sessions: make(map[string]*CheckoutSession),
	}
}

// CreateCheckoutSession simulates opening a session and returns mock IDs.
func (m *MockCheckoutAdapter) CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error) {
	session := &CheckoutSession{
		ID:            fmt.Sprintf("cs_mock_%s", uuid.New().String()[:8]),
		URL:           fmt.Sprintf("https://checkout.example.com/pay/%s", params.BookingID),
		PaymentStatus: SessionStatusPaid,
		AmountTotal:   params.Amount,
		Currency:      params.Currency,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("[MOCK CHECKOUT] session created",
		zap.String("session_id", session.ID),
		zap.Int64("amount", params.Amount),
		zap.String("currency", params.Currency),
		zap.String("customer_email", params.CustomerEmail),
	)
	return session, nil
}

// RetrieveCheckoutSession returns a previously created mock session.
func (m *MockCheckoutAdapter) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("mock session %s not found", sessionID)
	}
	return session, nil
}

// ExpireCheckoutSession marks a mock session expired.
func (m *MockCheckoutAdapter) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[sessionID]; ok {
		session.PaymentStatus = SessionStatusExpired
	}
	m.logger.Info("[MOCK CHECKOUT] session expired", zap.String("session_id", sessionID))
	return nil
}
