package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/maker-atelier/service-booking/pkg/domain"
)

// Status represents the lifecycle of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Booking is the aggregate root for a workshop booking. Amount fields are
// integral yen: Amount is the undiscounted price, FinalAmount is what the
// customer is charged after the coupon discount.
type Booking struct {
	id                uuid.UUID
	workshopID        uuid.UUID
	customerID        *uuid.UUID
	customerName      string
	customerEmail     string
	participants      int
	amount            int64
	discountAmount    int64
	finalAmount       int64
	couponID          *uuid.UUID
	couponCode        string
	currency          string
	status            Status
	checkoutSessionID string
	confirmedAt       *time.Time
	cancelledAt       *time.Time
	cancelReason      string
	version           int64
	createdAt         time.Time
	updatedAt         time.Time
}

// NewBooking creates a pending booking for a workshop purchase.
func NewBooking(
	workshopID uuid.UUID,
	customerID *uuid.UUID,
	customerName, customerEmail string,
	participants int,
	amount, discountAmount int64,
	couponID *uuid.UUID,
	couponCode, currency string,
) (*Booking, error) {
	if participants <= 0 {
		return nil, domain.NewValidationError("participants must be positive")
	}
	if amount <= 0 {
		return nil, domain.NewValidationError("amount must be positive")
	}
	if discountAmount < 0 || discountAmount > amount {
		return nil, domain.NewValidationError("discount amount out of range")
	}

	now := time.Now().UTC()
	return &Booking{
		id:             uuid.New(),
		workshopID:     workshopID,
		customerID:     customerID,
		customerName:   customerName,
		customerEmail:  customerEmail,
		participants:   participants,
		amount:         amount,
		discountAmount: discountAmount,
		finalAmount:    amount - discountAmount,
		couponID:       couponID,
		couponCode:     couponCode,
		currency:       currency,
		status:         StatusPending,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// AttachCheckoutSession records the payment provider session backing this booking.
func (b *Booking) AttachCheckoutSession(sessionID string) {
	b.checkoutSessionID = sessionID
	b.updatedAt = time.Now().UTC()
}

// Confirm transitions a pending booking to confirmed after payment succeeds.
func (b *Booking) Confirm() error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions a pending or confirmed booking to cancelled.
func (b *Booking) Cancel(reason string) error {
	if b.status != StatusPending && b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelledAt = &now
	b.cancelReason = reason
	b.updatedAt = now
	return nil
}

// Expire marks a pending booking whose checkout session lapsed.
func (b *Booking) Expire() error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), string(StatusExpired))
	}
	b.status = StatusExpired
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// Getters.
func (b *Booking) ID() uuid.UUID             { return b.id }
func (b *Booking) WorkshopID() uuid.UUID     { return b.workshopID }
func (b *Booking) CustomerID() *uuid.UUID    { return b.customerID }
func (b *Booking) CustomerName() string      { return b.customerName }
func (b *Booking) CustomerEmail() string     { return b.customerEmail }
func (b *Booking) Participants() int         { return b.participants }
func (b *Booking) Amount() int64             { return b.amount }
func (b *Booking) DiscountAmount() int64     { return b.discountAmount }
func (b *Booking) FinalAmount() int64        { return b.finalAmount }
func (b *Booking) CouponID() *uuid.UUID      { return b.couponID }
func (b *Booking) CouponCode() string        { return b.couponCode }
func (b *Booking) Currency() string          { return b.currency }
func (b *Booking) Status() Status            { return b.status }
func (b *Booking) CheckoutSessionID() string { return b.checkoutSessionID }
func (b *Booking) ConfirmedAt() *time.Time   { return b.confirmedAt }
func (b *Booking) CancelledAt() *time.Time   { return b.cancelledAt }
func (b *Booking) CancelReason() string      { return b.cancelReason }
func (b *Booking) Version() int64            { return b.version }
func (b *Booking) CreatedAt() time.Time      { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time      { return b.updatedAt }

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(
	id, workshopID uuid.UUID,
	customerID *uuid.UUID,
	customerName, customerEmail string,
	participants int,
	amount, discountAmount, finalAmount int64,
	couponID *uuid.UUID,
	couponCode, currency string,
	status Status,
	checkoutSessionID string,
	confirmedAt, cancelledAt *time.Time,
	cancelReason string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		workshopID:        workshopID,
		customerID:        customerID,
		customerName:      customerName,
		customerEmail:     customerEmail,
		participants:      participants,
		amount:            amount,
		discountAmount:    discountAmount,
		finalAmount:       finalAmount,
		couponID:          couponID,
		couponCode:        couponCode,
		currency:          currency,
		status:            status,
		checkoutSessionID: checkoutSessionID,
		confirmedAt:       confirmedAt,
		cancelledAt:       cancelledAt,
		cancelReason:      cancelReason,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}
