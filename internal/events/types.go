package events

import (
	"time"

	"github.com/google/uuid"
)

// EventSource identifies this service in CloudEvent envelopes.
const EventSource = "service-booking"

// Topics.
const (
	// TopicBookingEvents carries booking lifecycle events published by this
	// service; the notification worker builds customer emails from them.
	TopicBookingEvents = "booking.events"

	// TopicProviderEvents carries payment provider webhook events relayed by
	// the webhook receiver.
	TopicProviderEvents = "payment-provider.events"
)

// Event types.
const (
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingExpired   = "booking.expired"

	CheckoutSessionCompleted = "checkout.session.completed"
	CheckoutSessionExpired   = "checkout.session.expired"
)

// BookingConfirmedEvent is published after a paid booking is confirmed.
type BookingConfirmedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	WorkshopID     uuid.UUID `json:"workshop_id"`
	CustomerName   string    `json:"customer_name"`
	CustomerEmail  string    `json:"customer_email"`
	Participants   int       `json:"participants"`
	Amount         int64     `json:"amount"`
	DiscountAmount int64     `json:"discount_amount"`
	FinalAmount    int64     `json:"final_amount"`
	CouponCode     string    `json:"coupon_code,omitempty"`
	Currency       string    `json:"currency"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	WorkshopID    uuid.UUID `json:"workshop_id"`
	CustomerEmail string    `json:"customer_email"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingExpiredEvent is published when a pending booking's checkout session lapses.
type BookingExpiredEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	WorkshopID uuid.UUID `json:"workshop_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CheckoutSessionEvent is the payload of provider webhook events relayed
// onto TopicProviderEvents.
type CheckoutSessionEvent struct {
	SessionID  string    `json:"session_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
