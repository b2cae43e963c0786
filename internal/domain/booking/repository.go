package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for Booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCheckoutSessionID retrieves the booking backing a checkout session.
	FindByCheckoutSessionID(ctx context.Context, sessionID string) (*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// GetRevenueStats returns confirmed revenue and booking counts by status (admin).
	GetRevenueStats(ctx context.Context) (totalRevenue int64, countByStatus map[string]int64, err error)

	// Save persists a new booking aggregate.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes with optimistic locking on the version column.
	Update(ctx context.Context, b *Booking) error
}
