package coupon

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for coupons and the usage ledger.
type Repository interface {
	Save(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	ListAll(ctx context.Context, page, limit int) ([]*Coupon, int64, error)

	// CountUsageByCustomer counts prior redemptions of a coupon by one customer.
	CountUsageByCustomer(ctx context.Context, couponID, customerID uuid.UUID) (int, error)

	// Redeem atomically increments usage_count, guarded by usage_limit, and
	// records the usage in the same transaction. Returns a usage-limit
	// rejection when the guard fails.
	Redeem(ctx context.Context, usage *Usage) error

	// ReleaseRedemption reverses a redemption: decrements usage_count and
	// removes the ledger row. Used as saga compensation.
	ReleaseRedemption(ctx context.Context, usageID uuid.UUID) error

	// ReleaseRedemptionByBooking reverses the redemption recorded against a
	// booking, if any. Used when a confirmed booking is cancelled.
	ReleaseRedemptionByBooking(ctx context.Context, bookingID uuid.UUID) error
}

// Usage is one redemption of a coupon against a confirmed booking.
type Usage struct {
	ID             uuid.UUID
	CouponID       uuid.UUID
	CustomerID     uuid.UUID
	BookingID      uuid.UUID
	DiscountAmount int64
	UsedAt         time.Time
}
