package coupon

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maker-atelier/service-booking/pkg/domain"
)

// Rule rejection constructors. Each failure names the specific rule so the
// storefront can render actionable feedback; only the not-found case stays
// generic to avoid leaking which codes exist.
func ErrCouponNotFound() error {
	return domain.NewBusinessRuleError("coupon_not_found", "coupon not found")
}

func ErrCouponExpired() error {
	return domain.NewBusinessRuleError("coupon_expired", "coupon is expired or not yet active")
}

func ErrBelowMinimumAmount(minimum int64) error {
	return domain.NewBusinessRuleError("below_minimum_amount",
		fmt.Sprintf("a minimum purchase amount of %d yen is required for this coupon", minimum))
}

func ErrUsageLimitReached() error {
	return domain.NewBusinessRuleError("usage_limit_reached", "coupon usage limit has been reached")
}

func ErrWorkshopNotEligible() error {
	return domain.NewBusinessRuleError("workshop_not_eligible", "coupon is not applicable to this workshop")
}

func ErrUserLimitReached() error {
	return domain.NewBusinessRuleError("user_limit_reached", "you have reached the usage limit for this coupon")
}

// Evaluation is the outcome of applying a coupon to a proposed purchase.
type Evaluation struct {
	Coupon         *Coupon
	Amount         int64
	DiscountAmount int64
	FinalAmount    int64
}

// Evaluate decides whether the coupon may be applied to a purchase of the
// given amount for the given workshop, and computes the discount. It is a
// pure function of the coupon snapshot and its arguments; it never mutates
// usage counters.
//
// priorCustomerUses is the number of CouponUsage rows already recorded for
// (coupon, customer); it is only consulted when hasCustomer is true. The
// checks run in a fixed order and the first failure wins, because each check
// assumes the prior ones passed and the user should see the most specific
// actionable reason.
func (c *Coupon) Evaluate(now time.Time, workshopID uuid.UUID, amount int64, priorCustomerUses int, hasCustomer bool) (*Evaluation, error) {
	checks := []struct {
		passes func() bool
		reject func() error
	}{
		{
			passes: func() bool { return c.isActive },
			reject: ErrCouponNotFound,
		},
		{
			// Inclusive window: now == validUntil still passes.
			passes: func() bool {
				if now.Before(c.validFrom) {
					return false
				}
				return c.validUntil == nil || !now.After(*c.validUntil)
			},
			reject: ErrCouponExpired,
		},
		{
			passes: func() bool { return c.minimumAmount == 0 || amount >= c.minimumAmount },
			reject: func() error { return ErrBelowMinimumAmount(c.minimumAmount) },
		},
		{
			passes: func() bool { return c.usageLimit == 0 || c.usageCount < c.usageLimit },
			reject: ErrUsageLimitReached,
		},
		{
			passes: func() bool { return c.appliesToWorkshop(workshopID) },
			reject: ErrWorkshopNotEligible,
		},
		{
			passes: func() bool {
				if !hasCustomer || c.userLimit == 0 {
					return true
				}
				return priorCustomerUses < c.userLimit
			},
			reject: ErrUserLimitReached,
		},
	}

	for _, check := range checks {
		if !check.passes() {
			return nil, check.reject()
		}
	}

	discount := c.discountFor(amount)
	return &Evaluation{
		Coupon:         c,
		Amount:         amount,
		DiscountAmount: discount,
		FinalAmount:    amount - discount,
	}, nil
}

// appliesToWorkshop reports whether the workshop is covered by the coupon's
// allow-list. An empty list means the coupon applies everywhere.
func (c *Coupon) appliesToWorkshop(workshopID uuid.UUID) bool {
	if len(c.workshopIDs) == 0 {
		return true
	}
	for _, id := range c.workshopIDs {
		if id == workshopID {
			return true
		}
	}
	return false
}

// discountFor computes the discount for a purchase amount. Percentage
// discounts round down so the business is never under-charged; fixed-amount
// discounts clamp at the purchase amount so the final amount stays >= 0.
func (c *Coupon) discountFor(amount int64) int64 {
	switch c.discountType {
	case DiscountTypePercentage:
		return amount * c.discountValue / 100
	case DiscountTypeFixedAmount:
		if c.discountValue > amount {
			return amount
		}
		return c.discountValue
	}
	return 0
}
