package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maker-atelier/service-booking/pkg/domain"
)

// DiscountType represents how a coupon's discount value is interpreted.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

// Coupon is the aggregate root for discount coupons. Amounts are integral
// yen; JPY has no minor unit.
type Coupon struct {
	id            uuid.UUID
	code          string
	description   string
	isActive      bool
	validFrom     time.Time
	validUntil    *time.Time // nil = open-ended
	minimumAmount int64      // 0 = no minimum
	usageLimit    int        // 0 = unlimited
	usageCount    int
	discountType  DiscountType
	discountValue int64
	workshopIDs   []uuid.UUID // empty = applies to all workshops
	userLimit     int         // 0 = unlimited per customer
	createdBy     uuid.UUID
	createdAt     time.Time
	updatedAt     time.Time
}

// NormalizeCode canonicalizes a coupon code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewCoupon creates a new coupon.
func NewCoupon(
	code, description string,
	discountType DiscountType,
	discountValue, minimumAmount int64,
	usageLimit, userLimit int,
	validFrom time.Time,
	validUntil *time.Time,
	workshopIDs []uuid.UUID,
	createdBy uuid.UUID,
) (*Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, domain.NewValidationError("coupon code is required")
	}
	if discountType != DiscountTypePercentage && discountType != DiscountTypeFixedAmount {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid discount type: %s", discountType))
	}
	if discountValue <= 0 {
		return nil, domain.NewValidationError("discount value must be positive")
	}
	if discountType == DiscountTypePercentage && discountValue > 100 {
		return nil, domain.NewValidationError("percentage discount cannot exceed 100")
	}
	if validUntil != nil && validUntil.Before(validFrom) {
		return nil, domain.NewValidationError("valid_until must be after valid_from")
	}
	if minimumAmount < 0 || usageLimit < 0 || userLimit < 0 {
		return nil, domain.NewValidationError("limits must not be negative")
	}

	now := time.Now().UTC()
	return &Coupon{
		id:            uuid.New(),
		code:          code,
		description:   description,
		isActive:      true,
		validFrom:     validFrom,
		validUntil:    validUntil,
		minimumAmount: minimumAmount,
		usageLimit:    usageLimit,
		discountType:  discountType,
		discountValue: discountValue,
		workshopIDs:   workshopIDs,
		userLimit:     userLimit,
		createdBy:     createdBy,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Coupon from persistence.
func Reconstruct(
	id uuid.UUID,
	code, description string,
	isActive bool,
	validFrom time.Time,
	validUntil *time.Time,
	minimumAmount int64,
	usageLimit, usageCount int,
	discountType DiscountType,
	discountValue int64,
	workshopIDs []uuid.UUID,
	userLimit int,
	createdBy uuid.UUID,
	createdAt, updatedAt time.Time,
) *Coupon {
	return &Coupon{
		id: id, code: code, description: description, isActive: isActive,
		validFrom: validFrom, validUntil: validUntil,
		minimumAmount: minimumAmount,
		usageLimit:    usageLimit, usageCount: usageCount,
		discountType: discountType, discountValue: discountValue,
		workshopIDs: workshopIDs, userLimit: userLimit,
		createdBy: createdBy, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Deactivate hides the coupon from evaluation.
func (c *Coupon) Deactivate() {
	c.isActive = false
	c.updatedAt = time.Now().UTC()
}

// Getters.
func (c *Coupon) ID() uuid.UUID              { return c.id }
func (c *Coupon) Code() string               { return c.code }
func (c *Coupon) Description() string        { return c.description }
func (c *Coupon) IsActive() bool             { return c.isActive }
func (c *Coupon) ValidFrom() time.Time       { return c.validFrom }
func (c *Coupon) ValidUntil() *time.Time     { return c.validUntil }
func (c *Coupon) MinimumAmount() int64       { return c.minimumAmount }
func (c *Coupon) UsageLimit() int            { return c.usageLimit }
func (c *Coupon) UsageCount() int            { return c.usageCount }
func (c *Coupon) DiscountType() DiscountType { return c.discountType }
func (c *Coupon) DiscountValue() int64       { return c.discountValue }
func (c *Coupon) WorkshopIDs() []uuid.UUID   { return c.workshopIDs }
func (c *Coupon) UserLimit() int             { return c.userLimit }
func (c *Coupon) CreatedBy() uuid.UUID       { return c.createdBy }
func (c *Coupon) CreatedAt() time.Time       { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time       { return c.updatedAt }
