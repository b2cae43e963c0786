package coupon

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maker-atelier/service-booking/pkg/domain"
)

type couponParams struct {
	isActive      bool
	validFrom     time.Time
	validUntil    *time.Time
	minimumAmount int64
	usageLimit    int
	usageCount    int
	discountType  DiscountType
	discountValue int64
	workshopIDs   []uuid.UUID
	userLimit     int
}

func buildCoupon(p couponParams) *Coupon {
	now := time.Now().UTC()
	return Reconstruct(
		uuid.New(), "TESTCODE", "test coupon",
		p.isActive,
		p.validFrom, p.validUntil,
		p.minimumAmount,
		p.usageLimit, p.usageCount,
		p.discountType, p.discountValue,
		p.workshopIDs, p.userLimit,
		uuid.New(), now, now,
	)
}

func activePercentage(value int64) couponParams {
	return couponParams{
		isActive:      true,
		validFrom:     time.Now().UTC().Add(-time.Hour),
		discountType:  DiscountTypePercentage,
		discountValue: value,
	}
}

func TestEvaluate_PercentageDiscount(t *testing.T) {
	c := buildCoupon(activePercentage(10))
	now := time.Now().UTC()

	eval, err := c.Evaluate(now, uuid.New(), 5000, 0, false)
	require.NoError(t, err)
	assert.Equal(t, int64(500), eval.DiscountAmount)
	assert.Equal(t, int64(4500), eval.FinalAmount)
}

func TestEvaluate_PercentageRoundsDown(t *testing.T) {
	c := buildCoupon(activePercentage(10))
	now := time.Now().UTC()

	eval, err := c.Evaluate(now, uuid.New(), 999, 0, false)
	require.NoError(t, err)
	assert.Equal(t, int64(99), eval.DiscountAmount)
	assert.Equal(t, int64(900), eval.FinalAmount)
}

func TestEvaluate_FixedAmountDiscount(t *testing.T) {
	p := activePercentage(0)
	p.discountType = DiscountTypeFixedAmount
	p.discountValue = 1000
	c := buildCoupon(p)
	now := time.Now().UTC()

	eval, err := c.Evaluate(now, uuid.New(), 5000, 0, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), eval.DiscountAmount)
	assert.Equal(t, int64(4000), eval.FinalAmount)
}

func TestEvaluate_FixedAmountClampsAtPurchaseAmount(t *testing.T) {
	p := activePercentage(0)
	p.discountType = DiscountTypeFixedAmount
	p.discountValue = 1000
	c := buildCoupon(p)
	now := time.Now().UTC()

	eval, err := c.Evaluate(now, uuid.New(), 800, 0, false)
	require.NoError(t, err)
	assert.Equal(t, int64(800), eval.DiscountAmount)
	assert.Equal(t, int64(0), eval.FinalAmount)
}

func TestEvaluate_InactiveCouponReportsNotFound(t *testing.T) {
	p := activePercentage(10)
	p.isActive = false
	c := buildCoupon(p)

	_, err := c.Evaluate(time.Now().UTC(), uuid.New(), 5000, 0, false)
	require.Error(t, err)
	assert.Equal(t, "coupon_not_found", domain.CodeOf(err))
}

func TestEvaluate_NotYetActive(t *testing.T) {
	p := activePercentage(10)
	p.validFrom = time.Now().UTC().Add(time.Hour)
	c := buildCoupon(p)

	_, err := c.Evaluate(time.Now().UTC(), uuid.New(), 5000, 0, false)
	require.Error(t, err)
	assert.Equal(t, "coupon_expired", domain.CodeOf(err))
}

func TestEvaluate_ValidUntilIsInclusive(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	p := activePercentage(10)
	p.validFrom = now.Add(-24 * time.Hour)
	p.validUntil = &now
	c := buildCoupon(p)

	// Exactly at the boundary the coupon still applies.
	_, err := c.Evaluate(now, uuid.New(), 5000, 0, false)
	assert.NoError(t, err)

	// One second past the boundary it does not.
	_, err = c.Evaluate(now.Add(time.Second), uuid.New(), 5000, 0, false)
	require.Error(t, err)
	assert.Equal(t, "coupon_expired", domain.CodeOf(err))
}

func TestEvaluate_MinimumAmount(t *testing.T) {
	p := activePercentage(10)
	p.minimumAmount = 3000
	c := buildCoupon(p)
	now := time.Now().UTC()

	_, err := c.Evaluate(now, uuid.New(), 2999, 0, false)
	require.Error(t, err)
	assert.Equal(t, "below_minimum_amount", domain.CodeOf(err))
	assert.Contains(t, err.Error(), "3000")

	// Exactly the minimum qualifies.
	_, err = c.Evaluate(now, uuid.New(), 3000, 0, false)
	assert.NoError(t, err)
}

func TestEvaluate_UsageLimit(t *testing.T) {
	p := activePercentage(10)
	p.usageLimit = 5
	p.usageCount = 5
	c := buildCoupon(p)
	now := time.Now().UTC()

	_, err := c.Evaluate(now, uuid.New(), 5000, 0, false)
	require.Error(t, err)
	assert.Equal(t, "usage_limit_reached", domain.CodeOf(err))

	p.usageCount = 4
	c = buildCoupon(p)
	_, err = c.Evaluate(now, uuid.New(), 5000, 0, false)
	assert.NoError(t, err)
}

func TestEvaluate_ZeroUsageLimitIsUnlimited(t *testing.T) {
	p := activePercentage(10)
	p.usageCount = 100000
	c := buildCoupon(p)

	_, err := c.Evaluate(time.Now().UTC(), uuid.New(), 5000, 0, false)
	assert.NoError(t, err)
}

func TestEvaluate_WorkshopAllowList(t *testing.T) {
	listed := uuid.New()
	other := uuid.New()
	p := activePercentage(10)
	p.workshopIDs = []uuid.UUID{listed}
	c := buildCoupon(p)
	now := time.Now().UTC()

	_, err := c.Evaluate(now, listed, 5000, 0, false)
	assert.NoError(t, err)

	_, err = c.Evaluate(now, other, 5000, 0, false)
	require.Error(t, err)
	assert.Equal(t, "workshop_not_eligible", domain.CodeOf(err))
}

func TestEvaluate_EmptyAllowListAppliesEverywhere(t *testing.T) {
	c := buildCoupon(activePercentage(10))

	_, err := c.Evaluate(time.Now().UTC(), uuid.New(), 5000, 0, false)
	assert.NoError(t, err)
}

func TestEvaluate_UserLimit(t *testing.T) {
	p := activePercentage(10)
	p.userLimit = 1
	c := buildCoupon(p)
	now := time.Now().UTC()

	_, err := c.Evaluate(now, uuid.New(), 5000, 1, true)
	require.Error(t, err)
	assert.Equal(t, "user_limit_reached", domain.CodeOf(err))

	_, err = c.Evaluate(now, uuid.New(), 5000, 0, true)
	assert.NoError(t, err)
}

func TestEvaluate_AnonymousCustomerSkipsUserLimit(t *testing.T) {
	p := activePercentage(10)
	p.userLimit = 1
	c := buildCoupon(p)

	// Guests cannot be tracked, so the per-user limit does not apply.
	_, err := c.Evaluate(time.Now().UTC(), uuid.New(), 5000, 99, false)
	assert.NoError(t, err)
}

func TestEvaluate_FirstFailingCheckWins(t *testing.T) {
	p := activePercentage(10)
	p.isActive = false
	p.validFrom = time.Now().UTC().Add(time.Hour)
	p.minimumAmount = 100000
	c := buildCoupon(p)

	_, err := c.Evaluate(time.Now().UTC(), uuid.New(), 5000, 0, false)
	require.Error(t, err)
	assert.Equal(t, "coupon_not_found", domain.CodeOf(err))
}

func TestEvaluate_DoesNotMutateCoupon(t *testing.T) {
	p := activePercentage(10)
	p.usageLimit = 5
	p.usageCount = 2
	c := buildCoupon(p)
	now := time.Now().UTC()
	workshopID := uuid.New()

	first, err := c.Evaluate(now, workshopID, 5000, 0, false)
	require.NoError(t, err)
	second, err := c.Evaluate(now, workshopID, 5000, 0, false)
	require.NoError(t, err)

	assert.Equal(t, first.DiscountAmount, second.DiscountAmount)
	assert.Equal(t, 2, c.UsageCount())
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "FLAT1000", NormalizeCode("Flat1000"))
}

func TestNewCoupon_Validation(t *testing.T) {
	validFrom := time.Now().UTC()
	createdBy := uuid.New()

	_, err := NewCoupon("", "", DiscountTypePercentage, 10, 0, 0, 0, validFrom, nil, nil, createdBy)
	assert.Error(t, err)

	_, err = NewCoupon("X", "", DiscountType("bogus"), 10, 0, 0, 0, validFrom, nil, nil, createdBy)
	assert.Error(t, err)

	_, err = NewCoupon("X", "", DiscountTypePercentage, 150, 0, 0, 0, validFrom, nil, nil, createdBy)
	assert.Error(t, err)

	before := validFrom.Add(-time.Hour)
	_, err = NewCoupon("X", "", DiscountTypePercentage, 10, 0, 0, 0, validFrom, &before, nil, createdBy)
	assert.Error(t, err)

	c, err := NewCoupon("save10", "spring promo", DiscountTypePercentage, 10, 0, 0, 0, validFrom, nil, nil, createdBy)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", c.Code())
	assert.True(t, c.IsActive())
}
