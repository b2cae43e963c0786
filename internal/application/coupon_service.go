package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	couponDomain "github.com/maker-atelier/service-booking/internal/domain/coupon"
	"github.com/maker-atelier/service-booking/pkg/domain"
)

// ValidateCouponRequest holds data to validate a coupon against a proposed
// purchase.
type ValidateCouponRequest struct {
	Code       string `json:"code" binding:"required"`
	WorkshopID string `json:"workshopId" binding:"required"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	CustomerID string `json:"customerId"`
}

// CouponSummaryDTO is the coupon subset exposed on successful validation.
type CouponSummaryDTO struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Description   string    `json:"description"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue int64     `json:"discount_value"`
}

// CouponValidationDTO is the result of a successful validation.
type CouponValidationDTO struct {
	Valid          bool             `json:"valid"`
	Coupon         CouponSummaryDTO `json:"coupon"`
	DiscountAmount int64            `json:"discount_amount"`
	FinalAmount    int64            `json:"final_amount"`
}

// CreateCouponRequest holds data to create a coupon (admin).
type CreateCouponRequest struct {
	Code          string   `json:"code" binding:"required"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discount_type" binding:"required"`
	DiscountValue int64    `json:"discount_value" binding:"required"`
	MinimumAmount int64    `json:"minimum_amount"`
	UsageLimit    int      `json:"usage_limit"`
	UserLimit     int      `json:"user_limit"`
	ValidFrom     string   `json:"valid_from" binding:"required"`
	ValidUntil    string   `json:"valid_until"`
	WorkshopIDs   []string `json:"workshop_ids"`
}

// CouponDTO is the full admin representation of a coupon.
type CouponDTO struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	Description   string     `json:"description"`
	IsActive      bool       `json:"is_active"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	MinimumAmount int64      `json:"minimum_amount"`
	UsageLimit    int        `json:"usage_limit"`
	UsageCount    int        `json:"usage_count"`
	UserLimit     int        `json:"user_limit"`
	ValidFrom     time.Time  `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	WorkshopIDs   []string   `json:"workshop_ids,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CouponService handles coupon use cases. Validation is a pure read; usage
// counters move only in the booking confirmation saga.
type CouponService struct {
	repo   couponDomain.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo couponDomain.Repository, logger *zap.Logger) *CouponService {
	return &CouponService{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ValidateCoupon decides whether a coupon may be applied to a proposed
// purchase and computes the discount. It performs no writes.
func (s *CouponService) ValidateCoupon(ctx context.Context, req ValidateCouponRequest) (*CouponValidationDTO, error) {
	workshopID, err := uuid.Parse(req.WorkshopID)
	if err != nil {
		return nil, domain.NewValidationError("invalid workshop ID")
	}
	if req.Amount <= 0 {
		return nil, domain.NewValidationError("amount must be positive")
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, domain.NewValidationError("invalid customer ID")
		}
		customerID = &id
	}

	c, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Intentionally generic so probing cannot reveal which codes exist.
			return nil, couponDomain.ErrCouponNotFound()
		}
		return nil, err
	}

	priorUses := 0
	if customerID != nil && c.UserLimit() > 0 {
		priorUses, err = s.repo.CountUsageByCustomer(ctx, c.ID(), *customerID)
		if err != nil {
			return nil, err
		}
	}

	eval, err := c.Evaluate(s.now(), workshopID, req.Amount, priorUses, customerID != nil)
	if err != nil {
		s.logger.Info("coupon rejected",
			zap.String("code", couponDomain.NormalizeCode(req.Code)),
			zap.String("reason", domain.CodeOf(err)),
		)
		return nil, err
	}

	return &CouponValidationDTO{
		Valid: true,
		Coupon: CouponSummaryDTO{
			ID:            c.ID(),
			Code:          c.Code(),
			Description:   c.Description(),
			DiscountType:  string(c.DiscountType()),
			DiscountValue: c.DiscountValue(),
		},
		DiscountAmount: eval.DiscountAmount,
		FinalAmount:    eval.FinalAmount,
	}, nil
}

// CreateCoupon creates a new coupon (admin only).
func (s *CouponService) CreateCoupon(ctx context.Context, createdBy uuid.UUID, req CreateCouponRequest) (*CouponDTO, error) {
	validFrom, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		return nil, domain.NewValidationError("invalid valid_from format (use RFC3339)")
	}

	var validUntil *time.Time
	if req.ValidUntil != "" {
		t, err := time.Parse(time.RFC3339, req.ValidUntil)
		if err != nil {
			return nil, domain.NewValidationError("invalid valid_until format (use RFC3339)")
		}
		validUntil = &t
	}

	workshopIDs := make([]uuid.UUID, 0, len(req.WorkshopIDs))
	for _, raw := range req.WorkshopIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.NewValidationError("invalid workshop ID in allow-list")
		}
		workshopIDs = append(workshopIDs, id)
	}

	c, err := couponDomain.NewCoupon(
		req.Code,
		req.Description,
		couponDomain.DiscountType(req.DiscountType),
		req.DiscountValue,
		req.MinimumAmount,
		req.UsageLimit,
		req.UserLimit,
		validFrom,
		validUntil,
		workshopIDs,
		createdBy,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("coupon created", zap.String("code", c.Code()))
	return toCouponDTO(c), nil
}

// ListCoupons returns all coupons with pagination (admin).
func (s *CouponService) ListCoupons(ctx context.Context, page, limit int) ([]*CouponDTO, int64, error) {
	coupons, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*CouponDTO, len(coupons))
	for i, c := range coupons {
		dtos[i] = toCouponDTO(c)
	}
	return dtos, total, nil
}

// DeactivateCoupon hides a coupon from evaluation (admin).
func (s *CouponService) DeactivateCoupon(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	c.Deactivate()
	return s.repo.Update(ctx, c)
}

func toCouponDTO(c *couponDomain.Coupon) *CouponDTO {
	ids := make([]string, len(c.WorkshopIDs()))
	for i, id := range c.WorkshopIDs() {
		ids[i] = id.String()
	}
	return &CouponDTO{
		ID:            c.ID(),
		Code:          c.Code(),
		Description:   c.Description(),
		IsActive:      c.IsActive(),
		DiscountType:  string(c.DiscountType()),
		DiscountValue: c.DiscountValue(),
		MinimumAmount: c.MinimumAmount(),
		UsageLimit:    c.UsageLimit(),
		UsageCount:    c.UsageCount(),
		UserLimit:     c.UserLimit(),
		ValidFrom:     c.ValidFrom(),
		ValidUntil:    c.ValidUntil(),
		WorkshopIDs:   ids,
		CreatedAt:     c.CreatedAt(),
	}
}
