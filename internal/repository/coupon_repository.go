package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	couponDomain "github.com/maker-atelier/service-booking/internal/domain/coupon"
	"github.com/maker-atelier/service-booking/pkg/domain"
)

// CouponModel is the GORM model for the coupons table.
type CouponModel struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Code          string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	Description   string         `gorm:"type:text"`
	IsActive      bool           `gorm:"not null;default:true"`
	ValidFrom     time.Time      `gorm:"type:timestamptz;not null"`
	ValidUntil    *time.Time     `gorm:"type:timestamptz"`
	MinimumAmount int64          `gorm:"default:0"`
	UsageLimit    int            `gorm:"default:0"`
	UsageCount    int            `gorm:"default:0"`
	DiscountType  string         `gorm:"type:varchar(20);not null"`
	DiscountValue int64          `gorm:"not null"`
	WorkshopIDs   pq.StringArray `gorm:"type:text[]"`
	UserLimit     int            `gorm:"default:0"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;not null"`
	CreatedAt     time.Time      `gorm:"type:timestamptz;not null"`
	UpdatedAt     time.Time      `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (CouponModel) TableName() string { return "coupons" }

// CouponUsageModel is the GORM model for the coupon_usages ledger.
type CouponUsageModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CouponID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	BookingID      uuid.UUID `gorm:"type:uuid;not null"`
	DiscountAmount int64     `gorm:"not null"`
	UsedAt         time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (CouponUsageModel) TableName() string { return "coupon_usages" }

// GormCouponRepository implements coupon.Repository using GORM.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository.
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// Save persists a new coupon.
func (r *GormCouponRepository) Save(ctx context.Context, c *couponDomain.Coupon) error {
	model := toCouponModel(c)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists coupon changes.
func (r *GormCouponRepository) Update(ctx context.Context, c *couponDomain.Coupon) error {
	model := toCouponModel(c)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByCode returns a coupon by its normalized code.
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*couponDomain.Coupon, error) {
	var model CouponModel
	if err := r.db.WithContext(ctx).Where("code = ?", couponDomain.NormalizeCode(code)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Coupon", code)
		}
		return nil, err
	}
	return toCouponDomain(&model), nil
}

// FindByID returns a coupon by ID.
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*couponDomain.Coupon, error) {
	var model CouponModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Coupon", id.String())
		}
		return nil, err
	}
	return toCouponDomain(&model), nil
}

// ListAll returns coupons with pagination (admin).
func (r *GormCouponRepository) ListAll(ctx context.Context, page, limit int) ([]*couponDomain.Coupon, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&CouponModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []CouponModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	coupons := make([]*couponDomain.Coupon, len(models))
	for i := range models {
		coupons[i] = toCouponDomain(&models[i])
	}
	return coupons, total, nil
}

// CountUsageByCustomer counts prior redemptions by one customer.
func (r *GormCouponRepository) CountUsageByCustomer(ctx context.Context, couponID, customerID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&CouponUsageModel{}).
		Where("coupon_id = ? AND customer_id = ?", couponID, customerID).
		Count(&count).Error
	return int(count), err
}

// Redeem consumes one usage slot and records the redemption in a single
// transaction. The conditional update is the guard against two concurrent
// redemptions both observing usage_count below the limit.
func (r *GormCouponRepository) Redeem(ctx context.Context, usage *couponDomain.Usage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&CouponModel{}).
			Where("id = ? AND is_active = true AND (usage_limit = 0 OR usage_count < usage_limit)", usage.CouponID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// The coupon was re-read before redemption, so a zero here means
			// the last slot went to a concurrent redemption.
			return couponDomain.ErrUsageLimitReached()
		}

		model := CouponUsageModel{
			ID:             usage.ID,
			CouponID:       usage.CouponID,
			CustomerID:     usage.CustomerID,
			BookingID:      usage.BookingID,
			DiscountAmount: usage.DiscountAmount,
			UsedAt:         usage.UsedAt,
		}
		return tx.Create(&model).Error
	})
}

// ReleaseRedemption reverses a redemption as saga compensation.
func (r *GormCouponRepository) ReleaseRedemption(ctx context.Context, usageID uuid.UUID) error {
	return r.releaseUsage(ctx, "id = ?", usageID)
}

// ReleaseRedemptionByBooking reverses the redemption recorded against a
// booking, if any.
func (r *GormCouponRepository) ReleaseRedemptionByBooking(ctx context.Context, bookingID uuid.UUID) error {
	return r.releaseUsage(ctx, "booking_id = ?", bookingID)
}

func (r *GormCouponRepository) releaseUsage(ctx context.Context, query string, arg uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var usage CouponUsageModel
		if err := tx.Where(query, arg).First(&usage).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // already released
			}
			return err
		}

		if err := tx.Delete(&CouponUsageModel{}, "id = ?", usage.ID).Error; err != nil {
			return err
		}

		return tx.Model(&CouponModel{}).
			Where("id = ? AND usage_count > 0", usage.CouponID).
			UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error
	})
}

func toCouponModel(c *couponDomain.Coupon) CouponModel {
	ids := make(pq.StringArray, len(c.WorkshopIDs()))
	for i, id := range c.WorkshopIDs() {
		ids[i] = id.String()
	}
	return CouponModel{
		ID:            c.ID(),
		Code:          c.Code(),
		Description:   c.Description(),
		IsActive:      c.IsActive(),
		ValidFrom:     c.ValidFrom(),
		ValidUntil:    c.ValidUntil(),
		MinimumAmount: c.MinimumAmount(),
		UsageLimit:    c.UsageLimit(),
		UsageCount:    c.UsageCount(),
		DiscountType:  string(c.DiscountType()),
		DiscountValue: c.DiscountValue(),
		WorkshopIDs:   ids,
		UserLimit:     c.UserLimit(),
		CreatedBy:     c.CreatedBy(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func toCouponDomain(m *CouponModel) *couponDomain.Coupon {
	ids := make([]uuid.UUID, 0, len(m.WorkshopIDs))
	for _, s := range m.WorkshopIDs {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return couponDomain.Reconstruct(
		m.ID, m.Code, m.Description, m.IsActive,
		m.ValidFrom, m.ValidUntil,
		m.MinimumAmount,
		m.UsageLimit, m.UsageCount,
		couponDomain.DiscountType(m.DiscountType), m.DiscountValue,
		ids, m.UserLimit,
		m.CreatedBy, m.CreatedAt, m.UpdatedAt,
	)
}
