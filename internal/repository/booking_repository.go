package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/maker-atelier/service-booking/internal/domain/booking"
	"github.com/maker-atelier/service-booking/pkg/domain"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WorkshopID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerID        *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName      string     `gorm:"type:varchar(255);not null"`
	CustomerEmail     string     `gorm:"type:varchar(255);not null"`
	Participants      int        `gorm:"not null"`
	Amount            int64      `gorm:"not null"`
	DiscountAmount    int64      `gorm:"not null;default:0"`
	FinalAmount       int64      `gorm:"not null"`
	CouponID          *uuid.UUID `gorm:"type:uuid"`
	CouponCode        string     `gorm:"type:varchar(50)"`
	Currency          string     `gorm:"type:varchar(3);not null;default:'JPY'"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending'"`
	CheckoutSessionID string     `gorm:"type:varchar(255);index"`
	ConfirmedAt       *time.Time `gorm:"type:timestamptz"`
	CancelledAt       *time.Time `gorm:"type:timestamptz"`
	CancelReason      string     `gorm:"type:text"`
	Version           int64      `gorm:"not null;default:1"`
	CreatedAt         time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt         time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string { return "bookings" }

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GORM-based booking repository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique ID.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, err
	}
	return toBookingDomain(&model), nil
}

// FindByCheckoutSessionID retrieves the booking backing a checkout session.
func (r *GormBookingRepository) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("checkout_session_id = ?", sessionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", sessionID)
		}
		return nil, err
	}
	return toBookingDomain(&model), nil
}

// Save persists a new booking aggregate.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	previousVersion := b.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// ListAll retrieves bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toBookingDomain(&models[i])
	}
	return bookings, total, nil
}

// GetRevenueStats returns confirmed revenue and booking counts by status (admin).
func (r *GormBookingRepository) GetRevenueStats(ctx context.Context) (int64, map[string]int64, error) {
	var totalRevenue int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("status = ?", string(bookingDomain.StatusConfirmed)).
		Select("COALESCE(SUM(final_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return 0, nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return 0, nil, err
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return totalRevenue, counts, nil
}

func toBookingDomain(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(
		m.ID,
		m.WorkshopID,
		m.CustomerID,
		m.CustomerName,
		m.CustomerEmail,
		m.Participants,
		m.Amount,
		m.DiscountAmount,
		m.FinalAmount,
		m.CouponID,
		m.CouponCode,
		m.Currency,
		bookingDomain.Status(m.Status),
		m.CheckoutSessionID,
		m.ConfirmedAt,
		m.CancelledAt,
		m.CancelReason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                b.ID(),
		WorkshopID:        b.WorkshopID(),
		CustomerID:        b.CustomerID(),
		CustomerName:      b.CustomerName(),
		CustomerEmail:     b.CustomerEmail(),
		Participants:      b.Participants(),
		Amount:            b.Amount(),
		DiscountAmount:    b.DiscountAmount(),
		FinalAmount:       b.FinalAmount(),
		CouponID:          b.CouponID(),
		CouponCode:        b.CouponCode(),
		Currency:          b.Currency(),
		Status:            string(b.Status()),
		CheckoutSessionID: b.CheckoutSessionID(),
		ConfirmedAt:       b.ConfirmedAt(),
		CancelledAt:       b.CancelledAt(),
		CancelReason:      b.CancelReason(),
		Version:           b.Version(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}
}
