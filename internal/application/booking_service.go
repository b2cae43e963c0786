package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maker-atelier/service-booking/internal/adapter"
	bookingDomain "github.com/maker-atelier/service-booking/internal/domain/booking"
	couponDomain "github.com/maker-atelier/service-booking/internal/domain/coupon"
	workshopDomain "github.com/maker-atelier/service-booking/internal/domain/workshop"
	"github.com/maker-atelier/service-booking/internal/events"
	"github.com/maker-atelier/service-booking/internal/saga"
	"github.com/maker-atelier/service-booking/pkg/domain"
	"github.com/maker-atelier/service-booking/pkg/kafka"
)

// CreateCheckoutRequest is the DTO for starting a booking with payment.
type CreateCheckoutRequest struct {
	WorkshopID    string `json:"workshop_id" binding:"required"`
	Participants  int    `json:"participants" binding:"required,gt=0"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerID    string `json:"customer_id"`
	CouponCode    string `json:"coupon_code"`
}

// CheckoutDTO is returned after a checkout session is opened.
type CheckoutDTO struct {
	BookingID      uuid.UUID `json:"booking_id"`
	SessionID      string    `json:"session_id"`
	CheckoutURL    string    `json:"checkout_url"`
	Amount         int64     `json:"amount"`
	DiscountAmount int64     `json:"discount_amount"`
	FinalAmount    int64     `json:"final_amount"`
	Currency       string    `json:"currency"`
}

// ConfirmBookingRequest identifies the checkout session to confirm.
type ConfirmBookingRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// BookingDTO is the API representation of a booking.
type BookingDTO struct {
	ID                uuid.UUID  `json:"id"`
	WorkshopID        uuid.UUID  `json:"workshop_id"`
	CustomerName      string     `json:"customer_name"`
	CustomerEmail     string     `json:"customer_email"`
	Participants      int        `json:"participants"`
	Amount            int64      `json:"amount"`
	DiscountAmount    int64      `json:"discount_amount"`
	FinalAmount       int64      `json:"final_amount"`
	CouponCode        string     `json:"coupon_code,omitempty"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	CheckoutSessionID string     `json:"checkout_session_id,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	CancelReason      string     `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalRevenue  int64            `json:"total_revenue"`
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService orchestrates the booking use cases: checkout creation,
// payment confirmation, expiry and cancellation.
type BookingService struct {
	bookingRepo  bookingDomain.Repository
	couponRepo   couponDomain.Repository
	workshopRepo workshopDomain.Repository
	checkout     adapter.CheckoutAdapter
	sagaSvc      *saga.BookingSagaService
	producer     *kafka.Producer
	currency     string
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo bookingDomain.Repository,
	couponRepo couponDomain.Repository,
	workshopRepo workshopDomain.Repository,
	checkout adapter.CheckoutAdapter,
	sagaSvc *saga.BookingSagaService,
	producer *kafka.Producer,
	currency string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		couponRepo:   couponRepo,
		workshopRepo: workshopRepo,
		checkout:     checkout,
		sagaSvc:      sagaSvc,
		producer:     producer,
		currency:     currency,
		logger:       logger,
	}
}

// CreateCheckout validates the purchase, evaluates an optional coupon and
// opens a hosted checkout session for the final amount.
func (s *BookingService) CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CheckoutDTO, error) {
	workshopID, err := uuid.Parse(req.WorkshopID)
	if err != nil {
		return nil, domain.NewValidationError("invalid workshop ID")
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, domain.NewValidationError("invalid customer ID")
		}
		customerID = &id
	}

	ws, err := s.workshopRepo.FindByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if !ws.IsActive() {
		return nil, domain.NewBusinessRuleError("workshop_inactive", "workshop is no longer open for booking")
	}
	if !ws.HasCapacity(req.Participants) {
		return nil, domain.NewBusinessRuleError("workshop_full", "workshop does not have enough remaining seats")
	}

	amount := ws.Price() * int64(req.Participants)

	var (
		discountAmount int64
		couponID       *uuid.UUID
		couponCode     string
	)
	if req.CouponCode != "" {
		eval, err := s.evaluateCoupon(ctx, req.CouponCode, workshopID, amount, customerID)
		if err != nil {
			return nil, err
		}
		discountAmount = eval.DiscountAmount
		id := eval.Coupon.ID()
		couponID = &id
		couponCode = eval.Coupon.Code()
	}

	b, err := bookingDomain.NewBooking(
		workshopID, customerID,
		req.CustomerName, req.CustomerEmail,
		req.Participants,
		amount, discountAmount,
		couponID, couponCode, s.currency,
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("creating checkout",
		zap.String("booking_id", b.ID().String()),
		zap.String("workshop_id", workshopID.String()),
		zap.Int64("final_amount", b.FinalAmount()),
	)

	session, err := s.sagaSvc.CreateCheckoutSaga(ctx, b, ws)
	if err != nil {
		s.logger.Error("failed to create checkout", zap.Error(err))
		return nil, err
	}

	return &CheckoutDTO{
		BookingID:      b.ID(),
		SessionID:      session.ID,
		CheckoutURL:    session.URL,
		Amount:         b.Amount(),
		DiscountAmount: b.DiscountAmount(),
		FinalAmount:    b.FinalAmount(),
		Currency:       b.Currency(),
	}, nil
}

// ConfirmBooking finalizes the booking behind a checkout session once the
// provider reports it paid. Confirming an already-confirmed booking is a
// no-op returning the current state.
func (s *BookingService) ConfirmBooking(ctx context.Context, sessionID string) (*BookingDTO, error) {
	b, err := s.bookingRepo.FindByCheckoutSessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if b.Status() == bookingDomain.StatusConfirmed {
		dto := toBookingDTO(b)
		return &dto, nil
	}
	if b.Status() != bookingDomain.StatusPending {
		return nil, domain.NewInvalidStateError(string(b.Status()), string(bookingDomain.StatusConfirmed))
	}

	session, err := s.checkout.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PaymentStatus != adapter.SessionStatusPaid {
		return nil, domain.NewBusinessRuleError("payment_not_completed", "payment has not been completed for this booking")
	}

	if err := s.sagaSvc.ConfirmBookingSaga(ctx, b); err != nil {
		s.logger.Error("failed to confirm booking",
			zap.String("booking_id", b.ID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	dto := toBookingDTO(b)
	return &dto, nil
}

// ExpireBooking marks the booking behind a lapsed checkout session expired.
func (s *BookingService) ExpireBooking(ctx context.Context, sessionID string) error {
	b, err := s.bookingRepo.FindByCheckoutSessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("no booking for expired session, skipping", zap.String("session_id", sessionID))
			return nil
		}
		return err
	}

	if b.Status() != bookingDomain.StatusPending {
		s.logger.Info("booking not pending, skipping expiry",
			zap.String("booking_id", b.ID().String()),
			zap.String("status", string(b.Status())),
		)
		return nil
	}

	if err := b.Expire(); err != nil {
		return err
	}
	b.IncrementVersion()
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return err
	}

	s.publishLifecycleEvent(ctx, events.BookingExpired, events.BookingExpiredEvent{
		BookingID:  b.ID(),
		WorkshopID: b.WorkshopID(),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// CancelBooking cancels a booking (admin). Seats and the coupon usage slot
// are released when the booking was already confirmed.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	b, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	wasConfirmed := b.Status() == bookingDomain.StatusConfirmed

	if err := b.Cancel(reason); err != nil {
		return nil, err
	}
	b.IncrementVersion()
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	if wasConfirmed {
		if ws, err := s.workshopRepo.FindByID(ctx, b.WorkshopID()); err != nil {
			s.logger.Error("failed to load workshop for seat release",
				zap.Error(err),
				zap.String("workshop_id", b.WorkshopID().String()),
			)
		} else {
			ws.ReleaseSeats(b.Participants())
			if err := s.workshopRepo.Update(ctx, ws); err != nil {
				s.logger.Error("failed to release seats", zap.Error(err))
			}
		}

		if b.CouponID() != nil {
			if err := s.couponRepo.ReleaseRedemptionByBooking(ctx, b.ID()); err != nil {
				s.logger.Error("failed to release coupon redemption",
					zap.Error(err),
					zap.String("booking_id", b.ID().String()),
				)
			}
		}
	}

	s.publishLifecycleEvent(ctx, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:     b.ID(),
		WorkshopID:    b.WorkshopID(),
		CustomerEmail: b.CustomerEmail(),
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	})

	dto := toBookingDTO(b)
	return &dto, nil
}

// GetBooking retrieves a booking by its ID.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// ListAllBookings returns a paginated list of bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookingRepo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate revenue statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	revenue, counts, err := s.bookingRepo.GetRevenueStats(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{
		TotalRevenue:  revenue,
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// evaluateCoupon runs the shared coupon evaluation for the checkout path.
func (s *BookingService) evaluateCoupon(ctx context.Context, code string, workshopID uuid.UUID, amount int64, customerID *uuid.UUID) (*couponDomain.Evaluation, error) {
	c, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, couponDomain.ErrCouponNotFound()
		}
		return nil, err
	}

	priorUses := 0
	if customerID != nil && c.UserLimit() > 0 {
		priorUses, err = s.couponRepo.CountUsageByCustomer(ctx, c.ID(), *customerID)
		if err != nil {
			return nil, err
		}
	}

	return c.Evaluate(time.Now().UTC(), workshopID, amount, priorUses, customerID != nil)
}

func (s *BookingService) publishLifecycleEvent(ctx context.Context, eventType string, payload interface{}) {
	ce, err := kafka.NewCloudEvent(events.EventSource, eventType, payload)
	if err != nil {
		s.logger.Error("failed to build cloud event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, ce); err != nil {
		s.logger.Error("failed to publish booking event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                b.ID(),
		WorkshopID:        b.WorkshopID(),
		CustomerName:      b.CustomerName(),
		CustomerEmail:     b.CustomerEmail(),
		Participants:      b.Participants(),
		Amount:            b.Amount(),
		DiscountAmount:    b.DiscountAmount(),
		FinalAmount:       b.FinalAmount(),
		CouponCode:        b.CouponCode(),
		Currency:          b.Currency(),
		Status:            string(b.Status()),
		CheckoutSessionID: b.CheckoutSessionID(),
		ConfirmedAt:       b.ConfirmedAt(),
		CancelledAt:       b.CancelledAt(),
		CancelReason:      b.CancelReason(),
		CreatedAt:         b.CreatedAt(),
	}
}
