package saga

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maker-atelier/service-booking/internal/adapter"
	bookingDomain "github.com/maker-atelier/service-booking/internal/domain/booking"
	couponDomain "github.com/maker-atelier/service-booking/internal/domain/coupon"
	workshopDomain "github.com/maker-atelier/service-booking/internal/domain/workshop"
	"github.com/maker-atelier/service-booking/internal/events"
	"github.com/maker-atelier/service-booking/pkg/kafka"
)

// CheckoutURLs holds the redirect targets attached to every checkout session.
type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
}

// BookingSagaService orchestrates the multi-step booking workflows:
// checkout creation (booking + provider session) and payment confirmation
// (coupon redemption + seat reservation + confirmation + event).
type BookingSagaService struct {
	bookingRepo  bookingDomain.Repository
	couponRepo   couponDomain.Repository
	workshopRepo workshopDomain.Repository
	checkout     adapter.CheckoutAdapter
	producer     *kafka.Producer
	urls         CheckoutURLs
	logger       *zap.Logger
}

// NewBookingSagaService creates a new BookingSagaService.
func NewBookingSagaService(
	bookingRepo bookingDomain.Repository,
	couponRepo couponDomain.Repository,
	workshopRepo workshopDomain.Repository,
	checkout adapter.CheckoutAdapter,
	producer *kafka.Producer,
	urls CheckoutURLs,
	logger *zap.Logger,
) *BookingSagaService {
	return &BookingSagaService{
		bookingRepo:  bookingRepo,
		couponRepo:   couponRepo,
		workshopRepo: workshopRepo,
		checkout:     checkout,
		producer:     producer,
		urls:         urls,
		logger:       logger,
	}
}

// CreateCheckoutSaga persists a pending booking and opens a hosted checkout
// session for it. On failure the booking is cancelled and any opened session
// expired.
func (s *BookingSagaService) CreateCheckoutSaga(ctx context.Context, b *bookingDomain.Booking, ws *workshopDomain.Workshop) (*adapter.CheckoutSession, error) {
	var session *adapter.CheckoutSession

	sg := New("create_checkout", s.logger)

	sg.AddStep(Step{
		Name: "save_booking",
		Execute: func(ctx context.Context) error {
			return s.bookingRepo.Save(ctx, b)
		},
		Compensate: func(ctx context.Context) error {
			if err := b.Cancel("checkout creation failed"); err != nil {
				return err
			}
			b.IncrementVersion()
			return s.bookingRepo.Update(ctx, b)
		},
	})

	sg.AddStep(Step{
		Name: "create_checkout_session",
		Execute: func(ctx context.Context) error {
			metadata := map[string]string{
				"booking_id":      b.ID().String(),
				"discount_amount": strconv.FormatInt(b.DiscountAmount(), 10),
			}
			if b.CouponID() != nil {
				metadata["coupon_id"] = b.CouponID().String()
			}

			var err error
			session, err = s.checkout.CreateCheckoutSession(ctx, adapter.CreateSessionParams{
				BookingID:     b.ID(),
				WorkshopTitle: ws.Title(),
				Description:   ws.Description(),
				Amount:        b.FinalAmount(),
				Currency:      b.Currency(),
				CustomerEmail: b.CustomerEmail(),
				SuccessURL:    s.urls.SuccessURL,
				CancelURL:     s.urls.CancelURL,
				Metadata:      metadata,
			})
			return err
		},
		Compensate: func(ctx context.Context) error {
			if session != nil {
				return s.checkout.ExpireCheckoutSession(ctx, session.ID)
			}
			return nil
		},
	})

	sg.AddStep(Step{
		Name: "attach_session",
		Execute: func(ctx context.Context) error {
			b.AttachCheckoutSession(session.ID)
			b.IncrementVersion()
			return s.bookingRepo.Update(ctx, b)
		},
	})

	if err := sg.Execute(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// ConfirmBookingSaga finalizes a paid booking: the coupon usage slot is
// consumed atomically, seats are reserved, the booking is confirmed and a
// booking.confirmed event is published. A failure after redemption releases
// the redeemed slot again.
func (s *BookingSagaService) ConfirmBookingSaga(ctx context.Context, b *bookingDomain.Booking) error {
	var (
		ws      *workshopDomain.Workshop
		usageID uuid.UUID
	)

	sg := New("confirm_booking", s.logger)

	if b.CouponID() != nil {
		sg.AddStep(Step{
			Name: "redeem_coupon",
			Execute: func(ctx context.Context) error {
				return s.redeemCoupon(ctx, b, &usageID)
			},
			Compensate: func(ctx context.Context) error {
				return s.couponRepo.ReleaseRedemption(ctx, usageID)
			},
		})
	}

	sg.AddStep(Step{
		Name: "reserve_seats",
		Execute: func(ctx context.Context) error {
			var err error
			ws, err = s.workshopRepo.FindByID(ctx, b.WorkshopID())
			if err != nil {
				return err
			}
			if err := ws.ReserveSeats(b.Participants()); err != nil {
				return err
			}
			return s.workshopRepo.Update(ctx, ws)
		},
		Compensate: func(ctx context.Context) error {
			ws.ReleaseSeats(b.Participants())
			return s.workshopRepo.Update(ctx, ws)
		},
	})

	sg.AddStep(Step{
		Name: "confirm_booking",
		Execute: func(ctx context.Context) error {
			if err := b.Confirm(); err != nil {
				return err
			}
			b.IncrementVersion()
			return s.bookingRepo.Update(ctx, b)
		},
	})

	sg.AddStep(Step{
		Name: "publish_booking_confirmed",
		Execute: func(ctx context.Context) error {
			event := events.BookingConfirmedEvent{
				BookingID:      b.ID(),
				WorkshopID:     b.WorkshopID(),
				CustomerName:   b.CustomerName(),
				CustomerEmail:  b.CustomerEmail(),
				Participants:   b.Participants(),
				Amount:         b.Amount(),
				DiscountAmount: b.DiscountAmount(),
				FinalAmount:    b.FinalAmount(),
				CouponCode:     b.CouponCode(),
				Currency:       b.Currency(),
				OccurredAt:     time.Now().UTC(),
			}
			ce, err := kafka.NewCloudEvent(events.EventSource, events.BookingConfirmed, event)
			if err != nil {
				return err
			}
			return s.producer.PublishEvent(ctx, events.TopicBookingEvents, ce)
		},
	})

	return sg.Execute(ctx)
}

// redeemCoupon re-evaluates the coupon against current data and consumes a
// usage slot. The evaluation here and the one at checkout run through the
// same function, so the two can never disagree on the discount.
func (s *BookingSagaService) redeemCoupon(ctx context.Context, b *bookingDomain.Booking, usageID *uuid.UUID) error {
	c, err := s.couponRepo.FindByID(ctx, *b.CouponID())
	if err != nil {
		return err
	}

	priorUses := 0
	hasCustomer := b.CustomerID() != nil
	if hasCustomer && c.UserLimit() > 0 {
		priorUses, err = s.couponRepo.CountUsageByCustomer(ctx, c.ID(), *b.CustomerID())
		if err != nil {
			return err
		}
	}

	eval, err := c.Evaluate(time.Now().UTC(), b.WorkshopID(), b.Amount(), priorUses, hasCustomer)
	if err != nil {
		return err
	}

	usage := &couponDomain.Usage{
		ID:             uuid.New(),
		CouponID:       c.ID(),
		BookingID:      b.ID(),
		DiscountAmount: eval.DiscountAmount,
		UsedAt:         time.Now().UTC(),
	}
	if hasCustomer {
		usage.CustomerID = *b.CustomerID()
	}

	if err := s.couponRepo.Redeem(ctx, usage); err != nil {
		return err
	}
	*usageID = usage.ID
	return nil
}

