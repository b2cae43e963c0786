package workshop

import (
	"time"

	"github.com/google/uuid"

	"github.com/maker-atelier/service-booking/pkg/domain"
)

// Workshop is a bookable class held at the studio. Price is integral yen per
// participant.
type Workshop struct {
	id              uuid.UUID
	slug            string
	title           string
	description     string
	price           int64
	maxParticipants int
	bookedCount     int
	scheduledAt     time.Time
	isActive        bool
	createdAt       time.Time
	updatedAt       time.Time
}

// NewWorkshop creates a new active workshop.
func NewWorkshop(slug, title, description string, price int64, maxParticipants int, scheduledAt time.Time) (*Workshop, error) {
	if slug == "" || title == "" {
		return nil, domain.NewValidationError("slug and title are required")
	}
	if price <= 0 {
		return nil, domain.NewValidationError("price must be positive")
	}
	if maxParticipants <= 0 {
		return nil, domain.NewValidationError("max participants must be positive")
	}

	now := time.Now().UTC()
	return &Workshop{
		id:              uuid.New(),
		slug:            slug,
		title:           title,
		description:     description,
		price:           price,
		maxParticipants: maxParticipants,
		scheduledAt:     scheduledAt,
		isActive:        true,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Workshop from persistence.
func Reconstruct(
	id uuid.UUID,
	slug, title, description string,
	price int64,
	maxParticipants, bookedCount int,
	scheduledAt time.Time,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Workshop {
	return &Workshop{
		id: id, slug: slug, title: title, description: description,
		price: price, maxParticipants: maxParticipants, bookedCount: bookedCount,
		scheduledAt: scheduledAt, isActive: isActive,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// HasCapacity reports whether n more participants fit.
func (w *Workshop) HasCapacity(n int) bool {
	return w.bookedCount+n <= w.maxParticipants
}

// ReserveSeats adds participants to the booked count.
func (w *Workshop) ReserveSeats(n int) error {
	if !w.HasCapacity(n) {
		return domain.NewBusinessRuleError("workshop_full", "workshop does not have enough remaining seats")
	}
	w.bookedCount += n
	w.updatedAt = time.Now().UTC()
	return nil
}

// ReleaseSeats frees participants previously reserved.
func (w *Workshop) ReleaseSeats(n int) {
	w.bookedCount -= n
	if w.bookedCount < 0 {
		w.bookedCount = 0
	}
	w.updatedAt = time.Now().UTC()
}

// UpdateDetails edits the catalogue fields (admin).
func (w *Workshop) UpdateDetails(title, description string, price int64, maxParticipants int, scheduledAt time.Time) error {
	if title == "" {
		return domain.NewValidationError("title is required")
	}
	if price <= 0 {
		return domain.NewValidationError("price must be positive")
	}
	if maxParticipants < w.bookedCount {
		return domain.NewValidationError("max participants cannot be below current bookings")
	}
	w.title = title
	w.description = description
	w.price = price
	w.maxParticipants = maxParticipants
	w.scheduledAt = scheduledAt
	w.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate hides the workshop from the catalogue and blocks new bookings.
func (w *Workshop) Deactivate() {
	w.isActive = false
	w.updatedAt = time.Now().UTC()
}

// Getters.
func (w *Workshop) ID() uuid.UUID          { return w.id }
func (w *Workshop) Slug() string           { return w.slug }
func (w *Workshop) Title() string          { return w.title }
func (w *Workshop) Description() string    { return w.description }
func (w *Workshop) Price() int64           { return w.price }
func (w *Workshop) MaxParticipants() int   { return w.maxParticipants }
func (w *Workshop) BookedCount() int       { return w.bookedCount }
func (w *Workshop) ScheduledAt() time.Time { return w.scheduledAt }
func (w *Workshop) IsActive() bool         { return w.isActive }
func (w *Workshop) CreatedAt() time.Time   { return w.createdAt }
func (w *Workshop) UpdatedAt() time.Time   { return w.updatedAt }
