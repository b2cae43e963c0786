package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	workshopDomain "github.com/maker-atelier/service-booking/internal/domain/workshop"
	"github.com/maker-atelier/service-booking/pkg/domain"
)

// CreateWorkshopRequest holds data to create a workshop (admin).
type CreateWorkshopRequest struct {
	Slug            string `json:"slug" binding:"required"`
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Price           int64  `json:"price" binding:"required,gt=0"`
	MaxParticipants int    `json:"max_participants" binding:"required,gt=0"`
	ScheduledAt     string `json:"scheduled_at" binding:"required"`
}

// UpdateWorkshopRequest holds editable workshop fields (admin).
type UpdateWorkshopRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Price           int64  `json:"price" binding:"required,gt=0"`
	MaxParticipants int    `json:"max_participants" binding:"required,gt=0"`
	ScheduledAt     string `json:"scheduled_at" binding:"required"`
}

// WorkshopDTO is the API representation of a workshop.
type WorkshopDTO struct {
	ID              uuid.UUID `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Price           int64     `json:"price"`
	MaxParticipants int       `json:"max_participants"`
	RemainingSeats  int       `json:"remaining_seats"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	IsActive        bool      `json:"is_active"`
}

// WorkshopService handles workshop catalogue use cases.
type WorkshopService struct {
	repo   workshopDomain.Repository
	logger *zap.Logger
}

// NewWorkshopService creates a new WorkshopService.
func NewWorkshopService(repo workshopDomain.Repository, logger *zap.Logger) *WorkshopService {
	return &WorkshopService{repo: repo, logger: logger}
}

// ListActiveWorkshops returns the public catalogue.
func (s *WorkshopService) ListActiveWorkshops(ctx context.Context) ([]*WorkshopDTO, error) {
	workshops, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*WorkshopDTO, len(workshops))
	for i, w := range workshops {
		dtos[i] = toWorkshopDTO(w)
	}
	return dtos, nil
}

// GetWorkshop retrieves a workshop by ID.
func (s *WorkshopService) GetWorkshop(ctx context.Context, id uuid.UUID) (*WorkshopDTO, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWorkshopDTO(w), nil
}

// CreateWorkshop adds a workshop to the catalogue (admin).
func (s *WorkshopService) CreateWorkshop(ctx context.Context, req CreateWorkshopRequest) (*WorkshopDTO, error) {
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, domain.NewValidationError("invalid scheduled_at format (use RFC3339)")
	}

	w, err := workshopDomain.NewWorkshop(req.Slug, req.Title, req.Description, req.Price, req.MaxParticipants, scheduledAt)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info("workshop created", zap.String("slug", w.Slug()))
	return toWorkshopDTO(w), nil
}

// UpdateWorkshop edits a workshop's catalogue fields (admin).
func (s *WorkshopService) UpdateWorkshop(ctx context.Context, id uuid.UUID, req UpdateWorkshopRequest) (*WorkshopDTO, error) {
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, domain.NewValidationError("invalid scheduled_at format (use RFC3339)")
	}

	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := w.UpdateDetails(req.Title, req.Description, req.Price, req.MaxParticipants, scheduledAt); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return toWorkshopDTO(w), nil
}

// DeactivateWorkshop hides a workshop from the catalogue (admin).
func (s *WorkshopService) DeactivateWorkshop(ctx context.Context, id uuid.UUID) error {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	w.Deactivate()
	return s.repo.Update(ctx, w)
}

func toWorkshopDTO(w *workshopDomain.Workshop) *WorkshopDTO {
	return &WorkshopDTO{
		ID:              w.ID(),
		Slug:            w.Slug(),
		Title:           w.Title(),
		Description:     w.Description(),
		Price:           w.Price(),
		MaxParticipants: w.MaxParticipants(),
		RemainingSeats:  w.MaxParticipants() - w.BookedCount(),
		ScheduledAt:     w.ScheduledAt(),
		IsActive:        w.IsActive(),
	}
}
