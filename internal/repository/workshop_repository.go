package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	workshopDomain "github.com/maker-atelier/service-booking/internal/domain/workshop"
	"github.com/maker-atelier/service-booking/pkg/domain"
)

// WorkshopModel is the GORM model for the workshops table.
type WorkshopModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug            string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Title           string    `gorm:"type:varchar(255);not null"`
	Description     string    `gorm:"type:text"`
	Price           int64     `gorm:"not null"`
	MaxParticipants int       `gorm:"not null"`
	BookedCount     int       `gorm:"not null;default:0"`
	ScheduledAt     time.Time `gorm:"type:timestamptz;not null"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (WorkshopModel) TableName() string { return "workshops" }

// GormWorkshopRepository implements workshop.Repository using GORM.
type GormWorkshopRepository struct {
	db *gorm.DB
}

// NewGormWorkshopRepository creates a new GormWorkshopRepository.
func NewGormWorkshopRepository(db *gorm.DB) *GormWorkshopRepository {
	return &GormWorkshopRepository{db: db}
}

// Save persists a new workshop.
func (r *GormWorkshopRepository) Save(ctx context.Context, w *workshopDomain.Workshop) error {
	model := toWorkshopModel(w)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists workshop changes.
func (r *GormWorkshopRepository) Update(ctx context.Context, w *workshopDomain.Workshop) error {
	model := toWorkshopModel(w)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByID returns a workshop by ID.
func (r *GormWorkshopRepository) FindByID(ctx context.Context, id uuid.UUID) (*workshopDomain.Workshop, error) {
	var model WorkshopModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Workshop", id.String())
		}
		return nil, err
	}
	return toWorkshopDomain(&model), nil
}

// FindBySlug returns a workshop by its URL slug.
func (r *GormWorkshopRepository) FindBySlug(ctx context.Context, slug string) (*workshopDomain.Workshop, error) {
	var model WorkshopModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Workshop", slug)
		}
		return nil, err
	}
	return toWorkshopDomain(&model), nil
}

// ListActive returns all active workshops ordered by schedule.
func (r *GormWorkshopRepository) ListActive(ctx context.Context) ([]*workshopDomain.Workshop, error) {
	var models []WorkshopModel
	if err := r.db.WithContext(ctx).
		Where("is_active = true").
		Order("scheduled_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	workshops := make([]*workshopDomain.Workshop, len(models))
	for i := range models {
		workshops[i] = toWorkshopDomain(&models[i])
	}
	return workshops, nil
}

// ListAll returns workshops with pagination (admin).
func (r *GormWorkshopRepository) ListAll(ctx context.Context, page, limit int) ([]*workshopDomain.Workshop, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&WorkshopModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []WorkshopModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("scheduled_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	workshops := make([]*workshopDomain.Workshop, len(models))
	for i := range models {
		workshops[i] = toWorkshopDomain(&models[i])
	}
	return workshops, total, nil
}

func toWorkshopModel(w *workshopDomain.Workshop) WorkshopModel {
	return WorkshopModel{
		ID:              w.ID(),
		Slug:            w.Slug(),
		Title:           w.Title(),
		Description:     w.Description(),
		Price:           w.Price(),
		MaxParticipants: w.MaxParticipants(),
		BookedCount:     w.BookedCount(),
		ScheduledAt:     w.ScheduledAt(),
		IsActive:        w.IsActive(),
		CreatedAt:       w.CreatedAt(),
		UpdatedAt:       w.UpdatedAt(),
	}
}

func toWorkshopDomain(m *WorkshopModel) *workshopDomain.Workshop {
	return workshopDomain.Reconstruct(
		m.ID, m.Slug, m.Title, m.Description,
		m.Price, m.MaxParticipants, m.BookedCount,
		m.ScheduledAt, m.IsActive,
		m.CreatedAt, m.UpdatedAt,
	)
}
