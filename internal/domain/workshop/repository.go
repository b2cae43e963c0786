package workshop

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for workshops.
type Repository interface {
	Save(ctx context.Context, w *Workshop) error
	Update(ctx context.Context, w *Workshop) error
	FindByID(ctx context.Context, id uuid.UUID) (*Workshop, error)
	FindBySlug(ctx context.Context, slug string) (*Workshop, error)
	ListActive(ctx context.Context) ([]*Workshop, error)
	ListAll(ctx context.Context, page, limit int) ([]*Workshop, int64, error)
}
