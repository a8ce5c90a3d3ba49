package port

import (
	"context"

	"github.com/google/uuid"

	"tripfolio/internal/domain"
)

// TripRepository abstracts the persistent store for trips. Save performs a
// conditional update on the trip's version and returns domain.ErrTripConflict
// when another writer got there first; the pipeline treats its in-memory
// merge as discarded in that case.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) error
	GetByID(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error)
	List(ctx context.Context, offset, limit int) ([]domain.Trip, int, error)
	Save(ctx context.Context, trip *domain.Trip) error
	Delete(ctx context.Context, tripID uuid.UUID) error
}
