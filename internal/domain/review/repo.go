package review

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Review, int, error)
	AverageByDentist(ctx context.Context, dentistID uuid.UUID) (float64, int, error)
}
