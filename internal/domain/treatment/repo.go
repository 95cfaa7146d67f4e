package treatment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no plan or step matches the lookup.
var ErrNotFound = errors.New("treatment not found")

type Repository interface {
	CreatePlan(ctx context.Context, p *Plan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error)
	UpdatePlan(ctx context.Context, p *Plan) error
	ListPlans(ctx context.Context, filter ListFilter, limit, offset int) ([]*Plan, int, error)

	CreateStep(ctx context.Context, st *Step) error
	GetStep(ctx context.Context, id uuid.UUID) (*Step, error)
	UpdateStep(ctx context.Context, st *Step) error
	ListSteps(ctx context.Context, planID uuid.UUID) ([]*Step, error)
}
