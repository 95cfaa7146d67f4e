package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no appointment matches the lookup.
var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// ListBlockingInRange returns the provider's blocking appointments whose
	// interval intersects [start, end).
	ListBlockingInRange(ctx context.Context, dentistID uuid.UUID, start, end time.Time) ([]*Appointment, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Appointment, int, error)
}

// ProviderDirectory resolves whether a user can be booked as a provider.
// Implemented by the identity service.
type ProviderDirectory interface {
	ProviderRole(ctx context.Context, id uuid.UUID) (string, error)
}

// Notifier pushes a booking notice to a user. Implemented by the
// notification service; a nil Notifier disables notices.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string, relatedID uuid.UUID) error
}
