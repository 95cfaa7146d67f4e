package identity

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	ListByRole(ctx context.Context, roles []string, limit, offset int) ([]*User, int, error)
}

// MedicalRecordCreator seeds the empty medical record every new patient gets
// at registration. Implemented by the records repository.
type MedicalRecordCreator interface {
	CreateEmpty(ctx context.Context, patientID uuid.UUID) error
}
