package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("record not found")

type MedicalRecordRepository interface {
	// CreateEmpty inserts a blank record for a new patient. Satisfies
	// identity.MedicalRecordCreator.
	CreateEmpty(ctx context.Context, patientID uuid.UUID) error
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, rec *MedicalRecord) error
}

type DentalRecordRepository interface {
	Create(ctx context.Context, rec *DentalRecord) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DentalRecord, int, error)
}
