package records

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
)

type Service struct {
	medical MedicalRecordRepository
	dental  DentalRecordRepository
}

func NewService(medical MedicalRecordRepository, dental DentalRecordRepository) *Service {
	return &Service{medical: medical, dental: dental}
}

// GetMedicalRecord returns a patient's medical record. Patients read only
// their own; staff read any.
func (s *Service) GetMedicalRecord(ctx context.Context, actor auth.Identity, patientID uuid.UUID) (*MedicalRecord, error) {
	if actor.IsPatient() && patientID != actor.UserID {
		return nil, apperr.AccessDenied("not your medical record")
	}
	rec, err := s.medical.GetByPatient(ctx, patientID)
	if err == ErrNotFound {
		return nil, apperr.NotFound("medical record not found")
	}
	return rec, err
}

// UpdateMedicalRecord applies a partial update to a patient's record.
func (s *Service) UpdateMedicalRecord(ctx context.Context, patientID uuid.UUID, patch MedicalRecordPatch) (*MedicalRecord, error) {
	rec, err := s.medical.GetByPatient(ctx, patientID)
	if err == ErrNotFound {
		return nil, apperr.NotFound("medical record not found")
	}
	if err != nil {
		return nil, err
	}

	if patch.Allergies != nil {
		rec.Allergies = patch.Allergies
	}
	if patch.Medications != nil {
		rec.Medications = patch.Medications
	}
	if patch.Conditions != nil {
		rec.Conditions = patch.Conditions
	}
	if patch.BloodType != nil {
		rec.BloodType = patch.BloodType
	}
	if patch.Notes != nil {
		rec.Notes = patch.Notes
	}

	if err := s.medical.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateDentalRecord writes a visit entry authored by the acting provider.
// The visit date defaults to now when omitted.
func (s *Service) CreateDentalRecord(ctx context.Context, actor auth.Identity, patientID uuid.UUID, req CreateDentalRecordRequest) (*DentalRecord, error) {
	if req.Diagnosis == "" {
		return nil, apperr.Validation("diagnosis is required")
	}

	visitDate := time.Now()
	if req.VisitDate != nil {
		visitDate = *req.VisitDate
	}

	rec := &DentalRecord{
		PatientID:   patientID,
		DentistID:   actor.UserID,
		VisitDate:   visitDate,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		ToothNumber: req.ToothNumber,
		Notes:       req.Notes,
	}
	if err := s.dental.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListDentalRecords returns a patient's visit history, newest first.
// Patients read only their own.
func (s *Service) ListDentalRecords(ctx context.Context, actor auth.Identity, patientID uuid.UUID, limit, offset int) ([]*DentalRecord, int, error) {
	if actor.IsPatient() && patientID != actor.UserID {
		return nil, 0, apperr.AccessDenied("not your dental records")
	}
	return s.dental.ListByPatient(ctx, patientID, limit, offset)
}
