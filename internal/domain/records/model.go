// Package records holds the clinical history a practice keeps per patient:
// one medical record per patient plus per-visit dental records.
package records

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is the single ongoing health summary for a patient. One is
// created empty at registration and updated in place afterwards.
type MedicalRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Allergies   *string   `db:"allergies" json:"allergies,omitempty"`
	Medications *string   `db:"medications" json:"medications,omitempty"`
	Conditions  *string   `db:"conditions" json:"conditions,omitempty"`
	BloodType   *string   `db:"blood_type" json:"blood_type,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MedicalRecordPatch carries a partial update; nil fields are untouched.
type MedicalRecordPatch struct {
	Allergies   *string `json:"allergies,omitempty"`
	Medications *string `json:"medications,omitempty"`
	Conditions  *string `json:"conditions,omitempty"`
	BloodType   *string `json:"blood_type,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// DentalRecord documents one visit's findings and work.
type DentalRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DentistID   uuid.UUID `db:"dentist_id" json:"dentist_id"`
	VisitDate   time.Time `db:"visit_date" json:"visit_date"`
	Diagnosis   string    `db:"diagnosis" json:"diagnosis"`
	Treatment   *string   `db:"treatment" json:"treatment,omitempty"`
	ToothNumber *int      `db:"tooth_number" json:"tooth_number,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateDentalRecordRequest is the visit entry payload. The dentist is the
// authenticated provider writing the entry.
type CreateDentalRecordRequest struct {
	VisitDate   *time.Time `json:"visit_date,omitempty"`
	Diagnosis   string     `json:"diagnosis"`
	Treatment   *string    `json:"treatment,omitempty"`
	ToothNumber *int       `json:"tooth_number,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}
