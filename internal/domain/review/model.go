// Package review lets patients rate the dentists who treated them.
package review

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DentistID uuid.UUID `db:"dentist_id" json:"dentist_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateRequest is the review submission payload. Ratings run 1 to 5.
type CreateRequest struct {
	DentistID uuid.UUID `json:"dentist_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
}

// Summary aggregates a dentist's reviews.
type Summary struct {
	DentistID     uuid.UUID `json:"dentist_id"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	Reviews       []*Review `json:"reviews"`
}
