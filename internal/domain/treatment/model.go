// Package treatment implements treatment plans and their steps, including
// the atomic plan+steps creation and the step-completion status cascade.
package treatment

import (
	"time"

	"github.com/google/uuid"
)

// Treatment plan statuses.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var validStatuses = map[string]bool{
	StatusPlanned: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true,
}

// ValidStatus reports whether s is a known plan status.
func ValidStatus(s string) bool { return validStatuses[s] }

// Plan maps to the treatment_plans table.
type Plan struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DentistID     uuid.UUID  `db:"dentist_id" json:"dentist_id"`
	Title         string     `db:"title" json:"title"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Status        string     `db:"status" json:"status"`
	StartDate     *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	EstimatedCost *float64   `db:"estimated_cost" json:"estimated_cost,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	Steps []*Step `db:"-" json:"steps,omitempty"`
}

// Step maps to the treatment_steps table. Step numbers are 1-based and
// unique within a plan.
type Step struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PlanID        uuid.UUID  `db:"treatment_plan_id" json:"treatment_plan_id"`
	StepNumber    int        `db:"step_number" json:"step_number"`
	Description   string     `db:"description" json:"description"`
	Completed     bool       `db:"completed" json:"completed"`
	CompletedDate *time.Time `db:"completed_date" json:"completed_date,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// DeriveStatus recomputes a plan's status from its steps: all steps
// completed makes the plan completed, at least one makes it in_progress,
// and none leaves the current status untouched. The cascade never moves a
// plan backwards.
func DeriveStatus(current string, steps []*Step) string {
	if len(steps) == 0 {
		return current
	}
	completed := 0
	for _, st := range steps {
		if st.Completed {
			completed++
		}
	}
	switch {
	case completed == len(steps):
		return StatusCompleted
	case completed > 0:
		return StatusInProgress
	default:
		return current
	}
}

// StepInput is one step of a plan creation request.
type StepInput struct {
	Description string  `json:"description"`
	Notes       *string `json:"notes,omitempty"`
}

// CreateRequest is the plan creation payload. Dentist callers are always
// the plan's dentist; admins name one explicitly.
type CreateRequest struct {
	PatientID     uuid.UUID   `json:"patient_id"`
	DentistID     *uuid.UUID  `json:"dentist_id,omitempty"`
	Title         string      `json:"title"`
	Description   *string     `json:"description,omitempty"`
	StartDate     *time.Time  `json:"start_date,omitempty"`
	EndDate       *time.Time  `json:"end_date,omitempty"`
	EstimatedCost *float64    `json:"estimated_cost,omitempty"`
	Steps         []StepInput `json:"steps"`
}

// PlanPatch carries a partial plan update; nil fields are untouched.
type PlanPatch struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *string    `json:"status,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	EstimatedCost *float64   `json:"estimated_cost,omitempty"`
}

// StepPatch carries a partial step update; nil fields are untouched. A
// supplied completed_date is stored as given; marking a step complete
// without one stamps the current time.
type StepPatch struct {
	Description   *string    `json:"description,omitempty"`
	Completed     *bool      `json:"completed,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// ListFilter narrows plan listings.
type ListFilter struct {
	PatientID *uuid.UUID
	DentistID *uuid.UUID
	Status    *string
}
