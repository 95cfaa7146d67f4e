// Package scheduling implements the appointment engine: booking with
// conflict detection, slot availability and the status lifecycle.
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

// DefaultDurationMinutes applies when a booking omits the duration.
const DefaultDurationMinutes = 30

// Working day for slot availability: [09:00, 17:00), 30-minute slots.
const (
	DayStartHour = 9
	DayEndHour   = 17
	SlotMinutes  = 30
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true, StatusNoShow: true,
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool { return validStatuses[s] }

// transitions is the allowed status graph. completed, cancelled and no_show
// are terminal.
var transitions = map[string]map[string]bool{
	StatusScheduled: {
		StatusConfirmed:  true,
		StatusInProgress: true,
		StatusCancelled:  true,
		StatusNoShow:     true,
	},
	StatusConfirmed: {
		StatusInProgress: true,
		StatusCancelled:  true,
		StatusNoShow:     true,
	},
	StatusInProgress: {
		StatusCompleted: true,
	},
}

// CanTransition reports whether an appointment may move from one status to
// another. Same-status "transitions" are not allowed through here; callers
// skip the check when the status is unchanged.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// Appointment maps to the appointments table. Appointments are never
// deleted; cancellation is a status transition.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DentistID       uuid.UUID `db:"dentist_id" json:"dentist_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          string    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// EndTime is the exclusive end of the booked interval.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Blocks reports whether the appointment occupies its provider's time.
// Cancelled and no-show appointments free their interval.
func (a *Appointment) Blocks() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}

// Overlaps reports whether the appointment's interval intersects
// [start, end). Touching intervals do not overlap.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime())
}

// CreateRequest is the booking payload. Patients book for themselves;
// patient_id is only honored for staff callers.
type CreateRequest struct {
	PatientID       *uuid.UUID `json:"patient_id,omitempty"`
	DentistID       uuid.UUID  `json:"dentist_id"`
	StartTime       time.Time  `json:"start_time"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// Patch carries a partial appointment update; nil fields are untouched.
type Patch struct {
	StartTime       *time.Time `json:"start_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Status          *string    `json:"status,omitempty"`
}

// ListFilter narrows appointment listings.
type ListFilter struct {
	PatientID *uuid.UUID
	DentistID *uuid.UUID
	Status    *string
	From      *time.Time
	To        *time.Time
}
