package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
)

type Service struct {
	appts     Repository
	providers ProviderDirectory
	notifier  Notifier
}

func NewService(appts Repository, providers ProviderDirectory, notifier Notifier) *Service {
	return &Service{appts: appts, providers: providers, notifier: notifier}
}

// notifyPatient pushes a booking notice. Notices are best effort; a failed
// push never fails the booking itself.
func (s *Service) notifyPatient(ctx context.Context, appt *Appointment, title, message string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Notify(ctx, appt.PatientID, title, message, appt.ID)
}

// Create books an appointment. Patients always book for themselves; staff
// must name the patient. The booking is rejected with a conflict when its
// interval overlaps any blocking appointment of the provider.
func (s *Service) Create(ctx context.Context, actor auth.Identity, req CreateRequest) (*Appointment, error) {
	var patientID uuid.UUID
	switch {
	case actor.IsPatient():
		patientID = actor.UserID
	case req.PatientID != nil:
		patientID = *req.PatientID
	default:
		return nil, apperr.Validation("patient_id is required")
	}

	if req.DentistID == uuid.Nil {
		return nil, apperr.Validation("dentist_id is required")
	}
	if req.StartTime.IsZero() {
		return nil, apperr.Validation("start_time is required")
	}

	duration := DefaultDurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	if duration <= 0 {
		return nil, apperr.Validation("duration_minutes must be positive")
	}

	if _, err := s.providers.ProviderRole(ctx, req.DentistID); err != nil {
		return nil, err
	}

	end := req.StartTime.Add(time.Duration(duration) * time.Minute)
	busy, err := s.appts.ListBlockingInRange(ctx, req.DentistID, req.StartTime, end)
	if err != nil {
		return nil, err
	}
	if len(busy) > 0 {
		return nil, apperr.Conflict("time slot not available")
	}

	appt := &Appointment{
		PatientID:       patientID,
		DentistID:       req.DentistID,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
		Status:          StatusScheduled,
		Reason:          req.Reason,
		Notes:           req.Notes,
	}
	if err := s.appts.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.notifyPatient(ctx, appt, "Appointment booked",
		fmt.Sprintf("Your appointment on %s has been booked.", appt.StartTime.Format("Jan 2, 2006 at 15:04")))
	return appt, nil
}

// Get returns an appointment; patients may only see their own.
func (s *Service) Get(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err == ErrNotFound {
		return nil, apperr.NotFound("appointment not found")
	}
	if err != nil {
		return nil, err
	}
	if actor.IsPatient() && appt.PatientID != actor.UserID {
		return nil, apperr.AccessDenied("not your appointment")
	}
	return appt, nil
}

// List returns appointments scoped to the caller: patients see their own,
// providers their own schedule, other staff everything.
func (s *Service) List(ctx context.Context, actor auth.Identity, filter ListFilter, limit, offset int) ([]*Appointment, int, error) {
	switch {
	case actor.IsPatient():
		filter.PatientID = &actor.UserID
	case actor.IsProvider():
		filter.DentistID = &actor.UserID
	}
	return s.appts.List(ctx, filter, limit, offset)
}

// AvailableSlots returns the free 30-minute slot starts within the
// provider's working day, ascending.
func (s *Service) AvailableSlots(ctx context.Context, dentistID uuid.UUID, day time.Time) ([]time.Time, error) {
	if _, err := s.providers.ProviderRole(ctx, dentistID); err != nil {
		return nil, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), DayStartHour, 0, 0, 0, day.Location())
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), DayEndHour, 0, 0, 0, day.Location())

	busy, err := s.appts.ListBlockingInRange(ctx, dentistID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := make([]time.Time, 0)
	for start := dayStart; start.Before(dayEnd); start = start.Add(SlotMinutes * time.Minute) {
		end := start.Add(SlotMinutes * time.Minute)
		free := true
		for _, a := range busy {
			if a.Overlaps(start, end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, start)
		}
	}
	return slots, nil
}

// Update applies a partial update. Status changes must follow the
// transition table; moving or resizing the appointment re-checks conflicts
// against the provider's other bookings.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err == ErrNotFound {
		return nil, apperr.NotFound("appointment not found")
	}
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status != appt.Status {
		if !ValidStatus(*patch.Status) {
			return nil, apperr.Validation("invalid status: %s", *patch.Status)
		}
		if !CanTransition(appt.Status, *patch.Status) {
			return nil, apperr.InvalidTransition("cannot move appointment from %s to %s", appt.Status, *patch.Status)
		}
		appt.Status = *patch.Status
	}

	moved := false
	if patch.StartTime != nil {
		appt.StartTime = *patch.StartTime
		moved = true
	}
	if patch.DurationMinutes != nil {
		if *patch.DurationMinutes <= 0 {
			return nil, apperr.Validation("duration_minutes must be positive")
		}
		appt.DurationMinutes = *patch.DurationMinutes
		moved = true
	}
	if patch.Reason != nil {
		appt.Reason = patch.Reason
	}
	if patch.Notes != nil {
		appt.Notes = patch.Notes
	}

	if moved && appt.Blocks() {
		busy, err := s.appts.ListBlockingInRange(ctx, appt.DentistID, appt.StartTime, appt.EndTime())
		if err != nil {
			return nil, err
		}
		for _, other := range busy {
			if other.ID != appt.ID {
				return nil, apperr.Conflict("time slot not available")
			}
		}
	}

	if err := s.appts.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel transitions an appointment to cancelled. Patients may only cancel
// their own.
func (s *Service) Cancel(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err == ErrNotFound {
		return nil, apperr.NotFound("appointment not found")
	}
	if err != nil {
		return nil, err
	}
	if actor.IsPatient() && appt.PatientID != actor.UserID {
		return nil, apperr.AccessDenied("not your appointment")
	}
	if !CanTransition(appt.Status, StatusCancelled) {
		return nil, apperr.InvalidTransition("cannot cancel a %s appointment", appt.Status)
	}

	appt.Status = StatusCancelled
	if err := s.appts.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.notifyPatient(ctx, appt, "Appointment cancelled",
		fmt.Sprintf("Your appointment on %s has been cancelled.", appt.StartTime.Format("Jan 2, 2006 at 15:04")))
	return appt, nil
}
