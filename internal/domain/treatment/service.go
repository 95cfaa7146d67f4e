package treatment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
	"github.com/smilecare/smilecare/internal/platform/db"
)

type Service struct {
	repo Repository
	inTx db.TxRunner
}

func NewService(repo Repository, inTx db.TxRunner) *Service {
	return &Service{repo: repo, inTx: inTx}
}

// CreatePlan inserts the plan and all of its steps in one transaction.
// Steps are numbered 1..n in request order; nothing is persisted when any
// insert fails.
func (s *Service) CreatePlan(ctx context.Context, actor auth.Identity, req CreateRequest) (*Plan, error) {
	if req.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if req.Title == "" {
		return nil, apperr.Validation("title is required")
	}
	for i, st := range req.Steps {
		if st.Description == "" {
			return nil, apperr.Validation("step %d: description is required", i+1)
		}
	}

	dentistID := actor.UserID
	if actor.Role == auth.RoleAdmin {
		if req.DentistID == nil {
			return nil, apperr.Validation("dentist_id is required")
		}
		dentistID = *req.DentistID
	}

	plan := &Plan{
		PatientID:     req.PatientID,
		DentistID:     dentistID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        StatusPlanned,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		EstimatedCost: req.EstimatedCost,
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreatePlan(ctx, plan); err != nil {
			return err
		}
		for i, input := range req.Steps {
			step := &Step{
				PlanID:      plan.ID,
				StepNumber:  i + 1,
				Description: input.Description,
				Notes:       input.Notes,
			}
			if err := s.repo.CreateStep(ctx, step); err != nil {
				return err
			}
			plan.Steps = append(plan.Steps, step)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// GetPlan returns a plan with its steps ordered by step number. Patients
// may only see their own plans.
func (s *Service) GetPlan(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Plan, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err == ErrNotFound {
		return nil, apperr.NotFound("treatment plan not found")
	}
	if err != nil {
		return nil, err
	}
	if actor.IsPatient() && plan.PatientID != actor.UserID {
		return nil, apperr.AccessDenied("not your treatment plan")
	}

	plan.Steps, err = s.repo.ListSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans returns plans scoped to the caller.
func (s *Service) ListPlans(ctx context.Context, actor auth.Identity, filter ListFilter, limit, offset int) ([]*Plan, int, error) {
	switch {
	case actor.IsPatient():
		filter.PatientID = &actor.UserID
	case actor.IsProvider():
		filter.DentistID = &actor.UserID
	}
	return s.repo.ListPlans(ctx, filter, limit, offset)
}

// UpdatePlan applies a partial update to plan metadata.
func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, patch PlanPatch) (*Plan, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err == ErrNotFound {
		return nil, apperr.NotFound("treatment plan not found")
	}
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		plan.Title = *patch.Title
	}
	if patch.Description != nil {
		plan.Description = patch.Description
	}
	if patch.Status != nil {
		if !ValidStatus(*patch.Status) {
			return nil, apperr.Validation("invalid status: %s", *patch.Status)
		}
		plan.Status = *patch.Status
	}
	if patch.StartDate != nil {
		plan.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		plan.EndDate = patch.EndDate
	}
	if patch.EstimatedCost != nil {
		plan.EstimatedCost = patch.EstimatedCost
	}

	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// UpdateStep applies a partial update to one step of a plan, then
// recomputes the plan's status from all steps in the same transaction.
// A supplied completion date is stored as given; marking a step complete
// without one stamps the current time, and unmarking clears it.
func (s *Service) UpdateStep(ctx context.Context, planID, stepID uuid.UUID, patch StepPatch) (*Plan, error) {
	var plan *Plan

	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.repo.GetPlan(ctx, planID)
		if err == ErrNotFound {
			return apperr.NotFound("treatment plan not found")
		}
		if err != nil {
			return err
		}

		step, err := s.repo.GetStep(ctx, stepID)
		if err == ErrNotFound || (err == nil && step.PlanID != planID) {
			return apperr.NotFound("step not found in this plan")
		}
		if err != nil {
			return err
		}

		if patch.Description != nil {
			step.Description = *patch.Description
		}
		if patch.Notes != nil {
			step.Notes = patch.Notes
		}
		if patch.Completed != nil && *patch.Completed != step.Completed {
			step.Completed = *patch.Completed
			if !step.Completed {
				step.CompletedDate = nil
			}
		}
		if patch.CompletedDate != nil {
			step.CompletedDate = patch.CompletedDate
		}
		if step.Completed && step.CompletedDate == nil {
			now := time.Now()
			step.CompletedDate = &now
		}

		if err := s.repo.UpdateStep(ctx, step); err != nil {
			return err
		}

		plan.Steps, err = s.repo.ListSteps(ctx, planID)
		if err != nil {
			return err
		}

		if derived := DeriveStatus(plan.Status, plan.Steps); derived != plan.Status {
			plan.Status = derived
			if err := s.repo.UpdatePlan(ctx, plan); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
