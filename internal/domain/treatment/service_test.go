package treatment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
)

type mockRepo struct {
	plans map[uuid.UUID]*Plan
	steps map[uuid.UUID]*Step

	failStepAfter int // fail CreateStep once this many steps exist; 0 disables
	stepsCreated  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{plans: make(map[uuid.UUID]*Plan), steps: make(map[uuid.UUID]*Step)}
}

func (m *mockRepo) CreatePlan(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	cp.Steps = nil
	m.plans[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) UpdatePlan(ctx context.Context, p *Plan) error {
	if _, ok := m.plans[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	cp.Steps = nil
	m.plans[p.ID] = &cp
	return nil
}

func (m *mockRepo) ListPlans(ctx context.Context, filter ListFilter, limit, offset int) ([]*Plan, int, error) {
	var items []*Plan
	for _, p := range m.plans {
		if filter.PatientID != nil && p.PatientID != *filter.PatientID {
			continue
		}
		if filter.DentistID != nil && p.DentistID != *filter.DentistID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		cp := *p
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (m *mockRepo) CreateStep(ctx context.Context, st *Step) error {
	if m.failStepAfter > 0 && m.stepsCreated >= m.failStepAfter {
		return errors.New("step insert failed")
	}
	m.stepsCreated++
	st.ID = uuid.New()
	cp := *st
	m.steps[st.ID] = &cp
	return nil
}

func (m *mockRepo) GetStep(ctx context.Context, id uuid.UUID) (*Step, error) {
	st, ok := m.steps[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *mockRepo) UpdateStep(ctx context.Context, st *Step) error {
	if _, ok := m.steps[st.ID]; !ok {
		return ErrNotFound
	}
	cp := *st
	m.steps[st.ID] = &cp
	return nil
}

func (m *mockRepo) ListSteps(ctx context.Context, planID uuid.UUID) ([]*Step, error) {
	var items []*Step
	for _, st := range m.steps {
		if st.PlanID == planID {
			cp := *st
			items = append(items, &cp)
		}
	}
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if items[j].StepNumber < items[i].StepNumber {
				items[i], items[j] = items[j], items[i]
			}
		}
	}
	return items, nil
}

func passTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func dentistActor() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: auth.RoleDentist}
}

func threeStepRequest() CreateRequest {
	return CreateRequest{
		PatientID: uuid.New(),
		Title:     "Root canal and crown",
		Steps: []StepInput{
			{Description: "Initial exam"},
			{Description: "Root canal"},
			{Description: "Crown placement"},
		},
	}
}

func TestCreatePlan_NumbersSteps(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passTx)
	actor := dentistActor()

	plan, err := svc.CreatePlan(context.Background(), actor, threeStepRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if plan.Status != StatusPlanned {
		t.Errorf("status = %q, want planned", plan.Status)
	}
	if plan.DentistID != actor.UserID {
		t.Errorf("dentist_id = %s, want the caller", plan.DentistID)
	}
	if len(plan.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(plan.Steps))
	}
	for i, st := range plan.Steps {
		if st.StepNumber != i+1 {
			t.Errorf("step %d numbered %d", i, st.StepNumber)
		}
		if st.Completed {
			t.Errorf("step %d created completed", i)
		}
	}
}

func TestCreatePlan_AdminNamesDentist(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passTx)
	admin := auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}

	req := threeStepRequest()
	_, err := svc.CreatePlan(context.Background(), admin, req)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error without dentist_id, got %v", err)
	}

	dentistID := uuid.New()
	req.DentistID = &dentistID
	plan, err := svc.CreatePlan(context.Background(), admin, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if plan.DentistID != dentistID {
		t.Errorf("dentist_id = %s, want %s", plan.DentistID, dentistID)
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), passTx)
	actor := dentistActor()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"missing patient", CreateRequest{Title: "x", Steps: []StepInput{{Description: "a"}}}},
		{"missing title", CreateRequest{PatientID: uuid.New(), Steps: []StepInput{{Description: "a"}}}},
		{"empty step", CreateRequest{PatientID: uuid.New(), Title: "x", Steps: []StepInput{{Description: ""}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePlan(context.Background(), actor, tt.req)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreatePlan_NoSteps(t *testing.T) {
	svc := NewService(newMockRepo(), passTx)

	plan, err := svc.CreatePlan(context.Background(), dentistActor(), CreateRequest{
		PatientID: uuid.New(),
		Title:     "Monitoring only",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if plan.Status != StatusPlanned {
		t.Errorf("status = %q, want planned", plan.Status)
	}
	if len(plan.Steps) != 0 {
		t.Errorf("steps = %d, want 0", len(plan.Steps))
	}
}

func TestCreatePlan_StepFailurePropagates(t *testing.T) {
	repo := newMockRepo()
	repo.failStepAfter = 2
	svc := NewService(repo, passTx)

	if _, err := svc.CreatePlan(context.Background(), dentistActor(), threeStepRequest()); err == nil {
		t.Fatal("expected error when a step insert fails")
	}
}

func seedPlan(t *testing.T, svc *Service) *Plan {
	t.Helper()
	plan, err := svc.CreatePlan(context.Background(), dentistActor(), threeStepRequest())
	if err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return plan
}

func completeStep(t *testing.T, svc *Service, planID, stepID uuid.UUID) *Plan {
	t.Helper()
	done := true
	plan, err := svc.UpdateStep(context.Background(), planID, stepID, StepPatch{Completed: &done})
	if err != nil {
		t.Fatalf("complete step: %v", err)
	}
	return plan
}

func TestUpdateStep_Cascade(t *testing.T) {
	svc := NewService(newMockRepo(), passTx)
	plan := seedPlan(t, svc)

	// one step done: planned -> in_progress
	updated := completeStep(t, svc, plan.ID, plan.Steps[0].ID)
	if updated.Status != StatusInProgress {
		t.Errorf("after 1/3: status = %q, want in_progress", updated.Status)
	}
	if updated.Steps[0].CompletedDate == nil {
		t.Error("completed step missing completion date")
	}

	// all steps done: -> completed
	completeStep(t, svc, plan.ID, plan.Steps[1].ID)
	updated = completeStep(t, svc, plan.ID, plan.Steps[2].ID)
	if updated.Status != StatusCompleted {
		t.Errorf("after 3/3: status = %q, want completed", updated.Status)
	}
}

func TestUpdateStep_NoDowngrade(t *testing.T) {
	svc := NewService(newMockRepo(), passTx)
	plan := seedPlan(t, svc)

	updated := completeStep(t, svc, plan.ID, plan.Steps[0].ID)
	if updated.Status != StatusInProgress {
		t.Fatalf("setup: status = %q", updated.Status)
	}

	// un-complete the step: zero completed steps, status stays in_progress
	undone := false
	updated, err := svc.UpdateStep(context.Background(), plan.ID, plan.Steps[0].ID, StepPatch{Completed: &undone})
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Errorf("status downgraded to %q; cascade must not move plans backwards", updated.Status)
	}
	if updated.Steps[0].CompletedDate != nil {
		t.Error("completion date not cleared")
	}
}

func TestUpdateStep_SuppliedCompletionDate(t *testing.T) {
	svc := NewService(newMockRepo(), passTx)
	plan := seedPlan(t, svc)

	done := true
	when := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	updated, err := svc.UpdateStep(context.Background(), plan.ID, plan.Steps[0].ID, StepPatch{
		Completed:     &done,
		CompletedDate: &when,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := updated.Steps[0].CompletedDate
	if got == nil || !got.Equal(when) {
		t.Errorf("completed_date = %v, want the supplied %v", got, when)
	}

	// Correcting the date on an already-completed step must not flip
	// anything else.
	later := when.AddDate(0, 0, 1)
	updated, err = svc.UpdateStep(context.Background(), plan.ID, plan.Steps[0].ID, StepPatch{CompletedDate: &later})
	if err != nil {
		t.Fatalf("date-only update: %v", err)
	}
	if !updated.Steps[0].Completed {
		t.Error("step no longer completed after date-only patch")
	}
	if got := updated.Steps[0].CompletedDate; got == nil || !got.Equal(later) {
		t.Errorf("completed_date = %v, want %v", got, later)
	}
}

func TestUpdateStep_WrongPlan(t *testing.T) {
	svc := NewService(newMockRepo(), passTx)
	planA := seedPlan(t, svc)
	planB := seedPlan(t, svc)

	done := true
	_, err := svc.UpdateStep(context.Background(), planA.ID, planB.Steps[0].ID, StepPatch{Completed: &done})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found for step of another plan, got %v", err)
	}

	_, err = svc.UpdateStep(context.Background(), uuid.New(), planA.Steps[0].ID, StepPatch{Completed: &done})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found for unknown plan, got %v", err)
	}
}

func TestGetPlan_Scoping(t *testing.T) {
	svc := NewService(newMockRepo(), passTx)
	plan := seedPlan(t, svc)

	owner := auth.Identity{UserID: plan.PatientID, Role: auth.RolePatient}
	got, err := svc.GetPlan(context.Background(), owner, plan.ID)
	if err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if len(got.Steps) != 3 {
		t.Errorf("steps = %d, want 3", len(got.Steps))
	}

	stranger := auth.Identity{UserID: uuid.New(), Role: auth.RolePatient}
	if _, err := svc.GetPlan(context.Background(), stranger, plan.ID); apperr.KindOf(err) != apperr.KindAccessDenied {
		t.Errorf("expected access denied, got %v", err)
	}
}

func TestUpdatePlan_PartialPatch(t *testing.T) {
	svc := NewService(newMockRepo(), passTx)
	plan := seedPlan(t, svc)

	cost := 1250.0
	updated, err := svc.UpdatePlan(context.Background(), plan.ID, PlanPatch{EstimatedCost: &cost})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.EstimatedCost == nil || *updated.EstimatedCost != cost {
		t.Error("estimated cost not applied")
	}
	if updated.Title != plan.Title {
		t.Error("title changed on partial update")
	}

	bogus := "done"
	_, err = svc.UpdatePlan(context.Background(), plan.ID, PlanPatch{Status: &bogus})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
}

func TestDeriveStatus(t *testing.T) {
	step := func(done bool) *Step { return &Step{Completed: done} }

	tests := []struct {
		name    string
		current string
		steps   []*Step
		want    string
	}{
		{"no steps", StatusPlanned, nil, StatusPlanned},
		{"none done", StatusPlanned, []*Step{step(false), step(false)}, StatusPlanned},
		{"some done", StatusPlanned, []*Step{step(true), step(false)}, StatusInProgress},
		{"all done", StatusInProgress, []*Step{step(true), step(true)}, StatusCompleted},
		{"none done keeps in_progress", StatusInProgress, []*Step{step(false), step(false)}, StatusInProgress},
		{"single done", StatusPlanned, []*Step{step(true)}, StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.current, tt.steps); got != tt.want {
				t.Errorf("DeriveStatus(%q) = %q, want %q", tt.current, got, tt.want)
			}
		})
	}
}
