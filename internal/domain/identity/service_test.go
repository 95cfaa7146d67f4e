package identity

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
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(ctx context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) ListByRole(ctx context.Context, roles []string, limit, offset int) ([]*User, int, error) {
	var items []*User
	for _, u := range m.users {
		for _, role := range roles {
			if u.Role == role {
				cp := *u
				items = append(items, &cp)
			}
		}
	}
	return items, len(items), nil
}

type mockRecords struct {
	created []uuid.UUID
	fail    error
}

func (m *mockRecords) CreateEmpty(ctx context.Context, patientID uuid.UUID) error {
	if m.fail != nil {
		return m.fail
	}
	m.created = append(m.created, patientID)
	return nil
}

func passTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo Repository, records MedicalRecordCreator) *Service {
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewService(repo, records, issuer, passTx)
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Email:     "jane@example.test",
		Password:  "longenough",
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

func TestRegister_CreatesPatientWithRecord(t *testing.T) {
	repo := newMockRepo()
	records := &mockRecords{}
	svc := newTestService(repo, records)

	resp, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Role != auth.RolePatient {
		t.Errorf("role = %q, want patient", resp.User.Role)
	}
	if len(records.created) != 1 || records.created[0] != resp.User.ID {
		t.Errorf("expected a medical record for the new patient, got %v", records.created)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockRecords{})

	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), registerReq())
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockRecords{})

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "longenough", FirstName: "A", LastName: "B"}},
		{"missing password", RegisterRequest{Email: "a@b.test", FirstName: "A", LastName: "B"}},
		{"short password", RegisterRequest{Email: "a@b.test", Password: "short", FirstName: "A", LastName: "B"}},
		{"missing name", RegisterRequest{Email: "a@b.test", Password: "longenough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegister_RecordFailureAborts(t *testing.T) {
	repo := newMockRepo()
	records := &mockRecords{fail: errors.New("insert failed")}
	svc := newTestService(repo, records)

	if _, err := svc.Register(context.Background(), registerReq()); err == nil {
		t.Fatal("expected error when medical record creation fails")
	}
}

func TestLogin(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockRecords{})
	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "jane@example.test", Password: "longenough"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "jane@example.test", Password: "wrong"})
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("wrong password: expected unauthorized, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.test", Password: "longenough"})
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("unknown email: expected unauthorized, got %v", err)
	}
}

func TestLogin_NormalizesEmail(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockRecords{})
	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "  Jane@Example.Test ", Password: "longenough"}); err != nil {
		t.Errorf("expected case-insensitive email match, got %v", err)
	}
}

func TestUpdateProfile_PartialPatch(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockRecords{})
	resp, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	phone := "555-0100"
	updated, err := svc.UpdateProfile(context.Background(), resp.User.ID, ProfilePatch{Phone: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Errorf("phone not applied: %v", updated.Phone)
	}
	if updated.FirstName != "Jane" {
		t.Errorf("untouched field changed: %q", updated.FirstName)
	}
}

func TestGetPatient_RejectsNonPatients(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockRecords{})
	dentist := &User{Email: "d@clinic.test", Role: auth.RoleDentist, FirstName: "Drew", LastName: "Molar"}
	if err := repo.Create(context.Background(), dentist); err != nil {
		t.Fatal(err)
	}

	_, err := svc.GetPatient(context.Background(), dentist.ID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found for non-patient, got %v", err)
	}
}

func TestProviderRole(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockRecords{})

	dentist := &User{Email: "d@clinic.test", Role: auth.RoleDentist, FirstName: "Drew", LastName: "Molar"}
	hygienist := &User{Email: "h@clinic.test", Role: auth.RoleHygienist, FirstName: "Haley", LastName: "Floss"}
	patient := &User{Email: "p@clinic.test", Role: auth.RolePatient, FirstName: "Pat", LastName: "Ient"}
	for _, u := range []*User{dentist, hygienist, patient} {
		if err := repo.Create(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}

	if role, err := svc.ProviderRole(context.Background(), dentist.ID); err != nil || role != auth.RoleDentist {
		t.Errorf("dentist: role=%q err=%v", role, err)
	}
	if role, err := svc.ProviderRole(context.Background(), hygienist.ID); err != nil || role != auth.RoleHygienist {
		t.Errorf("hygienist: role=%q err=%v", role, err)
	}
	if _, err := svc.ProviderRole(context.Background(), patient.ID); apperr.KindOf(err) != apperr.KindInvalidReference {
		t.Errorf("patient: expected invalid reference, got %v", err)
	}
	if _, err := svc.ProviderRole(context.Background(), uuid.New()); apperr.KindOf(err) != apperr.KindInvalidReference {
		t.Errorf("absent: expected invalid reference, got %v", err)
	}
}
