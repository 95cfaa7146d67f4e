package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
	"github.com/smilecare/smilecare/internal/platform/db"
)

type Service struct {
	users   Repository
	records MedicalRecordCreator
	issuer  *auth.TokenIssuer
	inTx    db.TxRunner
}

func NewService(users Repository, records MedicalRecordCreator, issuer *auth.TokenIssuer, inTx db.TxRunner) *Service {
	return &Service{users: users, records: records, issuer: issuer, inTx: inTx}
}

// Register creates a patient account and its empty medical record in one
// transaction, then signs a token for the new user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, apperr.Validation("first_name and last_name are required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         auth.RolePatient,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		Address:      req.Address,
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.records.CreateEmpty(ctx, user.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

// Login verifies the credentials and returns a signed token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	return s.authResponse(user)
}

func (s *Service) authResponse(user *User) (*AuthResponse, error) {
	token, err := s.issuer.Issue(auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	return user, err
}

// UpdateProfile applies the non-nil patch fields to the caller's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		user.Phone = patch.Phone
	}
	if patch.DateOfBirth != nil {
		user.DateOfBirth = patch.DateOfBirth
	}
	if patch.Address != nil {
		user.Address = patch.Address
	}
	if patch.InsuranceProvider != nil {
		user.InsuranceProvider = patch.InsuranceProvider
	}
	if patch.InsuranceNumber != nil {
		user.InsuranceNumber = patch.InsuranceNumber
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, []string{auth.RolePatient}, limit, offset)
}

func (s *Service) ListDentists(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, []string{auth.RoleDentist}, limit, offset)
}

// GetPatient returns a user only if they hold the patient role.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != auth.RolePatient {
		return nil, apperr.NotFound("patient not found")
	}
	return user, nil
}

// ProviderRole reports the role of the given user when they can be assigned
// to appointments, satisfying the scheduling provider lookup.
func (s *Service) ProviderRole(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return "", apperr.InvalidReference("dentist not found")
	}
	if err != nil {
		return "", err
	}
	if user.Role != auth.RoleDentist && user.Role != auth.RoleHygienist {
		return "", apperr.InvalidReference("user %s is not a provider", id)
	}
	return user.Role, nil
}
