package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
)

// ProviderDirectory resolves whether a user can be reviewed as a provider.
// Implemented by the identity service.
type ProviderDirectory interface {
	ProviderRole(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	repo      Repository
	providers ProviderDirectory
}

func NewService(repo Repository, providers ProviderDirectory) *Service {
	return &Service{repo: repo, providers: providers}
}

// Create records a patient's review of a dentist.
func (s *Service) Create(ctx context.Context, actor auth.Identity, req CreateRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}
	if req.DentistID == uuid.Nil {
		return nil, apperr.Validation("dentist_id is required")
	}
	if _, err := s.providers.ProviderRole(ctx, req.DentistID); err != nil {
		return nil, err
	}

	rev := &Review{
		PatientID: actor.UserID,
		DentistID: req.DentistID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// ListByDentist returns a dentist's reviews with their aggregate rating.
func (s *Service) ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) (*Summary, error) {
	avg, count, err := s.repo.AverageByDentist(ctx, dentistID)
	if err != nil {
		return nil, err
	}
	reviews, _, err := s.repo.ListByDentist(ctx, dentistID, limit, offset)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*Review{}
	}
	return &Summary{
		DentistID:     dentistID,
		AverageRating: avg,
		ReviewCount:   count,
		Reviews:       reviews,
	}, nil
}
