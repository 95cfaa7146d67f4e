package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Notify pushes a notice to a user. Called by the scheduling workflow when
// appointments are booked or cancelled, not exposed over HTTP.
func (s *Service) Notify(ctx context.Context, req CreateRequest) (*Notification, error) {
	if req.UserID == uuid.Nil {
		return nil, apperr.Validation("user_id is required")
	}
	if req.Title == "" || req.Message == "" {
		return nil, apperr.Validation("title and message are required")
	}

	n := &Notification{
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		RelatedID: req.RelatedID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, actor auth.Identity, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, actor.UserID, unreadOnly, limit, offset)
}

// MarkRead marks one of the caller's notifications read.
func (s *Service) MarkRead(ctx context.Context, actor auth.Identity, id uuid.UUID) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, id); err == ErrNotFound {
		return apperr.NotFound("notification not found")
	} else if err != nil {
		return err
	}
	return nil
}

// MarkAllRead marks every unread notification of the caller read.
func (s *Service) MarkAllRead(ctx context.Context, actor auth.Identity) error {
	return s.repo.MarkAllRead(ctx, actor.UserID)
}

// Delete removes one of the caller's notifications.
func (s *Service) Delete(ctx context.Context, actor auth.Identity, id uuid.UUID) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err == ErrNotFound {
		return apperr.NotFound("notification not found")
	} else if err != nil {
		return err
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, actor auth.Identity, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err == ErrNotFound {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return err
	}
	if n.UserID != actor.UserID {
		return apperr.AccessDenied("not your notification")
	}
	return nil
}
