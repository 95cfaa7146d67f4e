// Package notification delivers in-app notices to users: appointment
// reminders, billing notices, general announcements.
package notification

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Type      string     `db:"type" json:"type"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	Read      bool       `db:"read" json:"read"`
	RelatedID *uuid.UUID `db:"related_id" json:"related_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// CreateRequest is used by other services to push a notice to a user.
type CreateRequest struct {
	UserID    uuid.UUID  `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	RelatedID *uuid.UUID `json:"related_id,omitempty"`
}
