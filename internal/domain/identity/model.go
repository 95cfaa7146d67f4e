package identity

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. The password hash never leaves the API.
type User struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	Role              string     `db:"role" json:"role"`
	FirstName         string     `db:"first_name" json:"first_name"`
	LastName          string     `db:"last_name" json:"last_name"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth       *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address           *string    `db:"address" json:"address,omitempty"`
	InsuranceProvider *string    `db:"insurance_provider" json:"insurance_provider,omitempty"`
	InsuranceNumber   *string    `db:"insurance_number" json:"insurance_number,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// RegisterRequest is the self-registration payload. Registration always
// creates a patient; staff accounts are provisioned out of band.
type RegisterRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       *string    `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Address     *string    `json:"address,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ProfilePatch carries a partial profile update; nil fields are untouched.
type ProfilePatch struct {
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	Phone             *string    `json:"phone,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	Address           *string    `json:"address,omitempty"`
	InsuranceProvider *string    `json:"insurance_provider,omitempty"`
	InsuranceNumber   *string    `json:"insurance_number,omitempty"`
}
