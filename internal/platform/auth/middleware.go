// Package auth implements bearer-token authentication and role-based
// authorization for the API. Tokens are HS256 JWTs carrying the user's id,
// email and role; the middleware places an Identity on the request context
// for workflow code to consume.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smilecare/smilecare/internal/platform/apperr"
)

type contextKey string

const identityKey contextKey = "identity"

// Roles known to the system. Dentists and hygienists are providers for
// scheduling purposes.
const (
	RolePatient      = "patient"
	RoleDentist      = "dentist"
	RoleHygienist    = "hygienist"
	RoleReceptionist = "receptionist"
	RoleAdmin        = "admin"
)

// StaffRoles are every non-patient role.
var StaffRoles = []string{RoleDentist, RoleHygienist, RoleReceptionist, RoleAdmin}

// Identity is the authenticated caller, passed explicitly into workflows
// instead of living in ambient request state.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// IsPatient reports whether the caller is a patient.
func (id Identity) IsPatient() bool { return id.Role == RolePatient }

// IsProvider reports whether the caller can be assigned to appointments.
func (id Identity) IsProvider() bool {
	return id.Role == RoleDentist || id.Role == RoleHygienist
}

// IsStaff reports whether the caller holds any non-patient role.
func (id Identity) IsStaff() bool { return id.Role != RolePatient && id.Role != "" }

// Claims is the JWT payload: {sub=id, email, role}.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenIssuer signs and verifies API tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue returns a signed token for the given identity.
func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Email: id.Email,
		Role:  id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the caller identity.
func (t *TokenIssuer) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject: %w", err)
	}

	return Identity{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

// Middleware authenticates every request with a bearer token and stores the
// resulting Identity on the request context.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return apperr.Unauthorized("no token provided")
			}

			id, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return apperr.Unauthorized("invalid or expired token")
			}

			ctx := context.WithValue(c.Request().Context(), identityKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// IdentityFromContext retrieves the authenticated caller. The zero Identity
// is returned when the request was not authenticated.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

// ContextWithIdentity returns a context carrying the given identity. Used by
// tests and internal callers.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
