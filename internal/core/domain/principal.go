package domain

import (
	"errors"
	"time"
)

// Role is the closed set of roles a principal can hold. Authorization
// decisions branch on this value, so free-form strings are not allowed.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

var ErrInvalidRequest = errors.New("missing required credentials")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")
var ErrExpiredRefreshToken = errors.New("invalid or expired refresh token")
var ErrPrincipalNotFound = errors.New("account not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// Principal models an account capable of authenticating.
//
// At most one refresh token is outstanding per principal: every login and
// every successful refresh overwrites the stored pair, so a principal has a
// single active session. An empty RefreshToken or a RefreshTokenExpiresAt at
// or before now means no session.
type Principal struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	// EmployeeID links the account 1:1 to an employee record, when present.
	EmployeeID            *int      `json:"employee_id,omitempty"`
	RefreshToken          string    `json:"-"`
	RefreshTokenExpiresAt time.Time `json:"-"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// HasActiveRefreshToken reports whether the stored refresh token is usable at
// the given instant.
func (p *Principal) HasActiveRefreshToken(now time.Time) bool {
	return p.RefreshToken != "" && p.RefreshTokenExpiresAt.After(now)
}
