package ports

import (
	"context"
	"time"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

// LoginInput identifies the principal by email and/or employee document.
// At least one of Email or Document must be set.
type LoginInput struct {
	Email    string
	Document string
	Password string
}

// RegisterEmployeeInput carries the data needed to open an account for an
// existing employee record.
type RegisterEmployeeInput struct {
	Document string
	Email    string
	Password string
}

// PrincipalInfo is the public projection of a principal returned to clients.
type PrincipalInfo struct {
	ID    int         `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AuthResult is returned by Login, Refresh, and RegisterEmployee.
type AuthResult struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Principal             PrincipalInfo
	// Employee is set when the principal is linked to an employee record.
	Employee *domain.Employee
}

// SessionService orchestrates login, token refresh, and logout.
type SessionService interface {
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	RegisterEmployee(ctx context.Context, input RegisterEmployeeInput) (*AuthResult, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error)
	// Logout clears the stored refresh token. It returns false when no
	// principal matches the email. Outstanding access tokens stay valid
	// until they expire on their own.
	Logout(ctx context.Context, email string) (bool, error)
}
