package ports

import (
	"context"
	"time"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

// PrincipalRepository defines the persistence contract for authentication
// accounts. Implementations must persist the refresh-token pair atomically.
type PrincipalRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Principal, error)
	FindByEmployeeID(ctx context.Context, employeeID int) (*domain.Principal, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error)

	// SetRefreshToken unconditionally overwrites the stored refresh-token
	// pair. Used on login, where the new session terminates any prior one.
	SetRefreshToken(ctx context.Context, principalID int, token string, expiresAt time.Time) error

	// RotateRefreshToken replaces the stored refresh token only when the
	// stored value still equals previous. When another rotation won the
	// race, it returns domain.ErrExpiredRefreshToken.
	RotateRefreshToken(ctx context.Context, principalID int, previous, next string, expiresAt time.Time) error

	// ClearRefreshToken removes the stored refresh-token pair.
	ClearRefreshToken(ctx context.Context, principalID int) error
}
