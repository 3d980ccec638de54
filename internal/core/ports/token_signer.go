package ports

import (
	"time"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

// TokenClaims are the identity facts carried inside a signed access token.
// They are the only channel by which downstream authorization learns who is
// calling.
type TokenClaims struct {
	PrincipalID int
	Email       string
	Role        domain.Role
	EmployeeID  *int
}

// TokenSigner creates and verifies signed access tokens.
//
// VerifyExpired exists only for the refresh flow, which must recover the
// principal identity from an already-expired token. It is a distinct method
// rather than a flag so the expiry-ignoring path cannot be wired into the
// access-control boundary by accident.
type TokenSigner interface {
	Issue(p *domain.Principal) (token string, expiresAt time.Time, err error)
	// Verify checks signature, algorithm, issuer, audience, and expiry.
	Verify(token string) (*TokenClaims, error)
	// VerifyExpired checks everything Verify checks except token lifetime.
	VerifyExpired(token string) (*TokenClaims, error)
}

// PasswordHasher abstracts one-way password hashing. Verify must be
// constant-time and must report false, never panic, for malformed hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
