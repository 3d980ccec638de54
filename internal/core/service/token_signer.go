package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talentoplus/hr-system/internal/core/domain"
	"github.com/talentoplus/hr-system/internal/core/ports"
)

// accessClaims is the JWT payload for access tokens. The principal id rides
// in the registered subject claim.
type accessClaims struct {
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	EmployeeID *int        `json:"employee_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTSigner implements ports.TokenSigner with HMAC-SHA256 and a single
// process-wide secret. The secret, issuer, and audience are fixed at
// construction and never change for the process lifetime.
type JWTSigner struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewJWTSigner(secret, issuer, audience string, ttl time.Duration) *JWTSigner {
	if ttl <= 0 {
		ttl = 120 * time.Minute
	}
	return &JWTSigner{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

func (s *JWTSigner) Issue(p *domain.Principal) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := accessClaims{
		Email:      p.Email,
		Role:       p.Role,
		EmployeeID: p.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(p.ID),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks signature, algorithm, issuer, audience, and expiry.
func (s *JWTSigner) Verify(token string) (*ports.TokenClaims, error) {
	return s.parse(token,
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
}

// VerifyExpired checks everything Verify checks except the token lifetime.
// Only the refresh flow may call this: it recovers the principal identity
// from an access token that has already expired, which is the expected case
// during a refresh.
func (s *JWTSigner) VerifyExpired(token string) (*ports.TokenClaims, error) {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *JWTSigner) parse(token string, opts ...jwt.ParserOption) (*ports.TokenClaims, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// Pin the algorithm: a token whose header names anything other
		// than HS256 is rejected before signature verification.
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	// WithoutClaimsValidation skips issuer/audience too, so re-check them
	// here rather than trusting the parser options were in force.
	if claims.Issuer != s.issuer || !audienceContains(claims.Audience, s.audience) {
		return nil, domain.ErrInvalidToken
	}

	principalID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", domain.ErrInvalidToken)
	}

	return &ports.TokenClaims{
		PrincipalID: principalID,
		Email:       claims.Email,
		Role:        claims.Role,
		EmployeeID:  claims.EmployeeID,
	}, nil
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
