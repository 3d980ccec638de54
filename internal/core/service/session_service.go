package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentoplus/hr-system/internal/core/domain"
	"github.com/talentoplus/hr-system/internal/core/ports"
)

// LoginThrottle abstracts the failed-attempt limiter (Redis).
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// SessionService implements login, refresh-token rotation, and logout.
//
// A principal holds at most one active refresh token: login and refresh both
// overwrite the stored pair, so the newest session unilaterally terminates
// any other. Concurrent refreshes on the same principal are resolved by the
// repository's compare-and-swap update; the loser observes
// domain.ErrExpiredRefreshToken.
type SessionService struct {
	principals ports.PrincipalRepository
	employees  ports.EmployeeRepository
	hasher     ports.PasswordHasher
	signer     ports.TokenSigner
	throttle   LoginThrottle
	notifier   ports.Notifier
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewSessionService(
	principals ports.PrincipalRepository,
	employees ports.EmployeeRepository,
	hasher ports.PasswordHasher,
	signer ports.TokenSigner,
	throttle LoginThrottle,
	notifier ports.Notifier,
	refreshTTL time.Duration,
	log zerolog.Logger,
) *SessionService {
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &SessionService{
		principals: principals,
		employees:  employees,
		hasher:     hasher,
		signer:     signer,
		throttle:   throttle,
		notifier:   notifier,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

func (s *SessionService) Login(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
	if input.Password == "" || (input.Email == "" && input.Document == "") {
		return nil, domain.ErrInvalidRequest
	}

	principal, err := s.resolvePrincipal(ctx, input.Email, input.Document)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) || errors.Is(err, domain.ErrEmployeeNotFound) {
			// Unknown account and wrong password are indistinguishable
			// to the caller.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if s.throttle != nil {
		blocked, terr := s.throttle.Blocked(ctx, principal.Email)
		if terr != nil {
			s.log.Warn().Err(terr).Msg("login throttle check failed, proceeding")
		} else if blocked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	if !s.hasher.Verify(input.Password, principal.PasswordHash) {
		if s.throttle != nil {
			if terr := s.throttle.RecordFailure(ctx, principal.Email); terr != nil {
				s.log.Warn().Err(terr).Msg("failed to record login failure")
			}
		}
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if terr := s.throttle.Reset(ctx, principal.Email); terr != nil {
			s.log.Warn().Err(terr).Msg("failed to reset login throttle")
		}
	}

	result, err := s.issueSession(ctx, principal)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("principal_id", principal.ID).Str("role", string(principal.Role)).Msg("login")
	return result, nil
}

// RegisterEmployee opens an account for an existing employee record and logs
// it in. The employee is matched by document, the supplied email must equal
// the one on file, and neither the employee nor the email may already have
// an account.
func (s *SessionService) RegisterEmployee(ctx context.Context, input ports.RegisterEmployeeInput) (*ports.AuthResult, error) {
	if input.Document == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidRequest
	}

	employee, err := s.employees.FindByDocument(ctx, input.Document)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(employee.Email, input.Email) {
		return nil, domain.ErrEmailMismatch
	}
	if employee.HasAccount() {
		return nil, domain.ErrEmployeeHasAccount
	}
	taken, err := s.principals.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	principal, err := s.principals.Create(ctx, &domain.Principal{
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		EmployeeID:   &employee.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	employee.PrincipalID = &principal.ID
	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("link employee account: %w", err)
	}

	if s.notifier != nil {
		if nerr := s.notifier.Send(ctx, ports.Notification{
			Recipient: principal.Email,
			Subject:   "Welcome to TalentoPlus",
			Body:      fmt.Sprintf("Hi %s, your account is ready. You can now sign in with this email address.", employee.FirstName),
		}); nerr != nil {
			s.log.Warn().Err(nerr).Msg("failed to send welcome notification")
		}
	}

	s.log.Info().Int("principal_id", principal.ID).Int("employee_id", employee.ID).Msg("employee registered")
	return s.issueSession(ctx, principal)
}

// Refresh exchanges an expired access token plus the current refresh token
// for a fresh pair. Rotation is mandatory: the presented refresh token is
// invalidated whether or not the caller ever uses the new one.
func (s *SessionService) Refresh(ctx context.Context, accessToken, refreshToken string) (*ports.AuthResult, error) {
	// Signature, algorithm, issuer, and audience still hold; only the
	// lifetime check is suppressed.
	claims, err := s.signer.VerifyExpired(accessToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	principal, err := s.principals.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	now := time.Now().UTC()
	if refreshToken == "" || !principal.HasActiveRefreshToken(now) ||
		subtle.ConstantTimeCompare([]byte(principal.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, domain.ErrExpiredRefreshToken
	}

	access, accessExpiresAt, err := s.signer.Issue(principal)
	if err != nil {
		return nil, err
	}
	next, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	nextExpiresAt := now.Add(s.refreshTTL)

	// Compare-and-swap against the presented value: when two refreshes
	// race, exactly one rotation succeeds and the other caller fails.
	if err := s.principals.RotateRefreshToken(ctx, principal.ID, refreshToken, next, nextExpiresAt); err != nil {
		return nil, err
	}

	s.log.Debug().Int("principal_id", principal.ID).Msg("refresh token rotated")
	return s.buildResult(ctx, principal, access, accessExpiresAt, next, nextExpiresAt), nil
}

// Logout clears the stored refresh token for the principal matched by email.
// Already-issued access tokens are not revoked; they expire on their own TTL.
func (s *SessionService) Logout(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, domain.ErrInvalidRequest
	}

	principal, err := s.principals.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.principals.ClearRefreshToken(ctx, principal.ID); err != nil {
		return false, err
	}

	s.log.Info().Int("principal_id", principal.ID).Msg("logout")
	return true, nil
}

func (s *SessionService) resolvePrincipal(ctx context.Context, email, document string) (*domain.Principal, error) {
	if email != "" {
		return s.principals.FindByEmail(ctx, email)
	}
	employee, err := s.employees.FindByDocument(ctx, document)
	if err != nil {
		return nil, err
	}
	return s.principals.FindByEmployeeID(ctx, employee.ID)
}

// issueSession mints a new access/refresh pair and persists the refresh
// token, overwriting any previous session for the principal.
func (s *SessionService) issueSession(ctx context.Context, principal *domain.Principal) (*ports.AuthResult, error) {
	access, accessExpiresAt, err := s.signer.Issue(principal)
	if err != nil {
		return nil, err
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	refreshExpiresAt := time.Now().UTC().Add(s.refreshTTL)

	if err := s.principals.SetRefreshToken(ctx, principal.ID, refresh, refreshExpiresAt); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return s.buildResult(ctx, principal, access, accessExpiresAt, refresh, refreshExpiresAt), nil
}

func (s *SessionService) buildResult(ctx context.Context, principal *domain.Principal, access string, accessExpiresAt time.Time, refresh string, refreshExpiresAt time.Time) *ports.AuthResult {
	result := &ports.AuthResult{
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExpiresAt,
		Principal: ports.PrincipalInfo{
			ID:    principal.ID,
			Email: principal.Email,
			Role:  principal.Role,
		},
	}

	if principal.EmployeeID != nil {
		employee, err := s.employees.FindByID(ctx, *principal.EmployeeID)
		if err != nil {
			s.log.Warn().Err(err).Int("employee_id", *principal.EmployeeID).Msg("linked employee lookup failed")
		} else {
			result.Employee = employee
		}
	}
	return result
}

// generateRefreshToken returns an opaque token with 256 bits of entropy.
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("refresh token entropy: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
