package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentoplus/hr-system/internal/core/domain"
	"github.com/talentoplus/hr-system/internal/core/ports"
)

type stubPrincipalRepo struct {
	principals map[int]*domain.Principal
	nextID     int
}

func newStubPrincipalRepo() *stubPrincipalRepo {
	return &stubPrincipalRepo{principals: make(map[int]*domain.Principal), nextID: 1}
}

func clonePrincipal(p *domain.Principal) *domain.Principal {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (r *stubPrincipalRepo) FindByEmail(_ context.Context, email string) (*domain.Principal, error) {
	for _, p := range r.principals {
		if strings.EqualFold(p.Email, email) {
			return clonePrincipal(p), nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r *stubPrincipalRepo) FindByEmployeeID(_ context.Context, employeeID int) (*domain.Principal, error) {
	for _, p := range r.principals {
		if p.EmployeeID != nil && *p.EmployeeID == employeeID {
			return clonePrincipal(p), nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r *stubPrincipalRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *stubPrincipalRepo) Create(_ context.Context, p *domain.Principal) (*domain.Principal, error) {
	clone := clonePrincipal(p)
	if clone.ID == 0 {
		clone.ID = r.nextID
		r.nextID++
	}
	r.principals[clone.ID] = clonePrincipal(clone)
	return clone, nil
}

func (r *stubPrincipalRepo) SetRefreshToken(_ context.Context, principalID int, token string, expiresAt time.Time) error {
	p, ok := r.principals[principalID]
	if !ok {
		return domain.ErrPrincipalNotFound
	}
	p.RefreshToken = token
	p.RefreshTokenExpiresAt = expiresAt
	return nil
}

func (r *stubPrincipalRepo) RotateRefreshToken(_ context.Context, principalID int, previous, next string, expiresAt time.Time) error {
	p, ok := r.principals[principalID]
	if !ok {
		return domain.ErrPrincipalNotFound
	}
	if p.RefreshToken != previous {
		return domain.ErrExpiredRefreshToken
	}
	p.RefreshToken = next
	p.RefreshTokenExpiresAt = expiresAt
	return nil
}

func (r *stubPrincipalRepo) ClearRefreshToken(_ context.Context, principalID int) error {
	p, ok := r.principals[principalID]
	if !ok {
		return domain.ErrPrincipalNotFound
	}
	p.RefreshToken = ""
	p.RefreshTokenExpiresAt = time.Time{}
	return nil
}

type stubEmployeeRepo struct {
	employees map[int]*domain.Employee
	nextID    int
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{employees: make(map[int]*domain.Employee), nextID: 1}
}

func cloneEmployee(e *domain.Employee) *domain.Employee {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

func (r *stubEmployeeRepo) FindAll(_ context.Context) ([]domain.Employee, error) {
	out := make([]domain.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, *cloneEmployee(e))
	}
	return out, nil
}

func (r *stubEmployeeRepo) FindByID(_ context.Context, id int) (*domain.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return cloneEmployee(e), nil
}

func (r *stubEmployeeRepo) FindByDocument(_ context.Context, document string) (*domain.Employee, error) {
	for _, e := range r.employees {
		if e.Document == document {
			return cloneEmployee(e), nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

func (r *stubEmployeeRepo) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	_, err := r.FindByDocument(ctx, document)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *stubEmployeeRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, e := range r.employees {
		if strings.EqualFold(e.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubEmployeeRepo) Create(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	clone := cloneEmployee(e)
	if clone.ID == 0 {
		clone.ID = r.nextID
		r.nextID++
	}
	r.employees[clone.ID] = cloneEmployee(clone)
	return clone, nil
}

func (r *stubEmployeeRepo) Update(_ context.Context, e *domain.Employee) error {
	if _, ok := r.employees[e.ID]; !ok {
		return domain.ErrEmployeeNotFound
	}
	r.employees[e.ID] = cloneEmployee(e)
	return nil
}

func (r *stubEmployeeRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.employees[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

func (r *stubEmployeeRepo) Stats(_ context.Context) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{TotalEmployees: len(r.employees)}, nil
}

type stubThrottle struct {
	failures map[string]int
	limit    int
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), limit: limit}
}

func (t *stubThrottle) Blocked(_ context.Context, email string) (bool, error) {
	return t.failures[email] >= t.limit, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	delete(t.failures, email)
	return nil
}

type sessionFixture struct {
	svc        *SessionService
	principals *stubPrincipalRepo
	employees  *stubEmployeeRepo
	throttle   *stubThrottle
	signer     *JWTSigner
	hasher     *BcryptHasher
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	principals := newStubPrincipalRepo()
	employees := newStubEmployeeRepo()
	throttle := newStubThrottle(5)
	signer := NewJWTSigner("test-secret", "talentoplus", "talentoplus-api", time.Hour)
	hasher := NewBcryptHasher(bcrypt.MinCost)

	svc := NewSessionService(principals, employees, hasher, signer, throttle, nil, 7*24*time.Hour, zerolog.Nop())
	return &sessionFixture{
		svc:        svc,
		principals: principals,
		employees:  employees,
		throttle:   throttle,
		signer:     signer,
		hasher:     hasher,
	}
}

func (f *sessionFixture) seedPrincipal(t *testing.T, id int, email, password string, role domain.Role) *domain.Principal {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	p := &domain.Principal{ID: id, Email: email, PasswordHash: hash, Role: role}
	if _, err := f.principals.Create(context.Background(), p); err != nil {
		t.Fatalf("seed principal: %v", err)
	}
	return p
}

func TestSessionService_Login_Success(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	result, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", result)
	}
	if !result.AccessTokenExpiresAt.After(time.Now()) || !result.RefreshTokenExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiries")
	}

	claims, err := f.signer.Verify(result.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.PrincipalID != 7 || claims.Email != "a@x.com" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	stored := f.principals.principals[7]
	if stored.RefreshToken != result.RefreshToken {
		t.Fatalf("refresh token not persisted")
	}
	if !stored.RefreshTokenExpiresAt.After(time.Now()) {
		t.Fatalf("persisted refresh expiry not in the future")
	}
}

func TestSessionService_Login_MissingInput(t *testing.T) {
	f := newSessionFixture(t)

	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Password: "x"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing password, got %v", err)
	}
}

func TestSessionService_Login_NoEnumeration(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	_, errWrongPassword := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "wrong"})
	_, errUnknownEmail := f.svc.Login(context.Background(), ports.LoginInput{Email: "ghost@x.com", Password: "wrong"})

	if !errors.Is(errWrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Fatalf("errors differ: %q vs %q", errWrongPassword, errUnknownEmail)
	}
}

func TestSessionService_Login_ByDocument(t *testing.T) {
	f := newSessionFixture(t)
	employee, _ := f.employees.Create(context.Background(), &domain.Employee{
		Document: "CC-1001", Email: "bob@x.com", FirstName: "Bob", Status: domain.StatusActive,
	})
	f.seedPrincipal(t, 3, "bob@x.com", "pa55word", domain.RoleEmployee)
	f.principals.principals[3].EmployeeID = &employee.ID

	result, err := f.svc.Login(context.Background(), ports.LoginInput{Document: "CC-1001", Password: "pa55word"})
	if err != nil {
		t.Fatalf("login by document failed: %v", err)
	}
	if result.Principal.ID != 3 {
		t.Fatalf("unexpected principal: %+v", result.Principal)
	}
	if result.Employee == nil || result.Employee.Document != "CC-1001" {
		t.Fatalf("expected linked employee projection, got %+v", result.Employee)
	}
}

func TestSessionService_Login_Throttled(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 1, "a@x.com", "Secret1", domain.RoleAdmin)

	for i := 0; i < 5; i++ {
		if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// Even the correct password is refused while the account is blocked.
	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"}); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestSessionService_Refresh_RotatesAndRejectsReuse(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	first, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	second, err := f.svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if second.AccessToken == first.AccessToken && second.RefreshToken == first.RefreshToken {
		t.Fatalf("expected a new token pair")
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	// The original refresh token was consumed by the rotation.
	if _, err := f.svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken); !errors.Is(err, domain.ErrExpiredRefreshToken) {
		t.Fatalf("expected ErrExpiredRefreshToken on reuse, got %v", err)
	}

	// The rotated token still works exactly once.
	if _, err := f.svc.Refresh(context.Background(), second.AccessToken, second.RefreshToken); err != nil {
		t.Fatalf("rotated token should be accepted: %v", err)
	}
}

func TestSessionService_Refresh_ExpiredAccessTokenAccepted(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	result, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Issue an access token that expires almost immediately, signed with
	// the same secret. Refresh must still recover the principal from it.
	shortSigner := NewJWTSigner("test-secret", "talentoplus", "talentoplus-api", time.Millisecond)
	expired, _, err := shortSigner.Issue(f.principals.principals[7])
	if err != nil {
		t.Fatalf("issue short-lived token: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := f.signer.Verify(expired); err == nil {
		t.Fatalf("expected the short-lived token to be expired")
	}
	if _, err := f.svc.Refresh(context.Background(), expired, result.RefreshToken); err != nil {
		t.Fatalf("refresh with expired access token failed: %v", err)
	}
}

func TestSessionService_Refresh_InvalidAccessToken(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	result, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := f.svc.Refresh(context.Background(), "not.a.jwt", result.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	forged, _, err := NewJWTSigner("other-secret", "talentoplus", "talentoplus-api", time.Hour).Issue(f.principals.principals[7])
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), forged, result.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong signature, got %v", err)
	}
}

func TestSessionService_Refresh_ExpiredRefreshToken(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	result, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Force the stored expiry into the past; the access token signature is
	// still valid.
	f.principals.principals[7].RefreshTokenExpiresAt = time.Now().UTC().Add(-time.Minute)

	if _, err := f.svc.Refresh(context.Background(), result.AccessToken, result.RefreshToken); !errors.Is(err, domain.ErrExpiredRefreshToken) {
		t.Fatalf("expected ErrExpiredRefreshToken, got %v", err)
	}
}

func TestSessionService_Refresh_MismatchedRefreshToken(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	result, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := f.svc.Refresh(context.Background(), result.AccessToken, "someone-elses-token"); !errors.Is(err, domain.ErrExpiredRefreshToken) {
		t.Fatalf("expected ErrExpiredRefreshToken, got %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), result.AccessToken, ""); !errors.Is(err, domain.ErrExpiredRefreshToken) {
		t.Fatalf("expected ErrExpiredRefreshToken for empty token, got %v", err)
	}
}

func TestSessionService_Logout(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	result, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	ok, err := f.svc.Logout(context.Background(), "a@x.com")
	if err != nil || !ok {
		t.Fatalf("logout failed: ok=%v err=%v", ok, err)
	}
	if f.principals.principals[7].RefreshToken != "" {
		t.Fatalf("refresh token not cleared")
	}

	// The just-cleared refresh token must not be honoured.
	if _, err := f.svc.Refresh(context.Background(), result.AccessToken, result.RefreshToken); !errors.Is(err, domain.ErrExpiredRefreshToken) {
		t.Fatalf("expected ErrExpiredRefreshToken after logout, got %v", err)
	}

	ok, err = f.svc.Logout(context.Background(), "ghost@x.com")
	if err != nil {
		t.Fatalf("logout unknown email errored: %v", err)
	}
	if ok {
		t.Fatalf("expected false for unknown email")
	}
}

func TestSessionService_NewLoginInvalidatesPriorSession(t *testing.T) {
	f := newSessionFixture(t)
	f.seedPrincipal(t, 7, "a@x.com", "Secret1", domain.RoleAdmin)

	first, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"})
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Secret1"}); err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	// Last login wins: the first session's refresh token was overwritten.
	if _, err := f.svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken); !errors.Is(err, domain.ErrExpiredRefreshToken) {
		t.Fatalf("expected ErrExpiredRefreshToken for the overwritten session, got %v", err)
	}
}

func TestSessionService_RegisterEmployee(t *testing.T) {
	f := newSessionFixture(t)
	employee, _ := f.employees.Create(context.Background(), &domain.Employee{
		Document: "CC-2002", Email: "carol@x.com", FirstName: "Carol", Status: domain.StatusActive,
	})

	result, err := f.svc.RegisterEmployee(context.Background(), ports.RegisterEmployeeInput{
		Document: "CC-2002", Email: "Carol@X.com", Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.Principal.Role != domain.RoleEmployee {
		t.Fatalf("expected employee role, got %s", result.Principal.Role)
	}
	if result.Employee == nil || result.Employee.ID != employee.ID {
		t.Fatalf("expected linked employee in result")
	}

	linked, err := f.employees.FindByID(context.Background(), employee.ID)
	if err != nil {
		t.Fatalf("find employee: %v", err)
	}
	if !linked.HasAccount() || *linked.PrincipalID != result.Principal.ID {
		t.Fatalf("employee not linked to new account: %+v", linked)
	}

	// The new account can log in immediately.
	if _, err := f.svc.Login(context.Background(), ports.LoginInput{Email: "carol@x.com", Password: "s3cret"}); err != nil {
		t.Fatalf("login with new account failed: %v", err)
	}
}

func TestSessionService_RegisterEmployee_Validation(t *testing.T) {
	f := newSessionFixture(t)
	_, _ = f.employees.Create(context.Background(), &domain.Employee{
		Document: "CC-3003", Email: "dave@x.com", FirstName: "Dave", Status: domain.StatusActive,
	})

	cases := []struct {
		name  string
		input ports.RegisterEmployeeInput
		want  error
	}{
		{"missing fields", ports.RegisterEmployeeInput{Document: "CC-3003"}, domain.ErrInvalidRequest},
		{"unknown document", ports.RegisterEmployeeInput{Document: "CC-9999", Email: "dave@x.com", Password: "p"}, domain.ErrEmployeeNotFound},
		{"email mismatch", ports.RegisterEmployeeInput{Document: "CC-3003", Email: "other@x.com", Password: "p"}, domain.ErrEmailMismatch},
	}
	for _, tc := range cases {
		if _, err := f.svc.RegisterEmployee(context.Background(), tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := f.svc.RegisterEmployee(context.Background(), ports.RegisterEmployeeInput{
		Document: "CC-3003", Email: "dave@x.com", Password: "p",
	}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := f.svc.RegisterEmployee(context.Background(), ports.RegisterEmployeeInput{
		Document: "CC-3003", Email: "dave@x.com", Password: "p",
	}); !errors.Is(err, domain.ErrEmployeeHasAccount) {
		t.Fatalf("expected ErrEmployeeHasAccount, got %v", err)
	}
}
