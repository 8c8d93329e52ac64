package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	next  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	user.ID = fmt.Sprintf("user-%d", r.next)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListActive(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if user.Active {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetValidationToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.ValidationToken = token
	return nil
}

func (r *fakeUserRepo) MarkValidated(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Validated = true
	user.ValidationToken = ""
	return nil
}

func (r *fakeUserRepo) IncrementTokenVersion(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	user.TokenVersion++
	return user.TokenVersion, nil
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*domain.Admin
	next   int
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*domain.Admin)}
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	admin.ID = fmt.Sprintf("admin-%d", r.next)
	admin.CreatedAt = time.Now().UTC()
	admin.UpdatedAt = admin.CreatedAt
	stored := *admin
	r.admins[admin.ID] = &stored
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *admin
	return &copied, nil
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, admin := range r.admins {
		if admin.Email == email {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAdminRepo) IncrementTokenVersion(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	admin.TokenVersion++
	return admin.TokenVersion, nil
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) published(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type serviceFixture struct {
	svc        *AuthService
	issuer     *auth.Issuer
	users      *fakeUserRepo
	admins     *fakeAdminRepo
	ledger     auth.RevocationLedger
	dispatcher *capturingDispatcher
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	cfg := config.Config{Auth: config.AuthConfig{
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		ValidationTokenSecret: "validation-secret",
		RefreshCookieName:     "refreshToken",
		BcryptCost:            4,
	}}

	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	ledger := repository.NewRevocationLedger(users, admins)
	dispatcher := &capturingDispatcher{}
	issuer := auth.NewIssuer(cfg.Auth)

	svc := NewAuthService(cfg, issuer, AuthDependencies{
		UserRepo:   users,
		AdminRepo:  admins,
		Ledger:     ledger,
		Dispatcher: dispatcher,
	})
	return &serviceFixture{svc: svc, issuer: issuer, users: users, admins: admins, ledger: ledger, dispatcher: dispatcher}
}

func (f *serviceFixture) seedUser(t *testing.T, email, password string, validated, active bool) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)

	user := &domain.User{
		Name:         domain.Name{First: "Jane", Last: "Doe"},
		Email:        email,
		PasswordHash: hash,
		Active:       active,
		Validated:    validated,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *serviceFixture) seedAdmin(t *testing.T, email, password string) *domain.Admin {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)

	admin := &domain.Admin{
		Name:         domain.Name{First: "Ops", Last: "Admin"},
		Email:        email,
		PasswordHash: hash,
	}
	require.NoError(t, f.admins.Create(context.Background(), admin))
	return admin
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code()
}

func TestLoginUser(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "jane@example.com", "secret123", true, true)

	session, err := f.svc.LoginUser(context.Background(), "jane@example.com", "secret123", true)
	require.NoError(t, err)

	payload, err := f.issuer.Verify(auth.ClassAccess, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, payload.ID)
	assert.Equal(t, domain.RoleUser, payload.Role)
	assert.Equal(t, 0, payload.TokenVersion)

	refreshPayload, err := f.issuer.Verify(auth.ClassRefresh, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshPayload.ID)

	expiresAt, err := f.issuer.ExpirationOf(session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, auth.RefreshCookie("refreshToken", session.RefreshToken, expiresAt, true), session.RefreshCookie)
	assert.NotContains(t, session.RefreshCookie, "expires=;")
}

func TestLoginUserSessionOnlyCookie(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "jane@example.com", "secret123", true, true)

	session, err := f.svc.LoginUser(context.Background(), "jane@example.com", "secret123", false)
	require.NoError(t, err)
	assert.Contains(t, session.RefreshCookie, "; expires=; HttpOnly")
}

func TestLoginUserFailures(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "jane@example.com", "secret123", true, true)
	f.seedUser(t, "pending@example.com", "secret123", false, true)
	f.seedUser(t, "banned@example.com", "secret123", true, false)

	cases := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"unknown email", "ghost@example.com", "secret123", "401A"},
		{"wrong password", "jane@example.com", "wrong", "401A"},
		{"unvalidated", "pending@example.com", "secret123", "403A"},
		{"inactive", "banned@example.com", "secret123", "403B"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.LoginUser(context.Background(), tc.email, tc.password, true)
			assert.Equal(t, tc.code, domainCode(t, err))
		})
	}
}

func TestLoginAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAdmin(t, "ops@example.com", "secret123")

	session, err := f.svc.LoginAdmin(context.Background(), "ops@example.com", "secret123", true)
	require.NoError(t, err)

	payload, err := f.issuer.Verify(auth.ClassAccess, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, payload.ID)
	assert.Equal(t, domain.RoleAdmin, payload.Role)

	_, err = f.svc.LoginAdmin(context.Background(), "ops@example.com", "wrong", true)
	assert.Equal(t, "401A", domainCode(t, err))
}

func TestRefreshReloadsPrincipal(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "jane@example.com", "secret123", true, true)

	// advance the counter after the original login payload was minted
	_, err := f.ledger.Revoke(context.Background(), domain.RoleUser, user.ID)
	require.NoError(t, err)

	stale := &auth.TokenPayload{ID: user.ID, Email: user.Email, Role: domain.RoleUser, TokenVersion: 0}
	session, err := f.svc.Refresh(context.Background(), stale, true)
	require.NoError(t, err)

	payload, err := f.issuer.Verify(auth.ClassAccess, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 1, payload.TokenVersion)
}

func TestRefreshRejectsVanishedPrincipal(t *testing.T) {
	f := newFixture(t)

	gone := &auth.TokenPayload{ID: "user-404", Role: domain.RoleUser}
	_, err := f.svc.Refresh(context.Background(), gone, true)
	assert.Equal(t, "401A", domainCode(t, err))

	unknown := &auth.TokenPayload{ID: "x", Role: domain.Role("root")}
	_, err = f.svc.Refresh(context.Background(), unknown, true)
	assert.Equal(t, "401W", domainCode(t, err))
}

func TestLogoutRevokesTokens(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "jane@example.com", "secret123", true, true)

	payload := &auth.TokenPayload{ID: user.ID, Role: domain.RoleUser, TokenVersion: 0}
	require.NoError(t, f.svc.Logout(context.Background(), payload))

	version, found, err := f.ledger.CurrentVersion(context.Background(), domain.RoleUser, user.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, version)

	published := f.dispatcher.published(events.EventTokensRevoked)
	require.Len(t, published, 1)
	assert.Equal(t, user.ID, published[0].PrincipalID)

	// a principal deleted since login logs out without error
	gone := &auth.TokenPayload{ID: "user-404", Role: domain.RoleUser}
	assert.NoError(t, f.svc.Logout(context.Background(), gone))
}

func TestRegisterUser(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.RegisterUser(context.Background(), domain.Name{First: "Jane", Last: "Doe"}, "jane@example.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Active)
	assert.False(t, user.Validated)
	assert.Equal(t, 0, user.TokenVersion)

	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ValidationToken)

	payload, err := f.issuer.Verify(auth.ClassValidation, stored.ValidationToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, payload.ID)

	published := f.dispatcher.published(events.EventUserRegistered)
	require.Len(t, published, 1)

	// a taken address is silently ignored so registration can't probe accounts
	dup, err := f.svc.RegisterUser(context.Background(), domain.Name{First: "Eve", Last: "Doe"}, "jane@example.com", "other456")
	require.NoError(t, err)
	assert.Nil(t, dup)

	all, err := f.users.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIssueValidationTokenSupersedes(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.RegisterUser(context.Background(), domain.Name{First: "Jane", Last: "Doe"}, "jane@example.com", "secret123")
	require.NoError(t, err)
	first := user.ValidationToken

	token, err := f.svc.IssueValidationToken(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, token, stored.ValidationToken)

	// the superseded token no longer matches the stored value
	if first != token {
		err = f.svc.ValidateUser(context.Background(), user.ID, first)
		assert.Equal(t, "401Y", domainCode(t, err))
	}

	require.NoError(t, f.svc.ValidateUser(context.Background(), user.ID, token))

	_, err = f.svc.IssueValidationToken(context.Background(), "jane@example.com", "secret123")
	assert.Equal(t, "422A", domainCode(t, err))

	_, err = f.svc.IssueValidationToken(context.Background(), "jane@example.com", "wrong")
	assert.Equal(t, "401A", domainCode(t, err))
}

func TestValidateUser(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.RegisterUser(context.Background(), domain.Name{First: "Jane", Last: "Doe"}, "jane@example.com", "secret123")
	require.NoError(t, err)

	err = f.svc.ValidateUser(context.Background(), user.ID, "forged-token")
	assert.Equal(t, "401Y", domainCode(t, err))

	require.NoError(t, f.svc.ValidateUser(context.Background(), user.ID, user.ValidationToken))

	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Validated)
	assert.Empty(t, stored.ValidationToken)

	published := f.dispatcher.published(events.EventUserValidated)
	require.Len(t, published, 1)

	// consumed tokens never validate twice
	err = f.svc.ValidateUser(context.Background(), user.ID, user.ValidationToken)
	assert.Equal(t, "422A", domainCode(t, err))

	err = f.svc.ValidateUser(context.Background(), "user-404", "whatever")
	assert.Equal(t, "404A", domainCode(t, err))
}

func TestClearRefreshCookie(t *testing.T) {
	f := newFixture(t)
	cookie := f.svc.ClearRefreshCookie()
	assert.True(t, strings.HasPrefix(cookie, "refreshToken=; expires="))
	assert.True(t, strings.HasSuffix(cookie, "; HttpOnly"))
}
