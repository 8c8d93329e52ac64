package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// Messages returned to clients. Kept apart from error codes so clients
// never have to parse free text.
const (
	msgUnauthorizedLogin = "Invalid email or password."
	msgUnvalidatedLogin  = "Login operation cannot be performed until the email associated with this user account has been validated."
	msgInactiveLogin     = "Inactive user."
	msgAlreadyValidated  = "The email associated with this user account has already been validated."
	msgUnauthorized      = "Access unauthorized."
	msgForbidden         = "Access forbidden."
)

// Session bundles freshly minted credentials for a principal: the access
// token for the response body and the Set-Cookie value carrying the refresh
// token.
type Session struct {
	AccessToken   string
	RefreshToken  string
	RefreshCookie string
}

// AuthService coordinates login, refresh, logout, registration and the
// email-validation lifecycle.
type AuthService struct {
	users      repository.UserRepository
	admins     repository.AdminRepository
	issuer     *auth.Issuer
	ledger     auth.RevocationLedger
	dispatcher events.Dispatcher
	cookieName string
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	AdminRepo  repository.AdminRepository
	Ledger     auth.RevocationLedger
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, issuer *auth.Issuer, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		admins:     deps.AdminRepo,
		issuer:     issuer,
		ledger:     deps.Ledger,
		dispatcher: deps.Dispatcher,
		cookieName: cfg.Auth.RefreshCookieName,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Issuer exposes the underlying token issuer for gate construction.
func (s *AuthService) Issuer() *auth.Issuer {
	return s.issuer
}

// RefreshCookieName returns the configured cookie name.
func (s *AuthService) RefreshCookieName() string {
	return s.cookieName
}

// LoginUser authenticates a shopper and mints an access/refresh pair.
// Unknown email and bad password answer identically.
func (s *AuthService) LoginUser(ctx context.Context, email, password string, persistSession bool) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(apperrors.SubtypeGeneric, msgUnauthorizedLogin)
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(apperrors.SubtypeGeneric, msgUnauthorizedLogin)
	}
	if !user.Validated {
		return nil, apperrors.NewForbidden(apperrors.SubtypeGeneric, msgUnvalidatedLogin)
	}
	if !user.Active {
		return nil, apperrors.NewForbidden(apperrors.SubtypeSecondary, msgInactiveLogin)
	}

	return s.mintSession(payloadForUser(user), persistSession)
}

// LoginAdmin authenticates a back-office principal.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string, persistSession bool) (*Session, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(apperrors.SubtypeGeneric, msgUnauthorizedLogin)
		}
		return nil, err
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(apperrors.SubtypeGeneric, msgUnauthorizedLogin)
	}

	return s.mintSession(payloadForAdmin(admin), persistSession)
}

// Refresh re-mints both tokens from the stored principal. The gate has
// already verified the refresh credential; the principal must still exist
// here since the new payload is built from its current state.
func (s *AuthService) Refresh(ctx context.Context, payload *auth.TokenPayload, persistSession bool) (*Session, error) {
	switch payload.Role {
	case domain.RoleUser:
		user, err := s.users.GetByID(ctx, payload.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewUnauthorized(apperrors.SubtypeGeneric, msgUnauthorized)
			}
			return nil, err
		}
		return s.mintSession(payloadForUser(user), persistSession)
	case domain.RoleAdmin:
		admin, err := s.admins.GetByID(ctx, payload.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewUnauthorized(apperrors.SubtypeGeneric, msgUnauthorized)
			}
			return nil, err
		}
		return s.mintSession(payloadForAdmin(admin), persistSession)
	default:
		return nil, apperrors.NewUnauthorized(apperrors.SubtypeInvalid, msgUnauthorized)
	}
}

// Logout advances the principal's revocation counter, killing every token
// minted before this call. A principal that vanished meanwhile is treated
// as already logged out.
func (s *AuthService) Logout(ctx context.Context, payload *auth.TokenPayload) error {
	version, err := s.ledger.Revoke(ctx, payload.Role, payload.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	s.publish(ctx, events.EventTokensRevoked, payload.ID, payload.Role, events.TokensRevokedPayload{TokenVersion: version})
	return nil
}

// RegisterUser creates a shopper account and issues its first validation
// token. When the email is already taken no account is created and no error
// escapes, so registration never discloses existing addresses.
func (s *AuthService) RegisterUser(ctx context.Context, name domain.Name, email, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		Validated:    false,
		TokenVersion: 0,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issuer.SignValidation(payloadForUser(user))
	if err != nil {
		return nil, err
	}
	if err := s.users.SetValidationToken(ctx, user.ID, token); err != nil {
		return nil, err
	}
	user.ValidationToken = token

	s.publish(ctx, events.EventUserRegistered, user.ID, domain.RoleUser, events.UserRegisteredPayload{
		Email:           user.Email,
		ValidationToken: token,
	})
	return user, nil
}

// IssueValidationToken re-issues the single-use validation token after a
// credential check. The stored value is overwritten, so any earlier
// validation token stops matching from this point on.
func (s *AuthService) IssueValidationToken(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewUnauthorized(apperrors.SubtypeGeneric, msgUnauthorizedLogin)
		}
		return "", err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", apperrors.NewUnauthorized(apperrors.SubtypeGeneric, msgUnauthorizedLogin)
	}
	if user.Validated {
		return "", apperrors.NewConflict(msgAlreadyValidated)
	}

	token, err := s.issuer.SignValidation(payloadForUser(user))
	if err != nil {
		return "", err
	}
	if err := s.users.SetValidationToken(ctx, user.ID, token); err != nil {
		return "", err
	}

	s.publish(ctx, events.EventValidationTokenIssued, user.ID, domain.RoleUser, events.ValidationTokenIssuedPayload{
		Email:           user.Email,
		ValidationToken: token,
	})
	return token, nil
}

// ValidateUser consumes a validation token. Beyond the gate's signature and
// revocation checks the presented credential must exactly equal the stored
// value; a consumed or superseded token no longer matches.
func (s *AuthService) ValidateUser(ctx context.Context, userID, presented string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User")
		}
		return err
	}
	if user.Validated {
		return apperrors.NewConflict(msgAlreadyValidated)
	}
	if user.ValidationToken == "" || presented != user.ValidationToken {
		return apperrors.NewUnauthorized(apperrors.SubtypeDefault, msgUnauthorized)
	}

	if err := s.users.MarkValidated(ctx, user.ID); err != nil {
		return err
	}

	s.publish(ctx, events.EventUserValidated, user.ID, domain.RoleUser, events.UserValidatedPayload{Email: user.Email})
	return nil
}

// ClearRefreshCookie returns the Set-Cookie value removing the refresh
// credential.
func (s *AuthService) ClearRefreshCookie() string {
	return auth.ClearRefreshCookie(s.cookieName)
}

func (s *AuthService) mintSession(payload auth.TokenPayload, persistSession bool) (*Session, error) {
	access, err := s.issuer.SignAccess(payload)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.SignRefresh(payload)
	if err != nil {
		return nil, err
	}
	expiresAt, err := s.issuer.ExpirationOf(refresh)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:   access,
		RefreshToken:  refresh,
		RefreshCookie: auth.RefreshCookie(s.cookieName, refresh, expiresAt, persistSession),
	}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, principalID string, role domain.Role, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		PrincipalID: principalID,
		Role:        role,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	})
}

func payloadForUser(user *domain.User) auth.TokenPayload {
	return auth.TokenPayload{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         domain.RoleUser,
		TokenVersion: user.TokenVersion,
	}
}

func payloadForAdmin(admin *domain.Admin) auth.TokenPayload {
	return auth.TokenPayload{
		ID:           admin.ID,
		Email:        admin.Email,
		Name:         admin.Name,
		Role:         domain.RoleAdmin,
		TokenVersion: admin.TokenVersion,
	}
}
