package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
)

// Class identifies which of the three token kinds a credential belongs to.
// Each class signs with its own secret and fixed expiry policy.
type Class string

const (
	ClassAccess     Class = "access"
	ClassRefresh    Class = "refresh"
	ClassValidation Class = "validation"
)

// Expiry policy per class. Fixed at issuance, not configurable.
const (
	AccessTokenTTL     = 30 * time.Minute
	RefreshTokenTTL    = 7 * 24 * time.Hour
	ValidationTokenTTL = 2 * time.Hour
)

var (
	// ErrTokenExpired marks a credential whose signature checked out but
	// whose expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid marks a malformed credential or one signed with the
	// wrong secret.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenPayload is the claim set embedded and signed inside every token.
// Immutable once signed; role and version changes require a fresh mint.
type TokenPayload struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         domain.Name `json:"name"`
	Role         domain.Role `json:"role"`
	TokenVersion int         `json:"tokenVersion"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies the three token classes.
type Issuer struct {
	secrets map[Class][]byte
}

// NewIssuer builds an issuer from the configured per-class secrets.
func NewIssuer(cfg config.AuthConfig) *Issuer {
	return &Issuer{
		secrets: map[Class][]byte{
			ClassAccess:     []byte(cfg.AccessTokenSecret),
			ClassRefresh:    []byte(cfg.RefreshTokenSecret),
			ClassValidation: []byte(cfg.ValidationTokenSecret),
		},
	}
}

// SignAccess mints a short-lived bearer token.
func (i *Issuer) SignAccess(payload TokenPayload) (string, error) {
	return i.sign(ClassAccess, payload, AccessTokenTTL)
}

// SignRefresh mints the long-lived cookie-transported token.
func (i *Issuer) SignRefresh(payload TokenPayload) (string, error) {
	return i.sign(ClassRefresh, payload, RefreshTokenTTL)
}

// SignValidation mints the single-purpose email-validation token.
func (i *Issuer) SignValidation(payload TokenPayload) (string, error) {
	return i.sign(ClassValidation, payload, ValidationTokenTTL)
}

func (i *Issuer) sign(class Class, payload TokenPayload, ttl time.Duration) (string, error) {
	now := time.Now().UTC().Truncate(time.Second)
	payload.IssuedAt = jwt.NewNumericDate(now)
	payload.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &payload)
	return token.SignedString(i.secrets[class])
}

// Verify checks signature and expiry against the class secret and returns
// the embedded payload. Expiry and signature failures are reported as
// distinct error kinds so callers can surface different subtypes.
func (i *Issuer) Verify(class Class, tokenStr string) (*TokenPayload, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &TokenPayload{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secrets[class], nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	payload, ok := parsed.Claims.(*TokenPayload)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if !payload.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return payload, nil
}

// ExpirationOf decodes the expiry timestamp without verifying the signature.
// Only for computing cookie attributes; never an authorization decision.
func (i *Issuer) ExpirationOf(tokenStr string) (time.Time, error) {
	var payload TokenPayload
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &payload); err != nil {
		return time.Time{}, ErrTokenInvalid
	}
	if payload.ExpiresAt == nil {
		return time.Time{}, ErrTokenInvalid
	}
	return payload.ExpiresAt.Time, nil
}
