package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

const payloadKey = "token_payload"

// Route patterns that switch the gate away from the default access class.
var (
	refreshTokenRoutes = map[string]struct{}{
		"/v1/authentication/refresh-access-token": {},
		"/v1/authentication/logout":               {},
	}
	validationTokenRoutes = map[string]struct{}{
		"/v1/users/:id/validate": {},
	}
)

// Gate is the request-time verification pipeline guarding protected routes.
// It runs a fixed sequence of stages and short-circuits on the first
// failure; handlers never receive a partially verified payload.
type Gate struct {
	issuer     *Issuer
	ledger     RevocationLedger
	cookieName string
}

// NewGate constructs the gate.
func NewGate(issuer *Issuer, ledger RevocationLedger, refreshCookieName string) *Gate {
	return &Gate{issuer: issuer, ledger: ledger, cookieName: refreshCookieName}
}

// gateRequest carries intermediate state between stages.
type gateRequest struct {
	class      Class
	credential string
	payload    *TokenPayload
}

type stage func(c *fiber.Ctx, req *gateRequest) error

// Handle enforces authentication for protected routes. On success the
// decoded payload is attached to the request context.
func (g *Gate) Handle(c *fiber.Ctx) error {
	req := &gateRequest{}
	for _, run := range []stage{g.classify, g.verify, g.checkRevocation} {
		if err := run(c, req); err != nil {
			return err
		}
	}
	c.Locals(payloadKey, req.payload)
	return c.Next()
}

// classify selects the expected token class from the matched route and
// extracts the credential from the cookie or the Authorization header.
func (g *Gate) classify(c *fiber.Ctx, req *gateRequest) error {
	route := c.Route().Path

	if _, ok := refreshTokenRoutes[route]; ok {
		req.class = ClassRefresh
		req.credential = c.Cookies(g.cookieName)
		if req.credential == "" {
			return apperrors.NewUnauthorized(apperrors.SubtypeDefault, "Access unauthorized.")
		}
		return nil
	}

	req.class = ClassAccess
	if _, ok := validationTokenRoutes[route]; ok {
		req.class = ClassValidation
	}

	authorization := c.Get("Authorization")
	if authorization == "" || !strings.HasPrefix(authorization, "Bearer ") {
		return apperrors.NewUnauthorized(apperrors.SubtypeDefault, "Access unauthorized.")
	}
	req.credential = strings.TrimPrefix(authorization, "Bearer ")
	if req.credential == "" {
		return apperrors.NewUnauthorized(apperrors.SubtypeDefault, "Access unauthorized.")
	}
	return nil
}

// verify checks signature and expiry against the classified class secret.
func (g *Gate) verify(c *fiber.Ctx, req *gateRequest) error {
	payload, err := g.issuer.Verify(req.class, req.credential)
	if err != nil {
		if err == ErrTokenExpired {
			return apperrors.NewUnauthorized(apperrors.SubtypeExpired, "Access unauthorized.")
		}
		return apperrors.NewUnauthorized(apperrors.SubtypeInvalid, "Access unauthorized.")
	}
	req.payload = payload
	return nil
}

// checkRevocation compares the payload version against the ledger entry for
// the store matching the payload role. A mismatch is answered with the same
// generic unauthorized as a missing credential so revocation is
// indistinguishable from the absence of a session. A vanished principal
// passes through; existence is enforced by whichever handler needs it.
func (g *Gate) checkRevocation(c *fiber.Ctx, req *gateRequest) error {
	version, found, err := g.ledger.CurrentVersion(c.Context(), req.payload.Role, req.payload.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if found && version != req.payload.TokenVersion {
		return apperrors.NewUnauthorized(apperrors.SubtypeDefault, "Access unauthorized.")
	}
	return nil
}

// PayloadFromContext retrieves the verified token payload.
func PayloadFromContext(c *fiber.Ctx) (*TokenPayload, bool) {
	val := c.Locals(payloadKey)
	if val == nil {
		return nil, false
	}
	payload, ok := val.(*TokenPayload)
	return payload, ok
}
