package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// RequiresRole reports whether the payload carries exactly the expected
// role. Unknown roles never match; the set is closed.
func RequiresRole(expected domain.Role, payload *TokenPayload) bool {
	if payload == nil || !expected.Valid() || !payload.Role.Valid() {
		return false
	}
	return payload.Role == expected
}

// RequireRole returns middleware enforcing RequiresRole after the gate has
// run. Insufficient role answers 403 with the role subtype, distinct from
// ownership failures.
func RequireRole(expected domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, ok := PayloadFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(apperrors.SubtypeDefault, "Access unauthorized.")
		}
		if !RequiresRole(expected, payload) {
			return apperrors.NewForbidden(apperrors.SubtypeSecondary, "Access forbidden.")
		}
		return c.Next()
	}
}
