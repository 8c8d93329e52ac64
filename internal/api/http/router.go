package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Authentication *handlers.AuthenticationHandler
	Users          *handlers.UsersHandler
	Customers      *handlers.CustomersHandler
	Gate           *auth.Gate
	LoginLimiter   fiber.Handler
}

// RegisterRoutes wires HTTP routes. Refresh and logout read the refresh
// cookie, the validate route expects a validation-class bearer token, and
// every other protected route expects an access-class bearer token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1")

	authn := v1.Group("/authentication")
	authn.Post("/login", cfg.LoginLimiter, cfg.Authentication.Login)
	authn.Post("/admin/login", cfg.LoginLimiter, cfg.Authentication.AdminLogin)
	authn.Post("/refresh-access-token", cfg.Gate.Handle, cfg.Authentication.RefreshAccessToken)
	authn.Post("/logout", cfg.Gate.Handle, cfg.Authentication.Logout)

	v1.Post("/users", cfg.LoginLimiter, cfg.Users.Create)
	v1.Get("/users", cfg.Gate.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Users.Index)
	v1.Post("/users/validation-token", cfg.LoginLimiter, cfg.Users.RequestValidationToken)
	v1.Post("/users/:id/validate", cfg.Gate.Handle, cfg.Users.Validate)

	v1.Get("/customers", cfg.Gate.Handle, cfg.Customers.Index)
	v1.Post("/customers", cfg.Gate.Handle, cfg.Customers.Create)
}
