package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/observability"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration, production bool) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics, production))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware converts errors and panics into the JSON error
// envelope. Internal detail stays out of the response body; in
// non-production environments it is logged for diagnosis.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, production bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if !production {
					logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				}
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code())
				}
				if domainErr.Status >= 500 && !production {
					logger.Error("request failed", zap.Error(domainErr))
				}

				body := fiber.Map{
					"status":  domainErr.Status,
					"code":    domainErr.Code(),
					"message": domainErr.Message,
				}
				if domainErr.Redirect != nil {
					body["redirect"] = *domainErr.Redirect
				}
				c.Status(domainErr.Status)
				_ = c.JSON(fiber.Map{"error": body})
				err = nil
			}
		}()
		return c.Next()
	}
}
