package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/commerce-service/internal/api/http"
	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/observability"
	"github.com/spec-kit/commerce-service/internal/persistence"
	"github.com/spec-kit/commerce-service/internal/repository"
	"github.com/spec-kit/commerce-service/internal/service"
	"github.com/spec-kit/commerce-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	ledger := repository.NewRevocationLedger(userRepo, adminRepo)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	issuer := auth.NewIssuer(cfg.Auth)
	authService := service.NewAuthService(*cfg, issuer, service.AuthDependencies{
		UserRepo:   userRepo,
		AdminRepo:  adminRepo,
		Ledger:     ledger,
		Dispatcher: dispatcher,
	})
	gate := auth.NewGate(issuer, ledger, cfg.Auth.RefreshCookieName)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.IsProduction())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Authentication: handlers.NewAuthenticationHandler(authService),
		Users:          handlers.NewUsersHandler(authService, userRepo),
		Customers:      handlers.NewCustomersHandler(customerRepo),
		Gate:           gate,
		LoginLimiter:   httptransport.NewTokenBucket(cfg.RateLimit, redis.ClientHandle()),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
