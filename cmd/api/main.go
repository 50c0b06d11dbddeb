package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/org-directory/internal/api/http"
	"github.com/spec-kit/org-directory/internal/api/http/handlers"
	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/config"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/observability"
	"github.com/spec-kit/org-directory/internal/persistence"
	"github.com/spec-kit/org-directory/internal/repository"
	"github.com/spec-kit/org-directory/internal/service"
	"github.com/spec-kit/org-directory/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartSubscribers(logger, notifications)

	deps := service.Dependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Passwords:  auth.NewPasswordPolicy(cfg.Auth.PasswordMinLength),
	}

	if cfg.Seed.Enabled {
		seeded, err := service.NewSeeder(deps).Seed(ctx)
		if err != nil {
			logger.Fatal("failed to seed defaults", zap.Error(err))
		}
		logger.Info("seed check finished", zap.Bool("seeded", seeded))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	sessions := service.NewSessionService(deps, tokens)
	if _, err := sessions.Restore(ctx); err != nil {
		logger.Fatal("failed to restore session", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(tokens, sessions)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, store, metrics),
		Auth:           handlers.NewAuthHandler(sessions),
		Users:          handlers.NewUsersHandler(service.NewUserService(deps)),
		Teams:          handlers.NewTeamsHandler(service.NewTeamService(deps)),
		Directory:      handlers.NewDirectoryHandler(service.NewDirectoryService(deps)),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// openStore builds the record store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.RecordStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisStore(rdb.Client, cfg.Store.KeyPrefix), rdb.Close, nil

	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		store, err := repository.NewPostgresStore(ctx, pg.PoolHandle(), cfg.Store.KeyPrefix)
		if err != nil {
			pg.Close()
			return nil, nil, err
		}
		return store, pg.Close, nil

	case config.StoreDriverMemory:
		logger.Warn("using in-memory record store; data is lost on exit")
		return repository.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
