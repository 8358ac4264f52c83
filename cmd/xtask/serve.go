package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/nxsys/task-tracker/internal/api/http"
	"github.com/nxsys/task-tracker/internal/api/http/handlers"
	"github.com/nxsys/task-tracker/internal/auth"
	"github.com/nxsys/task-tracker/internal/cache"
	"github.com/nxsys/task-tracker/internal/events"
	"github.com/nxsys/task-tracker/internal/observability"
	"github.com/nxsys/task-tracker/internal/persistence"
	"github.com/nxsys/task-tracker/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	env, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer env.Close()
	cfg, logger := env.cfg, env.logger

	if cfg.Database.RunMigrations {
		if err := env.store.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	app := newApp(env, redis)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("driver", env.store.Driver),
			zap.String("env", cfg.App.Env))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
			return err
		}
		return nil
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	return nil
}

// newApp assembles services, middlewares and routes on top of an opened environment.
// A nil redis disables the category cache.
func newApp(env *cmdEnv, redis *persistence.Redis) *fiber.App {
	cfg, logger := env.cfg, env.logger

	var categoryCache cache.CategoryCache
	if redis != nil {
		categoryCache = cache.NewCategoryCache(redis.Client, cfg.Redis.CategoryTTL())
	}

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, logger, cfg.Notification).RegisterHandlers()

	userService := service.NewUserService(service.UserDependencies{
		UserRepo: env.store.Users,
		Cache:    categoryCache,
		Logger:   logger,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    env.store.Users,
		UserService: userService,
		Logger:      logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   env.store.Tasks,
		UserRepo:   env.store.Users,
		Categories: userService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, env.store, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Tasks:          handlers.NewTasksHandler(taskService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.Tokens(), env.store.Users),
	})
	return app
}
