package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/auth"
	"github.com/maxviazov/taskboard-service/internal/cache"
	"github.com/maxviazov/taskboard-service/internal/config"
	"github.com/maxviazov/taskboard-service/internal/handler"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/maxviazov/taskboard-service/internal/repository/postgres"
	"github.com/maxviazov/taskboard-service/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, log)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := repository.New(ctx, cfg, &log)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer db.Close()
	pool := db.Pool()

	ready := handler.MultiPinger{"postgres": postgres.NewPinger(pool)}

	var dashboardCache cache.DashboardCache = cache.Noop{}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer client.Close()
		rc := cache.NewRedis(client, cfg.Redis.DashboardTTL, log)
		dashboardCache = rc
		ready["redis"] = rc
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	paging := service.NewPaging(cfg.Pagination)

	users := postgres.NewUserRepository(pool)
	projects := postgres.NewProjectRepository(pool)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	handler.Register(engine, handler.Deps{
		Ready:     ready,
		Accounts:  service.NewAccountService(users, postgres.NewTxManager(pool), auth.NewHasher(cfg.Auth.BcryptCost), tokens, paging, log),
		Projects:  service.NewProjectService(projects, dashboardCache, paging, log),
		Tasks:     service.NewTaskService(postgres.NewTaskRepository(pool), projects, dashboardCache, paging, log),
		Dashboard: service.NewDashboardService(postgres.NewDashboardRepository(pool), dashboardCache, log),
		Tokens:    tokens,
		Metrics:   handler.NewMetrics("taskboard"),
		Logger:    log,

		RangeLimits: cfg.Pagination.RangeLimits(),
	})

	server := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.App.Env).Msg("http server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}
