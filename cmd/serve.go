package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/eduflow/eduflow-server/internal/api"
	"github.com/eduflow/eduflow-server/internal/config"
	"github.com/eduflow/eduflow-server/internal/metrics"
	"github.com/eduflow/eduflow-server/internal/middleware"
	"github.com/eduflow/eduflow-server/internal/reporting"
	"github.com/eduflow/eduflow-server/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	keepAliveInterval = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd(setup func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: run(setup, func(cmd *cobra.Command, args []string, e *env) error {
			return serve(cmd.Context(), e)
		}),
	}
}

func serve(parent context.Context, e *env) error {
	cfg, logger := e.cfg, e.logger

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appDB, crmDB, err := openDatabases(ctx, e)
	if err != nil {
		return err
	}
	defer closeDatabase(logger, "app", appDB)
	defer closeDatabase(logger, "crm", crmDB)

	developers := storage.NewAppStore(appDB.Gorm)
	accounts := storage.NewCRMStore(crmDB.Gorm)

	if err := developers.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating app database: %w", err)
	}
	if cfg.CRMDatabase.AutoMigrate {
		if err := accounts.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating crm database: %w", err)
		}
	}

	rateStore, closeRate := rateLimitStore(ctx, cfg.Redis, logger)
	defer closeRate()

	app := api.NewApp(api.Dependencies{
		Config:         cfg,
		Logger:         logger,
		Metrics:        metrics.New(),
		Accounts:       accounts,
		Developers:     developers,
		Reports:        reporting.NewPostgresSource(crmDB.Pool),
		RateLimitStore: rateStore,
	})

	go keepAlive(ctx, developers, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.String("version", version),
		)
		serveErr <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	return nil
}

// openDatabases connects to the app database with its configured driver and to the CRM
// database, which is always PostgreSQL.
func openDatabases(ctx context.Context, e *env) (*storage.Database, *storage.Database, error) {
	appDB, err := storage.Open(ctx, e.cfg.Database, e.cfg.Pool)
	if err != nil {
		return nil, nil, fmt.Errorf("opening app database: %w", err)
	}

	crmDB, err := storage.OpenPostgres(ctx, e.cfg.CRMDatabase, e.cfg.Pool)
	if err != nil {
		closeDatabase(e.logger, "app", appDB)
		return nil, nil, fmt.Errorf("opening crm database: %w", err)
	}

	e.logger.Info("Databases connected",
		zap.String("app", e.cfg.Database.DBName),
		zap.String("crm", e.cfg.CRMDatabase.DBName),
	)
	return appDB, crmDB, nil
}

func closeDatabase(logger *zap.Logger, name string, db *storage.Database) {
	if err := db.Close(); err != nil {
		logger.Warn("Closing database failed", zap.String("database", name), zap.Error(err))
	}
}

// rateLimitStore uses redis when enabled and reachable, and the in-process store otherwise.
func rateLimitStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (middleware.RateLimitStore, func()) {
	if !cfg.Enabled {
		return middleware.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, using in-memory rate limiting",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		_ = client.Close()
		return middleware.NewMemoryStore(), func() {}
	}

	return middleware.NewRedisStore(client), func() {
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			logger.Warn("Closing redis failed", zap.Error(err))
		}
	}
}

func keepAlive(ctx context.Context, db *storage.AppStore, logger *zap.Logger) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := db.Ping(pingCtx); err != nil {
				logger.Warn("Keep-alive ping failed", zap.Error(err))
			}
			cancel()
		}
	}
}
