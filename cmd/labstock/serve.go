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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/api"
	"github.com/erazemk/labstock/internal/db"
	"github.com/erazemk/labstock/internal/metrics"
	"github.com/erazemk/labstock/internal/store"
)

func serveCmd() *cobra.Command {
	var adminUser, catalogPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Opens the database, creating and seeding it on first run, and serves the JSON API until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), adminUser, catalogPath)
		},
	}

	cmd.Flags().StringVarP(&adminUser, "user", "u", defaultAdmin, "admin username on first run")
	cmd.Flags().StringVar(&catalogPath, "catalog", defaultCatalog, "seed catalog used on first run (empty to skip)")
	return cmd
}

func runServe(ctx context.Context, adminUser, catalogPath string) error {
	logger := app.logger
	dbPath := app.cfg.Database.Path

	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		res, err := initDatabase(ctx, dbPath, adminUser, catalogPath)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		res.database.Close()
		printInitResult(os.Stdout, dbPath, res)
		fmt.Println()
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	logger.Info("database ready", zap.String("path", dbPath))

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	if n, err := store.PurgeExpiredTokens(ctx, database, time.Now()); err != nil {
		logger.Warn("failed to purge expired tokens", zap.Error(err))
	} else if n > 0 {
		logger.Info("purged expired revoked tokens", zap.Int64("count", n))
	}

	handler := api.NewRouter(&api.Deps{
		DB:          database,
		JWTSecret:   jwtSecret,
		TokenTTL:    time.Duration(app.cfg.Auth.TokenHours) * time.Hour,
		Rotation:    app.rotation,
		Clock:       app.clock,
		Logger:      logger,
		Metrics:     metrics.New(),
		CORSOrigins: app.cfg.Server.CorsAllowedOrigins,
	})

	server := &http.Server{
		Addr:              app.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       app.cfg.Server.ReadTimeout,
		WriteTimeout:      app.cfg.Server.WriteTimeout,
		IdleTimeout:       app.cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("addr", server.Addr),
		zap.String("timezone", app.cfg.Timezone.Name),
		zap.Int("teams", len(app.rotation.Teams())),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info("server stopped, closing database")
	return nil
}
