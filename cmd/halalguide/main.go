package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MosinFAM/halal-guide/internal/api"
	"github.com/MosinFAM/halal-guide/internal/config"
	"github.com/MosinFAM/halal-guide/internal/db"
	"github.com/MosinFAM/halal-guide/internal/logs"
	"github.com/MosinFAM/halal-guide/internal/scan"
	"github.com/MosinFAM/halal-guide/internal/storage"
	"github.com/MosinFAM/halal-guide/internal/storage/fixtures"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	if cfg == nil {
		// Help was shown
		return
	}

	logs.Setup(cfg.Debug, cfg.Production())

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	slog.Info("Starting Halal Guide server", "version", Version, "env", cfg.Environment)

	dataset, err := fixtures.Load()
	if err != nil {
		return fmt.Errorf("failed to load built-in dataset: %w", err)
	}
	fallback := storage.NewFallbackStorage(dataset)

	var live storage.Storage
	if cfg.DatabaseURL != "" {
		conn, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer conn.Close()
		live = storage.NewPostgresStorage(conn, cfg.DatabaseURL)
	} else {
		slog.Warn("DATABASE_URL is not set, running in demo mode: reads use the built-in dataset, writes are disabled")
	}
	source := storage.NewSource(live, fallback)

	opts := api.Options{
		APIAccessKey:   cfg.APIAccessKey,
		MapAPIKey:      cfg.MapAPIKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Production:     cfg.Production(),
		Version:        Version,
	}
	scanner, closeScanner := newScanner(ctx, cfg, source, &opts)
	defer closeScanner()

	handler := api.NewHandler(source, scanner, opts)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(handler, opts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ScanTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
		slog.Error("Server error", "error", serveErr)
	}

	slog.Info("Shutting down server gracefully")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
	return serveErr
}

// openDatabase opens the pool and applies migrations when asked. A server
// that does not answer at startup is not fatal: reads fall back to the
// built-in dataset until it does, and pending migrations run once it answers.
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	if err := db.Ping(ctx, conn); err != nil {
		slog.Error("Database is not reachable, serving built-in dataset until it is", "error", err)
		if cfg.AutoMigrate {
			go migrateWhenReady(ctx, conn, cfg.MigrationsDir)
		}
		return conn, nil
	}
	slog.Info("Connected to PostgreSQL successfully")

	if cfg.AutoMigrate {
		if err := db.Migrate(conn, cfg.MigrationsDir); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func migrateWhenReady(ctx context.Context, conn *sql.DB, dir string) {
	if err := db.WaitReady(ctx, conn, 5*time.Second); err != nil {
		return
	}
	slog.Info("Database is reachable, applying migrations")
	if err := db.Migrate(conn, dir); err != nil {
		slog.Error("Deferred migration failed", "error", err)
	}
}

// newScanner wires the provider client and the optional cache and archive,
// recording in opts which of them are active. Cache and archive failures only
// disable those features.
func newScanner(ctx context.Context, cfg *config.Config, source *storage.Source, opts *api.Options) (*scan.Scanner, func()) {
	closers := []func(){}
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.AnthropicAPIKey == "" {
		slog.Warn("ANTHROPIC_API_KEY is not set, product scanning is disabled")
		return scan.NewScanner(nil, source), cleanup
	}

	var scanOpts []scan.Option
	if cfg.RedisAddr != "" {
		cache, err := scan.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.ScanCacheTTL)
		if err != nil {
			slog.Warn("Scan cache disabled", "error", err)
		} else {
			scanOpts = append(scanOpts, scan.WithCache(cache))
			opts.CacheEnabled = true
			closers = append(closers, func() { cache.Close() })
		}
	}
	if cfg.S3Bucket != "" {
		archive, err := scan.NewS3Archive(ctx, scan.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.AWSRegion,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		})
		if err != nil {
			slog.Warn("Scan image archive disabled", "error", err)
		} else {
			scanOpts = append(scanOpts, scan.WithArchive(archive))
			opts.ArchiveEnabled = true
		}
	}

	client := scan.NewClient(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.ScanTimeout)
	return scan.NewScanner(client, source, scanOpts...), cleanup
}
