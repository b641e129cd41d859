package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/MosinFAM/halal-guide/internal/db"
	"github.com/MosinFAM/halal-guide/internal/logs"
	"github.com/MosinFAM/halal-guide/internal/storage"
	"github.com/MosinFAM/halal-guide/internal/storage/fixtures"
)

// seedConfig holds the seed command options
type seedConfig struct {
	DatabaseURL   string `long:"database-url" env:"DATABASE_URL" required:"true" description:"PostgreSQL DSN"`
	MigrationsDir string `long:"migrations-dir" env:"MIGRATIONS_DIR" default:"./migrations" description:"Directory of goose migrations"`
	Migrate       bool   `long:"migrate" description:"Apply pending migrations first"`
	Reset         bool   `long:"reset" description:"Empty every table before seeding"`
	Debug         bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func main() {
	_ = godotenv.Load()

	var cfg seedConfig
	if _, err := flags.NewParser(&cfg, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
	logs.Setup(cfg.Debug, false)

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg seedConfig) error {
	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Migrate {
		if err := db.Migrate(conn, cfg.MigrationsDir); err != nil {
			return err
		}
	}

	dataset, err := fixtures.Load()
	if err != nil {
		return err
	}

	var seeder storage.Seeder = storage.NewPostgresStorage(conn, cfg.DatabaseURL)
	if cfg.Reset {
		if err := seeder.Reset(ctx); err != nil {
			return err
		}
		slog.Info("Cleared all tables")
	}

	if err := seeder.Seed(ctx, dataset); err != nil {
		return err
	}

	comments := 0
	for _, p := range dataset.Posts {
		comments += len(p.Comments)
	}
	slog.Info("Seed data created successfully",
		"places", len(dataset.Places), "posts", len(dataset.Posts), "comments", comments)
	return nil
}
