package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/infra/db"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
)

func main() {
	dir := flag.String("dir", "migrations", "migrations directory")
	statusOnly := flag.Bool("status", false, "print migration status and exit")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.LoadDBConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	migrator, err := db.NewMigrator(cfg, *dir)
	if err != nil {
		slog.Error("failed to create migrator", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *statusOnly {
		current, pending, err := migrator.Status(ctx)
		if err != nil {
			slog.Error("status failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migration status", "current", current, "pending", pending)
		return
	}

	if _, err := migrator.Apply(ctx); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}
