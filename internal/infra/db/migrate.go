package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/desidobreva/CinemaReservations/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
)

// Migrator drives the atlas CLI against the versioned migrations directory.
type Migrator struct {
	client *atlasexec.Client
	dirURL string
	dbURL  string
}

// NewMigrator needs the atlas binary on PATH. dir is the migrations directory
// holding atlas.sum.
func NewMigrator(cfg config.DBConfig, dir string) (*Migrator, error) {
	client, err := atlasexec.NewClient(".", "atlas")
	if err != nil {
		return nil, fmt.Errorf("failed to init atlas client: %w", err)
	}

	return &Migrator{
		client: client,
		dirURL: "file://" + dir,
		dbURL:  cfg.BuildDSN(),
	}, nil
}

// Apply runs every pending migration and returns how many were applied.
func (m *Migrator) Apply(ctx context.Context) (int, error) {
	res, err := m.client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{
		URL:    m.dbURL,
		DirURL: m.dirURL,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Info("migrations applied", "count", len(res.Applied), "current", res.Current, "target", res.Target)
	return len(res.Applied), nil
}

// Status reports the current revision and the number of pending files.
func (m *Migrator) Status(ctx context.Context) (string, int, error) {
	res, err := m.client.MigrateStatus(ctx, &atlasexec.MigrateStatusParams{
		URL:    m.dbURL,
		DirURL: m.dirURL,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to read migration status: %w", err)
	}

	return res.Current, len(res.Pending), nil
}
