// Package migrations applies the embedded schema for the configured driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationFS embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL
)`

// Migration is a single versioned schema change.
type Migration struct {
	Version string
	SQL     string
}

// Load returns the migrations for driver in version order.
func Load(driver database.Driver) ([]Migration, error) {
	if !driver.IsValid() {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}

	dir := driver.String()
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		body, err := fs.ReadFile(migrationFS, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(name, ".up.sql"),
			SQL:     string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Runner applies pending migrations and records them in schema_migrations.
type Runner struct {
	conn   database.Connection
	logger *slog.Logger
}

// NewRunner creates a migration runner.
func NewRunner(conn database.Connection, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{conn: conn, logger: logger}
}

// Up applies every migration not yet recorded and returns the versions applied.
// Each migration runs in its own transaction.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	migrations, err := Load(r.conn.Driver())
	if err != nil {
		return nil, err
	}

	if _, err := r.conn.Exec(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return done, err
		}
		r.logger.Info("migration applied", "version", m.Version)
		done = append(done, m.Version)
	}
	return done, nil
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", m.Version, err)
	}

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to execute migration %s: %w", m.Version, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		m.Version, database.UTC(time.Now()),
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
	}

	return tx.Commit(ctx)
}

func (r *Runner) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := r.conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
