package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/quorum/pkg/config"
)

// Config holds database configuration.
type Config struct {
	// Driver selects the backend; empty resolves it from URL.
	Driver Driver

	// URL is the PostgreSQL connection string.
	URL string

	// SQLitePath is the SQLite database file. Defaults to ~/.quorum/data.db.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// ConfigFrom turns the DATABASE_* and SQLITE_PATH settings into a
// connection config with the driver already resolved.
func ConfigFrom(settings *config.Config) (Config, error) {
	driver, err := ResolveDriver(settings.DatabaseDriver, settings.DatabaseURL)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Driver:     driver,
		URL:        settings.DatabaseURL,
		SQLitePath: settings.SQLitePath,
		MaxConns:   settings.DatabaseMaxConns,
	}
	if driver == DriverSQLite {
		if path := sqlitePathFromURL(settings.DatabaseURL); path != "" {
			cfg.SQLitePath = path
		}
		cfg.URL = ""
	}
	return cfg, nil
}

// NewConnection creates a database connection based on configuration.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver, err := ResolveDriver(string(cfg.Driver), cfg.URL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		if newPostgresConnection == nil {
			return nil, fmt.Errorf("postgres driver not registered")
		}
		return newPostgresConnection(ctx, cfg)
	case DriverSQLite:
		if newSQLiteConnection == nil {
			return nil, fmt.Errorf("sqlite driver not registered")
		}
		return newSQLiteConnection(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".quorum", "data.db")
}

// EnsureDirectory creates the parent directory for a file path if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Driver implementations register themselves from their package init.
var (
	newPostgresConnection func(ctx context.Context, cfg Config) (Connection, error)
	newSQLiteConnection   func(ctx context.Context, cfg Config) (Connection, error)
)

// RegisterPostgresDriver registers the PostgreSQL connection factory.
func RegisterPostgresDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newPostgresConnection = fn
}

// RegisterSQLiteDriver registers the SQLite connection factory.
func RegisterSQLiteDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newSQLiteConnection = fn
}
