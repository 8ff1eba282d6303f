package database

import (
	"fmt"
	"strings"
)

// Driver represents a database backend type.
type Driver string

const (
	// DriverPostgres represents PostgreSQL database.
	DriverPostgres Driver = "postgres"
	// DriverSQLite represents SQLite database.
	DriverSQLite Driver = "sqlite"
)

// sqliteURLPrefixes mark a DATABASE_URL that points at a SQLite file.
var sqliteURLPrefixes = []string{"sqlite://", "file:"}

func (d Driver) String() string {
	return string(d)
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// ParseDriver reads a DATABASE_DRIVER value. Empty and "auto" return ""
// so the caller falls back to the URL.
func ParseDriver(name string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return "", nil
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", name)
	}
}

// ResolveDriver picks the backend for a DATABASE_DRIVER and DATABASE_URL pair.
// An explicit driver wins; without one, no URL means local SQLite and any
// URL that is not a SQLite file is handed to pgx.
func ResolveDriver(name, url string) (Driver, error) {
	driver, err := ParseDriver(name)
	if err != nil || driver != "" {
		return driver, err
	}
	if url == "" || sqlitePathFromURL(url) != "" {
		return DriverSQLite, nil
	}
	return DriverPostgres, nil
}

// sqlitePathFromURL returns the file behind a sqlite:// or file: URL, or "".
func sqlitePathFromURL(url string) string {
	for _, prefix := range sqliteURLPrefixes {
		if path, ok := strings.CutPrefix(url, prefix); ok {
			return path
		}
	}
	return ""
}
