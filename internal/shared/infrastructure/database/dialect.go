package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Rebind rewrites '?' placeholders into the bind style of driver.
func Rebind(driver Driver, query string) string {
	if driver == DriverPostgres {
		return sqlx.Rebind(sqlx.DOLLAR, query)
	}
	return query
}

// In expands slice arguments bound to "IN (?)" into one placeholder per element.
func In(query string, args ...any) (string, []any, error) {
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("expand IN clause: %w", err)
	}
	return expanded, expandedArgs, nil
}
