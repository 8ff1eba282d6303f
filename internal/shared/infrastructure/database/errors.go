package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNoRows is returned when a query expected to return a row returns none.
	ErrNoRows = errors.New("no rows in result set")

	// ErrConstraintViolation marks a write rejected by a referential or
	// uniqueness constraint.
	ErrConstraintViolation = errors.New("constraint violation")
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// SQLite extended result codes.
const (
	sqliteConstraint           = 19
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// sqliteError matches the error type of modernc.org/sqlite without importing it here.
type sqliteError interface {
	error
	Code() int
}

// IsNoRows returns true if the error indicates no rows were found.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique or primary key violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var sqlErr sqliteError
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		case sqliteConstraint:
			return strings.Contains(sqlErr.Error(), "UNIQUE")
		}
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var sqlErr sqliteError
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqliteConstraintForeignKey:
			return true
		case sqliteConstraint:
			return strings.Contains(sqlErr.Error(), "FOREIGN KEY")
		}
	}
	return false
}

// ClassifyWriteError marks constraint failures with ErrConstraintViolation
// and passes every other error through unchanged.
func ClassifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) || IsForeignKeyViolation(err) {
		return errors.Join(ErrConstraintViolation, err)
	}
	return err
}
