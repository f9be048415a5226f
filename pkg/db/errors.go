package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure. When
// constraintName is set, only violations naming that constraint (or, on
// SQLite, that column) match.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode != sqlite3.ErrConstraintUnique && liteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return false
		}
		return constraintName == "" || sqliteConstraintMatches(liteErr.Error(), constraintName)
	}

	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// sqliteConstraintMatches checks a Postgres-style name such as
// "products_slug_key" against SQLite's "UNIQUE constraint failed:
// products.slug" message. Table names may contain underscores, so every split
// point is tried.
func sqliteConstraintMatches(msg, name string) bool {
	if strings.Contains(msg, name) {
		return true
	}
	trimmed := strings.TrimSuffix(name, "_key")
	for i := 1; i < len(trimmed)-1; i++ {
		if trimmed[i] != '_' {
			continue
		}
		if strings.Contains(msg, trimmed[:i]+"."+trimmed[i+1:]) {
			return true
		}
	}
	return false
}
