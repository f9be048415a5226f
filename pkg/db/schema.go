package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqliteSchema mirrors the goose migrations for local SQLite runs and tests.
// Postgres always goes through pkg/migrate.
//
//go:embed sqlite_schema.sql
var sqliteSchema string

// ApplySQLiteSchema creates every catalog table on a SQLite connection.
// It is idempotent.
func ApplySQLiteSchema(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	for _, stmt := range strings.Split(sqliteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}

// OpenSQLite opens dsn with the SQLite driver and applies the catalog schema.
func OpenSQLite(ctx context.Context, dsn string) (*Client, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	// one connection: SQLite serialises writers and shared-cache memory
	// databases otherwise report SQLITE_LOCKED across connections.
	sqlDB.SetMaxOpenConns(1)

	if err := ApplySQLiteSchema(ctx, conn); err != nil {
		return nil, err
	}
	return Wrap(conn), nil
}
