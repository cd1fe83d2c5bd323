package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/casely/casely/internal/cases"
	"github.com/casely/casely/internal/sessions"
	"github.com/casely/casely/internal/transcript"
	"github.com/casely/casely/internal/users"
)

// NewDB opens a bun database handle over the pgdriver connector.
func NewDB(dsn string, maxConnections int) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(maxConnections)
	sqldb.SetMaxIdleConns(maxConnections / 2)
	sqldb.SetConnMaxLifetime(time.Hour)

	return bun.NewDB(sqldb, pgdialect.New())
}

// CreateTables creates all tables the server needs
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*users.UserSchema)(nil),
		(*cases.CaseSchema)(nil),
		(*sessions.SessionSchema)(nil),
		(*transcript.TurnSchema)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	return nil
}

// CreateIndexes creates all indexes the server needs
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	allIndexes := append([]string{}, sessions.SessionIndexes...)
	allIndexes = append(allIndexes, transcript.TurnIndexes...)

	for _, indexSQL := range allIndexes {
		_, err := db.ExecContext(ctx, indexSQL)
		if err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}

// Migrate runs table and index creation in order
func Migrate(ctx context.Context, db *bun.DB) error {
	if err := CreateTables(ctx, db); err != nil {
		return err
	}
	return CreateIndexes(ctx, db)
}
