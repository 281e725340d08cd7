package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"slices"

	"github.com/hasangumus0707/spendsmart/internal/logger"
)

// Dialect selects the placeholder syntax used for bookkeeping queries.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) placeholder() string {
	if d == Postgres {
		return "$1"
	}
	return "?"
}

const createTrackingTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

type runner struct {
	db      *sql.DB
	fsys    fs.FS
	dialect Dialect
}

// Run applies the top-level .sql files of fsys that are not yet recorded in
// schema_migrations, in filename order, each in its own transaction.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dialect Dialect) error {
	r := runner{db: db, fsys: fsys, dialect: dialect}
	log := logger.FromContext(ctx)

	if _, err := db.ExecContext(ctx, createTrackingTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	pending, err := r.pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		log.Debug().Msg("schema up to date")
		return nil
	}

	for _, name := range pending {
		if err := r.apply(ctx, name); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		log.Info().Str("file", name).Msg("migration applied")
	}
	return nil
}

// pending returns the migration files with no schema_migrations row, sorted.
func (r runner) pending(ctx context.Context) ([]string, error) {
	names, err := fs.Glob(r.fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migration files: %w", err)
	}
	slices.Sort(names)

	rows, err := r.db.QueryContext(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		done[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}

	return slices.DeleteFunc(names, func(name string) bool {
		_, ok := done[name]
		return ok
	}), nil
}

func (r runner) apply(ctx context.Context, name string) error {
	body, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return err
	}
	record := "INSERT INTO schema_migrations (filename) VALUES (" + r.dialect.placeholder() + ")"
	if _, err := tx.ExecContext(ctx, record, name); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}
