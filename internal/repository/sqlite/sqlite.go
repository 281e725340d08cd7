package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hasangumus0707/spendsmart/internal/domain"
	"github.com/hasangumus0707/spendsmart/internal/migrations"
	sqlitemigrations "github.com/hasangumus0707/spendsmart/internal/repository/sqlite/migrations"
)

// DB wraps a SQLite connection and implements domain.Database.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection serializes writers, and keeps every caller on
	// the same database when dbPath is ":memory:".
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies the embedded SQLite migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB, sqlitemigrations.FS, migrations.SQLite)
}

// Expenses returns the SQLite-backed expense repository.
func (db *DB) Expenses() domain.ExpenseRepository {
	return NewExpenseRepository(db)
}

func (db *DB) Close() error {
	return db.SqlDB.Close()
}
