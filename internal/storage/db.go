package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finledger/internal/core"
	"finledger/internal/repository"

	_ "modernc.org/sqlite"
)

var (
	_ repository.AccountRepository   = (*AccountStore)(nil)
	_ repository.CategoryRepository  = (*CategoryStore)(nil)
	_ repository.OperationRepository = (*OperationStore)(nil)
)

// DB is the shared SQLite handle behind the account, category and
// operation stores. Create it once per process and hand it to each store.
type DB struct {
	db      *sql.DB
	queries *Queries
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)"

	version, err := migrateUp(dsn)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if version != schemaVersion {
		return nil, fmt.Errorf("database schema version %d, want %d", version, schemaVersion)
	}
	slog.Debug("Ledger schema ready", "component", "storage", "path", dbPath, "version", version)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite would serialize writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{
		db:      db,
		queries: New(db),
	}, nil
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// withTx runs fn inside a transaction. Any error from fn rolls the
// transaction back and is returned unchanged.
func (d *DB) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return txErr("begin", err)
	}

	if err := fn(d.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "component", "storage", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return txErr("commit", err)
	}
	return nil
}

// txErr marks a storage failure inside a transactional sequence.
func txErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrTransaction, step, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func notFound(kind string, id fmt.Stringer) error {
	return fmt.Errorf("%w: %s %s", core.ErrNotFound, kind, id)
}

func alreadyExists(kind string, id fmt.Stringer) error {
	return fmt.Errorf("%w: %s %s", core.ErrAlreadyExists, kind, id)
}
