package secretstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/client/migrations"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteStore persists secrets in the `secrets` table of a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (creating if needed) the database at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open secrets db: %w", err)
	}

	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate secrets db: %w", err)
	}

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (r *SQLiteStore) Close() error {
	return r.db.Close()
}

func (r *SQLiteStore) Get(ctx context.Context, name string) (string, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM secrets WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get secret[%s]: %w", name, err)
	}
	return string(value), true, nil
}

func (r *SQLiteStore) Set(ctx context.Context, name, value string) error {
	return set(ctx, r.db, name, value)
}

func (r *SQLiteStore) Delete(ctx context.Context, name string) error {
	return del(ctx, r.db, name)
}

func (r *SQLiteStore) SetMany(ctx context.Context, values map[string]string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for name, value := range values {
			if err := set(ctx, tx, name, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteStore) DeleteMany(ctx context.Context, names ...string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, name := range names {
			if err := del(ctx, tx, name); err != nil {
				return err
			}
		}
		return nil
	})
}

func set(ctx context.Context, db dbx.DBTX, name, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO secrets (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, name, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set secret[%s]: %w", name, err)
	}
	return nil
}

func del(ctx context.Context, db dbx.DBTX, name string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM secrets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete secret[%s]: %w", name, err)
	}
	return nil
}
