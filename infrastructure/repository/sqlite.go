package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"cocbot-go/domain/prefs"
)

// currentSchemaVersion is the latest prefs schema version.
const currentSchemaVersion = 1

// SQLitePrefsRepository implements prefs.Repository on a local SQLite file.
type SQLitePrefsRepository struct {
	conn   *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens or creates the database at path, creating its directory.
func OpenSQLite(path string, logger *slog.Logger) (*SQLitePrefsRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return newSQLite(conn, logger, path)
}

// OpenSQLiteInMemory opens a private in-memory database, used in tests and dry runs.
func OpenSQLiteInMemory(logger *slog.Logger) (*SQLitePrefsRepository, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// Every connection to :memory: is a different database.
	conn.SetMaxOpenConns(1)
	return newSQLite(conn, logger, ":memory:")
}

func newSQLite(conn *sql.DB, logger *slog.Logger, path string) (*SQLitePrefsRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &SQLitePrefsRepository{conn: conn, logger: logger}
	if err := r.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Debug("Opened prefs database", "path", path)
	return r, nil
}

func (r *SQLitePrefsRepository) migrate() error {
	if _, err := r.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	if err := r.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		version = 0
	}

	if version < 1 {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS prefs (
				namespace TEXT NOT NULL,
				key       TEXT NOT NULL,
				value     TEXT NOT NULL,
				PRIMARY KEY (namespace, key)
			)`,
			`DELETE FROM schema_version`,
			fmt.Sprintf(`INSERT INTO schema_version (version) VALUES (%d)`, currentSchemaVersion),
		}
		for _, stmt := range statements {
			if _, err := r.conn.Exec(stmt); err != nil {
				return fmt.Errorf("migration v1: %w", err)
			}
		}
	}
	return nil
}

// Close closes the database.
func (r *SQLitePrefsRepository) Close() error {
	return r.conn.Close()
}

// Get returns a single value.
func (r *SQLitePrefsRepository) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var value string
	err := r.conn.QueryRowContext(ctx,
		`SELECT value FROM prefs WHERE namespace = ? AND key = ?`, namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query pref: %w", err)
	}
	return value, true, nil
}

const upsertPref = `INSERT INTO prefs (namespace, key, value) VALUES (?, ?, ?)
	ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value`

// Put upserts a single key.
func (r *SQLitePrefsRepository) Put(ctx context.Context, namespace, key, value string) error {
	if _, err := r.conn.ExecContext(ctx, upsertPref, namespace, key, value); err != nil {
		return fmt.Errorf("failed to upsert pref %s/%s: %w", namespace, key, err)
	}
	return nil
}

// PutAll upserts several keys in one transaction.
func (r *SQLitePrefsRepository) PutAll(ctx context.Context, namespace string, values map[string]string) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range sortedKeys(values) {
		if _, err := tx.ExecContext(ctx, upsertPref, namespace, key, values[key]); err != nil {
			return fmt.Errorf("failed to upsert pref %s/%s: %w", namespace, key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prefs: %w", err)
	}
	return nil
}

// Delete removes a key.
func (r *SQLitePrefsRepository) Delete(ctx context.Context, namespace, key string) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM prefs WHERE namespace = ? AND key = ?`, namespace, key); err != nil {
		return fmt.Errorf("failed to delete pref: %w", err)
	}
	return nil
}

// List returns the whole namespace.
func (r *SQLitePrefsRepository) List(ctx context.Context, namespace string) (map[string]string, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT key, value FROM prefs WHERE namespace = ?`, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query prefs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan pref: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ prefs.Repository = (*SQLitePrefsRepository)(nil)
