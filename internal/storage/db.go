// Package storage persists the retrieval context cache in a SQLite
// database under .mend/.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"mend/internal/logging"
)

// DB wraps the SQLite connection.
type DB struct {
	conn   *sql.DB
	log    *logging.Logger
	dbPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS context_cache (
    repo       TEXT NOT NULL,
    state_id   TEXT NOT NULL,
    suffix     TEXT NOT NULL,
    value      BLOB NOT NULL,
    created_at TEXT NOT NULL,
    expires_at TEXT NOT NULL,
    PRIMARY KEY (repo, state_id, suffix)
);
`

// Open opens or creates the database at .mend/mend.db under repoRoot.
func Open(repoRoot string, log *logging.Logger) (*DB, error) {
	if log == nil {
		log = logging.Nop()
	}

	mendDir := filepath.Join(repoRoot, ".mend")
	if err := os.MkdirAll(mendDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .mend directory: %w", err)
	}
	dbPath := filepath.Join(mendDir, "mend.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("database opened", logging.Fields{"path": dbPath})
	return &DB{conn: conn, log: log, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.dbPath
}

// Exec executes a statement without returning rows.
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// QueryRow executes a query that returns at most one row.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
