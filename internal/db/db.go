package db

import (
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const roundSchema = `
CREATE TABLE IF NOT EXISTS rounds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	round INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	winner_name TEXT NOT NULL DEFAULT '',
	winner_mark TEXT NOT NULL DEFAULT '',
	board TEXT NOT NULL,
	finished_at DATETIME NOT NULL,
	UNIQUE (session_id, round)
);
CREATE INDEX IF NOT EXISTS idx_rounds_session ON rounds (session_id, round);`

// Connect opens the SQLite database at path and makes sure the round
// archive schema exists. Use ":memory:" for a throwaway database.
func Connect(path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// One writer keeps SQLite from returning SQLITE_BUSY, and keeps a
	// :memory: database alive across calls.
	pool.SetMaxOpenConns(1)

	if err := InitializeSchema(pool); err != nil {
		_ = pool.Close()
		return nil, err
	}

	slog.Info("Connected to archive database", "path", path)
	return pool, nil
}

// InitializeSchema creates the tables used by the round archive.
func InitializeSchema(db *sqlx.DB) error {
	if _, err := db.Exec(roundSchema); err != nil {
		return fmt.Errorf("failed to create rounds table: %w", err)
	}
	return nil
}
