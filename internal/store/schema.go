package store

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Games: one row per game, holding the latest server-view snapshot.
CREATE TABLE IF NOT EXISTS game (
    code TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    snapshot TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_game_status ON game(status);

-- Transactions: the append-only money audit log.
CREATE TABLE IF NOT EXISTS game_transaction (
    id TEXT PRIMARY KEY,
    game_code TEXT NOT NULL REFERENCES game(code) ON DELETE CASCADE,
    round INTEGER NOT NULL,
    from_seat INTEGER,
    to_seat INTEGER,
    amount INTEGER NOT NULL CHECK (amount >= 0),
    kind TEXT NOT NULL,
    description TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_game_transaction_game_code ON game_transaction(game_code);
`
