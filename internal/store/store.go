// Package store persists game snapshots and the money audit log to SQLite.
//
// The snapshot column holds the full server-view state of a game encoded as
// JSON and is rewritten on every save. The transaction table is append-only;
// callers pass only entries that have not been persisted yet.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/paintbid/paintbid/internal/game"
)

// ErrNotFound is returned when a game code has no persisted row.
var ErrNotFound = errors.New("store: game not found")

// Store wraps a SQLite database holding game state.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot upserts the server-view snapshot for a game.
func (s *Store) SaveSnapshot(ctx context.Context, snap *game.Snapshot) error {
	if snap == nil {
		return errors.New("store: nil snapshot")
	}
	if snap.ViewerSeat != game.ServerSeat {
		return errors.New("store: refusing to persist a redacted snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game (code, status, snapshot, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			status = excluded.status,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		snap.Code, string(snap.Status), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the persisted server-view snapshot for code.
func (s *Store) LoadSnapshot(ctx context.Context, code string) (*game.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT snapshot FROM game WHERE code = ?", code).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// GameCodes returns the codes of all persisted games with the given status,
// or all games when status is empty.
func (s *Store) GameCodes(ctx context.Context, status game.Status) ([]string, error) {
	query := "SELECT code FROM game ORDER BY updated_at DESC"
	args := []any{}
	if status != "" {
		query = "SELECT code FROM game WHERE status = ? ORDER BY updated_at DESC"
		args = append(args, string(status))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan game code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// AppendTransactions writes new ledger entries for a game. Entries already
// persisted must not be passed again.
func (s *Store) AppendTransactions(ctx context.Context, code string, txns []game.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_transaction
			(id, game_code, round, from_seat, to_seat, amount, kind, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		_, err := stmt.ExecContext(ctx, uuid.NewString(), code,
			t.Round, seatColumn(t.From), seatColumn(t.To),
			t.Amount, string(t.Kind), t.Description, t.At.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}
	return tx.Commit()
}

// TransactionsForGame returns the persisted audit log in insertion order.
func (s *Store) TransactionsForGame(ctx context.Context, code string) ([]game.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round, from_seat, to_seat, amount, kind, description, created_at
		FROM game_transaction WHERE game_code = ? ORDER BY rowid`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	var txns []game.Transaction
	for rows.Next() {
		var (
			t        game.Transaction
			from, to sql.NullInt64
			kind     string
		)
		if err := rows.Scan(&t.Round, &from, &to, &t.Amount, &kind, &t.Description, &t.At); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Kind = game.TransactionKind(kind)
		t.From = seatValue(from)
		t.To = seatValue(to)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// DeleteGame removes a game and its transactions.
func (s *Store) DeleteGame(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM game WHERE code = ?", code)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func seatColumn(seat *int) any {
	if seat == nil {
		return nil
	}
	return *seat
}

func seatValue(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	seat := int(v.Int64)
	return &seat
}
