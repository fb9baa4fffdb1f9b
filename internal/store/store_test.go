package store

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paintbid/paintbid/internal/game"
	"github.com/paintbid/paintbid/internal/randutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newStartedGame(t *testing.T, code string) *game.Game {
	t.Helper()
	logger := log.New(io.Discard)
	g := game.NewGame(code, randutil.New(42), logger)
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := g.AddPlayer("id-"+name, name)
		require.NoError(t, err)
	}
	_, err := g.Start()
	require.NoError(t, err)
	return g
}

func TestCreateSchemaIdempotent(t *testing.T) {
	s := newTestStore(t)

	// Open already ran CreateSchema; a second run must be a no-op.
	require.NoError(t, CreateSchema(s.db))
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := newStartedGame(t, "ABCD2345")
	snap := g.Snapshot(game.ServerSeat)
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	loaded, err := s.LoadSnapshot(ctx, "ABCD2345")
	require.NoError(t, err)
	assert.Equal(t, snap.Code, loaded.Code)
	assert.Equal(t, snap.Status, loaded.Status)
	assert.Equal(t, snap.Round, loaded.Round)
	assert.Equal(t, snap.CurrentTurn, loaded.CurrentTurn)
	assert.Equal(t, len(snap.Players), len(loaded.Players))
	assert.Equal(t, snap.Deck, loaded.Deck)

	// Restoring from the persisted snapshot must reproduce the game.
	restored, err := game.Restore(loaded, randutil.New(42), log.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, g.Code(), restored.Code())
	assert.Equal(t, g.Status(), restored.Status())
}

func TestSaveSnapshotUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := newStartedGame(t, "CODE2345")
	require.NoError(t, s.SaveSnapshot(ctx, g.Snapshot(game.ServerSeat)))
	require.NoError(t, s.SaveSnapshot(ctx, g.Snapshot(game.ServerSeat)))

	codes, err := s.GameCodes(ctx, game.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, []string{"CODE2345"}, codes)
}

func TestSaveSnapshotRejectsRedactedView(t *testing.T) {
	s := newTestStore(t)
	g := newStartedGame(t, "REDACTED")
	err := s.SaveSnapshot(context.Background(), g.Snapshot(0))
	require.Error(t, err)
}

func TestLoadSnapshotNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadSnapshot(context.Background(), "MISSING1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendAndListTransactions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := newStartedGame(t, "TXNS2345")
	require.NoError(t, s.SaveSnapshot(ctx, g.Snapshot(game.ServerSeat)))

	// Resolve one auction so the ledger has an entry.
	snap := g.Snapshot(game.ServerSeat)
	seat := snap.CurrentTurn
	idx := firstSingleCard(t, snap.Players[seat].Hand)
	_, err := g.RevealCard(seat, idx)
	require.NoError(t, err)
	winner := (seat + 1) % len(snap.Players)
	_, err = g.RecordAuctionResult(&winner, 10)
	require.NoError(t, err)

	txns := g.Transactions()
	require.NotEmpty(t, txns)
	require.NoError(t, s.AppendTransactions(ctx, "TXNS2345", txns))

	got, err := s.TransactionsForGame(ctx, "TXNS2345")
	require.NoError(t, err)
	require.Len(t, got, len(txns))
	for i, want := range txns {
		assert.Equal(t, want.Round, got[i].Round)
		assert.Equal(t, want.Amount, got[i].Amount)
		assert.Equal(t, want.Kind, got[i].Kind)
		assert.Equal(t, want.Description, got[i].Description)
		if want.From == nil {
			assert.Nil(t, got[i].From)
		} else {
			require.NotNil(t, got[i].From)
			assert.Equal(t, *want.From, *got[i].From)
		}
		if want.To == nil {
			assert.Nil(t, got[i].To)
		} else {
			require.NotNil(t, got[i].To)
			assert.Equal(t, *want.To, *got[i].To)
		}
	}
}

func TestDeleteGameCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := newStartedGame(t, "GONE2345")
	require.NoError(t, s.SaveSnapshot(ctx, g.Snapshot(game.ServerSeat)))
	require.NoError(t, s.AppendTransactions(ctx, "GONE2345", []game.Transaction{
		{Round: 1, Amount: 5, Kind: game.TxnAuctionSale, Description: "test"},
	}))

	require.NoError(t, s.DeleteGame(ctx, "GONE2345"))

	_, err := s.LoadSnapshot(ctx, "GONE2345")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := s.TransactionsForGame(ctx, "GONE2345")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, s.DeleteGame(ctx, "GONE2345"), ErrNotFound)
}

// firstSingleCard returns the index of a card in hand that is not a double
// auction, so revealing it opens a normal auction immediately.
func firstSingleCard(t *testing.T, hand []game.Card) int {
	t.Helper()
	for i, c := range hand {
		if c.Type != game.Double {
			return i
		}
	}
	t.Fatal("no non-double card in hand")
	return -1
}
