package game

import (
	"sort"
	"time"
)

// ServerSeat is the viewer seat that sees everything: all hands, all
// balances, and the remaining deck. Used for persistence and the host
// process itself, never handed to a client.
const ServerSeat = -1

// PlayerSnapshot is one seat's public view, plus private fields populated
// only for the viewer's own seat (or the server view).
type PlayerSnapshot struct {
	Seat          int    `json:"seat"`
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	CardCount     int    `json:"card_count"`
	PaintingCount int    `json:"painting_count"`
	Connected     bool   `json:"connected"`

	// Private: only for the viewer's own seat or the server view.
	Hand  []Card `json:"hand,omitempty"`
	Money *int   `json:"money,omitempty"`
}

// ArtistValueSnapshot is one artist's scoring history.
type ArtistValueSnapshot struct {
	Artist        Artist      `json:"artist"`
	ValuesByRound map[int]int `json:"values_by_round"`
	Cumulative    int         `json:"cumulative_value"`
}

// DoubleAuctionSnapshot is the public view of a pending double.
type DoubleAuctionSnapshot struct {
	FirstCard Card  `json:"first_card"`
	Revealer  int   `json:"revealer"`
	Offerer   int   `json:"offerer"`
	Declined  []int `json:"declined"`
}

// Snapshot is a point-in-time view of a game, redacted for its viewer.
type Snapshot struct {
	Code            string                 `json:"code"`
	Status          Status                 `json:"status"`
	Round           int                    `json:"current_round"`
	CurrentTurn     int                    `json:"current_turn"`
	Phase           string                 `json:"phase"`
	AwaitingAuction bool                   `json:"awaiting_auction_result"`
	Players         []PlayerSnapshot       `json:"players"`
	ArtistCounts    map[Artist]int         `json:"artist_counts"`
	ArtistValues    []ArtistValueSnapshot  `json:"artist_values"`
	CardsInPlay     []CardInPlay           `json:"cards_in_play"`
	DoubleAuction   *DoubleAuctionSnapshot `json:"double_auction,omitempty"`
	DeckRemaining   int                    `json:"deck_remaining"`
	CreatedAt       time.Time              `json:"created_at"`

	// ViewerSeat is -1 for the server view.
	ViewerSeat int `json:"viewer_seat"`

	// Deck is populated only for the server view.
	Deck []Card `json:"deck,omitempty"`
}

// Snapshot returns the game as seen from viewerSeat. Other players' hands,
// balances, and the undealt deck are never included for a client viewer.
func (g *Game) Snapshot(viewerSeat int) *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	serverView := viewerSeat == ServerSeat

	players := make([]PlayerSnapshot, len(g.players))
	for i, p := range g.players {
		owned := 0
		for _, c := range g.cardsInPlay {
			if c.Round == g.round && c.Owner != nil && *c.Owner == p.Seat {
				owned++
			}
		}
		ps := PlayerSnapshot{
			Seat:          p.Seat,
			Name:          p.Name,
			CardCount:     len(p.Hand),
			PaintingCount: owned,
			Connected:     p.Connected,
		}
		if serverView || p.Seat == viewerSeat {
			ps.ID = p.ID
			ps.Hand = append([]Card(nil), p.Hand...)
			money := p.Money
			ps.Money = &money
		}
		players[i] = ps
	}

	valuesByRound := make(map[Artist]map[int]int, len(Artists))
	for _, a := range Artists {
		valuesByRound[a] = make(map[int]int)
	}
	for _, av := range g.artistValues {
		valuesByRound[av.Artist][av.Round] = av.Value
	}
	cumulative := g.cumulativeValues()
	artistValues := make([]ArtistValueSnapshot, len(Artists))
	for i, a := range Artists {
		artistValues[i] = ArtistValueSnapshot{
			Artist:        a,
			ValuesByRound: valuesByRound[a],
			Cumulative:    cumulative[a],
		}
	}

	cards := make([]CardInPlay, 0, len(g.cardsInPlay))
	for _, c := range g.cardsInPlay {
		if serverView || c.Round == g.round {
			cards = append(cards, *c)
		}
	}

	snap := &Snapshot{
		Code:            g.code,
		Status:          g.status,
		Round:           g.round,
		CurrentTurn:     g.currentTurn,
		Phase:           g.phase.kind.String(),
		AwaitingAuction: g.phase.kind == phaseAuction,
		Players:         players,
		ArtistCounts:    g.artistCountsThisRound(),
		ArtistValues:    artistValues,
		CardsInPlay:     cards,
		DeckRemaining:   g.deck.Remaining(),
		CreatedAt:       g.createdAt,
		ViewerSeat:      viewerSeat,
	}

	if g.phase.kind == phaseDouble {
		da := g.phase.double
		declined := make([]int, 0, len(da.Declined))
		for seat := range da.Declined {
			declined = append(declined, seat)
		}
		sort.Ints(declined)
		snap.DoubleAuction = &DoubleAuctionSnapshot{
			FirstCard: da.FirstCard,
			Revealer:  da.Revealer,
			Offerer:   da.Offerer,
			Declined:  declined,
		}
	}

	if serverView {
		snap.Deck = g.deck.Cards()
	}

	return snap
}
