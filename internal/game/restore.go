package game

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
)

// Restore rebuilds a Game from a server-view snapshot, as produced by
// Snapshot(ServerSeat). Client-view snapshots are rejected: they are
// redacted and cannot reproduce the full state.
func Restore(snap *Snapshot, rng *rand.Rand, logger *log.Logger) (*Game, error) {
	if snap.ViewerSeat != ServerSeat {
		return nil, invalidArgumentf("cannot restore from a redacted snapshot (viewer seat %d)", snap.ViewerSeat)
	}

	g := NewGame(snap.Code, rng, logger)
	g.status = snap.Status
	g.round = snap.Round
	g.currentTurn = snap.CurrentTurn
	if !snap.CreatedAt.IsZero() {
		g.createdAt = snap.CreatedAt
	}
	g.deck.restore(snap.Deck)

	for _, ps := range snap.Players {
		if ps.Money == nil {
			return nil, invalidArgumentf("snapshot is missing seat %d's balance", ps.Seat)
		}
		g.players = append(g.players, &Player{
			Seat:      ps.Seat,
			ID:        ps.ID,
			Name:      ps.Name,
			Money:     *ps.Money,
			Hand:      append([]Card(nil), ps.Hand...),
			Connected: ps.Connected,
		})
	}

	for _, av := range snap.ArtistValues {
		for round, value := range av.ValuesByRound {
			g.artistValues = append(g.artistValues, ArtistValue{Artist: av.Artist, Round: round, Value: value})
		}
	}

	for i := range snap.CardsInPlay {
		c := snap.CardsInPlay[i]
		g.cardsInPlay = append(g.cardsInPlay, &c)
	}

	switch {
	case snap.DoubleAuction != nil:
		declined := make(map[int]bool, len(snap.DoubleAuction.Declined))
		for _, seat := range snap.DoubleAuction.Declined {
			declined[seat] = true
		}
		g.phase = doublePhase(&DoubleAuction{
			FirstCard: snap.DoubleAuction.FirstCard,
			Revealer:  snap.DoubleAuction.Revealer,
			Offerer:   snap.DoubleAuction.Offerer,
			Declined:  declined,
		})
	case snap.AwaitingAuction:
		// Pending cards are the unresolved records of the current round;
		// the auctioneer is whoever played the newest one.
		var pending []*CardInPlay
		for _, c := range g.cardsInPlay {
			if c.Round == g.round && c.Owner == nil {
				pending = append(pending, c)
			}
		}
		if len(pending) == 0 {
			return nil, invalidArgumentf("snapshot awaits an auction but has no pending cards")
		}
		g.phase = auctionPhase(&pendingAuction{
			cards:      pending,
			auctioneer: pending[len(pending)-1].PlayedBy,
			isDouble:   len(pending) > 1,
		})
	default:
		g.phase = idlePhase()
	}

	// Restored ledgers start empty; history lives in the store's
	// transaction table.
	g.ledger = Ledger{}

	return g, nil
}
