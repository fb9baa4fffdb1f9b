package game

import (
	"testing"
)

func TestSnapshotRedactsOtherPlayers(t *testing.T) {
	g := newStartedGame(t, 3)

	snap := g.Snapshot(1)
	if snap.ViewerSeat != 1 {
		t.Errorf("Expected viewer seat 1, got %d", snap.ViewerSeat)
	}
	for _, p := range snap.Players {
		if p.Seat == 1 {
			if len(p.Hand) != 10 {
				t.Errorf("Viewer should see own hand, got %d cards", len(p.Hand))
			}
			if p.Money == nil {
				t.Error("Viewer should see own money")
			}
			continue
		}
		if len(p.Hand) != 0 {
			t.Errorf("Seat %d hand leaked to viewer", p.Seat)
		}
		if p.Money != nil {
			t.Errorf("Seat %d money leaked to viewer", p.Seat)
		}
		if p.ID != "" {
			t.Errorf("Seat %d player id leaked to viewer", p.Seat)
		}
		if p.CardCount != 10 {
			t.Errorf("Seat %d: expected public card count 10, got %d", p.Seat, p.CardCount)
		}
	}
	if len(snap.Deck) != 0 {
		t.Error("Deck contents leaked to client view")
	}
	if snap.DeckRemaining != DeckSize-30 {
		t.Errorf("Deck count should be public, got %d", snap.DeckRemaining)
	}
}

func TestSnapshotServerViewSeesEverything(t *testing.T) {
	g := newStartedGame(t, 3)

	snap := g.Snapshot(ServerSeat)
	for _, p := range snap.Players {
		if len(p.Hand) != 10 || p.Money == nil || p.ID == "" {
			t.Errorf("Server view missing private data for seat %d", p.Seat)
		}
	}
	if len(snap.Deck) != DeckSize-30 {
		t.Errorf("Expected full deck contents, got %d", len(snap.Deck))
	}
}

func TestSnapshotHidesPastRoundsFromClients(t *testing.T) {
	g := newRiggedGame(t, []Card{}, []Card{}, []Card{})
	g.cardsInPlay = []*CardInPlay{
		riggedCard(1, ViktorNovak, 0),
		unsoldCard(1, ViktorNovak, 1),
	}
	g.endRound(card(ViktorNovak, Open), 1, false)

	client := g.Snapshot(0)
	if len(client.CardsInPlay) != 0 {
		t.Errorf("Round 1 cards leaked into round 2 client view: %+v", client.CardsInPlay)
	}

	server := g.Snapshot(ServerSeat)
	if len(server.CardsInPlay) != 2 {
		t.Errorf("Server view should keep history, got %d cards", len(server.CardsInPlay))
	}
}

func TestSnapshotDoubleAuction(t *testing.T) {
	g := newRiggedGame(t,
		[]Card{card(ViktorNovak, Double)},
		[]Card{card(ViktorNovak, Open)},
		[]Card{card(ViktorNovak, Open)},
	)
	if _, err := g.RevealCard(0, 0); err != nil {
		t.Fatalf("RevealCard: %v", err)
	}
	if _, err := g.DeclineDouble(0); err != nil {
		t.Fatalf("DeclineDouble: %v", err)
	}

	snap := g.Snapshot(ServerSeat)
	if snap.Phase != "awaiting_double" {
		t.Fatalf("Expected awaiting_double phase, got %s", snap.Phase)
	}
	da := snap.DoubleAuction
	if da == nil {
		t.Fatal("Expected double auction snapshot")
	}
	if da.Revealer != 0 || da.Offerer != 1 {
		t.Errorf("Unexpected double state: %+v", da)
	}
	if len(da.Declined) != 1 || da.Declined[0] != 0 {
		t.Errorf("Expected declined = [0], got %v", da.Declined)
	}
}

func TestSnapshotArtistValues(t *testing.T) {
	g := newRiggedGame(t, []Card{}, []Card{}, []Card{})
	g.artistValues = []ArtistValue{
		{Artist: ViktorNovak, Round: 1, Value: 30},
		{Artist: ViktorNovak, Round: 2, Value: 20},
		{Artist: MarinaCosta, Round: 1, Value: 10},
	}

	snap := g.Snapshot(0)
	for _, av := range snap.ArtistValues {
		switch av.Artist {
		case ViktorNovak:
			if av.Cumulative != 50 || av.ValuesByRound[1] != 30 || av.ValuesByRound[2] != 20 {
				t.Errorf("Unexpected Novak values: %+v", av)
			}
		case MarinaCosta:
			if av.Cumulative != 10 {
				t.Errorf("Unexpected Costa values: %+v", av)
			}
		default:
			if av.Cumulative != 0 {
				t.Errorf("Artist %s should be unvalued: %+v", av.Artist, av)
			}
		}
	}
}
