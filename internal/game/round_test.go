package game

import (
	"testing"
)

// riggedCard records a resolved card in play for scoring tests.
func riggedCard(round int, artist Artist, owner int) *CardInPlay {
	return &CardInPlay{
		Round:     round,
		Artist:    artist,
		Type:      Open,
		Owner:     seatRef(owner),
		PricePaid: intPtr(0),
		PlayedBy:  owner,
	}
}

// unsoldCard records a round-ending card that never sold.
func unsoldCard(round int, artist Artist, playedBy int) *CardInPlay {
	return &CardInPlay{Round: round, Artist: artist, Type: Open, PlayedBy: playedBy}
}

func TestRoundEndRanking(t *testing.T) {
	g := newRiggedGame(t, []Card{}, []Card{}, []Card{})
	g.cardsInPlay = []*CardInPlay{
		riggedCard(1, ViktorNovak, 0),
		riggedCard(1, ViktorNovak, 1),
		riggedCard(1, ViktorNovak, 2),
		riggedCard(1, ViktorNovak, 0),
		unsoldCard(1, ViktorNovak, 2),
		riggedCard(1, MarinaCosta, 1),
		riggedCard(1, MarinaCosta, 2),
		riggedCard(1, LeonBauer, 0),
		riggedCard(1, FloraVance, 1),
	}

	events := g.endRound(card(ViktorNovak, Open), 2, false)
	ended := events[0].(RoundEndedEvent)

	if len(ended.Rankings) != 3 {
		t.Fatalf("Expected 3 ranked artists, got %d", len(ended.Rankings))
	}
	wantRanks := []struct {
		artist Artist
		count  int
		value  int
	}{
		{ViktorNovak, 5, 30},
		{MarinaCosta, 2, 20},
		{LeonBauer, 1, 10},
	}
	for i, want := range wantRanks {
		got := ended.Rankings[i]
		if got.Artist != want.artist || got.Count != want.count || got.Value != want.value {
			t.Errorf("Rank %d: expected %+v, got %+v", i, want, got)
		}
	}
	// Flora Vance tied Leon Bauer on count but sits further right on the
	// board, so the last tile goes to Bauer and Vance earns nothing.
	if _, valued := ended.NewValues[FloraVance]; valued {
		t.Error("Flora Vance should not receive a value tile")
	}

	// Payouts: only valued artists pay, unsold cards pay nobody.
	wantPayout := map[int]int{
		0: 30 + 30 + 10, // two Novak, one Bauer
		1: 30 + 20,      // one Novak, one Costa
		2: 30 + 20,      // one sold Novak, one Costa; the unsold Novak pays nothing
	}
	if len(ended.Payouts) != 3 {
		t.Fatalf("Expected 3 payouts, got %+v", ended.Payouts)
	}
	for _, p := range ended.Payouts {
		if p.Amount != wantPayout[p.Seat] {
			t.Errorf("Seat %d: expected payout %d, got %d", p.Seat, wantPayout[p.Seat], p.Amount)
		}
	}
	for seat, want := range wantPayout {
		if got := g.PlayerBySeat(seat).Money; got != StartingMoney+want {
			t.Errorf("Seat %d: expected balance %d, got %d", seat, StartingMoney+want, got)
		}
	}
	if err := g.AuditBalances(); err != nil {
		t.Errorf("AuditBalances: %v", err)
	}
}

func TestRoundEndTieBreakByBoardOrder(t *testing.T) {
	g := newRiggedGame(t, []Card{}, []Card{}, []Card{})
	// Celeste Ruiz and Viktor Novak tie on count; Novak is leftmost and
	// must take the higher tile.
	g.cardsInPlay = []*CardInPlay{
		riggedCard(1, CelesteRuiz, 0),
		riggedCard(1, CelesteRuiz, 1),
		riggedCard(1, ViktorNovak, 2),
		riggedCard(1, ViktorNovak, 0),
	}

	events := g.endRound(card(CelesteRuiz, Open), 0, false)
	ended := events[0].(RoundEndedEvent)

	if ended.Rankings[0].Artist != ViktorNovak || ended.Rankings[0].Value != 30 {
		t.Errorf("Expected Novak first, got %+v", ended.Rankings[0])
	}
	if ended.Rankings[1].Artist != CelesteRuiz || ended.Rankings[1].Value != 20 {
		t.Errorf("Expected Ruiz second, got %+v", ended.Rankings[1])
	}
}

func TestRoundEndCumulativeValues(t *testing.T) {
	g := newRiggedGame(t, []Card{}, []Card{}, []Card{})
	// Novak took the top tile in round 1.
	g.artistValues = []ArtistValue{{Artist: ViktorNovak, Round: 1, Value: 30}}
	g.round = 2
	g.cardsInPlay = []*CardInPlay{
		riggedCard(2, ViktorNovak, 1),
		riggedCard(2, ViktorNovak, 1),
		riggedCard(2, MarinaCosta, 0),
	}

	events := g.endRound(card(ViktorNovak, Open), 1, false)
	ended := events[0].(RoundEndedEvent)

	if got := ended.CumulativeValue[ViktorNovak]; got != 60 {
		t.Errorf("Expected Novak cumulative 60, got %d", got)
	}
	// Each Novak card pays its owner the cumulative value.
	for _, p := range ended.Payouts {
		if p.Seat == 1 && p.Amount != 120 {
			t.Errorf("Seat 1: expected payout 120, got %d", p.Amount)
		}
	}
	if got := g.PlayerBySeat(1).Money; got != StartingMoney+120 {
		t.Errorf("Seat 1 balance: expected %d, got %d", StartingMoney+120, got)
	}
}

func TestPreviouslyValuedArtistOutsideTopThreePaysNothing(t *testing.T) {
	g := newRiggedGame(t, []Card{}, []Card{}, []Card{})
	g.artistValues = []ArtistValue{{Artist: CelesteRuiz, Round: 1, Value: 30}}
	g.round = 2
	// Ruiz is played this round but finishes fourth.
	g.cardsInPlay = []*CardInPlay{
		riggedCard(2, ViktorNovak, 0),
		riggedCard(2, ViktorNovak, 0),
		riggedCard(2, MarinaCosta, 1),
		riggedCard(2, MarinaCosta, 1),
		riggedCard(2, LeonBauer, 2),
		riggedCard(2, LeonBauer, 2),
		riggedCard(2, CelesteRuiz, 0),
	}

	events := g.endRound(card(ViktorNovak, Open), 0, false)
	ended := events[0].(RoundEndedEvent)

	if _, valued := ended.NewValues[CelesteRuiz]; valued {
		t.Fatal("Ruiz should be outside the top three")
	}
	// Seat 0 owns two Novak (30 each) and the worthless-this-round Ruiz.
	for _, p := range ended.Payouts {
		if p.Seat == 0 && p.Amount != 60 {
			t.Errorf("Seat 0: expected payout 60, got %d", p.Amount)
		}
	}
}

func TestRoundEndDealsNextRound(t *testing.T) {
	g := newRiggedGame(t,
		[]Card{card(ViktorNovak, Open)},
		[]Card{},
		[]Card{},
	)
	g.cardsInPlay = []*CardInPlay{unsoldCard(1, ViktorNovak, 0)}

	g.endRound(card(ViktorNovak, Open), 0, false)

	snap := g.Snapshot(ServerSeat)
	if snap.Round != 2 {
		t.Fatalf("Expected round 2, got %d", snap.Round)
	}
	// Round 2 deals 6 cards on top of whatever is still held.
	if got := len(snap.Players[0].Hand); got != 7 {
		t.Errorf("Seat 0: expected 7 cards, got %d", got)
	}
	if got := len(snap.Players[1].Hand); got != 6 {
		t.Errorf("Seat 1: expected 6 cards, got %d", got)
	}
	if snap.DeckRemaining != DeckSize-18 {
		t.Errorf("Expected %d cards left, got %d", DeckSize-18, snap.DeckRemaining)
	}
	// Artist counts reset for the new round.
	if snap.ArtistCounts[ViktorNovak] != 0 {
		t.Errorf("Counts should reset, got %d", snap.ArtistCounts[ViktorNovak])
	}
	if snap.CurrentTurn != 1 {
		t.Errorf("Expected turn at seat 1, got %d", snap.CurrentTurn)
	}
}

func TestFinalRoundEndsGame(t *testing.T) {
	g := newRiggedGame(t, []Card{}, []Card{}, []Card{})
	g.round = FinalRound
	g.cardsInPlay = []*CardInPlay{
		riggedCard(4, ViktorNovak, 0),
		unsoldCard(4, ViktorNovak, 1),
	}
	g.players[2].Money = 42

	events := g.endRound(card(ViktorNovak, Open), 1, false)
	if len(events) != 2 {
		t.Fatalf("Expected round-ended plus game-ended, got %d events", len(events))
	}
	ended := events[0].(RoundEndedEvent)
	if !ended.GameOver {
		t.Error("Expected GameOver flag")
	}
	finished, ok := events[1].(GameEndedEvent)
	if !ok {
		t.Fatalf("Expected GameEndedEvent, got %T", events[1])
	}

	if g.Status() != StatusFinished {
		t.Errorf("Expected status %s, got %s", StatusFinished, g.Status())
	}
	// Seat 0 owned the only Novak card: 30k payout on top of the stake.
	if got := finished.FinalBalances[0]; got != StartingMoney+30 {
		t.Errorf("Seat 0 final balance: expected %d, got %d", StartingMoney+30, got)
	}
	if got := finished.FinalBalances[2]; got != 42 {
		t.Errorf("Seat 2 final balance: expected 42, got %d", got)
	}

	// No further moves are accepted.
	if _, err := g.RevealCard(2, 0); err == nil {
		t.Error("Expected reveal to fail after game end")
	}
}

func TestFullGameMoneyConservation(t *testing.T) {
	g := newStartedGame(t, 3)

	// Drive the whole game: the acting seat always reveals the card of the
	// artist furthest along this round (to force round ends), sales go to
	// the next seat for a token price, doubles are declined around. Round
	// four deals nothing, so the current seat can run out of cards; that
	// stalls the table and the drive stops there.
	for g.Status() == StatusInProgress {
		snap := g.Snapshot(ServerSeat)
		seat := snap.CurrentTurn

		switch snap.Phase {
		case "idle":
			hand := snap.Players[seat].Hand
			if len(hand) == 0 {
				if snap.Round != FinalRound {
					t.Fatalf("Seat %d has no cards in round %d", seat, snap.Round)
				}
				goto done
			}
			best := 0
			for i, c := range hand {
				if snap.ArtistCounts[c.Artist] > snap.ArtistCounts[hand[best].Artist] {
					best = i
				}
			}
			if _, err := g.RevealCard(seat, best); err != nil {
				t.Fatalf("RevealCard: %v", err)
			}
		case "awaiting_auction":
			winner := (seat + 1) % 3
			if _, err := g.RecordAuctionResult(&winner, 1); err != nil {
				t.Fatalf("RecordAuctionResult: %v", err)
			}
		case "awaiting_double":
			offerer := snap.DoubleAuction.Offerer
			if _, err := g.DeclineDouble(offerer); err != nil {
				t.Fatalf("DeclineDouble: %v", err)
			}
		default:
			t.Fatalf("Unknown phase %s", snap.Phase)
		}
	}

done:
	if err := g.AuditBalances(); err != nil {
		t.Fatalf("AuditBalances after full game: %v", err)
	}

	snap := g.Snapshot(ServerSeat)
	if snap.Round != FinalRound {
		t.Errorf("Expected the game to reach round %d, got %d", FinalRound, snap.Round)
	}
}
