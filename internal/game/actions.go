package game

import (
	"fmt"
	"time"
)

// RevealCard plays the card at handIdx from the seat's hand. Depending on
// the card this arms a regular auction, opens a double auction, or (for the
// fifth card of an artist this round) ends the round with the card unsold.
func (g *Game) RevealCard(seat, handIdx int) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusInProgress {
		return nil, invalidMovef("game not in progress")
	}
	if seat != g.currentTurn {
		return nil, invalidMovef("not seat %d's turn", seat)
	}
	if g.phase.kind != phaseIdle {
		return nil, invalidMovef("cannot reveal while %s", g.phase.kind)
	}

	player := g.players[seat]
	card, err := player.removeCard(handIdx)
	if err != nil {
		return nil, err
	}

	counts := g.artistCountsThisRound()
	if counts[card.Artist]+1 >= roundEndCount {
		// Fifth card of the artist: recorded unsold, never auctioned.
		g.cardsInPlay = append(g.cardsInPlay, &CardInPlay{
			Round:    g.round,
			Artist:   card.Artist,
			Type:     card.Type,
			PlayedBy: seat,
		})
		g.logger.Info("round-ending card revealed", "seat", seat, "artist", card.Artist)
		return g.endRound(card, seat, false), nil
	}

	if card.Type == Double {
		g.phase = doublePhase(&DoubleAuction{
			FirstCard: card,
			Revealer:  seat,
			Offerer:   seat, // revealer gets first chance to pair it
			Declined:  make(map[int]bool),
		})
		g.logger.Debug("double auction opened", "seat", seat, "artist", card.Artist)
		return []Event{WaitingForDoubleEvent{
			Seat:       seat,
			PlayerName: player.Name,
			Card:       card,
			Offerer:    seat,
			timestamp:  time.Now(),
		}}, nil
	}

	pending := &CardInPlay{
		Round:    g.round,
		Artist:   card.Artist,
		Type:     card.Type,
		PlayedBy: seat,
	}
	g.cardsInPlay = append(g.cardsInPlay, pending)
	g.phase = auctionPhase(&pendingAuction{
		cards:      []*CardInPlay{pending},
		auctioneer: seat,
	})

	g.logger.Debug("card revealed", "seat", seat, "artist", card.Artist, "type", card.Type)
	return []Event{CardPlayedEvent{
		Seat:         seat,
		PlayerName:   player.Name,
		Card:         card,
		ArtistCounts: g.artistCountsThisRound(),
		timestamp:    time.Now(),
	}}, nil
}

// AddSecondCard pairs a second same-artist, non-double card with a pending
// double. Only the current offer holder may add. The supplier becomes the
// auctioneer for the combined auction.
func (g *Game) AddSecondCard(seat, handIdx int) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase.kind != phaseDouble {
		return nil, invalidStatef("no double auction in progress")
	}
	da := g.phase.double
	if seat != da.Offerer {
		return nil, invalidMovef("seat %d does not hold the offer", seat)
	}

	player := g.players[seat]
	if handIdx < 0 || handIdx >= len(player.Hand) {
		return nil, invalidMovef("card index %d out of range (hand has %d)", handIdx, len(player.Hand))
	}
	second := player.Hand[handIdx]
	if second.Artist != da.FirstCard.Artist {
		return nil, invalidMovef("second card must be a %s", da.FirstCard.Artist)
	}
	if second.Type == Double {
		return nil, invalidMovef("cannot pair a double with another double")
	}
	if _, err := player.removeCard(handIdx); err != nil {
		return nil, err
	}

	counts := g.artistCountsThisRound()
	if counts[second.Artist]+2 >= roundEndCount {
		// Both cards land unsold and the round ends immediately.
		g.cardsInPlay = append(g.cardsInPlay,
			&CardInPlay{Round: g.round, Artist: da.FirstCard.Artist, Type: da.FirstCard.Type, PlayedBy: da.Revealer},
			&CardInPlay{Round: g.round, Artist: second.Artist, Type: second.Type, PlayedBy: seat},
		)
		g.logger.Info("round-ending double pair", "seat", seat, "artist", second.Artist)
		return g.endRound(second, seat, true), nil
	}

	first := &CardInPlay{Round: g.round, Artist: da.FirstCard.Artist, Type: da.FirstCard.Type, PlayedBy: da.Revealer}
	pair := &CardInPlay{Round: g.round, Artist: second.Artist, Type: second.Type, PlayedBy: seat}
	g.cardsInPlay = append(g.cardsInPlay, first, pair)
	g.phase = auctionPhase(&pendingAuction{
		cards:      []*CardInPlay{first, pair},
		auctioneer: seat,
		isDouble:   true,
	})

	g.logger.Debug("double pair completed", "supplier", seat, "artist", second.Artist)
	return []Event{DoubleReadyEvent{
		SecondCard:   second,
		SupplierSeat: seat,
		SupplierName: player.Name,
		ArtistCounts: g.artistCountsThisRound(),
		timestamp:    time.Now(),
	}}, nil
}

// DeclineDouble passes on adding a second card. The offer moves clockwise,
// starting after the revealer, to the first seat that has not declined and
// holds an eligible card. If no seat qualifies the revealer receives the
// first card for free and the turn advances.
func (g *Game) DeclineDouble(seat int) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase.kind != phaseDouble {
		return nil, invalidStatef("no double auction in progress")
	}
	da := g.phase.double
	if seat != da.Offerer {
		return nil, invalidMovef("seat %d does not hold the offer", seat)
	}
	da.Declined[seat] = true

	n := len(g.players)
	for i := 1; i <= n; i++ {
		candidate := (da.Revealer + i) % n
		if candidate == da.Revealer || da.Declined[candidate] {
			continue
		}
		// Seats with no eligible card are skipped silently so the offer
		// never dead-ends on someone who cannot act.
		if !g.players[candidate].holdsEligibleSecond(da.FirstCard.Artist) {
			continue
		}
		da.Offerer = candidate
		g.logger.Debug("double offer passed", "declined", seat, "offerer", candidate)
		return []Event{DoubleOfferPassedEvent{
			DeclinedSeat: seat,
			NewOfferer:   candidate,
			timestamp:    time.Now(),
		}}, nil
	}

	// Everyone eligible declined: the revealer keeps the card for free.
	revealer := g.players[da.Revealer]
	g.cardsInPlay = append(g.cardsInPlay, &CardInPlay{
		Round:     g.round,
		Artist:    da.FirstCard.Artist,
		Type:      da.FirstCard.Type,
		Owner:     seatRef(da.Revealer),
		PricePaid: intPtr(0),
		PlayedBy:  da.Revealer,
	})
	g.ledger.append(g.round, TxnFreeCard, 0, nil, seatRef(da.Revealer),
		fmt.Sprintf("%s received %s (double) for free, all others declined", revealer.Name, da.FirstCard.Artist))

	card := da.FirstCard
	g.phase = idlePhase()
	g.currentTurn = da.Revealer
	g.advanceTurn()

	g.logger.Info("double auction declined by all", "revealer", da.Revealer, "artist", card.Artist)
	return []Event{DoubleDeclinedEvent{
		Revealer:  da.Revealer,
		Card:      card,
		timestamp: time.Now(),
	}}, nil
}

// RecordAuctionResult resolves the pending auction with the declared winner
// and price. A nil winner means nobody bought: the auctioneer keeps the
// card(s) for free, except a fixed-price offer whose price the auctioneer
// must pay to the bank themselves. Resolution is one-shot; a second call
// fails with ErrInvalidState.
func (g *Game) RecordAuctionResult(winnerSeat *int, price int) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase.kind != phaseAuction {
		return nil, invalidStatef("no pending auction")
	}
	if price < 0 {
		return nil, invalidArgumentf("price must be >= 0, got %d", price)
	}

	pa := g.phase.auction
	auctioneer := g.players[pa.auctioneer]
	first := pa.cards[0]

	var winnerName string
	if winnerSeat != nil {
		if *winnerSeat < 0 || *winnerSeat >= len(g.players) {
			return nil, invalidArgumentf("winner seat %d out of range", *winnerSeat)
		}
		winner := g.players[*winnerSeat]
		if price > winner.Money {
			return nil, insufficientFundsf("seat %d has %d, price is %d", *winnerSeat, winner.Money, price)
		}
		winnerName = winner.Name

		if *winnerSeat == pa.auctioneer {
			// Self-buy: the price sinks to the bank.
			winner.Money -= price
			g.ledger.append(g.round, TxnSelfBuy, price, winnerSeat, nil,
				fmt.Sprintf("%s self-bought %s (%s) for %dk, paid to bank", winner.Name, first.Artist, first.Type, price))
		} else {
			winner.Money -= price
			auctioneer.Money += price
			label := string(first.Type)
			if pa.isDouble {
				label = "double " + label
			}
			g.ledger.append(g.round, TxnAuctionSale, price, winnerSeat, seatRef(pa.auctioneer),
				fmt.Sprintf("%s bought %s (%s) from %s for %dk", winner.Name, first.Artist, label, auctioneer.Name, price))
		}

		// A double pair splits the recorded price by integer division; the
		// odd remainder is not corrected.
		perCard := price / len(pa.cards)
		for _, c := range pa.cards {
			c.Owner = seatRef(*winnerSeat)
			c.PricePaid = intPtr(perCard)
		}
	} else {
		if pa.effectiveType() == FixedPrice && price > 0 {
			// A fixed-price offer nobody takes still costs the seller.
			if price > auctioneer.Money {
				return nil, insufficientFundsf("auctioneer seat %d has %d, price is %d", pa.auctioneer, auctioneer.Money, price)
			}
			auctioneer.Money -= price
			g.ledger.append(g.round, TxnFixedPriceNoSale, price, seatRef(pa.auctioneer), nil,
				fmt.Sprintf("%s paid %dk to bank, fixed-price unsold: %s", auctioneer.Name, price, first.Artist))
		} else {
			g.ledger.append(g.round, TxnFreeCard, 0, nil, seatRef(pa.auctioneer),
				fmt.Sprintf("%s received %s (%s) for free, no bids", auctioneer.Name, first.Artist, first.Type))
		}
		for _, c := range pa.cards {
			c.Owner = seatRef(pa.auctioneer)
			c.PricePaid = intPtr(0)
		}
	}

	resolved := make([]CardInPlay, len(pa.cards))
	for i, c := range pa.cards {
		resolved[i] = *c
	}

	g.phase = idlePhase()
	g.currentTurn = pa.auctioneer
	g.advanceTurn()

	g.logger.Info("auction recorded", "winner", winnerName, "price", price, "cards", len(resolved))
	return []Event{AuctionRecordedEvent{
		WinnerSeat: winnerSeat,
		WinnerName: winnerName,
		Price:      price,
		Cards:      resolved,
		timestamp:  time.Now(),
	}}, nil
}

func intPtr(v int) *int {
	out := v
	return &out
}
