package game

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// valueTiles are the per-round value assignments for the top three artists.
var valueTiles = [3]int{30, 20, 10}

// endRound scores the current round and either deals the next round or
// finishes the game. The caller must hold g.mu and must already have
// recorded the triggering card(s) as unsold cards in play.
//
// Ranking sorts artists with at least one play by count descending, ties
// broken by board position (leftmost wins). The top three receive 30/20/10
// value tiles. Every owned card this round of a newly valued artist pays its
// owner the artist's cumulative value; artists outside this round's top
// three pay nothing regardless of past value.
func (g *Game) endRound(trigger Card, triggerSeat int, wasDouble bool) []Event {
	endedRound := g.round
	counts := g.artistCountsThisRound()

	type tally struct {
		artist Artist
		count  int
	}
	played := make([]tally, 0, len(Artists))
	for _, a := range Artists {
		if counts[a] > 0 {
			played = append(played, tally{artist: a, count: counts[a]})
		}
	}
	sort.SliceStable(played, func(i, j int) bool {
		if played[i].count != played[j].count {
			return played[i].count > played[j].count
		}
		return played[i].artist.BoardIndex() < played[j].artist.BoardIndex()
	})

	rankings := make([]ArtistRanking, 0, 3)
	newValues := make(map[Artist]int)
	for i, t := range played {
		if i >= len(valueTiles) {
			break
		}
		g.artistValues = append(g.artistValues, ArtistValue{
			Artist: t.artist,
			Round:  endedRound,
			Value:  valueTiles[i],
		})
		rankings = append(rankings, ArtistRanking{Artist: t.artist, Count: t.count, Value: valueTiles[i]})
		newValues[t.artist] = valueTiles[i]
	}

	cumulative := g.cumulativeValues()

	payouts := make([]Payout, 0, len(g.players))
	for _, p := range g.players {
		total := 0
		var parts []string
		for _, c := range g.cardsInPlay {
			if c.Round != endedRound || c.Owner == nil || *c.Owner != p.Seat {
				continue
			}
			if _, valued := newValues[c.Artist]; !valued {
				continue
			}
			total += cumulative[c.Artist]
			parts = append(parts, fmt.Sprintf("%s (%dk)", c.Artist, cumulative[c.Artist]))
		}
		if total > 0 {
			p.Money += total
			g.ledger.append(endedRound, TxnRoundPayout, total, nil, seatRef(p.Seat),
				fmt.Sprintf("round %d payout to %s: %dk [%s]", endedRound, p.Name, total, strings.Join(parts, ", ")))
			payouts = append(payouts, Payout{Seat: p.Seat, PlayerName: p.Name, Amount: total})
		}
	}

	g.phase = idlePhase()

	gameOver := endedRound >= FinalRound
	events := []Event{RoundEndedEvent{
		Round:           endedRound,
		TriggeringCard:  trigger,
		TriggeredBy:     triggerSeat,
		WasDouble:       wasDouble,
		Rankings:        rankings,
		Payouts:         payouts,
		NewValues:       newValues,
		CumulativeValue: cumulative,
		GameOver:        gameOver,
		timestamp:       time.Now(),
	}}

	if gameOver {
		g.status = StatusFinished
		balances := make(map[int]int, len(g.players))
		for _, p := range g.players {
			balances[p.Seat] = p.Money
		}
		g.logger.Info("game finished", "rounds", endedRound)
		return append(events, GameEndedEvent{FinalBalances: balances, timestamp: time.Now()})
	}

	g.round++
	perPlayer, err := CardsPerRound(len(g.players), g.round)
	if err != nil {
		// Unreachable: round and player count are already validated.
		g.logger.Error("deal table lookup failed", "error", err)
		perPlayer = 0
	}
	if perPlayer > 0 {
		for _, p := range g.players {
			dealt, err := g.deck.Deal(perPlayer)
			if err != nil {
				// The deal tables never exceed the 70-card deck.
				g.logger.Error("deck exhausted mid-deal", "error", err)
				break
			}
			p.Hand = append(p.Hand, dealt...)
		}
	}

	// Next round opens with the seat clockwise after the trigger.
	g.currentTurn = triggerSeat
	g.advanceTurn()

	g.logger.Info("round ended", "round", endedRound, "next_round", g.round, "dealt", perPlayer)
	return events
}
