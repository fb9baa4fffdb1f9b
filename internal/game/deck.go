package game

import (
	rand "math/rand/v2"
)

// Deck is an ordered sequence of cards, consumed front to back across the
// game. It is shuffled once at game start and never replenished.
type Deck struct {
	cards []Card
}

// NewDeck returns a full 70-card deck in canonical order.
func NewDeck() *Deck {
	return &Deck{cards: baseDeck()}
}

// Shuffle permutes the deck in place using Fisher-Yates over the provided
// source. This is the game's only deck randomness.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the first n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, invalidArgumentf("cannot deal %d cards, %d remaining", n, len(d.cards))
	}
	dealt := make([]Card, n)
	copy(dealt, d.cards[:n])
	d.cards = d.cards[n:]
	return dealt, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int { return len(d.cards) }

// Cards returns a copy of the remaining cards, front first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// restore replaces the deck contents, used when loading a persisted game.
func (d *Deck) restore(cards []Card) {
	d.cards = make([]Card, len(cards))
	copy(d.cards, cards)
}

// cardsPerRound is the deal table keyed by player count. Round 4 never deals;
// it scores the cards left over from round 3's deal.
var cardsPerRound = map[int][4]int{
	3: {10, 6, 6, 0},
	4: {9, 4, 4, 0},
	5: {8, 3, 3, 0},
}

// CardsPerRound returns how many cards each player receives at the start of
// the given round (1-4) for the given player count (3-5).
func CardsPerRound(playerCount, round int) (int, error) {
	table, ok := cardsPerRound[playerCount]
	if !ok {
		return 0, invalidArgumentf("unsupported player count %d", playerCount)
	}
	if round < 1 || round > 4 {
		return 0, invalidArgumentf("round %d out of range", round)
	}
	return table[round-1], nil
}
