package game

// StartingMoney is each player's balance when the game begins, in thousands.
const StartingMoney = 100

// Player represents a seated player. Seat defines clockwise turn order and
// never changes after the game starts.
type Player struct {
	Seat      int
	ID        string
	Name      string
	Money     int
	Hand      []Card
	Connected bool
}

// removeCard removes and returns the card at the given hand index. Hand
// identity is positional; the index is valid only against the current hand
// length.
func (p *Player) removeCard(idx int) (Card, error) {
	if idx < 0 || idx >= len(p.Hand) {
		return Card{}, invalidMovef("card index %d out of range (hand has %d)", idx, len(p.Hand))
	}
	card := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return card, nil
}

// holdsEligibleSecond reports whether the player holds a card that could be
// paired with a double of the given artist.
func (p *Player) holdsEligibleSecond(artist Artist) bool {
	for _, c := range p.Hand {
		if c.Artist == artist && c.Type != Double {
			return true
		}
	}
	return false
}
