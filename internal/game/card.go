package game

// Artist identifies one of the five painters on the board. Board order
// (left to right) breaks ranking ties, leftmost first.
type Artist string

const (
	ViktorNovak Artist = "Viktor Novak"
	MarinaCosta Artist = "Marina Costa"
	LeonBauer   Artist = "Leon Bauer"
	FloraVance  Artist = "Flora Vance"
	CelesteRuiz Artist = "Celeste Ruiz"
)

// Artists lists all artists in board order.
var Artists = []Artist{ViktorNovak, MarinaCosta, LeonBauer, FloraVance, CelesteRuiz}

// BoardIndex returns the artist's fixed board position, or -1 for an
// unknown artist.
func (a Artist) BoardIndex() int {
	for i, artist := range Artists {
		if artist == a {
			return i
		}
	}
	return -1
}

func (a Artist) String() string { return string(a) }

// AuctionType tags how a card's auction is conducted. The bidding mechanics
// themselves happen off-server; the engine only records the outcome.
type AuctionType string

const (
	Open       AuctionType = "open"
	OnceAround AuctionType = "once_around"
	Hidden     AuctionType = "hidden"
	FixedPrice AuctionType = "fixed_price"
	Double     AuctionType = "double"
)

func (t AuctionType) String() string { return string(t) }

// Card is a single painting. Immutable once drawn; identity within a hand is
// positional, there is no per-card id.
type Card struct {
	Artist    Artist      `json:"artist"`
	Type      AuctionType `json:"auction_type"`
	ArtworkID int         `json:"artwork_id"`
}

// artistCardTypes holds each artist's auction-type distribution in artwork-id
// order. Indexed parallel to Artists. The lengths (12/13/14/15/16) sum to the
// fixed 70-card deck.
var artistCardTypes = [...][]AuctionType{
	// Viktor Novak (12)
	{Open, Open, OnceAround, OnceAround, Hidden, Hidden, FixedPrice, FixedPrice, Double, Double, Double, Open},
	// Marina Costa (13)
	{Open, Open, Open, OnceAround, OnceAround, OnceAround, Hidden, Hidden, FixedPrice, FixedPrice, Double, Double, Double},
	// Leon Bauer (14)
	{Open, Open, Open, OnceAround, OnceAround, OnceAround, Hidden, Hidden, Hidden, FixedPrice, FixedPrice, Double, Double, Double},
	// Flora Vance (15)
	{Open, Open, Open, OnceAround, OnceAround, OnceAround, Hidden, Hidden, Hidden, FixedPrice, FixedPrice, FixedPrice, Double, Double, Double},
	// Celeste Ruiz (16)
	{Open, Open, Open, Open, OnceAround, OnceAround, OnceAround, Hidden, Hidden, Hidden, FixedPrice, FixedPrice, FixedPrice, Double, Double, Double},
}

// DeckSize is the number of cards in a full deck.
const DeckSize = 70

// baseDeck returns the full unshuffled 70-card multiset.
func baseDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for i, artist := range Artists {
		for j, t := range artistCardTypes[i] {
			cards = append(cards, Card{Artist: artist, Type: t, ArtworkID: j + 1})
		}
	}
	return cards
}
