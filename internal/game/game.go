package game

import (
	rand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Status is the game lifecycle state.
type Status string

const (
	StatusLobby      Status = "lobby"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Seat-count bounds for a playable game.
const (
	MinPlayers = 3
	MaxPlayers = 5
)

// FinalRound is the last scored round. It deals no new cards.
const FinalRound = 4

// roundEndCount ends the round when an artist's played-card count reaches it.
const roundEndCount = 5

// CardInPlay is the historical record of a card that left a hand. Owner and
// PricePaid are nil while an auction is pending and stay nil forever for
// round-ending cards. They are set exactly once, on resolution.
type CardInPlay struct {
	Round     int         `json:"round"`
	Artist    Artist      `json:"artist"`
	Type      AuctionType `json:"auction_type"`
	Owner     *int        `json:"owner"`
	PricePaid *int        `json:"price_paid"`
	PlayedBy  int         `json:"played_by"`
}

// ArtistValue records one value-tile assignment: the artist ranked top-3 in
// the given round. Cumulative value of an artist is the sum of its
// assignments across all rounds so far.
type ArtistValue struct {
	Artist Artist `json:"artist"`
	Round  int    `json:"round"`
	Value  int    `json:"value"`
}

// Game is a single table. All exported transition methods serialize on the
// internal mutex; each one either commits fully or leaves state unchanged.
type Game struct {
	mu sync.Mutex

	code         string
	status       Status
	round        int // 0 in lobby, 1-4 in progress
	players      []*Player // indexed by seat
	deck         *Deck
	currentTurn  int
	phase        phase
	cardsInPlay  []*CardInPlay
	artistValues []ArtistValue
	ledger       Ledger
	createdAt    time.Time

	rng    *rand.Rand
	logger *log.Logger
}

// NewGame creates an empty lobby identified by its join code.
func NewGame(code string, rng *rand.Rand, logger *log.Logger) *Game {
	return &Game{
		code:      code,
		status:    StatusLobby,
		deck:      NewDeck(),
		phase:     idlePhase(),
		createdAt: time.Now(),
		rng:       rng,
		logger:    logger.WithPrefix("game").With("code", code),
	}
}

// Code returns the game's join code.
func (g *Game) Code() string { return g.code }

// CreatedAt returns when the lobby was created.
func (g *Game) CreatedAt() time.Time { return g.createdAt }

// Status returns the lifecycle state.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// AddPlayer seats a new player and returns their seat. Seats are handed out
// in join order; RandomizeSeats may reorder them before the game starts.
func (g *Game) AddPlayer(id, name string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusLobby {
		return 0, invalidMovef("game already started")
	}
	if len(g.players) >= MaxPlayers {
		return 0, invalidMovef("game is full")
	}
	for _, p := range g.players {
		if strings.EqualFold(p.Name, name) {
			return 0, invalidMovef("name %q already taken", name)
		}
	}

	seat := len(g.players)
	g.players = append(g.players, &Player{
		Seat:      seat,
		ID:        id,
		Name:      name,
		Money:     StartingMoney,
		Connected: true,
	})
	g.logger.Info("player joined", "seat", seat, "name", name)
	return seat, nil
}

// RandomizeSeats shuffles turn order. Lobby only.
func (g *Game) RandomizeSeats() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusLobby {
		return invalidMovef("can only randomize seats in lobby")
	}
	g.rng.Shuffle(len(g.players), func(i, j int) {
		g.players[i], g.players[j] = g.players[j], g.players[i]
	})
	for i, p := range g.players {
		p.Seat = i
	}
	return nil
}

// PlayerBySeat returns the player at the given seat, or nil.
func (g *Game) PlayerBySeat(seat int) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seat < 0 || seat >= len(g.players) {
		return nil
	}
	return g.players[seat]
}

// SeatByPlayerID returns the seat for a player id, or -1.
func (g *Game) SeatByPlayerID(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		if p.ID == id {
			return p.Seat
		}
	}
	return -1
}

// SetConnected flips a seat's connectivity flag. Disconnected players keep
// their turn slot; nothing is skipped on their behalf.
func (g *Game) SetConnected(seat int, connected bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seat >= 0 && seat < len(g.players) {
		g.players[seat].Connected = connected
	}
}

// Start shuffles the deck, deals round 1, and hands the first turn to seat 0.
func (g *Game) Start() ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusLobby {
		return nil, invalidMovef("game already started")
	}
	count := len(g.players)
	if count < MinPlayers || count > MaxPlayers {
		return nil, invalidArgumentf("need %d-%d players, have %d", MinPlayers, MaxPlayers, count)
	}

	perPlayer, err := CardsPerRound(count, 1)
	if err != nil {
		return nil, err
	}

	g.deck.Shuffle(g.rng)
	for _, p := range g.players {
		dealt, err := g.deck.Deal(perPlayer)
		if err != nil {
			return nil, err
		}
		p.Hand = dealt
	}

	g.round = 1
	g.status = StatusInProgress
	g.currentTurn = 0
	g.logger.Info("game started", "players", count, "cards_per_player", perPlayer)

	return []Event{GameStartedEvent{
		Round:       g.round,
		CurrentTurn: g.currentTurn,
		CardsDealt:  perPlayer,
		PlayerCount: count,
		timestamp:   time.Now(),
	}}, nil
}

// advanceTurn moves the turn one seat clockwise. Connectivity is ignored; a
// disconnected player still occupies their slot.
func (g *Game) advanceTurn() {
	g.currentTurn = (g.currentTurn + 1) % len(g.players)
}

// artistCountsThisRound tallies cards in play (sold, unsold, and pending)
// per artist for the current round.
func (g *Game) artistCountsThisRound() map[Artist]int {
	counts := make(map[Artist]int, len(Artists))
	for _, a := range Artists {
		counts[a] = 0
	}
	for _, c := range g.cardsInPlay {
		if c.Round == g.round {
			counts[c.Artist]++
		}
	}
	return counts
}

// cumulativeValues sums each artist's value-tile assignments to date.
func (g *Game) cumulativeValues() map[Artist]int {
	cumulative := make(map[Artist]int, len(Artists))
	for _, a := range Artists {
		cumulative[a] = 0
	}
	for _, av := range g.artistValues {
		cumulative[av.Artist] += av.Value
	}
	return cumulative
}

// AuditBalances verifies that every balance equals the starting stake plus
// the seat's net ledger flow. A mismatch means a money movement bypassed the
// ledger.
func (g *Game) AuditBalances() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		want := StartingMoney + g.ledger.netFlow(p.Seat)
		if p.Money != want {
			return invalidStatef("seat %d balance %d does not match ledger (want %d)", p.Seat, p.Money, want)
		}
	}
	return nil
}

// Transactions returns a copy of the audit log.
func (g *Game) Transactions() []Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.Entries()
}
