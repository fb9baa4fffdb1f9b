package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/paintbid/paintbid/internal/game"
	"github.com/paintbid/paintbid/internal/gameid"
	"github.com/paintbid/paintbid/internal/randutil"
	"github.com/paintbid/paintbid/internal/store"
)

// ErrGameNotFound is returned for operations on an unknown join code.
var ErrGameNotFound = errors.New("game not found")

// ErrNotHost is returned when a lobby operation is attempted by a player
// other than the game's creator.
var ErrNotHost = errors.New("only the host may do that")

// managedGame is a live game plus its service-level bookkeeping.
type managedGame struct {
	// mu serializes a full transition: the engine step plus the persistence
	// write-through. Game.mu alone covers only the in-memory step, and
	// persisted must not be read by two writers.
	mu sync.Mutex

	game   *game.Game
	hostID string
	bus    game.EventBus

	// persisted is how many ledger entries have been written to the store.
	persisted int
}

// GameService owns all live games, keyed by join code. It drives the game
// engine from connection requests, persists state after every transition,
// and broadcasts events and per-viewer state to connected clients.
type GameService struct {
	logger *log.Logger
	server *Server
	store  *store.Store
	codes  *gameid.Generator
	clock  quartz.Clock

	lobbyTTL      time.Duration
	sweepInterval time.Duration

	// newRNG builds the shuffle source for a new game. Tests swap in a
	// seeded source.
	newRNG func() *rand.Rand

	mu    sync.RWMutex
	games map[string]*managedGame
}

// NewGameService creates a game service backed by st.
func NewGameService(cfg *Config, st *store.Store, logger *log.Logger, clock quartz.Clock) *GameService {
	return &GameService{
		logger:        logger.WithPrefix("games"),
		store:         st,
		codes:         gameid.NewGenerator(nil),
		clock:         clock,
		lobbyTTL:      cfg.LobbyTTL(),
		sweepInterval: cfg.SweepInterval(),
		newRNG: func() *rand.Rand {
			rng, _ := randutil.NewFromTime()
			return rng
		},
		games: make(map[string]*managedGame),
	}
}

// UseSeed makes game shuffles reproducible: every game created after this
// call draws its shuffle seed from a stream derived from seed.
func (s *GameService) UseSeed(seed int64) {
	master := randutil.New(seed)
	var mu sync.Mutex
	s.newRNG = func() *rand.Rand {
		mu.Lock()
		defer mu.Unlock()
		return randutil.New(master.Int64())
	}
}

// SetServer sets the WebSocket server used for broadcasts.
func (s *GameService) SetServer(server *Server) {
	s.server = server
}

// gameBroadcaster relays engine events to every client at one table.
type gameBroadcaster struct {
	svc  *GameService
	code string
}

func (b *gameBroadcaster) OnEvent(event game.Event) {
	if b.svc.server == nil {
		return
	}
	msg, err := eventMessage(event)
	if err != nil {
		b.svc.logger.Error("Failed to encode event", "type", event.EventType(), "error", err)
		return
	}
	b.svc.server.BroadcastToGame(b.code, msg)
}

// newManagedGame wraps g with its bookkeeping and an event bus that feeds
// the table's broadcast subscriber.
func (s *GameService) newManagedGame(code string, g *game.Game, hostID string, persisted int) *managedGame {
	mg := &managedGame{game: g, hostID: hostID, persisted: persisted, bus: game.NewEventBus()}
	mg.bus.Subscribe(&gameBroadcaster{svc: s, code: code})
	return mg
}

// LoadPersistedGames restores in-progress games from the store so a restart
// does not lose running games.
func (s *GameService) LoadPersistedGames(ctx context.Context) error {
	codes, err := s.store.GameCodes(ctx, game.StatusInProgress)
	if err != nil {
		return err
	}
	for _, code := range codes {
		snap, err := s.store.LoadSnapshot(ctx, code)
		if err != nil {
			return fmt.Errorf("game %s: %w", code, err)
		}
		g, err := game.Restore(snap, s.newRNG(), s.logger)
		if err != nil {
			return fmt.Errorf("game %s: %w", code, err)
		}
		txns, err := s.store.TransactionsForGame(ctx, code)
		if err != nil {
			return fmt.Errorf("game %s: %w", code, err)
		}
		hostID := ""
		if len(snap.Players) > 0 {
			hostID = s.hostIDFromSnapshot(snap)
		}
		s.mu.Lock()
		s.games[code] = s.newManagedGame(code, g, hostID, len(txns))
		s.mu.Unlock()
		s.logger.Info("Restored game", "code", code, "round", snap.Round)
	}
	return nil
}

// hostIDFromSnapshot recovers the host after a restart. Seat order is
// shuffled at game start, so the host is whichever player joined first;
// the snapshot keeps players in seat order only, so fall back to seat 0.
func (s *GameService) hostIDFromSnapshot(snap *game.Snapshot) string {
	return snap.Players[0].ID
}

// CreateGame creates a new lobby with the creator seated at seat 0.
// A player ID is minted for the creator if they do not have one yet.
func (s *GameService) CreateGame(ctx context.Context, playerID, playerName string) (string, int, string, error) {
	if playerID == "" {
		playerID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.uniqueCode()
	if err != nil {
		return "", 0, "", err
	}

	g := game.NewGame(code, s.newRNG(), s.logger)
	seat, err := g.AddPlayer(playerID, playerName)
	if err != nil {
		return "", 0, "", err
	}
	s.games[code] = s.newManagedGame(code, g, playerID, 0)

	if err := s.store.SaveSnapshot(ctx, g.Snapshot(game.ServerSeat)); err != nil {
		delete(s.games, code)
		return "", 0, "", err
	}

	s.logger.Info("Game created", "code", code, "host", playerName)
	return code, seat, playerID, nil
}

// uniqueCode generates a join code not already in use. Caller holds s.mu.
func (s *GameService) uniqueCode() (string, error) {
	for range 10 {
		code := s.codes.Generate()
		if _, taken := s.games[code]; !taken {
			return code, nil
		}
	}
	return "", errors.New("failed to generate a unique join code")
}

// JoinGame seats a player in a lobby by join code.
func (s *GameService) JoinGame(ctx context.Context, code, playerID, playerName string) (int, string, error) {
	if playerID == "" {
		playerID = uuid.NewString()
	}

	mg, err := s.lookup(code)
	if err != nil {
		return 0, "", err
	}

	mg.mu.Lock()

	// Rejoin: the player is already seated, just report their seat.
	if seat := mg.game.SeatByPlayerID(playerID); seat >= 0 {
		mg.mu.Unlock()
		return seat, playerID, nil
	}

	seat, err := mg.game.AddPlayer(playerID, playerName)
	if err != nil {
		mg.mu.Unlock()
		return 0, "", err
	}
	s.persistLocked(ctx, mg)
	mg.mu.Unlock()

	s.broadcast(code, MessageTypePlayerJoined, PlayerJoinedData{
		Code:       code,
		Seat:       seat,
		PlayerName: playerName,
	})
	s.pushState(code, mg)

	return seat, playerID, nil
}

// RandomizeOrder shuffles lobby seating. Host only.
func (s *GameService) RandomizeOrder(ctx context.Context, code, playerID string) error {
	mg, err := s.lookup(code)
	if err != nil {
		return err
	}
	if mg.hostID != playerID {
		return ErrNotHost
	}

	mg.mu.Lock()
	if err := mg.game.RandomizeSeats(); err != nil {
		mg.mu.Unlock()
		return err
	}
	s.persistLocked(ctx, mg)
	mg.mu.Unlock()

	snap := mg.game.Snapshot(game.ServerSeat)
	order := make([]string, len(snap.Players))
	for i, p := range snap.Players {
		order[i] = p.Name
	}
	s.broadcast(code, MessageTypeOrderRandomized, OrderRandomizedData{Code: code, Order: order})
	s.pushState(code, mg)
	return nil
}

// StartGame deals round one and begins play. Host only.
func (s *GameService) StartGame(ctx context.Context, code, playerID string) error {
	mg, err := s.lookup(code)
	if err != nil {
		return err
	}
	if mg.hostID != playerID {
		return ErrNotHost
	}
	return s.transition(ctx, code, mg, func() ([]game.Event, error) {
		return mg.game.Start()
	})
}

// PlayCard reveals a card from the acting player's hand.
func (s *GameService) PlayCard(ctx context.Context, code, playerID string, cardIndex int) error {
	mg, seat, err := s.lookupSeat(code, playerID)
	if err != nil {
		return err
	}
	return s.transition(ctx, code, mg, func() ([]game.Event, error) {
		return mg.game.RevealCard(seat, cardIndex)
	})
}

// AddDoubleCard attaches a second card to a pending double auction.
func (s *GameService) AddDoubleCard(ctx context.Context, code, playerID string, cardIndex int) error {
	mg, seat, err := s.lookupSeat(code, playerID)
	if err != nil {
		return err
	}
	return s.transition(ctx, code, mg, func() ([]game.Event, error) {
		return mg.game.AddSecondCard(seat, cardIndex)
	})
}

// DeclineDouble passes the double offer to the next eligible player.
func (s *GameService) DeclineDouble(ctx context.Context, code, playerID string) error {
	mg, seat, err := s.lookupSeat(code, playerID)
	if err != nil {
		return err
	}
	return s.transition(ctx, code, mg, func() ([]game.Event, error) {
		return mg.game.DeclineDouble(seat)
	})
}

// RecordAuction settles the pending auction with the physical table's
// outcome. Any seated player may report it.
func (s *GameService) RecordAuction(ctx context.Context, code, playerID string, winnerSeat *int, price int) error {
	mg, _, err := s.lookupSeat(code, playerID)
	if err != nil {
		return err
	}
	return s.transition(ctx, code, mg, func() ([]game.Event, error) {
		return mg.game.RecordAuctionResult(winnerSeat, price)
	})
}

// StateFor returns the snapshot redacted for the requesting player.
func (s *GameService) StateFor(code, playerID string) (*game.Snapshot, error) {
	mg, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	seat := mg.game.SeatByPlayerID(playerID)
	if seat < 0 {
		return nil, fmt.Errorf("player not seated in game %s", code)
	}
	return mg.game.Snapshot(seat), nil
}

// Connect marks a seated player online and notifies the table.
func (s *GameService) Connect(code, playerID string) {
	s.setPresence(code, playerID, true)
}

// Disconnect marks a seated player offline and notifies the table. The
// seat is kept; the player can rejoin with the same player ID.
func (s *GameService) Disconnect(code, playerID string) {
	s.setPresence(code, playerID, false)
}

func (s *GameService) setPresence(code, playerID string, online bool) {
	mg, err := s.lookup(code)
	if err != nil {
		return
	}
	seat := mg.game.SeatByPlayerID(playerID)
	if seat < 0 {
		return
	}
	mg.game.SetConnected(seat, online)

	msgType := MessageTypePlayerOnline
	if !online {
		msgType = MessageTypePlayerOffline
	}
	player := mg.game.PlayerBySeat(seat)
	s.broadcast(code, msgType, PlayerPresenceData{
		Code:       code,
		Seat:       seat,
		PlayerName: player.Name,
	})
}

// Run drives the lobby sweeper until ctx is cancelled.
func (s *GameService) Run(ctx context.Context) error {
	waiter := s.clock.TickerFunc(ctx, s.sweepInterval, func() error {
		s.sweepLobbies(ctx)
		return nil
	}, "lobby-sweeper")
	err := waiter.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// sweepLobbies removes lobbies that never started within the TTL.
func (s *GameService) sweepLobbies(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.lobbyTTL)

	s.mu.Lock()
	var expired []string
	for code, mg := range s.games {
		if mg.game.Status() == game.StatusLobby && mg.game.CreatedAt().Before(cutoff) {
			expired = append(expired, code)
			delete(s.games, code)
		}
	}
	s.mu.Unlock()

	for _, code := range expired {
		if err := s.store.DeleteGame(ctx, code); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("Failed to delete expired lobby", "code", code, "error", err)
			continue
		}
		s.logger.Info("Swept expired lobby", "code", code)
	}
}

// GameCount returns the number of live games.
func (s *GameService) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

func (s *GameService) lookup(code string) (*managedGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mg, ok := s.games[code]
	if !ok {
		return nil, ErrGameNotFound
	}
	return mg, nil
}

func (s *GameService) lookupSeat(code, playerID string) (*managedGame, int, error) {
	mg, err := s.lookup(code)
	if err != nil {
		return nil, 0, err
	}
	seat := mg.game.SeatByPlayerID(playerID)
	if seat < 0 {
		return nil, 0, fmt.Errorf("player not seated in game %s", code)
	}
	return mg, seat, nil
}

// transition runs one engine step with the per-game mutex held across the
// step and its persistence write-through, then publishes the step's events
// on the game's bus after the lock is released.
func (s *GameService) transition(ctx context.Context, code string, mg *managedGame, step func() ([]game.Event, error)) error {
	mg.mu.Lock()
	events, err := step()
	if err != nil {
		mg.mu.Unlock()
		return err
	}
	s.persistLocked(ctx, mg)
	mg.mu.Unlock()

	for _, event := range events {
		mg.bus.Publish(event)
	}
	s.pushState(code, mg)
	return nil
}

// persistLocked writes the server snapshot and any un-persisted ledger
// entries. Caller holds mg.mu. The in-memory transition has already
// committed, so a store failure is logged but never surfaced as a failed
// move; the snapshot upsert makes the next write self-healing.
func (s *GameService) persistLocked(ctx context.Context, mg *managedGame) {
	snap := mg.game.Snapshot(game.ServerSeat)
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("Failed to persist snapshot", "code", snap.Code, "error", err)
		return
	}
	txns := mg.game.Transactions()
	if len(txns) > mg.persisted {
		if err := s.store.AppendTransactions(ctx, snap.Code, txns[mg.persisted:]); err != nil {
			s.logger.Error("Failed to persist ledger entries", "code", snap.Code, "error", err)
			return
		}
		mg.persisted = len(txns)
	}
}

// pushState sends each seated player their own redacted snapshot.
func (s *GameService) pushState(code string, mg *managedGame) {
	if s.server == nil {
		return
	}
	snap := mg.game.Snapshot(game.ServerSeat)
	for _, p := range snap.Players {
		msg, err := NewMessage(MessageTypeGameState, GameStateData{
			State: mg.game.Snapshot(p.Seat),
		})
		if err != nil {
			s.logger.Error("Failed to encode game state", "error", err)
			return
		}
		if err := s.server.SendToPlayer(p.ID, msg); err != nil {
			s.logger.Debug("Player unreachable", "player", p.Name, "error", err)
		}
	}
}

func (s *GameService) broadcast(code string, msgType MessageType, data any) {
	if s.server == nil {
		return
	}
	msg, err := NewMessage(msgType, data)
	if err != nil {
		s.logger.Error("Failed to encode broadcast", "type", msgType, "error", err)
		return
	}
	s.server.BroadcastToGame(code, msg)
}
