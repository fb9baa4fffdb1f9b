package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/paintbid/paintbid/internal/game"
	"github.com/paintbid/paintbid/internal/gameid"
	"github.com/paintbid/paintbid/internal/store"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerID    string
	gameCode    string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetGame associates this connection with a game
func (c *Connection) SetGame(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameCode = code
}

// GetGame returns the associated game code
func (c *Connection) GetGame() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameCode
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeCreateGame:
		var data CreateGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create game data")
			return
		}
		c.handleCreateGame(data)

	case MessageTypeJoinGame:
		var data JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join game data")
			return
		}
		c.handleJoinGame(data)

	case MessageTypeRandomizeOrder:
		var data RandomizeOrderData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse randomize order data")
			return
		}
		c.withGame(data.Code, func(ctx context.Context, code, playerID string) error {
			return c.gameService.RandomizeOrder(ctx, code, playerID)
		})

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse start game data")
			return
		}
		c.withGame(data.Code, func(ctx context.Context, code, playerID string) error {
			return c.gameService.StartGame(ctx, code, playerID)
		})

	case MessageTypePlayCard:
		var data PlayCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play card data")
			return
		}
		c.withGame(data.Code, func(ctx context.Context, code, playerID string) error {
			return c.gameService.PlayCard(ctx, code, playerID, data.CardIndex)
		})

	case MessageTypeAddDouble:
		var data AddDoubleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse add double data")
			return
		}
		c.withGame(data.Code, func(ctx context.Context, code, playerID string) error {
			return c.gameService.AddDoubleCard(ctx, code, playerID, data.CardIndex)
		})

	case MessageTypeDeclineDouble:
		var data DeclineDoubleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse decline double data")
			return
		}
		c.withGame(data.Code, func(ctx context.Context, code, playerID string) error {
			return c.gameService.DeclineDouble(ctx, code, playerID)
		})

	case MessageTypeRecordAuction:
		var data RecordAuctionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse record auction data")
			return
		}
		c.withGame(data.Code, func(ctx context.Context, code, playerID string) error {
			return c.gameService.RecordAuction(ctx, code, playerID, data.WinnerSeat, data.Price)
		})

	case MessageTypeGetState:
		var data GetStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse get state data")
			return
		}
		c.handleGetState(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

// sendGameError maps common domain errors to wire error codes.
func (c *Connection) sendGameError(err error) {
	code := "request_failed"
	switch {
	case errors.Is(err, ErrGameNotFound), errors.Is(err, store.ErrNotFound):
		code = "game_not_found"
	case errors.Is(err, ErrNotHost):
		code = "not_host"
	case errors.Is(err, game.ErrInvalidMove):
		code = "invalid_move"
	case errors.Is(err, game.ErrInvalidState):
		code = "invalid_state"
	case errors.Is(err, game.ErrInsufficientFunds):
		code = "insufficient_funds"
	case errors.Is(err, game.ErrInvalidArgument):
		code = "invalid_argument"
	}
	c.sendError(code, err.Error())
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerName", data.PlayerName)

	if data.PlayerName == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}

	// Reconnecting clients present the ID they were assigned earlier.
	if data.PlayerID != "" {
		c.SetPlayer(data.PlayerID)
	}

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: c.GetPlayer(),
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleCreateGame(data CreateGameData) {
	c.logger.Info("Create game request", "playerName", data.PlayerName)

	if data.PlayerName == "" {
		c.sendError("invalid_request", "Player name required")
		return
	}

	code, seat, playerID, err := c.gameService.CreateGame(c.ctx, c.GetPlayer(), data.PlayerName)
	if err != nil {
		c.sendGameError(err)
		return
	}

	c.SetPlayer(playerID)
	c.SetGame(code)
	c.gameService.Connect(code, playerID)

	response, _ := NewMessage(MessageTypeGameCreated, GameCreatedData{
		Code: code,
		Seat: seat,
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	c.logger.Info("Join game request", "code", data.Code, "playerName", data.PlayerName)

	if err := gameid.Validate(data.Code); err != nil {
		c.sendError("invalid_code", err.Error())
		return
	}
	if data.PlayerName == "" {
		c.sendError("invalid_request", "Player name required")
		return
	}

	seat, playerID, err := c.gameService.JoinGame(c.ctx, data.Code, c.GetPlayer(), data.PlayerName)
	if err != nil {
		c.sendGameError(err)
		return
	}

	c.SetPlayer(playerID)
	c.SetGame(data.Code)
	c.gameService.Connect(data.Code, playerID)

	response, _ := NewMessage(MessageTypeGameJoined, GameJoinedData{
		Code: data.Code,
		Seat: seat,
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleGetState(data GetStateData) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must join a game first")
		return
	}

	code := data.Code
	if code == "" {
		code = c.GetGame()
	}
	snap, err := c.gameService.StateFor(code, playerID)
	if err != nil {
		c.sendGameError(err)
		return
	}

	response, _ := NewMessage(MessageTypeGameState, GameStateData{State: snap})
	_ = c.SendMessage(response) // Ignore send errors
}

// withGame runs a game action for an authenticated, seated player. An empty
// code falls back to the game this connection joined.
func (c *Connection) withGame(code string, fn func(ctx context.Context, code, playerID string) error) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must join a game first")
		return
	}
	if code == "" {
		code = c.GetGame()
	}
	if code == "" {
		c.sendError("invalid_request", "Game code required")
		return
	}

	if err := fn(c.ctx, code, playerID); err != nil {
		c.sendGameError(err)
	}
}
