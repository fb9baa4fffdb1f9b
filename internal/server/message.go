package server

import (
	"encoding/json"
	"time"

	"github.com/paintbid/paintbid/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId,omitempty"`
}

type CreateGameData struct {
	PlayerName string `json:"playerName"`
}

type JoinGameData struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

type RandomizeOrderData struct {
	Code string `json:"code"`
}

type StartGameData struct {
	Code string `json:"code"`
}

type PlayCardData struct {
	Code      string `json:"code"`
	CardIndex int    `json:"cardIndex"`
}

type AddDoubleData struct {
	Code      string `json:"code"`
	CardIndex int    `json:"cardIndex"`
}

type DeclineDoubleData struct {
	Code string `json:"code"`
}

type RecordAuctionData struct {
	Code string `json:"code"`

	// WinnerSeat is null when the auction produced no buyer.
	WinnerSeat *int `json:"winnerSeat"`
	Price      int  `json:"price"`
}

type GetStateData struct {
	Code string `json:"code"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GameCreatedData struct {
	Code string `json:"code"`
	Seat int    `json:"seat"`
}

type GameJoinedData struct {
	Code string `json:"code"`
	Seat int    `json:"seat"`
}

type PlayerJoinedData struct {
	Code       string `json:"code"`
	Seat       int    `json:"seat"`
	PlayerName string `json:"playerName"`
}

type OrderRandomizedData struct {
	Code  string   `json:"code"`
	Order []string `json:"order"`
}

type PlayerPresenceData struct {
	Code       string `json:"code"`
	Seat       int    `json:"seat"`
	PlayerName string `json:"playerName"`
}

// GameStateData wraps a per-viewer redacted snapshot.
type GameStateData struct {
	State *game.Snapshot `json:"state"`
}

// eventMessage wraps a game event as a WebSocket message using the event's
// own type string.
func eventMessage(event game.Event) (*Message, error) {
	dataBytes, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      MessageType(event.EventType().String()),
		Data:      dataBytes,
		Timestamp: event.Timestamp(),
	}, nil
}
