package server

// Note: Game events (card_played, round_ended, etc.) are defined in
// internal/game/events.go and are also sent as WebSocket messages

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeAuth           MessageType = "auth"
	MessageTypeCreateGame     MessageType = "create_game"
	MessageTypeJoinGame       MessageType = "join_game"
	MessageTypeRandomizeOrder MessageType = "randomize_order"
	MessageTypeStartGame      MessageType = "start_game"
	MessageTypePlayCard       MessageType = "play_card"
	MessageTypeAddDouble      MessageType = "add_double_card"
	MessageTypeDeclineDouble  MessageType = "decline_double"
	MessageTypeRecordAuction  MessageType = "record_auction"
	MessageTypeGetState       MessageType = "get_state"

	// Server to client messages
	MessageTypeError           MessageType = "error"
	MessageTypeAuthResponse    MessageType = "auth_response"
	MessageTypeGameCreated     MessageType = "game_created"
	MessageTypeGameJoined      MessageType = "game_joined"
	MessageTypeGameState       MessageType = "game_state"
	MessageTypePlayerJoined    MessageType = "player_joined"
	MessageTypeOrderRandomized MessageType = "order_randomized"
	MessageTypePlayerOffline   MessageType = "player_offline"
	MessageTypePlayerOnline    MessageType = "player_online"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
