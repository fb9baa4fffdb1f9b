package game

import (
	"time"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeGameStarted       EventType = "game_started"
	EventTypeCardPlayed        EventType = "card_played"
	EventTypeWaitingForDouble  EventType = "waiting_for_double"
	EventTypeDoubleOfferPassed EventType = "double_offer_passed"
	EventTypeDoubleReady       EventType = "double_auction_ready"
	EventTypeDoubleDeclined    EventType = "double_auction_declined"
	EventTypeAuctionRecorded   EventType = "auction_recorded"
	EventTypeRoundEnded        EventType = "round_ended"
	EventTypeGameEnded         EventType = "game_ended"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event represents any event that occurs during a game. Events carry enough
// detail to reconstruct a human-readable feed without diffing state.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// GameStartedEvent is published when the host starts the game.
type GameStartedEvent struct {
	Round       int `json:"round"`
	CurrentTurn int `json:"current_turn"`
	CardsDealt  int `json:"cards_dealt"`
	PlayerCount int `json:"player_count"`

	timestamp time.Time
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }
func (e GameStartedEvent) Timestamp() time.Time { return e.timestamp }

// CardPlayedEvent is published when a reveal arms a regular auction.
type CardPlayedEvent struct {
	Seat         int            `json:"seat"`
	PlayerName   string         `json:"player_name"`
	Card         Card           `json:"card"`
	ArtistCounts map[Artist]int `json:"artist_counts"`

	timestamp time.Time
}

func (e CardPlayedEvent) EventType() EventType { return EventTypeCardPlayed }
func (e CardPlayedEvent) Timestamp() time.Time { return e.timestamp }

// WaitingForDoubleEvent is published when a revealed double opens the
// offer/decline protocol. The revealer holds the first offer.
type WaitingForDoubleEvent struct {
	Seat       int    `json:"seat"`
	PlayerName string `json:"player_name"`
	Card       Card   `json:"card"`
	Offerer    int    `json:"offerer"`

	timestamp time.Time
}

func (e WaitingForDoubleEvent) EventType() EventType { return EventTypeWaitingForDouble }
func (e WaitingForDoubleEvent) Timestamp() time.Time { return e.timestamp }

// DoubleOfferPassedEvent is published when a seat declines and the offer
// moves to the next eligible seat.
type DoubleOfferPassedEvent struct {
	DeclinedSeat int `json:"declined_seat"`
	NewOfferer   int `json:"new_offerer"`

	timestamp time.Time
}

func (e DoubleOfferPassedEvent) EventType() EventType { return EventTypeDoubleOfferPassed }
func (e DoubleOfferPassedEvent) Timestamp() time.Time { return e.timestamp }

// DoubleReadyEvent is published when a second card completes a double pair
// and the combined auction awaits its result.
type DoubleReadyEvent struct {
	SecondCard   Card           `json:"second_card"`
	SupplierSeat int            `json:"supplier_seat"`
	SupplierName string         `json:"supplier_name"`
	ArtistCounts map[Artist]int `json:"artist_counts"`

	timestamp time.Time
}

func (e DoubleReadyEvent) EventType() EventType { return EventTypeDoubleReady }
func (e DoubleReadyEvent) Timestamp() time.Time { return e.timestamp }

// DoubleDeclinedEvent is published when every eligible seat has declined and
// the revealer receives the first card for free.
type DoubleDeclinedEvent struct {
	Revealer int  `json:"revealer"`
	Card     Card `json:"card"`

	timestamp time.Time
}

func (e DoubleDeclinedEvent) EventType() EventType { return EventTypeDoubleDeclined }
func (e DoubleDeclinedEvent) Timestamp() time.Time { return e.timestamp }

// AuctionRecordedEvent is published when a pending auction resolves.
type AuctionRecordedEvent struct {
	WinnerSeat *int         `json:"winner_seat"` // nil when nobody bought
	WinnerName string       `json:"winner_name,omitempty"`
	Price      int          `json:"price"`
	Cards      []CardInPlay `json:"cards"`

	timestamp time.Time
}

func (e AuctionRecordedEvent) EventType() EventType { return EventTypeAuctionRecorded }
func (e AuctionRecordedEvent) Timestamp() time.Time { return e.timestamp }

// ArtistRanking is one row of a round's scoring.
type ArtistRanking struct {
	Artist Artist `json:"artist"`
	Count  int    `json:"count"`
	Value  int    `json:"value"`
}

// Payout is one player's round-end payment.
type Payout struct {
	Seat       int    `json:"seat"`
	PlayerName string `json:"player_name"`
	Amount     int    `json:"amount"`
}

// RoundEndedEvent is published after round-end scoring and payouts.
type RoundEndedEvent struct {
	Round           int             `json:"round"` // the round that ended
	TriggeringCard  Card            `json:"triggering_card"`
	TriggeredBy     int             `json:"triggered_by"`
	WasDouble       bool            `json:"was_double"`
	Rankings        []ArtistRanking `json:"rankings"`
	Payouts         []Payout        `json:"payouts"`
	NewValues       map[Artist]int  `json:"new_values"`
	CumulativeValue map[Artist]int  `json:"cumulative_value"`
	GameOver        bool            `json:"game_over"`

	timestamp time.Time
}

func (e RoundEndedEvent) EventType() EventType { return EventTypeRoundEnded }
func (e RoundEndedEvent) Timestamp() time.Time { return e.timestamp }

// GameEndedEvent is published after the final round's scoring.
type GameEndedEvent struct {
	FinalBalances map[int]int `json:"final_balances"` // seat -> money

	timestamp time.Time
}

func (e GameEndedEvent) EventType() EventType { return EventTypeGameEnded }
func (e GameEndedEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events.
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus manages event publishing and subscription.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory event bus implementation.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus.
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers.
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
