package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies a wire message
type MessageType string

const (
	// Client → Server
	MessageTypeAddBot     MessageType = "add_bot"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypePassCards  MessageType = "pass_cards"
	MessageTypePlayCard   MessageType = "play_card"
	MessageTypeStartRound MessageType = "start_round"

	// Server → Client
	MessageTypeState MessageType = "state"
	MessageTypeError MessageType = "error"
)

// String returns the message type label
func (t MessageType) String() string { return string(t) }

// Message is the base WebSocket message envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	var dataBytes json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		dataBytes = b
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

// PassCardsData carries the 3 card tokens of a pass selection
type PassCardsData struct {
	Cards []string `json:"cards"`
}

// PlayCardData carries the card token to play
type PlayCardData struct {
	Card string `json:"card"`
}

// Server → Client payloads

// ErrorData signals a rejected action to the originating connection only
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StateData wraps a per-recipient snapshot
type StateData struct {
	State Snapshot `json:"state"`
}
