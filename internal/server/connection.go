package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/hearts/internal/deck"
	"github.com/lox/hearts/internal/hearts"
)

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

// ErrConnectionClosed is returned when sending on a closed connection
var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection for one seated player
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	room      *Room
	playerID  string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a connection wrapper; the player must already be
// seated in the room
func NewConnection(conn *websocket.Conn, room *Room, playerID string, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 64),
		room:     room,
		playerID: playerID,
		logger:   logger.WithPrefix("conn").With("room", room.ID(), "player", playerID),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins handling the connection. Blocks until the peer disconnects.
func (c *Connection) Start() {
	go c.writePump()
	c.readPump()
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

// Done is closed when the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Send queues a message for delivery. Never blocks: a peer whose buffer is
// full gets disconnected instead of stalling the room.
func (c *Connection) Send(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel closed during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

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
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("failed to write message", "error", err)
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

// handleMessage parses one inbound message into an action and applies it
// to the room. Malformed or unknown messages are rejected without reaching
// the game.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type)

	action, err := parseAction(msg)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}

	if err := c.room.Apply(c.playerID, action); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

// parseAction converts a wire message into a validated Action
func parseAction(msg *Message) (Action, error) {
	switch msg.Type {
	case MessageTypeAddBot, MessageTypeStartGame, MessageTypeStartRound:
		return Action{Type: msg.Type}, nil

	case MessageTypePassCards:
		var data PassCardsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Action{}, errors.New("failed to parse pass_cards data")
		}
		cards, err := deck.ParseAll(data.Cards)
		if err != nil {
			return Action{}, err
		}
		return Action{Type: msg.Type, Cards: cards}, nil

	case MessageTypePlayCard:
		var data PlayCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Action{}, errors.New("failed to parse play_card data")
		}
		card, err := deck.Parse(data.Card)
		if err != nil {
			return Action{}, err
		}
		return Action{Type: msg.Type, Card: card}, nil

	default:
		return Action{}, errors.New("unknown message type: " + msg.Type.String())
	}
}

// sendError signals a rejection to this connection only; other players'
// views did not change, so nothing is broadcast
func (c *Connection) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	_ = c.Send(msg)
}

// errorCode maps rejection kinds to stable wire codes
func errorCode(err error) string {
	switch {
	case errors.Is(err, hearts.ErrInvalidPhase):
		return "invalid_phase"
	case errors.Is(err, hearts.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, hearts.ErrIllegalCard):
		return "illegal_card"
	case errors.Is(err, hearts.ErrInvalidPassSelection):
		return "invalid_pass_selection"
	case errors.Is(err, hearts.ErrRoomFull):
		return "room_full"
	case errors.Is(err, hearts.ErrRoomNotReady):
		return "room_not_ready"
	case errors.Is(err, hearts.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, hearts.ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrRoomClosed):
		return "room_closed"
	default:
		return "rejected"
	}
}
