package server

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/hearts/internal/deck"
	"github.com/lox/hearts/internal/hearts"
)

// ErrRoomClosed is returned for any operation on a torn-down room
var ErrRoomClosed = errors.New("room is closed")

// Sender delivers outbound messages to one participant. Implementations
// must not block; a slow peer is the sender's problem, never the room's.
type Sender interface {
	Send(msg *Message) error
}

// Action is one parsed inbound player action
type Action struct {
	Type  MessageType
	Cards []deck.Card // pass_cards
	Card  deck.Card   // play_card
}

// Room owns one table: the roster, the game state machine and the outbound
// connections. All mutation happens on the room's own goroutine; callers
// submit closures through the inbox and rooms never share state, so rooms
// run fully in parallel with no game-level locking.
type Room struct {
	id      string
	logger  *log.Logger
	gameCfg hearts.Config
	rng     *rand.Rand
	clock   quartz.Clock

	inbox     chan roomCmd
	closed    chan struct{}
	closeOnce sync.Once

	// Owned by the run goroutine
	players []*hearts.Player
	hostID  string
	game    *hearts.Game
	conns   map[string]Sender
	botSeq  int

	mu        sync.Mutex
	idleSince time.Time // zero while any human is connected
}

type roomCmd struct {
	fn   func()
	done chan struct{}
}

// NewRoom creates a room and starts its actor goroutine
func NewRoom(id string, gameCfg hearts.Config, rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Room {
	r := &Room{
		id:      id,
		logger:  logger.WithPrefix("room").With("room", id),
		gameCfg: gameCfg,
		rng:     rng,
		clock:   clock,
		inbox:   make(chan roomCmd, 64),
		closed:  make(chan struct{}),
		conns:   make(map[string]Sender),
	}
	r.markIdle()
	go r.run()
	return r
}

// ID returns the room's join code
func (r *Room) ID() string { return r.id }

func (r *Room) run() {
	for {
		select {
		case cmd := <-r.inbox:
			cmd.fn()
			close(cmd.done)
		case <-r.closed:
			return
		}
	}
}

// do runs fn on the room goroutine and waits for it to finish
func (r *Room) do(fn func()) error {
	cmd := roomCmd{fn: fn, done: make(chan struct{})}
	select {
	case r.inbox <- cmd:
	case <-r.closed:
		return ErrRoomClosed
	}
	select {
	case <-cmd.done:
		return nil
	case <-r.closed:
		return ErrRoomClosed
	}
}

// Close tears the room down. Safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
		r.logger.Info("room closed")
	})
}

// Closed reports whether the room has been torn down
func (r *Room) Closed() bool {
	select {
	case <-r.closed:
		return true
	default:
		return false
	}
}

// Join seats a new human player. Joining is only possible in the lobby
// with a free seat. The caller attaches the outbound connection with
// AttachSender once it exists.
func (r *Room) Join(name string) (*hearts.Player, error) {
	var player *hearts.Player
	var joinErr error

	err := r.do(func() {
		if r.game != nil {
			joinErr = fmt.Errorf("%w: game already started", hearts.ErrRoomNotReady)
			return
		}
		if len(r.players) >= deck.NumSeats {
			joinErr = hearts.ErrRoomFull
			return
		}

		player = &hearts.Player{
			ID:   newPlayerID(),
			Name: name,
			Seat: len(r.players),
		}
		r.players = append(r.players, player)
		if r.hostID == "" {
			r.hostID = player.ID
		}

		r.logger.Info("player joined", "player", player.ID, "name", name, "seat", player.Seat)
	})
	if err != nil {
		return nil, err
	}
	if joinErr != nil {
		return nil, joinErr
	}
	return player, nil
}

// AttachSender wires a seated player's outbound connection and broadcasts
// so everyone (the joiner included) sees the new roster
func (r *Room) AttachSender(playerID string, sender Sender) {
	_ = r.do(func() {
		if !r.isSeated(playerID) {
			return
		}
		r.conns[playerID] = sender
		r.markOccupied()
		r.broadcast()
	})
}

// Leave detaches a player's connection. In the lobby the seat is freed and
// the host may transfer; mid-game the seat is handed to a bot, which acts
// immediately if it is on turn. Disconnection never mutates game state
// directly.
func (r *Room) Leave(playerID string) {
	_ = r.do(func() {
		if _, ok := r.conns[playerID]; !ok {
			return
		}
		delete(r.conns, playerID)

		if r.game == nil {
			r.removeFromLobby(playerID)
		} else {
			for _, p := range r.players {
				if p.ID == playerID {
					p.IsBot = true
					r.logger.Info("seat handed to bot", "player", playerID)
					break
				}
			}
			hearts.Advance(r.game)
		}

		if !r.hasHumans() {
			r.markIdle()
		}
		r.broadcast()
	})
}

func (r *Room) removeFromLobby(playerID string) {
	for i, p := range r.players {
		if p.ID != playerID {
			continue
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		for j := i; j < len(r.players); j++ {
			r.players[j].Seat = j
		}
		break
	}
	if r.hostID == playerID {
		r.hostID = ""
		for _, p := range r.players {
			if !p.IsBot {
				r.hostID = p.ID
				break
			}
		}
	}
	r.logger.Info("player left lobby", "player", playerID)
}

// Apply validates and applies one inbound action. On success the room
// advances any bot turns and broadcasts; on failure nothing changes and
// only the caller learns of the rejection.
func (r *Room) Apply(playerID string, action Action) error {
	var applyErr error
	err := r.do(func() {
		applyErr = r.apply(playerID, action)
		if applyErr != nil {
			return
		}
		if r.game != nil {
			hearts.Advance(r.game)
		}
		r.broadcast()
	})
	if err != nil {
		return err
	}
	return applyErr
}

// apply is the per-(phase, action) transition table. It must not mutate
// anything before all validation for the action has passed.
func (r *Room) apply(playerID string, action Action) error {
	if !r.isSeated(playerID) {
		return fmt.Errorf("%w: %s", hearts.ErrUnknownPlayer, playerID)
	}

	switch action.Type {
	case MessageTypeAddBot:
		if playerID != r.hostID {
			return hearts.ErrNotHost
		}
		if r.game != nil {
			return fmt.Errorf("%w: cannot add a bot after the game has started", hearts.ErrInvalidPhase)
		}
		if len(r.players) >= deck.NumSeats {
			return hearts.ErrRoomFull
		}
		r.addBot()
		return nil

	case MessageTypeStartGame:
		if playerID != r.hostID {
			return hearts.ErrNotHost
		}
		if r.game != nil {
			return fmt.Errorf("%w: game already started", hearts.ErrInvalidPhase)
		}
		if len(r.players) != deck.NumSeats {
			return fmt.Errorf("%w: need %d players to start, have %d", hearts.ErrRoomNotReady, deck.NumSeats, len(r.players))
		}
		game, err := hearts.New(r.players, r.gameCfg, r.rng, r.logger)
		if err != nil {
			return err
		}
		r.game = game
		return nil

	case MessageTypePassCards:
		if r.game == nil {
			return fmt.Errorf("%w: game not started", hearts.ErrInvalidPhase)
		}
		return r.game.SubmitPass(playerID, action.Cards)

	case MessageTypePlayCard:
		if r.game == nil {
			return fmt.Errorf("%w: game not started", hearts.ErrInvalidPhase)
		}
		return r.game.PlayCard(playerID, action.Card)

	case MessageTypeStartRound:
		if playerID != r.hostID {
			return hearts.ErrNotHost
		}
		if r.game == nil {
			return fmt.Errorf("%w: game not started", hearts.ErrInvalidPhase)
		}
		return r.game.StartNextRound()

	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

func (r *Room) addBot() {
	r.botSeq++
	bot := &hearts.Player{
		ID:    fmt.Sprintf("bot-%s", newPlayerID()),
		Name:  fmt.Sprintf("Bot %d", r.botSeq),
		IsBot: true,
		Seat:  len(r.players),
	}
	r.players = append(r.players, bot)
	r.logger.Info("bot added", "bot", bot.ID, "seat", bot.Seat)
}

// broadcast sends one freshly projected snapshot to every connected player.
// Runs after the mutation and any chained bot actions have settled, so all
// clients observe one atomic jump.
func (r *Room) broadcast() {
	for _, p := range r.players {
		sender, ok := r.conns[p.ID]
		if !ok {
			continue
		}
		msg, err := NewMessage(MessageTypeState, StateData{State: r.snapshot(p.ID)})
		if err != nil {
			r.logger.Error("failed to build state message", "error", err)
			continue
		}
		if err := sender.Send(msg); err != nil {
			r.logger.Debug("failed to send state", "player", p.ID, "error", err)
		}
	}
}

func (r *Room) isSeated(playerID string) bool {
	for _, p := range r.players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

func (r *Room) hasHumans() bool {
	return len(r.conns) > 0
}

// Summary is the lobby-facing description of a room
type Summary struct {
	RoomID     string `json:"room_id"`
	Phase      string `json:"phase"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
}

// Summarize returns the room's lobby-facing description
func (r *Room) Summarize() (Summary, error) {
	var s Summary
	err := r.do(func() {
		s = Summary{
			RoomID:     r.id,
			Phase:      hearts.PhaseLobby.String(),
			Players:    len(r.players),
			MaxPlayers: deck.NumSeats,
		}
		if r.game != nil {
			s.Phase = r.game.Phase().String()
		}
	})
	return s, err
}

func (r *Room) markOccupied() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idleSince = time.Time{}
}

func (r *Room) markIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idleSince = r.clock.Now()
}

// IdleFor returns how long the room has had no human connections, or zero
// while occupied
func (r *Room) IdleFor(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idleSince.IsZero() {
		return 0
	}
	return now.Sub(r.idleSince)
}

// newPlayerID returns a short opaque id, unique enough within a room
func newPlayerID() string {
	var buf [4]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("failed to generate player id: " + err.Error())
	}
	return hex.EncodeToString(buf[:])
}
