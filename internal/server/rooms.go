package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/hearts/internal/hearts"
	"github.com/lox/hearts/internal/randutil"
	"github.com/lox/hearts/internal/roomid"
)

// reapInterval is how often the idle sweep runs
const reapInterval = time.Minute

// Manager tracks the live rooms and reaps the ones nobody is connected to
type Manager struct {
	logger      *log.Logger
	clock       quartz.Clock
	gameCfg     hearts.Config
	idleTimeout time.Duration
	seed        int64

	mu      sync.RWMutex
	rooms   map[string]*Room
	created int64
}

// NewManager constructs an empty room manager. A non-zero seed makes room
// shuffles deterministic (each room derives its own stream from it); zero
// uses entropy.
func NewManager(gameCfg hearts.Config, idleTimeout time.Duration, seed int64, clock quartz.Clock, logger *log.Logger) *Manager {
	return &Manager{
		logger:      logger.WithPrefix("rooms"),
		clock:       clock,
		gameCfg:     gameCfg,
		idleTimeout: idleTimeout,
		seed:        seed,
		rooms:       make(map[string]*Room),
	}
}

// CreateRoom registers a new room under a fresh join code
func (m *Manager) CreateRoom() *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for {
		id = roomid.Generate()
		if _, taken := m.rooms[id]; !taken {
			break
		}
	}

	m.created++
	rng := randutil.NewEntropy()
	if m.seed != 0 {
		rng = randutil.New(m.seed + m.created)
	}

	room := NewRoom(id, m.gameCfg, rng, m.clock, m.logger)
	m.rooms[id] = room
	m.logger.Info("room created", "room", id, "total", len(m.rooms))
	return room
}

// GetRoom looks a room up by join code, case-insensitively
func (m *Manager) GetRoom(id string) (*Room, bool) {
	id = roomid.Normalize(id)
	if err := roomid.Validate(id); err != nil {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// DeleteRoom tears a room down and forgets it
func (m *Manager) DeleteRoom(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[id]; ok {
		room.Close()
		delete(m.rooms, id)
		m.logger.Info("room deleted", "room", id, "total", len(m.rooms))
	}
}

// RoomCount returns the number of live rooms
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// RunReaper periodically tears down rooms that have had no human
// connections for the idle timeout. Blocks until the context is cancelled.
func (m *Manager) RunReaper(ctx context.Context) error {
	ticker := m.clock.TickerFunc(ctx, reapInterval, func() error {
		m.reap()
		return nil
	}, "reaper")
	if err := ticker.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (m *Manager) reap() {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, room := range m.rooms {
		if idle := room.IdleFor(now); idle >= m.idleTimeout {
			room.Close()
			delete(m.rooms, id)
			m.logger.Info("reaped idle room", "room", id, "idle", idle)
		}
	}
}
