package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// maxNameLength bounds the display name taken from the join query
const maxNameLength = 20

// Server exposes the room HTTP surface and upgrades websocket connections
// into seated room participants
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	manager  *Manager
	logger   *log.Logger
	http     *http.Server
}

// NewServer creates a server over the given room manager
func NewServer(addr string, manager *Manager, logger *log.Logger) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Rooms are gated by unguessable join codes, not origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		manager: manager,
		logger:  logger.WithPrefix("server"),
	}
}

// Start runs the listener until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleRoomSummary)
	mux.HandleFunc("GET /ws/{id}", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.http = &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = s.http.Close()
	}()

	s.logger.Info("starting server", "addr", s.addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleCreateRoom creates a room and returns its join code
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	room := s.manager.CreateRoom()
	writeJSON(w, http.StatusOK, map[string]string{"room_id": room.ID()})
}

// handleRoomSummary returns lobby-facing room metadata
func (s *Server) handleRoomSummary(w http.ResponseWriter, r *http.Request) {
	room, ok := s.manager.GetRoom(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	summary, err := room.Summarize()
	if err != nil {
		writeJSON(w, http.StatusGone, map[string]string{"error": "room closed"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleWebSocket upgrades the connection and seats the caller in the room
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	room, ok := s.manager.GetRoom(r.PathValue("id"))
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	name := playerName(r.URL.Query().Get("name"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	player, err := room.Join(name)
	if err != nil {
		s.logger.Info("join rejected", "room", room.ID(), "name", name, "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			closeDeadline())
		_ = conn.Close()
		return
	}

	client := NewConnection(conn, room, player.ID, s.logger)
	room.AttachSender(player.ID, client)

	s.logger.Info("player connected", "room", room.ID(), "player", player.ID, "name", name)

	client.Start()
	room.Leave(player.ID)
	s.logger.Info("player disconnected", "room", room.ID(), "player", player.ID)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func closeDeadline() time.Time {
	return time.Now().Add(writeWait)
}

func playerName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		name = "Player"
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
