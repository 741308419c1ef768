package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/hearts/internal/server"
)

var CLI struct {
	Server string `short:"s" long:"server" default:"localhost:8080" help:"Server host:port"`
	Room   string `short:"r" long:"room" help:"Room code to join"`
	Create bool   `long:"create" help:"Create a new room and join it"`
	Name   string `short:"n" long:"name" default:"Player" help:"Display name"`
	Debug  bool   `long:"debug" help:"Write debug logs to hearts-client.log"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	if CLI.Debug {
		f, err := os.OpenFile("hearts-client.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			logger = log.New(f)
			logger.SetLevel(log.DebugLevel)
		}
	}

	room := strings.ToUpper(strings.TrimSpace(CLI.Room))
	if CLI.Create {
		created, err := createRoom(CLI.Server)
		if err != nil {
			fmt.Printf("Failed to create room: %v\n", err)
			kctx.Exit(1)
		}
		room = created
		fmt.Printf("Created room %s\n", room)
	}
	if room == "" {
		fmt.Println("No room code given; use --room CODE or --create")
		kctx.Exit(1)
	}

	wsURL := url.URL{
		Scheme:   "ws",
		Host:     CLI.Server,
		Path:     "/ws/" + room,
		RawQuery: url.Values{"name": {CLI.Name}}.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		fmt.Printf("Failed to connect to %s: %v\n", wsURL.String(), err)
		kctx.Exit(1)
	}
	defer conn.Close()

	model := newModel(conn, room, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Pump inbound messages into the UI
	go func() {
		for {
			var msg server.Message
			if err := conn.ReadJSON(&msg); err != nil {
				program.Send(disconnectMsg{err: err})
				return
			}
			program.Send(translateMessage(&msg))
		}
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		kctx.Exit(1)
	}
}

// createRoom asks the server for a fresh room code
func createRoom(host string) (string, error) {
	resp, err := http.Post(fmt.Sprintf("http://%s/api/rooms", host), "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %s", resp.Status)
	}

	var body struct {
		RoomID string `json:"room_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.RoomID, nil
}

// translateMessage converts a wire message into a tea.Msg
func translateMessage(msg *server.Message) tea.Msg {
	switch msg.Type {
	case server.MessageTypeState:
		var data server.StateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return errorMsg{code: "bad_state", message: err.Error()}
		}
		return stateMsg{snapshot: data.State}

	case server.MessageTypeError:
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return errorMsg{code: "bad_error", message: err.Error()}
		}
		return errorMsg{code: data.Code, message: data.Message}

	default:
		return errorMsg{code: "unknown", message: "unknown message type " + msg.Type.String()}
	}
}
