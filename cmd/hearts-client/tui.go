package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"

	"github.com/lox/hearts/internal/deck"
	"github.com/lox/hearts/internal/server"
)

type stateMsg struct {
	snapshot server.Snapshot
}

type errorMsg struct {
	code    string
	message string
}

type disconnectMsg struct {
	err error
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	turnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	selectStyle = lipgloss.NewStyle().Underline(true).Bold(true)
	redSuit     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

// model is the Bubble Tea model for the hearts client
type model struct {
	conn   *websocket.Conn
	room   string
	logger *log.Logger

	snapshot server.Snapshot
	haveSnap bool
	status   string
	quitting bool

	cursor   int
	selected map[string]bool // pass selection, keyed by card token

	spin    spinner.Model
	colored bool
}

func newModel(conn *websocket.Conn, room string, logger *log.Logger) *model {
	return &model{
		conn:     conn,
		room:     room,
		logger:   logger.WithPrefix("tui"),
		selected: make(map[string]bool),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(dimStyle)),
		colored:  termenv.ColorProfile() != termenv.Ascii,
	}
}

func (m *model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		prevPhase := m.snapshot.Phase
		m.snapshot = msg.snapshot
		m.haveSnap = true
		if m.snapshot.Phase != prevPhase {
			m.cursor = 0
			m.selected = make(map[string]bool)
			m.status = ""
		}
		m.clampCursor()
		return m, nil

	case errorMsg:
		m.status = fmt.Sprintf("%s: %s", msg.code, msg.message)
		m.logger.Debug("server rejected action", "code", msg.code, "message", msg.message)
		return m, nil

	case disconnectMsg:
		m.status = "disconnected from server"
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}

	case "right", "l":
		if m.cursor < len(m.selectable())-1 {
			m.cursor++
		}

	case "b":
		m.send(server.MessageTypeAddBot, nil)

	case "s":
		if m.snapshot.Phase == "lobby" {
			m.send(server.MessageTypeStartGame, nil)
		} else {
			m.send(server.MessageTypeStartRound, nil)
		}

	case " ":
		m.toggleSelection()

	case "enter":
		m.confirm()
	}
	return m, nil
}

// selectable returns the cards the cursor moves over in the current phase
func (m *model) selectable() []deck.Card {
	switch m.snapshot.Phase {
	case "passing":
		if m.snapshot.PendingPass {
			return m.snapshot.Hand
		}
	case "playing":
		if m.snapshot.CurrentTurn == m.snapshot.YourID {
			return m.snapshot.LegalMoves
		}
	}
	return nil
}

func (m *model) clampCursor() {
	if max := len(m.selectable()) - 1; m.cursor > max {
		m.cursor = 0
	}
}

func (m *model) toggleSelection() {
	if m.snapshot.Phase != "passing" || !m.snapshot.PendingPass {
		return
	}
	cards := m.selectable()
	if m.cursor >= len(cards) {
		return
	}
	tok := cards[m.cursor].Token()
	if m.selected[tok] {
		delete(m.selected, tok)
	} else if len(m.selected) < 3 {
		m.selected[tok] = true
	}
}

func (m *model) confirm() {
	switch m.snapshot.Phase {
	case "passing":
		if !m.snapshot.PendingPass || len(m.selected) != 3 {
			return
		}
		tokens := make([]string, 0, 3)
		for tok := range m.selected {
			tokens = append(tokens, tok)
		}
		m.send(server.MessageTypePassCards, server.PassCardsData{Cards: tokens})

	case "playing":
		cards := m.selectable()
		if m.cursor >= len(cards) {
			return
		}
		m.send(server.MessageTypePlayCard, server.PlayCardData{Card: cards[m.cursor].Token()})
	}
}

func (m *model) send(msgType server.MessageType, data interface{}) {
	msg, err := server.NewMessage(msgType, data)
	if err != nil {
		m.status = err.Error()
		return
	}
	if err := m.conn.WriteJSON(msg); err != nil {
		m.status = "write failed: " + err.Error()
	}
}

func (m *model) View() string {
	if m.quitting {
		return m.status + "\n"
	}
	if !m.haveSnap {
		return fmt.Sprintf("%s Joining room %s...\n", m.spin.View(), m.room)
	}

	snap := m.snapshot
	var b strings.Builder

	header := fmt.Sprintf("Room %s  •  %s", snap.RoomID, snap.Phase)
	if snap.Phase != "lobby" {
		header += fmt.Sprintf("  •  round %d, pass %s", snap.Round+1, snap.PassDir)
	}
	b.WriteString(headerStyle.Render(header) + "\n\n")

	b.WriteString(m.renderPlayers() + "\n")
	if snap.Phase == "playing" || len(snap.Trick) > 0 {
		b.WriteString("  Trick: " + m.renderTrick() + "\n")
	}
	b.WriteString("\n" + m.renderHand() + "\n")
	b.WriteString("\n" + m.renderPrompt() + "\n")

	if m.status != "" {
		b.WriteString(errStyle.Render(m.status) + "\n")
	}
	b.WriteString(dimStyle.Render(m.helpLine()) + "\n")
	return b.String()
}

func (m *model) renderPlayers() string {
	var lines []string
	for _, p := range m.snapshot.Players {
		marker := "  "
		if p.ID == m.snapshot.CurrentTurn {
			marker = turnStyle.Render("▶ ")
		}
		name := p.Name
		if p.ID == m.snapshot.YourID {
			name += " (you)"
		}
		if p.IsBot {
			name += " [bot]"
		}
		lines = append(lines, fmt.Sprintf("%s%-28s %3d", marker, name, p.Score))
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderTrick() string {
	if len(m.snapshot.Trick) == 0 {
		return dimStyle.Render("(empty)")
	}
	parts := make([]string, 0, len(m.snapshot.Trick))
	for _, entry := range m.snapshot.Trick {
		parts = append(parts, fmt.Sprintf("%s %s", entry.PlayerName, m.card(entry.Card)))
	}
	return strings.Join(parts, "   ")
}

func (m *model) renderHand() string {
	snap := m.snapshot
	if len(snap.Hand) == 0 {
		return dimStyle.Render("  (no cards)")
	}

	active := m.selectable()
	legal := make(map[string]bool, len(active))
	for _, c := range active {
		legal[c.Token()] = true
	}
	cursorTok := ""
	if len(active) > 0 && m.cursor < len(active) {
		cursorTok = active[m.cursor].Token()
	}

	parts := make([]string, 0, len(snap.Hand))
	for _, c := range snap.Hand {
		tok := c.Token()
		text := m.card(c)
		switch {
		case tok == cursorTok:
			text = cursorStyle.Render(c.String())
		case m.selected[tok]:
			text = selectStyle.Render(c.String())
		case len(active) > 0 && !legal[tok]:
			text = dimStyle.Render(c.String())
		}
		parts = append(parts, text)
	}
	return "  " + strings.Join(parts, " ")
}

func (m *model) renderPrompt() string {
	snap := m.snapshot
	switch snap.Phase {
	case "lobby":
		if snap.CanStart {
			return "Ready to start"
		}
		return fmt.Sprintf("Waiting for players (%d/%d)", len(snap.Players), snap.MaxPlayers)
	case "passing":
		if snap.PendingPass {
			return fmt.Sprintf("Select 3 cards to pass %s (%d/3)", snap.PassDir, len(m.selected))
		}
		return m.spin.View() + " Waiting for the other players to pass"
	case "playing":
		if snap.CurrentTurn == snap.YourID {
			return turnStyle.Render("Your turn")
		}
		return m.spin.View() + " Waiting for " + m.playerName(snap.CurrentTurn)
	case "round_end":
		if snap.CanStart {
			return "Round over. Press s to start the next round"
		}
		return "Round over. Waiting for the host"
	case "game_end":
		return headerStyle.Render("Game over! Winner: " + m.playerName(snap.WinnerID))
	}
	return ""
}

func (m *model) helpLine() string {
	switch m.snapshot.Phase {
	case "lobby":
		return "b: add bot  •  s: start game  •  q: quit"
	case "passing":
		return "←/→: move  •  space: select  •  enter: pass  •  q: quit"
	case "playing":
		return "←/→: move  •  enter: play  •  q: quit"
	default:
		return "s: next round  •  q: quit"
	}
}

func (m *model) playerName(id string) string {
	for _, p := range m.snapshot.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return "?"
}

// card renders a card glyph, coloring red suits on capable terminals
func (m *model) card(c deck.Card) string {
	s := c.String()
	if m.colored && (c.Suit == deck.Hearts || c.Suit == deck.Diamonds) {
		return redSuit.Render(s)
	}
	return s
}
