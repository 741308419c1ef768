package server

import (
	"github.com/lox/hearts/internal/deck"
	"github.com/lox/hearts/internal/hearts"
)

// Snapshot is the per-recipient view of a room. It carries the recipient's
// own hand and legality only; no other seat's hand or unsettled pass
// selection ever appears in any snapshot.
type Snapshot struct {
	RoomID       string         `json:"room_id"`
	Phase        string         `json:"phase"`
	YourID       string         `json:"your_id"`
	HostID       string         `json:"host_id"`
	MaxPlayers   int            `json:"max_players"`
	Players      []PlayerInfo   `json:"players"`
	CanStart     bool           `json:"can_start"`
	Round        int            `json:"round"`
	PassDir      string         `json:"pass_dir,omitempty"`
	CurrentTurn  string         `json:"current_turn,omitempty"`
	HeartsBroken bool           `json:"hearts_broken"`
	Trick        []TrickEntry   `json:"trick"`
	Hand         []deck.Card    `json:"hand"`
	LegalMoves   []deck.Card    `json:"legal_moves"`
	PendingPass  bool           `json:"pending_pass"`
	Scores       map[string]int `json:"scores"`
	WinnerID     string         `json:"winner_id,omitempty"`
}

// PlayerInfo is the public view of a seated player
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"is_bot"`
	Score int    `json:"score"`
}

// TrickEntry is one play of the visible trick, in play order
type TrickEntry struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Card       deck.Card `json:"card"`
}

// snapshot projects the room state onto what one recipient may see. Pure
// over the room's current state; called once per seated player after every
// committed mutation.
func (r *Room) snapshot(viewerID string) Snapshot {
	snap := Snapshot{
		RoomID:     r.id,
		Phase:      hearts.PhaseLobby.String(),
		YourID:     viewerID,
		HostID:     r.hostID,
		MaxPlayers: deck.NumSeats,
		Players:    make([]PlayerInfo, 0, len(r.players)),
		Trick:      []TrickEntry{},
		Hand:       []deck.Card{},
		LegalMoves: []deck.Card{},
		Scores:     map[string]int{},
	}

	var scores map[string]int
	if r.game != nil {
		scores = r.game.Scores()
		snap.Scores = scores
	}

	for _, p := range r.players {
		info := PlayerInfo{ID: p.ID, Name: p.Name, IsBot: p.IsBot}
		if scores != nil {
			info.Score = scores[p.ID]
		}
		snap.Players = append(snap.Players, info)
	}

	snap.CanStart = r.canStart(viewerID)

	if r.game == nil {
		return snap
	}

	g := r.game
	snap.Phase = g.Phase().String()
	snap.Round = g.Round()
	snap.PassDir = g.PassDir().String()
	snap.CurrentTurn = g.CurrentTurn()
	snap.HeartsBroken = g.HeartsBroken()
	snap.Hand = g.Hand(viewerID)
	snap.PendingPass = g.HasPendingPass(viewerID)
	snap.WinnerID = g.Winner()

	for _, play := range g.Trick() {
		snap.Trick = append(snap.Trick, TrickEntry{
			PlayerID:   play.PlayerID,
			PlayerName: r.playerName(play.PlayerID),
			Card:       play.Card,
		})
	}

	// Legal moves are served only to the player on turn
	if g.Phase() == hearts.PhasePlaying && g.CurrentTurn() == viewerID {
		snap.LegalMoves = g.LegalMovesFor(viewerID)
	}

	return snap
}

// canStart reports whether the viewer may trigger start_game or start_round
// right now: host only, with the composition precondition for the phase
func (r *Room) canStart(viewerID string) bool {
	if viewerID != r.hostID {
		return false
	}
	if r.game == nil {
		return len(r.players) == deck.NumSeats
	}
	return r.game.Phase() == hearts.PhaseRoundEnd
}

func (r *Room) playerName(playerID string) string {
	for _, p := range r.players {
		if p.ID == playerID {
			return p.Name
		}
	}
	return ""
}
