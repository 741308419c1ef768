package hearts

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/hearts/internal/deck"
)

// Phase is the room-level game phase
type Phase int

const (
	PhaseLobby Phase = iota
	PhasePassing
	PhasePlaying
	PhaseRoundEnd
	PhaseGameEnd
)

// String returns the wire label for a phase
func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhasePassing:
		return "passing"
	case PhasePlaying:
		return "playing"
	case PhaseRoundEnd:
		return "round_end"
	case PhaseGameEnd:
		return "game_end"
	default:
		return "?"
	}
}

// Player is a seated participant. Seat index is fixed for the lifetime of
// the game; IsBot may flip when a human leaves mid-game and the seat is
// handed to a bot.
type Player struct {
	ID    string
	Name  string
	IsBot bool
	Seat  int
}

// Config carries the product-configurable parts of the rules
type Config struct {
	// EndScore ends the game at the first round boundary where any
	// cumulative score reaches it
	EndScore int
}

// DefaultConfig returns the standard 100-point game
func DefaultConfig() Config {
	return Config{EndScore: 100}
}

// Game is the authoritative state machine for one table of Hearts. It is
// not safe for concurrent use; the room actor serializes all access.
type Game struct {
	cfg    Config
	rng    *rand.Rand
	logger *log.Logger

	players []*Player // seat order
	byID    map[string]*Player

	phase        Phase
	round        int // zero-based round index
	passDir      PassDirection
	heartsBroken bool
	trickIndex   int
	trick        []TrickPlay
	lastTrick    []TrickPlay
	currentTurn  string

	hands       map[string][]deck.Card
	pendingPass map[string][]deck.Card
	takenPoints map[string]int
	scores      map[string]int
	winnerID    string
}

// New creates a game for exactly deck.NumSeats players (in seat order) and
// deals the first round, entering the passing phase.
func New(players []*Player, cfg Config, rng *rand.Rand, logger *log.Logger) (*Game, error) {
	if len(players) != deck.NumSeats {
		return nil, fmt.Errorf("%w: need exactly %d players, have %d", ErrRoomNotReady, deck.NumSeats, len(players))
	}
	if cfg.EndScore <= 0 {
		cfg = DefaultConfig()
	}

	g := &Game{
		cfg:     cfg,
		rng:     rng,
		logger:  logger.WithPrefix("game"),
		players: players,
		byID:    make(map[string]*Player, len(players)),
		scores:  make(map[string]int, len(players)),
	}
	for _, p := range players {
		g.byID[p.ID] = p
		g.scores[p.ID] = 0
	}

	g.startRound()
	return g, nil
}

// startRound shuffles, deals and enters the passing phase (or straight into
// playing on a hold round)
func (g *Game) startRound() {
	hands := deck.NewShuffled(g.rng).Deal()

	g.hands = make(map[string][]deck.Card, len(g.players))
	for _, p := range g.players {
		g.hands[p.ID] = hands[p.Seat]
	}

	g.heartsBroken = false
	g.trickIndex = 0
	g.trick = nil
	g.lastTrick = nil
	g.pendingPass = make(map[string][]deck.Card)
	g.takenPoints = make(map[string]int, len(g.players))
	for _, p := range g.players {
		g.takenPoints[p.ID] = 0
	}

	g.passDir = PassDirectionFor(g.round)
	if g.passDir == PassHold {
		g.phase = PhasePlaying
		g.currentTurn = g.openingLeader()
	} else {
		g.phase = PhasePassing
		g.currentTurn = ""
	}

	g.logger.Info("round started", "round", g.round, "passDir", g.passDir.String())
}

// SubmitPass records a player's 3-card pass selection. Resubmitting before
// all four players have passed replaces the prior selection. Once the
// fourth selection arrives the cards are redistributed atomically and play
// begins with the holder of the two of clubs.
func (g *Game) SubmitPass(playerID string, cards []deck.Card) error {
	if g.phase != PhasePassing {
		return fmt.Errorf("%w: cannot pass during %s", ErrInvalidPhase, g.phase)
	}
	if _, ok := g.byID[playerID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if len(cards) != 3 {
		return fmt.Errorf("%w: need exactly 3 cards, got %d", ErrInvalidPassSelection, len(cards))
	}

	seen := make(map[deck.Card]bool, 3)
	hand := g.hands[playerID]
	for _, c := range cards {
		if seen[c] {
			return fmt.Errorf("%w: duplicate card %s", ErrInvalidPassSelection, c.Token())
		}
		seen[c] = true
		if !containsCard(hand, c) {
			return fmt.Errorf("%w: %s is not in your hand", ErrInvalidPassSelection, c.Token())
		}
	}

	g.pendingPass[playerID] = append([]deck.Card(nil), cards...)
	if len(g.pendingPass) < len(g.players) {
		return nil
	}

	g.redistributePasses()
	return nil
}

// redistributePasses moves every submitted selection to its target seat in
// one step, then starts play. No player observes a hand mid-pass.
func (g *Game) redistributePasses() {
	for id, cards := range g.pendingPass {
		g.hands[id] = removeCards(g.hands[id], cards)
	}
	for id, cards := range g.pendingPass {
		target := g.players[PassTarget(g.byID[id].Seat, g.passDir)]
		g.hands[target.ID] = append(g.hands[target.ID], cards...)
	}
	for id := range g.hands {
		deck.SortHand(g.hands[id])
	}

	g.pendingPass = make(map[string][]deck.Card)
	g.phase = PhasePlaying
	g.currentTurn = g.openingLeader()
}

// PlayCard plays a card for the current-turn player. Any rule violation is
// rejected before state changes.
func (g *Game) PlayCard(playerID string, card deck.Card) error {
	if g.phase != PhasePlaying {
		return fmt.Errorf("%w: cannot play during %s", ErrInvalidPhase, g.phase)
	}
	if _, ok := g.byID[playerID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if g.currentTurn != playerID {
		return ErrNotYourTurn
	}

	hand := g.hands[playerID]
	if !containsCard(hand, card) {
		return fmt.Errorf("%w: %s is not in your hand", ErrIllegalCard, card.Token())
	}

	legal, fellBack := LegalMoves(hand, g.trick, g.heartsBroken, g.trickIndex == 0)
	if fellBack {
		g.logger.Error("legal-move computation fell back to full hand",
			"player", playerID, "round", g.round, "trick", g.trickIndex)
	}
	if !containsCard(legal, card) {
		return fmt.Errorf("%w: %s", ErrIllegalCard, card.Token())
	}

	// Committed from here on
	if len(g.trick) == 0 {
		g.lastTrick = nil
	}
	g.hands[playerID] = removeCards(hand, []deck.Card{card})
	g.trick = append(g.trick, TrickPlay{PlayerID: playerID, Card: card})
	g.heartsBroken = BreaksHearts(g.heartsBroken, card)

	if len(g.trick) < len(g.players) {
		g.currentTurn = g.nextSeat(playerID)
		return nil
	}

	winner := TrickWinner(g.trick)
	g.takenPoints[winner] += TrickPoints(g.trick)
	g.lastTrick = g.trick
	g.trick = nil
	g.currentTurn = winner

	if g.handsEmpty() {
		g.finishRound()
	} else {
		g.trickIndex++
	}
	return nil
}

// finishRound applies round scoring and either ends the game or waits in
// round_end for start_round
func (g *Game) finishRound() {
	g.phase = PhaseRoundEnd

	deltas := ScoreRound(g.takenPoints)
	for id, delta := range deltas {
		g.scores[id] += delta
	}
	g.round++

	g.logger.Info("round scored", "round", g.round-1, "deltas", deltas)

	for _, score := range g.scores {
		if score >= g.cfg.EndScore {
			g.phase = PhaseGameEnd
			g.winnerID = g.lowestScorer()
			g.logger.Info("game over", "winner", g.winnerID, "scores", g.scores)
			return
		}
	}
}

// StartNextRound deals the next round. Only valid in round_end; after
// game_end the room is finished.
func (g *Game) StartNextRound() error {
	if g.phase != PhaseRoundEnd {
		return fmt.Errorf("%w: cannot start a round during %s", ErrInvalidPhase, g.phase)
	}
	g.startRound()
	return nil
}

// LegalMovesFor returns the cards a player could play right now, or nil
// outside the playing phase
func (g *Game) LegalMovesFor(playerID string) []deck.Card {
	if g.phase != PhasePlaying {
		return nil
	}
	moves, _ := LegalMoves(g.hands[playerID], g.trick, g.heartsBroken, g.trickIndex == 0)
	return moves
}

// HasPendingPass reports whether the player still owes a pass selection
func (g *Game) HasPendingPass(playerID string) bool {
	if g.phase != PhasePassing {
		return false
	}
	_, submitted := g.pendingPass[playerID]
	return !submitted
}

// Phase returns the current phase
func (g *Game) Phase() Phase { return g.phase }

// Round returns the zero-based round index (incremented at each round end)
func (g *Game) Round() int { return g.round }

// PassDir returns the current round's pass direction
func (g *Game) PassDir() PassDirection { return g.passDir }

// HeartsBroken reports whether a heart has been played this round
func (g *Game) HeartsBroken() bool { return g.heartsBroken }

// CurrentTurn returns the id of the player to act, or "" when no one is
// on turn (passing phase, round end)
func (g *Game) CurrentTurn() string { return g.currentTurn }

// Winner returns the winning player id once the game has ended
func (g *Game) Winner() string { return g.winnerID }

// Hand returns a copy of a player's current hand
func (g *Game) Hand(playerID string) []deck.Card {
	return append([]deck.Card(nil), g.hands[playerID]...)
}

// Trick returns the trick currently visible to players: the in-progress
// trick, or the last completed trick until the next lead
func (g *Game) Trick() []TrickPlay {
	trick := g.trick
	if len(trick) == 0 {
		trick = g.lastTrick
	}
	return append([]TrickPlay(nil), trick...)
}

// Scores returns a copy of the cumulative scores
func (g *Game) Scores() map[string]int {
	out := make(map[string]int, len(g.scores))
	for id, s := range g.scores {
		out[id] = s
	}
	return out
}

// TakenPoints returns a copy of the penalty points collected so far this round
func (g *Game) TakenPoints() map[string]int {
	out := make(map[string]int, len(g.takenPoints))
	for id, p := range g.takenPoints {
		out[id] = p
	}
	return out
}

// Players returns the seated players in seat order
func (g *Game) Players() []*Player { return g.players }

// openingLeader finds the holder of the two of clubs
func (g *Game) openingLeader() string {
	for id, hand := range g.hands {
		if containsCard(hand, deck.TwoOfClubs) {
			return id
		}
	}
	// Unreachable with a full deal; logged loudly rather than masked
	g.logger.Error("no player holds the two of clubs after dealing")
	return g.players[0].ID
}

func (g *Game) nextSeat(playerID string) string {
	seat := g.byID[playerID].Seat
	return g.players[(seat+1)%len(g.players)].ID
}

func (g *Game) handsEmpty() bool {
	for _, hand := range g.hands {
		if len(hand) > 0 {
			return false
		}
	}
	return true
}

func (g *Game) lowestScorer() string {
	winner := g.players[0]
	for _, p := range g.players[1:] {
		if g.scores[p.ID] < g.scores[winner.ID] {
			winner = p
		}
	}
	return winner.ID
}

func containsCard(cards []deck.Card, card deck.Card) bool {
	for _, c := range cards {
		if c == card {
			return true
		}
	}
	return false
}

func removeCards(hand []deck.Card, remove []deck.Card) []deck.Card {
	out := hand[:0]
	for _, c := range hand {
		if !containsCard(remove, c) {
			out = append(out, c)
		}
	}
	return out
}
