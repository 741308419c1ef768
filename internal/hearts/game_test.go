package hearts

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/hearts/internal/deck"
	"github.com/lox/hearts/internal/randutil"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestPlayers() []*Player {
	names := []string{"alice", "bob", "carol", "dave"}
	players := make([]*Player, len(names))
	for i, name := range names {
		players[i] = &Player{ID: name, Name: name, Seat: i}
	}
	return players
}

func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()
	g, err := New(newTestPlayers(), DefaultConfig(), randutil.New(seed), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func submitAllPasses(t *testing.T, g *Game) {
	t.Helper()
	for _, p := range g.Players() {
		if err := g.SubmitPass(p.ID, ChoosePass(g.Hand(p.ID))); err != nil {
			t.Fatalf("pass for %s failed: %v", p.ID, err)
		}
	}
}

// playRound drives the playing phase to completion with the bot policy,
// checking the play invariants before every card
func playRound(t *testing.T, g *Game) {
	t.Helper()

	played := make(map[deck.Card]bool)
	playsInTrick := 0

	for g.Phase() == PhasePlaying {
		current := g.CurrentTurn()
		hand := g.Hand(current)
		brokenBefore := g.HeartsBroken()

		legal := g.LegalMovesFor(current)
		if len(legal) == 0 {
			t.Fatalf("no legal moves for %s holding %d cards", current, len(hand))
		}
		for _, c := range legal {
			if !containsCard(hand, c) {
				t.Fatalf("legal move %v not in %s's hand", c, current)
			}
		}

		card := ChoosePlay(legal)

		// A heart may only be led once broken, or from an all-hearts hand
		if playsInTrick == 0 && card.Suit == deck.Hearts && !brokenBefore {
			for _, c := range hand {
				if c.Suit != deck.Hearts {
					t.Fatalf("%s led %v with hearts unbroken and %v in hand", current, card, c)
				}
			}
		}

		if err := g.PlayCard(current, card); err != nil {
			t.Fatalf("play %v for %s failed: %v", card, current, err)
		}
		if card.Suit == deck.Hearts && !g.HeartsBroken() {
			t.Fatal("hearts not marked broken after a heart was played")
		}

		if played[card] {
			t.Fatalf("card %v played twice", card)
		}
		played[card] = true
		playsInTrick = (playsInTrick + 1) % deck.NumSeats
	}

	if len(played) != 52 {
		t.Fatalf("round saw %d cards played, want 52", len(played))
	}
	for _, p := range g.Players() {
		if n := len(g.Hand(p.ID)); n != 0 {
			t.Fatalf("%s still holds %d cards after the round", p.ID, n)
		}
	}
}

func TestNewGameRequiresFourPlayers(t *testing.T) {
	_, err := New(newTestPlayers()[:3], DefaultConfig(), randutil.New(1), testLogger())
	if !errors.Is(err, ErrRoomNotReady) {
		t.Errorf("got %v, want ErrRoomNotReady", err)
	}
}

func TestFirstRoundStartsInPassingLeft(t *testing.T) {
	g := newTestGame(t, 42)
	if g.Phase() != PhasePassing {
		t.Errorf("phase = %v, want passing", g.Phase())
	}
	if g.PassDir() != PassLeft {
		t.Errorf("passDir = %v, want left", g.PassDir())
	}
	if g.CurrentTurn() != "" {
		t.Errorf("nobody should be on turn during passing, got %s", g.CurrentTurn())
	}
	for _, p := range g.Players() {
		if !g.HasPendingPass(p.ID) {
			t.Errorf("%s should owe a pass", p.ID)
		}
		if len(g.Hand(p.ID)) != deck.HandSize {
			t.Errorf("%s holds %d cards, want %d", p.ID, len(g.Hand(p.ID)), deck.HandSize)
		}
	}
}

func TestPassRedistributionIsABijection(t *testing.T) {
	g := newTestGame(t, 42)

	before := make(map[deck.Card]bool)
	for _, p := range g.Players() {
		for _, c := range g.Hand(p.ID) {
			before[c] = true
		}
	}

	// Each seat passes left; remember what alice sent
	sent := ChoosePass(g.Hand("alice"))
	submitAllPasses(t, g)

	if g.Phase() != PhasePlaying {
		t.Fatalf("phase = %v after all passes, want playing", g.Phase())
	}

	after := make(map[deck.Card]bool)
	for _, p := range g.Players() {
		hand := g.Hand(p.ID)
		if len(hand) != deck.HandSize {
			t.Errorf("%s holds %d cards after passing, want %d", p.ID, len(hand), deck.HandSize)
		}
		for _, c := range hand {
			if after[c] {
				t.Errorf("card %v in two hands after passing", c)
			}
			after[c] = true
		}
	}
	if len(after) != 52 {
		t.Fatalf("%d distinct cards after passing, want 52", len(after))
	}
	for c := range before {
		if !after[c] {
			t.Errorf("card %v lost in redistribution", c)
		}
	}

	// Alice (seat 0) passed left, so bob (seat 1) received her cards
	bob := g.Hand("bob")
	for _, c := range sent {
		if !containsCard(bob, c) {
			t.Errorf("bob never received %v from alice", c)
		}
	}

	// The opening leader holds the two of clubs
	leader := g.CurrentTurn()
	if !containsCard(g.Hand(leader), deck.TwoOfClubs) {
		t.Errorf("opening leader %s does not hold the two of clubs", leader)
	}
}

func TestPassResubmissionReplacesSelection(t *testing.T) {
	g := newTestGame(t, 42)

	hand := g.Hand("alice")
	first := hand[:3]
	second := hand[3:6]

	if err := g.SubmitPass("alice", first); err != nil {
		t.Fatal(err)
	}
	// Identical resubmission is accepted and changes nothing
	if err := g.SubmitPass("alice", first); err != nil {
		t.Fatal(err)
	}
	// A different selection replaces the first
	if err := g.SubmitPass("alice", second); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"bob", "carol", "dave"} {
		if err := g.SubmitPass(id, ChoosePass(g.Hand(id))); err != nil {
			t.Fatal(err)
		}
	}

	bob := g.Hand("bob")
	for _, c := range second {
		if !containsCard(bob, c) {
			t.Errorf("bob should have received replacement card %v", c)
		}
	}
	for _, c := range first {
		if containsCard(bob, c) && !containsCard(second, c) {
			t.Errorf("bob received %v from the replaced selection", c)
		}
	}
}

func TestPassValidation(t *testing.T) {
	g := newTestGame(t, 42)
	hand := g.Hand("alice")

	notOwned := deck.TwoOfClubs
	if containsCard(hand, notOwned) {
		notOwned = deck.NewCard(deck.Three, deck.Clubs)
		if containsCard(hand, notOwned) {
			// Find any card alice does not hold
			for r := deck.Two; r <= deck.Ace; r++ {
				c := deck.NewCard(r, deck.Diamonds)
				if !containsCard(hand, c) {
					notOwned = c
					break
				}
			}
		}
	}

	tests := []struct {
		name  string
		cards []deck.Card
	}{
		{"too few", hand[:2]},
		{"too many", hand[:4]},
		{"duplicate", []deck.Card{hand[0], hand[0], hand[1]}},
		{"not owned", []deck.Card{hand[0], hand[1], notOwned}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.SubmitPass("alice", tt.cards); !errors.Is(err, ErrInvalidPassSelection) {
				t.Errorf("got %v, want ErrInvalidPassSelection", err)
			}
			if !g.HasPendingPass("alice") {
				t.Error("rejected pass should leave alice still owing a pass")
			}
		})
	}

	if err := g.SubmitPass("mallory", hand[:3]); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("got %v, want ErrUnknownPlayer", err)
	}

	if err := g.PlayCard("alice", hand[0]); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("play during passing got %v, want ErrInvalidPhase", err)
	}
}

func TestOutOfTurnPlayIsRejectedWithoutMutation(t *testing.T) {
	g := newTestGame(t, 42)
	submitAllPasses(t, g)

	current := g.CurrentTurn()
	var other string
	for _, p := range g.Players() {
		if p.ID != current {
			other = p.ID
			break
		}
	}

	otherHand := g.Hand(other)
	trickBefore := len(g.Trick())

	err := g.PlayCard(other, otherHand[0])
	if !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("got %v, want ErrNotYourTurn", err)
	}

	if g.CurrentTurn() != current {
		t.Error("current turn changed after a rejected play")
	}
	if len(g.Trick()) != trickBefore {
		t.Error("trick changed after a rejected play")
	}
	if len(g.Hand(other)) != len(otherHand) {
		t.Error("hand changed after a rejected play")
	}
}

func TestIllegalCardIsRejected(t *testing.T) {
	g := newTestGame(t, 42)
	submitAllPasses(t, g)

	leader := g.CurrentTurn()
	hand := g.Hand(leader)

	// The opening lead must be the two of clubs
	for _, c := range hand {
		if c == deck.TwoOfClubs {
			continue
		}
		if err := g.PlayCard(leader, c); !errors.Is(err, ErrIllegalCard) {
			t.Fatalf("leading %v got %v, want ErrIllegalCard", c, err)
		}
		break
	}

	// A card the player does not hold is rejected too
	notHeld := deck.QueenOfSpades
	if containsCard(hand, notHeld) {
		notHeld = deck.NewCard(deck.King, deck.Spades)
	}
	if containsCard(hand, notHeld) {
		t.Skip("unlucky deal for this seed")
	}
	if err := g.PlayCard(leader, notHeld); !errors.Is(err, ErrIllegalCard) {
		t.Fatalf("got %v, want ErrIllegalCard", err)
	}
}

func TestFullRoundScenario(t *testing.T) {
	g := newTestGame(t, 42)
	submitAllPasses(t, g)

	// First card of the round is always the two of clubs
	leader := g.CurrentTurn()
	moves := g.LegalMovesFor(leader)
	if len(moves) != 1 || moves[0] != deck.TwoOfClubs {
		t.Fatalf("opening legal moves = %v, want exactly the two of clubs", moves)
	}

	playRound(t, g)

	if g.Phase() != PhaseRoundEnd {
		t.Fatalf("phase = %v after 13 tricks, want round_end", g.Phase())
	}

	scores := g.Scores()
	total := 0
	for _, s := range scores {
		total += s
	}
	if total != 26 && total != 78 {
		t.Errorf("round scores sum to %d, want 26 (or 78 on a moon)", total)
	}

	if err := g.StartNextRound(); err != nil {
		t.Fatal(err)
	}
	if g.Round() != 1 {
		t.Errorf("round = %d, want 1", g.Round())
	}
	if g.Phase() != PhasePassing {
		t.Errorf("phase = %v, want passing", g.Phase())
	}
	if g.PassDir() != PassRight {
		t.Errorf("passDir = %v, want right", g.PassDir())
	}
}

func TestStartNextRoundRejectedOutsideRoundEnd(t *testing.T) {
	g := newTestGame(t, 42)
	if err := g.StartNextRound(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("got %v, want ErrInvalidPhase", err)
	}
}

func TestHoldRoundSkipsPassing(t *testing.T) {
	g := newTestGame(t, 42)

	// Rounds 0-2 pass left, right, across; round 3 is a hold round
	for round := 0; round < 3; round++ {
		if g.Phase() == PhasePassing {
			submitAllPasses(t, g)
		}
		playRound(t, g)
		if g.Phase() == PhaseGameEnd {
			t.Fatal("game ended before the hold round; scores cannot reach the threshold this fast")
		}
		if err := g.StartNextRound(); err != nil {
			t.Fatal(err)
		}
	}

	if g.PassDir() != PassHold {
		t.Fatalf("round 3 passDir = %v, want hold", g.PassDir())
	}
	if g.Phase() != PhasePlaying {
		t.Fatalf("hold round phase = %v, want playing (no passing step)", g.Phase())
	}
	if !containsCard(g.Hand(g.CurrentTurn()), deck.TwoOfClubs) {
		t.Error("hold round leader does not hold the two of clubs")
	}
	if err := g.SubmitPass("alice", g.Hand("alice")[:3]); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("pass during hold round got %v, want ErrInvalidPhase", err)
	}
}

func TestGameEndsAtThresholdWithLowestScoreWinning(t *testing.T) {
	g, err := New(newTestPlayers(), Config{EndScore: 1}, randutil.New(42), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	for rounds := 0; g.Phase() != PhaseGameEnd; rounds++ {
		if rounds > 10 {
			t.Fatal("game did not end within 10 rounds at a 1-point threshold")
		}
		if g.Phase() == PhasePassing {
			submitAllPasses(t, g)
		}
		playRound(t, g)
		if g.Phase() == PhaseRoundEnd {
			if err := g.StartNextRound(); err != nil {
				t.Fatal(err)
			}
		}
	}

	winner := g.Winner()
	if winner == "" {
		t.Fatal("no winner recorded at game end")
	}
	scores := g.Scores()
	for id, s := range scores {
		if s < scores[winner] {
			t.Errorf("winner %s has %d points but %s has %d", winner, scores[winner], id, s)
		}
	}

	if err := g.StartNextRound(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("start_round after game end got %v, want ErrInvalidPhase", err)
	}
}
