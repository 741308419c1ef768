package hearts

import (
	"testing"

	"github.com/lox/hearts/internal/deck"
	"github.com/lox/hearts/internal/randutil"
)

func TestChoosePassUnloadsDangerousCards(t *testing.T) {
	hand := cards("QS", "AH", "KH", "2C", "3D", "4D", "5C", "6S", "7D", "8C", "9D", "TC", "JD")

	pass := ChoosePass(hand)
	if len(pass) != 3 {
		t.Fatalf("ChoosePass returned %d cards, want 3", len(pass))
	}

	want := map[deck.Card]bool{
		deck.QueenOfSpades:                   true,
		deck.NewCard(deck.Ace, deck.Hearts):  true,
		deck.NewCard(deck.King, deck.Hearts): true,
	}
	for _, c := range pass {
		if !want[c] {
			t.Errorf("ChoosePass kept a dangerous card and passed %v instead", c)
		}
	}
}

func TestChoosePlayPrefersCheapLowCards(t *testing.T) {
	legal := cards("QS", "KH", "2D", "9C")
	if got := ChoosePlay(legal); got != deck.NewCard(deck.Two, deck.Diamonds) {
		t.Errorf("ChoosePlay = %v, want 2D", got)
	}

	// Among point cards only, the lowest-value one goes first
	legal = cards("QS", "5H", "2H")
	if got := ChoosePlay(legal); got != deck.NewCard(deck.Two, deck.Hearts) {
		t.Errorf("ChoosePlay = %v, want 2H", got)
	}
}

func TestAdvanceCompletesAnAllBotGame(t *testing.T) {
	players := newTestPlayers()
	for _, p := range players {
		p.IsBot = true
	}
	g, err := New(players, Config{EndScore: 50}, randutil.New(7), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	for rounds := 0; g.Phase() != PhaseGameEnd; rounds++ {
		if rounds > 100 {
			t.Fatal("all-bot game did not finish within 100 rounds")
		}
		Advance(g)
		switch g.Phase() {
		case PhaseRoundEnd:
			if err := g.StartNextRound(); err != nil {
				t.Fatal(err)
			}
		case PhaseGameEnd:
		default:
			t.Fatalf("Advance left an all-bot game in phase %v", g.Phase())
		}
	}

	if g.Winner() == "" {
		t.Error("no winner recorded at game end")
	}
	total := 0
	for _, s := range g.Scores() {
		total += s
	}
	if total%26 != 0 {
		t.Errorf("final scores sum to %d, want a multiple of 26", total)
	}
}
