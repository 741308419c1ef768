package hearts

import (
	"sort"

	"github.com/lox/hearts/internal/deck"
)

// Bot play is heuristic: shed the dangerous cards during passing, duck with
// the cheapest legal card during play. Both choices are made from the same
// legality rules humans are held to.

// ChoosePass picks the 3 highest-risk cards to pass: the queen of spades,
// then high hearts, then the highest remaining cards.
func ChoosePass(hand []deck.Card) []deck.Card {
	ranked := append([]deck.Card(nil), hand...)
	sortByRisk(ranked)
	return ranked[:3]
}

// ChoosePlay picks the lowest-risk card from the legal set: minimal penalty
// points first, then minimal rank.
func ChoosePlay(legal []deck.Card) deck.Card {
	ranked := append([]deck.Card(nil), legal...)
	sort.Slice(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Points(), ranked[j].Points()
		if pi != pj {
			return pi < pj
		}
		return ranked[i].Rank < ranked[j].Rank
	})
	return ranked[0]
}

// Advance applies bot actions until a human is on turn or the phase stops
// demanding input. It is called by the room actor after every committed
// human action, so chained bot play settles before any broadcast.
func Advance(g *Game) {
	for {
		switch g.Phase() {
		case PhasePassing:
			submitted := false
			for _, p := range g.Players() {
				if p.IsBot && g.HasPendingPass(p.ID) {
					// Bot passes cannot fail: the selection is 3 distinct
					// cards from the bot's own hand
					if err := g.SubmitPass(p.ID, ChoosePass(g.Hand(p.ID))); err != nil {
						return
					}
					submitted = true
				}
			}
			if g.Phase() == PhasePassing || !submitted {
				// Waiting on human passes
				return
			}

		case PhasePlaying:
			current := g.CurrentTurn()
			player := g.byID[current]
			if player == nil || !player.IsBot {
				return
			}
			legal := g.LegalMovesFor(current)
			if len(legal) == 0 {
				return
			}
			if err := g.PlayCard(current, ChoosePlay(legal)); err != nil {
				return
			}

		default:
			return
		}
	}
}
