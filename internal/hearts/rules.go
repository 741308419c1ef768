package hearts

import (
	"sort"

	"github.com/lox/hearts/internal/deck"
)

// PassDirection determines which seat receives each player's passed cards
type PassDirection int

const (
	PassLeft PassDirection = iota
	PassRight
	PassAcross
	PassHold
)

// String returns the wire label for a pass direction
func (d PassDirection) String() string {
	switch d {
	case PassLeft:
		return "left"
	case PassRight:
		return "right"
	case PassAcross:
		return "across"
	case PassHold:
		return "hold"
	default:
		return "?"
	}
}

// TrickPlay is one card played into the current trick
type TrickPlay struct {
	PlayerID string
	Card     deck.Card
}

// PassDirectionFor returns the pass direction for a zero-based round index.
// The rotation is left, right, across, hold.
func PassDirectionFor(round int) PassDirection {
	return PassDirection(round % 4)
}

// PassTarget returns the seat that receives cards passed from seat in the
// given direction. Hold passes to yourself (a no-op round).
func PassTarget(seat int, dir PassDirection) int {
	switch dir {
	case PassLeft:
		return (seat + 1) % deck.NumSeats
	case PassRight:
		return (seat + deck.NumSeats - 1) % deck.NumSeats
	case PassAcross:
		return (seat + 2) % deck.NumSeats
	default:
		return seat
	}
}

// LegalMoves computes the set of cards a player may play given their hand,
// the trick so far, whether hearts have been broken, and whether this is the
// first trick of the round. It returns a non-empty subset of hand whenever
// hand is non-empty; fellBack reports that no card satisfied the rules and
// the whole hand was allowed instead, which indicates corrupted state and
// should be logged by the caller.
func LegalMoves(hand []deck.Card, trick []TrickPlay, heartsBroken, firstTrick bool) (moves []deck.Card, fellBack bool) {
	if len(hand) == 0 {
		return nil, false
	}

	if len(trick) == 0 {
		return legalLeads(hand, heartsBroken, firstTrick)
	}

	leadSuit := trick[0].Card.Suit
	suited := filterCards(hand, func(c deck.Card) bool { return c.Suit == leadSuit })
	if len(suited) > 0 {
		return suited, false
	}

	if firstTrick {
		// No point cards on the first trick unless the hand holds nothing else
		nonPoints := filterCards(hand, func(c deck.Card) bool { return !c.IsPointCard() })
		if len(nonPoints) > 0 {
			return nonPoints, false
		}
	}

	return append([]deck.Card(nil), hand...), false
}

func legalLeads(hand []deck.Card, heartsBroken, firstTrick bool) ([]deck.Card, bool) {
	if firstTrick {
		// The holder of the two of clubs opens the round with it. Reaching
		// here without it means the deal was corrupted.
		for _, c := range hand {
			if c == deck.TwoOfClubs {
				return []deck.Card{deck.TwoOfClubs}, false
			}
		}
		return append([]deck.Card(nil), hand...), true
	}

	if heartsBroken {
		return append([]deck.Card(nil), hand...), false
	}

	nonHearts := filterCards(hand, func(c deck.Card) bool { return c.Suit != deck.Hearts })
	if len(nonHearts) > 0 {
		return nonHearts, false
	}
	// Nothing but hearts left; leading one is allowed
	return append([]deck.Card(nil), hand...), false
}

// TrickWinner returns the id of the player who takes the trick: the highest
// rank among cards matching the suit led
func TrickWinner(trick []TrickPlay) string {
	leadSuit := trick[0].Card.Suit
	winning := trick[0]
	for _, play := range trick[1:] {
		if play.Card.Suit != leadSuit {
			continue
		}
		if play.Card.Rank > winning.Card.Rank {
			winning = play
		}
	}
	return winning.PlayerID
}

// TrickPoints returns the penalty points contained in a trick
func TrickPoints(trick []TrickPlay) int {
	total := 0
	for _, play := range trick {
		total += play.Card.Points()
	}
	return total
}

// BreaksHearts reports whether playing the card breaks hearts
func BreaksHearts(heartsBroken bool, card deck.Card) bool {
	return heartsBroken || card.Suit == deck.Hearts
}

// ScoreRound converts the penalty points each player collected during a
// round into score deltas, applying the shoot-the-moon inversion: a player
// who collected all 26 points scores 0 and everyone else scores 26.
func ScoreRound(taken map[string]int) map[string]int {
	deltas := make(map[string]int, len(taken))

	var shooter string
	for id, points := range taken {
		if points == moonPoints {
			shooter = id
			break
		}
	}

	for id, points := range taken {
		switch {
		case shooter == "":
			deltas[id] = points
		case id == shooter:
			deltas[id] = 0
		default:
			deltas[id] = moonPoints
		}
	}
	return deltas
}

// moonPoints is the total penalty in a round: 13 hearts plus the queen of spades
const moonPoints = 26

func filterCards(cards []deck.Card, keep func(deck.Card) bool) []deck.Card {
	var out []deck.Card
	for _, c := range cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// sortByRisk orders cards descending by (points, rank); the front of the
// slice is the most dangerous card to hold
func sortByRisk(cards []deck.Card) {
	sort.Slice(cards, func(i, j int) bool {
		pi, pj := cards[i].Points(), cards[j].Points()
		if pi != pj {
			return pi > pj
		}
		return cards[i].Rank > cards[j].Rank
	})
}
