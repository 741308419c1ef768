package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit. The order (clubs low, hearts high) is the
// order hands are sorted and displayed in.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Spades
	Hearts
)

// String returns the glyph for a suit
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	default:
		return "?"
	}
}

// Token returns the single-letter wire form of a suit (C, D, S, H)
func (s Suit) Token() string {
	switch s {
	case Clubs:
		return "C"
	case Diamonds:
		return "D"
	case Spades:
		return "S"
	case Hearts:
		return "H"
	default:
		return "?"
	}
}

// Rank represents a card rank, aces high
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the single-character representation of a rank
func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		if r >= Two && r <= Nine {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// QueenOfSpades carries 13 points and drives most of the Hearts rules
var QueenOfSpades = Card{Rank: Queen, Suit: Spades}

// TwoOfClubs opens the first trick of every round
var TwoOfClubs = Card{Rank: Two, Suit: Clubs}

// String returns the display form of a card (e.g. "Q♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Token returns the two-character wire form of a card (e.g. "QS", "2C")
func (c Card) Token() string {
	return c.Rank.String() + c.Suit.Token()
}

// Points returns the penalty value of a card: 1 per heart, 13 for the
// queen of spades, 0 otherwise
func (c Card) Points() int {
	if c.Suit == Hearts {
		return 1
	}
	if c == QueenOfSpades {
		return 13
	}
	return 0
}

// IsPointCard returns true if the card carries penalty points
func (c Card) IsPointCard() bool {
	return c.Points() > 0
}

// Less orders cards by (suit, rank), the order hands are served in
func (c Card) Less(other Card) bool {
	if c.Suit != other.Suit {
		return c.Suit < other.Suit
	}
	return c.Rank < other.Rank
}

// MarshalJSON emits the two-character token form
func (c Card) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.Token() + `"`), nil
}

// UnmarshalJSON parses the two-character token form
func (c *Card) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	card, err := Parse(s)
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// Parse converts a two-character token (case-insensitive) into a Card
func Parse(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card token %q", s)
	}
	s = strings.ToUpper(s)

	var rank Rank
	switch s[0] {
	case 'T':
		rank = Ten
	case 'J':
		rank = Jack
	case 'Q':
		rank = Queen
	case 'K':
		rank = King
	case 'A':
		rank = Ace
	default:
		if s[0] < '2' || s[0] > '9' {
			return Card{}, fmt.Errorf("invalid rank in card token %q", s)
		}
		rank = Rank(s[0] - '0')
	}

	var suit Suit
	switch s[1] {
	case 'C':
		suit = Clubs
	case 'D':
		suit = Diamonds
	case 'S':
		suit = Spades
	case 'H':
		suit = Hearts
	default:
		return Card{}, fmt.Errorf("invalid suit in card token %q", s)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// ParseAll converts a slice of tokens into cards, failing on the first bad token
func ParseAll(tokens []string) ([]Card, error) {
	cards := make([]Card, len(tokens))
	for i, tok := range tokens {
		card, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}
	return cards, nil
}
