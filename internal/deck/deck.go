package deck

import (
	rand "math/rand/v2"
	"sort"
)

// NumSeats is the number of players dealt to each round
const NumSeats = 4

// HandSize is the number of cards each seat receives
const HandSize = 52 / NumSeats

// Deck represents a deck of playing cards
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates an unshuffled standard 52-card deck using the provided rng
// for subsequent shuffles
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for suit := Clubs; suit <= Hearts; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// NewShuffled creates a standard 52-card deck and shuffles it
func NewShuffled(rng *rand.Rand) *Deck {
	d := New(rng)
	d.Shuffle()
	return d
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal distributes the entire deck round-robin into NumSeats sorted hands
// of HandSize cards each
func (d *Deck) Deal() [NumSeats][]Card {
	var hands [NumSeats][]Card
	for i := range hands {
		hands[i] = make([]Card, 0, HandSize)
	}
	for i, card := range d.cards {
		seat := i % NumSeats
		hands[seat] = append(hands[seat], card)
	}
	for i := range hands {
		SortHand(hands[i])
	}
	return hands
}

// Cards returns the current card order. The slice aliases the deck and
// must not be modified.
func (d *Deck) Cards() []Card {
	return d.cards
}

// SortHand sorts cards in place by (suit, rank)
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].Less(cards[j])
	})
}
