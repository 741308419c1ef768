// Package roomid generates and validates the short join codes that identify
// rooms. Codes are 6 characters from a reduced uppercase alphabet so they can
// be read out loud and typed; lookups are case-insensitive.
package roomid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Length of a room code
const Length = 6

// Alphabet omits the characters that are easy to mistranscribe (I, L, O, U, 0, 1)
const alphabet = "23456789ABCDEFGHJKMNPQRSTVWXYZ"

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator; a nil RandSource means crypto/rand
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new room code using crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new room code using the generator's RandSource
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(alphabet[g.index()])
	}
	return b.String()
}

func (g *Generator) index() int {
	if g.randSource != nil {
		return g.randSource.IntN(len(alphabet))
	}
	var buf [1]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("failed to generate random bytes: " + err.Error())
		}
		// Rejection sampling keeps the distribution uniform
		if int(buf[0]) < 256-256%len(alphabet) {
			return int(buf[0]) % len(alphabet)
		}
	}
}

// Normalize upper-cases a room code for case-insensitive lookup
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Validate checks that a normalized room code is well formed
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(id))
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(alphabet, rune(id[i])) {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
