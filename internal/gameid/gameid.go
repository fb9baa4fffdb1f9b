// Package gameid generates the short join codes players type to find a game.
package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Codes use Crockford's base32 alphabet, uppercased, with the ambiguous
// letters I, L, O and U absent. 8 characters gives 32^8 ≈ 1.1e12 codes.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// CodeLength is the number of characters in a join code.
const CodeLength = 8

// RandSource allows deterministic code generation in tests.
type RandSource interface {
	IntN(n int) int
}

// Generator produces join codes from a configurable randomness source.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil RandSource uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new join code using crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new join code using the generator's RandSource.
func (g *Generator) Generate() string {
	var sb strings.Builder
	sb.Grow(CodeLength)

	if g.randSource != nil {
		for i := 0; i < CodeLength; i++ {
			sb.WriteByte(alphabet[g.randSource.IntN(len(alphabet))])
		}
		return sb.String()
	}

	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	for _, b := range buf {
		sb.WriteByte(alphabet[int(b)%len(alphabet)])
	}
	return sb.String()
}

// Validate checks that a join code has the right length and alphabet.
func Validate(code string) error {
	if len(code) != CodeLength {
		return fmt.Errorf("join code must be exactly %d characters, got %d", CodeLength, len(code))
	}
	for i, char := range code {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
