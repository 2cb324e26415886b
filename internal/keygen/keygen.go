// Package keygen generates the random fixed-length alphanumeric tokens
// used as user IDs and short URL codes.
package keygen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randReader is the entropy source; tests may substitute it.
var randReader io.Reader = rand.Reader

// DefaultLength is the length of the generated tokens.
const DefaultLength = 6

// Generator produces random tokens of a fixed length.
// It gives no uniqueness guarantee; collision handling is the caller's concern.
type Generator struct {
	length int
}

// New returns a Generator producing tokens of the given length.
// A non-positive length falls back to DefaultLength.
func New(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}

	return &Generator{length: length}
}

// Generate returns a token drawn uniformly from the alphanumeric alphabet.
// It panics when the entropy source fails; no token may be produced from
// anything weaker.
func (g *Generator) Generate() string {
	var result strings.Builder
	result.Grow(g.length)

	for i := 0; i < g.length; i++ {
		randomIndex, err := rand.Int(randReader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			panic(fmt.Sprintf("keygen: entropy source failed: %v", err))
		}
		result.WriteByte(alphabet[randomIndex.Int64()])
	}

	return result.String()
}
