package keygen

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("no entropy")
}

var tokenPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func TestGenerate(t *testing.T) {
	generator := New(DefaultLength)

	for i := 0; i < 100; i++ {
		token := generator.Generate()
		assert.Len(t, token, DefaultLength)
		assert.Regexp(t, tokenPattern, token)
	}
}

func TestGeneratePanicsWithoutEntropy(t *testing.T) {
	savedReader := randReader
	randReader = failingReader{}
	defer func() { randReader = savedReader }()

	assert.Panics(t, func() { New(DefaultLength).Generate() })
}

func TestNewFallsBackToDefaultLength(t *testing.T) {
	assert.Len(t, New(0).Generate(), DefaultLength)
	assert.Len(t, New(-5).Generate(), DefaultLength)
	assert.Len(t, New(12).Generate(), 12)
}
