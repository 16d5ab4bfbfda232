package idea

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Run("accepts all known modes", func(t *testing.T) {
		for s, want := range map[string]Mode{
			"random":        ModeRandom,
			"structured":    ModeStructured,
			"ai":            ModeAI,
			"structured_ai": ModeStructuredAI,
		} {
			got, err := ParseMode(s)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, s, got.String())
		}
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		_, err := ParseMode("randomish")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "randomish")
		assert.Contains(t, err.Error(), "structured_ai")
	})
}

func TestSourceNext(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("random draws from the curated list", func(t *testing.T) {
		src := NewSource(ModeRandom, rng)
		for i := 0; i < 20; i++ {
			assert.Contains(t, curatedIdeas, src.Next())
		}
	})

	t.Run("structured carries framework context", func(t *testing.T) {
		src := NewSource(ModeStructured, rng)
		for i := 0; i < 20; i++ {
			got := src.Next()
			assert.Contains(t, got, "(using ")
			assert.True(t, strings.HasSuffix(got, ")"), "got %q", got)
		}
	})

	t.Run("ai mode is the documented placeholder", func(t *testing.T) {
		src := NewSource(ModeAI, rng)
		assert.Equal(t, "Generate a creative programming experiment idea", src.Next())
	})

	t.Run("structured ai wraps a direction", func(t *testing.T) {
		src := NewSource(ModeStructuredAI, rng)
		got := src.Next()
		require.True(t, strings.HasPrefix(got, "Generate an idea to: "))
		assert.Contains(t, aiDirections, strings.TrimPrefix(got, "Generate an idea to: "))
	})

	t.Run("seeded draws are reproducible", func(t *testing.T) {
		a := NewSource(ModeStructured, rand.New(rand.NewSource(42)))
		b := NewSource(ModeStructured, rand.New(rand.NewSource(42)))
		for i := 0; i < 5; i++ {
			assert.Equal(t, a.Next(), b.Next())
		}
	})
}
