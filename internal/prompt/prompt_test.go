package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{
		"simple_test":   LevelSimpleTest,
		"mvp":           LevelMVP,
		"full_scenario": LevelFullScenario,
	} {
		got, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, s, got.String())
	}

	_, err := ParseLevel("maximal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full_scenario")
}

func TestBuild(t *testing.T) {
	ideas := []string{
		"Pomodoro timer with notifications",
		"CSV data analyzer",
		"weird idea with \"quotes\" & symbols",
	}

	t.Run("contains idea and fixed requirements", func(t *testing.T) {
		for _, idea := range ideas {
			for _, level := range []Level{LevelSimpleTest, LevelMVP, LevelFullScenario} {
				got := Build(idea, level)
				assert.Contains(t, got, idea)
				assert.Contains(t, got, "run.sh")
				assert.Contains(t, got, "README.md")
				assert.Contains(t, got, "self-contained")
			}
		}
	})

	t.Run("level-specific phrasing", func(t *testing.T) {
		assert.Contains(t, Build("x", LevelSimpleTest), "proof-of-concept")
		assert.Contains(t, Build("x", LevelMVP), "MVP")
		assert.Contains(t, Build("x", LevelFullScenario), "complete implementation")
	})

	t.Run("full scenario includes the user story", func(t *testing.T) {
		assert.Contains(t, Build("x", LevelFullScenario), "User Story:")
	})
}

func TestRetry(t *testing.T) {
	got := Retry("run.sh failed with code 2: boom", "CSV data analyzer", LevelMVP)

	assert.Contains(t, got, "run.sh failed with code 2: boom")
	assert.Contains(t, got, "CSV data analyzer")
	assert.Contains(t, got, "core functionality")
	assert.Contains(t, got, "README.md")
	assert.Contains(t, got, "run.sh")

	t.Run("hints track the level", func(t *testing.T) {
		assert.Contains(t, Retry("e", "x", LevelSimpleTest), "extremely simple")
		assert.Contains(t, Retry("e", "x", LevelFullScenario), "work together")
	})
}
