package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daylab/internal/idea"
	"daylab/internal/prompt"
)

// clearRunnerEnv blanks every RUNNER_* variable the loader reads so tests
// are insulated from the invoking shell.
func clearRunnerEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RUNNER_MODE", "RUNNER_LEVEL", "RUNNER_EXPERIMENTS_ROOT",
		"RUNNER_AGENT_BINARY", "RUNNER_TIMEOUT", "RUNNER_SKIP_PERMISSIONS",
		"RUNNER_GRACE_PERIOD", "RUNNER_MAX_ATTEMPTS", "RUNNER_COMMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearRunnerEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "random", cfg.Mode)
	assert.Equal(t, "mvp", cfg.Level)
	assert.Equal(t, "experiments", cfg.ExperimentsRoot)
	assert.Equal(t, "claude", cfg.Agent.Binary)
	assert.Equal(t, 300*time.Second, cfg.AgentTimeout())
	assert.Equal(t, 3*time.Second, cfg.GracePeriod())
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.False(t, cfg.Commit)
}

func TestLoadYAML(t *testing.T) {
	clearRunnerEnv(t)

	path := filepath.Join(t.TempDir(), "runner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: structured
level: full_scenario
experiments_root: /tmp/exp
agent:
  binary: claude-dev
  timeout: 60
  skip_permissions: true
verify:
  grace_period: 5
max_attempts: 3
commit: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, idea.ModeStructured, cfg.IdeaMode())
	assert.Equal(t, prompt.LevelFullScenario, cfg.ImplLevel())
	assert.Equal(t, "/tmp/exp", cfg.ExperimentsRoot)
	assert.Equal(t, "claude-dev", cfg.Agent.Binary)
	assert.True(t, cfg.Agent.SkipPermissions)
	assert.Equal(t, 5*time.Second, cfg.GracePeriod())
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.True(t, cfg.Commit)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearRunnerEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "random", cfg.Mode)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("env beats yaml", func(t *testing.T) {
		clearRunnerEnv(t)
		path := filepath.Join(t.TempDir(), "runner.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mode: structured\n"), 0o644))
		t.Setenv("RUNNER_MODE", "ai")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, idea.ModeAI, cfg.IdeaMode())
	})

	t.Run("numeric and boolean overrides", func(t *testing.T) {
		clearRunnerEnv(t)
		t.Setenv("RUNNER_TIMEOUT", "42")
		t.Setenv("RUNNER_COMMIT", "true")
		t.Setenv("RUNNER_MAX_ATTEMPTS", "4")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 42*time.Second, cfg.AgentTimeout())
		assert.True(t, cfg.Commit)
		assert.Equal(t, 4, cfg.MaxAttempts)
	})

	t.Run("malformed numeric override is an error", func(t *testing.T) {
		clearRunnerEnv(t)
		t.Setenv("RUNNER_TIMEOUT", "soon")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RUNNER_TIMEOUT")
	})
}

func TestValidate(t *testing.T) {
	t.Run("unknown mode is rejected, not defaulted", func(t *testing.T) {
		clearRunnerEnv(t)
		t.Setenv("RUNNER_MODE", "chaotic")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chaotic")
	})

	t.Run("unknown level is rejected", func(t *testing.T) {
		clearRunnerEnv(t)
		t.Setenv("RUNNER_LEVEL", "heroic")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "heroic")
	})

	t.Run("bounds", func(t *testing.T) {
		cfg := Default()
		cfg.MaxAttempts = 0
		require.Error(t, cfg.Validate())

		cfg = Default()
		cfg.Agent.Timeout = -1
		require.Error(t, cfg.Validate())

		cfg = Default()
		cfg.Agent.Binary = ""
		require.Error(t, cfg.Validate())
	})
}
