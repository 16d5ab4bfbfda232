// Package config holds the runner configuration. A Config is built once at
// process start (defaults, then optional YAML file, then optional .env,
// then RUNNER_* environment variables) and passed explicitly to the
// components that need it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"daylab/internal/idea"
	"daylab/internal/prompt"
)

// Config configures one orchestration run.
type Config struct {
	// Mode selects the idea source (random, structured, ai, structured_ai).
	Mode string `yaml:"mode"`
	// Level is the implementation ambition (simple_test, mvp, full_scenario).
	Level string `yaml:"level"`
	// ExperimentsRoot is the directory holding day_<N>_* experiment dirs.
	ExperimentsRoot string `yaml:"experiments_root"`

	Agent  AgentConfig  `yaml:"agent"`
	Verify VerifyConfig `yaml:"verify"`

	// MaxAttempts bounds the invoke-verify loop (first try plus retries).
	MaxAttempts int `yaml:"max_attempts"`
	// Commit stages and commits a verified experiment to git.
	Commit bool `yaml:"commit"`
}

// AgentConfig configures the external agent CLI subprocess.
type AgentConfig struct {
	Binary string `yaml:"binary"`
	// Timeout is the hard limit on one CLI invocation, in seconds.
	Timeout int `yaml:"timeout"`
	// SkipPermissions passes --dangerously-skip-permissions to the CLI.
	SkipPermissions bool `yaml:"skip_permissions"`
}

// VerifyConfig configures run.sh verification.
type VerifyConfig struct {
	// GracePeriod is how long run.sh may run before a still-live process
	// counts as started, in seconds.
	GracePeriod int `yaml:"grace_period"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mode:            "random",
		Level:           "mvp",
		ExperimentsRoot: "experiments",
		Agent: AgentConfig{
			Binary:  "claude",
			Timeout: 300,
		},
		Verify: VerifyConfig{
			GracePeriod: 3,
		},
		MaxAttempts: 2,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), a .env file in the working
// directory (skipped when absent), and RUNNER_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies RUNNER_* variables on top of the current
// values. Unknown RUNNER_* variables are ignored; malformed values for
// known variables are errors.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("RUNNER_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("RUNNER_LEVEL"); v != "" {
		c.Level = v
	}
	if v := os.Getenv("RUNNER_EXPERIMENTS_ROOT"); v != "" {
		c.ExperimentsRoot = v
	}
	if v := os.Getenv("RUNNER_AGENT_BINARY"); v != "" {
		c.Agent.Binary = v
	}
	if v := os.Getenv("RUNNER_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RUNNER_TIMEOUT: %w", err)
		}
		c.Agent.Timeout = n
	}
	if v := os.Getenv("RUNNER_SKIP_PERMISSIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUNNER_SKIP_PERMISSIONS: %w", err)
		}
		c.Agent.SkipPermissions = b
	}
	if v := os.Getenv("RUNNER_GRACE_PERIOD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RUNNER_GRACE_PERIOD: %w", err)
		}
		c.Verify.GracePeriod = n
	}
	if v := os.Getenv("RUNNER_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RUNNER_MAX_ATTEMPTS: %w", err)
		}
		c.MaxAttempts = n
	}
	if v := os.Getenv("RUNNER_COMMIT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUNNER_COMMIT: %w", err)
		}
		c.Commit = b
	}
	return nil
}

// Validate rejects configurations that cannot drive a run.
func (c *Config) Validate() error {
	if _, err := idea.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := prompt.ParseLevel(c.Level); err != nil {
		return err
	}
	if c.ExperimentsRoot == "" {
		return fmt.Errorf("experiments_root must not be empty")
	}
	if c.Agent.Binary == "" {
		return fmt.Errorf("agent.binary must not be empty")
	}
	if c.Agent.Timeout <= 0 {
		return fmt.Errorf("agent.timeout must be positive, got %d", c.Agent.Timeout)
	}
	if c.Verify.GracePeriod <= 0 {
		return fmt.Errorf("verify.grace_period must be positive, got %d", c.Verify.GracePeriod)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

// IdeaMode returns the parsed idea mode. Validate must have accepted the
// config first.
func (c *Config) IdeaMode() idea.Mode {
	m, _ := idea.ParseMode(c.Mode)
	return m
}

// ImplLevel returns the parsed implementation level.
func (c *Config) ImplLevel() prompt.Level {
	l, _ := prompt.ParseLevel(c.Level)
	return l
}

// AgentTimeout returns the agent timeout as a duration.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.Agent.Timeout) * time.Second
}

// GracePeriod returns the verifier grace period as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Verify.GracePeriod) * time.Second
}
