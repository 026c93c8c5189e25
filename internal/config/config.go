// Package config loads the interview service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
)

// Config represents the full service configuration
type Config struct {
	Session   SessionConfig   `yaml:"session"`
	Thinker   ThinkerConfig   `yaml:"thinker"`
	Questions QuestionsConfig `yaml:"questions"`
	Analyzers AnalyzersConfig `yaml:"analyzers"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SessionConfig holds per-session orchestration settings
type SessionConfig struct {
	MaxTime      time.Duration `yaml:"max_time"`
	TickInterval time.Duration `yaml:"tick_interval,omitempty"`
	Role         string        `yaml:"role,omitempty"`
	Evaluations  bool          `yaml:"evaluations"`
	Perspectives bool          `yaml:"perspectives"`
	Tree         TreeConfig    `yaml:"tree"`
}

// TreeConfig bounds conversation-tree growth and weighs its direction
type TreeConfig struct {
	MaxDepth      int      `yaml:"max_depth"`
	MaxBreadth    int      `yaml:"max_breadth"`
	DepthWeight   *float64 `yaml:"depth_weight,omitempty"`
	BreadthWeight *float64 `yaml:"breadth_weight,omitempty"`
}

// ThinkerConfig selects and configures the language-model provider
type ThinkerConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key,omitempty"`
	APIKeyEnv   string  `yaml:"api_key_env,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
}

// QuestionsConfig selects the question-generation strategy
type QuestionsConfig struct {
	Strategy string         `yaml:"strategy"` // bank or thinker
	Count    int            `yaml:"count,omitempty"`
	Topic    string         `yaml:"topic,omitempty"`
	Bank     []BankQuestion `yaml:"bank,omitempty"`
}

// BankQuestion is one fixed question-bank entry
type BankQuestion struct {
	Question        string   `yaml:"question"`
	ReferenceAnswer string   `yaml:"reference_answer"`
	ScoringHints    []string `yaml:"scoring_hints,omitempty"`
}

// AnalyzersConfig seeds the perspective registry
type AnalyzersConfig struct {
	Personas []string `yaml:"personas,omitempty"`
}

// StorageConfig selects the memory-store backend
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory or sqlite
	Path    string `yaml:"path,omitempty"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr,omitempty"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Resolve API key from environment variable
	if config.Thinker.APIKeyEnv != "" {
		config.Thinker.APIKey = os.Getenv(config.Thinker.APIKeyEnv)
	}

	config.SetDefaults()

	return &config, nil
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Session.MaxTime == 0 {
		c.Session.MaxTime = 30 * time.Minute
	}
	if c.Session.Tree.MaxDepth == 0 {
		c.Session.Tree.MaxDepth = 5
	}
	if c.Session.Tree.MaxBreadth == 0 {
		c.Session.Tree.MaxBreadth = 10
	}
	if c.Thinker.Provider == "" {
		c.Thinker.Provider = "anthropic"
	}
	if c.Questions.Strategy == "" {
		c.Questions.Strategy = "bank"
	}
	if c.Questions.Count == 0 {
		c.Questions.Count = 10
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "localhost:9190"
	}
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Session.MaxTime <= 0 {
		return invalid("session.max_time must be positive")
	}
	if c.Session.Tree.MaxDepth < 0 || c.Session.Tree.MaxBreadth < 0 {
		return invalid("tree bounds must not be negative")
	}

	switch c.Thinker.Provider {
	case "anthropic", "openai":
	default:
		return invalid(fmt.Sprintf("unsupported thinker provider: %s", c.Thinker.Provider))
	}

	switch c.Questions.Strategy {
	case "bank":
		if len(c.Questions.Bank) == 0 {
			return invalid("questions.strategy is bank but the bank is empty")
		}
	case "thinker":
		if c.Questions.Topic == "" {
			return invalid("questions.strategy is thinker but no topic is set")
		}
	default:
		return invalid(fmt.Sprintf("unsupported question strategy: %s", c.Questions.Strategy))
	}

	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return invalid("storage.backend is sqlite but no path is set")
		}
	default:
		return invalid(fmt.Sprintf("unsupported storage backend: %s", c.Storage.Backend))
	}

	return nil
}

func invalid(message string) error {
	return apperrors.New(apperrors.ErrCodeInvalidConfig, message, nil)
}
