package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lectern-ai/lectern/dialog"
	"github.com/lectern-ai/lectern/persona"
)

// CredentialEnv is the primary environment variable holding the completion
// provider credential. Provider-native variables are honoured as fallbacks.
const CredentialEnv = "LECTERN_API_KEY"

// ErrMissingCredential indicates no provider credential was found in the
// environment. Startup-time fatal.
var ErrMissingCredential = errors.New("missing completion provider credential")

// Supported provider selectors.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is the YAML service configuration.
type Config struct {
	ListenAddr       string         `yaml:"listen_addr"`
	Provider         string         `yaml:"provider"`
	Model            string         `yaml:"model,omitempty"`
	Temperature      float64        `yaml:"temperature,omitempty"`
	TimeoutSeconds   int            `yaml:"timeout_seconds"`
	DebateTopic      string         `yaml:"debate_topic,omitempty"`
	MaxAutoExchanges int            `yaml:"max_auto_exchanges"`
	Professors       []persona.Spec `yaml:"professors"`

	// baseDir resolves relative reference document paths; set by Load.
	baseDir string
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		ListenAddr:       ":8080",
		Provider:         ProviderOpenAI,
		Temperature:      0.7,
		TimeoutSeconds:   60,
		DebateTopic:      dialog.DefaultTopic,
		MaxAutoExchanges: dialog.DefaultMaxAutoExchanges,
	}
}

// Load reads and validates the configuration file at path. Fields absent
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.baseDir = filepath.Dir(path)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if len(c.Professors) == 0 {
		return fmt.Errorf("no professors configured")
	}
	if c.MaxAutoExchanges <= 0 {
		return fmt.Errorf("max_auto_exchanges must be positive, got %d", c.MaxAutoExchanges)
	}
	return nil
}

// Personas builds the validated persona registry, reading every reference
// document eagerly. Any missing document fails the build.
func (c *Config) Personas() (*persona.Registry, error) {
	return persona.Build(c.Professors, c.baseDir)
}

// Credential resolves the provider credential from the environment:
// LECTERN_API_KEY first, then the selected provider's native variable.
func (c *Config) Credential() (string, error) {
	if key := os.Getenv(CredentialEnv); key != "" {
		return key, nil
	}
	fallback := "OPENAI_API_KEY"
	if c.Provider == ProviderAnthropic {
		fallback = "ANTHROPIC_API_KEY"
	}
	if key := os.Getenv(fallback); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: set %s or %s", ErrMissingCredential, CredentialEnv, fallback)
}
