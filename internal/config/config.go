// Package config loads the relay settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/relay/pkg/conversation"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/orchestrator"
	"github.com/aretw0/relay/pkg/registry"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the config file read when none is given explicitly.
	DefaultPath = "relay.yaml"

	// DefaultStateDir holds the file store and other local state.
	DefaultStateDir = ".relay"

	// DefaultToolsPath declares process-backed tools.
	DefaultToolsPath = "tools.yaml"

	// DefaultSettleDelay is waited after completion before reading the reply.
	DefaultSettleDelay = 500 * time.Millisecond

	DefaultPort      = 8080
	DefaultRedisAddr = "localhost:6379"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// OpenAI holds the connection settings of the remote service.
type OpenAI struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Redis holds the settings of the Redis store, locks and ledger.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Store selects where session bookmarks are kept.
type Store struct {
	Kind  string `yaml:"kind"`
	Redis Redis  `yaml:"redis"`
}

// HTTP holds the settings of the HTTP surface.
type HTTP struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Config is the complete relay configuration.
type Config struct {
	OpenAI           OpenAI                 `yaml:"openai"`
	Assistant        domain.AssistantConfig `yaml:"assistant"`
	ThreadID         string                 `yaml:"thread_id"`
	MaxMessageLength int                    `yaml:"max_message_length"`
	Orchestrator     orchestrator.Config    `yaml:"orchestrator"`
	ToolTimeout      time.Duration          `yaml:"tool_timeout"`
	ToolsPath        string                 `yaml:"tools"`
	StateDir         string                 `yaml:"state_dir"`
	Store            Store                  `yaml:"store"`
	HTTP             HTTP                   `yaml:"http"`
	LogLevel         string                 `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	orch := orchestrator.DefaultConfig()
	orch.SettleDelay = DefaultSettleDelay
	return Config{
		Assistant:        domain.AssistantConfig{}.WithDefaults(),
		MaxMessageLength: conversation.MaxMessageLength,
		Orchestrator:     orch,
		ToolTimeout:      registry.DefaultTimeout,
		ToolsPath:        DefaultToolsPath,
		StateDir:         DefaultStateDir,
		Store: Store{
			Kind:  StoreFile,
			Redis: Redis{Addr: DefaultRedisAddr},
		},
		HTTP:     HTTP{Port: DefaultPort},
		LogLevel: "warn",
	}
}

// Load builds the configuration: defaults, then the YAML file at path, then the
// environment (after loading .env files). A missing file is only an error when
// path is not DefaultPath.
func Load(path string, dotenv ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if !(errors.Is(err, os.ErrNotExist) && path == DefaultPath) {
				return Config{}, err
			}
		}
	}

	if err := LoadDotEnv(dotenv...); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding the ones already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides the configuration with the variables returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
		return nil
	}

	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Assistant.ID, "RELAY_ASSISTANT_ID")
	setString(&c.ThreadID, "RELAY_THREAD_ID")
	setString(&c.Store.Kind, "RELAY_STORE")
	setString(&c.Store.Redis.Addr, "RELAY_REDIS_ADDR")
	setString(&c.Store.Redis.Password, "RELAY_REDIS_PASSWORD")
	setString(&c.LogLevel, "RELAY_LOG_LEVEL")

	if err := setDuration(&c.Orchestrator.PollInterval, "RELAY_POLL_INTERVAL"); err != nil {
		return err
	}
	if err := setDuration(&c.ToolTimeout, "RELAY_TOOL_TIMEOUT"); err != nil {
		return err
	}
	if v := strings.TrimSpace(getenv("RELAY_MAX_MESSAGE_LENGTH")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RELAY_MAX_MESSAGE_LENGTH %q: %w", v, err)
		}
		c.MaxMessageLength = n
	}
	if v := strings.TrimSpace(getenv("RELAY_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RELAY_PORT %q: %w", v, err)
		}
		c.HTTP.Port = port
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.Orchestrator.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Orchestrator.PollInterval)
	}
	if c.Orchestrator.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative, got %s", c.Orchestrator.SettleDelay)
	}
	if c.Orchestrator.RunTimeout < 0 {
		return fmt.Errorf("run timeout must not be negative, got %s", c.Orchestrator.RunTimeout)
	}
	if c.MaxMessageLength <= 0 || c.MaxMessageLength > conversation.MaxMessageLength {
		return fmt.Errorf("max message length must be in 1..%d, got %d", conversation.MaxMessageLength, c.MaxMessageLength)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("tool timeout must be positive, got %s", c.ToolTimeout)
	}
	switch c.Store.Kind {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("redis store requires an address")
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store.Kind)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	return nil
}
