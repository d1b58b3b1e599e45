package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Apify       ApifyConfig   `toml:"apify"`
	AI          AIConfig      `toml:"ai"`
	Source      SourceConfig  `toml:"source"`
	Monitor     MonitorConfig `toml:"monitor"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Type   string       `toml:"type"` // "badger" or "sqlite"
	Badger BadgerConfig `toml:"badger"`
	Sqlite SqliteConfig `toml:"sqlite"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path string `toml:"path"` // Database directory path
}

// SqliteConfig represents SQLite-specific configuration
type SqliteConfig struct {
	Path string `toml:"path"` // Database file path
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// ApifyConfig contains Apify actor API configuration for extraction runs
type ApifyConfig struct {
	APIKey       string `toml:"api_key"`       // Apify API token (APIFY_API_KEY env)
	ActorID      string `toml:"actor_id"`      // Actor to launch for extraction runs
	BaseURL      string `toml:"base_url"`      // API base URL (default: https://api.apify.com)
	PollInterval string `toml:"poll_interval"` // Run status poll interval as duration string (default: "5s")
	RunTimeout   string `toml:"run_timeout"`   // Max wall time for a run as duration string (default: "30m")
	RateLimit    string `toml:"rate_limit"`    // Minimum time between API requests (default: "1s")
}

// AIProvider represents the AI provider type
type AIProvider string

const (
	// AIProviderOpenAI uses the OpenAI chat completions API
	AIProviderOpenAI AIProvider = "openai"
	// AIProviderClaude uses the Anthropic Claude messages API
	AIProviderClaude AIProvider = "claude"
)

// AIConfig selects and configures the summarization provider
type AIConfig struct {
	Provider AIProvider   `toml:"provider"` // "openai" or "claude" (default: "openai")
	OpenAI   OpenAIConfig `toml:"openai"`
	Claude   ClaudeConfig `toml:"claude"`
}

// OpenAIConfig contains OpenAI API configuration
type OpenAIConfig struct {
	APIKey    string `toml:"api_key"`    // OpenAI API key (OPENAI_API_KEY env)
	Model     string `toml:"model"`      // Model for summary operations (default: "gpt-4o-mini")
	MaxTokens int    `toml:"max_tokens"` // Maximum tokens in response (default: 4096)
	Timeout   string `toml:"timeout"`    // Operation timeout as duration string (default: "2m")
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`    // Anthropic API key (ANTHROPIC_API_KEY env)
	Model     string `toml:"model"`      // Model for summary operations
	MaxTokens int    `toml:"max_tokens"` // Maximum tokens in response (default: 4096)
	Timeout   string `toml:"timeout"`    // Operation timeout as duration string (default: "2m")
}

// SourceConfig constrains which hosts extraction targets may reference
type SourceConfig struct {
	Domain string `toml:"domain"` // Required host suffix for targets (default: "skool.com")
}

// MonitorConfig controls the stale running-job reporter
type MonitorConfig struct {
	Enabled    bool   `toml:"enabled"`     // Run the periodic stale-job sweep
	Schedule   string `toml:"schedule"`    // Cron schedule (default: every 5 minutes)
	StaleAfter string `toml:"stale_after"` // Age after which a running job is reported (default: "1h")
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in colligo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data/badger",
			},
			Sqlite: SqliteConfig{
				Path: "./data/colligo.db",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Apify: ApifyConfig{
			APIKey:       "", // User must provide API key (APIFY_API_KEY or config)
			ActorID:      "",
			BaseURL:      "https://api.apify.com",
			PollInterval: "5s",
			RunTimeout:   "30m",
			RateLimit:    "1s",
		},
		AI: AIConfig{
			Provider: AIProviderOpenAI,
			OpenAI: OpenAIConfig{
				APIKey:    "", // User must provide API key (OPENAI_API_KEY or config)
				Model:     "gpt-4o-mini",
				MaxTokens: 4096,
				Timeout:   "2m",
			},
			Claude: ClaudeConfig{
				APIKey:    "", // User must provide API key (ANTHROPIC_API_KEY or config)
				Model:     "claude-haiku-3-5-20241022",
				MaxTokens: 4096,
				Timeout:   "2m",
			},
		},
		Source: SourceConfig{
			Domain: "skool.com",
		},
		Monitor: MonitorConfig{
			Enabled:    true,
			Schedule:   "*/5 * * * *",
			StaleAfter: "1h",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files.
// Later files override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("COLLIGO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("COLLIGO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("COLLIGO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if storageType := os.Getenv("COLLIGO_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if badgerPath := os.Getenv("COLLIGO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if sqlitePath := os.Getenv("COLLIGO_SQLITE_PATH"); sqlitePath != "" {
		config.Storage.Sqlite.Path = sqlitePath
	}

	// Logging configuration
	if level := os.Getenv("COLLIGO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("COLLIGO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("COLLIGO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Apify configuration (API key also honors the provider's own variable)
	if apiKey := os.Getenv("COLLIGO_APIFY_API_KEY"); apiKey != "" {
		config.Apify.APIKey = apiKey
	} else if apiKey := os.Getenv("APIFY_API_KEY"); apiKey != "" {
		config.Apify.APIKey = apiKey
	}
	if actorID := os.Getenv("COLLIGO_APIFY_ACTOR_ID"); actorID != "" {
		config.Apify.ActorID = actorID
	}
	if baseURL := os.Getenv("COLLIGO_APIFY_BASE_URL"); baseURL != "" {
		config.Apify.BaseURL = baseURL
	}

	// AI configuration
	if provider := os.Getenv("COLLIGO_AI_PROVIDER"); provider != "" {
		config.AI.Provider = AIProvider(provider)
	}
	if apiKey := os.Getenv("COLLIGO_OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	} else if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if model := os.Getenv("COLLIGO_OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if apiKey := os.Getenv("COLLIGO_CLAUDE_API_KEY"); apiKey != "" {
		config.AI.Claude.APIKey = apiKey
	} else if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.AI.Claude.APIKey = apiKey
	}
	if model := os.Getenv("COLLIGO_CLAUDE_MODEL"); model != "" {
		config.AI.Claude.Model = model
	}

	// Source configuration
	if domain := os.Getenv("COLLIGO_SOURCE_DOMAIN"); domain != "" {
		config.Source.Domain = domain
	}

	// Monitor configuration
	if enabled := os.Getenv("COLLIGO_MONITOR_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Monitor.Enabled = e
		}
	}
	if schedule := os.Getenv("COLLIGO_MONITOR_SCHEDULE"); schedule != "" {
		config.Monitor.Schedule = schedule
	}
	if staleAfter := os.Getenv("COLLIGO_MONITOR_STALE_AFTER"); staleAfter != "" {
		config.Monitor.StaleAfter = staleAfter
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string, storageType string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if storageType != "" {
		config.Storage.Type = storageType
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "badger", "sqlite":
	default:
		return fmt.Errorf("invalid storage type %q: must be \"badger\" or \"sqlite\"", c.Storage.Type)
	}

	switch c.AI.Provider {
	case AIProviderOpenAI, AIProviderClaude:
	default:
		return fmt.Errorf("invalid ai provider %q: must be \"openai\" or \"claude\"", c.AI.Provider)
	}

	if c.Source.Domain == "" {
		return fmt.Errorf("source domain must not be empty")
	}

	return nil
}
