// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Research   ResearchConfig   `yaml:"research" mapstructure:"research"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ResearchConfig configures the provider router and escalation policy.
type ResearchConfig struct {
	// PrimaryProvider is tried first on every call: gemini, perplexity,
	// or claude.
	PrimaryProvider string `yaml:"primary_provider" mapstructure:"primary_provider"`
	// FallbackEnabled allows the router to try remaining providers when
	// the primary fails.
	FallbackEnabled bool `yaml:"fallback_enabled" mapstructure:"fallback_enabled"`
	// AttemptTimeoutSecs bounds each individual provider attempt.
	AttemptTimeoutSecs int `yaml:"attempt_timeout_secs" mapstructure:"attempt_timeout_secs"`
	// PolicyFile optionally overrides escalation thresholds.
	PolicyFile string `yaml:"policy_file" mapstructure:"policy_file"`
	// ScrapeEnabled toggles the pre-research structural scrape.
	ScrapeEnabled bool `yaml:"scrape_enabled" mapstructure:"scrape_enabled"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina Reader settings.
type JinaConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// FirecrawlConfig holds Firecrawl API settings (scrape fallback only).
type FirecrawlConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// PlacesConfig holds Google Places settings for the review lookup.
type PlacesConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// NotionConfig holds workspace credentials and the company database ID.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	CompanyDB string `yaml:"company_db" mapstructure:"company_db"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "bta.db")
	v.SetDefault("store.cache_ttl_hours", 24)
	v.SetDefault("research.primary_provider", "gemini")
	v.SetDefault("research.fallback_enabled", true)
	v.SetDefault("research.attempt_timeout_secs", 180)
	v.SetDefault("research.scrape_enabled", true)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
