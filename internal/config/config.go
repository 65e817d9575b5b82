// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted by the pluggable subsystems.
const (
	ProviderMemory   = "memory"
	ProviderPostgres = "postgres"
	ProviderLocal    = "local"
	ProviderGCS      = "gcs"
	ProviderPubSub   = "pubsub"
	ProviderStatic   = "static"
	ProviderOpenAI   = "openai"
	ProviderNone     = "none"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Crawler    CrawlerConfig    `mapstructure:"crawler"`
	DB         DBConfig         `mapstructure:"db"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// CrawlerConfig governs crawl pipeline behavior.
type CrawlerConfig struct {
	UserAgent           string `mapstructure:"user_agent"`
	MaxPages            int    `mapstructure:"max_pages"`
	BatchSize           int    `mapstructure:"batch_size"`
	BatchDelayMs        int    `mapstructure:"batch_delay_ms"`
	FetchTimeoutSeconds int    `mapstructure:"fetch_timeout_seconds"`
	MaxBodyChars        int    `mapstructure:"max_body_chars"`
}

// DBConfig selects and configures the overview store.
type DBConfig struct {
	Provider           string `mapstructure:"provider"`
	DSN                string `mapstructure:"dsn"`
	MaxConns           int32  `mapstructure:"max_conns"`
	MinConns           int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMin int    `mapstructure:"max_conn_lifetime_minutes"`
}

// StorageConfig selects and configures the page snapshot store.
type StorageConfig struct {
	Provider    string `mapstructure:"provider"`
	GCSBucket   string `mapstructure:"gcs_bucket"`
	BaseDir     string `mapstructure:"base_dir"`
	Prefix      string `mapstructure:"prefix"`
	ContentType string `mapstructure:"content_type"`
}

// NotifyConfig selects and configures the completion-event publisher.
type NotifyConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// SummarizerConfig selects and configures the profile summarizer.
type SummarizerConfig struct {
	Provider       string `mapstructure:"provider"`
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxTokens      int    `mapstructure:"max_tokens"`
}

// GeneratorConfig bounds background generation runs.
type GeneratorConfig struct {
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITEPROFILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("logging.development", true)
	v.SetDefault("crawler.user_agent", "siteprofiler-bot/0.1")
	v.SetDefault("crawler.max_pages", 50)
	v.SetDefault("crawler.batch_size", 5)
	v.SetDefault("crawler.batch_delay_ms", 300)
	v.SetDefault("crawler.fetch_timeout_seconds", 15)
	v.SetDefault("crawler.max_body_chars", 5000)
	v.SetDefault("db.provider", ProviderMemory)
	v.SetDefault("storage.provider", ProviderNone)
	v.SetDefault("storage.prefix", "pages")
	v.SetDefault("storage.content_type", "text/html; charset=utf-8")
	v.SetDefault("notify.provider", ProviderNone)
	v.SetDefault("summarizer.provider", ProviderStatic)
	v.SetDefault("summarizer.timeout_seconds", 60)
	v.SetDefault("generator.run_timeout_seconds", 300)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.MaxPages <= 0 {
		return fmt.Errorf("crawler.max_pages must be > 0")
	}
	if c.Crawler.BatchSize <= 0 {
		return fmt.Errorf("crawler.batch_size must be > 0")
	}
	if c.Crawler.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.fetch_timeout_seconds must be > 0")
	}

	switch c.DB.Provider {
	case ProviderMemory:
	case ProviderPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set when db.provider is postgres")
		}
	default:
		return fmt.Errorf("db.provider %q is not supported", c.DB.Provider)
	}

	switch c.Storage.Provider {
	case ProviderNone, ProviderMemory:
	case ProviderLocal:
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("storage.base_dir must be set when storage.provider is local")
		}
	case ProviderGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is gcs")
		}
	default:
		return fmt.Errorf("storage.provider %q is not supported", c.Storage.Provider)
	}

	switch c.Notify.Provider {
	case ProviderNone, ProviderMemory:
	case ProviderPubSub:
		if c.Notify.ProjectID == "" || c.Notify.Topic == "" {
			return fmt.Errorf("notify.project_id and notify.topic must be set when notify.provider is pubsub")
		}
	default:
		return fmt.Errorf("notify.provider %q is not supported", c.Notify.Provider)
	}

	switch c.Summarizer.Provider {
	case ProviderStatic:
	case ProviderOpenAI:
		if c.Summarizer.APIKey == "" {
			return fmt.Errorf("summarizer.api_key must be set when summarizer.provider is openai")
		}
	default:
		return fmt.Errorf("summarizer.provider %q is not supported", c.Summarizer.Provider)
	}

	return nil
}

// BatchDelay returns the inter-batch crawl delay as a duration.
func (c Config) BatchDelay() time.Duration {
	return time.Duration(c.Crawler.BatchDelayMs) * time.Millisecond
}

// FetchTimeout returns the per-page fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.FetchTimeoutSeconds) * time.Second
}

// RunTimeout returns the background generation budget as a duration.
func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Generator.RunTimeoutSeconds) * time.Second
}

// ServerTimeout returns the HTTP request timeout as a duration.
func (c Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// MaxConnLifetime returns the Postgres connection lifetime as a duration.
func (c DBConfig) MaxConnLifetime() time.Duration {
	return time.Duration(c.MaxConnLifetimeMin) * time.Minute
}
