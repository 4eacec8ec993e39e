package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from flags, files and environment variables.
type Config struct {
	AppName            string        `mapstructure:"app_name"`
	LogLevel           string        `mapstructure:"log_level"`
	Environment        string        `mapstructure:"wirecard_env"`
	Key                string        `mapstructure:"wirecard_key"`
	Token              string        `mapstructure:"wirecard_token"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	PublishersFile     string        `mapstructure:"publishers_file"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"env":        "wirecard_env",
	"log-level":  "log_level",
	"timeout":    "http_timeout_seconds",
	"journal":    "journal_type",
	"publishers": "publishers_file",
}

// RegisterFlags declares the overridable settings on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("env", "", "wirecard environment (production|sandbox)")
	fs.String("log-level", "", "log level (debug|info|warn|error)")
	fs.Int64("timeout", 0, "http timeout in seconds (0 disables)")
	fs.String("journal", "", "journal backend (bbolt|none)")
	fs.String("publishers", "", "path to a publishers YAML/JSON file")
}

// Load reads configuration from environment variables, configs/.env and any flags set on fs.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "wirecard")
	v.SetDefault("log_level", "info")
	v.SetDefault("wirecard_env", "sandbox")
	v.SetDefault("wirecard_key", "")
	v.SetDefault("wirecard_token", "")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("publishers_file", "")
	v.SetDefault("journal_type", "bbolt")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.Key = strings.TrimSpace(cfg.Key)
	cfg.Token = strings.TrimSpace(cfg.Token)

	if cfg.Key == "" || cfg.Token == "" {
		return nil, fmt.Errorf("wirecard_key and wirecard_token are required")
	}
	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	return &cfg, nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Key != "" {
		c.Key = "***"
	}
	if c.Token != "" {
		c.Token = "***"
	}
	return c
}
