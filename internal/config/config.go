package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration of the review application
type Config struct {
	// Directory holding the database, JSON state and the interval table
	DataDir string `yaml:"data_dir"`
	// Directory holding word lists
	DictsDir string `yaml:"dicts_dir"`
	// Storage backend: sqlite, postgres or json
	StoreBackend string `yaml:"store_backend"`
	// Postgres connection string, used when StoreBackend is postgres
	DatabaseURL string `yaml:"database_url"`
	// Number of applied outcomes between autosaves
	AutosaveEvery int `yaml:"autosave_every"`
	// Wait between polls when nothing is due
	PollTick time.Duration `yaml:"poll_tick"`

	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	// Minutes between due-word reminders
	RemindEvery           int `yaml:"remind_every"`
	NotificationStartHour int `yaml:"notification_start_hour"`
	NotificationEndHour   int `yaml:"notification_end_hour"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:               "database",
		DictsDir:              "dicts",
		StoreBackend:          "sqlite",
		AutosaveEvery:         10,
		PollTick:              time.Second,
		RemindEvery:           60,
		NotificationStartHour: 8,
		NotificationEndHour:   22,
	}
}

// IntervalsPath returns the location of the interval table
func (c *Config) IntervalsPath() string {
	return filepath.Join(c.DataDir, "intervals.yaml")
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables (a .env file is loaded first when present).
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	cfg := DefaultConfig()

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("Warning: ignoring %s: %v", configPath, err)
			cfg = DefaultConfig()
		} else {
			log.Printf("Loaded config from %s", configPath)
		}
	}

	envOverride(&cfg.DataDir, "DATA_DIR")
	envOverride(&cfg.DictsDir, "DICTS_DIR")
	envOverride(&cfg.StoreBackend, "STORE_BACKEND")
	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverrideInt(&cfg.AutosaveEvery, "AUTOSAVE_EVERY")
	envOverrideDuration(&cfg.PollTick, "POLL_TICK")
	envOverride(&cfg.TelegramToken, "TELEGRAM_BOT_TOKEN")
	envOverrideInt64(&cfg.TelegramChatID, "TELEGRAM_CHAT_ID")
	envOverrideInt(&cfg.RemindEvery, "REMIND_EVERY")
	envOverrideHour(&cfg.NotificationStartHour, "NOTIFICATION_START_HOUR")
	envOverrideHour(&cfg.NotificationEndHour, "NOTIFICATION_END_HOUR")

	if cfg.AutosaveEvery <= 0 {
		cfg.AutosaveEvery = DefaultConfig().AutosaveEvery
	}
	if cfg.PollTick <= 0 {
		cfg.PollTick = DefaultConfig().PollTick
	}
	return cfg
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Warning: invalid %s %q: %v", key, v, err)
			return
		}
		*dst = n
	}
}

func envOverrideInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("Warning: invalid %s %q: %v", key, v, err)
			return
		}
		*dst = n
	}
}

func envOverrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("Warning: invalid %s %q: %v", key, v, err)
			return
		}
		*dst = d
	}
}

func envOverrideHour(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			*dst = h
		}
	}
}
