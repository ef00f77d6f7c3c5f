package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken          string        `env:"DISCORD_TOKEN,required,notEmpty"`
	DeveloperID           string        `env:"DEVELOPER_ID"`
	DiscordGuildBlacklist []string      `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands     bool          `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	StoragePath           string        `env:"STORAGE_PATH" envDefault:"data/datastore.json"`
	CommandCacheDir       string        `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`
	AudioDir              string        `env:"AUDIO_DIR" envDefault:"data/audio"`
	VxerDBPath            string        `env:"VXER_DB_PATH" envDefault:"data/vxer"`
	MetricsAddr           string        `env:"METRICS_ADDR"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat             string        `env:"LOG_FORMAT" envDefault:"text"`
	HTTPTimeout           time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not read .env file", "err", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// SetupLogging configures the default charmbracelet logger.
func SetupLogging(cfg *Config) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		logger.SetFormatter(log.JSONFormatter)
	}

	log.SetDefault(logger)
}
