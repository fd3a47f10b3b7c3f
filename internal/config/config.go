// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jason-s-yu/ninetynine/internal/cache"
	"github.com/jason-s-yu/ninetynine/internal/game"
	"gopkg.in/yaml.v3"
)

// Config is the configuration shared by the server and the historian.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Historian HistorianConfig `yaml:"historian"`
	Game      game.Rules      `yaml:"game"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicDir string `yaml:"public_dir"` // static client; empty disables it
	LogLevel  string `yaml:"log_level"`
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig locates the action queue. An empty Addr disables action recording.
type RedisConfig struct {
	Addr  string `yaml:"addr"`
	DB    int    `yaml:"db"`
	Queue string `yaml:"queue"`
}

// HistorianConfig controls the queue consumer.
type HistorianConfig struct {
	DatabaseURL string `yaml:"database_url"`
	BatchSize   int    `yaml:"batch_size"`
	FlushMs     int    `yaml:"flush_ms"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "",
			Port:      3000,
			PublicDir: "public",
			LogLevel:  "info",
		},
		Redis: RedisConfig{
			Queue: cache.DefaultQueueName,
		},
		Historian: HistorianConfig{
			BatchSize: 20,
			FlushMs:   500,
		},
		Game: game.DefaultRules(),
	}
}

// Load builds the configuration from defaults, then the YAML file at path if path is
// not empty, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.PublicDir = getEnv("PUBLIC_DIR", cfg.Server.PublicDir)
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", cfg.Server.LogLevel)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Queue = getEnv("HISTORIAN_QUEUE_NAME", cfg.Redis.Queue)

	cfg.Historian.DatabaseURL = getEnv("DATABASE_URL", cfg.Historian.DatabaseURL)
	cfg.Historian.BatchSize = getEnvInt("HISTORIAN_BATCH_SIZE", cfg.Historian.BatchSize)
	cfg.Historian.FlushMs = getEnvInt("HISTORIAN_FLUSH_MS", cfg.Historian.FlushMs)

	cfg.Game.MaxPlayers = getEnvInt("GAME_MAX_PLAYERS", cfg.Game.MaxPlayers)
	cfg.Game.StartingChips = getEnvInt("GAME_STARTING_CHIPS", cfg.Game.StartingChips)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Historian.BatchSize < 1 {
		return fmt.Errorf("historian batch size must be positive, got %d", c.Historian.BatchSize)
	}
	if c.Historian.FlushMs < 1 {
		return fmt.Errorf("historian flush interval must be positive, got %dms", c.Historian.FlushMs)
	}
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("game rules: %w", err)
	}
	return nil
}

// getEnv returns the value of the environment variable key, or fallback if it is unset.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

// getEnvInt is getEnv for integers. Unparseable values are ignored.
func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
