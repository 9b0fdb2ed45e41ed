// Package config provides YAML-based configuration loading for spravbot.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level spravbot configuration, loaded from spravbot.yaml.
// A few fields can be overridden from the environment (see envOverrides),
// so secrets stay out of the config file.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Digest   DigestConfig   `yaml:"digest"`
}

// TelegramConfig holds bot credentials and polling settings.
type TelegramConfig struct {
	Token          string `yaml:"token"`
	PollTimeoutSec int    `yaml:"poll_timeout_sec"`
}

// DatabaseConfig selects sqlite (default) or mysql.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// AdminConfig holds the operator console HTTP settings.
type AdminConfig struct {
	Port int `yaml:"port"`
}

// DigestConfig schedules the periodic stats digest sent to an admin chat.
type DigestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`    // 5-field cron expression
	ChatID  int64  `yaml:"chat_id"` // destination chat identity
}

// envOverrides maps environment variables onto config fields.
type envOverrides struct {
	BotToken  string `env:"BOT_TOKEN"`
	DBPath    string `env:"SPRAVBOT_DB_PATH"`
	AdminPort int    `env:"SPRAVBOT_ADMIN_PORT"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file is not an error: defaults plus environment overrides are
// enough to run against a local sqlite database.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			data = nil
		} else {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables onto the config.
func (c *Config) applyEnv() error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("config: parse environment: %w", err)
	}
	if ov.BotToken != "" {
		c.Telegram.Token = ov.BotToken
	}
	if ov.DBPath != "" {
		c.Database.Path = ov.DBPath
	}
	if ov.AdminPort != 0 {
		c.Admin.Port = ov.AdminPort
	}
	return nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Telegram.PollTimeoutSec <= 0 {
		c.Telegram.PollTimeoutSec = 60
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "spravbot.db"
	}
	if c.Database.Driver == "mysql" && c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Admin.Port == 0 {
		c.Admin.Port = 8080
	}
	if c.Digest.Cron == "" {
		c.Digest.Cron = "0 9 * * *"
	}
}

// validate rejects configs that cannot work.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "mysql" && c.Database.Host == "" {
		return fmt.Errorf("config: mysql driver requires database.host")
	}
	if c.Digest.Enabled && c.Digest.ChatID == 0 {
		return fmt.Errorf("config: digest.enabled requires digest.chat_id")
	}
	return nil
}
