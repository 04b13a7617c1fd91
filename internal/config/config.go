package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Platform notification backends.
const (
	NotifyDesktop  = "desktop"
	NotifyTelegram = "telegram"
	NotifyNone     = "none"
)

// EnvPrefix selects the environment variables merged over the config file.
// TASK_REMINDER_STORE__BASE_URL sets store.base_url.
const EnvPrefix = "TASK_REMINDER_"

type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Sync    SyncConfig    `koanf:"sync"`
	Alerts  AlertsConfig  `koanf:"alerts"`
	Banner  BannerConfig  `koanf:"banner"`
	Notify  NotifyConfig  `koanf:"notify"`
	Push    PushConfig    `koanf:"push"`
	UI      UIConfig      `koanf:"ui"`
	Log     LogConfig     `koanf:"log"`
	State   StateConfig   `koanf:"state"`
	Server  ServerConfig  `koanf:"server"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type StoreConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"` // seconds, 0 = no client-side limit
}

type SyncConfig struct {
	Interval int `koanf:"interval"` // seconds between reminder refreshes
}

type AlertsConfig struct {
	SingleFire bool `koanf:"single_fire"` // suppress repeated alerts for the same due instant
}

type BannerConfig struct {
	DisplayMS int `koanf:"display_ms"`
	ExitMS    int `koanf:"exit_ms"`
}

type NotifyConfig struct {
	Backend  string         `koanf:"backend"`
	AppName  string         `koanf:"app_name"`
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type PushConfig struct {
	Listen    string `koanf:"listen"`     // push-worker bind address
	WorkerURL string `koanf:"worker_url"` // where clients find the worker
	AppURL    string `koanf:"app_url"`    // base for relative notification URLs
	Enabled   bool   `koanf:"enabled"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
	WordWrap      int  `koanf:"word_wrap"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type StateConfig struct {
	File string `koanf:"file"`
}

type ServerConfig struct {
	Listen        string `koanf:"listen"`
	DBPath        string `koanf:"db_path"`
	PushURL       string `koanf:"push_url"`       // push-worker URL for due relays, empty disables
	RelayInterval int    `koanf:"relay_interval"` // seconds
}

type MetricsConfig struct {
	Listen string `koanf:"listen"` // empty disables the metrics endpoint
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = ExpandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(key), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Same variable names the Telegram tooling has always used.
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("notify.telegram.bot_token", token)
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		k.Set("notify.telegram.chat_id", chatID)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.State.File = ExpandPath(cfg.State.File)
	cfg.Server.DBPath = ExpandPath(cfg.Server.DBPath)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validateURL("store.base_url", c.Store.BaseURL); err != nil {
		return err
	}

	if c.Store.Timeout < 0 {
		return fmt.Errorf("store.timeout must not be negative")
	}

	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}

	if c.Banner.DisplayMS <= 0 || c.Banner.ExitMS < 0 {
		return fmt.Errorf("banner.display_ms must be positive and banner.exit_ms not negative")
	}

	switch c.Notify.Backend {
	case NotifyDesktop, NotifyNone:
	case NotifyTelegram:
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("telegram backend needs notify.telegram.bot_token and notify.telegram.chat_id (or TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID)")
		}
	default:
		return fmt.Errorf("unknown notify backend: %s (supported: %s, %s, %s)",
			c.Notify.Backend, NotifyDesktop, NotifyTelegram, NotifyNone)
	}

	if c.Push.Enabled {
		if err := validateURL("push.worker_url", c.Push.WorkerURL); err != nil {
			return err
		}
	}
	if err := validateURL("push.app_url", c.Push.AppURL); err != nil {
		return err
	}

	if c.Server.PushURL != "" {
		if err := validateURL("server.push_url", c.Server.PushURL); err != nil {
			return err
		}
		if c.Server.RelayInterval <= 0 {
			return fmt.Errorf("server.relay_interval must be positive")
		}
	}

	return nil
}

// SyncInterval is the refresh period of the sync loop.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.Interval) * time.Second
}

// StoreTimeout is the per-request limit of the gateway, zero when unset.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.Timeout) * time.Second
}

// BannerDurations returns the display and exit durations of a banner.
func (c *Config) BannerDurations() (time.Duration, time.Duration) {
	return time.Duration(c.Banner.DisplayMS) * time.Millisecond,
		time.Duration(c.Banner.ExitMS) * time.Millisecond
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return nil
}

// ExpandPath resolves a leading "~/" against the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
