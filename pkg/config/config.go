package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Assistant AssistantConfig `json:"assistant"`
	Channels  ChannelsConfig  `json:"channels"`
	Prefs     PrefsConfig     `json:"prefs"`
	Log       LogConfig       `json:"log"`
	mu        sync.RWMutex
}

type AssistantConfig struct {
	BaseURL        string `json:"base_url" env:"MINICHAT_ASSISTANT_BASE_URL"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"MINICHAT_ASSISTANT_TIMEOUT_SECONDS"`
}

type ChannelsConfig struct {
	WebChat WebChatConfig `json:"webchat"`
	Console ConsoleConfig `json:"console"`
}

type WebChatConfig struct {
	Host           string `json:"host" env:"MINICHAT_CHANNELS_WEBCHAT_HOST"`
	Port           int    `json:"port" env:"MINICHAT_CHANNELS_WEBCHAT_PORT"`
	Username       string `json:"username" env:"MINICHAT_CHANNELS_WEBCHAT_USERNAME"`
	Password       string `json:"password" env:"MINICHAT_CHANNELS_WEBCHAT_PASSWORD"`
	SendRatePerMin int    `json:"send_rate_per_min" env:"MINICHAT_CHANNELS_WEBCHAT_SEND_RATE_PER_MIN"`
}

type ConsoleConfig struct {
	Prompt       string `json:"prompt" env:"MINICHAT_CHANNELS_CONSOLE_PROMPT"`
	ShareCommand string `json:"share_command" env:"MINICHAT_CHANNELS_CONSOLE_SHARE_COMMAND"`
	ExportDir    string `json:"export_dir" env:"MINICHAT_CHANNELS_CONSOLE_EXPORT_DIR"`
}

type PrefsConfig struct {
	Path string `json:"path" env:"MINICHAT_PREFS_PATH"`
}

type LogConfig struct {
	Level string `json:"level" env:"MINICHAT_LOG_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		Assistant: AssistantConfig{
			BaseURL:        "http://localhost:5005",
			TimeoutSeconds: 60,
		},
		Channels: ChannelsConfig{
			WebChat: WebChatConfig{
				Host:           "0.0.0.0",
				Port:           18800,
				SendRatePerMin: 30,
			},
			Console: ConsoleConfig{
				Prompt:    "> ",
				ExportDir: ".",
			},
		},
		Prefs: PrefsConfig{
			Path: "~/.minichat/prefs.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath is the config file location used when no --config flag is given.
func DefaultPath() string {
	return expandHome("~/.minichat/config.json")
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Support full config from env var (for containers / serverless)
	if cfgJSON := os.Getenv("MINICHAT_CONFIG_JSON"); cfgJSON != "" {
		if err := json.Unmarshal([]byte(cfgJSON), cfg); err != nil {
			return nil, fmt.Errorf("parsing MINICHAT_CONFIG_JSON: %w", err)
		}
		if err := env.Parse(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) AssistantTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Assistant.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Assistant.TimeoutSeconds) * time.Second
}

func (c *Config) PrefsPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Prefs.Path)
}

func (c *Config) ExportDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Channels.Console.ExportDir)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
