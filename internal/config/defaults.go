package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"store": map[string]interface{}{
			"base_url": "http://localhost:5000",
			"timeout":  0, // 0 leaves the platform default in place
		},
		"sync": map[string]interface{}{
			"interval": 60,
		},
		"alerts": map[string]interface{}{
			"single_fire": false,
		},
		"banner": map[string]interface{}{
			"display_ms": 3000,
			"exit_ms":    300,
		},
		"notify": map[string]interface{}{
			"backend":  NotifyDesktop,
			"app_name": "Task Reminder",
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"push": map[string]interface{}{
			"listen":     "127.0.0.1:5050",
			"worker_url": "http://127.0.0.1:5050",
			"app_url":    "http://localhost:5000",
			"enabled":    true,
		},
		"ui": map[string]interface{}{
			"colored_output": true,
			"word_wrap":      80,
		},
		"log": map[string]interface{}{
			"level": "info",
		},
		"state": map[string]interface{}{
			"file": "~/.task-reminder/state.toml",
		},
		"server": map[string]interface{}{
			"listen":         "127.0.0.1:5000",
			"db_path":        "~/.task-reminder/reminders.db",
			"push_url":       "",
			"relay_interval": 30,
		},
		"metrics": map[string]interface{}{
			"listen": "",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.task-reminder/config.yaml"
}
