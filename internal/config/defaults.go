package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"provider": "deepseek",
		"deepseek": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://api.deepseek.com",
			"timeout":  120,
		},
		"ollama": map[string]interface{}{
			"base_url": "http://localhost:11434",
			"timeout":  120,
		},
		"model": map[string]interface{}{
			"name":          "deepseek-chat",
			"max_tokens":    8192,
			"temperature":   1.0,
			"system_prompt": "", // empty means the built-in assistant prompt
		},
		"storage": map[string]interface{}{
			"backend": StorageSQLite,
			"path":    "~/.talkassist/reminders.db",
		},
		"notify": map[string]interface{}{
			"telegram": map[string]interface{}{
				"enabled":   false,
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"session": map[string]interface{}{
			"max_history":  50,
			"save_history": false,
			"history_file": "~/.talkassist/history.json",
		},
		"ui": map[string]interface{}{
			"colored_output":   true,
			"show_token_count": false,
			"show_timestamps":  false,
		},
		"http": map[string]interface{}{
			"enabled": false,
			"addr":    "127.0.0.1:5000",
		},
		"mcp": map[string]interface{}{
			"enabled":     false,
			"config_file": "~/.talkassist/mcp.json",
			"servers":     []interface{}{},
		},
		"log": map[string]interface{}{
			"level": "info",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.talkassist/config.yaml"
}

func GetDefaultMCPConfigPath() string {
	return "~/.talkassist/mcp.json"
}
