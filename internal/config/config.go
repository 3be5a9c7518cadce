package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Provider type constants (duplicated from api package to avoid import cycle)
const (
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// Storage backend constants.
const (
	StorageSQLite = "sqlite"
	StorageJSON   = "json"
)

type Config struct {
	Provider string         `koanf:"provider"`
	DeepSeek DeepSeekConfig `koanf:"deepseek"`
	Ollama   OllamaConfig   `koanf:"ollama"`
	Model    ModelConfig    `koanf:"model"`
	Storage  StorageConfig  `koanf:"storage"`
	Notify   NotifyConfig   `koanf:"notify"`
	Session  SessionConfig  `koanf:"session"`
	UI       UIConfig       `koanf:"ui"`
	HTTP     HTTPConfig     `koanf:"http"`
	MCP      MCPConfig      `koanf:"mcp"`
	Log      LogConfig      `koanf:"log"`
}

type DeepSeekConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type OllamaConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type ModelConfig struct {
	Name         string  `koanf:"name"`
	MaxTokens    int     `koanf:"max_tokens"`
	Temperature  float64 `koanf:"temperature"`
	SystemPrompt string  `koanf:"system_prompt"` // empty means the built-in assistant prompt
}

type StorageConfig struct {
	Backend string `koanf:"backend"` // "sqlite" or "json"
	Path    string `koanf:"path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type SessionConfig struct {
	MaxHistory  int    `koanf:"max_history"`
	SaveHistory bool   `koanf:"save_history"`
	HistoryFile string `koanf:"history_file"`
}

type UIConfig struct {
	ColoredOutput  bool `koanf:"colored_output"`
	ShowTokenCount bool `koanf:"show_token_count"`
	ShowTimestamps bool `koanf:"show_timestamps"`
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type MCPConfig struct {
	Enabled    bool              `koanf:"enabled"`
	ConfigFile string            `koanf:"config_file"` // Path to mcp.json (default: ~/.talkassist/mcp.json)
	Servers    []MCPServerConfig `koanf:"servers"`     // Inline servers from the YAML config
}

type MCPServerConfig struct {
	Name    string            `koanf:"name" json:"-"` // Name comes from JSON key
	Command string            `koanf:"command" json:"command"`
	Args    []string          `koanf:"args" json:"args"`
	Env     map[string]string `koanf:"env" json:"env,omitempty"`
}

// MCPJSONConfig represents the Claude Desktop-style JSON config format.
// File: ~/.talkassist/mcp.json
//
// Example:
//
//	{
//	  "mcpServers": {
//	    "reminder": {
//	      "command": "./mcp-reminder",
//	      "args": ["--db", "~/.talkassist/reminders.db"]
//	    },
//	    "info": {
//	      "command": "./mcp-info",
//	      "env": {"DEBUG": "1"}
//	    }
//	  }
//	}
type MCPJSONConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// TALKASSIST_STORAGE_PATH → storage.path, TALKASSIST_LOG_LEVEL →
	// log.level, and so on. Keys whose leaf contains an underscore are
	// handled explicitly below.
	if err := k.Load(env.Provider("TALKASSIST_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "TALKASSIST_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" {
		k.Set("deepseek.api_key", apiKey)
	}
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

	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Session.HistoryFile = expandPath(cfg.Session.HistoryFile)

	// Load MCP servers from JSON config file
	if err := cfg.LoadMCPServers(); err != nil {
		// Log warning but don't fail - MCP is optional
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	// An empty DeepSeek API key is allowed: the assistant falls back to
	// offline mode, the same way it does when the network is down.
	switch c.Provider {
	case ProviderDeepSeek:
	case ProviderOllama:
		if c.Ollama.BaseURL == "" {
			c.Ollama.BaseURL = "http://localhost:11434"
		}
	default:
		return fmt.Errorf("unknown provider: %s (supported: %s, %s)",
			c.Provider, ProviderDeepSeek, ProviderOllama)
	}

	if c.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}

	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	switch c.Storage.Backend {
	case StorageSQLite, StorageJSON:
	default:
		return fmt.Errorf("unknown storage backend: %s (supported: %s, %s)",
			c.Storage.Backend, StorageSQLite, StorageJSON)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if c.Notify.Telegram.Enabled && (c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "") {
		return fmt.Errorf("telegram notifications require bot_token and chat_id (set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID or add to config file)")
	}

	if c.Session.MaxHistory <= 0 {
		return fmt.Errorf("max_history must be positive")
	}

	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required when the HTTP API is enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s (supported: debug, info, warn, error)", c.Log.Level)
	}

	return nil
}

// ProviderConfig contains provider-specific configuration for the API package.
type ProviderConfig struct {
	Type     string
	DeepSeek DeepSeekConfig
	Ollama   OllamaConfig
	Model    ModelSettings
}

// ModelSettings contains model parameters used by all providers.
type ModelSettings struct {
	Name        string
	MaxTokens   int
	Temperature float64
}

// GetProviderConfig returns the provider configuration for the API package.
func (c *Config) GetProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		Type:     c.Provider,
		DeepSeek: c.DeepSeek,
		Ollama:   c.Ollama,
		Model: ModelSettings{
			Name:        c.Model.Name,
			MaxTokens:   c.Model.MaxTokens,
			Temperature: c.Model.Temperature,
		},
	}
}

func expandPath(path string) string {
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

// LoadMCPServers loads MCP server configuration from the JSON config file.
// It merges with any servers defined in the YAML config.
func (c *Config) LoadMCPServers() error {
	configFile := c.MCP.ConfigFile
	if configFile == "" {
		configFile = GetDefaultMCPConfigPath()
	}
	configFile = expandPath(configFile)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			// No JSON config file, just use YAML servers (if any)
			return nil
		}
		return fmt.Errorf("failed to read MCP config file: %w", err)
	}

	var jsonConfig MCPJSONConfig
	if err := json.Unmarshal(data, &jsonConfig); err != nil {
		return fmt.Errorf("failed to parse MCP config file %s: %w", configFile, err)
	}

	for name, server := range jsonConfig.MCPServers {
		server.Name = name
		c.MCP.Servers = append(c.MCP.Servers, server)
	}

	// Enable MCP if we have any servers
	if len(c.MCP.Servers) > 0 {
		c.MCP.Enabled = true
	}

	return nil
}

// GetMCPConfigPath returns the path to the MCP JSON config file.
func (c *Config) GetMCPConfigPath() string {
	configFile := c.MCP.ConfigFile
	if configFile == "" {
		configFile = GetDefaultMCPConfigPath()
	}
	return expandPath(configFile)
}
