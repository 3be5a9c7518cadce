package assistant

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"talkassist/internal/api"
	"talkassist/internal/config"
)

// Session holds one conversation with the model: a bounded message
// history plus the prompts that frame it.
type Session struct {
	history      *History
	systemPrompt string
	toolsPrompt  string // additional guidance for available tools
	config       *config.ModelConfig
}

type SessionData struct {
	Messages     []api.Message `json:"messages"`
	SystemPrompt string        `json:"system_prompt"`
	Timestamp    time.Time     `json:"timestamp"`
}

func NewSession(cfg *config.ModelConfig, maxHistory int) *Session {
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	return &Session{
		history:      NewHistory(maxHistory),
		systemPrompt: systemPrompt,
		config:       cfg,
	}
}

func (s *Session) AddUserMessage(content string) {
	s.history.Add(api.Message{
		Role:    "user",
		Content: content,
	})
}

func (s *Session) AddAssistantMessage(content string) {
	s.history.Add(api.Message{
		Role:    "assistant",
		Content: content,
	})
}

// AddAssistantMessageWithToolCalls adds an assistant message that contains tool call requests.
// This must be called before AddToolResult to maintain proper message ordering.
func (s *Session) AddAssistantMessageWithToolCalls(content string, toolCalls []api.ToolCall) {
	s.history.Add(api.Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResult adds a tool execution result to the conversation history.
func (s *Session) AddToolResult(toolCallID, result string) {
	s.history.Add(api.Message{
		Role:       "tool",
		Content:    result,
		ToolCallID: toolCallID,
	})
}

func (s *Session) GetMessages() []api.Message {
	return s.history.GetAll()
}

func (s *Session) SetSystemPrompt(prompt string) error {
	if err := ValidateSystemPrompt(prompt); err != nil {
		return err
	}
	s.systemPrompt = prompt
	return nil
}

func (s *Session) GetSystemPrompt() string {
	return s.systemPrompt
}

// SetToolsPrompt sets additional guidance for available tools.
func (s *Session) SetToolsPrompt(prompt string) {
	s.toolsPrompt = prompt
}

func (s *Session) SetTemperature(temp float64) error {
	if temp < 0 || temp > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	s.config.Temperature = temp
	return nil
}

func (s *Session) GetTemperature() float64 {
	return s.config.Temperature
}

func (s *Session) Clear() {
	s.history.Clear()
}

func (s *Session) IsEmpty() bool {
	return s.history.IsEmpty()
}

func (s *Session) MessageCount() int {
	return s.history.Size()
}

func (s *Session) BuildAPIRequest() api.MessageRequest {
	return api.MessageRequest{
		Messages:    s.history.GetAll(),
		System:      BuildSystemPrompt(s.systemPrompt, s.toolsPrompt),
		Model:       s.config.Name,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}
}

func (s *Session) Save(filepath string) error {
	data := SessionData{
		Messages:     s.history.GetAll(),
		SystemPrompt: s.systemPrompt,
		Timestamp:    time.Now(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

func (s *Session) Load(filepath string) error {
	jsonData, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.history.Clear()
	for _, msg := range data.Messages {
		s.history.Add(msg)
	}
	if data.SystemPrompt != "" {
		s.systemPrompt = data.SystemPrompt
	}

	return nil
}
