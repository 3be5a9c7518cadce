package assistant

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkassist/internal/config"
)

func newTestSession() *Session {
	return NewSession(&config.ModelConfig{
		Name:        "deepseek-chat",
		MaxTokens:   2048,
		Temperature: 1.0,
	}, 50)
}

func TestSessionDefaultSystemPrompt(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	assert.Equal(t, DefaultSystemPrompt, s.GetSystemPrompt())

	custom := NewSession(&config.ModelConfig{
		Name:         "deepseek-chat",
		SystemPrompt: "You are a test harness.",
	}, 50)
	assert.Equal(t, "You are a test harness.", custom.GetSystemPrompt())
}

func TestSessionBuildAPIRequest(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	s.SetToolsPrompt(ReminderToolsPrompt)
	s.AddUserMessage("remind me to call mom in 30 minutes")

	req := s.BuildAPIRequest()
	assert.Equal(t, "deepseek-chat", req.Model)
	assert.Equal(t, 2048, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)

	// System prompt carries both the persona and the tool guidance.
	assert.True(t, strings.HasPrefix(req.System, DefaultSystemPrompt))
	assert.Contains(t, req.System, "set_reminder")
}

func TestSessionSaveLoad(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	s.AddUserMessage("what's the weather in paris")
	s.AddAssistantMessage("It is 21°C and partly cloudy.")
	require.NoError(t, s.SetSystemPrompt("You are a weather bot."))

	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, s.Save(path))

	loaded := newTestSession()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, 2, loaded.MessageCount())
	assert.Equal(t, "what's the weather in paris", loaded.GetMessages()[0].Content)
	assert.Equal(t, "You are a weather bot.", loaded.GetSystemPrompt())
}

func TestSessionLoadMissingFile(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	err := s.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestSessionSetTemperature(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	require.NoError(t, s.SetTemperature(0.5))
	assert.Equal(t, 0.5, s.GetTemperature())

	assert.Error(t, s.SetTemperature(-1))
	assert.Error(t, s.SetTemperature(2.5))
}

func TestSessionClear(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	s.AddUserMessage("hello")
	assert.False(t, s.IsEmpty())

	s.Clear()
	assert.True(t, s.IsEmpty())
}

func TestValidateSystemPrompt(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateSystemPrompt(""))
	assert.NoError(t, ValidateSystemPrompt("short"))
	assert.Error(t, ValidateSystemPrompt(strings.Repeat("x", 10001)))
}

func TestBuildSystemPrompt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", BuildSystemPrompt(""))
	assert.Equal(t, "base", BuildSystemPrompt("base", "", ""))
	assert.Equal(t, "base\n\nextra", BuildSystemPrompt("base", "", "extra"))
}
