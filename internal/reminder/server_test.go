package reminder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	manager := NewManager(store, WithClock(func() time.Time { return testClock }))
	return NewServer(manager)
}

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func callTool(t *testing.T, handler toolHandler, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestServerSetAndListReminders(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	res := callTool(t, s.handleSetReminder, map[string]any{
		"text": "remind me to call mom in 30 minutes",
	})
	assert.False(t, res.IsError)
	confirmation := resultText(t, res)
	assert.Contains(t, confirmation, "10:30")
	assert.Contains(t, confirmation, "call mom")

	res = callTool(t, s.handleListReminders, nil)
	assert.False(t, res.IsError)
	listing := resultText(t, res)
	assert.Contains(t, listing, `"number": 1`)
	assert.Contains(t, listing, "call mom")
}

func TestServerListEmpty(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	res := callTool(t, s.handleListReminders, nil)
	assert.False(t, res.IsError)
	assert.Equal(t, "You have no pending reminders.", resultText(t, res))
}

func TestServerSetReminderErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "missing text",
			args: map[string]any{},
			want: "text is required",
		},
		{
			name: "no time expression",
			args: map[string]any{"text": "remind me to buy milk"},
			want: "could not understand the time",
		},
		{
			name: "time in the past",
			args: map[string]any{"text": "remind me at 3pm yesterday to call mom"},
			want: "in the past",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s.handleSetReminder, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestServerDeleteReminder(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	callTool(t, s.handleSetReminder, map[string]any{"text": "call mom in 30 minutes"})
	callTool(t, s.handleSetReminder, map[string]any{"text": "water the plants in 2 hours"})

	res := callTool(t, s.handleDeleteReminder, map[string]any{"number": float64(1)})
	assert.False(t, res.IsError)
	assert.Equal(t, "Reminder 1 deleted: call mom", resultText(t, res))

	// The survivor takes over number 1.
	listing := resultText(t, callTool(t, s.handleListReminders, nil))
	assert.Contains(t, listing, `"number": 1`)
	assert.Contains(t, listing, "water the plants")
	assert.NotContains(t, listing, "call mom")
}

func TestServerDeleteReminderInvalidNumber(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	callTool(t, s.handleSetReminder, map[string]any{"text": "call mom in 30 minutes"})
	callTool(t, s.handleSetReminder, map[string]any{"text": "water the plants in 2 hours"})

	res := callTool(t, s.handleDeleteReminder, map[string]any{"number": float64(5)})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "you have 2 pending")

	res = callTool(t, s.handleDeleteReminder, nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "number is required")
}

func TestServerDeleteByContent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	callTool(t, s.handleSetReminder, map[string]any{"text": "call mom in 30 minutes"})
	callTool(t, s.handleSetReminder, map[string]any{"text": "call the dentist in 2 hours"})
	callTool(t, s.handleSetReminder, map[string]any{"text": "water the plants tomorrow at 9am"})

	t.Run("single match deletes", func(t *testing.T) {
		res := callTool(t, s.handleDeleteByContent, map[string]any{"query": "plants"})
		assert.False(t, res.IsError)
		assert.Equal(t, "Deleted reminder: water the plants", resultText(t, res))
	})

	t.Run("ambiguous match deletes nothing", func(t *testing.T) {
		res := callTool(t, s.handleDeleteByContent, map[string]any{"query": "call"})
		assert.False(t, res.IsError)
		text := resultText(t, res)
		assert.Contains(t, text, `Found 2 reminders matching "call"`)
		assert.Contains(t, text, "1. call mom")
		assert.Contains(t, text, "2. call the dentist")
		assert.Len(t, s.manager.List(), 2)
	})

	t.Run("no match", func(t *testing.T) {
		res := callTool(t, s.handleDeleteByContent, map[string]any{"query": "dragons"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "dragons")
	})
}

func TestServerClearReminders(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	callTool(t, s.handleSetReminder, map[string]any{"text": "call mom in 30 minutes"})
	callTool(t, s.handleSetReminder, map[string]any{"text": "water the plants in 2 hours"})

	res := callTool(t, s.handleClearReminders, nil)
	assert.False(t, res.IsError)
	assert.Equal(t, "Cleared 2 reminders.", resultText(t, res))
	assert.Empty(t, s.manager.List())
}

func TestServerRegistersTools(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	require.NotNil(t, s.MCPServer())
}
