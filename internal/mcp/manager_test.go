package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedTools registers tools directly, standing in for a connected server.
func seedTools(m *Manager, serverName string, names ...string) {
	srv := &serverInstance{name: serverName}
	for _, name := range names {
		tool := Tool{Name: name}
		srv.tools = append(srv.tools, tool)
		m.tools[name] = &toolInfo{serverName: serverName, tool: tool}
	}
	m.servers[serverName] = srv
}

func TestManagerEmpty(t *testing.T) {
	t.Parallel()
	m := NewManager()

	assert.Empty(t, m.GetAllTools())
	assert.Empty(t, m.ListServers())
	assert.False(t, m.HasReminderTools())
	assert.False(t, m.HasInfoTools())
}

func TestManagerToolRegistry(t *testing.T) {
	t.Parallel()
	m := NewManager()
	seedTools(m, "reminder", "set_reminder", "list_reminders", "delete_reminder")
	seedTools(m, "info", "get_weather", "search_web")

	assert.Len(t, m.GetAllTools(), 5)
	assert.ElementsMatch(t, []string{"reminder", "info"}, m.ListServers())
	assert.Equal(t, map[string]int{"reminder": 3, "info": 2}, m.ServerToolCount())
	assert.True(t, m.HasReminderTools())
	assert.True(t, m.HasInfoTools())
}

func TestManagerCallToolUnknown(t *testing.T) {
	t.Parallel()
	m := NewManager()

	_, err := m.CallTool(context.Background(), "set_reminder", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestManagerAddServerMissingCommand(t *testing.T) {
	t.Parallel()
	m := NewManager()

	err := m.AddServer(context.Background(), ServerConfig{
		Name:    "ghost",
		Command: "definitely-not-a-real-binary-4567",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command not found")
}
