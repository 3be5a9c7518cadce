package info

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func serverResultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestServerGetCurrentTimeLocal(t *testing.T) {
	t.Parallel()
	s := NewServer(newTestClient(t, http.NotFoundHandler()))

	res := callTool(t, s.handleGetCurrentTime, nil)
	assert.False(t, res.IsError)
	assert.Equal(t, "The current local time is 2024-01-01 10:00:00 (UTC)", serverResultText(t, res))
}

func TestServerGetWeather(t *testing.T) {
	t.Parallel()

	mux := parisMux(t)
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":18,"windspeed":5,"weathercode":0}}`))
	})
	s := NewServer(newTestClient(t, mux))

	res := callTool(t, s.handleGetWeather, map[string]any{"location": "paris"})
	assert.False(t, res.IsError)
	assert.Equal(t, "The current weather in paris is clear sky with a temperature of 18°C and windspeed of 5 km/h.", serverResultText(t, res))
}

func TestServerGetWeatherMissingLocation(t *testing.T) {
	t.Parallel()
	s := NewServer(newTestClient(t, http.NotFoundHandler()))

	res := callTool(t, s.handleGetWeather, nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Please provide a location.", serverResultText(t, res))
}

func TestServerSearchWebMissingQuery(t *testing.T) {
	t.Parallel()
	s := NewServer(newTestClient(t, http.NotFoundHandler()))

	res := callTool(t, s.handleSearchWeb, nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "No query provided.", serverResultText(t, res))
}

func TestServerSaveNote(t *testing.T) {
	t.Parallel()
	s := NewServer(NewClient())

	path := filepath.Join(t.TempDir(), "notes.txt")
	res := callTool(t, s.handleSaveNote, map[string]any{
		"filename": path,
		"data":     "buy milk",
	})
	assert.False(t, res.IsError)
	assert.Equal(t, "Data saved to "+path, serverResultText(t, res))

	res = callTool(t, s.handleSaveNote, map[string]any{"filename": path})
	assert.True(t, res.IsError)
}

func TestServerRegistersTools(t *testing.T) {
	t.Parallel()
	s := NewServer(newTestClient(t, http.NotFoundHandler()))

	require.NotNil(t, s.MCPServer())
}
