package assistant

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-deepseek/deepseek/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkassist/internal/info"
	"talkassist/internal/reminder"
)

func newBuiltinTools(t *testing.T) *BuiltinTools {
	t.Helper()

	store, err := reminder.NewSQLiteStore(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	mgr := reminder.NewManager(store, reminder.WithClock(func() time.Time { return now }))
	require.NoError(t, mgr.Load())

	return NewBuiltinTools(mgr, info.NewClient())
}

func TestBuiltinToolNames(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	defs := bt.Tools()
	require.Len(t, defs, 10)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		require.NotNil(t, d.Function)
		assert.Equal(t, "function", d.Type)
		names = append(names, d.Function.Name)
	}
	assert.ElementsMatch(t, []string{
		"set_reminder", "list_reminders", "delete_reminder",
		"delete_reminder_by_content", "clear_reminders",
		"get_current_time", "get_date_info", "get_weather",
		"search_web", "save_note",
	}, names)
}

func TestBuiltinSetAndListReminders(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	ctx := context.Background()

	result, err := bt.Call(ctx, "set_reminder", `{"text": "remind me to call mom in 30 minutes"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "Reminder set for")
	assert.Contains(t, result, "call mom")

	listing, err := bt.Call(ctx, "list_reminders", "{}")
	require.NoError(t, err)
	assert.Contains(t, listing, `"number": 1`)
	assert.Contains(t, listing, "call mom")
}

func TestBuiltinListEmpty(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	result, err := bt.Call(context.Background(), "list_reminders", "{}")
	require.NoError(t, err)
	assert.Equal(t, "You have no pending reminders.", result)
}

func TestBuiltinDeleteReminder(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	ctx := context.Background()

	_, err := bt.Call(ctx, "set_reminder", `{"text": "remind me to call mom in 30 minutes"}`)
	require.NoError(t, err)
	_, err = bt.Call(ctx, "set_reminder", `{"text": "remind me to water the plants in 2 hours"}`)
	require.NoError(t, err)

	result, err := bt.Call(ctx, "delete_reminder", `{"number": 1}`)
	require.NoError(t, err)
	assert.Equal(t, "Reminder 1 deleted: call mom", result)

	// The survivor renumbers to 1.
	listing, err := bt.Call(ctx, "list_reminders", "{}")
	require.NoError(t, err)
	assert.Contains(t, listing, `"number": 1`)
	assert.Contains(t, listing, "water the plants")
	assert.NotContains(t, listing, "call mom")
}

func TestBuiltinDeleteReminderByContent(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	ctx := context.Background()

	_, err := bt.Call(ctx, "set_reminder", `{"text": "remind me to call mom in 30 minutes"}`)
	require.NoError(t, err)

	result, err := bt.Call(ctx, "delete_reminder_by_content", `{"query": "call mom"}`)
	require.NoError(t, err)
	assert.Equal(t, "Deleted reminder: call mom", result)
}

func TestBuiltinClearReminders(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	ctx := context.Background()

	_, err := bt.Call(ctx, "set_reminder", `{"text": "remind me to call mom in 30 minutes"}`)
	require.NoError(t, err)
	_, err = bt.Call(ctx, "set_reminder", `{"text": "remind me to stretch in 1 hour"}`)
	require.NoError(t, err)

	result, err := bt.Call(ctx, "clear_reminders", "{}")
	require.NoError(t, err)
	assert.Equal(t, "Cleared 2 reminders.", result)

	listing, err := bt.Call(ctx, "list_reminders", "{}")
	require.NoError(t, err)
	assert.Equal(t, "You have no pending reminders.", listing)
}

func TestBuiltinMissingArguments(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	ctx := context.Background()

	cases := []struct {
		tool    string
		args    string
		wantErr string
	}{
		{"set_reminder", "{}", "text is required"},
		{"delete_reminder", "{}", "number is required"},
		{"delete_reminder_by_content", "{}", "query is required"},
		{"get_weather", "{}", "location is required"},
		{"search_web", "{}", "query is required"},
	}
	for _, tc := range cases {
		_, err := bt.Call(ctx, tc.tool, tc.args)
		require.Error(t, err, tc.tool)
		assert.Contains(t, err.Error(), tc.wantErr)
	}
}

func TestBuiltinBadArguments(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	_, err := bt.Call(context.Background(), "set_reminder", `{not json`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse tool arguments")
}

func TestBuiltinUnknownTool(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	_, err := bt.Call(context.Background(), "frobnicate", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool: frobnicate")
}

func TestBuiltinSaveNote(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	path := filepath.Join(t.TempDir(), "notes.txt")

	result, err := bt.Call(context.Background(), "save_note",
		`{"filename": "`+path+`", "data": "buy milk"}`)
	require.NoError(t, err)
	assert.Equal(t, "Data saved to "+path, result)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "buy milk\n", string(content))
}

func TestBuiltinCurrentTimeLocal(t *testing.T) {
	t.Parallel()

	bt := newBuiltinTools(t)
	result, err := bt.Call(context.Background(), "get_current_time", "{}")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result, "The current local time is"), result)
}

func namedTools(result string, names ...string) *fakeTools {
	f := &fakeTools{result: result}
	for _, name := range names {
		f.defs = append(f.defs, request.Tool{
			Type:     "function",
			Function: &request.ToolFunction{Name: name},
		})
	}
	return f
}

func TestCombinedToolsDedupe(t *testing.T) {
	t.Parallel()

	first := namedTools("from first", "set_reminder", "get_weather")
	second := namedTools("from second", "get_weather", "search_web")
	combined := CombineTools(first, second)

	defs := combined.Tools()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Function.Name)
	}
	assert.Equal(t, []string{"set_reminder", "get_weather", "search_web"}, names)
}

func TestCombinedToolsDispatch(t *testing.T) {
	t.Parallel()

	first := namedTools("from first", "set_reminder", "get_weather")
	second := namedTools("from second", "get_weather", "search_web")
	combined := CombineTools(first, second)
	ctx := context.Background()

	result, err := combined.Call(ctx, "search_web", "{}")
	require.NoError(t, err)
	assert.Equal(t, "from second", result)

	// Collisions go to the source listed first.
	result, err = combined.Call(ctx, "get_weather", "{}")
	require.NoError(t, err)
	assert.Equal(t, "from first", result)
	assert.Equal(t, []string{"get_weather"}, first.calls)
	assert.Empty(t, second.calls)

	_, err = combined.Call(ctx, "frobnicate", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}
