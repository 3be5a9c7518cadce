package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-deepseek/deepseek/request"

	"talkassist/internal/info"
	"talkassist/internal/mcp"
	"talkassist/internal/reminder"
	"talkassist/internal/timeparse"
)

// BuiltinTools exposes the reminder manager and info client to the
// model directly, without going through MCP servers. Both dependencies
// are required.
type BuiltinTools struct {
	manager *reminder.Manager
	info    *info.Client
}

func NewBuiltinTools(manager *reminder.Manager, infoClient *info.Client) *BuiltinTools {
	return &BuiltinTools{
		manager: manager,
		info:    infoClient,
	}
}

func stringParam(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func numberParam(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func toolDef(name, desc string, props map[string]any, required ...string) request.Tool {
	params := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		params["required"] = required
	}

	return request.Tool{
		Type: "function",
		Function: &request.ToolFunction{
			Name:        name,
			Description: desc,
			Parameters:  params,
		},
	}
}

func (b *BuiltinTools) Tools() []request.Tool {
	return []request.Tool{
		toolDef("set_reminder",
			"Set a reminder from natural language, e.g. 'remind me to call mom in 30 minutes'",
			map[string]any{"text": stringParam("The reminder request, including the task and when it should fire")},
			"text"),
		toolDef("list_reminders",
			"List pending reminders as numbered entries, earliest due first",
			map[string]any{}),
		toolDef("delete_reminder",
			"Delete a reminder by its number from list_reminders",
			map[string]any{"number": numberParam("The 1-based reminder number")},
			"number"),
		toolDef("delete_reminder_by_content",
			"Delete the pending reminder whose text matches the given words",
			map[string]any{"query": stringParam("Words from the reminder text, e.g. 'calling mom'")},
			"query"),
		toolDef("clear_reminders",
			"Delete every pending reminder",
			map[string]any{}),
		toolDef("get_current_time",
			"Get the current time, either locally or in a given city",
			map[string]any{"location": stringParam("City or place name; omit for the local time")}),
		toolDef("get_date_info",
			"Get today's date, either locally or in a given city",
			map[string]any{"location": stringParam("City or place name; omit for the local date")}),
		toolDef("get_weather",
			"Get the current weather conditions for a location",
			map[string]any{"location": stringParam("City or place name")},
			"location"),
		toolDef("search_web",
			"Search the web and return a short answer",
			map[string]any{"query": stringParam("The search query")},
			"query"),
		toolDef("save_note",
			"Append a line of text to a file on disk",
			map[string]any{
				"filename": stringParam("Path of the file to append to"),
				"data":     stringParam("The text to save"),
			},
			"filename", "data"),
	}
}

type toolArgs map[string]any

func (a toolArgs) str(key string) string {
	v, _ := a[key].(string)
	return v
}

func (a toolArgs) num(key string) (float64, bool) {
	v, ok := a[key].(float64)
	return v, ok
}

func (b *BuiltinTools) Call(ctx context.Context, name, argsJSON string) (string, error) {
	args := toolArgs{}
	if argsJSON != "" && argsJSON != "{}" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("failed to parse tool arguments: %w", err)
		}
	}

	switch name {
	case "set_reminder":
		text := args.str("text")
		if text == "" {
			return "", fmt.Errorf("text is required")
		}
		return b.manager.Set(text)

	case "list_reminders":
		return b.listReminders(), nil

	case "delete_reminder":
		number, ok := args.num("number")
		if !ok {
			return "", fmt.Errorf("number is required")
		}
		deleted, err := b.manager.Delete(int(number))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Reminder %d deleted: %s", int(number), deleted.Text), nil

	case "delete_reminder_by_content":
		return b.deleteByContent(args.str("query"))

	case "clear_reminders":
		removed, err := b.manager.ClearAll()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Cleared %d reminders.", removed), nil

	case "get_current_time":
		return b.info.CurrentTime(ctx, args.str("location"))

	case "get_date_info":
		return b.info.DateInfo(ctx, args.str("location"))

	case "get_weather":
		location := args.str("location")
		if location == "" {
			return "", fmt.Errorf("location is required")
		}
		return b.info.Weather(ctx, location)

	case "search_web":
		query := args.str("query")
		if query == "" {
			return "", fmt.Errorf("query is required")
		}
		return b.info.SearchWeb(ctx, query)

	case "save_note":
		return b.info.SaveNote(args.str("filename"), args.str("data"))

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (b *BuiltinTools) listReminders() string {
	entries := b.manager.List()
	if len(entries) == 0 {
		return "You have no pending reminders."
	}

	output, _ := json.MarshalIndent(struct {
		Reminders []reminder.Entry `json:"reminders"`
	}{entries}, "", "  ")
	return string(output)
}

func (b *BuiltinTools) deleteByContent(query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	deleted, matches, err := b.manager.DeleteByContent(query)
	if err != nil {
		return "", err
	}
	if deleted != nil {
		return "Deleted reminder: " + deleted.Text, nil
	}

	now := b.manager.Now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d reminders matching %q; delete one by number instead:\n", len(matches), query)
	for _, e := range matches {
		fmt.Fprintf(&sb, "%d. %s (due %s)\n", e.Number, e.Text, timeparse.FormatHuman(e.DueAt.In(now.Location()), now))
	}
	return sb.String(), nil
}

// MCPToolSource adapts the MCP manager to the ToolSource interface.
type MCPToolSource struct {
	manager *mcp.Manager
}

func NewMCPToolSource(m *mcp.Manager) *MCPToolSource {
	return &MCPToolSource{manager: m}
}

func (s *MCPToolSource) Tools() []request.Tool {
	return s.manager.GetDeepSeekTools()
}

func (s *MCPToolSource) Call(ctx context.Context, name, argsJSON string) (string, error) {
	return s.manager.CallTool(ctx, name, argsJSON)
}

// CombinedTools merges several sources. On a name collision the first
// source that advertises the tool wins.
type CombinedTools struct {
	sources []ToolSource
}

func CombineTools(sources ...ToolSource) *CombinedTools {
	return &CombinedTools{sources: sources}
}

func (c *CombinedTools) Tools() []request.Tool {
	seen := make(map[string]bool)
	var all []request.Tool
	for _, src := range c.sources {
		for _, tool := range src.Tools() {
			if tool.Function == nil || seen[tool.Function.Name] {
				continue
			}
			seen[tool.Function.Name] = true
			all = append(all, tool)
		}
	}
	return all
}

func (c *CombinedTools) Call(ctx context.Context, name, argsJSON string) (string, error) {
	for _, src := range c.sources {
		for _, tool := range src.Tools() {
			if tool.Function != nil && tool.Function.Name == name {
				return src.Call(ctx, name, argsJSON)
			}
		}
	}
	return "", fmt.Errorf("unknown tool: %s", name)
}
