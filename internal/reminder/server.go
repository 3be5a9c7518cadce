package reminder

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"talkassist/internal/timeparse"
)

const (
	serverName    = "reminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management. Tools take natural
// language and list numbers; reminder ids never leave the process.
type Server struct {
	mcpServer *server.MCPServer
	manager   *Manager
}

// NewServer creates a new reminder MCP server backed by the given manager.
func NewServer(manager *Manager) *Server {
	s := &Server{
		manager: manager,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// set_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("set_reminder",
			mcp.WithDescription("Set a reminder from natural language, e.g. 'remind me to call mom in 30 minutes'"),
			mcp.WithString("text", mcp.Required(), mcp.Description("The reminder request, including the task and when it should fire")),
		),
		s.handleSetReminder,
	)

	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List pending reminders as numbered entries, earliest due first"),
		),
		s.handleListReminders,
	)

	// delete_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder by its number from list_reminders"),
			mcp.WithNumber("number", mcp.Required(), mcp.Description("The 1-based reminder number")),
		),
		s.handleDeleteReminder,
	)

	// delete_reminder_by_content
	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder_by_content",
			mcp.WithDescription("Delete the pending reminder whose text matches the given words"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Words from the reminder text, e.g. 'calling mom'")),
		),
		s.handleDeleteByContent,
	)

	// clear_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("clear_reminders",
			mcp.WithDescription("Delete every pending reminder"),
		),
		s.handleClearReminders,
	)
}

func (s *Server) handleSetReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	confirmation, err := s.manager.Set(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(confirmation), nil
}

func (s *Server) handleListReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := s.manager.List()
	if len(entries) == 0 {
		return mcp.NewToolResultText("You have no pending reminders."), nil
	}

	output, _ := json.MarshalIndent(struct {
		Reminders []Entry `json:"reminders"`
	}{entries}, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleDeleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	numberFloat := req.GetFloat("number", -1)
	if numberFloat < 0 {
		return mcp.NewToolResultError("number is required and must be a positive number"), nil
	}
	number := int(numberFloat)

	deleted, err := s.manager.Delete(number)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted: %s", number, deleted.Text)), nil
}

func (s *Server) handleDeleteByContent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	deleted, matches, err := s.manager.DeleteByContent(query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if deleted != nil {
		return mcp.NewToolResultText("Deleted reminder: " + deleted.Text), nil
	}

	now := s.manager.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d reminders matching %q; delete one by number instead:\n", len(matches), query)
	for _, e := range matches {
		fmt.Fprintf(&b, "%d. %s (due %s)\n", e.Number, e.Text, timeparse.FormatHuman(e.DueAt.In(now.Location()), now))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleClearReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	removed, err := s.manager.ClearAll()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Cleared %d reminders.", removed)), nil
}
