package info

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "info"
	serverVersion = "1.0.0"
)

// Server is the MCP server exposing the info tools: time, date,
// weather, web search and note taking.
type Server struct {
	mcpServer *server.MCPServer
	client    *Client
}

// NewServer creates a new info MCP server backed by the given client.
func NewServer(client *Client) *Server {
	s := &Server{
		client: client,
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
	// get_current_time
	s.mcpServer.AddTool(
		mcp.NewTool("get_current_time",
			mcp.WithDescription("Get the current time, either locally or in a given city"),
			mcp.WithString("location", mcp.Description("City or place name; omit for the local time")),
		),
		s.handleGetCurrentTime,
	)

	// get_date_info
	s.mcpServer.AddTool(
		mcp.NewTool("get_date_info",
			mcp.WithDescription("Get today's date, either locally or in a given city"),
			mcp.WithString("location", mcp.Description("City or place name; omit for the local date")),
		),
		s.handleGetDateInfo,
	)

	// get_weather
	s.mcpServer.AddTool(
		mcp.NewTool("get_weather",
			mcp.WithDescription("Get the current weather conditions for a location"),
			mcp.WithString("location", mcp.Required(), mcp.Description("City or place name")),
		),
		s.handleGetWeather,
	)

	// search_web
	s.mcpServer.AddTool(
		mcp.NewTool("search_web",
			mcp.WithDescription("Search the web and return a short answer"),
			mcp.WithString("query", mcp.Required(), mcp.Description("The search query")),
		),
		s.handleSearchWeb,
	)

	// save_note
	s.mcpServer.AddTool(
		mcp.NewTool("save_note",
			mcp.WithDescription("Append a line of text to a file on disk"),
			mcp.WithString("filename", mcp.Required(), mcp.Description("Path of the file to append to")),
			mcp.WithString("data", mcp.Required(), mcp.Description("The text to save")),
		),
		s.handleSaveNote,
	)
}

func (s *Server) handleGetCurrentTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location := req.GetString("location", "")

	result, err := s.client.CurrentTime(ctx, location)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleGetDateInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location := req.GetString("location", "")

	result, err := s.client.DateInfo(ctx, location)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleGetWeather(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location := req.GetString("location", "")
	if location == "" {
		return mcp.NewToolResultError("Please provide a location."), nil
	}

	result, err := s.client.Weather(ctx, location)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleSearchWeb(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("No query provided."), nil
	}

	result, err := s.client.SearchWeb(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleSaveNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename := req.GetString("filename", "")
	data := req.GetString("data", "")
	if filename == "" || data == "" {
		return mcp.NewToolResultError("filename and data are required"), nil
	}

	result, err := s.client.SaveNote(filename, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}
