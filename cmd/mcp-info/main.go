// Command mcp-info provides an MCP server for everyday information tools.
//
// This server exposes time, date, weather and web search tools over stdio,
// plus a small note-saving tool. Weather comes from Open-Meteo and search
// from the DuckDuckGo instant answer API; neither needs an API key.
//
// Usage:
//
//	./mcp-info          # Start MCP server (stdio)
//	./mcp-info --help   # Show help
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"talkassist/internal/info"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	s := info.NewServer(info.NewClient())

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Info Server - Time, date, weather and search via MCP protocol

USAGE:
    mcp-info          Start MCP server (communicates via stdio)
    mcp-info --help   Show this help

TOOLS:
    get_current_time  Current time, locally or for a city
    get_date_info     Today's date, locally or for a city
    get_weather       Current weather conditions for a city
    search_web        Short factual answers from the web
    save_note         Append a line of text to a file

CONFIGURATION:
    Add to ~/.talkassist/mcp.json:
    {
      "mcpServers": {
        "info": {
          "command": "/path/to/mcp-info",
          "args": []
        }
      }
    }`)
}
