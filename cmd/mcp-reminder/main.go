// Command mcp-reminder provides an MCP server for reminder management.
//
// This server exposes the assistant's reminder tools over stdio: setting
// reminders from natural language, listing them, and deleting them by
// number or by content. Due reminders are announced on stderr while the
// server runs.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	TALKASSIST_STORAGE_PATH     Path to the reminder store (default: ~/.talkassist/reminders.db)
//	TALKASSIST_STORAGE_BACKEND  Store backend, "sqlite" or "json" (default: sqlite)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"talkassist/internal/notify"
	"talkassist/internal/reminder"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	storePath := os.Getenv("TALKASSIST_STORAGE_PATH")
	if storePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".talkassist")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create config directory: %v\n", err)
			os.Exit(1)
		}
		storePath = filepath.Join(dir, "reminders.db")
	}

	store, err := openStore(os.Getenv("TALKASSIST_STORAGE_BACKEND"), storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open reminder store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	manager := reminder.NewManager(store)
	if err := manager.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load reminders: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so due reminders go to stderr.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler := reminder.NewScheduler(manager, notify.NewConsole(os.Stderr, false))
	go scheduler.Run(ctx)

	s := reminder.NewServer(manager)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func openStore(backend, path string) (reminder.Store, error) {
	switch backend {
	case "json":
		return reminder.NewFileStore(path)
	case "", "sqlite":
		return reminder.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: sqlite, json)", backend)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - Reminder management via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    TALKASSIST_STORAGE_PATH     Path to the reminder store file
                                Default: ~/.talkassist/reminders.db
    TALKASSIST_STORAGE_BACKEND  Store backend, "sqlite" or "json"
                                Default: sqlite

TOOLS:
    set_reminder               Set a reminder from natural language
                               ("remind me to call mom in 30 minutes")
    list_reminders             List pending reminders with their numbers
    delete_reminder            Delete a reminder by its current number
    delete_reminder_by_content Delete a reminder by words from its text
    clear_reminders            Delete every pending reminder

CONFIGURATION:
    Add to ~/.talkassist/mcp.json:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
