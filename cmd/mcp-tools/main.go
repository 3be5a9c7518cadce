// Command mcp-tools lists the tools exposed by MCP servers.
//
// With a server command it connects to that one server. With no arguments
// it reads the assistant's MCP configuration and lists the tools of every
// configured server.
//
// Usage:
//
//	./mcp-tools <server-command> [args...]
//	./mcp-tools [-config path]
//
// Example:
//
//	./mcp-tools ./mcp-reminder
//	GITHUB_TOKEN=ghp_xxx ./mcp-tools npx -y @modelcontextprotocol/server-github
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"talkassist/internal/config"
	"talkassist/internal/mcp"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	flag.Usage = printUsage
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if flag.NArg() > 0 {
		listServer(ctx, flag.Arg(0), flag.Args()[1:])
		return
	}

	listConfigured(ctx, *configPath)
}

// listServer connects to a single MCP server command and lists its tools.
func listServer(ctx context.Context, command string, args []string) {
	fmt.Printf("Connecting to MCP server: %s %v\n", command, args)
	fmt.Println()

	client, err := mcp.NewClient(command, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating MCP client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to MCP server: %v\n", err)
		os.Exit(1)
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing tools: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d tool(s):\n", len(tools))
	fmt.Println(strings.Repeat("=", 50))
	printTools(tools)
}

// listConfigured lists the tools of every server in the MCP config file.
func listConfigured(ctx context.Context, configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if len(cfg.MCP.Servers) == 0 {
		fmt.Printf("No MCP servers configured (looked in %s).\n", cfg.GetMCPConfigPath())
		fmt.Println("Pass a server command instead: mcp-tools <server-command> [args...]")
		return
	}

	for i, srv := range cfg.MCP.Servers {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("Server %q: %s %v\n", srv.Name, srv.Command, srv.Args)
		fmt.Println(strings.Repeat("=", 50))

		client, err := mcp.NewClient(srv.Command, srv.Args...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  Error creating client: %v\n", err)
			continue
		}

		if err := client.Connect(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "  Error connecting: %v\n", err)
			client.Close()
			continue
		}

		tools, err := client.ListTools(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  Error listing tools: %v\n", err)
			client.Close()
			continue
		}

		fmt.Printf("Found %d tool(s):\n", len(tools))
		printTools(tools)
		client.Close()
	}
}

func printTools(tools []mcp.Tool) {
	for i, tool := range tools {
		fmt.Printf("\n%d. %s\n", i+1, tool.Name)
		if tool.Description != "" {
			fmt.Printf("   Description: %s\n", tool.Description)
		}
		if len(tool.InputSchema.Properties) > 0 {
			fmt.Printf("   Parameters: %d\n", len(tool.InputSchema.Properties))
			for name := range tool.InputSchema.Properties {
				fmt.Printf("     - %s\n", name)
			}
		}
	}
}

func printUsage() {
	fmt.Println("MCP Tools Lister")
	fmt.Println("================")
	fmt.Println()
	fmt.Println("Lists all tools available from MCP servers.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println()
	fmt.Println("  mcp-tools <server-command> [args...]   Inspect one server")
	fmt.Println("  mcp-tools [-config path]               Inspect every configured server")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println()
	fmt.Println("  # The assistant's own servers")
	fmt.Println("  ./mcp-tools ./mcp-reminder")
	fmt.Println("  ./mcp-tools ./mcp-info")
	fmt.Println()
	fmt.Println("  # Filesystem MCP Server")
	fmt.Println("  ./mcp-tools npx -y @modelcontextprotocol/server-filesystem /tmp")
	fmt.Println()
	fmt.Println("  # Everything in ~/.talkassist/mcp.json")
	fmt.Println("  ./mcp-tools")
}
