package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"talkassist/internal/api"
	"talkassist/internal/assistant"
	"talkassist/internal/config"
	"talkassist/internal/connectivity"
	"talkassist/internal/httpapi"
	"talkassist/internal/info"
	"talkassist/internal/intent"
	"talkassist/internal/mcp"
	"talkassist/internal/notify"
	"talkassist/internal/reminder"
	"talkassist/internal/repl"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	provider := flag.String("provider", "", "Provider to use (deepseek, ollama)")
	modelName := flag.String("model", "", "Model name (overrides config)")
	systemPrompt := flag.String("system-prompt", "", "System prompt (overrides config)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	offline := flag.Bool("offline", false, "Start in offline mode (no AI provider)")
	serveHTTP := flag.Bool("http", false, "Serve the HTTP API (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI flag overrides
	if *provider != "" {
		cfg.Provider = *provider
	}
	if *modelName != "" {
		cfg.Model.Name = *modelName
	}
	if *systemPrompt != "" {
		cfg.Model.SystemPrompt = *systemPrompt
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}
	if *serveHTTP {
		cfg.HTTP.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	store, err := openStore(&cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening reminder store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	manager := reminder.NewManager(store)
	if err := manager.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reminders: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := reminder.NewScheduler(manager, buildAnnouncer(cfg))
	go scheduler.Run(ctx)

	router := intent.NewRouter(manager)
	checker := connectivity.NewChecker()

	offlineMode := *offline
	if !offlineMode && cfg.Provider == config.ProviderDeepSeek && cfg.DeepSeek.APIKey == "" {
		fmt.Fprintln(os.Stderr, "No DeepSeek API key configured; starting in offline mode.")
		fmt.Fprintln(os.Stderr, "Tip: Set DEEPSEEK_API_KEY environment variable or add it to config file")
		offlineMode = true
	}

	var (
		agent      *assistant.Agent
		toolSource assistant.ToolSource
	)
	if !offlineMode {
		providerInstance, err := api.NewProvider(cfg.GetProviderConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating provider: %v\n", err)
			os.Exit(1)
		}
		defer providerInstance.Close()

		toolSource = assistant.NewBuiltinTools(manager, info.NewClient())
		if cfg.MCP.Enabled && len(cfg.MCP.Servers) > 0 {
			mcpManager := connectMCPServers(ctx, cfg.MCP.Servers)
			defer mcpManager.Close()
			toolSource = assistant.CombineTools(toolSource, assistant.NewMCPToolSource(mcpManager))
		}

		session := assistant.NewSession(&cfg.Model, cfg.Session.MaxHistory)
		session.SetToolsPrompt(assistant.ReminderToolsPrompt + "\n\n" + assistant.InfoToolsPrompt)

		// Load history from file if enabled
		if cfg.Session.SaveHistory {
			if err := session.Load(cfg.Session.HistoryFile); err != nil {
				// Not an error if file doesn't exist yet
				if !errors.Is(err, os.ErrNotExist) {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load history: %v\n", err)
				}
			} else {
				fmt.Printf("Loaded %d messages from history\n", session.MessageCount())
			}
		}

		agent = assistant.NewAgent(providerInstance, toolSource, session)
	}

	var httpServer *http.Server
	if cfg.HTTP.Enabled {
		httpServer = &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: httpapi.NewServer(manager, router, checker),
		}
		go func() {
			log.Info().Str("addr", cfg.HTTP.Addr).Msg("http api listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http api stopped")
			}
		}()
	}

	replInstance, err := repl.NewREPL(repl.Options{
		Config:  cfg,
		Manager: manager,
		Router:  router,
		Agent:   agent,
		Tools:   toolSource,
		Checker: checker,
		Offline: offlineMode,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating REPL: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Saving session...")
		cancel()

		if err := replInstance.SaveHistory(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to save history: %v\n", err)
		}

		shutdownHTTP(httpServer)
		os.Exit(0)
	}()

	if err := replInstance.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := replInstance.SaveHistory(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to save history: %v\n", err)
	}

	cancel()
	shutdownHTTP(httpServer)
}

// setupLogging routes zerolog through a console writer on stderr so log
// lines never interleave with REPL output on stdout.
func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func openStore(cfg *config.StorageConfig) (reminder.Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	switch cfg.Backend {
	case config.StorageJSON:
		return reminder.NewFileStore(cfg.Path)
	default:
		return reminder.NewSQLiteStore(cfg.Path)
	}
}

func buildAnnouncer(cfg *config.Config) reminder.Announcer {
	console := notify.NewConsole(os.Stdout, cfg.UI.ColoredOutput)
	if !cfg.Notify.Telegram.Enabled {
		return console
	}
	return notify.NewMulti(console, notify.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID))
}

func connectMCPServers(ctx context.Context, servers []config.MCPServerConfig) *mcp.Manager {
	manager := mcp.NewManager()
	for _, s := range servers {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		err := manager.AddServer(connectCtx, mcp.ServerConfig{
			Name:    s.Name,
			Command: s.Command,
			Args:    s.Args,
			Env:     s.Env,
		})
		cancel()
		if err != nil {
			log.Warn().Str("server", s.Name).Err(err).Msg("mcp server unavailable")
		}
	}
	return manager
}

func shutdownHTTP(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
