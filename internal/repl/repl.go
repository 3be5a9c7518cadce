// Package repl is the interactive console for the assistant: a readline
// loop that routes slash commands locally, offline requests through the
// intent router, and everything else through the online agent.
package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"talkassist/internal/assistant"
	"talkassist/internal/config"
	"talkassist/internal/connectivity"
	"talkassist/internal/intent"
	"talkassist/internal/reminder"
	"talkassist/internal/timeparse"
	"talkassist/internal/ui"
)

const offlineGreeting = "Hello! I am TalkAssist running in offline mode. How can I assist you today?"

// errExit signals that the conversation asked to end (e.g. "goodbye").
var errExit = errors.New("exit requested")

type REPL struct {
	config  *config.Config
	manager *reminder.Manager
	router  *intent.Router
	agent   *assistant.Agent     // nil when no provider is configured
	session *assistant.Session   // nil when no provider is configured
	tools   assistant.ToolSource // what /tools lists; nil when offline-only
	checker *connectivity.Checker

	rl        *readline.Instance
	formatter *ui.Formatter
	status    *ui.StatusDisplay
	spinner   *ui.Spinner
	offline   bool
}

// Options carries the collaborators the REPL drives. Manager, Router and
// Config are required; the online fields may be nil, which pins the REPL
// to offline mode.
type Options struct {
	Config  *config.Config
	Manager *reminder.Manager
	Router  *intent.Router
	Agent   *assistant.Agent
	Tools   assistant.ToolSource
	Checker *connectivity.Checker
	Offline bool
}

func NewREPL(opts Options) (*REPL, error) {
	rl, err := setupReadline()
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	r := &REPL{
		config:  opts.Config,
		manager: opts.Manager,
		router:  opts.Router,
		agent:   opts.Agent,
		tools:   opts.Tools,
		checker: opts.Checker,
		rl:      rl,
	}
	if opts.Agent != nil {
		r.session = opts.Agent.Session()
	}

	r.setMode(opts.Offline || opts.Agent == nil)
	return r, nil
}

// setMode switches between online and offline and rebuilds the display
// stack so message prefixes match the mode.
func (r *REPL) setMode(offline bool) {
	r.offline = offline

	name := r.config.Provider
	if offline {
		name = "offline"
	}
	r.formatter = ui.NewFormatter(r.config.UI.ColoredOutput, name)
	r.status = ui.NewStatusDisplay(r.formatter, true)
	r.spinner = ui.NewSpinner(r.config.UI.ColoredOutput, ui.SpinnerBraille)
	if r.rl != nil {
		r.rl.SetPrompt(r.formatter.FormatPrompt())
	}
}

func (r *REPL) modeName() string {
	if r.offline {
		return "offline"
	}
	return "online"
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()
	if r.offline {
		r.displayAssistant(offlineGreeting)
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		default:
		}

		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if isCommand {
			if err := r.handleCommand(ctx, command, args); err != nil {
				r.displayError(err)
			}

			if command == "/quit" || command == "/exit" {
				return nil
			}

			continue
		}

		if err := r.handleMessage(ctx, input); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			r.displayError(err)
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

func (r *REPL) handleMessage(ctx context.Context, message string) error {
	if r.offline {
		return r.handleOffline(message)
	}

	start := time.Now()
	r.spinner.Start("Thinking...")
	r.agent.OnToolCall = func(name string) {
		r.spinner.Update(fmt.Sprintf("Running %s...", name))
	}

	answer, err := r.agent.Ask(ctx, message)
	r.spinner.Stop()

	if err != nil {
		// When the provider is unreachable the assistant keeps working
		// offline rather than erroring on every message.
		if r.checker != nil && !r.checker.Online(ctx) {
			r.setMode(true)
			r.displayInfo("Provider unreachable; switched to offline mode.")
			return r.handleOffline(message)
		}
		return err
	}

	r.displayResponse(answer, time.Since(start))
	return nil
}

func (r *REPL) handleOffline(message string) error {
	resp := r.router.Handle(message)

	fmt.Println()
	r.displayAssistant(resp.Text)
	fmt.Println()

	if resp.Exit {
		fmt.Println("Goodbye!")
		return errExit
	}
	return nil
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/list", "/l":
		r.displayReminders()
		return nil

	case "/delete", "/d":
		return r.deleteReminder(args)

	case "/clear", "/c":
		if r.session == nil {
			r.displayInfo("No conversation history in offline mode.")
			return nil
		}
		r.session.Clear()
		r.displaySystem("Conversation history cleared.")
		return nil

	case "/history":
		r.displayHistory()
		return nil

	case "/mode", "/m":
		return r.switchMode(ctx, args)

	case "/tools", "/t":
		r.displayTools()
		return nil

	case "/system", "/s":
		if r.session == nil {
			return fmt.Errorf("the system prompt applies to online mode only")
		}
		if args == "" {
			prompt := r.session.GetSystemPrompt()
			r.displayInfo(fmt.Sprintf("Current system prompt:\n%s", prompt))
			return nil
		}
		if err := r.session.SetSystemPrompt(args); err != nil {
			return err
		}
		r.displaySystem("System prompt updated.")
		return nil

	case "/temp":
		if r.session == nil {
			return fmt.Errorf("temperature applies to online mode only")
		}
		if args == "" {
			r.displayInfo(fmt.Sprintf("Current temperature: %g", r.session.GetTemperature()))
			return nil
		}
		temp, err := strconv.ParseFloat(args, 64)
		if err != nil {
			return fmt.Errorf("usage: /temp <0-2>")
		}
		if err := r.session.SetTemperature(temp); err != nil {
			return err
		}
		r.displaySystem(fmt.Sprintf("Temperature set to %g.", temp))
		return nil

	case "/quit", "/exit", "/q":
		fmt.Println("\nGoodbye!")
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) deleteReminder(args string) error {
	if args == "" {
		return fmt.Errorf("usage: /delete <number> (see /list for numbers)")
	}

	number, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return fmt.Errorf("usage: /delete <number> (see /list for numbers)")
	}

	deleted, err := r.manager.Delete(number)
	if err != nil {
		return err
	}

	r.displaySystem(fmt.Sprintf("Reminder %d deleted: %s", number, deleted.Text))
	return nil
}

func (r *REPL) switchMode(ctx context.Context, args string) error {
	switch strings.ToLower(args) {
	case "":
		r.displayInfo(fmt.Sprintf("Current mode: %s", r.modeName()))
		return nil

	case "offline":
		if r.offline {
			r.displayInfo("Already in offline mode.")
			return nil
		}
		r.setMode(true)
		r.displaySystem("Switched to offline mode.")
		return nil

	case "online":
		if !r.offline {
			r.displayInfo("Already in online mode.")
			return nil
		}
		if r.agent == nil {
			return fmt.Errorf("online mode is not configured (no provider available)")
		}
		if r.checker != nil {
			if !r.checker.Online(ctx) {
				return fmt.Errorf("no internet connection detected; staying offline")
			}
			if url := r.providerBaseURL(); url != "" && !r.checker.APIReachable(ctx, url) {
				return fmt.Errorf("provider endpoint is not responding; staying offline")
			}
		}
		r.setMode(false)
		r.displaySystem("Switched to online mode.")
		return nil

	default:
		return fmt.Errorf("usage: /mode [online|offline]")
	}
}

func (r *REPL) SaveHistory() error {
	if r.session == nil || !r.config.Session.SaveHistory {
		return nil
	}

	if r.session.IsEmpty() {
		return nil
	}

	return r.session.Save(r.config.Session.HistoryFile)
}

// providerBaseURL is the endpoint the connectivity checker probes before
// the REPL goes online.
func (r *REPL) providerBaseURL() string {
	switch r.config.Provider {
	case config.ProviderOllama:
		return r.config.Ollama.BaseURL
	default:
		return r.config.DeepSeek.BaseURL
	}
}

// formatDue renders a due time relative to the manager's clock, in its
// location.
func (r *REPL) formatDue(due time.Time) string {
	now := r.manager.Now()
	return timeparse.FormatHuman(due.In(now.Location()), now)
}
