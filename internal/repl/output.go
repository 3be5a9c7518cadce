package repl

import (
	"fmt"
	"os"
	"strings"
	"time"

	"talkassist/internal/assistant"
	"talkassist/internal/ui"
)

func (r *REPL) displayResponse(answer string, duration time.Duration) {
	r.status.Hide()

	// Apply terminal formatting (markdown/LaTeX cleanup)
	displayContent := assistant.FormatForTerminal(answer)

	fmt.Println()
	fmt.Println(r.formatter.FormatAssistantMessage(displayContent))

	if r.config.UI.ShowTokenCount && r.agent != nil {
		usage, calls := r.agent.LastUsage()
		fmt.Println(r.formatter.FormatTokenUsage(usage, ui.TokenUsageOptions{
			Duration:     duration,
			Model:        r.config.Model.Name,
			APICallCount: calls,
		}))
	}

	fmt.Println()
	os.Stdout.Sync() // Flush to ensure output displays immediately
}

func (r *REPL) displayAssistant(msg string) {
	fmt.Println(r.formatter.FormatAssistantMessage(msg))
}

func (r *REPL) displayError(err error) {
	r.status.Hide()
	fmt.Println(r.formatter.FormatError(err))
	fmt.Println()
}

func (r *REPL) displayWelcome() {
	fmt.Print(r.formatter.FormatWelcome(r.config.Model.Name, r.config.Provider))
}

func (r *REPL) displayHelp() {
	fmt.Print(r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Println(r.formatter.FormatInfo(msg))
	fmt.Println()
}

func (r *REPL) displaySystem(msg string) {
	fmt.Println(r.formatter.FormatSystem(msg))
	fmt.Println()
}

func (r *REPL) displayReminders() {
	entries := r.manager.List()
	if len(entries) == 0 {
		r.displayInfo("You have no pending reminders.")
		return
	}

	plural := ""
	if len(entries) > 1 {
		plural = "s"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d pending reminder%s:", len(entries), plural)
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s (due %s)", e.Number, e.Text, r.formatDue(e.DueAt))
	}
	r.displayInfo(b.String())
}

// displayHistory shows the most recent conversation turns. Tool traffic
// is elided; only what was said survives the cut.
func (r *REPL) displayHistory() {
	if r.session == nil || r.session.IsEmpty() {
		r.displayInfo("No conversation yet.")
		return
	}

	messages := r.session.GetMessages()
	r.displayInfo(fmt.Sprintf("Conversation has %d messages.", len(messages)))

	const maxShown = 10
	start := 0
	if len(messages) > maxShown {
		start = len(messages) - maxShown
	}

	for _, msg := range messages[start:] {
		switch {
		case msg.Role == "user":
			fmt.Println(r.formatter.FormatUserMessage(msg.Content))
		case msg.Role == "assistant" && msg.Content != "":
			fmt.Println(r.formatter.FormatAssistantMessage(msg.Content))
		}
	}
	fmt.Println()
}

func (r *REPL) displayTools() {
	if r.tools == nil {
		r.displayInfo("No tools available in offline mode.")
		return
	}

	defs := r.tools.Tools()
	if len(defs) == 0 {
		r.displayInfo("No tools available.")
		return
	}

	lines := make([]string, 0, len(defs))
	for _, def := range defs {
		if def.Function == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-28s %s", def.Function.Name, def.Function.Description))
	}

	title := fmt.Sprintf("Available tools (%d)", len(lines))
	fmt.Println(r.formatter.FormatBox(title, strings.Join(lines, "\n")))
	fmt.Println()
}
