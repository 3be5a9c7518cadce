// Package notify delivers reminder announcements to output channels:
// the terminal, Telegram, or several at once.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"

	"talkassist/internal/reminder"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var announceStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("222")). // Warm yellow
	Bold(true)

// Console prints announcements to a terminal writer.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	colored bool
}

// NewConsole creates a console announcer. Pass the writer the surrounding
// program reserves for async output; MCP servers must not use stdout.
func NewConsole(out io.Writer, colored bool) *Console {
	return &Console{
		out:     out,
		colored: colored,
	}
}

// Announce writes the reminder line. The leading newline pushes the
// announcement off whatever prompt the user is sitting on.
func (c *Console) Announce(r *reminder.Reminder) {
	line := fmt.Sprintf("Reminder: %s", r.Text)
	if c.colored {
		line = announceStyle.Render(line)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\n%s\n", line)
}

// Multi fans an announcement out to every configured channel.
type Multi struct {
	channels []reminder.Announcer
}

// NewMulti combines announcers; each one receives every reminder.
func NewMulti(channels ...reminder.Announcer) *Multi {
	return &Multi{channels: channels}
}

func (m *Multi) Announce(r *reminder.Reminder) {
	for _, ch := range m.channels {
		ch.Announce(r)
	}
}
