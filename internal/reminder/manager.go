package reminder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"talkassist/internal/timeparse"
)

// Entry is one row of the numbered reminder list handed to users. Numbers
// start at 1, follow due order and shift when earlier reminders go away.
type Entry struct {
	Number int       `json:"number"`
	Text   string    `json:"text"`
	DueAt  time.Time `json:"due_at"`
}

// Manager owns the pending reminder set. Every mutation and every ordinal
// read goes through one mutex, so list numbers, timer decisions and the
// store never see a half-applied change.
type Manager struct {
	mu      sync.Mutex
	store   Store
	pending []*Reminder
	now     func() time.Time
	wake    chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock, letting tests pin "now".
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager builds a manager on top of store. Call Load before use to
// restore reminders from a previous run.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		now:   time.Now,
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the manager's current time. Callers use it to render due
// times consistently with the clock that scheduled them.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Load restores pending reminders from the store. Records that already
// fired are compacted away; past-due pending ones are kept so the scheduler
// announces them right after startup.
func (m *Manager) Load() error {
	all, err := m.store.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = nil
	for _, r := range all {
		if r.Status != StatusPending {
			if err := m.store.Remove(r.ID); err != nil {
				log.Warn().Err(err).Str("reminder_id", r.ID).Msg("failed to compact fired reminder")
			}
			continue
		}
		m.pending = append(m.pending, r)
	}
	m.sortLocked()
	m.wakeLocked()
	return nil
}

// Set parses a natural-language request into a task and due time, persists
// the reminder, and returns the spoken confirmation. Nothing is scheduled
// unless the write succeeded.
func (m *Manager) Set(text string) (string, error) {
	cleaned := timeparse.StripTrigger(text)
	if cleaned == "" {
		return "", fmt.Errorf("%w: the request was empty", ErrCouldNotUnderstandTime)
	}

	now := m.now()
	dueAt, err := timeparse.Resolve(cleaned, now)
	if err != nil {
		if errors.Is(err, timeparse.ErrPastTime) {
			return "", fmt.Errorf("%w: %s", ErrTimeInPast, err)
		}
		return "", fmt.Errorf("%w: %s", ErrCouldNotUnderstandTime, err)
	}

	task := timeparse.ExtractTask(cleaned)
	if task == "" {
		task = cleaned
	}
	r := NewReminder(task, dueAt, now)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Append(r); err != nil {
		return "", fmt.Errorf("%w: %s", ErrPersistenceFailure, err)
	}
	m.pending = append(m.pending, r)
	m.sortLocked()
	m.wakeLocked()

	log.Info().Str("reminder_id", r.ID).Time("due_at", r.DueAt).Msg("reminder set")
	return fmt.Sprintf("Reminder set for %s: %s", timeparse.FormatHuman(dueAt, now), task), nil
}

// List returns a numbered snapshot of the pending reminders, earliest due
// first.
func (m *Manager) List() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]Entry, 0, len(m.pending))
	for i, r := range m.pending {
		entries = append(entries, Entry{Number: i + 1, Text: r.Text, DueAt: r.DueAt})
	}
	return entries
}

// Delete removes the reminder at the given list number and returns it.
// Numbers refer to the current snapshot; later reminders shift down by one.
func (m *Manager) Delete(number int) (*Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if number < 1 || number > len(m.pending) {
		return nil, fmt.Errorf("%w: no reminder number %d, you have %d pending", ErrInvalidOrdinal, number, len(m.pending))
	}
	r := m.pending[number-1]
	if err := m.store.Remove(r.ID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPersistenceFailure, err)
	}
	m.pending = append(m.pending[:number-1], m.pending[number:]...)
	m.wakeLocked()

	log.Info().Str("reminder_id", r.ID).Msg("reminder deleted")
	return r, nil
}

// DeleteByContent removes the single pending reminder whose text matches the
// query. When several match it deletes nothing and returns the candidates
// with their list numbers so the caller can delete by number instead.
func (m *Manager) DeleteByContent(query string) (*Reminder, []Entry, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < 3 {
		return nil, nil, fmt.Errorf("%w matching %q", ErrNotFound, query)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []int
	for i, r := range m.pending {
		if matchesContent(r.Text, query) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil, fmt.Errorf("%w matching %q", ErrNotFound, query)
	case 1:
		i := matches[0]
		r := m.pending[i]
		if err := m.store.Remove(r.ID); err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrPersistenceFailure, err)
		}
		m.pending = append(m.pending[:i], m.pending[i+1:]...)
		m.wakeLocked()
		log.Info().Str("reminder_id", r.ID).Msg("reminder deleted")
		return r, nil, nil
	default:
		entries := make([]Entry, 0, len(matches))
		for _, i := range matches {
			r := m.pending[i]
			entries = append(entries, Entry{Number: i + 1, Text: r.Text, DueAt: r.DueAt})
		}
		return nil, entries, nil
	}
}

// matchesContent reports whether a reminder's text matches the query, either
// as a whole phrase or by sharing any single word.
func matchesContent(text, query string) bool {
	text = strings.ToLower(text)
	if strings.Contains(text, query) {
		return true
	}
	for _, word := range strings.Fields(query) {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// ClearAll deletes every pending reminder and returns how many were removed.
// On a store failure the reminders not yet removed stay pending.
func (m *Manager) ClearAll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for len(m.pending) > 0 {
		r := m.pending[0]
		if err := m.store.Remove(r.ID); err != nil {
			m.wakeLocked()
			return removed, fmt.Errorf("%w: %s", ErrPersistenceFailure, err)
		}
		m.pending = m.pending[1:]
		removed++
	}
	m.wakeLocked()

	log.Info().Int("removed", removed).Msg("reminders cleared")
	return removed, nil
}

// FireDue retires every reminder due at or before now and returns them for
// announcement. Each one is marked triggered in the store before it is
// handed back, so a reminder never fires twice; one that cannot be marked
// stays pending for a later pass.
func (m *Manager) FireDue(now time.Time) []*Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fired []*Reminder
	remaining := m.pending[:0]
	for _, r := range m.pending {
		if r.DueAt.After(now) {
			remaining = append(remaining, r)
			continue
		}
		if err := m.store.UpdateStatus(r.ID, StatusTriggered); err != nil {
			log.Warn().Err(err).Str("reminder_id", r.ID).Msg("failed to mark reminder triggered")
			remaining = append(remaining, r)
			continue
		}
		r.Status = StatusTriggered
		fired = append(fired, r)
	}
	m.pending = remaining
	return fired
}

// NextDue reports the earliest pending due time.
func (m *Manager) NextDue() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return time.Time{}, false
	}
	return m.pending[0].DueAt, true
}

// Wake returns the channel the scheduler watches. A signal means the
// earliest due time may have changed and the timer needs re-arming.
func (m *Manager) Wake() <-chan struct{} {
	return m.wake
}

// wakeLocked signals the scheduler without blocking; the channel holds one
// pending signal and extra ones collapse into it.
func (m *Manager) wakeLocked() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) sortLocked() {
	sort.SliceStable(m.pending, func(i, j int) bool {
		return m.pending[i].sortsBefore(m.pending[j])
	})
}
