// Package reminder implements durable, exactly-once reminders: a store for
// persistence, a manager that owns the pending set, and a scheduler that
// fires reminders as they come due.
package reminder

import (
	"time"

	"github.com/google/uuid"
)

// Status values a reminder moves through. Deleted reminders are removed
// outright rather than marked.
const (
	StatusPending   = "pending"
	StatusTriggered = "triggered"
)

// Reminder is a single scheduled announcement. The ID is opaque and stable
// for the lifetime of the record; users refer to reminders by list number
// instead.
type Reminder struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	DueAt     time.Time `json:"due_at"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

// NewReminder builds a pending reminder with a fresh id. Times are stored
// normalized to UTC.
func NewReminder(text string, dueAt, createdAt time.Time) *Reminder {
	return &Reminder{
		ID:        "rem_" + uuid.NewString(),
		Text:      text,
		DueAt:     dueAt.UTC(),
		CreatedAt: createdAt.UTC(),
		Status:    StatusPending,
	}
}

// sortsBefore orders reminders by due time, then creation time, then id,
// so list numbering is stable across runs and restarts.
func (r *Reminder) sortsBefore(o *Reminder) bool {
	if !r.DueAt.Equal(o.DueAt) {
		return r.DueAt.Before(o.DueAt)
	}
	if !r.CreatedAt.Equal(o.CreatedAt) {
		return r.CreatedAt.Before(o.CreatedAt)
	}
	return r.ID < o.ID
}
