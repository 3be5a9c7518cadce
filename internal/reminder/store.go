package reminder

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the durable home of reminders. Implementations survive restarts
// and tolerate records written by earlier versions.
type Store interface {
	// Append persists a new reminder.
	Append(r *Reminder) error
	// UpdateStatus records a status transition for a stored reminder.
	UpdateStatus(id, status string) error
	// Remove deletes a reminder outright.
	Remove(id string) error
	// LoadAll returns every stored reminder, pending or not.
	LoadAll() ([]*Reminder, error)
	// Close releases the underlying resources.
	Close() error
}

// SQLiteStore persists reminders in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the reminder database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		due_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
	)`
	_, err := s.db.Exec(query)
	return err
}

// Append persists a new reminder record.
func (s *SQLiteStore) Append(r *Reminder) error {
	query := `INSERT INTO reminders (id, text, due_at, created_at, status) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		r.ID,
		r.Text,
		r.DueAt.UTC().Format(time.RFC3339Nano),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

// UpdateStatus records a status transition for a stored reminder.
func (s *SQLiteStore) UpdateStatus(id, status string) error {
	result, err := s.db.Exec(`UPDATE reminders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update reminder status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// Remove deletes a reminder outright.
func (s *SQLiteStore) Remove(id string) error {
	result, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// LoadAll returns every stored reminder ordered by due time.
func (s *SQLiteStore) LoadAll() ([]*Reminder, error) {
	rows, err := s.db.Query(`SELECT id, text, due_at, created_at, status FROM reminders ORDER BY due_at, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanReminders(rows *sql.Rows) ([]*Reminder, error) {
	var reminders []*Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func scanReminder(rows *sql.Rows) (*Reminder, error) {
	var r Reminder
	var dueAt, createdAt string

	if err := rows.Scan(&r.ID, &r.Text, &dueAt, &createdAt, &r.Status); err != nil {
		return nil, fmt.Errorf("failed to scan reminder: %w", err)
	}

	var err error
	if r.DueAt, err = time.Parse(time.RFC3339Nano, dueAt); err != nil {
		return nil, fmt.Errorf("failed to parse due_at: %w", err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &r, nil
}
