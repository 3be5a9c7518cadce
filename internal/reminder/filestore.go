package reminder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fileSchemaVersion marks the on-disk layout so later versions can migrate
// older files instead of misreading them.
const fileSchemaVersion = 1

type fileState struct {
	Version   int         `json:"version"`
	Reminders []*Reminder `json:"reminders"`
}

// FileStore persists reminders in a single JSON file, rewritten atomically
// on every change. It suits small installs that want a file they can read.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore prepares a file store at path, creating parent directories
// as needed. The file itself is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Append persists a new reminder record.
func (s *FileStore) Append(r *Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	state.Reminders = append(state.Reminders, r)
	return s.save(state)
}

// UpdateStatus records a status transition for a stored reminder.
func (s *FileStore) UpdateStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	for _, r := range state.Reminders {
		if r.ID == id {
			r.Status = status
			return s.save(state)
		}
	}
	return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
}

// Remove deletes a reminder outright.
func (s *FileStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	kept := state.Reminders[:0]
	found := false
	for _, r := range state.Reminders {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	state.Reminders = kept
	return s.save(state)
}

// LoadAll returns every stored reminder. A missing file reads as empty.
func (s *FileStore) LoadAll() ([]*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}
	return state.Reminders, nil
}

// Close is a no-op; every mutation already leaves a complete file behind.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (*fileState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileState{Version: fileSchemaVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reminders file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode reminders file: %w", err)
	}
	if state.Version > fileSchemaVersion {
		return nil, fmt.Errorf("reminders file version %d is newer than supported version %d", state.Version, fileSchemaVersion)
	}
	return &state, nil
}

// save writes the full state to a temp file, syncs it and renames it over
// the old one, so a crash mid-write never leaves a torn file.
func (s *FileStore) save(state *fileState) error {
	state.Version = fileSchemaVersion

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reminders: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".reminders-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write reminders: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync reminders: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace reminders file: %w", err)
	}
	return nil
}
