// Package jsonfile stores users as a single JSON array on disk, the layout the
// first version of the chat server used (data/users.json).
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/presencechat/internal/store"
)

// record is the on-disk shape of a user.
type record struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileStore implements store.Store on top of a JSON file.
// All records are cached in memory; the file is rewritten on every insert.
type FileStore struct {
	path string
	log  *zerolog.Logger

	mu      sync.RWMutex
	records []record
}

// New opens the store at path. A missing file is initialized to an empty
// array; an unreadable or corrupt one is logged and reset.
func New(path string, logger *zerolog.Logger) (*FileStore, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{path: path, log: logger}

	records, err := s.load()
	switch {
	case err == nil:
		s.records = records
	case errors.Is(err, fs.ErrNotExist):
		if err := s.persist(nil); err != nil {
			return nil, fmt.Errorf("init users file: %w", err)
		}
	default:
		logger.Warn().Err(err).Str("path", path).Msg("users file unreadable, resetting to empty")
		if err := s.persist(nil); err != nil {
			return nil, fmt.Errorf("reset users file: %w", err)
		}
	}

	return s, nil
}

func (s *FileStore) load() ([]record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode users file: %w", err)
	}
	return records, nil
}

// persist atomically replaces the file contents with records.
func (s *FileStore) persist(records []record) error {
	if records == nil {
		records = []record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}

// CreateUser appends user after checking email uniqueness under the write lock.
// The in-memory set only changes once the file write succeeded.
func (s *FileStore) CreateUser(_ context.Context, user *store.User) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.Email == user.Email {
			return nil, store.ErrDuplicateEmail
		}
	}

	rec := record{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt.UTC(),
	}

	next := make([]record, len(s.records), len(s.records)+1)
	copy(next, s.records)
	next = append(next, rec)

	if err := s.persist(next); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}
	s.records = next

	return rec.toUser(), nil
}

// GetUserByID retrieves a user by ID.
func (s *FileStore) GetUserByID(_ context.Context, id string) (*store.User, error) {
	return s.find(func(r record) bool { return r.ID == id })
}

// GetUserByEmail retrieves a user by exact email.
func (s *FileStore) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	return s.find(func(r record) bool { return r.Email == email })
}

func (s *FileStore) find(match func(record) bool) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if match(r) {
			return r.toUser(), nil
		}
	}
	return nil, store.ErrNotFound
}

// Close is a no-op; every write is already flushed.
func (s *FileStore) Close() error {
	return nil
}

func (r record) toUser() *store.User {
	return &store.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.Password,
		CreatedAt:    r.CreatedAt,
	}
}
