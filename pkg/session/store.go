package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// TokenKey is the fixed key the token is persisted under.
const TokenKey = "token"

// Store persists the session token between runs.
type Store interface {
	// Load returns "" when nothing is stored.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// fileContents is the on-disk layout of a FileStore.
type fileContents struct {
	Token string `toml:"token,omitempty"`
}

// FileStore keeps the token in a TOML file readable only by the user.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path. An empty path uses DefaultPath().
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

// DefaultPath returns <user config dir>/neostore/session.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "neostore", "session.toml"), nil
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load implements Store.
func (f *FileStore) Load() (string, error) {
	var c fileContents
	if _, err := toml.DecodeFile(f.path, &c); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session file: %w", err)
	}
	return c.Token, nil
}

// Save implements Store.
func (f *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(fileContents{Token: token}); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear implements Store.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemoryStore keeps the token in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// Load implements Store.
func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Save implements Store.
func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	return m.Save("")
}
