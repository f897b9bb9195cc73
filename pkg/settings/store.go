package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store loads and saves the settings record.
type Store interface {
	// Load returns the persisted settings. A missing backing store is not an
	// error: the defaults are persisted and returned.
	Load() (Settings, error)

	// Save persists the settings.
	Save(s Settings) error

	// Reset persists and returns the defaults.
	Reset() (Settings, error)
}

// DefaultDataDir returns the application-private data directory.
func DefaultDataDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve user config dir: %w", err)
	}

	return filepath.Join(dir, "relay"), nil
}

// FileStore keeps settings as pretty-printed JSON in a single file.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// lazily on the first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the settings file location.
func (f *FileStore) Path() string {
	return filepath.Join(f.dir, FileName)
}

// Dir returns the data directory.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) Load() (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.Path())
	if errors.Is(err, fs.ErrNotExist) {
		defaults := Defaults()
		if err := f.write(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings %s: %w", f.Path(), err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", f.Path(), err)
	}

	return s, nil
}

func (f *FileStore) Save(s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.write(s)
}

func (f *FileStore) Reset() (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	defaults := Defaults()
	if err := f.write(defaults); err != nil {
		return Settings{}, err
	}

	return defaults, nil
}

// write replaces the file via a temp file and rename so readers (and the
// watcher) never see a half-written record.
func (f *FileStore) write(s Settings) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", f.dir, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.Path()); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// MemoryStore keeps settings in memory. The zero value behaves like a fresh
// FileStore: the first Load returns the defaults.
type MemoryStore struct {
	mu       sync.Mutex
	settings *Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings == nil {
		defaults := Defaults()
		m.settings = &defaults
	}

	return *m.settings, nil
}

func (m *MemoryStore) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = &s
	return nil
}

func (m *MemoryStore) Reset() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	defaults := Defaults()
	m.settings = &defaults
	return defaults, nil
}
