package settings

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	themisio "github.com/matzehuels/themis/pkg/io"
)

// Store reads and writes the settings file.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a store rooted at dir.
// If dir is empty, defaults to [DefaultDir].
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Store{dir: dir}, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load reads the settings file and applies environment overrides.
func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return nil, err
	}
	o, err := parseEnv()
	if err != nil {
		return nil, err
	}
	o.apply(st)
	return st, nil
}

// Save writes st to the settings file, replacing it atomically.
func (s *Store) Save(st *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(st)
}

// Update loads the file without environment overrides, applies fn and
// saves the result.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	fn(st)
	return s.write(st)
}

func (s *Store) read() (*Settings, error) {
	st := Default()
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	if err := toml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return st, nil
}

func (s *Store) write(st *Settings) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(st); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return themisio.WriteFileAtomic(s.Path(), buf.Bytes(), 0o600)
}
