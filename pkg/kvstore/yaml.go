package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/BYTE-6D65/studyclock/pkg/logs"
)

// CorruptSuffix is appended to a state file that could not be parsed.
const CorruptSuffix = ".corrupt"

// YAMLFile keeps the whole map in memory and rewrites the file on every
// change. The write goes to a temp file that is renamed into place.
type YAMLFile struct {
	mu     sync.RWMutex
	path   string
	items  map[string]string
	closed bool
}

// OpenYAML loads path, or starts empty when it does not exist yet. A file
// that does not parse is moved aside to path+CorruptSuffix and the store
// starts empty.
func OpenYAML(path string) (*YAMLFile, error) {
	s := &YAMLFile{path: path, items: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("kvstore: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &s.items); err != nil {
		s.items = make(map[string]string)
		quarantine(path, err)
		return s, nil
	}
	if s.items == nil {
		s.items = make(map[string]string)
	}
	return s, nil
}

// Path returns the backing file.
func (s *YAMLFile) Path() string {
	return s.path
}

// Get returns the value for key.
func (s *YAMLFile) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.items[key]
	return v, ok, nil
}

// Set stores value under key and flushes the file.
func (s *YAMLFile) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	prev, had := s.items[key]
	s.items[key] = value
	if err := s.flushLocked(); err != nil {
		if had {
			s.items[key] = prev
		} else {
			delete(s.items, key)
		}
		return err
	}
	return nil
}

// Delete removes key and flushes the file.
func (s *YAMLFile) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	prev, had := s.items[key]
	if !had {
		return nil
	}
	delete(s.items, key)
	if err := s.flushLocked(); err != nil {
		s.items[key] = prev
		return err
	}
	return nil
}

// Keys returns every key in sorted order.
func (s *YAMLFile) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return sortedKeys(s.items), nil
}

// Close marks the store closed. Every change is already on disk.
func (s *YAMLFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *YAMLFile) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("kvstore: create dir: %w", err)
	}

	data, err := yaml.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("kvstore: marshal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("kvstore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("kvstore: replace %s: %w", s.path, err)
	}
	return nil
}

func quarantine(path string, cause error) {
	logger := logs.NewLogger("kvstore")
	aside := path + CorruptSuffix
	if err := os.Rename(path, aside); err != nil {
		logger.WithError(cause).Warnf("%s is unreadable and could not be moved aside (%v); starting empty", path, err)
		return
	}
	logger.WithError(cause).Warnf("%s is unreadable, moved to %s; starting empty", path, aside)
}
