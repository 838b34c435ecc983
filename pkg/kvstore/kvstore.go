// Package kvstore is the flat key to string store behind presets, the sound
// flag and the theme. Values are opaque strings; callers own the encoding.
package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kvstore: store closed")

// Store is a persistent string map.
type Store interface {
	// Get returns the value for key. A missing key is ("", false, nil).
	Get(key string) (string, bool, error)

	// Set stores value under key.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys returns every key in sorted order.
	Keys() ([]string, error)

	// Close releases resources. Later calls return ErrClosed.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Open returns the backend named by kind, stored at path. An empty path uses
// DefaultPath for the backend.
func Open(kind, path string) (Store, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = BackendYAML
	}

	if path == "" && kind != BackendMemory {
		p, err := DefaultPath(kind)
		if err != nil {
			return nil, err
		}
		path = p
	}

	switch kind {
	case BackendMemory:
		return NewMemory(), nil
	case BackendYAML:
		return OpenYAML(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", kind)
	}
}

// DefaultPath returns the store file under the user config directory.
func DefaultPath(kind string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("kvstore: resolve user config dir: %w", err)
	}

	name := "state.yaml"
	if kind == BackendSQLite {
		name = "state.db"
	}
	return filepath.Join(dir, "studyclock", name), nil
}
