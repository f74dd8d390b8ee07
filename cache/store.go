// Package cache maps theme names to their cached preview images on disk.
//
// Two namespaces share the directory: previews rendered from a locally
// installed theme ("installed_<name>.webp") and previews fetched from a
// theme's upstream repository ("<name>.webp"). A theme can legitimately
// have both, since its local preview may differ from the one upstream.
// Existence of the file is the sole notion of "cached"; there is no
// metadata and entries are never invalidated automatically.
package cache

import (
	"os"
	"path/filepath"
)

// Store resolves and checks cached preview paths under a base directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir creates the cache directory if needed.
func (s *Store) EnsureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// Path returns the deterministic cache location for (name, installed).
func (s *Store) Path(name string, installed bool) string {
	prefix := ""
	if installed {
		prefix = "installed_"
	}
	return filepath.Join(s.dir, prefix+name+".webp")
}

// Has reports whether a cached preview exists for (name, installed).
func (s *Store) Has(name string, installed bool) bool {
	_, err := os.Stat(s.Path(name, installed))
	return err == nil
}
