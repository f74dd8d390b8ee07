package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathNamespaces(t *testing.T) {
	s := New("/tmp/previews")

	tests := []struct {
		name      string
		installed bool
		want      string
	}{
		{"dracula", true, "/tmp/previews/installed_dracula.webp"},
		{"dracula", false, "/tmp/previews/dracula.webp"},
		{"rose-pine-dark", false, "/tmp/previews/rose-pine-dark.webp"},
	}

	for _, tt := range tests {
		if got := s.Path(tt.name, tt.installed); got != filepath.FromSlash(tt.want) {
			t.Errorf("Path(%q, %v) = %s, want %s", tt.name, tt.installed, got, tt.want)
		}
	}
}

func TestHasChecksOnlyItsNamespace(t *testing.T) {
	s := New(t.TempDir())
	if err := s.EnsureDir(); err != nil {
		t.Fatal(err)
	}

	if s.Has("foo", true) || s.Has("foo", false) {
		t.Fatal("Has() true on empty store")
	}

	if err := os.WriteFile(s.Path("foo", false), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !s.Has("foo", false) {
		t.Error("Has(foo, false) = false after write")
	}
	if s.Has("foo", true) {
		t.Error("Has(foo, true) = true, installed namespace must be independent")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "previews")
	s := New(dir)
	if err := s.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir missing after EnsureDir: %v", err)
	}
}
