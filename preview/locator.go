// Package preview locates theme preview images and normalizes them into
// the compact cached form served by the web front end.
package preview

import (
	"os"
	"path/filepath"
	"strings"
)

// canonicalNames are checked first, in priority order.
var canonicalNames = []string{
	"preview.png",
	"theme.png",
	"screenshot.png",
	"preview-1.png",
	"preview1.png",
	"preview_1.png",
}

// rootExtensions are tried against the directory's top level, one
// extension at a time so png matches beat jpg matches.
var rootExtensions = []string{".png", ".jpg", ".jpeg"}

// backgroundExtensions additionally admit webp when falling back to the
// backgrounds directory.
var backgroundExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// excludedNames are top-level images that are never previews.
var excludedNames = map[string]bool{
	"logo.png": true,
	"icon.png": true,
}

// Find returns the best preview candidate inside a theme directory, or
// "" and false when the directory has none. It never writes anything.
func Find(themeDir string) (string, bool) {
	for _, name := range canonicalNames {
		p := filepath.Join(themeDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}

	entries, err := os.ReadDir(themeDir)
	if err != nil {
		return "", false
	}

	for _, ext := range rootExtensions {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if excludedNames[name] {
				continue
			}
			if strings.EqualFold(filepath.Ext(name), ext) {
				return filepath.Join(themeDir, name), true
			}
		}
	}

	// Last resort: first background image, sorted by name per extension.
	bgDir := filepath.Join(themeDir, "backgrounds")
	bgEntries, err := os.ReadDir(bgDir)
	if err != nil {
		return "", false
	}
	for _, ext := range backgroundExtensions {
		for _, e := range bgEntries {
			if e.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(e.Name()), ext) {
				return filepath.Join(bgDir, e.Name()), true
			}
		}
	}

	return "", false
}
