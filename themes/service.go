// Package themes manages the local theme tree: listing installed themes,
// resolving the active one, and driving the external apply/install tools.
package themes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"themeplane/cache"
	"themeplane/model"
	"themeplane/preview"
	"themeplane/registry"
)

var (
	// ErrThemeNotFound means no directory exists for the named theme.
	ErrThemeNotFound = errors.New("theme not found")

	// ErrThemeActive refuses deletion of the currently applied theme.
	ErrThemeActive = errors.New("cannot delete the currently active theme")
)

const (
	applyTimeout   = 30 * time.Second
	installTimeout = 120 * time.Second
)

// Service reads the themes directory and invokes the external tools.
type Service struct {
	themesDir   string
	currentLink string
	setTool     string
	installTool string
	store       *cache.Store
}

// New creates a Service. currentLink is the symlink whose target names the
// active theme; setTool and installTool are the external executables.
func New(themesDir, currentLink, setTool, installTool string, store *cache.Store) *Service {
	return &Service{
		themesDir:   themesDir,
		currentLink: currentLink,
		setTool:     setTool,
		installTool: installTool,
		store:       store,
	}
}

// ThemesDir returns the root of the local theme tree.
func (s *Service) ThemesDir() string {
	return s.themesDir
}

// Dir returns the directory a theme would occupy.
func (s *Service) Dir(name string) string {
	return filepath.Join(s.themesDir, name)
}

// Current returns the active theme name, or "" when none can be resolved.
func (s *Service) Current() string {
	target, err := filepath.EvalSymlinks(s.currentLink)
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}

// List returns all installed themes with their metadata, sorted by name.
func (s *Service) List() ([]model.Theme, error) {
	entries, err := os.ReadDir(s.themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read themes dir: %w", err)
	}

	current := s.Current()
	themes := make([]model.Theme, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		_, hasPreview := preview.Find(s.Dir(name))
		themes = append(themes, model.Theme{
			Name:       name,
			HasPreview: hasPreview,
			IsCurrent:  name == current,
			Mode:       registry.Mode(name),
			Cached:     s.store.Has(name, true),
		})
	}

	sort.Slice(themes, func(i, j int) bool { return themes[i].Name < themes[j].Name })
	return themes, nil
}

// Apply switches the desktop to the named theme via the external set tool
// and then patches deprecated syntax in the theme's hyprland.conf.
func (s *Service) Apply(ctx context.Context, name string) error {
	if _, err := os.Stat(s.Dir(name)); err != nil {
		return fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}

	if err := runTool(ctx, applyTimeout, s.setTool, name); err != nil {
		return fmt.Errorf("apply theme: %w", err)
	}

	conf := filepath.Join(filepath.Dir(s.currentLink), "theme", "hyprland.conf")
	if err := PatchHyprlandConf(conf); err != nil && !os.IsNotExist(err) {
		// A theme without the file is fine; a failed rewrite is not.
		return fmt.Errorf("patch hyprland.conf: %w", err)
	}
	return nil
}

// Install clones and applies a theme via the external install tool.
func (s *Service) Install(ctx context.Context, url string) error {
	if err := runTool(ctx, installTimeout, s.installTool, url); err != nil {
		return fmt.Errorf("install theme: %w", err)
	}
	return nil
}

// Delete removes an installed theme's directory. The active theme is
// protected; cached previews are not removed.
func (s *Service) Delete(name string) error {
	dir := s.Dir(name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	if name == s.Current() {
		return ErrThemeActive
	}
	return os.RemoveAll(dir)
}
