// Package syncer orchestrates bulk preview caching: a local pass over the
// installed themes directory and a network pass over the theme registry.
// Each run class admits at most one concurrent execution.
package syncer

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"themeplane/cache"
	"themeplane/model"
	"themeplane/preview"
)

// ErrAlreadyRunning is returned when a run of the same class is active.
// Callers treat it as an observation, not a failure; the active run keeps
// going and nothing is queued.
var ErrAlreadyRunning = errors.New("already running")

// RemoteFetcher downloads and caches a preview for a registry theme.
type RemoteFetcher interface {
	Fetch(ctx context.Context, name, repoURL string) bool
}

// Syncer owns the run-state flags and drives both run classes.
type Syncer struct {
	themesDir string
	store     *cache.Store
	fetcher   RemoteFetcher
	registry  map[string]string

	mu              sync.Mutex
	remoteActive    bool
	installedActive bool
	onEvent         func(model.SyncEvent)
}

// New creates a Syncer over the given themes directory and registry.
func New(themesDir string, store *cache.Store, fetcher RemoteFetcher, registry map[string]string) *Syncer {
	return &Syncer{
		themesDir: themesDir,
		store:     store,
		fetcher:   fetcher,
		registry:  registry,
	}
}

// SetOnEvent installs a hook notified as runs progress. Used to feed the
// websocket broadcast; may be left unset.
func (s *Syncer) SetOnEvent(fn func(model.SyncEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// RemoteActive reports whether a remote sync run is in flight.
func (s *Syncer) RemoteActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteActive
}

// tryBegin flips a run flag on, or reports that it already was.
func (s *Syncer) tryBegin(flag *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *flag {
		return false
	}
	*flag = true
	return true
}

func (s *Syncer) end(flag *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*flag = false
}

func (s *Syncer) emit(ev model.SyncEvent) {
	s.mu.Lock()
	fn := s.onEvent
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// CacheInstalled renders a cached preview for every installed theme that
// does not have one yet. It is synchronous and touches only local disk.
func (s *Syncer) CacheInstalled() (model.SyncResults, error) {
	if !s.tryBegin(&s.installedActive) {
		return model.SyncResults{}, ErrAlreadyRunning
	}
	defer s.end(&s.installedActive)

	var results model.SyncResults
	s.emit(model.SyncEvent{Type: model.SyncStarted, Run: "installed"})

	entries, err := os.ReadDir(s.themesDir)
	if err != nil && !os.IsNotExist(err) {
		return results, err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()

		if s.store.Has(name, true) {
			results.Skipped++
			continue
		}

		outcome := "failed"
		if s.cacheInstalledTheme(name) {
			results.Success++
			outcome = "success"
		} else {
			results.Failed++
		}
		s.emit(model.SyncEvent{Type: model.SyncTheme, Run: "installed", Theme: name, Outcome: outcome})
	}

	log.Printf("[syncer] installed cache pass: %d cached, %d failed, %d skipped",
		results.Success, results.Failed, results.Skipped)
	s.emit(model.SyncEvent{Type: model.SyncCompleted, Run: "installed", Results: &results})
	return results, nil
}

func (s *Syncer) cacheInstalledTheme(name string) bool {
	src, ok := preview.Find(filepath.Join(s.themesDir, name))
	if !ok {
		return false
	}
	return preview.NormalizeFile(src, s.store.Path(name, true)) == nil
}

// SyncRemote walks the registry and caches previews for themes that are
// neither installed locally nor already cached, unless force re-fetches
// cached ones too. Themes are processed in sorted registry order, one
// network candidate at a time.
func (s *Syncer) SyncRemote(ctx context.Context, force bool) (model.SyncResults, error) {
	if !s.tryBegin(&s.remoteActive) {
		return model.SyncResults{}, ErrAlreadyRunning
	}
	defer s.end(&s.remoteActive)

	var results model.SyncResults
	s.emit(model.SyncEvent{Type: model.SyncStarted, Run: "remote"})

	installed := s.installedSet()

	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		// Installed copies are handled by the installed pass.
		if installed[name] {
			results.Skipped++
			continue
		}
		if s.store.Has(name, false) && !force {
			results.Skipped++
			continue
		}

		outcome := "failed"
		if s.fetcher.Fetch(ctx, name, s.registry[name]) {
			results.Success++
			outcome = "success"
		} else {
			results.Failed++
		}
		s.emit(model.SyncEvent{Type: model.SyncTheme, Run: "remote", Theme: name, Outcome: outcome})
	}

	log.Printf("[syncer] remote sync pass: %d cached, %d failed, %d skipped",
		results.Success, results.Failed, results.Skipped)
	s.emit(model.SyncEvent{Type: model.SyncCompleted, Run: "remote", Results: &results})
	return results, nil
}

func (s *Syncer) installedSet() map[string]bool {
	installed := make(map[string]bool)
	entries, err := os.ReadDir(s.themesDir)
	if err != nil {
		return installed
	}
	for _, e := range entries {
		if e.IsDir() {
			installed[e.Name()] = true
		}
	}
	return installed
}
