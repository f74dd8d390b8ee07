package syncer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"themeplane/cache"
	"themeplane/model"
)

func writeThemePreview(t *testing.T, themesDir, name, file string) {
	t.Helper()
	dir := filepath.Join(themesDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 4), uint8(y * 5), 99, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), buf.Bytes(), 0o644))
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	succeed map[string]bool
	block   chan struct{} // when set, Fetch waits until closed
	started chan struct{} // signalled once per Fetch entry
}

func (f *fakeFetcher) Fetch(ctx context.Context, name, url string) bool {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.succeed == nil || f.succeed[name]
}

func (f *fakeFetcher) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newSyncer(t *testing.T, fetcher RemoteFetcher, registry map[string]string) (*Syncer, string, *cache.Store) {
	t.Helper()
	themesDir := t.TempDir()
	store := cache.New(t.TempDir())
	require.NoError(t, store.EnsureDir())
	return New(themesDir, store, fetcher, registry), themesDir, store
}

func TestCacheInstalled(t *testing.T) {
	s, themesDir, store := newSyncer(t, &fakeFetcher{}, nil)
	writeThemePreview(t, themesDir, "alpha", "preview.png")
	writeThemePreview(t, themesDir, "beta", "theme.png")
	// No preview at all counts as failed.
	require.NoError(t, os.MkdirAll(filepath.Join(themesDir, "gamma"), 0o755))
	// Stray files in the themes dir are not themes.
	require.NoError(t, os.WriteFile(filepath.Join(themesDir, "notes.txt"), []byte("x"), 0o644))

	results, err := s.CacheInstalled()
	require.NoError(t, err)
	require.Equal(t, model.SyncResults{Success: 2, Failed: 1, Skipped: 0}, results)
	require.True(t, store.Has("alpha", true))
	require.True(t, store.Has("beta", true))
	require.False(t, store.Has("gamma", true))
}

func TestCacheInstalledIdempotent(t *testing.T) {
	s, themesDir, _ := newSyncer(t, &fakeFetcher{}, nil)
	writeThemePreview(t, themesDir, "alpha", "preview.png")
	writeThemePreview(t, themesDir, "beta", "preview.png")

	first, err := s.CacheInstalled()
	require.NoError(t, err)
	require.Equal(t, 2, first.Success)

	second, err := s.CacheInstalled()
	require.NoError(t, err)
	require.Equal(t, model.SyncResults{Success: 0, Failed: 0, Skipped: 2}, second)
}

func TestCacheInstalledMissingThemesDir(t *testing.T) {
	store := cache.New(t.TempDir())
	require.NoError(t, store.EnsureDir())
	s := New(filepath.Join(t.TempDir(), "absent"), store, &fakeFetcher{}, nil)

	results, err := s.CacheInstalled()
	require.NoError(t, err)
	require.Equal(t, model.SyncResults{}, results)
}

func TestSyncRemoteSkipsInstalledAndCached(t *testing.T) {
	registry := map[string]string{
		"installed-one": "https://github.com/o/installed-one",
		"cached-one":    "https://github.com/o/cached-one",
		"fresh-one":     "https://github.com/o/fresh-one",
	}
	fetcher := &fakeFetcher{}
	s, themesDir, store := newSyncer(t, fetcher, registry)

	require.NoError(t, os.MkdirAll(filepath.Join(themesDir, "installed-one"), 0o755))
	require.NoError(t, os.WriteFile(store.Path("cached-one", false), []byte("img"), 0o644))

	results, err := s.SyncRemote(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, model.SyncResults{Success: 1, Failed: 0, Skipped: 2}, results)
	require.Equal(t, []string{"fresh-one"}, fetcher.called())
}

func TestSyncRemoteForceRefetchesCached(t *testing.T) {
	registry := map[string]string{
		"cached-one": "https://github.com/o/cached-one",
		"fresh-one":  "https://github.com/o/fresh-one",
	}
	fetcher := &fakeFetcher{}
	s, _, store := newSyncer(t, fetcher, registry)
	require.NoError(t, os.WriteFile(store.Path("cached-one", false), []byte("img"), 0o644))

	results, err := s.SyncRemote(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 2, results.Success)
	// Sorted registry order.
	require.Equal(t, []string{"cached-one", "fresh-one"}, fetcher.called())
}

func TestSyncRemoteTalliesFailures(t *testing.T) {
	registry := map[string]string{
		"good": "https://github.com/o/good",
		"bad":  "https://github.com/o/bad",
	}
	fetcher := &fakeFetcher{succeed: map[string]bool{"good": true}}
	s, _, _ := newSyncer(t, fetcher, registry)

	results, err := s.SyncRemote(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, model.SyncResults{Success: 1, Failed: 1, Skipped: 0}, results)
}

func TestSyncRemoteGuard(t *testing.T) {
	registry := map[string]string{"slow": "https://github.com/o/slow"}
	fetcher := &fakeFetcher{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s, _, _ := newSyncer(t, fetcher, registry)

	done := make(chan struct{})
	var firstErr error
	go func() {
		defer close(done)
		_, firstErr = s.SyncRemote(context.Background(), false)
	}()

	<-fetcher.started
	require.True(t, s.RemoteActive())

	// A second trigger while the first is in flight observes the running
	// run and does nothing.
	_, err := s.SyncRemote(context.Background(), false)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	close(fetcher.block)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never finished")
	}
	require.NoError(t, firstErr)

	// The guard recovers once the run completes.
	require.False(t, s.RemoteActive())
	_, err = s.SyncRemote(context.Background(), false)
	require.NoError(t, err)
}

func TestInstalledGuard(t *testing.T) {
	s, _, _ := newSyncer(t, &fakeFetcher{}, nil)

	s.mu.Lock()
	s.installedActive = true
	s.mu.Unlock()

	_, err := s.CacheInstalled()
	require.ErrorIs(t, err, ErrAlreadyRunning)

	s.mu.Lock()
	s.installedActive = false
	s.mu.Unlock()

	_, err = s.CacheInstalled()
	require.NoError(t, err)
}

func TestSyncEvents(t *testing.T) {
	registry := map[string]string{"good": "https://github.com/o/good"}
	s, themesDir, _ := newSyncer(t, &fakeFetcher{}, registry)
	writeThemePreview(t, themesDir, "alpha", "preview.png")

	var mu sync.Mutex
	var events []model.SyncEvent
	s.SetOnEvent(func(ev model.SyncEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	_, err := s.CacheInstalled()
	require.NoError(t, err)
	_, err = s.SyncRemote(context.Background(), false)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 6)
	require.Equal(t, model.SyncStarted, events[0].Type)
	require.Equal(t, "installed", events[0].Run)
	require.Equal(t, model.SyncTheme, events[1].Type)
	require.Equal(t, "alpha", events[1].Theme)
	require.Equal(t, "success", events[1].Outcome)
	require.Equal(t, model.SyncCompleted, events[2].Type)
	require.NotNil(t, events[2].Results)
	require.Equal(t, "remote", events[3].Run)
	require.Equal(t, model.SyncCompleted, events[5].Type)
}
