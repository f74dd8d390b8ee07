package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"themeplane/cache"
	"themeplane/fetch"
	"themeplane/model"
	"themeplane/preview"
	"themeplane/registry"
	"themeplane/syncer"
	"themeplane/themes"
)

// Server wires the theme service, cache store, and sync coordinator into
// the HTTP API.
type Server struct {
	themes   *themes.Service
	store    *cache.Store
	sync     *syncer.Syncer
	ws       *WSConnectionManager
	upgrader websocket.Upgrader
}

// NewServer creates the API server.
func NewServer(svc *themes.Service, store *cache.Store, sync *syncer.Syncer) *Server {
	return &Server{
		themes: svc,
		store:  store,
		sync:   sync,
		ws:     NewWSConnectionManager(),
		upgrader: websocket.Upgrader{
			// The service binds to loopback only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Register mounts all API routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/themes", s.handleThemes)
	mux.HandleFunc("/api/themes/apply", s.handleApply)
	mux.HandleFunc("/api/themes/install", s.handleInstall)
	mux.HandleFunc("/api/themes/", s.handleThemeByName)
	mux.HandleFunc("/api/available", s.handleAvailable)
	mux.HandleFunc("/api/cache/", s.handleCachedPreview)
	mux.HandleFunc("/api/cache-installed", s.handleCacheInstalled)
	mux.HandleFunc("/api/sync-previews", s.handleSyncPreviews)
	mux.HandleFunc("/api/ws", s.handleWS)
}

// BroadcastSyncEvent pushes a sync progress event to websocket clients.
func (s *Server) BroadcastSyncEvent(ev model.SyncEvent) {
	s.ws.Broadcast(ev)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------- themes ----------

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	list, err := s.themes.List()
	if err != nil {
		http.Error(w, "failed to list themes", http.StatusInternalServerError)
		log.Printf("[api] list themes: %v", err)
		return
	}
	if list == nil {
		list = []model.Theme{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"themes":  list,
		"current": s.themes.Current(),
	})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req model.ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.themes.Apply(r.Context(), req.Name); err != nil {
		if errors.Is(err, themes.ErrThemeNotFound) {
			http.Error(w, fmt.Sprintf("Theme '%s' not found", req.Name), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Theme '%s' applied successfully", req.Name),
		"current": req.Name,
	})
}

func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req model.InstallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	url := req.URL
	if url == "" {
		url = registry.URL(req.Name)
	}
	if url == "" {
		http.Error(w, fmt.Sprintf("No URL for theme '%s'", req.Name), http.StatusBadRequest)
		return
	}

	if err := s.themes.Install(r.Context(), url); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Theme '%s' installed and applied", req.Name),
	})
}

// handleThemeByName covers DELETE /api/themes/{name} and
// GET /api/themes/{name}/preview.
func (s *Server) handleThemeByName(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/themes/")

	if r.Method == http.MethodGet && strings.HasSuffix(rest, "/preview") {
		s.serveInstalledPreview(w, r, strings.TrimSuffix(rest, "/preview"))
		return
	}
	if r.Method == http.MethodDelete {
		s.deleteTheme(w, r, rest)
		return
	}

	http.NotFound(w, r)
}

func (s *Server) serveInstalledPreview(w http.ResponseWriter, r *http.Request, name string) {
	if !validName(name) {
		http.NotFound(w, r)
		return
	}

	// Cached copy wins; the original file is the fallback.
	if s.store.Has(name, true) {
		w.Header().Set("Content-Type", "image/webp")
		http.ServeFile(w, r, s.store.Path(name, true))
		return
	}

	dir := s.themes.Dir(name)
	src, ok := preview.Find(dir)
	if !ok {
		http.Error(w, "Preview not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(src))
	http.ServeFile(w, r, src)
}

func (s *Server) deleteTheme(w http.ResponseWriter, r *http.Request, name string) {
	if !validName(name) {
		http.NotFound(w, r)
		return
	}

	err := s.themes.Delete(name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": fmt.Sprintf("Theme '%s' deleted", name),
		})
	case errors.Is(err, themes.ErrThemeNotFound):
		http.Error(w, fmt.Sprintf("Theme '%s' not found", name), http.StatusNotFound)
	case errors.Is(err, themes.ErrThemeActive):
		http.Error(w, "Cannot delete the currently active theme", http.StatusBadRequest)
	default:
		http.Error(w, "failed to delete theme", http.StatusInternalServerError)
		log.Printf("[api] delete %s: %v", name, err)
	}
}

// ---------- available / cached previews ----------

func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	installed := make(map[string]bool)
	if list, err := s.themes.List(); err == nil {
		for _, t := range list {
			installed[t.Name] = true
		}
	}

	names := registry.Names()
	available := make([]model.AvailableTheme, 0, len(names))
	for _, name := range names {
		if installed[name] {
			continue
		}
		cached := s.store.Has(name, false)
		previewURL := fetch.RawPreviewURL(registry.URL(name))
		if cached {
			previewURL = "/api/cache/" + name + "/preview"
		}
		available = append(available, model.AvailableTheme{
			Name:       name,
			URL:        registry.URL(name),
			Mode:       registry.Mode(name),
			PreviewURL: previewURL,
			Cached:     cached,
		})
	}

	sort.Slice(available, func(i, j int) bool { return available[i].Name < available[j].Name })
	writeJSON(w, http.StatusOK, map[string]any{
		"available": available,
		"count":     len(available),
	})
}

// handleCachedPreview serves GET /api/cache/{name}/preview from the
// remote-preview cache namespace.
func (s *Server) handleCachedPreview(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/cache/")
	name, okSuffix := strings.CutSuffix(rest, "/preview")
	if r.Method != http.MethodGet || !okSuffix || !validName(name) {
		http.NotFound(w, r)
		return
	}

	if !s.store.Has(name, false) {
		http.Error(w, "Cached preview not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	http.ServeFile(w, r, s.store.Path(name, false))
}

// ---------- sync ----------

func (s *Server) handleCacheInstalled(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	results, err := s.sync.CacheInstalled()
	if err != nil {
		if errors.Is(err, syncer.ErrAlreadyRunning) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "already running"})
			return
		}
		http.Error(w, "failed to cache previews", http.StatusInternalServerError)
		log.Printf("[api] cache installed: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "complete",
		"results": results,
	})
}

func (s *Server) handleSyncPreviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if s.sync.RemoteActive() {
		writeJSON(w, http.StatusOK, map[string]any{"status": "already running"})
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	// The installed pass is quick local work, done before responding; the
	// remote pass runs in the background and outlives this request.
	installedResults, err := s.sync.CacheInstalled()
	if err != nil && !errors.Is(err, syncer.ErrAlreadyRunning) {
		http.Error(w, "failed to cache previews", http.StatusInternalServerError)
		log.Printf("[api] sync previews: %v", err)
		return
	}

	go func() {
		if _, err := s.sync.SyncRemote(context.Background(), force); err != nil &&
			!errors.Is(err, syncer.ErrAlreadyRunning) {
			log.Printf("[api] remote sync: %v", err)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "started",
		"force":            force,
		"installed_cached": installedResults,
	})
}

// ---------- websocket ----------

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.ws.Add(conn)

	// Clients only listen; the read loop just notices disconnects.
	go func() {
		defer func() {
			s.ws.Remove(conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ---------- helpers ----------

func validName(name string) bool {
	return name != "" &&
		!strings.ContainsAny(name, "/\\") &&
		name != "." && name != ".." &&
		!strings.Contains(name, "..")
}

func contentTypeFor(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/png"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}
