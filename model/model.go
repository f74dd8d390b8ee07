package model

// Theme describes a locally installed theme.
type Theme struct {
	Name       string `json:"name"`
	HasPreview bool   `json:"has_preview"`
	IsCurrent  bool   `json:"is_current"`
	Mode       string `json:"mode"`
	Cached     bool   `json:"cached"`
}

// AvailableTheme describes a registry theme that is not installed locally.
type AvailableTheme struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Mode       string `json:"mode"`
	PreviewURL string `json:"preview_url,omitempty"`
	Cached     bool   `json:"cached"`
}

// SyncResults tallies the outcome of a bulk cache run.
type SyncResults struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// ApplyRequest is the body of POST /api/themes/apply.
type ApplyRequest struct {
	Name string `json:"name"`
}

// InstallRequest is the body of POST /api/themes/install. URL is optional;
// when empty the registry URL for Name is used.
type InstallRequest struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// SyncEventType identifies a sync progress event.
type SyncEventType string

const (
	SyncStarted   SyncEventType = "sync_started"
	SyncTheme     SyncEventType = "sync_theme"
	SyncCompleted SyncEventType = "sync_completed"
)

// SyncEvent is broadcast to websocket clients as a bulk run progresses.
type SyncEvent struct {
	Type    SyncEventType `json:"type"`
	Run     string        `json:"run"`
	Theme   string        `json:"theme,omitempty"`
	Outcome string        `json:"outcome,omitempty"`
	Results *SyncResults  `json:"results,omitempty"`
}
