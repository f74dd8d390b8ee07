// Package fetch locates and downloads theme preview images from source
// repositories, probing a fixed candidate list before falling back to the
// hosting service's directory-listing API.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"themeplane/cache"
	"themeplane/preview"
)

const (
	// requestTimeout bounds each individual network call.
	requestTimeout = 15 * time.Second

	// minBodySize rejects HTML error pages and placeholder redirects
	// served with a 200 status.
	minBodySize = 1000

	// maxBodySize caps how much of a response is read.
	maxBodySize = 32 << 20

	defaultRawBase = "https://raw.githubusercontent.com"
)

// branches are tried in priority order: the primary branch name first,
// then the legacy default.
var branches = []string{"main", "master"}

// candidateFiles are root-level preview filenames, in priority order.
var candidateFiles = []string{
	"preview.png", "preview.jpg", "preview.jpeg",
	"theme.png", "theme.jpg",
	"screenshot.png", "screenshot.jpg",
	"preview-1.png", "preview1.png",
}

var imageSuffixes = []string{".png", ".jpg", ".jpeg", ".webp"}

var repoURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseRepoURL extracts the owner and repository from a GitHub HTTPS URL.
func ParseRepoURL(repoURL string) (owner, repo string, ok bool) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(repoURL))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// RawPreviewURL returns the main-branch preview.png raw URL for a repo,
// used by the front end before a preview has been cached. Returns "" for
// URLs that do not match the expected pattern.
func RawPreviewURL(repoURL string) string {
	owner, repo, ok := ParseRepoURL(repoURL)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/main/preview.png", defaultRawBase, owner, repo)
}

// Fetcher downloads remote previews into the cache store.
type Fetcher struct {
	httpc   *http.Client
	gh      *github.Client
	limiter *rate.Limiter
	store   *cache.Store
	rawBase string
	timeout time.Duration
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the raw-content HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.httpc = c }
}

// WithRawBase points raw-content downloads at a different host.
func WithRawBase(base string) Option {
	return func(f *Fetcher) { f.rawBase = strings.TrimSuffix(base, "/") }
}

// WithAPIBase points directory-listing API calls at a different host.
func WithAPIBase(base string) Option {
	return func(f *Fetcher) {
		u, err := url.Parse(strings.TrimSuffix(base, "/") + "/")
		if err == nil {
			f.gh.BaseURL = u
		}
	}
}

// New creates a Fetcher writing into store. token optionally authenticates
// directory-listing API calls; raw-content downloads are always anonymous.
func New(store *cache.Store, token string, opts ...Option) *Fetcher {
	var apiClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		apiClient = oauth2.NewClient(context.Background(), ts)
	}

	f := &Fetcher{
		httpc:   &http.Client{Timeout: requestTimeout},
		gh:      github.NewClient(apiClient),
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
		store:   store,
		rawBase: defaultRawBase,
		timeout: requestTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch tries to locate, download, and cache a preview for a registry
// theme. Candidates are probed sequentially and errors on one candidate
// never abort the rest; false means every candidate was exhausted.
func (f *Fetcher) Fetch(ctx context.Context, name, repoURL string) bool {
	owner, repo, ok := ParseRepoURL(repoURL)
	if !ok {
		log.Printf("[fetch] %s: unsupported repo url %q", name, repoURL)
		return false
	}

	dst := f.store.Path(name, false)
	base := fmt.Sprintf("%s/%s/%s", f.rawBase, owner, repo)

	for _, branch := range branches {
		for _, file := range candidateFiles {
			data, ok := f.download(ctx, fmt.Sprintf("%s/%s/%s", base, branch, file))
			if !ok {
				continue
			}
			if err := preview.Normalize(data, dst); err != nil {
				continue
			}
			return true
		}
	}

	// No root-level preview; list the backgrounds directory and take the
	// first image in it.
	for _, branch := range branches {
		entry, ok := f.firstBackground(ctx, owner, repo, branch)
		if !ok {
			continue
		}
		data, ok := f.download(ctx, fmt.Sprintf("%s/%s/backgrounds/%s", base, branch, entry))
		if !ok {
			continue
		}
		if err := preview.Normalize(data, dst); err != nil {
			continue
		}
		return true
	}

	return false
}

func (f *Fetcher) firstBackground(ctx context.Context, owner, repo, branch string) (string, bool) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", false
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := &github.RepositoryContentGetOptions{Ref: branch}
	_, dir, _, err := f.gh.Repositories.GetContents(reqCtx, owner, repo, "backgrounds", opts)
	if err != nil || dir == nil {
		return "", false
	}

	for _, entry := range dir {
		name := entry.GetName()
		if hasImageSuffix(name) {
			// Only the first image is ever tried.
			return name, true
		}
	}
	return "", false
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false
	}
	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil || len(data) <= minBodySize {
		return nil, false
	}
	return data, true
}

func hasImageSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
