package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"monthcal/internal/config"
	appLog "monthcal/internal/log"
	"monthcal/internal/monthgrid"
	"monthcal/internal/render"
	"monthcal/internal/widget"
)

// Server exposes the complication over HTTP.
type Server struct {
	cfg      *config.Config
	provider widget.Provider
	policy   widget.RefreshPolicy
	mux      *http.ServeMux
	now      func() time.Time

	// The current snapshot is reused until the refresh policy marks it
	// stale, so repeated requests do not recompute the grid.
	entryMu    sync.RWMutex
	entryCache *entryCache
}

type entryCache struct {
	entry   widget.Entry
	staleAt time.Time
}

// NewServer constructs a new Server. A nil policy reloads at midnight in
// the configured timezone.
func NewServer(cfg *config.Config, provider widget.Provider, policy widget.RefreshPolicy) *Server {
	if policy == nil {
		loc, err := cfg.Location()
		if err != nil {
			appLog.Error("web: timezone unavailable; using local", err, "timezone", cfg.Timezone)
			loc = time.Local
		}
		policy = widget.MidnightPolicy{Location: loc}
	}
	s := &Server{
		cfg:      cfg,
		provider: provider,
		policy:   policy,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ListenAndServe listens on cfg.Listen and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Invalidate drops the cached snapshot so the next request recomputes it.
func (s *Server) Invalidate() {
	s.entryMu.Lock()
	s.entryCache = nil
	s.entryMu.Unlock()
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="monthcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/grid", s.handleGrid)
	s.mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	s.mux.HandleFunc("GET /complication", s.handleComplication)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// snapshot returns the cached entry or computes a fresh one.
func (s *Server) snapshot(ctx context.Context) (widget.Entry, time.Time, error) {
	now := s.now()

	s.entryMu.RLock()
	ec := s.entryCache
	s.entryMu.RUnlock()
	if ec != nil && (ec.staleAt.IsZero() || now.Before(ec.staleAt)) {
		return ec.entry, ec.staleAt, nil
	}

	entry, err := s.provider.Snapshot(ctx)
	if err != nil {
		return widget.Entry{}, time.Time{}, err
	}
	staleAt := s.policy.Next(entry.Date)

	s.entryMu.Lock()
	s.entryCache = &entryCache{entry: entry, staleAt: staleAt}
	s.entryMu.Unlock()

	appLog.Debug("web: snapshot recomputed", "date", entry.Date, "stale_at", staleAt)
	return entry, staleAt, nil
}

// layout reads width/height query parameters, defaulting to the display.
func (s *Server) layout(r *http.Request) monthgrid.Layout {
	q := r.URL.Query()
	return monthgrid.Layout{
		Width:     parseFloatDefault(q.Get("width"), float64(s.cfg.Display.Width)),
		Height:    parseFloatDefault(q.Get("height"), float64(s.cfg.Display.Height)),
		TitleRows: s.cfg.Titles(),
	}
}

// handleGrid returns the current entry with its layout geometry.
//
// GET /api/grid?width=184&height=224
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	entry, staleAt, err := s.snapshot(r.Context())
	if err != nil {
		s.writeModelError(w, "api grid", err)
		return
	}

	layout := s.layout(r)
	resp := newEntryDTO(entry, layout)
	resp.WeekStart = s.cfg.WeekStart
	resp.StaleAt = staleAt
	writeJSON(w, http.StatusOK, resp)
}

// handleTimeline returns freshly computed timeline entries.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	tl, err := s.provider.Timeline(r.Context(), s.policy)
	if err != nil {
		s.writeModelError(w, "api timeline", err)
		return
	}

	layout := s.layout(r)
	resp := timelineResponse{
		Entries: make([]entryDTO, 0, len(tl.Entries)),
		Reload:  tl.Reload,
	}
	for _, e := range tl.Entries {
		resp.Entries = append(resp.Entries, newEntryDTO(e, layout))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleComplication renders the HTML complication. A calendar failure
// renders the placeholder's blank fallback instead of an error page.
func (s *Server) handleComplication(w http.ResponseWriter, r *http.Request) {
	entry, _, err := s.snapshot(r.Context())
	if err != nil {
		appLog.Error("web: complication snapshot failed; rendering placeholder", err)
		entry = s.provider.Placeholder()
	}

	theme := render.Theme{
		Accent:     s.cfg.Theme.Accent,
		Neutral:    s.cfg.Theme.Neutral,
		Background: s.cfg.Theme.Background,
		Foreground: s.cfg.Theme.Foreground,
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, entry, s.layout(r), theme); err != nil {
		appLog.Error("web: render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// handlePreview serves the last captured PNG from the capture output dir.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, PreviewPath(s.cfg))
}

// PreviewPath is where the refresh pipeline writes the captured preview.
func PreviewPath(cfg *config.Config) string {
	return filepath.Join(cfg.Capture.OutputDir, "preview.png")
}

func (s *Server) writeModelError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	appLog.Error(what+" failed", err)
	if errors.Is(err, monthgrid.ErrConfiguration) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to compute grid")
}

func parseFloatDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
