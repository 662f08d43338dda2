package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"dayflow/internal/config"
	"dayflow/internal/ics"
	appLog "dayflow/internal/log"
	"dayflow/internal/model"
	"dayflow/internal/plan"
	"dayflow/internal/svg"
	"dayflow/internal/timeline"
)

// layoutCacheTTL bounds how stale a served layout can be; the cron refresh
// is still the primary invalidation mechanism.
const layoutCacheTTL = 30 * time.Second

// Server exposes the timeline as JSON geometry and rendered SVG.
type Server struct {
	cfg         *config.Config
	cacheDir    string
	previewPath string
	mux         *http.ServeMux

	// Computed layouts are cached per (day, participants) so a browser
	// refresh does not redo ICS fetch/parse/expand work.
	layoutMu    sync.RWMutex
	layoutCache map[string]*layoutEntry
}

type layoutEntry struct {
	layout    timeline.Layout
	selected  []model.Participant
	updatedAt time.Time
}

// NewServer constructs a Server. cacheDir is the ICS disk-cache root;
// previewPath is where the capture step writes the PNG preview.
func NewServer(cfg *config.Config, cacheDir, previewPath string) *Server {
	s := &Server{
		cfg:         cfg,
		cacheDir:    cacheDir,
		previewPath: previewPath,
		mux:         http.NewServeMux(),
		layoutCache: make(map[string]*layoutEntry),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler, with basic auth applied when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware guards every endpoint except /health.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="dayflow", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer runs ListenAndServe on cfg.Listen.
func StartServer(_ context.Context, cfg *config.Config, cacheDir, previewPath string) error {
	s := NewServer(cfg, cacheDir, previewPath)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/timeline", s.handleTimelineJSON)
	s.mux.HandleFunc("/api/drop", s.handleDrop)
	s.mux.HandleFunc("/api/toggle", s.handleToggle)
	s.mux.HandleFunc("/timeline.svg", s.handleTimelineSVG)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePreview serves the last captured PNG preview from disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.previewPath)
}

// handleTimelineJSON returns the computed layout geometry.
//
// GET /api/timeline?day=2026-08-31&participants=alice,bob
//   - day:          the date to lay out (default: today in the display zone)
//   - participants: comma-separated participant ids (default: all configured)
func (s *Server) handleTimelineJSON(w http.ResponseWriter, r *http.Request) {
	layout, _, err := s.timelineForRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

// handleTimelineSVG returns the rendered SVG document for the same query
// parameters as /api/timeline.
func (s *Server) handleTimelineSVG(w http.ResponseWriter, r *http.Request) {
	layout, selected, err := s.timelineForRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg.Render(layout, selected)))
}

func (s *Server) timelineForRequest(r *http.Request) (timeline.Layout, []model.Participant, error) {
	q := r.URL.Query()

	loc := resolveLocationOrLocal(s.cfg.Timezone)
	day := time.Now().In(loc)
	if v := q.Get("day"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return timeline.Layout{}, nil, errors.New("invalid day, want YYYY-MM-DD")
		}
		day = parsed
	}

	selected := s.selectParticipants(q.Get("participants"))

	key := day.Format("2006-01-02") + "|" + q.Get("participants")
	now := time.Now()

	s.layoutMu.RLock()
	entry := s.layoutCache[key]
	s.layoutMu.RUnlock()
	if entry != nil && now.Sub(entry.updatedAt) < layoutCacheTTL {
		return entry.layout, entry.selected, nil
	}

	layout, err := s.buildLayout(r.Context(), day, selected)
	if err != nil {
		return timeline.Layout{}, nil, err
	}

	s.layoutMu.Lock()
	s.layoutCache[key] = &layoutEntry{layout: layout, selected: selected, updatedAt: time.Now()}
	s.layoutMu.Unlock()

	return layout, selected, nil
}

func (s *Server) selectParticipants(raw string) []model.Participant {
	if raw == "" {
		return s.cfg.Participants
	}
	wanted := make(map[string]bool)
	order := make([]string, 0)
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" && !wanted[id] {
			wanted[id] = true
			order = append(order, id)
		}
	}
	byID := make(map[string]model.Participant, len(s.cfg.Participants))
	for _, p := range s.cfg.Participants {
		byID[p.ID] = p
	}
	// Lane order follows the requested order; unknown ids are dropped.
	selected := make([]model.Participant, 0, len(order))
	for _, id := range order {
		if p, ok := byID[id]; ok {
			selected = append(selected, p)
		}
	}
	return selected
}

// buildLayout gathers the day's items from the plan file and the ICS feeds
// and runs the layout engine over them.
func (s *Server) buildLayout(ctx context.Context, day time.Time, selected []model.Participant) (timeline.Layout, error) {
	p, err := plan.Load(s.cfg.PlanPath)
	if err != nil {
		appLog.Error("timeline: plan load failed", err, "path", s.cfg.PlanPath)
		return timeline.Layout{}, errors.New("failed to load plan")
	}

	events, err := s.fetchEvents(ctx, day)
	if err != nil {
		// Events are best effort; the rest of the timeline still renders.
		appLog.Error("timeline: event fetch failed", err)
	}

	opts := timeline.Options{
		DayStartMinute: s.cfg.DayStartMinute(),
		DayEndMinute:   s.cfg.DayEndMinute(),
		PixelsPerHour:  s.cfg.PixelsPerHour,
		Width:          float64(s.cfg.Width),
		Margins:        timeline.Margins{Left: 48, Right: 16},
	}

	return timeline.Compute(p.Tasks, events, p.Routines, day, selected, opts), nil
}

func (s *Server) fetchEvents(ctx context.Context, day time.Time) ([]model.Event, error) {
	sources := make([]ics.Source, 0, len(s.cfg.ICS))
	for _, c := range s.cfg.ICS {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = c.Name
		}
		if id == "" {
			id = c.URL
		}
		sources = append(sources, ics.Source{ID: id, URL: c.URL})
	}
	if len(sources) == 0 {
		return nil, nil
	}

	fetcher := ics.NewFetcher(s.cacheDir)
	results, fetchErrs := fetcher.FetchAll(ctx, sources)
	if len(fetchErrs) > 0 {
		appLog.Error("timeline: one or more ICS fetches failed", errorsAggregate(fetchErrs), "error_count", len(fetchErrs))
	}

	parsed := make([]ics.ParsedEvent, 0)
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			continue
		}
		parsed = append(parsed, events...)
	}

	loc := day.Location()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return ics.ExpandOccurrences(parsed, ics.ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      dayStart,
		RangeEnd:        dayStart.Add(24 * time.Hour),
		Participants:    s.cfg.Participants,
	})
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
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

func errorsAggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	for i, e := range errs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
