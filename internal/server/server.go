// Package server exposes audits over HTTP: a synchronous JSON endpoint for a
// single page and server-sent event streams for crawls and pre-launch audits.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idilettant/seoaudit/audit"
	seolog "github.com/idilettant/seoaudit/internal/log"
	"github.com/idilettant/seoaudit/internal/stream"
	"github.com/idilettant/seoaudit/internal/urlutil"
)

const (
	// MaxPagesLimit caps the maxPages query parameter.
	MaxPagesLimit = 500

	retryAfterSeconds = 5
	shutdownTimeout   = 10 * time.Second
)

var (
	errMissingURL      = errors.New("url is required")
	errInvalidMaxPages = fmt.Errorf("maxPages must be an integer between 1 and %d", MaxPagesLimit)
)

// Server serves the audit API.
type Server struct {
	svc *audit.Service
	log *slog.Logger
}

// New creates a Server backed by svc.
func New(svc *audit.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = seolog.Discard()
	}

	return &Server{svc: svc, log: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/audit", s.handleAudit)
	mux.HandleFunc("GET /api/crawl", s.handleCrawl)
	mux.HandleFunc("GET /api/prelaunch", s.handlePreLaunch)

	return AccessLog(s.log)(SecurityHeaders(mux))
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	target, err := targetURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, ok := s.begin(w)
	if !ok {
		return
	}
	defer session.Close()

	report, err := session.AuditPage(r.Context(), target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	req, ok := s.crawlRequest(w, r)
	if !ok {
		return
	}

	req.Performance = r.URL.Query().Get("lighthouse") == "true"

	s.streamRun(w, r, "starting-crawl", req, func(ctx context.Context, session *audit.Session, sink audit.Sink) (audit.Report, error) {
		return session.Crawl(ctx, req, sink)
	})
}

func (s *Server) handlePreLaunch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.crawlRequest(w, r)
	if !ok {
		return
	}

	s.streamRun(w, r, "starting-prelaunch", req, func(ctx context.Context, session *audit.Session, sink audit.Sink) (audit.Report, error) {
		return session.PreLaunch(ctx, req, sink)
	})
}

type runFunc func(ctx context.Context, session *audit.Session, sink audit.Sink) (audit.Report, error)

type startEvent struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	MaxPages int    `json:"maxPages"`
}

type errorEvent struct {
	Message string `json:"message"`
}

// streamRun claims the guard before any stream bytes are written so a busy
// server can still answer 429.
func (s *Server) streamRun(w http.ResponseWriter, r *http.Request, startName string, req audit.CrawlRequest, run runFunc) {
	session, ok := s.begin(w)
	if !ok {
		return
	}
	defer session.Close()

	events, err := stream.New(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	_ = events.Send(startName, startEvent{ID: req.RunID, URL: req.URL, MaxPages: req.MaxPages})

	report, err := run(r.Context(), session, &sseSink{events: events})

	switch {
	case err != nil && r.Context().Err() != nil:
		s.log.Info("client disconnected", "run_id", req.RunID)
	case err != nil:
		_ = events.Send("error", errorEvent{Message: err.Error()})
	default:
		_ = events.Send("complete", report)
	}
}

func (s *Server) crawlRequest(w http.ResponseWriter, r *http.Request) (audit.CrawlRequest, bool) {
	target, err := targetURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return audit.CrawlRequest{}, false
	}

	maxPages, err := maxPagesParam(r, s.svc.MaxPages())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return audit.CrawlRequest{}, false
	}

	return audit.CrawlRequest{URL: target, MaxPages: maxPages, RunID: uuid.NewString()}, true
}

func (s *Server) begin(w http.ResponseWriter) (*audit.Session, bool) {
	session, err := s.svc.Begin()
	if err != nil {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		writeError(w, http.StatusTooManyRequests, err)

		return nil, false
	}

	return session, true
}

// targetURL reads the url parameter, defaulting the scheme to https.
func targetURL(r *http.Request) (string, error) {
	raw := urlutil.EnsureScheme(r.URL.Query().Get("url"))
	if raw == "" {
		return "", errMissingURL
	}

	parsed, err := urlutil.ParseAbsolute(raw)
	if err != nil {
		return "", err
	}

	return parsed.String(), nil
}

func maxPagesParam(r *http.Request, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("maxPages"))
	if raw == "" {
		return min(fallback, MaxPagesLimit), nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxPagesLimit {
		return 0, errInvalidMaxPages
	}

	return n, nil
}

// sseSink forwards crawl events to the client.
type sseSink struct {
	events *stream.Writer
}

func (s *sseSink) Progress(p audit.Progress) {
	_ = s.events.Send("progress", p)
}

func (s *sseSink) PageResult(r audit.CrawlResult) {
	_ = s.events.Send("page-result", r)
}

func (s *sseSink) Checklist(r audit.InfraReport) {
	_ = s.events.Send("prelaunch-checklist", r)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type errorResponse struct {
	Error string `json:"error"`
}
