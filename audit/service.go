// Package audit runs SEO audits: a single page, a same-host site crawl, or a
// pre-launch audit that adds robots.txt, sitemap and HTTPS checks to a crawl.
//
// A Service admits one audit at a time. Callers obtain a Session with Begin,
// run exactly one operation on it and Close it:
//
//	session, err := svc.Begin()
//	if errors.Is(err, audit.ErrAuditInProgress) {
//		// try again shortly
//	}
//	defer session.Close()
//	report, err := session.Crawl(ctx, audit.CrawlRequest{URL: "https://example.com"}, nil)
package audit

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/idilettant/seoaudit/internal/fetcher"
	"github.com/idilettant/seoaudit/internal/limiter"
	"github.com/idilettant/seoaudit/internal/urlutil"
)

var (
	// ErrAuditInProgress is returned by Begin while another session is open.
	ErrAuditInProgress = errors.New("audit in progress, try again shortly")
	// ErrInvalidURL is returned for start URLs that are not absolute http(s) URLs.
	ErrInvalidURL = urlutil.ErrInvalidURL
	// ErrSessionClosed is returned by operations on a closed Session.
	ErrSessionClosed = errors.New("audit session closed")
)

// Service owns the fetcher shared by all audits and the process-wide guard.
type Service struct {
	opts  Options
	fetch *fetcher.Fetcher
	guard *semaphore.Weighted
	log   *slog.Logger
}

// New creates a Service.
func New(opts Options) *Service {
	opts = opts.withDefaults()

	return &Service{
		opts: opts,
		fetch: fetcher.New(fetcher.Config{
			Client:       opts.HTTPClient,
			Timeout:      opts.Timeout,
			UserAgent:    opts.UserAgent,
			Limiter:      limiter.New(opts.RPS, opts.Delay, opts.Clock),
			Retries:      opts.Retries,
			RetryDelay:   opts.Delay,
			MaxBodyBytes: opts.MaxBodyBytes,
			Clock:        opts.Clock,
		}),
		guard: semaphore.NewWeighted(1),
		log:   opts.Logger,
	}
}

// MaxPages returns the configured default crawl budget.
func (s *Service) MaxPages() int {
	return s.opts.MaxPages
}

// Begin claims the guard without waiting. It fails with ErrAuditInProgress
// when another Session is open.
func (s *Service) Begin() (*Session, error) {
	if !s.guard.TryAcquire(1) {
		return nil, ErrAuditInProgress
	}

	return &Session{svc: s}, nil
}

// Session is a claim on the Service guard. Close releases it; further calls are no-ops.
type Session struct {
	svc    *Service
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

// Close releases the guard exactly once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.svc.guard.Release(1)
	})
}

func (s *Session) active() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	return nil
}

func (s *Service) timestamp() string {
	return s.opts.Clock.Now().UTC().Format(time.RFC3339)
}
