package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/idilettant/seoaudit/internal/cache"
	"github.com/idilettant/seoaudit/internal/checks"
	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/urlutil"
)

// CrawlRequest describes one site crawl. Seeds are extra same-host URLs queued
// after the start URL. MaxPages <= 0 uses the Service default. Performance
// requests external scores for the start URL when a Scorer is configured.
// RunID tags log lines; an empty RunID gets a random one.
type CrawlRequest struct {
	URL         string
	Seeds       []string
	MaxPages    int
	Performance bool
	RunID       string
}

// Crawl audits the start URL and the same-host pages reachable from it,
// breadth first, two pages at a time, until the queue empties or the page
// budget is spent. Failed pages are kept in the report, including pages the
// crawl stopped mid-fetch. When the crawl deadline passes the partial report
// is returned with a crawl-timeout finding; when ctx is cancelled the partial
// report is returned together with ctx.Err().
func (s *Session) Crawl(ctx context.Context, req CrawlRequest, sink Sink) (*SiteCrawlReport, error) {
	if err := s.active(); err != nil {
		return nil, err
	}

	return s.svc.crawl(ctx, req, newLockedSink(sink), nil)
}

var (
	errCrawlDeadline  = errors.New("crawl deadline exceeded")
	errCrawlCancelled = errors.New("crawl cancelled")
)

type crawlRun struct {
	svc        *Service
	start      *url.URL
	homepage   string
	maxPages   int
	seen       *cache.Cache[struct{}]
	queue      []string
	sink       *lockedSink
	log        *slog.Logger
	lighthouse *Lighthouse
	perf       []Finding
	stopped    map[string]bool
}

func (s *Service) crawl(ctx context.Context, req CrawlRequest, sink *lockedSink, infra []Finding) (*SiteCrawlReport, error) {
	start, err := urlutil.ParseAbsolute(req.URL)
	if err != nil {
		return nil, fmt.Errorf("crawl %q: %w", req.URL, err)
	}

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = s.opts.MaxPages
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	run := &crawlRun{
		svc:      s,
		start:    start,
		homepage: start.String(),
		maxPages: maxPages,
		seen:     cache.New[struct{}](),
		stopped:  map[string]bool{},
		sink:     sink,
		log:      s.log.With("run_id", runID, "url", start.String()),
	}

	run.enqueue(run.homepage)
	for _, seed := range req.Seeds {
		if normalized, ok := urlutil.Resolve(start, seed); ok {
			run.enqueue(normalized)
		}
	}

	crawlCtx, cancel := context.WithTimeout(ctx, s.opts.CrawlTimeout)
	defer cancel()

	if req.Performance && s.opts.Scorer != nil {
		run.performance(crawlCtx)
	}

	pages := run.traverse(crawlCtx)

	siteFindings := append([]Finding{}, infra...)
	siteFindings = append(siteFindings, checks.SiteLevel(run.sitePages(pages))...)

	switch {
	case ctx.Err() != nil:
		run.log.Warn("crawl cancelled", "pages", len(pages), "error", ctx.Err())
	case crawlCtx.Err() != nil:
		siteFindings = append(siteFindings, finding.Info(
			"crawl-timeout",
			0,
			fmt.Sprintf("Crawl stopped after %s with %d pages audited.", s.opts.CrawlTimeout, len(pages)),
			"Lower the page budget or audit the remaining sections separately.",
		))
	}

	report := s.siteReport(start.String(), pages, siteFindings)
	report.Lighthouse = run.lighthouse

	run.log.Info("crawl finished", "pages", len(report.Pages), "score", report.Score)

	if ctx.Err() != nil {
		return report, ctx.Err()
	}

	return report, nil
}

// performance fetches the homepage scores before any page is crawled.
func (r *crawlRun) performance(ctx context.Context) {
	scores, err := r.svc.opts.Scorer.Scores(ctx, r.homepage)
	if err != nil {
		r.log.Warn("performance scores unavailable", "error", err)
		scores = nil
	}

	r.lighthouse = scores
	r.perf = checks.Performance(scores, err)
}

func (r *crawlRun) traverse(ctx context.Context) []CrawlResult {
	pages := []CrawlResult{}

	for len(r.queue) > 0 && len(pages) < r.maxPages {
		if ctx.Err() != nil {
			break
		}

		n := min(batchSize, len(r.queue), r.maxPages-len(pages))
		batch := r.queue[:n]
		r.queue = r.queue[n:]

		outcomes := make([]pageOutcome, n)

		var group errgroup.Group
		group.SetLimit(batchSize)

		for i, pageURL := range batch {
			r.sink.Progress(Progress{
				PagesAudited:    len(pages) + i + 1,
				TotalDiscovered: r.seen.Len(),
				CurrentURL:      pageURL,
			})
			r.log.Debug("auditing page", "page", pageURL)

			group.Go(func() error {
				outcome := r.auditPage(ctx, pageURL)
				if interrupted(ctx, outcome.err) {
					outcome = r.svc.failed(pageURL, 0, stopReason(ctx))
					outcome.stopped = true
				}

				outcomes[i] = outcome
				r.sink.PageResult(outcome.result)

				return nil
			})
		}

		_ = group.Wait()

		for _, outcome := range outcomes {
			pages = append(pages, outcome.result)
			if outcome.stopped {
				r.stopped[outcome.result.URL] = true
				continue
			}

			r.discover(outcome)
		}
	}

	return pages
}

func (r *crawlRun) auditPage(ctx context.Context, pageURL string) pageOutcome {
	outcome := r.svc.auditURL(ctx, pageURL)
	if outcome.err != nil {
		r.log.Warn("page failed", "page", pageURL, "status", outcome.result.Status, "error", outcome.err)
	}

	if pageURL == r.homepage && r.perf != nil {
		outcome.result.Lighthouse = r.lighthouse
		if outcome.err == nil {
			outcome.result.PageReport = r.svc.pageReport(pageURL, append(outcome.result.Checks, r.perf...))
		}
	}

	return outcome
}

// discover queues the same-host links of a fetched page.
func (r *crawlRun) discover(outcome pageOutcome) {
	if outcome.doc == nil {
		return
	}

	if outcome.finalURL != "" && urlutil.SameHost(r.start, outcome.finalURL) {
		r.seen.SetIfAbsent(outcome.finalURL, struct{}{})
	}

	for _, href := range outcome.doc.Links {
		link, ok := urlutil.Resolve(outcome.doc.Base, href)
		if !ok {
			continue
		}

		r.enqueue(link)
	}
}

// enqueue adds a normalized URL unless it is off-host, ignored, or already seen.
func (r *crawlRun) enqueue(link string) {
	if !urlutil.SameHost(r.start, link) || urlutil.MatchAny(r.svc.opts.IgnorePatterns, link) {
		return
	}

	if r.seen.SetIfAbsent(link, struct{}{}) {
		r.queue = append(r.queue, link)
	}
}

// interrupted reports a page whose fetch was cut short by the crawl context
// rather than failing on its own.
func interrupted(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func stopReason(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errCrawlDeadline
	}

	return errCrawlCancelled
}

// sitePages summarizes the pages for the cross-page checks. Pages the crawl
// stopped are left out; the crawl-timeout finding covers them.
func (r *crawlRun) sitePages(pages []CrawlResult) []checks.SitePage {
	out := make([]checks.SitePage, 0, len(pages))
	for _, page := range pages {
		if r.stopped[page.URL] {
			continue
		}

		out = append(out, checks.SitePage{
			URL:            page.URL,
			Status:         page.Status,
			Failed:         page.Failed(),
			Title:          page.Title,
			HasTitle:       page.Title != "",
			Description:    page.Description,
			HasDescription: page.Description != "",
			H1Count:        page.H1Count,
		})
	}

	return out
}

func (s *Service) siteReport(startURL string, pages []CrawlResult, siteFindings []Finding) *SiteCrawlReport {
	scores := []int{}
	total := finding.Summary{}

	for _, page := range pages {
		total = total.Add(finding.Summarize(page.Checks))
		if !page.Failed() {
			scores = append(scores, page.Score)
		}
	}

	total = total.Add(finding.Summarize(siteFindings))

	return &SiteCrawlReport{
		URL:             startURL,
		Score:           finding.SiteScore(scores, siteFindings),
		Pages:           pages,
		SiteLevelChecks: siteFindings,
		CriticalCount:   total.CriticalCount,
		WarningCount:    total.WarningCount,
		PassedCount:     total.PassedCount,
		Timestamp:       s.timestamp(),
	}
}

func isNotFound(page CrawlResult) bool {
	return page.Status == http.StatusNotFound
}
