package audit

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/idilettant/seoaudit/internal/checks"
	"github.com/idilettant/seoaudit/internal/content"
	"github.com/idilettant/seoaudit/internal/fetcher"
	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
	"github.com/idilettant/seoaudit/internal/urlutil"
)

// pageOutcome is everything one fetch-and-check pass yields.
type pageOutcome struct {
	result   CrawlResult
	doc      *parser.Document
	finalURL string
	err      error
	stopped  bool
}

// AuditPage fetches rawURL and runs every page check against it. Fetch and
// parse failures become a fetch-failed finding with score 0; only an invalid
// URL or a closed session is returned as an error.
func (s *Session) AuditPage(ctx context.Context, rawURL string) (*PageReport, error) {
	if err := s.active(); err != nil {
		return nil, err
	}

	target, err := urlutil.ParseAbsolute(rawURL)
	if err != nil {
		return nil, fmt.Errorf("audit %q: %w", rawURL, err)
	}

	outcome := s.svc.auditURL(ctx, target.String())
	if outcome.err != nil {
		s.svc.log.Warn("page audit failed", "url", target.String(), "error", outcome.err)
	}

	report := outcome.result.PageReport

	return &report, nil
}

// auditURL fetches, parses and checks one page. It never fails: errors are
// folded into the result and also returned in outcome.err.
func (s *Service) auditURL(ctx context.Context, pageURL string) pageOutcome {
	res, err := s.fetch.Fetch(ctx, pageURL)
	if err != nil {
		return s.failed(pageURL, res.StatusCode, err)
	}

	finalURL := pageURL
	if res.URL != "" {
		finalURL = res.URL
	}

	parsedURL, err := url.Parse(finalURL)
	if err != nil {
		return s.failed(pageURL, res.StatusCode, err)
	}

	doc, err := parser.ParseHTML(parsedURL, res.Body, res.ContentType)
	if err != nil {
		return s.failed(pageURL, res.StatusCode, fmt.Errorf("parse html: %w", err))
	}

	findings := checks.RunAll(doc, checks.PageChecks)
	analysis := content.Analyze(doc.Text(), len(doc.Raw))

	return pageOutcome{
		result: CrawlResult{
			PageReport:      s.pageReport(pageURL, findings),
			Status:          res.StatusCode,
			Title:           doc.SEO.Title,
			Description:     doc.SEO.Description,
			H1Count:         doc.SEO.H1Count,
			ContentAnalysis: &analysis,
		},
		doc:      doc,
		finalURL: urlutil.Normalize(finalURL),
	}
}

func (s *Service) failed(pageURL string, status int, err error) pageOutcome {
	report := s.pageReport(pageURL, []Finding{finding.FetchFailed(err.Error())})
	report.Score = 0

	var statusErr *fetcher.StatusError
	if status == 0 && errors.As(err, &statusErr) {
		status = statusErr.StatusCode
	}

	return pageOutcome{
		result: CrawlResult{
			PageReport: report,
			Status:     status,
			Error:      err.Error(),
		},
		err: err,
	}
}

func (s *Service) pageReport(pageURL string, findings []Finding) PageReport {
	summary := finding.Summarize(findings)

	return PageReport{
		URL:           pageURL,
		Score:         summary.Score,
		Checks:        findings,
		CriticalCount: summary.CriticalCount,
		WarningCount:  summary.WarningCount,
		PassedCount:   summary.PassedCount,
		Timestamp:     s.timestamp(),
	}
}
