package audit

import (
	"github.com/idilettant/seoaudit/internal/content"
	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/pagespeed"
)

// Finding is a single check outcome.
type Finding = finding.Finding

// Severity classifies a Finding.
type Severity = finding.Severity

const (
	SeverityCritical = finding.SeverityCritical
	SeverityWarning  = finding.SeverityWarning
	SeverityInfo     = finding.SeverityInfo
	SeverityPassed   = finding.SeverityPassed
)

// ContentAnalysis holds lexical statistics of a crawled page.
type ContentAnalysis = content.Analysis

// Lighthouse holds the four external performance category scores.
type Lighthouse = pagespeed.Scores

// Kind names the variant of a Report.
type Kind string

const (
	KindPage      Kind = "page"
	KindCrawl     Kind = "crawl"
	KindPreLaunch Kind = "prelaunch"
)

// Report is implemented by *PageReport, *SiteCrawlReport and *PreLaunchReport.
// Consumers switch on the concrete type.
type Report interface {
	Kind() Kind
	report()
}

// PageReport is the result of auditing one URL.
type PageReport struct {
	URL           string    `json:"url"`
	Score         int       `json:"score"`
	Checks        []Finding `json:"checks"`
	CriticalCount int       `json:"criticalCount"`
	WarningCount  int       `json:"warningCount"`
	PassedCount   int       `json:"passedCount"`
	Timestamp     string    `json:"timestamp"`
}

// Kind implements Report.
func (*PageReport) Kind() Kind { return KindPage }

func (*PageReport) report() {}

// CrawlResult is a page audited as part of a site crawl. Failed pages carry
// Error, the HTTP status if one was received, and score 0.
type CrawlResult struct {
	PageReport
	Status          int              `json:"status"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	H1Count         int              `json:"h1Count"`
	ContentAnalysis *ContentAnalysis `json:"contentAnalysis,omitempty"`
	Lighthouse      *Lighthouse      `json:"lighthouse,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// Failed reports whether the page could not be fetched.
func (r CrawlResult) Failed() bool {
	return r.Error != ""
}

// SiteCrawlReport aggregates a multi-page crawl.
type SiteCrawlReport struct {
	URL             string        `json:"url"`
	Score           int           `json:"score"`
	Pages           []CrawlResult `json:"pages"`
	SiteLevelChecks []Finding     `json:"siteLevelChecks"`
	CriticalCount   int           `json:"criticalCount"`
	WarningCount    int           `json:"warningCount"`
	PassedCount     int           `json:"passedCount"`
	Timestamp       string        `json:"timestamp"`
	Lighthouse      *Lighthouse   `json:"lighthouse,omitempty"`
}

// Kind implements Report.
func (*SiteCrawlReport) Kind() Kind { return KindCrawl }

func (*SiteCrawlReport) report() {}

// Checklist summarises launch readiness. RobotsTxt and Sitemap record that the
// files exist, not that their findings passed.
type Checklist struct {
	RobotsTxt   bool `json:"robotsTxt"`
	Sitemap     bool `json:"sitemap"`
	HTTPS       bool `json:"https"`
	BrokenLinks int  `json:"brokenLinks"`
}

// PreLaunchReport is a site crawl extended with infrastructure checks.
type PreLaunchReport struct {
	SiteCrawlReport
	IsPreLaunch bool      `json:"isPreLaunch"`
	Checklist   Checklist `json:"checklist"`
}

// Kind implements Report.
func (*PreLaunchReport) Kind() Kind { return KindPreLaunch }

func (*PreLaunchReport) report() {}

// Progress is emitted before each crawled page starts. PagesAudited is the
// 1-based ordinal of that page.
type Progress struct {
	PagesAudited    int    `json:"pagesAudited"`
	TotalDiscovered int    `json:"totalDiscovered"`
	CurrentURL      string `json:"currentUrl"`
}

// InfraReport carries the pre-launch infrastructure results before the crawl starts.
type InfraReport struct {
	Checklist   Checklist `json:"checklist"`
	Checks      []Finding `json:"checks"`
	SitemapURLs int       `json:"sitemapUrls"`
}
