package audit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/idilettant/seoaudit/internal/fetcher"
	"github.com/idilettant/seoaudit/internal/limiter"
	seolog "github.com/idilettant/seoaudit/internal/log"
	"github.com/idilettant/seoaudit/internal/pagespeed"
)

const (
	// DefaultUserAgent identifies the auditor to the sites it fetches.
	DefaultUserAgent = "seoaudit/1.0 (+https://github.com/idilettant/seoaudit)"
	// DefaultMaxPages is the crawl page budget.
	DefaultMaxPages = 50
	// DefaultCrawlTimeout bounds a whole crawl.
	DefaultCrawlTimeout = 5 * time.Minute

	batchSize         = 2
	maxSitemapIndexes = 5
)

// DefaultIgnorePatterns keep the crawler away from binary and asset URLs.
var DefaultIgnorePatterns = []string{
	"*.pdf", "*.zip", "*.gz", "*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.webp", "*.ico",
	"*.mp3", "*.mp4", "*.webm", "*.css", "*.js", "*.json", "*.xml", "*.woff", "*.woff2",
}

// Scorer returns external performance scores for a page.
type Scorer = pagespeed.Scorer

// Options configures a Service. Zero values select the defaults.
// Delay and RPS control rate limiting across all fetches; RPS overrides Delay.
// Retries is the number of retries after the first attempt.
// Scorer is optional; without it the performance step is skipped.
type Options struct {
	UserAgent      string
	Timeout        time.Duration
	MaxBodyBytes   int64
	Retries        int
	Delay          time.Duration
	RPS            float64
	MaxPages       int
	CrawlTimeout   time.Duration
	IgnorePatterns []string
	HTTPClient     *http.Client
	Clock          limiter.Timer
	Scorer         Scorer
	Logger         *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = fetcher.DefaultTimeout
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = fetcher.DefaultMaxBodyBytes
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.CrawlTimeout <= 0 {
		o.CrawlTimeout = DefaultCrawlTimeout
	}
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = DefaultIgnorePatterns
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Clock == nil {
		o.Clock = limiter.NewClock()
	}
	if o.Logger == nil {
		o.Logger = seolog.Discard()
	}

	return o
}
