package audit

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/idilettant/seoaudit/internal/checks"
	"github.com/idilettant/seoaudit/internal/urlutil"
)

// PreLaunch checks robots.txt and sitemap.xml in parallel, crawls the site
// seeded with the sitemap URLs and the homepage performance step, and folds
// the infrastructure results into the checklist and the site-level findings.
// req.Seeds and req.Performance are replaced by the sitemap URLs and true.
func (s *Session) PreLaunch(ctx context.Context, req CrawlRequest, sink Sink) (*PreLaunchReport, error) {
	if err := s.active(); err != nil {
		return nil, err
	}

	start, err := urlutil.ParseAbsolute(req.URL)
	if err != nil {
		return nil, fmt.Errorf("pre-launch %q: %w", req.URL, err)
	}

	events := newLockedSink(sink)
	infra := s.svc.infrastructure(ctx, start)
	events.Checklist(infra.report)

	req.URL = start.String()
	req.Seeds = infra.sitemapURLs
	req.Performance = true

	site, err := s.svc.crawl(ctx, req, events, infra.report.Checks)
	if site == nil {
		return nil, err
	}

	checklist := infra.report.Checklist
	for _, page := range site.Pages {
		if isNotFound(page) {
			checklist.BrokenLinks++
		}
	}

	return &PreLaunchReport{
		SiteCrawlReport: *site,
		IsPreLaunch:     true,
		Checklist:       checklist,
	}, err
}

type infraResult struct {
	report      InfraReport
	sitemapURLs []string
}

func (s *Service) infrastructure(ctx context.Context, start *url.URL) infraResult {
	origin := urlutil.Origin(start)

	var (
		robotsBody      []byte
		robotsReachable bool
		sitemap         checks.Sitemap
		sitemapFound    bool
		sitemapErr      error
	)

	var group errgroup.Group

	group.Go(func() error {
		res, err := s.fetch.Fetch(ctx, origin+"/robots.txt")
		robotsBody, robotsReachable = res.Body, err == nil
		if err != nil {
			s.log.Debug("robots.txt unavailable", "url", origin, "error", err)
		}

		return nil
	})

	group.Go(func() error {
		sitemap, sitemapFound, sitemapErr = s.loadSitemap(ctx, origin+"/sitemap.xml")
		if sitemapErr != nil {
			s.log.Debug("sitemap unusable", "url", origin, "error", sitemapErr)
		}

		return nil
	})

	_ = group.Wait()

	findings := checks.Robots(robotsBody, robotsReachable)
	findings = append(findings, checks.SitemapFindings(sitemapFound, sitemapErr, len(sitemap.URLs))...)
	findings = append(findings, checks.HTTPS(start)...)

	return infraResult{
		report: InfraReport{
			Checklist: Checklist{
				RobotsTxt: robotsReachable,
				Sitemap:   sitemapFound && sitemapErr == nil,
				HTTPS:     start.Scheme == "https",
			},
			Checks:      findings,
			SitemapURLs: len(sitemap.URLs),
		},
		sitemapURLs: sitemap.URLs,
	}
}

// loadSitemap fetches a sitemap and follows one level of sitemap index.
// found is false when the file could not be retrieved at all.
func (s *Service) loadSitemap(ctx context.Context, sitemapURL string) (checks.Sitemap, bool, error) {
	res, err := s.fetch.Fetch(ctx, sitemapURL)
	if err != nil {
		return checks.Sitemap{}, false, nil
	}

	sitemap, err := checks.ParseSitemap(res.Body)
	if err != nil {
		return checks.Sitemap{}, true, err
	}

	children := sitemap.Children[:min(len(sitemap.Children), maxSitemapIndexes)]

	var childErrs []error
	for _, child := range children {
		childRes, err := s.fetch.Fetch(ctx, child)
		if err != nil {
			childErrs = append(childErrs, fmt.Errorf("%s: %w", child, err))
			continue
		}

		nested, err := checks.ParseSitemap(childRes.Body)
		if err != nil {
			childErrs = append(childErrs, fmt.Errorf("%s: %w", child, err))
			continue
		}

		sitemap.URLs = append(sitemap.URLs, nested.URLs...)
	}

	if len(children) > 0 && len(sitemap.URLs) == 0 {
		return sitemap, true, errors.Join(childErrs...)
	}

	return sitemap, true, nil
}
