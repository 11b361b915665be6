package audit_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idilettant/seoaudit/audit"
)

func prelaunchSite(robots route) *site {
	s := fixtureSite()
	s.routes["example.com/robots.txt"] = robots
	s.routes["example.com/sitemap.xml"] = textFile(http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-pages.xml</loc></sitemap>
</sitemapindex>`)
	s.routes["example.com/sitemap-pages.xml"] = textFile(http.StatusOK, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc>https://example.com/orphan</loc></url>
  <url><loc>https://elsewhere.com/page</loc></url>
</urlset>`)
	s.routes["example.com/orphan"] = htmlPage(`<html><head><title>Orphan</title></head><body><h1>Orphan</h1></body></html>`)

	return s
}

func TestPreLaunchRobotsBlockingEverything(t *testing.T) {
	t.Parallel()

	s := prelaunchSite(textFile(http.StatusOK, "User-agent: *\nDisallow: /\n"))
	session := begin(t, newService(s.client()))
	events := &recorder{}

	report, err := session.PreLaunch(context.Background(), audit.CrawlRequest{URL: "https://example.com"}, events)
	require.NoError(t, err)

	require.True(t, report.IsPreLaunch)
	require.True(t, report.Checklist.RobotsTxt, "robots.txt exists")
	require.True(t, report.Checklist.Sitemap)
	require.True(t, report.Checklist.HTTPS)
	require.Equal(t, 1, report.Checklist.BrokenLinks)

	blocked := findByID(t, report.SiteLevelChecks, "robots-txt-blocks-all")
	require.Equal(t, audit.SeverityCritical, blocked.Severity)
	require.Equal(t, -50, blocked.Impact)
	require.Contains(t, findingIDs(report.SiteLevelChecks), "passed-sitemap")
	require.Contains(t, findingIDs(report.SiteLevelChecks), "passed-https")

	require.Contains(t, pageURLs(report.Pages), "https://example.com/orphan")
	require.Equal(t, 1, s.count("example.com/orphan"))
	require.NotContains(t, s.hosts(), "elsewhere.com")

	require.Len(t, events.checklist, 1)
	require.Equal(t, 3, events.checklist[0].SitemapURLs)
	require.True(t, events.checklist[0].Checklist.RobotsTxt)
	require.Zero(t, events.checklist[0].Checklist.BrokenLinks)
}

func TestPreLaunchMissingInfrastructure(t *testing.T) {
	t.Parallel()

	s := fixtureSite()
	session := begin(t, newService(s.client()))

	report, err := session.PreLaunch(context.Background(), audit.CrawlRequest{URL: "http://example.com", MaxPages: 3}, nil)
	require.NoError(t, err)

	require.Equal(t, audit.Checklist{RobotsTxt: false, Sitemap: false, HTTPS: false, BrokenLinks: 0}, report.Checklist)
	require.Len(t, report.Pages, 3)

	ids := findingIDs(report.SiteLevelChecks)
	require.Equal(t, []string{"robots-txt-missing", "sitemap-missing", "https-not-enabled"}, ids[:3])
}

func TestPreLaunchInvalidSitemap(t *testing.T) {
	t.Parallel()

	s := fixtureSite()
	s.routes["example.com/robots.txt"] = textFile(http.StatusOK, "User-agent: *\nAllow: /\n")
	s.routes["example.com/sitemap.xml"] = htmlPage("<html><body>soft 404</body></html>")
	session := begin(t, newService(s.client()))

	report, err := session.PreLaunch(context.Background(), audit.CrawlRequest{URL: "https://example.com", MaxPages: 1}, nil)
	require.NoError(t, err)

	require.True(t, report.Checklist.RobotsTxt)
	require.False(t, report.Checklist.Sitemap)
	require.Contains(t, findingIDs(report.SiteLevelChecks), "passed-robots-txt")
	require.Equal(t, -10, findByID(t, report.SiteLevelChecks, "sitemap-invalid").Impact)
}
