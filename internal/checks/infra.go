package checks

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"

	"github.com/idilettant/seoaudit/internal/finding"
)

// ErrNotSitemap is returned for XML whose root is neither <urlset> nor <sitemapindex>.
var ErrNotSitemap = errors.New("document is not a sitemap")

// Robots evaluates a fetched robots.txt. reachable is false when the file could not be retrieved.
func Robots(body []byte, reachable bool) []finding.Finding {
	if !reachable {
		return []finding.Finding{finding.Warning(
			"robots-txt-missing",
			-5,
			"robots.txt could not be retrieved.",
			"Publish a robots.txt at the site root.",
		)}
	}

	robots, err := robotstxt.FromBytes(body)
	if err == nil && !robots.TestAgent("/", "*") {
		return []finding.Finding{finding.Critical(
			"robots-txt-blocks-all",
			-50,
			"robots.txt blocks crawlers from the whole site (Disallow: /).",
			"Remove the blanket Disallow before launch.",
		)}
	}

	return []finding.Finding{finding.Passed("passed-robots-txt", "robots.txt is present and allows crawling.")}
}

// Sitemap is a parsed sitemap.xml: page locations for <urlset>, child sitemaps for <sitemapindex>.
type Sitemap struct {
	URLs     []string
	Children []string
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

type sitemapDocument struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

// ParseSitemap decodes a sitemap or sitemap index in any encoding its XML
// declaration names.
func ParseSitemap(body []byte) (Sitemap, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel

	var doc sitemapDocument
	if err := decoder.Decode(&doc); err != nil {
		return Sitemap{}, fmt.Errorf("parse sitemap: %w", err)
	}

	switch doc.XMLName.Local {
	case "urlset":
		return Sitemap{URLs: locs(doc.URLs)}, nil
	case "sitemapindex":
		return Sitemap{Children: locs(doc.Sitemaps)}, nil
	default:
		return Sitemap{}, ErrNotSitemap
	}
}

func locs(entries []sitemapLoc) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			out = append(out, loc)
		}
	}

	return out
}

// SitemapFindings reports on sitemap.xml. parseErr is set when the file was reachable but unusable.
func SitemapFindings(reachable bool, parseErr error, urlCount int) []finding.Finding {
	switch {
	case !reachable:
		return []finding.Finding{finding.Warning(
			"sitemap-missing",
			-10,
			"sitemap.xml could not be retrieved.",
			"Publish a sitemap.xml and reference it from robots.txt.",
		)}
	case parseErr != nil:
		return []finding.Finding{finding.Warning(
			"sitemap-invalid",
			-10,
			"sitemap.xml is not a valid sitemap.",
			"Serve a sitemap that follows the sitemaps.org protocol.",
			parseErr.Error(),
		)}
	default:
		return []finding.Finding{finding.Passed(
			"passed-sitemap",
			fmt.Sprintf("sitemap.xml lists %d URLs.", urlCount),
		)}
	}
}

// HTTPS checks that the site is served over TLS.
func HTTPS(site *url.URL) []finding.Finding {
	if site.Scheme == "https" {
		return []finding.Finding{finding.Passed("passed-https", "Site is served over HTTPS.")}
	}

	return []finding.Finding{finding.Warning(
		"https-not-enabled",
		-10,
		"Site is not served over HTTPS.",
		"Serve the site over HTTPS and redirect plain HTTP.",
	)}
}
