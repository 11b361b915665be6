package checks

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
	"github.com/idilettant/seoaudit/internal/urlutil"
)

// Technical checks the canonical link and robots meta directives.
func Technical(doc *parser.Document) []finding.Finding {
	findings := []finding.Finding{}

	findings = append(findings, canonical(doc)...)

	if directive, ok := noindex(doc); ok {
		findings = append(findings, finding.Critical(
			"noindex",
			-50,
			"Page is excluded from search engines by a noindex directive.",
			"Remove noindex from the robots meta tag if the page should rank.",
			directive,
		))
	}

	if len(findings) == 0 {
		findings = append(findings, finding.Passed(
			"passed-technical",
			"Canonical URL matches the page and the page is indexable.",
		))
	}

	return findings
}

func canonical(doc *parser.Document) []finding.Finding {
	href, found := canonicalHref(doc.Doc)
	if !found {
		return []finding.Finding{finding.Warning(
			"missing-canonical",
			-10,
			"Page has no canonical link.",
			`Add <link rel="canonical"> pointing at the preferred URL.`,
		)}
	}

	resolved, ok := resolveCanonical(doc, href)
	if !ok {
		return []finding.Finding{finding.Critical(
			"invalid-canonical",
			-10,
			"Canonical link is malformed.",
			"Use an absolute http(s) URL in the canonical link.",
			href,
		)}
	}

	if doc.URL != nil && resolved != urlutil.Normalize(doc.URL.String()) {
		return []finding.Finding{finding.Warning(
			"canonical-mismatch",
			-5,
			"Canonical link points to a different URL.",
			"Make sure the canonical URL is intentional; this page will not be indexed on its own.",
			resolved,
		)}
	}

	return nil
}

func canonicalHref(doc *goquery.Document) (string, bool) {
	var (
		href  string
		found bool
	)

	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !containsToken(rel, "canonical") {
			return true
		}

		href, _ = s.Attr("href")
		href = strings.TrimSpace(href)
		found = true

		return false
	})

	return href, found
}

func resolveCanonical(doc *parser.Document, href string) (string, bool) {
	if href == "" {
		return "", false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	if doc.URL != nil {
		parsed = doc.URL.ResolveReference(parsed)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Hostname() == "" {
		return "", false
	}

	return urlutil.Normalize(parsed.String()), true
}

func noindex(doc *parser.Document) (string, bool) {
	for _, name := range []string{"robots", "googlebot"} {
		content, ok := doc.MetaByName(name)
		if !ok {
			continue
		}

		for _, directive := range strings.Split(content, ",") {
			switch strings.ToLower(strings.TrimSpace(directive)) {
			case "noindex", "none":
				return name + ": " + content, true
			}
		}
	}

	return "", false
}

func containsToken(list, token string) bool {
	for _, field := range strings.Fields(list) {
		if strings.EqualFold(field, token) {
			return true
		}
	}

	return false
}
