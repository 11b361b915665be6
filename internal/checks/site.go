package checks

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/idilettant/seoaudit/internal/finding"
)

const (
	maxDuplicateGroups = 5
	maxListedURLs      = 10
)

// SitePage is the per-page summary the cross-page checks need.
type SitePage struct {
	URL            string
	Status         int
	Failed         bool
	Title          string
	HasTitle       bool
	Description    string
	HasDescription bool
	H1Count        int
}

// SiteLevel runs the cross-page checks over every crawled page.
func SiteLevel(pages []SitePage) []finding.Finding {
	findings := []finding.Finding{}

	fetched := make([]SitePage, 0, len(pages))
	for _, page := range pages {
		if !page.Failed {
			fetched = append(fetched, page)
		}
	}

	if groups := duplicateGroups(fetched, func(p SitePage) (string, bool) { return p.Title, p.HasTitle }); len(groups) > 0 {
		findings = append(findings, finding.Warning(
			"duplicate-titles",
			-10,
			fmt.Sprintf("%d titles are shared by more than one page.", len(groups)),
			"Give every page a unique title.",
			groups[:min(len(groups), maxDuplicateGroups)]...,
		))
	}

	if groups := duplicateGroups(fetched, func(p SitePage) (string, bool) { return p.Description, p.HasDescription }); len(groups) > 0 {
		findings = append(findings, finding.Warning(
			"duplicate-meta-descriptions",
			-10,
			fmt.Sprintf("%d meta descriptions are shared by more than one page.", len(groups)),
			"Write a unique meta description for every page.",
			groups[:min(len(groups), maxDuplicateGroups)]...,
		))
	}

	notFound, failedOther := []string{}, []string{}
	for _, page := range pages {
		switch {
		case page.Status == http.StatusNotFound:
			notFound = append(notFound, page.URL)
		case page.Failed:
			failedOther = append(failedOther, page.URL)
		}
	}

	if len(notFound) > 0 {
		findings = append(findings, finding.Critical(
			"site-404s",
			-20,
			fmt.Sprintf("%d linked pages return 404 Not Found.", len(notFound)),
			"Fix or remove internal links to missing pages, or redirect them.",
			notFound[:min(len(notFound), maxListedURLs)]...,
		))
	}

	if len(failedOther) > 0 {
		findings = append(findings, finding.Warning(
			"site-fetch-errors",
			-10,
			fmt.Sprintf("%d pages could not be fetched.", len(failedOther)),
			"Check server errors, timeouts and redirects on these URLs.",
			failedOther[:min(len(failedOther), maxListedURLs)]...,
		))
	}

	missingH1 := []string{}
	for _, page := range fetched {
		if page.H1Count == 0 {
			missingH1 = append(missingH1, page.URL)
		}
	}

	if len(missingH1) > 0 {
		findings = append(findings, finding.Warning(
			"pages-missing-h1",
			-5,
			fmt.Sprintf("%d pages have no H1 heading.", len(missingH1)),
			"Add one H1 to each page.",
			missingH1[:min(len(missingH1), maxListedURLs)]...,
		))
	}

	if len(findings) == 0 {
		findings = append(findings, finding.Passed("passed-site-checks", "No cross-page issues found."))
	}

	return findings
}

// duplicateGroups returns `"value": url, url` lines for values shared by two or more pages,
// in order of first appearance.
func duplicateGroups(pages []SitePage, key func(SitePage) (string, bool)) []string {
	order := []string{}
	urls := map[string][]string{}

	for _, page := range pages {
		value, ok := key(page)
		if !ok || value == "" {
			continue
		}

		if _, seen := urls[value]; !seen {
			order = append(order, value)
		}
		urls[value] = append(urls[value], page.URL)
	}

	groups := []string{}
	for _, value := range order {
		if len(urls[value]) < 2 {
			continue
		}

		groups = append(groups, fmt.Sprintf("%q: %s", value, strings.Join(urls[value], ", ")))
	}

	return groups
}
