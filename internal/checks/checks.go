// Package checks holds the independent SEO rules. Each page check is a pure
// function of a parsed document and returns its findings in display order.
package checks

import (
	"fmt"

	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
)

// Check inspects one parsed page.
type Check struct {
	Name string
	Run  func(doc *parser.Document) []finding.Finding
}

// PageChecks is the battery run against every audited page, in display order.
var PageChecks = []Check{
	{Name: "title", Run: Title},
	{Name: "meta-description", Run: MetaDescription},
	{Name: "headings", Run: Headings},
	{Name: "images", Run: Images},
	{Name: "technical", Run: Technical},
	{Name: "open-graph", Run: OpenGraph},
	{Name: "twitter-card", Run: TwitterCard},
	{Name: "content-quality", Run: ContentQuality},
}

// RunAll runs every check against doc and concatenates their findings.
func RunAll(doc *parser.Document, checks []Check) []finding.Finding {
	findings := []finding.Finding{}
	for _, check := range checks {
		findings = append(findings, runIsolated(check, doc)...)
	}

	return findings
}

// runIsolated turns a panicking check into an info finding so one rule cannot sink the audit.
func runIsolated(check Check, doc *parser.Document) (findings []finding.Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = []finding.Finding{finding.Info(
				"check-error",
				0,
				fmt.Sprintf("The %s check could not run: %v", check.Name, r),
				"",
			)}
		}
	}()

	return check.Run(doc)
}
