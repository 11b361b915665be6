package checks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
)

// Headings checks the H1 count and that heading levels do not skip (e.g. H1 then H3).
func Headings(doc *parser.Document) []finding.Finding {
	findings := []finding.Finding{}

	h1s := []string{}
	doc.Doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		h1s = append(h1s, parser.CleanText(s.Text()))
	})

	switch len(h1s) {
	case 0:
		findings = append(findings, finding.Critical(
			"missing-h1",
			-15,
			"Page has no H1 heading.",
			"Add exactly one H1 describing the page topic.",
		))
	case 1:
		findings = append(findings, finding.Passed("passed-h1", "Page has exactly one H1.", h1s[0]))
	default:
		findings = append(findings, finding.Warning(
			"multiple-h1",
			-10,
			fmt.Sprintf("Page has %d H1 headings.", len(h1s)),
			"Keep a single H1 and demote the others to H2.",
			h1s...,
		))
	}

	if skips := skippedLevels(doc.Doc); len(skips) > 0 {
		findings = append(findings, finding.Warning(
			"skipped-heading-levels",
			-5,
			"Heading levels are skipped.",
			"Nest headings sequentially without skipping levels.",
			skips...,
		))
	}

	return findings
}

func skippedLevels(doc *goquery.Document) []string {
	skips := []string{}
	previous := 0

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level, err := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(s), "h"))
		if err != nil {
			return
		}

		if previous > 0 && level > previous+1 {
			skips = append(skips, fmt.Sprintf("H%d -> H%d", previous, level))
		}
		previous = level
	})

	return skips
}
