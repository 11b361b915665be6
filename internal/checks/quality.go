package checks

import (
	"fmt"

	"github.com/idilettant/seoaudit/internal/content"
	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
)

const (
	minWordCount        = 300
	maxKeywordDensity   = 5.0
	minContentRatio     = 10.0
	stuffingKeywordsTop = 1
)

// ContentQuality checks word count, keyword stuffing and the text-to-HTML ratio.
func ContentQuality(doc *parser.Document) []finding.Finding {
	text := doc.Text()
	words := content.Words(text)
	findings := []finding.Finding{}

	if len(words) < minWordCount {
		findings = append(findings, finding.Warning(
			"thin-content",
			-10,
			fmt.Sprintf("Page has %d words, fewer than %d.", len(words), minWordCount),
			"Expand the copy with useful, original content.",
		))
	} else {
		findings = append(findings, finding.Passed(
			"passed-content-length",
			fmt.Sprintf("Page has %d words.", len(words)),
		))
	}

	if top := content.Density(words, stuffingKeywordsTop); len(top) > 0 && top[0].Density > maxKeywordDensity {
		findings = append(findings, finding.Warning(
			"keyword-stuffing",
			-10,
			fmt.Sprintf("The word %q makes up %.2f%% of the text.", top[0].Phrase, top[0].Density),
			"Write naturally and vary vocabulary; keep any single keyword under 5%.",
		))
	}

	if ratio := content.Ratio(len(text), len(doc.Raw)); ratio < minContentRatio {
		findings = append(findings, finding.Info(
			"low-content-ratio",
			-2,
			fmt.Sprintf("Text is %.2f%% of the HTML.", ratio),
			"Reduce markup bloat or add more visible content.",
		))
	}

	return findings
}
