package checks

import (
	"fmt"

	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/pagespeed"
)

const (
	performanceGood = 90
	performanceFair = 50
)

// Performance maps external Lighthouse-style category scores onto findings.
// A failed lookup degrades to one info finding, a missing category score to
// an info finding for that category.
func Performance(scores *pagespeed.Scores, err error) []finding.Finding {
	if err != nil || scores == nil {
		reason := "no scores returned"
		if err != nil {
			reason = err.Error()
		}

		return []finding.Finding{finding.Info(
			"lighthouse-unavailable",
			0,
			"Performance scores are unavailable.",
			"",
			reason,
		)}
	}

	findings := make([]finding.Finding, 0, 4)
	for _, category := range scores.Categories() {
		if !category.Available {
			findings = append(findings, finding.Info(
				"lighthouse-"+category.Key+"-unavailable",
				0,
				fmt.Sprintf("%s score is unavailable.", category.Label),
				"",
			))

			continue
		}

		findings = append(findings, categoryFinding(category.Key, category.Label, category.Score))
	}

	return findings
}

func categoryFinding(key, label string, score int) finding.Finding {
	message := fmt.Sprintf("%s score is %d/100.", label, score)

	switch {
	case score >= performanceGood:
		return finding.Passed("passed-lighthouse-"+key, message)
	case score >= performanceFair:
		return finding.Warning("lighthouse-"+key, -5, message, fmt.Sprintf("Review the %s opportunities in Lighthouse.", label))
	default:
		return finding.Critical("lighthouse-"+key, -15, message, fmt.Sprintf("Address the %s issues reported by Lighthouse.", label))
	}
}
