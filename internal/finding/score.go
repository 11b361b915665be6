package finding

import "math"

const (
	maxScore = 100
	minScore = 0
)

// Summary is the reduction of a finding list into a score and per-severity tallies.
type Summary struct {
	Score         int
	CriticalCount int
	WarningCount  int
	InfoCount     int
	PassedCount   int
}

// Summarize computes clamp(100 + sum of critical and warning impacts, 0, 100)
// together with severity counts. An empty list scores 100.
func Summarize(findings []Finding) Summary {
	summary := Summary{}
	total := maxScore

	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			summary.CriticalCount++
		case SeverityWarning:
			summary.WarningCount++
		case SeverityInfo:
			summary.InfoCount++
		case SeverityPassed:
			summary.PassedCount++
		}

		if f.Severity.Scored() {
			total += f.Impact
		}
	}

	summary.Score = clamp(total)

	return summary
}

// Add merges the tallies of other into s. The score is left untouched.
func (s Summary) Add(other Summary) Summary {
	s.CriticalCount += other.CriticalCount
	s.WarningCount += other.WarningCount
	s.InfoCount += other.InfoCount
	s.PassedCount += other.PassedCount

	return s
}

// SiteScore folds page scores and site-level findings into one score:
// the summed page deficiency plus the absolute impact of scored site findings,
// averaged over the page count and subtracted from 100.
func SiteScore(pageScores []int, siteFindings []Finding) int {
	deficiency := 0
	for _, score := range pageScores {
		deficiency += maxScore - score
	}

	for _, f := range siteFindings {
		if f.Severity.Scored() {
			deficiency += abs(f.Impact)
		}
	}

	pages := len(pageScores)
	if pages == 0 {
		pages = 1
	}

	average := float64(deficiency) / float64(pages)

	return clamp(int(math.Round(maxScore - average)))
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}

	return score
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
