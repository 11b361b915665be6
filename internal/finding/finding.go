package finding

// Severity classifies a finding. Only critical and warning findings affect the score.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeverityPassed   Severity = "passed"
)

// Scored reports whether findings of this severity contribute to the score.
func (s Severity) Scored() bool {
	return s == SeverityCritical || s == SeverityWarning
}

// Finding is a single check outcome. ID is a stable slug; the same ID may recur once per page.
type Finding struct {
	ID             string   `json:"id"`
	Severity       Severity `json:"severity"`
	Impact         int      `json:"impact"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation,omitempty"`
	Details        []string `json:"details,omitempty"`
}

// Critical builds a critical finding. impact is the score delta and should be negative.
func Critical(id string, impact int, message, recommendation string, details ...string) Finding {
	return newFinding(id, SeverityCritical, impact, message, recommendation, details)
}

// Warning builds a warning finding.
func Warning(id string, impact int, message, recommendation string, details ...string) Finding {
	return newFinding(id, SeverityWarning, impact, message, recommendation, details)
}

// Info builds an informational finding. Its impact is recorded but never scored.
func Info(id string, impact int, message, recommendation string, details ...string) Finding {
	return newFinding(id, SeverityInfo, impact, message, recommendation, details)
}

// Passed builds a passed finding with zero impact.
func Passed(id, message string, details ...string) Finding {
	return newFinding(id, SeverityPassed, 0, message, "", details)
}

// FetchFailed is the synthetic finding used when a page could not be retrieved.
func FetchFailed(reason string) Finding {
	return Critical(
		"fetch-failed",
		-100,
		"Failed to fetch page: "+reason,
		"Make sure the URL is reachable and returns a 2xx response.",
	)
}

func newFinding(id string, severity Severity, impact int, message, recommendation string, details []string) Finding {
	f := Finding{
		ID:             id,
		Severity:       severity,
		Impact:         impact,
		Message:        message,
		Recommendation: recommendation,
	}
	if len(details) > 0 {
		f.Details = append([]string(nil), details...)
	}

	return f
}

// IDs returns the finding IDs in order.
func IDs(findings []Finding) []string {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		ids = append(ids, f.ID)
	}

	return ids
}
