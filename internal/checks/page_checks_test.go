package checks

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idilettant/seoaudit/internal/finding"
)

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		head   string
		wantID string
		impact int
	}{
		{name: "missing", head: ``, wantID: "missing-title", impact: -20},
		{name: "empty counts as missing", head: `<title>  </title>`, wantID: "missing-title", impact: -20},
		{name: "short", head: `<title>Home</title>`, wantID: "title-too-short", impact: -5},
		{name: "long", head: `<title>` + strings.Repeat("a", 61) + `</title>`, wantID: "title-too-long", impact: -5},
		{name: "ok", head: `<title>` + strings.Repeat("a", 55) + `</title>`, wantID: "passed-title", impact: 0},
		{name: "runes not bytes", head: `<title>` + strings.Repeat("é", 55) + `</title>`, wantID: "passed-title", impact: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			findings := Title(parse(t, `<html><head>`+tt.head+`</head><body></body></html>`))
			require.Len(t, findings, 1)
			require.Equal(t, tt.wantID, findings[0].ID)
			require.Equal(t, tt.impact, findings[0].Impact)
		})
	}
}

func TestMetaDescription(t *testing.T) {
	t.Parallel()

	meta := func(n int) string {
		return fmt.Sprintf(`<meta name="description" content="%s">`, strings.Repeat("d", n))
	}

	tests := []struct {
		name   string
		head   string
		wantID string
	}{
		{name: "missing", head: ``, wantID: "missing-meta-description"},
		{name: "short", head: meta(40), wantID: "meta-description-too-short"},
		{name: "long", head: meta(200), wantID: "meta-description-too-long"},
		{name: "ok", head: meta(140), wantID: "passed-meta-description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			findings := MetaDescription(parse(t, `<html><head>`+tt.head+`</head></html>`))
			require.Equal(t, []string{tt.wantID}, finding.IDs(findings))
		})
	}
}

func TestHeadings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantIDs []string
		details []string
	}{
		{name: "missing h1", body: `<h2>a</h2>`, wantIDs: []string{"missing-h1"}},
		{name: "single h1", body: `<h1>a</h1><h2>b</h2>`, wantIDs: []string{"passed-h1"}},
		{name: "multiple h1", body: `<h1>a</h1><h1>b</h1>`, wantIDs: []string{"multiple-h1"}, details: []string{"a", "b"}},
		{name: "skipped level", body: `<h1>a</h1><h3>c</h3>`, wantIDs: []string{"passed-h1", "skipped-heading-levels"}},
		{name: "going back up is fine", body: `<h1>a</h1><h2>b</h2><h3>c</h3><h2>d</h2>`, wantIDs: []string{"passed-h1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			findings := Headings(parse(t, `<html><body>`+tt.body+`</body></html>`))
			require.Equal(t, tt.wantIDs, finding.IDs(findings))
			if tt.details != nil {
				require.Equal(t, tt.details, findings[0].Details)
			}
		})
	}

	findings := Headings(parse(t, `<html><body><h1>a</h1><h3>c</h3></body></html>`))
	require.Equal(t, []string{"H1 -> H3"}, findByID(t, findings, "skipped-heading-levels").Details)
}

func TestImages(t *testing.T) {
	t.Parallel()

	imgs := func(withAlt, without int) string {
		var b strings.Builder
		for i := range withAlt {
			fmt.Fprintf(&b, `<img src="/ok%d.png" alt="ok">`, i)
		}
		for i := range without {
			fmt.Fprintf(&b, `<img src="/bad%d.png">`, i)
		}

		return b.String()
	}

	tests := []struct {
		name     string
		body     string
		wantID   string
		severity finding.Severity
	}{
		{name: "no images", body: ``, wantID: "passed-images", severity: finding.SeverityPassed},
		{name: "all described", body: imgs(3, 0), wantID: "passed-images", severity: finding.SeverityPassed},
		{name: "few missing", body: imgs(2, 2), wantID: "images-missing-alt", severity: finding.SeverityWarning},
		{name: "blank alt counts as missing", body: `<img src="/x.png" alt="  ">`, wantID: "images-missing-alt", severity: finding.SeverityWarning},
		{name: "many missing", body: imgs(0, 6), wantID: "images-missing-alt", severity: finding.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			findings := Images(parse(t, `<html><body>`+tt.body+`</body></html>`))
			require.Len(t, findings, 1)
			require.Equal(t, tt.wantID, findings[0].ID)
			require.Equal(t, tt.severity, findings[0].Severity)
		})
	}

	findings := Images(parse(t, `<html><body>`+imgs(2, 2)+`</body></html>`))
	require.Contains(t, findings[0].Message, "50% coverage")
	require.Equal(t, []string{"/bad0.png", "/bad1.png"}, findings[0].Details)
}

func TestTechnical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		head    string
		wantIDs []string
	}{
		{name: "self canonical", head: `<link rel="canonical" href="` + pageURL + `">`, wantIDs: []string{"passed-technical"}},
		{name: "relative self canonical", head: `<link rel="canonical" href="/page">`, wantIDs: []string{"passed-technical"}},
		{name: "missing canonical", head: ``, wantIDs: []string{"missing-canonical"}},
		{name: "invalid canonical", head: `<link rel="canonical" href="mailto:x@example.com">`, wantIDs: []string{"invalid-canonical"}},
		{name: "canonical elsewhere", head: `<link rel="canonical" href="https://example.com/other">`, wantIDs: []string{"canonical-mismatch"}},
		{
			name:    "noindex",
			head:    `<link rel="canonical" href="/page"><meta name="robots" content="index, NOINDEX">`,
			wantIDs: []string{"noindex"},
		},
		{
			name:    "googlebot none",
			head:    `<meta name="googlebot" content="none">`,
			wantIDs: []string{"missing-canonical", "noindex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			findings := Technical(parse(t, `<html><head>`+tt.head+`</head></html>`))
			require.Equal(t, tt.wantIDs, finding.IDs(findings))
		})
	}

	findings := Technical(parse(t, `<html><head><meta name="robots" content="noindex"><link rel="canonical" href="/page"></head></html>`))
	require.Equal(t, -50, findByID(t, findings, "noindex").Impact)
}

func TestSocial(t *testing.T) {
	t.Parallel()

	full := `<meta property="og:title" content="t"><meta property="og:description" content="d">
		<meta property="og:image" content="i.png"><meta name="twitter:card" content="summary">
		<meta name="twitter:title" content="t"><meta property="twitter:image" content="i.png">`

	doc := parse(t, `<html><head>`+full+`</head></html>`)
	require.Equal(t, []string{"passed-open-graph"}, finding.IDs(OpenGraph(doc)))
	require.Equal(t, []string{"passed-twitter-card"}, finding.IDs(TwitterCard(doc)))

	bare := parse(t, `<html><head><meta property="og:title" content="t"></head></html>`)
	og := OpenGraph(bare)
	require.Equal(t, []string{"missing-og-description", "missing-og-image"}, finding.IDs(og))
	require.Equal(t, []string{"missing-twitter-card", "missing-twitter-title", "missing-twitter-image"}, finding.IDs(TwitterCard(bare)))

	for _, f := range og {
		require.Equal(t, finding.SeverityInfo, f.Severity)
		require.Zero(t, f.Impact)
	}
}

func TestContentQuality(t *testing.T) {
	t.Parallel()

	t.Run("thin", func(t *testing.T) {
		t.Parallel()

		findings := ContentQuality(parse(t, `<html><body><p>`+prose(50)+`</p></body></html>`))
		require.Equal(t, "thin-content", findings[0].ID)
		require.Equal(t, -10, findings[0].Impact)
	})

	t.Run("stuffed", func(t *testing.T) {
		t.Parallel()

		text := prose(300) + strings.Repeat("widgets ", 40)
		findings := ContentQuality(parse(t, `<html><body><p>`+text+`</p></body></html>`))
		ids := finding.IDs(findings)
		require.Contains(t, ids, "passed-content-length")
		require.Contains(t, ids, "keyword-stuffing")
		require.Contains(t, findByID(t, findings, "keyword-stuffing").Message, `"widgets"`)
	})

	t.Run("markup heavy", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><script>` + strings.Repeat("var x = 1;", 2000) + `</script></head><body><p>hello world</p></body></html>`
		findings := ContentQuality(parse(t, html))
		f := findByID(t, findings, "low-content-ratio")
		require.Equal(t, finding.SeverityInfo, f.Severity)
		require.Equal(t, -2, f.Impact)
	})
}
