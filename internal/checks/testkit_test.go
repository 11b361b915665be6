package checks

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
)

const pageURL = "https://example.com/page"

func parse(t *testing.T, html string) *parser.Document {
	t.Helper()

	u, err := url.Parse(pageURL)
	require.NoError(t, err)

	doc, err := parser.ParseHTML(u, []byte(html), "text/html; charset=utf-8")
	require.NoError(t, err)

	return doc
}

// prose returns n distinct words split into short sentences.
func prose(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "topic%d", i)
		if (i+1)%10 == 0 {
			b.WriteString(". ")
		} else {
			b.WriteString(" ")
		}
	}

	return b.String()
}

func findByID(t *testing.T, findings []finding.Finding, id string) finding.Finding {
	t.Helper()

	for _, f := range findings {
		if f.ID == id {
			return f
		}
	}
	require.Failf(t, "finding not found", "id %q in %v", id, finding.IDs(findings))

	return finding.Finding{}
}
