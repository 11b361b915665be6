package checks

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
)

const (
	missingAltCriticalAbove = 5
	maxListedImages         = 10
)

// Images checks that every <img> carries a non-empty alt attribute.
func Images(doc *parser.Document) []finding.Finding {
	images := doc.Doc.Find("img")
	total := images.Length()

	if total == 0 {
		return []finding.Finding{finding.Passed("passed-images", "Page has no images.")}
	}

	missing := []string{}
	images.Each(func(_ int, s *goquery.Selection) {
		alt, ok := s.Attr("alt")
		if ok && strings.TrimSpace(alt) != "" {
			return
		}

		src, _ := s.Attr("src")
		missing = append(missing, strings.TrimSpace(src))
	})

	if len(missing) == 0 {
		return []finding.Finding{finding.Passed(
			"passed-images",
			fmt.Sprintf("All %d images have alt text.", total),
		)}
	}

	coverage := float64(total-len(missing)) / float64(total) * 100
	message := fmt.Sprintf("%d of %d images are missing alt text (%.0f%% coverage).", len(missing), total, coverage)
	recommendation := "Describe every meaningful image with an alt attribute."
	details := missing[:min(len(missing), maxListedImages)]

	if len(missing) > missingAltCriticalAbove {
		return []finding.Finding{finding.Critical("images-missing-alt", -15, message, recommendation, details...)}
	}

	return []finding.Finding{finding.Warning("images-missing-alt", -5, message, recommendation, details...)}
}
