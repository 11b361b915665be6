package checks

import (
	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
)

type socialTag struct {
	key     string
	id      string
	message string
}

var openGraphTags = []socialTag{
	{key: "og:title", id: "missing-og-title", message: "Open Graph title (og:title) is missing."},
	{key: "og:description", id: "missing-og-description", message: "Open Graph description (og:description) is missing."},
	{key: "og:image", id: "missing-og-image", message: "Open Graph image (og:image) is missing."},
}

var twitterTags = []socialTag{
	{key: "twitter:card", id: "missing-twitter-card", message: "Twitter card type (twitter:card) is missing."},
	{key: "twitter:title", id: "missing-twitter-title", message: "Twitter title (twitter:title) is missing."},
	{key: "twitter:image", id: "missing-twitter-image", message: "Twitter image (twitter:image) is missing."},
}

// OpenGraph reports each missing og:title, og:description and og:image as info.
func OpenGraph(doc *parser.Document) []finding.Finding {
	return socialFindings(doc, openGraphTags, "passed-open-graph", "All core Open Graph tags are present.",
		"Add Open Graph tags so links render rich previews on social platforms.")
}

// TwitterCard reports each missing twitter:card, twitter:title and twitter:image as info.
func TwitterCard(doc *parser.Document) []finding.Finding {
	return socialFindings(doc, twitterTags, "passed-twitter-card", "All core Twitter card tags are present.",
		"Add Twitter card tags so links render rich previews on X/Twitter.")
}

func socialFindings(doc *parser.Document, tags []socialTag, passedID, passedMessage, recommendation string) []finding.Finding {
	findings := []finding.Finding{}

	for _, tag := range tags {
		if hasSocialTag(doc, tag.key) {
			continue
		}

		findings = append(findings, finding.Info(tag.id, 0, tag.message, recommendation))
	}

	if len(findings) == 0 {
		findings = append(findings, finding.Passed(passedID, passedMessage))
	}

	return findings
}

// hasSocialTag accepts both property= and name= since sites use either for both families.
func hasSocialTag(doc *parser.Document, key string) bool {
	if _, ok := doc.MetaByProperty(key); ok {
		return true
	}

	_, ok := doc.MetaByName(key)

	return ok
}
