package checks

import (
	"fmt"
	"unicode/utf8"

	"github.com/idilettant/seoaudit/internal/finding"
	"github.com/idilettant/seoaudit/internal/parser"
)

const (
	titleMinLength = 50
	titleMaxLength = 60

	descriptionMinLength = 120
	descriptionMaxLength = 160
)

// Title checks presence and length of <title>.
func Title(doc *parser.Document) []finding.Finding {
	if !doc.SEO.HasTitle {
		return []finding.Finding{finding.Critical(
			"missing-title",
			-20,
			"Page has no <title> tag.",
			"Add a unique, descriptive title of 50-60 characters.",
		)}
	}

	length := utf8.RuneCountInString(doc.SEO.Title)

	switch {
	case length < titleMinLength:
		return []finding.Finding{finding.Warning(
			"title-too-short",
			-5,
			fmt.Sprintf("Title is %d characters, shorter than %d.", length, titleMinLength),
			"Expand the title with relevant keywords.",
			doc.SEO.Title,
		)}
	case length > titleMaxLength:
		return []finding.Finding{finding.Warning(
			"title-too-long",
			-5,
			fmt.Sprintf("Title is %d characters, longer than %d.", length, titleMaxLength),
			"Shorten the title so it is not truncated in search results.",
			doc.SEO.Title,
		)}
	default:
		return []finding.Finding{finding.Passed(
			"passed-title",
			fmt.Sprintf("Title length is %d characters.", length),
			doc.SEO.Title,
		)}
	}
}

// MetaDescription checks presence and length of <meta name="description">.
func MetaDescription(doc *parser.Document) []finding.Finding {
	if !doc.SEO.HasDescription {
		return []finding.Finding{finding.Critical(
			"missing-meta-description",
			-15,
			"Page has no meta description.",
			"Add a meta description of 120-160 characters summarising the page.",
		)}
	}

	length := utf8.RuneCountInString(doc.SEO.Description)

	switch {
	case length < descriptionMinLength:
		return []finding.Finding{finding.Warning(
			"meta-description-too-short",
			-5,
			fmt.Sprintf("Meta description is %d characters, shorter than %d.", length, descriptionMinLength),
			"Expand the description to use the available snippet space.",
		)}
	case length > descriptionMaxLength:
		return []finding.Finding{finding.Warning(
			"meta-description-too-long",
			-5,
			fmt.Sprintf("Meta description is %d characters, longer than %d.", length, descriptionMaxLength),
			"Shorten the description so it is not truncated.",
		)}
	default:
		return []finding.Finding{finding.Passed(
			"passed-meta-description",
			fmt.Sprintf("Meta description length is %d characters.", length),
		)}
	}
}
