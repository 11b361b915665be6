// Package content derives lexical statistics from page text: word counts,
// a Flesch-style reading level, keyword density and the text-to-HTML ratio.
package content

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// ReadingLevel buckets a Flesch reading-ease score.
type ReadingLevel string

const (
	ReadingDifficult ReadingLevel = "Difficult"
	ReadingAdvanced  ReadingLevel = "Advanced"
	ReadingStandard  ReadingLevel = "Standard"
	ReadingEasy      ReadingLevel = "Easy"
)

const (
	topKeywords      = 5
	minKeywordLength = 4
)

var stopwords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true,
	"being": true, "between": true, "both": true, "could": true, "does": true,
	"each": true, "from": true, "have": true, "here": true, "into": true,
	"just": true, "more": true, "most": true, "only": true, "other": true,
	"over": true, "same": true, "should": true, "some": true, "such": true,
	"than": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "very": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "while": true, "will": true, "with": true,
	"would": true, "your": true, "yours": true,
}

// Keyword is a ranked term with its share of all words in percent.
type Keyword struct {
	Phrase  string  `json:"phrase"`
	Density float64 `json:"density"`
}

// Analysis is derived purely from the page text and raw HTML.
type Analysis struct {
	WordCount      int          `json:"wordCount"`
	ReadingLevel   ReadingLevel `json:"readingLevel"`
	KeywordDensity []Keyword    `json:"keywordDensity"`
	ContentRatio   float64      `json:"contentRatio"`
}

// Analyze computes the statistics for visible text extracted from htmlSize bytes of HTML.
func Analyze(text string, htmlSize int) Analysis {
	words := Words(text)

	return Analysis{
		WordCount:      len(words),
		ReadingLevel:   Level(ReadingEase(text, words)),
		KeywordDensity: Density(words, topKeywords),
		ContentRatio:   Ratio(len(text), htmlSize),
	}
}

// Words splits text into tokens of letters, digits and inner apostrophes.
func Words(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	words := fields[:0]
	for _, field := range fields {
		trimmed := strings.Trim(field, "'")
		if trimmed != "" {
			words = append(words, trimmed)
		}
	}

	return words
}

// Density ranks lowercase words longer than three characters, skipping stopwords,
// and returns the top n with density = occurrences / all words * 100.
// Ties are broken alphabetically.
func Density(words []string, n int) []Keyword {
	keywords := []Keyword{}
	if len(words) == 0 || n <= 0 {
		return keywords
	}

	counts := map[string]int{}
	for _, word := range words {
		lower := strings.ToLower(word)
		if len([]rune(lower)) < minKeywordLength || stopwords[lower] {
			continue
		}
		counts[lower]++
	}

	phrases := make([]string, 0, len(counts))
	for phrase := range counts {
		phrases = append(phrases, phrase)
	}

	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}

		return phrases[i] < phrases[j]
	})

	for _, phrase := range phrases[:min(n, len(phrases))] {
		keywords = append(keywords, Keyword{
			Phrase:  phrase,
			Density: round2(float64(counts[phrase]) / float64(len(words)) * 100),
		})
	}

	return keywords
}

// ReadingEase is the Flesch reading-ease score using vowel groups as a syllable proxy.
func ReadingEase(text string, words []string) float64 {
	if len(words) == 0 {
		return 0
	}

	syllables := 0
	for _, word := range words {
		syllables += Syllables(word)
	}

	wordsPerSentence := float64(len(words)) / float64(Sentences(text))
	syllablesPerWord := float64(syllables) / float64(len(words))

	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// Level buckets a reading-ease score.
func Level(ease float64) ReadingLevel {
	switch {
	case ease >= 70:
		return ReadingEasy
	case ease >= 50:
		return ReadingStandard
	case ease >= 30:
		return ReadingAdvanced
	default:
		return ReadingDifficult
	}
}

// Sentences counts runs of text terminated by . ! or ?; at least one.
func Sentences(text string) int {
	count := 0
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}

	return max(count, 1)
}

// Syllables approximates syllables as groups of consecutive vowels, minimum one.
func Syllables(word string) int {
	count := 0
	previousVowel := false

	for _, r := range strings.ToLower(word) {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !previousVowel {
			count++
		}
		previousVowel = vowel
	}

	if count > 1 && strings.HasSuffix(strings.ToLower(word), "e") && !strings.HasSuffix(strings.ToLower(word), "le") {
		count--
	}

	return max(count, 1)
}

// Ratio returns textSize as a percentage of htmlSize, rounded to two decimals.
func Ratio(textSize, htmlSize int) float64 {
	if htmlSize <= 0 {
		return 0
	}

	return round2(float64(textSize) / float64(htmlSize) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
