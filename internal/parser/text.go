package parser

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
)

// invisible elements never contribute to page text.
var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
}

// inline elements do not break words.
var inline = map[string]bool{
	"a": true, "abbr": true, "b": true, "cite": true, "code": true, "em": true,
	"i": true, "label": true, "mark": true, "q": true, "s": true, "small": true,
	"span": true, "strong": true, "sub": true, "sup": true, "time": true, "u": true,
}

// CleanText decodes entities and collapses runs of whitespace.
func CleanText(value string) string {
	return strings.Join(strings.Fields(html.UnescapeString(value)), " ")
}

// Text returns the visible body text with whitespace collapsed.
// Block element boundaries count as word breaks, so "<p>a</p><p>b</p>" reads as "a b".
func (d *Document) Text() string {
	body := d.Doc.Find("body")
	if body.Length() == 0 {
		body = d.Doc.Selection
	}

	var builder strings.Builder
	body.Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			appendText(&builder, node)
		}
	})

	return strings.Join(strings.Fields(builder.String()), " ")
}

func appendText(builder *strings.Builder, node *nethtml.Node) {
	switch node.Type {
	case nethtml.TextNode:
		builder.WriteString(node.Data)
		return
	case nethtml.ElementNode:
		if invisible[node.Data] {
			return
		}
	case nethtml.CommentNode:
		return
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		appendText(builder, child)
	}

	if node.Type == nethtml.ElementNode && !inline[node.Data] {
		builder.WriteByte(' ')
	}
}
