package parser

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// SEOData represents extracted SEO information.
// Missing elements yield false flags and empty strings; text is HTML-decoded.
type SEOData struct {
	HasTitle       bool
	Title          string
	HasDescription bool
	Description    string
	H1Count        int
}

// Document is a parsed HTML page together with the URL it was fetched from.
type Document struct {
	URL   *url.URL
	Base  *url.URL
	Doc   *goquery.Document
	Raw   []byte
	SEO   SEOData
	Links []string
}

// ParseHTML parses body as HTML regardless of the declared content type.
// contentType is only used to pick a charset decoder; undecodable input is parsed as-is.
func ParseHTML(pageURL *url.URL, body []byte, contentType string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(decode(body, contentType))
	if err != nil {
		return nil, err
	}

	return &Document{
		URL:   pageURL,
		Base:  parseBase(doc, pageURL),
		Doc:   doc,
		Raw:   body,
		SEO:   parseSEO(doc),
		Links: parseLinks(doc),
	}, nil
}

func decode(body []byte, contentType string) io.Reader {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return bytes.NewReader(body)
	}

	return reader
}

// MetaByName returns the content of the first <meta name=...> matching name case-insensitively.
func (d *Document) MetaByName(name string) (string, bool) {
	return findMeta(d.Doc, "name", name)
}

// MetaByProperty returns the content of the first <meta property=...> matching property.
func (d *Document) MetaByProperty(property string) (string, bool) {
	return findMeta(d.Doc, "property", property)
}

func parseBase(doc *goquery.Document, pageURL *url.URL) *url.URL {
	if pageURL == nil {
		return nil
	}

	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return pageURL
	}

	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return pageURL
	}

	return pageURL.ResolveReference(parsed)
}

func parseSEO(doc *goquery.Document) SEOData {
	seo := SEOData{}

	titleSelection := doc.Find("title").First()
	if titleSelection.Length() > 0 {
		seo.Title = CleanText(titleSelection.Text())
		seo.HasTitle = seo.Title != ""
	}

	seo.Description, seo.HasDescription = findMeta(doc, "name", "description")
	seo.H1Count = doc.Find("h1").Length()

	return seo
}

func findMeta(doc *goquery.Document, attr, value string) (string, bool) {
	var (
		found   bool
		content string
	)

	doc.Find("meta[" + attr + "]").EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		key, ok := selection.Attr(attr)
		if !ok {
			return true
		}

		if !strings.EqualFold(strings.TrimSpace(key), value) {
			return true
		}

		raw, _ := selection.Attr("content")
		content = CleanText(raw)
		found = content != ""

		return false
	})

	return content, found
}

func parseLinks(doc *goquery.Document) []string {
	links := []string{}
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, ok := selection.Attr("href")
		if !ok {
			return
		}

		links = append(links, strings.TrimSpace(href))
	})

	return links
}
