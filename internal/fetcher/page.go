package fetcher

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DocumentPage is a Page backed by a parsed HTML snapshot. It serves static
// fetches directly and handles the DOM-reading half of browser fetches.
type DocumentPage struct {
	url    string
	status int
	doc    *goquery.Document
}

// NewDocumentPage parses HTML from r into a DocumentPage.
func NewDocumentPage(url string, status int, r io.Reader) (*DocumentPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &DocumentPage{url: url, status: status, doc: doc}, nil
}

// URL returns the address the page was fetched from.
func (p *DocumentPage) URL() string { return p.url }

// StatusCode returns the HTTP status of the main document response.
func (p *DocumentPage) StatusCode() int { return p.status }

// Title returns the trimmed contents of the title element.
func (p *DocumentPage) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// QueryAll returns the elements matching a CSS selector in document order.
func (p *DocumentPage) QueryAll(selector string) []Element {
	var elems []Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, docElement{sel: s})
	})
	return elems
}

// ScrollTo is a no-op: a parsed snapshot has no viewport.
func (p *DocumentPage) ScrollTo(fraction float64) error { return nil }

// Release is a no-op: the snapshot holds no external resources.
func (p *DocumentPage) Release() {}

// docElement adapts a goquery selection to the Element interface.
type docElement struct {
	sel *goquery.Selection
}

// Text returns the element's trimmed text content.
func (e docElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// Attribute returns the value of the named attribute.
func (e docElement) Attribute(name string) (string, bool) {
	return e.sel.Attr(name)
}
