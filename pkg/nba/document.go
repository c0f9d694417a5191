package nba

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed page together with the URL it was fetched from
type Document struct {
	URL string
	raw []byte
	doc *goquery.Document
}

// NewDocument parses body as html
func NewDocument(url string, body []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html from %s: %w", url, err)
	}
	return &Document{URL: url, raw: body, doc: doc}, nil
}

// Bytes returns the body the document was parsed from
func (d *Document) Bytes() []byte {
	return d.raw
}

// Find runs a css selector over the whole document
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Table returns the table with the given id. The source site ships some
// tables inside html comments and reveals them with javascript, so when the
// table is not in the live tree the comments are parsed as well
func (d *Document) Table(id string) (*goquery.Selection, bool) {
	selector := "table#" + id
	if t := d.doc.Find(selector).First(); t.Length() > 0 {
		return t, true
	}

	marker := `id="` + id + `"`
	for _, comment := range commentsContaining(d.doc.Nodes, marker) {
		inner, err := goquery.NewDocumentFromReader(strings.NewReader(comment))
		if err != nil {
			continue
		}
		if t := inner.Find(selector).First(); t.Length() > 0 {
			return t, true
		}
	}
	return nil, false
}

// commentsContaining walks the node tree collecting comment text that contains marker
func commentsContaining(roots []*html.Node, marker string) []string {
	var found []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode && strings.Contains(n.Data, marker) {
			found = append(found, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return found
}

// bodyRows returns the data rows of a table, skipping repeated header rows
func bodyRows(table *goquery.Selection) *goquery.Selection {
	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}
	return rows.FilterFunction(func(_ int, row *goquery.Selection) bool {
		return !row.HasClass("thead") && row.Find("td").Length() > 0
	})
}

// cell returns the th or td carrying data-stat=stat, or false when the row has none
func cell(row *goquery.Selection, stat string) (*goquery.Selection, bool) {
	c := row.Find(`[data-stat="` + stat + `"]`).First()
	return c, c.Length() > 0
}

// cellText returns the trimmed text of a data-stat cell
func cellText(row *goquery.Selection, stat string) (string, bool) {
	c, ok := cell(row, stat)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(c.Text()), true
}
