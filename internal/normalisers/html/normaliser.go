// Package html converts wiki markup bodies to clean plain text.
package html

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser strips HTML markup and normalises whitespace.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// ToText parses the markup, drops non-content subtrees, joins text
// nodes with single spaces and collapses all whitespace runs.
// Empty or tag-only input yields the empty string.
func (n *Normaliser) ToText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	for _, node := range doc.Selection.Nodes {
		collectText(node, &b)
	}

	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(b.String(), " "))
}

// collectText appends the data of every text node under n, separated
// by spaces so adjacent elements never run together.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
