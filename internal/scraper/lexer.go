package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Lex reduces an HTML document to a flat stream of trimmed text lines, one
// per text node, with internal whitespace collapsed and empty lines dropped.
// Script, style and template contents are excluded. The output is
// deterministic and order-preserving; all downstream parsing works on this
// stream instead of the markup.
func Lex(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	var lines []string
	for _, root := range doc.Nodes {
		collectText(root, &lines)
	}
	return lines, nil
}

func collectText(n *html.Node, lines *[]string) {
	if n.Type == html.TextNode {
		if line := collapseSpace(n.Data); line != "" {
			*lines = append(*lines, line)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, lines)
	}
}

// collapseSpace trims and squashes all interior whitespace runs, including
// non-breaking spaces, to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
