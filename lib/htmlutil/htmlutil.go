package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText trims a selection's text and collapses inner runs of
// whitespace, which portal markup is full of.
func CleanText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, node := range sel.Nodes {
		buffer.WriteString(GetText(node))
	}
	text := strings.Trim(buffer.String(), " \t\n\u00a0")
	return innerWhitespace.ReplaceAllString(text, " ")
}

// EscapeSelector makes a JSF element id usable inside a CSS selector.
// The portal names everything "form:something" and the colon would
// otherwise be read as a pseudo-class.
func EscapeSelector(id string) string {
	return strings.ReplaceAll(id, ":", "\\:")
}

func ParseDocument(markup string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}
