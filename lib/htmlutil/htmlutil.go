package htmlutil

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("ovxassist.lib.htmlutil")

// GetText concatenates every text node under the given node.
func GetText(node *html.Node) string {
	var out strings.Builder
	appendText(node, &out)
	return out.String()
}

func appendText(node *html.Node, out *strings.Builder) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		out.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		appendText(child, out)
	}
}

// trimmed text of the first element in the selection
func Text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// counts every child node, text nodes included
func ChildCount(node *html.Node) int {
	n := 0
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		n++
	}
	return n
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func printableOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func anchorName(n *html.Node) string {
	name := strings.TrimSpace(printableOnly(GetText(n)))
	return innerWhitespace.ReplaceAllString(name, " ")
}

// GetAnchors pairs the cleaned up text and parsed href of every node
// in the selection, skipping anchors whose href does not parse.
func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		link, err := url.Parse(attrValue(n, "href"))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		anchor := Anchor{Name: anchorName(n), Href: link.String()}
		anchors = append(anchors, anchor)
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", anchor.Name),
			attribute.String("url", anchor.Href),
		))
	}

	return anchors
}
