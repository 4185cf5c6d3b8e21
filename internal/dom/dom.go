// Package dom holds small read-and-copy helpers over x/net/html node
// trees shared by the resolver, classifier, and part extractor.
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute and whether it was
// present. Keys compare case-insensitively.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute's value or def when absent.
func AttrOr(n *html.Node, key, def string) string {
	if v, ok := Attr(n, key); ok {
		return v
	}
	return def
}

// Tag returns the lower-cased element name, or "" for non-elements.
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// TextContent concatenates every text node under n in document order.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return b.String()
}

// ChildElements returns n's direct element children.
func ChildElements(n *html.Node) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Clone deep-copies the subtree rooted at n. The copy has no parent and
// no siblings, so it can be mutated freely without touching the source
// tree.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		cp.Attr = make([]html.Attribute, len(n.Attr))
		copy(cp.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(Clone(c))
	}
	return cp
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceWithText swaps n for a plain text node so surrounding prose
// keeps its word boundaries.
func ReplaceWithText(n *html.Node, text string) {
	if n == nil || n.Parent == nil {
		return
	}
	parent := n.Parent
	marker := &html.Node{Type: html.TextNode, Data: text}
	parent.InsertBefore(marker, n)
	parent.RemoveChild(n)
}

// Walk visits n and every descendant in document order. Returning false
// from fn skips the node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}
