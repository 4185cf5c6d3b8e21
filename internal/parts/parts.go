// Package parts decomposes a message element's subtree into ordered,
// typed content parts. All mutation happens on a private working copy;
// the source tree is never touched. Malformed input yields fewer parts,
// not an error.
package parts

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/chatextract/internal/dom"
	"github.com/hyperifyio/chatextract/internal/normalize"
	"github.com/hyperifyio/chatextract/message"
)

// minSignificantText is the threshold below which trailing prose left
// over after structural extraction is treated as noise.
const minSignificantText = 10

// Options tunes extraction for one call.
type Options struct {
	// BaseURL, when set, resolves relative image references.
	BaseURL *url.URL
}

var langClassPattern = regexp.MustCompile(`(?i)(?:^|\s)(?:language|lang)-([A-Za-z0-9+#._-]+)`)

// Extract decomposes el into parts: structural categories first in the
// fixed order headings, quotes, lists, code, images, then a trailing
// text part when the remaining prose is significant. With no structural
// finds the remaining prose alone becomes a single text part; with
// nothing at all the raw text falls through as a single unknown part,
// or the result is empty.
func Extract(el *html.Node, opts Options) []message.Part {
	if el == nil {
		return nil
	}
	work := dom.Clone(el)

	headingNodes := collectHeadings(work)
	quoteNodes := collectQuotes(work)
	listNodes := collectLists(work)
	codeNodes := collectCode(work)
	imageNodes := collectImages(work)

	var headings, quotes, lists, codes, images []message.Part
	for _, n := range headingNodes {
		level, err := strconv.Atoi(dom.Tag(n)[1:])
		if err != nil || level < 1 || level > 6 {
			continue
		}
		headings = append(headings, message.Heading(level, normalize.Whitespace(dom.TextContent(n))))
	}
	for _, n := range quoteNodes {
		quotes = append(quotes, message.Quote(normalize.Whitespace(dom.TextContent(n))))
	}
	extractedLists := listNodes[:0:0]
	for _, n := range listNodes {
		items := directItems(n)
		if len(items) == 0 {
			// Not a real list; leave its prose in place.
			continue
		}
		lists = append(lists, message.List(dom.Tag(n) == "ol", items))
		extractedLists = append(extractedLists, n)
	}
	for _, n := range codeNodes {
		codes = append(codes, message.Code(detectLanguage(n), normalize.Whitespace(codeText(n))))
	}
	for _, n := range imageNodes {
		images = append(images, imagePart(n, opts.BaseURL))
	}

	// Only now take the structural nodes out of the working copy,
	// leaving inline markers so surrounding prose keeps its word and
	// sentence boundaries.
	structural := make([]*html.Node, 0,
		len(headingNodes)+len(quoteNodes)+len(extractedLists)+len(codeNodes)+len(imageNodes))
	structural = append(structural, headingNodes...)
	structural = append(structural, quoteNodes...)
	structural = append(structural, extractedLists...)
	structural = append(structural, codeNodes...)
	structural = append(structural, imageNodes...)
	for _, n := range structural {
		if attached(n, work) {
			dom.ReplaceWithText(n, " ["+dom.Tag(n)+"] ")
		}
	}

	stripControls(work)
	remaining := normalize.Whitespace(dom.TextContent(work))

	var out []message.Part
	if len(headings)+len(quotes)+len(lists)+len(codes) > 0 {
		out = append(out, headings...)
		out = append(out, quotes...)
		out = append(out, lists...)
		out = append(out, codes...)
		out = append(out, images...)
		if len(remaining) > minSignificantText {
			out = append(out, message.Text(remaining))
		}
		return out
	}
	if remaining != "" {
		return []message.Part{message.Text(remaining)}
	}
	if raw := dom.TextContent(el); strings.TrimSpace(raw) != "" {
		return []message.Part{message.Unknown(normalize.Whitespace(raw))}
	}
	return nil
}

func collectHeadings(work *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(work, func(n *html.Node) bool {
		switch dom.Tag(n) {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func collectQuotes(work *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(work, func(n *html.Node) bool {
		if dom.Tag(n) == "blockquote" {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// collectLists gathers top-level list elements only; a list nested
// under another list's item rides along inside its parent item instead
// of becoming its own part.
func collectLists(work *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(work, func(n *html.Node) bool {
		switch dom.Tag(n) {
		case "ul", "ol":
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// collectCode gathers pre blocks plus standalone code elements tagged
// with a language class.
func collectCode(work *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(work, func(n *html.Node) bool {
		switch dom.Tag(n) {
		case "pre":
			out = append(out, n)
			return false
		case "code":
			if langClassPattern.MatchString(dom.AttrOr(n, "class", "")) {
				out = append(out, n)
				return false
			}
		}
		return true
	})
	return out
}

func collectImages(work *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(work, func(n *html.Node) bool {
		if dom.Tag(n) == "img" {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func directItems(list *html.Node) []string {
	var items []string
	for _, c := range dom.ChildElements(list) {
		if dom.Tag(c) != "li" {
			continue
		}
		items = append(items, normalize.Whitespace(dom.TextContent(c)))
	}
	return items
}

func codeText(n *html.Node) string {
	if dom.Tag(n) == "pre" {
		var inner *html.Node
		dom.Walk(n, func(cur *html.Node) bool {
			if inner != nil {
				return false
			}
			if dom.Tag(cur) == "code" {
				inner = cur
				return false
			}
			return true
		})
		if inner != nil {
			return dom.TextContent(inner)
		}
	}
	return dom.TextContent(n)
}

// detectLanguage first parses a language-/lang- class on the block or
// its inner code element, then falls back to a sibling or ancestor
// label element carrying a language attribute or language-styled class.
func detectLanguage(n *html.Node) *string {
	if lang := classLanguage(n); lang != nil {
		return lang
	}
	var found *string
	dom.Walk(n, func(cur *html.Node) bool {
		if found != nil {
			return false
		}
		if cur != n && dom.Tag(cur) == "code" {
			found = classLanguage(cur)
			return false
		}
		return true
	})
	if found != nil {
		return found
	}
	anc := n.Parent
	for depth := 0; anc != nil && depth < 3; depth++ {
		var lang *string
		dom.Walk(anc, func(cur *html.Node) bool {
			if cur == n || lang != nil {
				return false
			}
			if cur.Type != html.ElementNode {
				return true
			}
			for _, key := range []string{"data-language", "data-lang"} {
				if v, ok := dom.Attr(cur, key); ok && v != "" {
					l := strings.ToLower(v)
					lang = &l
					return false
				}
			}
			if cur != anc && strings.Contains(strings.ToLower(dom.AttrOr(cur, "class", "")), "language") {
				if text := strings.ToLower(normalize.Whitespace(dom.TextContent(cur))); text != "" {
					lang = &text
					return false
				}
			}
			return true
		})
		if lang != nil {
			return lang
		}
		anc = anc.Parent
	}
	return nil
}

func classLanguage(n *html.Node) *string {
	m := langClassPattern.FindStringSubmatch(dom.AttrOr(n, "class", ""))
	if m == nil {
		return nil
	}
	lang := strings.ToLower(m[1])
	return &lang
}

func imagePart(n *html.Node, base *url.URL) message.Part {
	var alt, src *string
	if v, ok := dom.Attr(n, "alt"); ok {
		alt = &v
	}
	if v, ok := dom.Attr(n, "src"); ok {
		if base != nil {
			if ref, err := url.Parse(v); err == nil {
				v = base.ResolveReference(ref).String()
			}
		}
		src = &v
	}
	return message.ImageRef(alt, src)
}

// stripControls drops known non-content UI affordances from the working
// copy: buttons, toolbar/action containers, and anything whose
// accessible label mentions copying, regenerating, or editing.
func stripControls(work *html.Node) {
	var doomed []*html.Node
	dom.Walk(work, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if isControl(n) {
			doomed = append(doomed, n)
			return false
		}
		return true
	})
	for _, n := range doomed {
		dom.Detach(n)
	}
}

func isControl(n *html.Node) bool {
	if dom.Tag(n) == "button" {
		return true
	}
	if strings.EqualFold(dom.AttrOr(n, "role", ""), "toolbar") {
		return true
	}
	class := strings.ToLower(dom.AttrOr(n, "class", ""))
	if strings.Contains(class, "toolbar") || strings.Contains(class, "action") {
		return true
	}
	label := strings.ToLower(dom.AttrOr(n, "aria-label", ""))
	for _, tok := range []string{"copy", "regenerate", "edit"} {
		if strings.Contains(label, tok) {
			return true
		}
	}
	return false
}

// attached reports whether n still hangs off the working copy root.
func attached(n, root *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}
