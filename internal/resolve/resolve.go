// Package resolve locates elements in a markup tree through tiered CSS
// selector lists with content-based validation. Structural markers
// (attributes, class names) drift release to release; content shape is
// more stable, so every structural match can be vetted by a heuristic
// before it is accepted.
package resolve

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/hyperifyio/chatextract/internal/dom"
)

// Heuristic vets a structurally-matched candidate element.
type Heuristic func(*html.Node) bool

// Config is a two-tier selector set. Fallback engages only when the
// primary tier yields nothing. Never mutated after construction.
type Config struct {
	Primary   []string
	Fallback  []string
	Heuristic Heuristic
}

func (c Config) accepts(n *html.Node) bool {
	return c.Heuristic == nil || c.Heuristic(n)
}

// FindOne tries each primary selector in order, taking the first
// structural match per selector and accepting it only if the heuristic
// passes; the first accepted match wins. If the primary tier is
// exhausted the same procedure runs over the fallback tier. A selector
// that fails to parse is a silent non-match. Returns nil when both
// tiers are exhausted.
func FindOne(root *html.Node, cfg Config) *html.Node {
	if root == nil {
		return nil
	}
	for _, tier := range [][]string{cfg.Primary, cfg.Fallback} {
		for _, raw := range tier {
			sel, err := cascadia.Parse(raw)
			if err != nil {
				continue
			}
			m := cascadia.Query(root, sel)
			if m != nil && cfg.accepts(m) {
				return m
			}
		}
	}
	return nil
}

// FindAll evaluates every primary selector against root, collecting
// matches in encounter order, filtering each through the heuristic and
// deduplicating by node identity so an element matched by two selectors
// appears once. If the combined primary pass yields zero elements the
// identical collection runs over the fallback tier; the tiers are never
// merged. The result may be empty.
func FindAll(root *html.Node, cfg Config) []*html.Node {
	if root == nil {
		return nil
	}
	if out := collectAll(root, cfg.Primary, cfg); len(out) > 0 {
		return out
	}
	return collectAll(root, cfg.Fallback, cfg)
}

func collectAll(root *html.Node, selectors []string, cfg Config) []*html.Node {
	var out []*html.Node
	seen := map[*html.Node]struct{}{}
	for _, raw := range selectors {
		sel, err := cascadia.Parse(raw)
		if err != nil {
			continue
		}
		for _, m := range cascadia.QueryAll(root, sel) {
			if _, dup := seen[m]; dup {
				continue
			}
			if !cfg.accepts(m) {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// blockTags are the element names treated as block-level when vetting
// candidates for substance.
var blockTags = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "div": {},
	"dl": {}, "fieldset": {}, "figure": {}, "footer": {}, "form": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "main": {}, "nav": {}, "ol": {},
	"p": {}, "pre": {}, "section": {}, "table": {}, "ul": {},
}

// MinTextLength accepts elements whose trimmed text content has at
// least min characters.
func MinTextLength(min int) Heuristic {
	return func(n *html.Node) bool {
		return len(strings.TrimSpace(dom.TextContent(n))) >= min
	}
}

// HasBlockChild accepts elements with at least one block-level element
// anywhere in their subtree.
func HasBlockChild() Heuristic {
	return func(n *html.Node) bool {
		found := false
		dom.Walk(n, func(cur *html.Node) bool {
			if found {
				return false
			}
			if cur != n {
				if _, ok := blockTags[dom.Tag(cur)]; ok {
					found = true
					return false
				}
			}
			return true
		})
		return found
	}
}

// MinChildCount accepts elements with at least min direct element
// children.
func MinChildCount(min int) Heuristic {
	return func(n *html.Node) bool {
		return len(dom.ChildElements(n)) >= min
	}
}

// Any combines heuristics; at least one must accept.
func Any(hs ...Heuristic) Heuristic {
	return func(n *html.Node) bool {
		for _, h := range hs {
			if h != nil && h(n) {
				return true
			}
		}
		return false
	}
}

// All combines heuristics; every one must accept.
func All(hs ...Heuristic) Heuristic {
	return func(n *html.Node) bool {
		for _, h := range hs {
			if h != nil && !h(n) {
				return false
			}
		}
		return true
	}
}
