// Package chatextract extracts a normalized, versioned transcript
// document from a rendered chat page's markup tree. The source markup
// is adversarial-by-change: attributes, class names, and nesting drift
// over time, so resolution is tiered with content-based validation and
// extraction degrades to partial results with warnings instead of
// failing outright.
package chatextract

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/hyperifyio/chatextract/internal/classify"
	"github.com/hyperifyio/chatextract/internal/dom"
	"github.com/hyperifyio/chatextract/internal/ident"
	"github.com/hyperifyio/chatextract/internal/normalize"
	"github.com/hyperifyio/chatextract/internal/parts"
	"github.com/hyperifyio/chatextract/internal/resolve"
	"github.com/hyperifyio/chatextract/message"
)

// ErrContainerNotFound reports that the tree holds no recognizable
// transcript region. Callers should treat it as "this is not a
// transcript page", not as a programming error.
var ErrContainerNotFound = errors.New("chatextract: conversation container not found")

// Options configures a single extraction call. The engine itself is
// stateless; everything here is per call.
type Options struct {
	// Debug includes a per-message locator hint in the output.
	Debug bool

	// BaseURL is the address the tree was captured from. It becomes the
	// document's source URL and resolves relative image references.
	// When empty the engine falls back to the tree's canonical-link or
	// og:url metadata.
	BaseURL string

	// Profile overrides the built-in selector profile.
	Profile *Profile

	// Now supplies the capture clock; nil means time.Now. Tests freeze
	// it for byte-identical documents.
	Now func() time.Time
}

func (o Options) profile() *Profile {
	if o.Profile != nil {
		return o.Profile
	}
	return defaultProfile
}

// Parse runs a full extraction over the tree rooted at root. The only
// fatal condition is an unresolvable container; every other issue is
// converted into a warning on the returned result. The tree is never
// mutated and the returned document holds no references into it.
func Parse(root *html.Node, opts Options) (message.ParseResult, error) {
	var res message.ParseResult
	prof := opts.profile()

	container := resolve.FindOne(root, containerConfig(prof))
	if container == nil {
		return res, ErrContainerNotFound
	}

	blocks := resolve.FindAll(container, messageConfig(prof))
	log.Debug().Int("blocks", len(blocks)).Msg("message blocks resolved")

	warnings := []string{}
	if len(blocks) == 0 {
		warnings = append(warnings, "no message blocks found within container")
	}

	base := parseBaseURL(opts.BaseURL)
	indicators := classify.Indicators{
		User:      prof.Roles.User,
		Assistant: prof.Roles.Assistant,
		System:    prof.Roles.System,
	}

	msgs := make([]message.Message, 0, len(blocks))
	for i, el := range blocks {
		msg, ok, warn := parseMessage(el, i, prof, indicators, base, opts.Debug)
		if warn != "" {
			log.Warn().Int("index", i).Msg("message block dropped")
			warnings = append(warnings, warn)
		}
		if ok {
			msgs = append(msgs, msg)
		}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	sourceURL := opts.BaseURL
	if sourceURL == "" {
		sourceURL = ambientSourceURL(root)
	}

	res.Document = message.Document{
		SchemaVersion: message.SchemaVersion,
		Source: message.Source{
			URL:        sourceURL,
			CapturedAt: now().UTC(),
			Platform:   prof.Platform,
		},
		Chat: message.Chat{
			ChatID: chatID(prof, sourceURL),
			Title:  title(root, prof),
		},
		Messages: msgs,
	}
	res.Warnings = warnings
	return res, nil
}

// parseMessage handles one enumerated block. A panic inside
// classification or decomposition is converted into a positional
// warning and the block is dropped; extraction continues. The index is
// the pre-filter enumeration position and feeds the stable id, so the
// retained set can carry index gaps.
func parseMessage(el *html.Node, index int, prof *Profile, ind classify.Indicators, base *url.URL, debug bool) (msg message.Message, ok bool, warn string) {
	defer func() {
		if r := recover(); r != nil {
			msg, ok = message.Message{}, false
			warn = fmt.Sprintf("message %d: extraction failed: %v", index, r)
		}
	}()

	role := classify.Role(el, ind)
	ps := parts.Extract(el, parts.Options{BaseURL: base})
	if len(ps) == 0 {
		return message.Message{}, false, fmt.Sprintf("message %d: no extractable content, dropped", index)
	}

	msg = message.Message{
		ID:    ident.Assign(role, ps, index),
		Index: index,
		Role:  role,
		Parts: ps,
	}
	if author := authorOf(el, prof); author != "" {
		msg.Author = author
	}
	if ts := timestampOf(el, prof); ts != nil {
		msg.CreatedAt = ts
	}
	if debug {
		msg.DOMRef = &message.DOMRef{SelectorHint: locatorHint(el)}
	}
	return msg, true, ""
}

func containerConfig(prof *Profile) resolve.Config {
	return resolve.Config{
		Primary:  prof.Container.Primary,
		Fallback: prof.Container.Fallback,
		// Substance check: a real transcript region has either several
		// direct children or a meaningful amount of text.
		Heuristic: resolve.Any(resolve.MinChildCount(1), resolve.MinTextLength(40)),
	}
}

func messageConfig(prof *Profile) resolve.Config {
	return resolve.Config{
		Primary:   prof.Messages.Primary,
		Fallback:  prof.Messages.Fallback,
		Heuristic: resolve.All(resolve.MinTextLength(4), resolve.HasBlockChild()),
	}
}

func parseBaseURL(raw string) *url.URL {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}

// ambientSourceURL reads the page's own idea of its address when the
// caller did not supply one.
func ambientSourceURL(root *html.Node) string {
	cfg := resolve.Config{Primary: []string{`link[rel="canonical"]`, `meta[property="og:url"]`}}
	n := resolve.FindOne(root, cfg)
	if n == nil {
		return ""
	}
	if v, ok := dom.Attr(n, "href"); ok {
		return v
	}
	return dom.AttrOr(n, "content", "")
}

// chatID pulls the conversation identifier out of the source URL's
// path, e.g. https://host/c/abc123 yields abc123.
func chatID(prof *Profile, sourceURL string) string {
	if prof.ChatIDPattern == "" || sourceURL == "" {
		return ""
	}
	re, err := regexp.Compile(prof.ChatIDPattern)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(sourceURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// title resolves the conversation title through the profile's selector
// tier, falling back to the ambient document title unless that title is
// just the platform's own product name.
func title(root *html.Node, prof *Profile) string {
	cfg := resolve.Config{
		Primary:   prof.Title.Primary,
		Fallback:  prof.Title.Fallback,
		Heuristic: resolve.MinTextLength(1),
	}
	if n := resolve.FindOne(root, cfg); n != nil {
		if t := normalize.Whitespace(dom.TextContent(n)); t != "" {
			return t
		}
	}
	ambient := normalize.Whitespace(documentTitle(root))
	for _, name := range prof.ProductNames {
		if strings.EqualFold(ambient, strings.TrimSpace(name)) {
			return ""
		}
	}
	return ambient
}

func documentTitle(root *html.Node) string {
	var found *html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if dom.Tag(n) == "title" {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return ""
	}
	return dom.TextContent(found)
}

func authorOf(el *html.Node, prof *Profile) string {
	for _, raw := range prof.Author {
		sel, err := cascadia.Parse(raw)
		if err != nil {
			continue
		}
		n := cascadia.Query(el, sel)
		if n == nil && el.Type == html.ElementNode && sel.Match(el) {
			n = el
		}
		if n == nil {
			continue
		}
		if v, ok := dom.Attr(n, "data-message-author-name"); ok && v != "" {
			return normalize.Whitespace(v)
		}
		if t := normalize.Whitespace(dom.TextContent(n)); t != "" {
			return t
		}
	}
	return ""
}

// timestampOf reads a timestamp-bearing child: a time element's
// datetime attribute or a data-timestamp attribute, accepting RFC 3339
// or epoch seconds/milliseconds.
func timestampOf(el *html.Node, prof *Profile) *time.Time {
	for _, raw := range prof.Timestamp {
		sel, err := cascadia.Parse(raw)
		if err != nil {
			continue
		}
		n := cascadia.Query(el, sel)
		if n == nil {
			continue
		}
		candidates := []string{
			dom.AttrOr(n, "datetime", ""),
			dom.AttrOr(n, "data-timestamp", ""),
			strings.TrimSpace(dom.TextContent(n)),
		}
		for _, c := range candidates {
			if c == "" {
				continue
			}
			if ts, err := time.Parse(time.RFC3339, c); err == nil {
				utc := ts.UTC()
				return &utc
			}
			if epoch, err := strconv.ParseInt(c, 10, 64); err == nil && epoch > 0 {
				var ts time.Time
				if epoch > 1e12 {
					ts = time.UnixMilli(epoch)
				} else {
					ts = time.Unix(epoch, 0)
				}
				utc := ts.UTC()
				return &utc
			}
		}
	}
	return nil
}

// locatorHint summarizes where an element sits: tag, id, leading
// classes, and position among same-tag siblings. Debug aid only; never
// part of identity.
func locatorHint(el *html.Node) string {
	var b strings.Builder
	b.WriteString(dom.Tag(el))
	if id, ok := dom.Attr(el, "id"); ok && id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	classes := strings.Fields(dom.AttrOr(el, "class", ""))
	for i, c := range classes {
		if i == 2 {
			break
		}
		b.WriteString(".")
		b.WriteString(c)
	}
	pos := 1
	for sib := el.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && sib.Data == el.Data {
			pos++
		}
	}
	fmt.Fprintf(&b, ":nth-of-type(%d)", pos)
	return b.String()
}
