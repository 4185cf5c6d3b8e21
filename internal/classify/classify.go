// Package classify infers a message's author role from an element's
// markers. Pure inspection of the element's current attribute, class,
// and descendant state; no memoization, no side effects.
package classify

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/hyperifyio/chatextract/internal/dom"
	"github.com/hyperifyio/chatextract/message"
)

// Indicators holds the selector sets that positively identify each
// role. Evaluated in fixed priority order: user, assistant, system.
type Indicators struct {
	User      []string
	Assistant []string
	System    []string
}

// roleAttrs are attributes that carry an explicit author role. An
// explicit attribute beats any class-name substring.
var roleAttrs = []string{"data-message-author-role", "data-role", "data-author"}

// Role classifies the element. The first role whose indicator set
// matches the element or any descendant wins; failing that, an explicit
// role attribute is consulted, then class-name substrings; failing
// everything, RoleUnknown.
func Role(n *html.Node, ind Indicators) message.Role {
	if n == nil {
		return message.RoleUnknown
	}
	ordered := []struct {
		role message.Role
		sels []string
	}{
		{message.RoleUser, ind.User},
		{message.RoleAssistant, ind.Assistant},
		{message.RoleSystem, ind.System},
	}
	for _, cand := range ordered {
		if matchesAny(n, cand.sels) {
			return cand.role
		}
	}
	for _, key := range roleAttrs {
		if v, ok := dom.Attr(n, key); ok {
			if r, known := mapRoleToken(strings.ToLower(strings.TrimSpace(v))); known {
				return r
			}
		}
	}
	class := strings.ToLower(dom.AttrOr(n, "class", ""))
	switch {
	case strings.Contains(class, "user") || strings.Contains(class, "human"):
		return message.RoleUser
	case strings.Contains(class, "assistant") || strings.Contains(class, "bot") || strings.Contains(class, "agent"):
		return message.RoleAssistant
	case strings.Contains(class, "system"):
		return message.RoleSystem
	}
	return message.RoleUnknown
}

func mapRoleToken(v string) (message.Role, bool) {
	switch v {
	case "user", "human":
		return message.RoleUser, true
	case "assistant", "bot", "ai", "model":
		return message.RoleAssistant, true
	case "system", "tool":
		return message.RoleSystem, true
	}
	return message.RoleUnknown, false
}

// matchesAny reports whether the element itself or any descendant
// matches one of the selectors. Unparseable selectors are skipped.
func matchesAny(n *html.Node, selectors []string) bool {
	for _, raw := range selectors {
		sel, err := cascadia.Parse(raw)
		if err != nil {
			continue
		}
		if n.Type == html.ElementNode && sel.Match(n) {
			return true
		}
		if cascadia.Query(n, sel) != nil {
			return true
		}
	}
	return false
}
