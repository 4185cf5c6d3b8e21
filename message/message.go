// Package message defines the normalized transcript document model
// produced by extraction. All types are plain serializable values with
// no references back into the markup tree they came from.
package message

import "time"

// SchemaVersion is the fixed document schema tag. Consumers may switch
// on it for forward compatibility.
const SchemaVersion = "1.0"

// Role classifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleUnknown   Role = "unknown"
)

// Source records where and when a document was captured.
type Source struct {
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"capturedAt"`
	Platform   string    `json:"platform"`
}

// Chat holds conversation-level metadata.
type Chat struct {
	ChatID string `json:"chatId,omitempty"`
	Title  string `json:"title,omitempty"`
}

// DOMRef is a debug-only locator hint for the element a message was
// extracted from.
type DOMRef struct {
	SelectorHint string `json:"selectorHint"`
}

// Message is one transcript entry. Index reflects the element's position
// in the original enumeration, not a renumbering after drops, so the
// retained set can carry gaps. Parts is never empty for a retained
// message.
type Message struct {
	ID        string     `json:"id"`
	Index     int        `json:"index"`
	Role      Role       `json:"role"`
	Author    string     `json:"author,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	DOMRef    *DOMRef    `json:"domRef,omitempty"`
	Parts     []Part     `json:"parts"`
}

// Document is the normalized, versioned extraction result. Messages are
// ordered by ascending Index.
type Document struct {
	SchemaVersion string    `json:"schemaVersion"`
	Source        Source    `json:"source"`
	Chat          Chat      `json:"chat"`
	Messages      []Message `json:"messages"`
}

// ParseResult pairs a best-effort document with the non-fatal issues
// accumulated while producing it. Created fresh per extraction call.
type ParseResult struct {
	Document Document `json:"document"`
	Warnings []string `json:"warnings"`
}
