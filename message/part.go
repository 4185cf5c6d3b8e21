package message

import (
	"encoding/json"
	"fmt"
)

// PartKind tags one of the eight part variants.
type PartKind string

const (
	PartText     PartKind = "text"
	PartCode     PartKind = "code"
	PartList     PartKind = "list"
	PartQuote    PartKind = "quote"
	PartLink     PartKind = "link"
	PartHeading  PartKind = "heading"
	PartImageRef PartKind = "imageRef"
	PartUnknown  PartKind = "unknown"
)

// Part is one semantically-typed fragment of a message's content. The
// union is closed: Type selects the variant and each variant populates
// only its own fields, the rest stay zero. Parts are immutable value
// objects; build them with the constructors below.
type Part struct {
	Type PartKind

	// text, quote, link, heading
	Text string

	// code; Lang is nil when no language was detected
	Lang *string
	Code string

	// list
	Ordered bool
	Items   []string

	// link
	Href string

	// heading
	Level int

	// imageRef
	Alt *string
	Src *string

	// unknown
	RawText string
}

func Text(text string) Part { return Part{Type: PartText, Text: text} }

func Code(lang *string, code string) Part { return Part{Type: PartCode, Lang: lang, Code: code} }

func List(ordered bool, items []string) Part {
	return Part{Type: PartList, Ordered: ordered, Items: items}
}

func Quote(text string) Part { return Part{Type: PartQuote, Text: text} }

func Link(text, href string) Part { return Part{Type: PartLink, Text: text, Href: href} }

func Heading(level int, text string) Part {
	return Part{Type: PartHeading, Level: level, Text: text}
}

func ImageRef(alt, src *string) Part { return Part{Type: PartImageRef, Alt: alt, Src: src} }

func Unknown(rawText string) Part { return Part{Type: PartUnknown, RawText: rawText} }

// partJSON is the wire shape shared by all variants. Pointer fields let
// unmarshalling distinguish absent from zero, and let marshalling emit
// only the selected variant's fields (with explicit nulls where the
// schema calls for nullable values).
type partJSON struct {
	Type    PartKind  `json:"type"`
	Text    *string   `json:"text,omitempty"`
	Lang    *string   `json:"lang,omitempty"`
	Code    *string   `json:"code,omitempty"`
	Ordered *bool     `json:"ordered,omitempty"`
	Items   *[]string `json:"items,omitempty"`
	Href    *string   `json:"href,omitempty"`
	Level   *int      `json:"level,omitempty"`
	Alt     *string   `json:"alt,omitempty"`
	Src     *string   `json:"src,omitempty"`
	RawText *string   `json:"rawText,omitempty"`
}

func (p Part) MarshalJSON() ([]byte, error) {
	switch p.Type {
	case PartText:
		return json.Marshal(struct {
			Type PartKind `json:"type"`
			Text string   `json:"text"`
		}{p.Type, p.Text})
	case PartCode:
		return json.Marshal(struct {
			Type PartKind `json:"type"`
			Lang *string  `json:"lang"`
			Code string   `json:"code"`
		}{p.Type, p.Lang, p.Code})
	case PartList:
		items := p.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(struct {
			Type    PartKind `json:"type"`
			Ordered bool     `json:"ordered"`
			Items   []string `json:"items"`
		}{p.Type, p.Ordered, items})
	case PartQuote:
		return json.Marshal(struct {
			Type PartKind `json:"type"`
			Text string   `json:"text"`
		}{p.Type, p.Text})
	case PartLink:
		return json.Marshal(struct {
			Type PartKind `json:"type"`
			Text string   `json:"text"`
			Href string   `json:"href"`
		}{p.Type, p.Text, p.Href})
	case PartHeading:
		return json.Marshal(struct {
			Type  PartKind `json:"type"`
			Level int      `json:"level"`
			Text  string   `json:"text"`
		}{p.Type, p.Level, p.Text})
	case PartImageRef:
		return json.Marshal(struct {
			Type PartKind `json:"type"`
			Alt  *string  `json:"alt"`
			Src  *string  `json:"src"`
		}{p.Type, p.Alt, p.Src})
	case PartUnknown:
		return json.Marshal(struct {
			Type    PartKind `json:"type"`
			RawText string   `json:"rawText"`
		}{p.Type, p.RawText})
	}
	return nil, fmt.Errorf("message: marshal part: unknown kind %q", p.Type)
}

func (p *Part) UnmarshalJSON(data []byte) error {
	var w partJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case PartText, PartCode, PartList, PartQuote, PartLink, PartHeading, PartImageRef, PartUnknown:
	default:
		return fmt.Errorf("message: unmarshal part: unknown kind %q", w.Type)
	}
	*p = Part{
		Type:    w.Type,
		Text:    deref(w.Text),
		Lang:    w.Lang,
		Code:    deref(w.Code),
		Ordered: w.Ordered != nil && *w.Ordered,
		Href:    deref(w.Href),
		Alt:     w.Alt,
		Src:     w.Src,
		RawText: deref(w.RawText),
	}
	if w.Items != nil {
		p.Items = *w.Items
	}
	if w.Level != nil {
		p.Level = *w.Level
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
