// Package ident derives stable message identifiers from role,
// normalized content, and enumeration position. Ids are identity hints:
// identical input always produces the identical id, and whitespace-only
// or UI-noise-only edits never change it.
package ident

import (
	"strconv"
	"strings"

	"github.com/hyperifyio/chatextract/internal/normalize"
	"github.com/hyperifyio/chatextract/message"
)

const hashSeed = 5381

// Assign builds the stable id "msg_<hash>_<index>" where hash is a
// 32-bit rolling multiplicative-XOR accumulator over
// "<role>:<canonical>:<index>", rendered in lowercase base-36. The
// canonical string is the noise-stripped concatenation of tagged part
// fragments. Pure and deterministic.
func Assign(role message.Role, parts []message.Part, index int) string {
	canonical := normalize.StripUINoise(Canonical(parts))
	input := string(role) + ":" + canonical + ":" + strconv.Itoa(index)
	return "msg_" + strconv.FormatUint(uint64(hash(input)), 36) + "_" + strconv.Itoa(index)
}

// Canonical maps each part to a tagged fragment and joins the fragments
// with newlines.
func Canonical(parts []message.Part) string {
	fragments := make([]string, 0, len(parts))
	for _, p := range parts {
		fragments = append(fragments, fragment(p))
	}
	return strings.Join(fragments, "\n")
}

func fragment(p message.Part) string {
	switch p.Type {
	case message.PartText:
		return normalize.Whitespace(p.Text)
	case message.PartCode:
		lang := "plain"
		if p.Lang != nil && *p.Lang != "" {
			lang = *p.Lang
		}
		return "[CODE:" + lang + "]" + normalize.Whitespace(p.Code)
	case message.PartList:
		kind := "ul"
		if p.Ordered {
			kind = "ol"
		}
		items := make([]string, 0, len(p.Items))
		for _, it := range p.Items {
			items = append(items, normalize.Whitespace(it))
		}
		return "[LIST:" + kind + "]" + strings.Join(items, "|")
	case message.PartQuote:
		return "[QUOTE]" + normalize.Whitespace(p.Text)
	case message.PartLink:
		return "[LINK:" + p.Href + "]" + normalize.Whitespace(p.Text)
	case message.PartHeading:
		return "[H" + strconv.Itoa(p.Level) + "]" + normalize.Whitespace(p.Text)
	case message.PartImageRef:
		src := ""
		if p.Src != nil {
			src = *p.Src
		}
		alt := ""
		if p.Alt != nil {
			alt = *p.Alt
		}
		return "[IMG:" + src + "]" + alt
	case message.PartUnknown:
		return normalize.Whitespace(p.RawText)
	}
	return ""
}

// hash is the djb2 xor variant: seed 5381, acc = acc*33 ^ c per rune,
// truncated to unsigned 32 bits.
func hash(s string) uint32 {
	acc := uint32(hashSeed)
	for _, r := range s {
		acc = acc*33 ^ uint32(r)
	}
	return acc
}
