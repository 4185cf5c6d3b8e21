package parts

import (
	"net/url"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/hyperifyio/chatextract/message"
)

func block(t *testing.T, src string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "article" {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if found == nil {
		t.Fatalf("fixture needs an <article> wrapper")
	}
	return found
}

func TestExtract_PlainText(t *testing.T) {
	el := block(t, `<article><div><p>Hello, how are you?</p></div></article>`)
	got := Extract(el, Options{})
	if len(got) != 1 {
		t.Fatalf("expected 1 part, got %d", len(got))
	}
	if got[0].Type != message.PartText || got[0].Text != "Hello, how are you?" {
		t.Fatalf("unexpected part: %+v", got[0])
	}
}

func TestExtract_CodeWithLanguageClass(t *testing.T) {
	el := block(t, `<article><pre><code class="language-python">print("hello")</code></pre></article>`)
	got := Extract(el, Options{})
	if len(got) != 1 {
		t.Fatalf("expected 1 part, got %d", len(got))
	}
	p := got[0]
	if p.Type != message.PartCode {
		t.Fatalf("expected code part, got %q", p.Type)
	}
	if p.Lang == nil || *p.Lang != "python" {
		t.Fatalf("expected lang python, got %v", p.Lang)
	}
	if !strings.Contains(p.Code, `print("hello")`) {
		t.Fatalf("unexpected code body %q", p.Code)
	}
}

func TestExtract_CodeLanguageFromAncestorLabel(t *testing.T) {
	el := block(t, `<article><div>
		<div class="code-header"><span class="code-language">Python</span></div>
		<pre><code>x = 1</code></pre>
	</div></article>`)
	got := Extract(el, Options{})
	var code *message.Part
	for i := range got {
		if got[i].Type == message.PartCode {
			code = &got[i]
		}
	}
	if code == nil {
		t.Fatalf("no code part in %+v", got)
	}
	if code.Lang == nil || *code.Lang != "python" {
		t.Fatalf("expected label-derived lang python, got %v", code.Lang)
	}
}

func TestExtract_OrderedList(t *testing.T) {
	el := block(t, `<article><ol><li>First</li><li>Second</li></ol></article>`)
	got := Extract(el, Options{})
	if len(got) != 1 {
		t.Fatalf("expected 1 part, got %d", len(got))
	}
	p := got[0]
	if p.Type != message.PartList || !p.Ordered {
		t.Fatalf("expected ordered list, got %+v", p)
	}
	if len(p.Items) != 2 || p.Items[0] != "First" || p.Items[1] != "Second" {
		t.Fatalf("unexpected items %v", p.Items)
	}
}

func TestExtract_NestedListNotFlattened(t *testing.T) {
	el := block(t, `<article><ul>
		<li>outer one<ul><li>inner</li></ul></li>
		<li>outer two</li>
	</ul></article>`)
	got := Extract(el, Options{})
	if len(got) != 1 || got[0].Type != message.PartList {
		t.Fatalf("expected a single list part, got %+v", got)
	}
	items := got[0].Items
	if len(items) != 2 {
		t.Fatalf("expected 2 direct items, got %v", items)
	}
	if !strings.Contains(items[0], "inner") {
		t.Fatalf("nested list text should ride along in its parent item: %q", items[0])
	}
}

func TestExtract_CategoryOrder(t *testing.T) {
	// Source order is quote, code, heading, list; output follows the
	// fixed category order regardless.
	el := block(t, `<article>
		<blockquote>quoted words</blockquote>
		<pre><code class="language-go">x := 1</code></pre>
		<h2>Section</h2>
		<ul><li>a</li><li>b</li></ul>
		<img src="pic.png" alt="a pic">
		<p>Everything you asked about is covered above.</p>
	</article>`)
	got := Extract(el, Options{})
	kinds := make([]message.PartKind, 0, len(got))
	for _, p := range got {
		kinds = append(kinds, p.Type)
	}
	want := []message.PartKind{
		message.PartHeading, message.PartQuote, message.PartList,
		message.PartCode, message.PartImageRef, message.PartText,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected kinds %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], kinds[i])
		}
	}
	if got[0].Level != 2 || got[0].Text != "Section" {
		t.Fatalf("unexpected heading %+v", got[0])
	}
	if got[1].Text != "quoted words" {
		t.Fatalf("unexpected quote %+v", got[1])
	}
	if got[4].Alt == nil || *got[4].Alt != "a pic" {
		t.Fatalf("unexpected image alt %+v", got[4])
	}
	if !strings.Contains(got[5].Text, "Everything you asked about") {
		t.Fatalf("unexpected trailing text %+v", got[5])
	}
}

func TestExtract_TrailingTextSignificanceGate(t *testing.T) {
	// Short leftovers around structural parts are noise.
	el := block(t, `<article><p>ok</p><pre><code>x</code></pre></article>`)
	got := Extract(el, Options{})
	if len(got) != 1 || got[0].Type != message.PartCode {
		t.Fatalf("expected lone code part, got %+v", got)
	}

	el = block(t, `<article><p>Here is the code I promised you:</p><pre><code>x</code></pre></article>`)
	got = Extract(el, Options{})
	if len(got) != 2 {
		t.Fatalf("expected code plus trailing text, got %+v", got)
	}
	if got[1].Type != message.PartText || !strings.Contains(got[1].Text, "Here is the code") {
		t.Fatalf("unexpected trailing text %+v", got[1])
	}
}

func TestExtract_StripsUIControls(t *testing.T) {
	el := block(t, `<article>
		<p>The real answer lives here.</p>
		<button>Copy</button>
		<div class="flex actions"><span>Share</span></div>
		<span aria-label="Regenerate this">retry</span>
	</article>`)
	got := Extract(el, Options{})
	if len(got) != 1 || got[0].Type != message.PartText {
		t.Fatalf("expected a single text part, got %+v", got)
	}
	text := got[0].Text
	for _, junk := range []string{"Copy", "Share", "retry"} {
		if strings.Contains(text, junk) {
			t.Fatalf("control text %q leaked into %q", junk, text)
		}
	}
	if !strings.Contains(text, "The real answer lives here.") {
		t.Fatalf("prose lost: %q", text)
	}
}

func TestExtract_UnknownFallback(t *testing.T) {
	// All visible text sits inside controls, so stripping leaves
	// nothing; the raw text falls through as a single unknown part.
	el := block(t, `<article><div><button>Copy transcript</button></div></article>`)
	got := Extract(el, Options{})
	if len(got) != 1 || got[0].Type != message.PartUnknown {
		t.Fatalf("expected unknown part, got %+v", got)
	}
	if got[0].RawText != "Copy transcript" {
		t.Fatalf("unexpected raw text %q", got[0].RawText)
	}
}

func TestExtract_EmptyBlock(t *testing.T) {
	el := block(t, `<article><div></div></article>`)
	if got := Extract(el, Options{}); len(got) != 0 {
		t.Fatalf("expected empty sequence, got %+v", got)
	}
}

func TestExtract_ImageDoesNotGateStructuralBranch(t *testing.T) {
	el := block(t, `<article><img src="only.png"><p>Prose long enough to keep.</p></article>`)
	got := Extract(el, Options{})
	if len(got) != 1 || got[0].Type != message.PartText {
		t.Fatalf("image alone must not trigger the structural branch, got %+v", got)
	}
}

func TestExtract_RelativeImageResolvedAgainstBase(t *testing.T) {
	base, _ := url.Parse("https://chat.example.com/c/abc")
	el := block(t, `<article>
		<h3>Attachment</h3>
		<img src="/files/img.png" alt="diagram">
	</article>`)
	got := Extract(el, Options{BaseURL: base})
	var img *message.Part
	for i := range got {
		if got[i].Type == message.PartImageRef {
			img = &got[i]
		}
	}
	if img == nil {
		t.Fatalf("no image part in %+v", got)
	}
	if img.Src == nil || *img.Src != "https://chat.example.com/files/img.png" {
		t.Fatalf("unexpected src %v", img.Src)
	}
}

func TestExtract_DoesNotMutateSource(t *testing.T) {
	el := block(t, `<article><pre><code>x</code></pre><p>Some surrounding prose here.</p></article>`)
	before := renderText(el)
	Extract(el, Options{})
	if after := renderText(el); after != before {
		t.Fatalf("source tree mutated: %q -> %q", before, after)
	}
}

func renderText(n *html.Node) string {
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
	walk(n)
	return b.String()
}
