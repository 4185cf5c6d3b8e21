package normalize

import "testing"

func TestWhitespace_LineEndingsAndRuns(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a\r\nb\rc", "a\nb\nc"},
		{"  hello   world  ", "hello world"},
		{"tabs\t\there", "tabs here"},
		{"\n  padded  \n", "padded"},
		{"", ""},
		{"   \t ", ""},
	}
	for _, c := range cases {
		if got := Whitespace(c.in); got != c.want {
			t.Fatalf("Whitespace(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWhitespace_Idempotent(t *testing.T) {
	inputs := []string{"a\r\n  b\tc", "already clean", "x\ny"}
	for _, in := range inputs {
		once := Whitespace(in)
		if twice := Whitespace(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestStripUINoise_Tokens(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello Copy", "Hello"},
		{"Copy code", ""},
		{"foo Copy bar", "foo bar"},
		{"Regenerate response", ""},
		{"Thumbs up", ""},
		{"2 / 3", ""},
		{"answer is fine 1 / 2", "answer is fine"},
		{"line one\nCopy\nline two", "line one\nline two"},
	}
	for _, c := range cases {
		if got := StripUINoise(c.in); got != c.want {
			t.Fatalf("StripUINoise(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStripUINoise_LeavesEmbeddedWords(t *testing.T) {
	// Tokens only match on word boundaries; words that merely contain
	// them stay intact.
	cases := []string{"copying files", "edited yesterday", "shared folder"}
	for _, in := range cases {
		if got := StripUINoise(in); got != in {
			t.Fatalf("StripUINoise(%q) = %q, want unchanged", in, got)
		}
	}
}
