package chatextract

import (
	"strings"
	"testing"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	if p.Platform != "chatgpt" {
		t.Fatalf("unexpected platform %q", p.Platform)
	}
	if len(p.Container.Primary) == 0 || len(p.Container.Fallback) == 0 {
		t.Fatalf("built-in container tiers must not be empty")
	}
	if len(p.Messages.Primary) == 0 || len(p.Roles.User) == 0 {
		t.Fatalf("built-in message and role selectors must not be empty")
	}
}

func TestLoadProfile_OverlaysDefaults(t *testing.T) {
	override := `
platform: claude
container:
  primary:
    - "#chat-root"
`
	p, err := LoadProfile(strings.NewReader(override))
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Platform != "claude" {
		t.Fatalf("explicit value lost: %q", p.Platform)
	}
	if len(p.Container.Primary) != 1 || p.Container.Primary[0] != "#chat-root" {
		t.Fatalf("explicit container tier lost: %v", p.Container.Primary)
	}
	// Absent sections inherit the built-in profile.
	if len(p.Messages.Primary) == 0 {
		t.Fatalf("message selectors should inherit defaults")
	}
	if p.ChatIDPattern == "" {
		t.Fatalf("chat id pattern should inherit defaults")
	}
	if len(p.Roles.Assistant) == 0 {
		t.Fatalf("role indicators should inherit defaults")
	}
}

func TestLoadProfile_RejectsMalformedYAML(t *testing.T) {
	if _, err := LoadProfile(strings.NewReader("container: [unclosed")); err == nil {
		t.Fatalf("expected error for malformed profile")
	}
}
