package chatextract

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	yaml "gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultProfileYAML []byte

// SelectorTier is a two-tier ordered selector list; fallback selectors
// engage only when the primary tier produces nothing.
type SelectorTier struct {
	Primary  []string `yaml:"primary"`
	Fallback []string `yaml:"fallback"`
}

// Profile describes how to locate and label transcript structure for
// one platform. Source markup drifts release to release, so profiles
// are data: callers can ship an updated YAML profile without a new
// binary. Never mutated after loading.
type Profile struct {
	Platform      string       `yaml:"platform"`
	ProductNames  []string     `yaml:"productNames"`
	ChatIDPattern string       `yaml:"chatIdPattern"`
	Container     SelectorTier `yaml:"container"`
	Messages      SelectorTier `yaml:"messages"`
	Title         SelectorTier `yaml:"title"`

	Roles struct {
		User      []string `yaml:"user"`
		Assistant []string `yaml:"assistant"`
		System    []string `yaml:"system"`
	} `yaml:"roles"`

	Author    []string `yaml:"author"`
	Timestamp []string `yaml:"timestamp"`
}

var defaultProfile = mustParseProfile(defaultProfileYAML)

// DefaultProfile returns the built-in profile.
func DefaultProfile() *Profile {
	p := *defaultProfile
	return &p
}

// LoadProfile reads a YAML profile. Sections left empty fall back to
// the built-in profile, so an override file only needs the selectors
// that drifted.
func LoadProfile(r io.Reader) (*Profile, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	p.fillDefaults()
	return &p, nil
}

// LoadProfileFile reads a YAML profile from disk.
func LoadProfileFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadProfile(f)
}

// fillDefaults overlays built-in values onto unset sections, mirroring
// the usual flags-over-file precedence: explicit profile content wins,
// absent content inherits.
func (p *Profile) fillDefaults() {
	d := defaultProfile
	if p.Platform == "" {
		p.Platform = d.Platform
	}
	if len(p.ProductNames) == 0 {
		p.ProductNames = append([]string{}, d.ProductNames...)
	}
	if p.ChatIDPattern == "" {
		p.ChatIDPattern = d.ChatIDPattern
	}
	if len(p.Container.Primary) == 0 && len(p.Container.Fallback) == 0 {
		p.Container = d.Container
	}
	if len(p.Messages.Primary) == 0 && len(p.Messages.Fallback) == 0 {
		p.Messages = d.Messages
	}
	if len(p.Title.Primary) == 0 && len(p.Title.Fallback) == 0 {
		p.Title = d.Title
	}
	if len(p.Roles.User) == 0 && len(p.Roles.Assistant) == 0 && len(p.Roles.System) == 0 {
		p.Roles = d.Roles
	}
	if len(p.Author) == 0 {
		p.Author = append([]string{}, d.Author...)
	}
	if len(p.Timestamp) == 0 {
		p.Timestamp = append([]string{}, d.Timestamp...)
	}
}

func mustParseProfile(b []byte) *Profile {
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		panic(fmt.Sprintf("chatextract: built-in profile: %v", err))
	}
	return &p
}
