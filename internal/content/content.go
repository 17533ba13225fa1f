// Package content holds the static portfolio data: profile copy, skill and
// language levels, project cards and contact links. A Content value is loaded
// once at startup and treated as read-only afterwards.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxLevel is the upper bound of a bar entry's level.
const MaxLevel = 100

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid content")

//go:embed default.yaml
var defaultDocument []byte

// Profile is the copy shown in the About section.
type Profile struct {
	Greeting     string   `yaml:"greeting" json:"greeting"`
	Name         string   `yaml:"name" json:"name"`
	Blurb        []string `yaml:"blurb" json:"blurb"`
	CallToAction string   `yaml:"call_to_action" json:"call_to_action"`
}

// BarEntry is a labelled level rendered as a proportional bar.
type BarEntry struct {
	Label string `yaml:"label" json:"label"`
	Level int    `yaml:"level" json:"level"`
}

// Width is the bar's fill width as a CSS percentage.
func (b BarEntry) Width() string {
	return fmt.Sprintf("%d%%", b.Level)
}

// SkillEntry and LanguageEntry share the bar shape.
type (
	SkillEntry    = BarEntry
	LanguageEntry = BarEntry
)

// ProjectEntry is one carousel card.
type ProjectEntry struct {
	ImageRef    string `yaml:"image" json:"image"`
	Description string `yaml:"description" json:"description"`
	DomainTag   string `yaml:"domain" json:"domain"`
}

// ContactLink is an outbound link shown as an icon.
type ContactLink struct {
	Name string `yaml:"name" json:"name"`
	Href string `yaml:"href" json:"href"`
	Icon string `yaml:"icon" json:"icon"`
}

// Contact is the Contact section.
type Contact struct {
	Heading string        `yaml:"heading" json:"heading"`
	Links   []ContactLink `yaml:"links" json:"links"`
}

// Content is the whole page's data.
type Content struct {
	Profile   Profile         `yaml:"profile" json:"profile"`
	Skills    []SkillEntry    `yaml:"skills" json:"skills"`
	Languages []LanguageEntry `yaml:"languages" json:"languages"`
	Projects  []ProjectEntry  `yaml:"projects" json:"projects"`
	Contact   Contact         `yaml:"contact" json:"contact"`
}

// Default returns the embedded content document.
func Default() (*Content, error) {
	return Load(bytes.NewReader(defaultDocument))
}

// LoadFile reads and validates a YAML content file.
func LoadFile(path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML document and validates it. Unknown keys are rejected.
func Load(r io.Reader) (*Content, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Content
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every violated invariant at once.
func (c *Content) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	if strings.TrimSpace(c.Profile.Name) == "" {
		fail("profile name is empty")
	}
	for i, s := range c.Skills {
		if err := checkBar(s); err != nil {
			fail("skills[%d]: %v", i, err)
		}
	}
	for i, l := range c.Languages {
		if err := checkBar(l); err != nil {
			fail("languages[%d]: %v", i, err)
		}
	}
	for i, p := range c.Projects {
		if err := checkImageRef(p.ImageRef); err != nil {
			fail("projects[%d]: %v", i, err)
		}
	}
	for i, l := range c.Contact.Links {
		if strings.TrimSpace(l.Href) == "" {
			fail("contact.links[%d] (%s): href is empty", i, l.Name)
		}
	}
	return errors.Join(errs...)
}

func checkBar(b BarEntry) error {
	if strings.TrimSpace(b.Label) == "" {
		return errors.New("label is empty")
	}
	if b.Level < 0 || b.Level > MaxLevel {
		return fmt.Errorf("level %d of %q outside [0,%d]", b.Level, b.Label, MaxLevel)
	}
	return nil
}

// checkImageRef accepts absolute http(s) URLs and root-relative paths.
func checkImageRef(ref string) error {
	if ref == "" {
		return errors.New("image is empty")
	}
	u, err := url.Parse(ref)
	if err != nil {
		return fmt.Errorf("image %q: %w", ref, err)
	}
	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		if u.Host == "" {
			return fmt.Errorf("image %q has no host", ref)
		}
	case u.Scheme == "" && strings.HasPrefix(u.Path, "/"):
	default:
		return fmt.Errorf("image %q is neither an http(s) URL nor a root-relative path", ref)
	}
	return nil
}
