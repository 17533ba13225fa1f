// Package page turns content into the view model rendered by the server's
// templates: the four sections in their fixed order, the reveal styles of
// every animated element and the carousel configuration.
package page

import (
	"html/template"
	"time"

	"github.com/divymav/portfolio/internal/carousel"
	"github.com/divymav/portfolio/internal/content"
	"github.com/divymav/portfolio/internal/reveal"
)

// SectionID names a page section. It doubles as the HTML anchor.
type SectionID string

const (
	About    SectionID = "about"
	Skills   SectionID = "skills"
	Projects SectionID = "projects"
	Contact  SectionID = "contact"
)

// Order is the mount order of the sections. It never changes.
var Order = [...]SectionID{About, Skills, Projects, Contact}

// ParseSection returns the section named s.
func ParseSection(s string) (SectionID, bool) {
	for _, id := range Order {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// barDuration is the length of a bar's label fade and fill.
const barDuration = time.Second

// Reveal is one animated element: its transition and the state machine
// deciding which end of it is rendered.
type Reveal struct {
	t reveal.Transition
	m *reveal.Machine
}

// NewReveal starts a hidden element animated by t.
func NewReveal(t reveal.Transition) Reveal {
	return Reveal{t: t, m: new(reveal.Machine)}
}

// Observe feeds a visibility sample to the element's machine.
func (r Reveal) Observe(intersecting bool) bool { return r.m.Observe(intersecting) }

// State is the element's current reveal state.
func (r Reveal) State() reveal.State { return r.m.State() }

// Style is the inline CSS of the current state.
func (r Reveal) Style() template.CSS {
	return template.CSS(r.t.Style(r.m.State()))
}

// Visible is the CSS the browser switches to on reveal.
func (r Reveal) Visible() template.CSS {
	return template.CSS(r.t.Style(reveal.Visible))
}

// Transition is the CSS transition value.
func (r Reveal) Transition() template.CSS {
	return template.CSS(r.t.CSS())
}

// Section is one mounted section.
type Section struct {
	ID     SectionID
	Reveal Reveal
}

// Bar is one bar-list entry.
type Bar struct {
	Label       string
	Level       int
	Width       string
	LabelReveal Reveal
	FillReveal  Reveal
}

// BarList is a labelled list of bars revealed as a whole.
type BarList struct {
	Title string
	Bars  []Bar
}

// NewBarList renders entries with staggered reveal delays.
func NewBarList(title string, entries []content.BarEntry, st reveal.Stagger) BarList {
	bl := BarList{Title: title, Bars: make([]Bar, 0, len(entries))}
	for i, e := range entries {
		delay := st.Delay(i)
		bl.Bars = append(bl.Bars, Bar{
			Label:       e.Label,
			Level:       e.Level,
			Width:       e.Width(),
			LabelReveal: NewReveal(reveal.FadeIn(barDuration, delay)),
			FillReveal:  NewReveal(reveal.Fill(barDuration, delay)),
		})
	}
	return bl
}

// View is everything the page template needs.
type View struct {
	ViewID   string
	Sections []Section

	Profile      content.Profile
	IntroReveal  Reveal
	ActionReveal Reveal

	Skills    BarList
	Languages BarList

	Projects []content.ProjectEntry
	Carousel carousel.Settings

	Contact content.Contact
}

// Build assembles the view for one page load.
func Build(c *content.Content, viewID string) View {
	v := View{
		ViewID:       viewID,
		Sections:     make([]Section, 0, len(Order)),
		Profile:      c.Profile,
		IntroReveal:  NewReveal(reveal.Intro),
		ActionReveal: NewReveal(reveal.Action),
		Skills:       NewBarList("Skills", c.Skills, reveal.SkillStagger),
		Languages:    NewBarList("Languages", c.Languages, reveal.LanguageStagger),
		Projects:     c.Projects,
		Carousel:     carousel.Default(),
		Contact:      c.Contact,
	}
	for _, id := range Order {
		v.Sections = append(v.Sections, Section{ID: id, Reveal: NewReveal(reveal.Section)})
	}
	return v
}

// reveals lists every animated element of the view.
func (v *View) reveals() []Reveal {
	out := []Reveal{v.IntroReveal, v.ActionReveal}
	for _, s := range v.Sections {
		out = append(out, s.Reveal)
	}
	for _, bl := range []BarList{v.Skills, v.Languages} {
		for _, b := range bl.Bars {
			out = append(out, b.LabelReveal, b.FillReveal)
		}
	}
	return out
}

// RevealAll marks every element as already seen, so the page renders in its
// final state without waiting for scroll events.
func (v *View) RevealAll() {
	for _, r := range v.reveals() {
		r.Observe(true)
	}
}
