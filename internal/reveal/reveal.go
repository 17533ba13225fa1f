// Package reveal models the one-shot "reveal on scroll" animation: a two-state
// machine fed by a viewport visibility signal, plus the transition timing that
// the browser applies when the machine flips.
package reveal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// State is the reveal state of one element.
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine moves from Hidden to Visible the first time it observes an
// intersecting element and never moves back. The zero value is Hidden.
// A Machine is not safe for concurrent use.
type Machine struct {
	state State
}

// Observe feeds one visibility sample and reports whether this sample fired
// the reveal. It returns true at most once over the Machine's lifetime.
func (m *Machine) Observe(intersecting bool) bool {
	if m.state == Visible || !intersecting {
		return false
	}
	m.state = Visible
	return true
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Frame is an animatable snapshot of an element.
type Frame struct {
	Opacity float64
	OffsetY int // px, positive is downward
	ScaleX  float64
}

// Transition describes the animation between the Hidden and Visible frames.
type Transition struct {
	From     Frame
	To       Frame
	Duration time.Duration
	Delay    time.Duration
}

var (
	// Section is the uniform fade-and-rise applied to every page section.
	Section = Transition{
		From:     Frame{Opacity: 0, OffsetY: 50, ScaleX: 1},
		To:       Frame{Opacity: 1, OffsetY: 0, ScaleX: 1},
		Duration: time.Second,
		Delay:    600 * time.Millisecond,
	}

	// Intro is the About paragraph.
	Intro = Transition{
		From:     Frame{Opacity: 0, OffsetY: 25, ScaleX: 1},
		To:       Frame{Opacity: 1, OffsetY: 0, ScaleX: 1},
		Duration: time.Second,
		Delay:    1500 * time.Millisecond,
	}

	// Action is the About call-to-action button.
	Action = Intro.WithDelay(2 * time.Second)
)

// FadeIn is a pure opacity transition.
func FadeIn(duration, delay time.Duration) Transition {
	return Transition{
		From:     Frame{Opacity: 0, ScaleX: 1},
		To:       Frame{Opacity: 1, ScaleX: 1},
		Duration: duration,
		Delay:    delay,
	}
}

// Fill grows an element horizontally from its left edge.
func Fill(duration, delay time.Duration) Transition {
	return Transition{
		From:     Frame{Opacity: 1, ScaleX: 0},
		To:       Frame{Opacity: 1, ScaleX: 1},
		Duration: duration,
		Delay:    delay,
	}
}

// WithDelay returns a copy of t starting after d.
func (t Transition) WithDelay(d time.Duration) Transition {
	t.Delay = d
	return t
}

// Frame returns the frame shown in state s.
func (t Transition) Frame(s State) Frame {
	if s == Visible {
		return t.To
	}
	return t.From
}

func (t Transition) animatesOpacity() bool { return t.From.Opacity != t.To.Opacity }

func (t Transition) animatesTransform() bool {
	return t.From.OffsetY != t.To.OffsetY || t.From.ScaleX != t.To.ScaleX
}

// Style renders the inline CSS for state s. Only the properties the
// transition animates are emitted.
func (t Transition) Style(s State) string {
	f := t.Frame(s)

	var decls []string
	if t.animatesOpacity() {
		decls = append(decls, "opacity:"+num(f.Opacity))
	}
	if t.animatesTransform() {
		var fns []string
		if t.From.OffsetY != t.To.OffsetY {
			fns = append(fns, fmt.Sprintf("translateY(%dpx)", f.OffsetY))
		}
		if t.From.ScaleX != t.To.ScaleX {
			fns = append(fns, "scaleX("+num(f.ScaleX)+")")
			decls = append(decls, "transform-origin:left")
		}
		decls = append(decls, "transform:"+strings.Join(fns, " "))
	}
	return strings.Join(decls, ";")
}

// CSS renders the CSS transition declaration value.
func (t Transition) CSS() string {
	timing := seconds(t.Duration) + " ease " + seconds(t.Delay)

	var parts []string
	if t.animatesOpacity() {
		parts = append(parts, "opacity "+timing)
	}
	if t.animatesTransform() {
		parts = append(parts, "transform "+timing)
	}
	return strings.Join(parts, ", ")
}

// Stagger spaces the reveals of list items: item i starts at Base + i*Step.
type Stagger struct {
	Base time.Duration
	Step time.Duration
}

var (
	SkillStagger    = Stagger{Base: time.Second, Step: 200 * time.Millisecond}
	LanguageStagger = Stagger{Base: 2 * time.Second, Step: 200 * time.Millisecond}
)

// Delay returns the start delay of item i.
func (s Stagger) Delay(i int) time.Duration {
	return s.Base + time.Duration(i)*s.Step
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func seconds(d time.Duration) string {
	return num(d.Seconds()) + "s"
}
