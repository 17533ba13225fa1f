// Package carousel holds the projects carousel configuration and a
// deterministic model of its behaviour: a sliding window over a fixed list of
// cards that autoplays, loops, pauses on hover and can be moved with its dots.
package carousel

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmpty = errors.New("carousel has no cards")
	ErrIndex = errors.New("carousel index out of range")
)

// Carousel tracks the first visible card of a window over n cards. It is
// driven by explicit Tick, Hover and navigation calls and is not safe for
// concurrent use.
type Carousel struct {
	n        int
	s        Settings
	current  int
	hovered  bool
	elapsed  time.Duration
	advanced int
}

// New builds a carousel over n cards using already-resolved settings
// (see Settings.At).
func New(n int, s Settings) (*Carousel, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	if s.SlidesToShow < 1 {
		return nil, fmt.Errorf("slidesToShow must be at least 1, got %d", s.SlidesToShow)
	}
	if s.SlidesToScroll < 1 {
		s.SlidesToScroll = 1
	}

	c := &Carousel{n: n, s: s}
	if s.InitialSlide >= 0 && s.InitialSlide < n {
		c.current = c.clamp(s.InitialSlide)
	}
	return c, nil
}

// Len is the number of cards.
func (c *Carousel) Len() int { return c.n }

// Current is the index of the first visible card.
func (c *Carousel) Current() int { return c.current }

// Shown is the number of cards visible at once.
func (c *Carousel) Shown() int { return min(c.s.SlidesToShow, c.n) }

// Visible returns the indices of the cards in the window, in display order.
func (c *Carousel) Visible() []int {
	out := make([]int, c.Shown())
	for i := range out {
		out[i] = (c.current + i) % c.n
	}
	return out
}

// Dots is the number of position indicators.
func (c *Carousel) Dots() int {
	if !c.s.Dots {
		return 0
	}
	step := c.s.SlidesToScroll
	if c.s.Infinite {
		return (c.n + step - 1) / step
	}
	return (c.lastStart()+step-1)/step + 1
}

// Next moves one scroll step forward. Infinite carousels wrap; finite ones
// stop at the last full window.
func (c *Carousel) Next() { c.current = c.clamp(c.current + c.s.SlidesToScroll) }

// Prev moves one scroll step back.
func (c *Carousel) Prev() { c.current = c.clamp(c.current - c.s.SlidesToScroll) }

// GoToDot jumps to the window of dot i and restarts the autoplay interval.
func (c *Carousel) GoToDot(i int) error {
	if i < 0 || i >= c.Dots() {
		return fmt.Errorf("%w: dot %d of %d", ErrIndex, i, c.Dots())
	}
	c.current = c.clamp(i * c.s.SlidesToScroll)
	c.elapsed = 0
	return nil
}

// Hover reports the pointer entering (true) or leaving (false) the carousel.
// With pauseOnHover set, autoplay stops while hovered and its interval starts
// over when the pointer leaves.
func (c *Carousel) Hover(on bool) {
	if !c.s.PauseOnHover || c.hovered == on {
		return
	}
	c.hovered = on
	c.elapsed = 0
}

// Hovered reports whether autoplay is paused by the pointer.
func (c *Carousel) Hovered() bool { return c.hovered }

// Tick advances the autoplay clock by d and returns how many positions the
// carousel moved: one per full interval elapsed while not paused.
func (c *Carousel) Tick(d time.Duration) int {
	interval := c.s.Interval()
	if !c.s.Autoplay || interval <= 0 || c.hovered || d <= 0 {
		return 0
	}

	// c.elapsed < interval, so carrying the remainder cannot overflow
	k := d / interval
	c.elapsed += d % interval
	if c.elapsed >= interval {
		c.elapsed -= interval
		k++
	}
	if k == 0 {
		return 0
	}

	step := c.s.SlidesToScroll
	var moved int
	if c.s.Infinite {
		moved = int(k)
		shift := int(k%time.Duration(c.n)) * (step % c.n)
		c.current = c.clamp(c.current + shift)
	} else {
		toEnd := (c.lastStart() - c.current + step - 1) / step
		if k > time.Duration(toEnd) {
			// stalled at the last window
			moved = toEnd
			c.elapsed = 0
		} else {
			moved = int(k)
		}
		c.current = c.clamp(c.current + moved*step)
	}
	c.advanced += moved
	return moved
}

// Advanced is the total number of autoplay moves so far.
func (c *Carousel) Advanced() int { return c.advanced }

func (c *Carousel) lastStart() int {
	return max(c.n-c.Shown(), 0)
}

func (c *Carousel) clamp(i int) int {
	if c.s.Infinite {
		return ((i % c.n) + c.n) % c.n
	}
	return min(max(i, 0), c.lastStart())
}
