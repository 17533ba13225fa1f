package carousel

import (
	"sort"
	"time"
)

// Override is the subset of settings a responsive breakpoint may replace.
// Nil fields keep the base value.
type Override struct {
	SlidesToShow   *int  `json:"slidesToShow,omitempty"`
	SlidesToScroll *int  `json:"slidesToScroll,omitempty"`
	Infinite       *bool `json:"infinite,omitempty"`
	Dots           *bool `json:"dots,omitempty"`
	InitialSlide   *int  `json:"initialSlide,omitempty"`
}

// Breakpoint applies its settings while the viewport is narrower than Width.
type Breakpoint struct {
	Width    int      `json:"breakpoint"`
	Settings Override `json:"settings"`
}

// Settings uses slick-carousel's option names so it can be handed to the
// browser unchanged.
type Settings struct {
	Dots           bool         `json:"dots"`
	Infinite       bool         `json:"infinite"`
	SlidesToShow   int          `json:"slidesToShow"`
	SlidesToScroll int          `json:"slidesToScroll"`
	Autoplay       bool         `json:"autoplay"`
	AutoplaySpeed  int          `json:"autoplaySpeed"` // ms
	PauseOnHover   bool         `json:"pauseOnHover"`
	InitialSlide   int          `json:"initialSlide"`
	Responsive     []Breakpoint `json:"responsive,omitempty"`
}

// DefaultAutoplaySpeed is the interval between automatic advances.
const DefaultAutoplaySpeed = 5 * time.Second

// Default returns the projects carousel configuration: three cards from
// 1024px up, one card below.
func Default() Settings {
	return Settings{
		Dots:           true,
		Infinite:       true,
		SlidesToShow:   3,
		SlidesToScroll: 1,
		Autoplay:       true,
		AutoplaySpeed:  int(DefaultAutoplaySpeed / time.Millisecond),
		PauseOnHover:   true,
		Responsive: []Breakpoint{
			{Width: 1024, Settings: Override{
				SlidesToShow:   intp(1),
				SlidesToScroll: intp(1),
				Infinite:       boolp(true),
				Dots:           boolp(true),
			}},
			{Width: 600, Settings: Override{
				SlidesToShow:   intp(1),
				SlidesToScroll: intp(1),
				InitialSlide:   intp(2),
			}},
			{Width: 480, Settings: Override{
				SlidesToShow:   intp(1),
				SlidesToScroll: intp(1),
			}},
		},
	}
}

// Interval is the autoplay interval.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.AutoplaySpeed) * time.Millisecond
}

// At resolves the settings in effect at the given viewport width. Breakpoints
// are max-width rules: the narrowest breakpoint wider than width wins and is
// applied on top of the base settings alone, the way slick does it. The
// result has no Responsive entries.
func (s Settings) At(width int) Settings {
	eff := s
	eff.Responsive = nil

	bps := append([]Breakpoint(nil), s.Responsive...)
	sort.Slice(bps, func(i, j int) bool { return bps[i].Width < bps[j].Width })
	for _, bp := range bps {
		if width < bp.Width {
			bp.Settings.apply(&eff)
			break
		}
	}
	return eff
}

func (o Override) apply(s *Settings) {
	if o.SlidesToShow != nil {
		s.SlidesToShow = *o.SlidesToShow
	}
	if o.SlidesToScroll != nil {
		s.SlidesToScroll = *o.SlidesToScroll
	}
	if o.Infinite != nil {
		s.Infinite = *o.Infinite
	}
	if o.Dots != nil {
		s.Dots = *o.Dots
	}
	if o.InitialSlide != nil {
		s.InitialSlide = *o.InitialSlide
	}
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }
