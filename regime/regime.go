// Package regime decides each frame whether the visuals are calm or energized.
//
// A Controller runs in one of three modes. The forced modes pin the regime.
// Under Auto the regime follows either a motion signal with hysteresis and a
// cooldown (live capture) or a fixed calm/energized wall-clock cycle (still
// images). All times are seconds on a monotonic clock supplied by the caller.
package regime

import (
	"fmt"
	"math"

	"github.com/pthm-cable/embers/config"
)

// Regime is the active visual state.
type Regime uint8

const (
	Calm Regime = iota
	Energized
)

// String returns the regime name.
func (r Regime) String() string {
	switch r {
	case Calm:
		return "calm"
	case Energized:
		return "energized"
	default:
		return fmt.Sprintf("regime(%d)", uint8(r))
	}
}

// Mode is the user-selected driver.
type Mode uint8

const (
	Auto Mode = iota
	ForceCalm
	ForceEnergized

	modeCount
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case ForceCalm:
		return "calm (forced)"
	case ForceEnergized:
		return "energized (forced)"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Modes lists every mode in cycle order.
var Modes = [...]Mode{Auto, ForceCalm, ForceEnergized}

// Transition reports a regime flip produced by one update.
type Transition uint8

const (
	None Transition = iota
	Energize
	CalmDown
)

// String returns the transition name.
func (t Transition) String() string {
	switch t {
	case None:
		return "none"
	case Energize:
		return "energize"
	case CalmDown:
		return "calm"
	default:
		return fmt.Sprintf("transition(%d)", uint8(t))
	}
}

// Controller is the calm/energized state machine. It is not safe for
// concurrent use; the frame loop owns it.
type Controller struct {
	cfg         config.RegimeConfig
	cycleLength float64

	mode       Mode
	energized  bool
	lastHigh   float64 // last time the motion or gesture signal was high
	since      float64 // time of the last regime flip
	cycleStart float64
}

// New creates a controller in Auto mode, calm, with the clock cycle starting at now.
func New(cfg config.RegimeConfig, now float64) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		cfg:         cfg,
		cycleLength: cfg.CalmDuration + cfg.EnergizedDuration,
		lastHigh:    math.Inf(-1),
		since:       now,
		cycleStart:  now,
	}, nil
}

// Mode returns the selected mode.
func (c *Controller) Mode() Mode { return c.mode }

// Energized reports whether the energized regime is active.
func (c *Controller) Energized() bool { return c.energized }

// Regime returns the active regime.
func (c *Controller) Regime() Regime {
	if c.energized {
		return Energized
	}
	return Calm
}

// Since returns the time of the last regime flip.
func (c *Controller) Since() float64 { return c.since }

// UpdateMotion evaluates the live-capture driver. A motion value above the
// enter threshold, or an open gesture, energizes immediately and refreshes the
// cooldown. Calming requires motion below the exit threshold, no gesture, and
// strictly more than the cooldown since the last high signal.
func (c *Controller) UpdateMotion(now, motion float64, gestureOpen bool) Transition {
	if c.pinned() {
		return c.set(c.mode == ForceEnergized, now)
	}

	energized := c.energized
	if motion > c.cfg.EnterThreshold || gestureOpen {
		c.lastHigh = now
		energized = true
	}
	if energized && motion < c.cfg.ExitThreshold && !gestureOpen && now-c.lastHigh > c.cfg.Cooldown {
		energized = false
	}
	return c.set(energized, now)
}

// UpdateClock evaluates the still-image driver: calm for CalmDuration, then
// energized for EnergizedDuration, repeating from the cycle start.
func (c *Controller) UpdateClock(now float64) Transition {
	if c.pinned() {
		return c.set(c.mode == ForceEnergized, now)
	}
	return c.set(c.phase(now) >= c.cfg.CalmDuration, now)
}

// phase returns the position within the clock cycle, in [0, cycleLength).
func (c *Controller) phase(now float64) float64 {
	p := math.Mod(now-c.cycleStart, c.cycleLength)
	if p < 0 {
		p += c.cycleLength
	}
	return p
}

// CycleRemaining returns seconds until the clock driver next flips.
func (c *Controller) CycleRemaining(now float64) float64 {
	p := c.phase(now)
	if p < c.cfg.CalmDuration {
		return c.cfg.CalmDuration - p
	}
	return c.cycleLength - p
}

// Cycle advances the mode round-robin and restarts the clock cycle.
func (c *Controller) Cycle(now float64) Mode {
	c.SetMode((c.mode+1)%modeCount, now)
	return c.mode
}

// SetMode selects a mode directly and restarts the clock cycle. The regime
// itself changes on the next update.
func (c *Controller) SetMode(m Mode, now float64) {
	if m >= modeCount {
		m = Auto
	}
	c.mode = m
	c.cycleStart = now
}

func (c *Controller) pinned() bool {
	return c.mode == ForceCalm || c.mode == ForceEnergized
}

func (c *Controller) set(energized bool, now float64) Transition {
	if energized == c.energized {
		return None
	}
	c.energized = energized
	c.since = now
	if energized {
		return Energize
	}
	return CalmDown
}
