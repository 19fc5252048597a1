// Package telemetry provides frame timing, windowed run statistics, bookmarks and CSV output.
package telemetry

import "github.com/pthm-cable/embers/regime"

// Collector accumulates per-frame engine events within a simulation-time
// window and produces WindowStats.
type Collector struct {
	windowSec float64

	// Current window tracking
	windowStart      float64
	windowStartFrame int64

	// Event counters for current window
	frames          int
	spawned         int
	dropped         int
	expired         int
	bursts          int
	burstParticles  int
	energizes       int
	calmDowns       int
	energizedFrames int

	// Live particle count per frame, reused across windows
	live []float64
}

// NewCollector creates a new stats collector.
// windowSec: how long each stats window lasts in simulation seconds; zero
// disables flushing.
func NewCollector(windowSec float64) *Collector {
	return &Collector{
		windowSec: windowSec,
		live:      make([]float64, 0, 1024),
	}
}

// RecordSpawn records one spawn request. Requests the engine could not
// place because it was at capacity count as dropped.
func (c *Collector) RecordSpawn(requested, spawned int) {
	c.spawned += spawned
	if requested > spawned {
		c.dropped += requested - spawned
	}
}

// RecordBurst records a gesture burst and how many particles it placed.
func (c *Collector) RecordBurst(spawned int) {
	c.bursts++
	c.burstParticles += spawned
}

// RecordExpired records particles removed by compaction.
func (c *Collector) RecordExpired(n int) {
	c.expired += n
}

// RecordTransition records a regime flip.
func (c *Collector) RecordTransition(t regime.Transition) {
	switch t {
	case regime.Energize:
		c.energizes++
	case regime.CalmDown:
		c.calmDowns++
	}
}

// RecordFrame closes out one frame with the live particle count after
// compaction and the regime the frame ran in.
func (c *Collector) RecordFrame(live int, energized bool) {
	c.frames++
	if energized {
		c.energizedFrames++
	}
	c.live = append(c.live, float64(live))
}

// ShouldFlush returns true if the window has covered windowSec of simulation time.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return c.windowSec > 0 && simTime-c.windowStart >= c.windowSec
}

// Flush produces a WindowStats and resets counters for the next window.
// frame and simTime mark the end of the window; mode is the controller
// mode at that point.
func (c *Collector) Flush(frame int64, simTime float64, mode regime.Mode, r regime.Regime) WindowStats {
	var lastLive int
	if n := len(c.live); n > 0 {
		lastLive = int(c.live[n-1])
	}
	var energizedFrac float64
	if c.frames > 0 {
		energizedFrac = float64(c.energizedFrames) / float64(c.frames)
	}

	// Summarize sorts in place; the order is not needed after this point
	mean, p10, p50, p90 := Summarize(c.live)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		SimTimeSec:       simTime,
		Frames:           c.frames,

		Mode:   mode.String(),
		Regime: r.String(),

		Live:     lastLive,
		LiveMean: mean,
		LiveP10:  p10,
		LiveP50:  p50,
		LiveP90:  p90,

		Spawned:        c.spawned,
		Dropped:        c.dropped,
		Expired:        c.expired,
		Bursts:         c.bursts,
		BurstParticles: c.burstParticles,

		Energizes:     c.energizes,
		CalmDowns:     c.calmDowns,
		EnergizedFrac: energizedFrac,
	}

	// Reset for next window
	c.windowStart = simTime
	c.windowStartFrame = frame
	c.frames = 0
	c.spawned = 0
	c.dropped = 0
	c.expired = 0
	c.bursts = 0
	c.burstParticles = 0
	c.energizes = 0
	c.calmDowns = 0
	c.energizedFrames = 0
	c.live = c.live[:0]

	return stats
}

// WindowSec returns the configured window length in seconds.
func (c *Collector) WindowSec() float64 {
	return c.windowSec
}
