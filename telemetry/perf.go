package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one timed step of a simulation frame.
type Phase uint8

// Frame phases, in data-flow order.
const (
	PhaseSnapshot Phase = iota
	PhaseRegime
	PhaseSpawn
	PhaseGesture
	PhaseIntegrate
	PhaseCompact
	PhasePack

	phaseCount
	phaseNone Phase = 255
)

var phaseNames = [phaseCount]string{
	PhaseSnapshot:  "snapshot",
	PhaseRegime:    "regime",
	PhaseSpawn:     "spawn",
	PhaseGesture:   "gesture",
	PhaseIntegrate: "integrate",
	PhaseCompact:   "compact",
	PhasePack:      "pack",
}

// Phases lists every phase in frame order.
var Phases = [phaseCount]Phase{
	PhaseSnapshot, PhaseRegime, PhaseSpawn, PhaseGesture, PhaseIntegrate, PhaseCompact, PhasePack,
}

// String returns the phase name used in logs and CSV headers.
func (p Phase) String() string {
	if p < phaseCount {
		return phaseNames[p]
	}
	return "unknown"
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        [phaseCount]time.Duration
}

// PerfCollector tracks per-phase frame timing over a rolling window.
// It does not allocate after construction.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    PerfSample
	frameStart time.Time
	phaseStart time.Time
	lastPhase  Phase

	// Render loop timing, independent of simulation frames
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over (e.g., 120 for 2 seconds at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
		lastPhase:  phaseNone,
	}
}

// StartFrame begins timing a new simulation frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.current = PerfSample{}
	p.lastPhase = phaseNone
}

// StartPhase ends the running phase, if any, and begins timing the next.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.endPhase(now)
	p.phaseStart = now
	p.lastPhase = phase
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.lastPhase < phaseCount {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	p.endPhase(now)
	p.lastPhase = phaseNone
	p.current.FrameDuration = now.Sub(p.frameStart)

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records render loop timing in graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Simulation frame timing
	AvgFrameDuration time.Duration
	MinFrameDuration time.Duration
	MaxFrameDuration time.Duration

	// Phase breakdown: average durations and share of frame time
	PhaseAvg [phaseCount]time.Duration
	PhasePct [phaseCount]float64

	// Simulation throughput
	FramesPerSecond float64

	// Render loop timing (graphics mode)
	RenderDuration time.Duration
	FPS            float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	s.RenderDuration = p.frameDuration
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [phaseCount]time.Duration
	for i := 0; i < p.sampleCount; i++ {
		sample := &p.samples[i]
		total += sample.FrameDuration
		if i == 0 || sample.FrameDuration < s.MinFrameDuration {
			s.MinFrameDuration = sample.FrameDuration
		}
		if sample.FrameDuration > s.MaxFrameDuration {
			s.MaxFrameDuration = sample.FrameDuration
		}
		for ph, d := range sample.Phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.sampleCount)
	s.AvgFrameDuration = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgFrameDuration > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgFrameDuration) * 100
		}
	}
	if s.AvgFrameDuration > 0 {
		s.FramesPerSecond = float64(time.Second) / float64(s.AvgFrameDuration)
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrameDuration.Microseconds(),
		"min_frame_us", s.MinFrameDuration.Microseconds(),
		"max_frame_us", s.MaxFrameDuration.Microseconds(),
		"frames_per_sec", int(s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrameDuration.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrameDuration.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrameDuration.Microseconds()),
		slog.Float64("frames_per_sec", s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FramesPerSec float64 `csv:"frames_per_sec"`
	FPS          float64 `csv:"fps"`
	SnapshotPct  float64 `csv:"snapshot_pct"`
	RegimePct    float64 `csv:"regime_pct"`
	SpawnPct     float64 `csv:"spawn_pct"`
	GesturePct   float64 `csv:"gesture_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	CompactPct   float64 `csv:"compact_pct"`
	PackPct      float64 `csv:"pack_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgFrameUS:   s.AvgFrameDuration.Microseconds(),
		MinFrameUS:   s.MinFrameDuration.Microseconds(),
		MaxFrameUS:   s.MaxFrameDuration.Microseconds(),
		FramesPerSec: s.FramesPerSecond,
		FPS:          s.FPS,
		SnapshotPct:  s.PhasePct[PhaseSnapshot],
		RegimePct:    s.PhasePct[PhaseRegime],
		SpawnPct:     s.PhasePct[PhaseSpawn],
		GesturePct:   s.PhasePct[PhaseGesture],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		CompactPct:   s.PhasePct[PhaseCompact],
		PackPct:      s.PhasePct[PhasePack],
	}
}
