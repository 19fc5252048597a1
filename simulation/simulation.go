// Package simulation runs the per-frame particle pipeline without any
// graphics dependency. The window loop in package game and the headless
// runner both drive it one fixed step at a time.
package simulation

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/embers/capture"
	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/density"
	"github.com/pthm-cable/embers/imagesource"
	"github.com/pthm-cable/embers/regime"
	"github.com/pthm-cable/embers/systems"
	"github.com/pthm-cable/embers/telemetry"
)

// DT is the fixed simulation step in seconds.
const DT = 1.0 / 60.0

// Simulation owns the particle engine and runs the per-frame data flow:
// capture snapshot, regime update, spawn, gesture effects, integrate,
// compact and pack. It has no graphics dependency.
type Simulation struct {
	cfg *config.Config

	engine  *systems.Engine
	regime  *regime.Controller
	library *imagesource.Library

	// Camera path; capturer is nil when no frame source is attached
	capturer  *capture.Capturer
	motion    *density.MotionField
	snap      capture.Snapshot
	hasSnap   bool
	useCamera bool

	// Telemetry
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	bookmarks     *telemetry.BookmarkDetector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	frame  int64
	now    float64
	packed []float32
}

// NewSimulation wires the engine, regime controller and telemetry from cfg.
// The library and capturer in opts are optional; with neither the engine
// simply never spawns.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	engine, err := systems.NewEngine(cfg.Particles, opts.Seed)
	if err != nil {
		return nil, err
	}
	ctrl, err := regime.New(cfg.Regime, 0)
	if err != nil {
		return nil, fmt.Errorf("regime controller: %w", err)
	}
	motion, err := density.NewMotionField(cfg.Capture.GridWidth, cfg.Capture.GridHeight, cfg.Density,
		rand.NewPCG(opts.Seed, opts.Seed+1))
	if err != nil {
		return nil, fmt.Errorf("motion field: %w", err)
	}
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	s := &Simulation{
		cfg:           cfg,
		engine:        engine,
		regime:        ctrl,
		library:       opts.Library,
		capturer:      opts.Capturer,
		motion:        motion,
		useCamera:     opts.Capturer != nil && opts.UseCamera,
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:     telemetry.NewCollector(statsWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		output:        output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	return s, nil
}

// Step advances the simulation by dt seconds and returns the packed
// particle buffer. The buffer is owned by the engine and valid until the
// next Step.
func (s *Simulation) Step(dt float64) []float32 {
	s.perf.StartFrame()
	s.now += dt

	// Capture snapshot
	s.perf.StartPhase(telemetry.PhaseSnapshot)
	camera := s.useCamera && s.capturer != nil
	if camera && s.capturer.Snapshot(&s.snap) {
		s.hasSnap = true
		s.motion.Update(s.snap.Brightness, s.snap.Motion, s.snap.RGB)
	}

	// Regime
	s.perf.StartPhase(telemetry.PhaseRegime)
	var t regime.Transition
	if camera {
		t = s.regime.UpdateMotion(s.now, s.snap.AvgMotion, s.snap.Gesture.Open)
	} else {
		t = s.regime.UpdateClock(s.now)
	}
	if t != regime.None {
		s.collector.RecordTransition(t)
		slog.Info("regime_transition",
			"transition", t.String(),
			"mode", s.regime.Mode().String(),
			"frame", s.frame,
			"sim_time", s.now,
		)
	}
	r := s.regime.Regime()

	// Spawn
	s.perf.StartPhase(telemetry.PhaseSpawn)
	budget := s.cfg.Particles.SpawnBudget
	if src := s.source(camera); src != nil {
		s.collector.RecordSpawn(budget, s.engine.Spawn(src, r, budget))
	}

	// Gesture effects
	s.perf.StartPhase(telemetry.PhaseGesture)
	if camera && s.snap.Gesture.Detected && s.snap.Gesture.Open {
		s.engine.Recolor(s.snap.Gesture.X, s.snap.Gesture.Y)
		s.collector.RecordBurst(s.engine.Burst(s.snap.Gesture.X, s.snap.Gesture.Y))
	}

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	s.engine.Integrate(float32(dt), r)

	s.perf.StartPhase(telemetry.PhaseCompact)
	s.collector.RecordExpired(s.engine.Compact())

	s.perf.StartPhase(telemetry.PhasePack)
	s.packed = s.engine.Pack()

	s.perf.EndFrame()

	s.frame++
	s.collector.RecordFrame(s.engine.Count(), r == regime.Energized)
	s.flushTelemetry()

	return s.packed
}

// source picks the spawn source for this frame, or nil when nothing is ready.
func (s *Simulation) source(camera bool) systems.Source {
	if camera {
		if !s.hasSnap {
			return nil
		}
		return s.motion
	}
	if s.library == nil || s.library.Field() == nil {
		return nil
	}
	return s.library.Field()
}

// ToggleCamera switches between the image and camera paths. It reports
// whether the camera path is active; without a capturer it stays off.
func (s *Simulation) ToggleCamera() bool {
	if s.capturer == nil {
		slog.Warn("camera_unavailable")
		return false
	}
	s.useCamera = !s.useCamera
	return s.useCamera
}

// NextImage advances the image library. It is a no-op on the camera path.
func (s *Simulation) NextImage() error {
	if s.useCamera || s.library == nil {
		return nil
	}
	return s.library.Next()
}

// PrevImage steps the image library back. It is a no-op on the camera path.
func (s *Simulation) PrevImage() error {
	if s.useCamera || s.library == nil {
		return nil
	}
	return s.library.Prev()
}

// CycleMode moves the regime controller to its next mode.
func (s *Simulation) CycleMode() regime.Mode {
	m := s.regime.Cycle(s.now)
	slog.Info("mode_changed", "mode", m.String())
	return m
}

// SetMode selects a regime mode directly.
func (s *Simulation) SetMode(m regime.Mode) {
	if m == s.regime.Mode() {
		return
	}
	s.regime.SetMode(m, s.now)
	slog.Info("mode_changed", "mode", m.String())
}

// Close flushes the final telemetry window, stops capture and closes output files.
func (s *Simulation) Close() error {
	var errs []error
	if s.collector.WindowSec() > 0 {
		s.writeWindow(s.collector.Flush(s.frame, s.now, s.regime.Mode(), s.regime.Regime()))
	}
	if s.capturer != nil {
		errs = append(errs, s.capturer.Stop())
	}
	errs = append(errs, s.output.Close())
	return errors.Join(errs...)
}

// Frame returns the number of completed steps.
func (s *Simulation) Frame() int64 { return s.frame }

// Now returns the simulation clock in seconds.
func (s *Simulation) Now() float64 { return s.now }

// Engine returns the particle engine.
func (s *Simulation) Engine() *systems.Engine { return s.engine }

// Regime returns the regime controller.
func (s *Simulation) Regime() *regime.Controller { return s.regime }

// Packed returns the buffer produced by the last Step.
func (s *Simulation) Packed() []float32 { return s.packed }

// Snapshot returns the last capture snapshot copied by Step.
func (s *Simulation) Snapshot() *capture.Snapshot { return &s.snap }

// UsingCamera reports whether the camera path is active.
func (s *Simulation) UsingCamera() bool { return s.useCamera }

// Library returns the image library, which may be nil.
func (s *Simulation) Library() *imagesource.Library { return s.library }

// Perf returns the frame timing collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() *config.Config { return s.cfg }

// HasCamera reports whether a capturer is attached.
func (s *Simulation) HasCamera() bool { return s.capturer != nil }
