package simulation

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/embers/capture"
	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/gesture"
	"github.com/pthm-cable/embers/imagesource"
	"github.com/pthm-cable/embers/regime"
	"github.com/pthm-cable/embers/systems"
	"github.com/pthm-cable/embers/telemetry"
	"github.com/pthm-cable/embers/viewport"
)

func init() {
	config.MustInit("")
}

// testConfig returns a copy of the defaults with a short clock cycle.
func testConfig() *config.Config {
	cfg := *config.Cfg()
	cfg.Regime.CalmDuration = 0.5
	cfg.Regime.EnergizedDuration = 0.5
	return &cfg
}

func writeGradient(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			img.Set(x, y, color.RGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func newLibrary(t *testing.T, cfg *config.Config, names ...string) *imagesource.Library {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		writeGradient(t, p)
		paths = append(paths, p)
	}
	canvas := viewport.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32)
	lib, err := imagesource.NewFromPaths(paths, "", canvas, cfg.Density, rand.NewPCG(3, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return lib
}

func newSimulation(t *testing.T, cfg *config.Config, opts Options) *Simulation {
	t.Helper()
	s, err := NewSimulation(cfg, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImagePathSpawnsAndPacks(t *testing.T) {
	cfg := testConfig()
	s := newSimulation(t, cfg, Options{Seed: 1, Library: newLibrary(t, cfg, "a.png")})

	for i := 0; i < 10; i++ {
		s.Step(DT)
	}

	// Lifetimes outlast ten frames, so nothing has expired yet
	want := 10 * cfg.Particles.SpawnBudget
	if got := s.Engine().Count(); got != want {
		t.Errorf("expected %d live particles, got %d", want, got)
	}
	if got := len(s.Packed()); got != want*systems.PackStride {
		t.Errorf("expected packed length %d, got %d", want*systems.PackStride, got)
	}
	if s.Frame() != 10 {
		t.Errorf("expected frame 10, got %d", s.Frame())
	}
}

func TestNoSourceNeverSpawns(t *testing.T) {
	s := newSimulation(t, testConfig(), Options{Seed: 1})
	for i := 0; i < 5; i++ {
		s.Step(DT)
	}
	if s.Engine().Count() != 0 {
		t.Errorf("expected no particles without a source, got %d", s.Engine().Count())
	}
	if len(s.Packed()) != 0 {
		t.Errorf("expected empty packed buffer, got %d floats", len(s.Packed()))
	}
}

func TestClockDrivesRegime(t *testing.T) {
	cfg := testConfig()
	s := newSimulation(t, cfg, Options{Seed: 1, Library: newLibrary(t, cfg, "a.png")})

	step := func(n int) {
		for i := 0; i < n; i++ {
			s.Step(DT)
		}
	}

	step(10)
	if s.Regime().Regime() != regime.Calm {
		t.Fatalf("expected calm at %.2fs", s.Now())
	}
	step(30) // ~0.67s
	if s.Regime().Regime() != regime.Energized {
		t.Fatalf("expected energized at %.2fs", s.Now())
	}
	step(30) // ~1.17s
	if s.Regime().Regime() != regime.Calm {
		t.Fatalf("expected calm again at %.2fs", s.Now())
	}
}

func TestForcedModes(t *testing.T) {
	cfg := testConfig()
	s := newSimulation(t, cfg, Options{Seed: 1, Library: newLibrary(t, cfg, "a.png")})

	s.SetMode(regime.ForceEnergized)
	s.Step(DT)
	if s.Regime().Regime() != regime.Energized {
		t.Errorf("expected energized under force, got %s", s.Regime().Regime())
	}

	if m := s.CycleMode(); m != regime.Auto {
		t.Errorf("expected cycle from forced energized to auto, got %s", m)
	}
}

func TestImageControls(t *testing.T) {
	cfg := testConfig()
	s := newSimulation(t, cfg, Options{Seed: 1, Library: newLibrary(t, cfg, "a.png", "b.png")})

	if err := s.NextImage(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Library().Index() != 1 {
		t.Errorf("expected index 1, got %d", s.Library().Index())
	}
	if err := s.PrevImage(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Library().Index() != 0 {
		t.Errorf("expected index 0, got %d", s.Library().Index())
	}

	// Without a capturer the camera stays off
	if s.ToggleCamera() {
		t.Error("expected camera toggle to fail without a capturer")
	}
	if s.UsingCamera() {
		t.Error("expected image path to remain active")
	}
}

func TestStatsCallbackAndOutput(t *testing.T) {
	cfg := testConfig()
	dir := filepath.Join(t.TempDir(), "run")

	var windows []telemetry.WindowStats
	s, err := NewSimulation(cfg, Options{
		Seed:           1,
		StatsWindowSec: 0.25,
		OutputDir:      dir,
		Library:        newLibrary(t, cfg, "a.png"),
		StatsCallback:  func(ws telemetry.WindowStats) { windows = append(windows, ws) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 60; i++ {
		s.Step(DT)
	}
	if len(windows) < 3 {
		t.Fatalf("expected at least 3 windows in one second, got %d", len(windows))
	}
	first := windows[0]
	if first.Frames < 14 || first.Frames > 16 {
		t.Errorf("expected ~15 frames in a quarter second window, got %d", first.Frames)
	}
	if first.Spawned != first.Frames*cfg.Particles.SpawnBudget {
		t.Errorf("expected %d spawned, got %d", first.Frames*cfg.Particles.SpawnBudget, first.Spawned)
	}
	if first.Mode != "auto" {
		t.Errorf("expected mode auto, got %q", first.Mode)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header, the flushed windows, and the final partial window from Close
	if len(lines) != len(windows)+1 {
		t.Errorf("expected %d csv lines, got %d", len(windows)+1, len(lines))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected config snapshot: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "perf.csv")); err != nil {
		t.Errorf("expected perf.csv: %v", err)
	}
}

// openPalm always reports an open hand centered in the frame.
type openPalm struct{}

func (openPalm) Detect(image.Image) ([]gesture.Point, bool) {
	lm := make([]gesture.Point, gesture.LandmarkCount)
	lm[gesture.Wrist] = gesture.Point{X: 0.5, Y: 0.6}
	lm[gesture.ThumbMCP] = gesture.Point{X: 0.45, Y: 0.55}
	lm[gesture.ThumbTip] = gesture.Point{X: 0.3, Y: 0.5}
	for _, f := range [][2]int{
		{gesture.IndexMCP, gesture.IndexTip},
		{gesture.MiddleMCP, gesture.MiddleTip},
		{gesture.RingMCP, gesture.RingTip},
		{gesture.PinkyMCP, gesture.PinkyTip},
	} {
		lm[f[0]] = gesture.Point{X: 0.5, Y: 0.4}
		lm[f[1]] = gesture.Point{X: 0.5, Y: 0.2}
	}
	return lm, true
}

func uniformFrame(v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, 160, 120))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestCameraPathGestureEnergizes(t *testing.T) {
	cfg := testConfig()
	src, err := capture.NewSequenceSource([]image.Image{uniformFrame(40), uniformFrame(200)}, 500, true)
	if err != nil {
		t.Fatal(err)
	}
	c, err := capture.New(src, openPalm{}, cfg.Capture, cfg.Gesture)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	var windows []telemetry.WindowStats
	s := newSimulation(t, cfg, Options{
		Seed:           1,
		Capturer:       c,
		UseCamera:      true,
		StatsWindowSec: 0.1,
		StatsCallback:  func(ws telemetry.WindowStats) { windows = append(windows, ws) },
	})
	if !s.UsingCamera() {
		t.Fatal("expected camera path")
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		s.Step(DT)
		if s.Snapshot().Gesture.Open && s.Regime().Regime() == regime.Energized && s.Engine().Count() > 0 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if !s.Snapshot().Gesture.Open {
		t.Fatal("expected open palm in snapshot")
	}
	if s.Regime().Regime() != regime.Energized {
		t.Fatal("expected open palm to energize")
	}
	if s.Engine().Count() == 0 {
		t.Fatal("expected camera path to spawn")
	}

	// Keep stepping until a window has recorded a burst
	for i := 0; i < 30; i++ {
		s.Step(DT)
	}
	var bursts int
	for _, ws := range windows {
		bursts += ws.Bursts
	}
	if bursts == 0 {
		t.Error("expected bursts while the palm is open")
	}

	// Image controls are ignored on the camera path
	if err := s.NextImage(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunHeadless(t *testing.T) {
	cfg := testConfig()
	s := newSimulation(t, cfg, Options{Seed: 1, Library: newLibrary(t, cfg, "a.png")})

	RunHeadless(context.Background(), s, 30)
	if s.Frame() != 30 {
		t.Errorf("expected 30 frames, got %d", s.Frame())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	RunHeadless(ctx, s, 0)
	if s.Frame() != 30 {
		t.Errorf("expected cancelled run to stop immediately, got frame %d", s.Frame())
	}
}
