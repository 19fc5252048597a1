package density

import (
	"math"
	"testing"

	"github.com/pthm-cable/embers/config"
)

func TestMotionFieldMirrorsX(t *testing.T) {
	const w, h = 8, 6
	m, err := NewMotionField(w, h, config.Cfg().Density, testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the top-left cell has weight
	brightness := make([]float32, w*h)
	brightness[0] = 1
	m.Update(brightness, nil, nil)

	seeds := make([]Seed, 200)
	m.Draw(seeds)
	for _, s := range seeds {
		if s.X < 1-2.0/w || s.X > 1 {
			t.Fatalf("expected mirrored x in [%v, 1], got %v", 1-2.0/w, s.X)
		}
		if s.Y < 1-2.0/h || s.Y > 1 {
			t.Fatalf("expected top-row y in [%v, 1], got %v", 1-2.0/h, s.Y)
		}
	}
}

func TestMotionFieldBlend(t *testing.T) {
	cfg := config.Cfg().Density
	m, err := NewMotionField(2, 1, cfg, testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Update([]float32{1, 0}, []float32{0, 1}, nil)

	p := m.Probabilities()
	total := cfg.BrightnessMix + cfg.MotionMix
	if math.Abs(p[0]-cfg.BrightnessMix/total) > 1e-12 {
		t.Errorf("expected brightness cell probability %v, got %v", cfg.BrightnessMix/total, p[0])
	}
	if math.Abs(p[1]-cfg.MotionMix/total) > 1e-12 {
		t.Errorf("expected motion cell probability %v, got %v", cfg.MotionMix/total, p[1])
	}
}

func TestMotionFieldZeroFallsBackToUniform(t *testing.T) {
	m, err := NewMotionField(4, 4, config.Cfg().Density, testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Update(make([]float32, 16), make([]float32, 16), nil)
	if !m.Uniform() {
		t.Error("expected an all-dark frame to fall back to uniform")
	}

	const n = 80000
	counts := make([]float64, 16)
	for range n {
		counts[m.sampler.draw()]++
	}
	checkUniform(t, counts)

	m.Update([]float32{0.5}, nil, nil)
	if m.Uniform() {
		t.Error("expected a lit frame to leave uniform fallback")
	}
	if math.Abs(m.Probabilities()[0]-1) > 1e-12 {
		t.Errorf("expected all mass on cell 0, got %v", m.Probabilities()[0])
	}
}

func TestMotionFieldZeroThresholdStillFallsBack(t *testing.T) {
	cfg := config.Cfg().Density
	cfg.MinTotalWeight = 0
	m, err := NewMotionField(4, 2, cfg, testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Update(make([]float32, 8), nil, nil)
	if !m.Uniform() {
		t.Fatal("expected a zero total to fall back to uniform without a threshold")
	}
	for i, p := range m.Probabilities() {
		if math.IsNaN(p) {
			t.Fatalf("cell %d: expected a finite probability, got NaN", i)
		}
	}

	seeds := make([]Seed, 2000)
	m.Draw(seeds)
	for _, s := range seeds {
		if s.X < -1 || s.X > 1 || s.Y < -1 || s.Y > 1 {
			t.Fatalf("expected seed inside NDC, got (%v, %v)", s.X, s.Y)
		}
	}
}

func TestMotionFieldSanitizesInput(t *testing.T) {
	m, err := NewMotionField(3, 1, config.Cfg().Density, testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nan := float32(math.NaN())
	m.Update([]float32{-1, nan, 1}, []float32{-5, nan, 0}, []float32{2, -1, 0.5, 0, 0, 0, 1, 1, 1})

	p := m.Probabilities()
	if p[0] != 0 || p[1] != 0 || math.Abs(p[2]-1) > 1e-12 {
		t.Errorf("expected negative and NaN cells to carry no weight, got %v", p)
	}

	seeds := make([]Seed, 1)
	m.Update([]float32{1, 0, 0}, nil, nil)
	m.Draw(seeds)
	if seeds[0].R != 1 || seeds[0].G != 0 || seeds[0].B != 0.5 {
		t.Errorf("expected clamped color (1, 0, 0.5), got (%v, %v, %v)", seeds[0].R, seeds[0].G, seeds[0].B)
	}
}

func TestNewMotionFieldRejectsBadGrid(t *testing.T) {
	if _, err := NewMotionField(0, 4, config.Cfg().Density, testSource()); err == nil {
		t.Error("expected error for zero-width grid")
	}
}

func TestMotionUpdateDoesNotAllocate(t *testing.T) {
	const w, h = 80, 60
	m, err := NewMotionField(w, h, config.Cfg().Density, testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	brightness := make([]float32, w*h)
	motion := make([]float32, w*h)
	for i := range brightness {
		brightness[i] = float32(i%7) / 7
		motion[i] = float32(i%3) / 3
	}
	allocs := testing.AllocsPerRun(10, func() {
		m.Update(brightness, motion, nil)
	})
	if allocs != 0 {
		t.Errorf("expected Update to be allocation-free, got %v allocs", allocs)
	}
}
