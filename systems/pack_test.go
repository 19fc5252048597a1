package systems

import (
	"testing"

	"github.com/pthm-cable/embers/density"
	"github.com/pthm-cable/embers/regime"
)

func TestPackLayout(t *testing.T) {
	e := newTestEngine(t, 10)
	e.Spawn(whiteSource(density.KindImage), regime.Calm, 2)
	e.PosX[1], e.PosY[1] = 0.25, -0.75
	e.ColR[1], e.ColG[1], e.ColB[1] = 0.1, 0.2, 0.3

	buf := e.Pack()
	if len(buf) != 2*PackStride {
		t.Fatalf("expected %d floats, got %d", 2*PackStride, len(buf))
	}

	rec := buf[PackStride:]
	if rec[PackX] != 0.25 || rec[PackY] != -0.75 {
		t.Errorf("expected position (0.25, -0.75), got (%v, %v)", rec[PackX], rec[PackY])
	}
	if rec[PackR] != 0.1 || rec[PackG] != 0.2 || rec[PackB] != 0.3 {
		t.Errorf("expected color (0.1, 0.2, 0.3), got (%v, %v, %v)", rec[PackR], rec[PackG], rec[PackB])
	}
}

func TestPackEmpty(t *testing.T) {
	e := newTestEngine(t, 10)
	if buf := e.Pack(); len(buf) != 0 {
		t.Errorf("expected empty buffer, got %d floats", len(buf))
	}
}

func TestPackAlpha(t *testing.T) {
	testCases := []struct {
		ratio float32
		alpha float32
	}{
		{1.0, 0},    // just spawned
		{0.85, 1.0}, // peak
		{0.0, 0},    // dead
		{0.925, 0.5},
		{0.425, 0.5},
	}

	e := newTestEngine(t, 10)
	e.Spawn(whiteSource(density.KindImage), regime.Calm, len(testCases))
	for i, tc := range testCases {
		e.MaxLife[i] = 1
		e.Life[i] = tc.ratio
	}

	buf := e.Pack()
	for i, tc := range testCases {
		got := buf[i*PackStride+PackAlpha]
		if !approx(got, tc.alpha) {
			t.Errorf("ratio %v: expected alpha %v, got %v", tc.ratio, tc.alpha, got)
		}
	}
}

func TestPackSizeGrowsWithAge(t *testing.T) {
	e := newTestEngine(t, 100)
	e.Spawn(whiteSource(density.KindImage), regime.Calm, 1)
	e.MaxLife[0] = 2
	e.Life[0] = 2

	prev := e.Pack()[PackSize]
	if !approx(prev, e.cfg.sizeMin) {
		t.Errorf("expected minimum size at spawn, got %v", prev)
	}
	for step := 0; step < 20; step++ {
		e.Life[0] -= 0.1
		size := e.Pack()[PackSize]
		if size < prev {
			t.Fatalf("step %d: size shrank from %v to %v", step, prev, size)
		}
		prev = size
	}
	if !approx(prev, e.cfg.sizeMax) {
		t.Errorf("expected maximum size at death, got %v", prev)
	}
}

func TestPackReusesBuffer(t *testing.T) {
	e := newTestEngine(t, 100)
	e.Spawn(whiteSource(density.KindImage), regime.Calm, 10)
	a := e.Pack()
	b := e.Pack()
	if &a[0] != &b[0] {
		t.Error("expected Pack to reuse its buffer")
	}
}
