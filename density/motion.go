package density

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/embers/config"
)

// MotionField is a spawn distribution rebuilt every frame from a live capture
// grid. It spans the whole canvas and mirrors x so the feed reads like a mirror.
type MotionField struct {
	w, h    int
	bright  float64
	motion  float64
	weights []float64
	colors  []float32

	sampler sampler
	rng     *rand.Rand
}

// NewMotionField allocates a w x h camera field. Until the first Update the
// distribution is uniform and the color map white.
func NewMotionField(w, h int, cfg config.DensityConfig, src rand.Source) (*MotionField, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("density: motion grid must be positive, got %dx%d", w, h)
	}
	if cfg.BrightnessMix < 0 || cfg.MotionMix < 0 {
		return nil, fmt.Errorf("density: camera mix weights must not be negative, got %v/%v", cfg.BrightnessMix, cfg.MotionMix)
	}
	n := w * h
	colors := make([]float32, n*3)
	for i := range colors {
		colors[i] = 1
	}
	weights := make([]float64, n)
	return &MotionField{
		w:       w,
		h:       h,
		bright:  cfg.BrightnessMix,
		motion:  cfg.MotionMix,
		weights: weights,
		colors:  colors,
		sampler: newSampler(weights, cfg.MinTotalWeight, src),
		rng:     rand.New(src),
	}, nil
}

// Update blends brightness and motion grids into the weights and refreshes
// the color map. rgb may be nil to keep the previous colors. Inputs shorter
// than the grid leave the remaining cells at zero weight. Negative and NaN
// values count as zero.
func (m *MotionField) Update(brightness, motion, rgb []float32) {
	for i := range m.weights {
		var b, mo float64
		if i < len(brightness) {
			b = sanitize(brightness[i])
		}
		if i < len(motion) {
			mo = sanitize(motion[i])
		}
		m.weights[i] = m.bright*b + m.motion*mo
	}
	if rgb != nil {
		n := copy(m.colors, rgb)
		for i := 0; i < n; i++ {
			m.colors[i] = clamp01(m.colors[i])
		}
	}
	m.sampler.reweight(m.weights)
}

func sanitize(v float32) float64 {
	f := float64(v)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if math.IsInf(f, 1) {
		return math.MaxFloat32
	}
	return f
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Kind reports KindCamera.
func (m *MotionField) Kind() Kind { return KindCamera }

// Size returns the grid dimensions.
func (m *MotionField) Size() (w, h int) { return m.w, m.h }

// Probabilities returns the normalized distribution, row-major. Callers must not modify it.
func (m *MotionField) Probabilities() []float64 { return m.sampler.probs }

// Uniform reports whether the last update fell back to a uniform distribution.
func (m *MotionField) Uniform() bool { return m.sampler.uniform }

// CellToNDC maps a grid cell to NDC with x mirrored and jitter of up to half
// a cell on each axis.
func (m *MotionField) CellToNDC(row, col int) (float32, float32) {
	jx := m.rng.Float32() - 0.5
	jy := m.rng.Float32() - 0.5
	nx := 1 - (float32(col)+0.5+jx)/float32(m.w)*2
	ny := 1 - (float32(row)+0.5+jy)/float32(m.h)*2
	return nx, ny
}

// Draw fills dst with spawn seeds. It does not allocate.
func (m *MotionField) Draw(dst []Seed) {
	for k := range dst {
		idx := m.sampler.draw()
		row, col := idx/m.w, idx%m.w
		s := &dst[k]
		s.X, s.Y = m.CellToNDC(row, col)
		s.R, s.G, s.B = m.colors[idx*3], m.colors[idx*3+1], m.colors[idx*3+2]
	}
}
