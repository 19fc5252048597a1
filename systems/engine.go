package systems

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/density"
	"github.com/pthm-cable/embers/regime"
)

// Engine owns every live particle in fixed-capacity parallel arrays.
// Slots [0, Count()) are live; anything past the count is garbage.
// No method allocates once the engine is constructed, except Spawn
// when asked for more than the largest budget seen so far.
type Engine struct {
	// Particle data (SoA layout for cache efficiency)
	PosX, PosY       []float32 // NDC
	VelX, VelY       []float32 // NDC units per second
	Life, MaxLife    []float32 // seconds
	ColR, ColG, ColB []float32 // base color, [0,1]
	Phase            []float32 // wobble phase, [0, 2π)

	count    int
	capacity int
	time     float32 // integration clock, seconds

	cfg    params
	rng    *rand.Rand
	seeds  []density.Seed
	packed []float32
}

// NewEngine creates an engine with cfg.Capacity slots, seeded for reproducible runs.
func NewEngine(cfg config.ParticlesConfig, seed uint64) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("particle engine: %w", err)
	}

	c := cfg.Capacity
	return &Engine{
		PosX:    make([]float32, c),
		PosY:    make([]float32, c),
		VelX:    make([]float32, c),
		VelY:    make([]float32, c),
		Life:    make([]float32, c),
		MaxLife: make([]float32, c),
		ColR:    make([]float32, c),
		ColG:    make([]float32, c),
		ColB:    make([]float32, c),
		Phase:   make([]float32, c),

		capacity: c,
		cfg:      newParams(cfg),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seeds:    make([]density.Seed, cfg.SpawnBudget),
		packed:   make([]float32, c*PackStride),
	}, nil
}

// Count returns the number of live particles.
func (e *Engine) Count() int { return e.count }

// Capacity returns the fixed slot count.
func (e *Engine) Capacity() int { return e.capacity }

// Free returns the number of unused slots.
func (e *Engine) Free() int { return e.capacity - e.count }

// Time returns the integration clock in seconds.
func (e *Engine) Time() float32 { return e.time }

// Reset drops every particle and rewinds the clock.
func (e *Engine) Reset() {
	e.count = 0
	e.time = 0
}

// Integrate advances the clock and every live particle by dt seconds.
// Horizontal motion carries a sinusoidal wobble whose amplitude depends on
// the regime; vertical motion is plain velocity.
func (e *Engine) Integrate(dt float32, r regime.Regime) {
	e.time += dt
	n := e.count
	if n == 0 {
		return
	}

	amp := e.cfg.wobbleCalm
	if r == regime.Energized {
		amp = e.cfg.wobbleEnergized
	}
	freq := float64(e.time * e.cfg.wobbleFrequency)
	posX, velX, phase := e.PosX[:n], e.VelX[:n], e.Phase[:n]
	for i := range posX {
		wobble := float32(math.Sin(freq+float64(phase[i]))) * amp
		posX[i] += (velX[i] + wobble) * dt
	}

	// y += vy*dt
	blas32.Axpy(dt, vec(e.VelY[:n]), vec(e.PosY[:n]))

	life := e.Life[:n]
	for i := range life {
		life[i] -= dt
	}
}

// Compact removes dead particles (life <= 0) in a single pass, keeping the
// survivors contiguous and in their original order. It returns the number removed.
func (e *Engine) Compact() int {
	n := e.count
	w := 0
	for i := 0; i < n; i++ {
		if e.Life[i] <= 0 {
			continue
		}
		if w != i {
			e.move(w, i)
		}
		w++
	}
	e.count = w
	return n - w
}

// move copies slot src into slot dst.
func (e *Engine) move(dst, src int) {
	e.PosX[dst] = e.PosX[src]
	e.PosY[dst] = e.PosY[src]
	e.VelX[dst] = e.VelX[src]
	e.VelY[dst] = e.VelY[src]
	e.Life[dst] = e.Life[src]
	e.MaxLife[dst] = e.MaxLife[src]
	e.ColR[dst] = e.ColR[src]
	e.ColG[dst] = e.ColG[src]
	e.ColB[dst] = e.ColB[src]
	e.Phase[dst] = e.Phase[src]
}

func vec(data []float32) blas32.Vector {
	return blas32.Vector{N: len(data), Inc: 1, Data: data}
}
