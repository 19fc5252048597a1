package systems

import (
	"math"

	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/density"
	"github.com/pthm-cable/embers/regime"
)

// Source supplies spawn positions and base colors. Both density.Field and
// density.MotionField implement it; Kind selects the kinematics profile.
type Source interface {
	Draw(dst []density.Seed)
	Kind() density.Kind
}

type span struct{ min, max float32 }

type kinematics struct{ velX, velY, life span }

type rgb struct{ r, g, b float32 }

// params holds the particle config converted to float32 once at construction.
type params struct {
	burstSize int

	image, camera [2]kinematics // indexed by regime
	burst         kinematics

	wobbleFrequency float32
	wobbleCalm      float32
	wobbleEnergized float32
	fadePeak        float32
	sizeMin         float32
	sizeMax         float32

	sparkChance float32
	spark       rgb
	warmGain    rgb
	warmBias    float32

	desatMin, desatMax float32
	channelFloor       float32
	accentChance       float32
	accentPrimary      rgb
	accentSecondary    rgb

	burstSpread      float32
	burstSparkChance float32
	burstFrom        rgb
	burstTo          rgb
	burstSpark       rgb

	recolorRadius float32
	recolorNear   rgb
	recolorFar    rgb
}

func newParams(c config.ParticlesConfig) params {
	sp := func(r config.Range) span { return span{float32(r.Min), float32(r.Max)} }
	kin := func(k config.Kinematics) kinematics { return kinematics{sp(k.VelX), sp(k.VelY), sp(k.Life)} }
	col := func(c config.RGB) rgb { return rgb{float32(c.R), float32(c.G), float32(c.B)} }

	return params{
		burstSize: c.BurstSize,

		image:  [2]kinematics{regime.Calm: kin(c.Image.Calm), regime.Energized: kin(c.Image.Energized)},
		camera: [2]kinematics{regime.Calm: kin(c.Camera.Calm), regime.Energized: kin(c.Camera.Energized)},
		burst:  kin(c.Burst),

		wobbleFrequency: float32(c.WobbleFrequency),
		wobbleCalm:      float32(c.WobbleCalm),
		wobbleEnergized: float32(c.WobbleEnergized),
		fadePeak:        float32(c.FadePeak),
		sizeMin:         float32(c.SizeMin),
		sizeMax:         float32(c.SizeMax),

		sparkChance: float32(c.SparkChance),
		spark:       col(c.Spark),
		warmGain:    col(c.WarmGain),
		warmBias:    float32(c.WarmBias),

		desatMin:        float32(c.DesaturateMin),
		desatMax:        float32(c.DesaturateMax),
		channelFloor:    float32(c.ChannelFloor),
		accentChance:    float32(c.AccentChance),
		accentPrimary:   col(c.AccentPrimary),
		accentSecondary: col(c.AccentSecondary),

		burstSpread:      float32(c.BurstSpread),
		burstSparkChance: float32(c.BurstSparkChance),
		burstFrom:        col(c.BurstFrom),
		burstTo:          col(c.BurstTo),
		burstSpark:       col(c.BurstSpark),

		recolorRadius: float32(c.RecolorRadius),
		recolorNear:   col(c.RecolorNear),
		recolorFar:    col(c.RecolorFar),
	}
}

func (e *Engine) uniform(s span) float32 {
	return s.min + e.rng.Float32()*(s.max-s.min)
}

func (e *Engine) phase() float32 {
	return e.rng.Float32() * 2 * math.Pi
}

// Spawn creates up to budget particles drawn from src, limited by free
// capacity. When the engine is full the request is dropped. It returns the
// number of particles created.
func (e *Engine) Spawn(src Source, r regime.Regime, budget int) int {
	n := min(budget, e.capacity-e.count)
	if n <= 0 || src == nil {
		return 0
	}
	if n > len(e.seeds) {
		e.seeds = make([]density.Seed, n)
	}
	seeds := e.seeds[:n]
	src.Draw(seeds)

	profile := &e.cfg.image
	if src.Kind() == density.KindCamera {
		profile = &e.cfg.camera
	}
	energized := r == regime.Energized
	k := profile[regime.Calm]
	if energized {
		k = profile[regime.Energized]
	}

	for j := range seeds {
		i := e.count + j
		s := &seeds[j]
		e.PosX[i] = s.X
		e.PosY[i] = s.Y
		e.VelX[i] = e.uniform(k.velX)
		e.VelY[i] = e.uniform(k.velY)

		var c rgb
		if energized {
			c = e.warm(s.R, s.G, s.B)
		} else {
			c = e.muted(s.R, s.G, s.B)
		}
		e.ColR[i], e.ColG[i], e.ColB[i] = c.r, c.g, c.b

		life := e.uniform(k.life)
		e.Life[i] = life
		e.MaxLife[i] = life
		e.Phase[i] = e.phase()
	}
	e.count += n
	return n
}

// warm shifts a base color toward red for the energized palette, with an
// occasional white-gold spark.
func (e *Engine) warm(r, g, b float32) rgb {
	p := &e.cfg
	if e.rng.Float32() < p.sparkChance {
		return p.spark
	}
	return rgb{
		min(r*p.warmGain.r+p.warmBias, 1),
		min(g*p.warmGain.g, 1),
		min(b*p.warmGain.b, 1),
	}
}

// muted desaturates a base color toward its luminance for the calm palette,
// with occasional accent colors.
func (e *Engine) muted(r, g, b float32) rgb {
	p := &e.cfg
	roll := e.rng.Float32()
	switch {
	case roll < p.accentChance:
		return p.accentPrimary
	case roll < 2*p.accentChance:
		return p.accentSecondary
	}

	lum := 0.299*r + 0.587*g + 0.114*b
	d := e.uniform(span{p.desatMin, p.desatMax})
	return rgb{
		max(r+(lum-r)*d, p.channelFloor),
		max(g+(lum-g)*d, p.channelFloor),
		max(b+(lum-b)*d, p.channelFloor),
	}
}

// Burst emits a short-lived cluster of hot particles around (x, y) in NDC.
// It returns the number created, which may be fewer than the burst size
// when capacity runs out.
func (e *Engine) Burst(x, y float32) int {
	p := &e.cfg
	n := min(p.burstSize, e.capacity-e.count)
	if n <= 0 {
		return 0
	}

	spread := span{-p.burstSpread, p.burstSpread}
	for j := 0; j < n; j++ {
		i := e.count + j
		e.PosX[i] = x + e.uniform(spread)
		e.PosY[i] = y + e.uniform(spread)
		e.VelX[i] = e.uniform(p.burst.velX)
		e.VelY[i] = e.uniform(p.burst.velY)

		t := e.rng.Float32()
		c := lerpRGB(p.burstFrom, p.burstTo, t)
		if e.rng.Float32() < p.burstSparkChance {
			c = p.burstSpark
		}
		e.ColR[i], e.ColG[i], e.ColB[i] = c.r, c.g, c.b

		life := e.uniform(p.burst.life)
		e.Life[i] = life
		e.MaxLife[i] = life
		e.Phase[i] = e.phase()
	}
	e.count += n
	return n
}

// Recolor paints every live particle on a smooth gradient by its distance
// from (ox, oy): the near color at the origin, the far color at the recolor
// radius and beyond. It depends only on current positions.
func (e *Engine) Recolor(ox, oy float32) {
	p := &e.cfg
	n := e.count
	inv := 1 / p.recolorRadius
	for i := 0; i < n; i++ {
		t := clamp01(distance(e.PosX[i], e.PosY[i], ox, oy) * inv)
		c := lerpRGB(p.recolorNear, p.recolorFar, smoothstep(t))
		e.ColR[i], e.ColG[i], e.ColB[i] = c.r, c.g, c.b
	}
}
