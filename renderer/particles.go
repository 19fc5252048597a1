// Package renderer draws the packed particle buffer and the frame overlays with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/embers/systems"
	"github.com/pthm-cable/embers/viewport"
)

// dotTextureSize is the side of the soft dot texture in pixels.
const dotTextureSize = 32

// ParticleRenderer renders the packed particle buffer as additive soft dots.
type ParticleRenderer struct {
	canvas viewport.Canvas
	base   viewport.Canvas // canvas the configured point sizes refer to
	scale  float32

	dot         rl.Texture2D
	dotSrc      rl.Rectangle
	initialized bool
}

// NewParticleRenderer creates a particle renderer for a screen of the given size.
// Point sizes in the packed buffer are in pixels of that screen; Resize scales them.
func NewParticleRenderer(width, height int32) *ParticleRenderer {
	c := viewport.New(float32(width), float32(height))
	return &ParticleRenderer{
		canvas: c,
		base:   c,
		scale:  1,
		dotSrc: rl.NewRectangle(0, 0, dotTextureSize, dotTextureSize),
	}
}

// Init builds the dot texture (must be called after the raylib window is created).
func (r *ParticleRenderer) Init() {
	if r.initialized {
		return
	}
	img := rl.GenImageGradientRadial(dotTextureSize, dotTextureSize, 0.2, rl.White, rl.Blank)
	r.dot = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(r.dot, rl.FilterBilinear)
	r.initialized = true
}

// Resize updates the target screen size.
func (r *ParticleRenderer) Resize(width, height int32) {
	r.canvas = viewport.New(float32(width), float32(height))
	r.scale = r.base.Scale(r.canvas)
}

// Draw renders every particle record in packed with additive blending.
func (r *ParticleRenderer) Draw(packed []float32) {
	if !r.initialized {
		r.Init()
	}

	rl.BeginBlendMode(rl.BlendAdditive)
	origin := rl.Vector2{}
	for i := 0; i+systems.PackStride <= len(packed); i += systems.PackStride {
		rec := packed[i : i+systems.PackStride]
		alpha := rec[systems.PackAlpha]
		if alpha <= 0 {
			continue
		}

		px, py := r.canvas.FromNDC(rec[systems.PackX], rec[systems.PackY])
		// The soft falloff leaves the visible core at roughly half the quad
		d := rec[systems.PackSize] * r.scale * 2
		if d < 1 {
			d = 1
		}
		dst := rl.NewRectangle(px-d*0.5, py-d*0.5, d, d)
		rl.DrawTexturePro(r.dot, r.dotSrc, dst, origin, 0, rl.Color{
			R: channel(rec[systems.PackR]),
			G: channel(rec[systems.PackG]),
			B: channel(rec[systems.PackB]),
			A: channel(alpha),
		})
	}
	rl.EndBlendMode()
}

// Unload frees resources.
func (r *ParticleRenderer) Unload() {
	if r.initialized {
		rl.UnloadTexture(r.dot)
		r.initialized = false
	}
}

// channel converts a [0,1] color channel to a byte.
func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
