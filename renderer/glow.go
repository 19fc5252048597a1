package renderer

import (
	"github.com/charmbracelet/harmonica"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Glow is a warm backdrop gradient whose intensity follows the regime through
// a critically damped spring, so regime flips ease in instead of snapping.
type Glow struct {
	spring harmonica.Spring
	pos    float64
	vel    float64

	top    rl.Color // energized color at the top of the screen
	bottom rl.Color // energized color at the bottom
}

// NewGlow creates a glow stepped at the given frame rate.
func NewGlow(fps int) *Glow {
	if fps < 1 {
		fps = 60
	}
	return &Glow{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 2.0, 1.0),
		top:    rl.Color{R: 10, G: 4, B: 2, A: 255},
		bottom: rl.Color{R: 70, G: 22, B: 6, A: 255},
	}
}

// Update moves the glow one frame toward 1 when energized or 0 when calm and
// returns the new intensity.
func (g *Glow) Update(energized bool) float64 {
	target := 0.0
	if energized {
		target = 1
	}
	g.pos, g.vel = g.spring.Update(g.pos, g.vel, target)
	return g.pos
}

// Intensity returns the current glow intensity.
func (g *Glow) Intensity() float64 { return g.pos }

// Draw fills the screen with the glow gradient over a black background.
func (g *Glow) Draw(width, height int32) {
	t := float32(g.pos)
	if t <= 0.001 {
		return
	}
	if t > 1 {
		t = 1
	}
	rl.DrawRectangleGradientV(0, 0, width, height, rl.ColorAlpha(g.top, t), rl.ColorAlpha(g.bottom, t))
}
