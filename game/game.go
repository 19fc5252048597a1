package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/embers/regime"
	"github.com/pthm-cable/embers/renderer"
	"github.com/pthm-cable/embers/simulation"
	"github.com/pthm-cable/embers/ui"
	"github.com/pthm-cable/embers/viewport"
)

// Game drives a Simulation from the raylib window loop.
type Game struct {
	sim *simulation.Simulation

	screenW, screenH int32
	canvas           viewport.Canvas

	// Rendering
	particles *renderer.ParticleRenderer
	glow      *renderer.Glow
	debug     *renderer.DebugRenderer

	// UI
	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	menu      *ui.Menu
	help      *ui.HelpPanel
	perfPanel *ui.PerfPanel

	pending ui.MenuAction // raised by the menu during Draw, applied on the next Update
	quit    bool
}

// NewGame creates a game around sim. The raylib window must already exist.
func NewGame(sim *simulation.Simulation) *Game {
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	fps := sim.Config().Screen.TargetFPS

	// Esc is handled by the menu
	rl.SetExitKey(rl.KeyNull)

	g := &Game{
		sim:       sim,
		screenW:   w,
		screenH:   h,
		canvas:    viewport.New(float32(w), float32(h)),
		particles: renderer.NewParticleRenderer(int32(sim.Config().Screen.Width), int32(sim.Config().Screen.Height)),
		glow:      renderer.NewGlow(fps),
		debug:     renderer.NewDebugRenderer(),
		overlays:  ui.NewOverlayRegistry(),
		hud:       ui.NewHUD(),
		menu:      ui.NewMenu(),
		help:      ui.NewHelpPanel(320),
		perfPanel: ui.NewPerfPanel(16, h-220),
	}
	g.particles.Init()
	g.particles.Resize(w, h)
	return g
}

// Update handles input and advances the simulation one fixed step.
func (g *Game) Update() {
	g.sim.Perf().RecordFrame()

	g.handleInput()
	g.applyAction(g.pending)
	g.pending = ui.ActionNone

	g.sim.Step(simulation.DT)
	g.glow.Update(g.sim.Regime().Regime() == regime.Energized)
}

// ShouldClose reports whether the window loop should stop.
func (g *Game) ShouldClose() bool {
	return g.quit || rl.WindowShouldClose()
}

// Frame returns the number of completed simulation steps.
func (g *Game) Frame() int64 {
	return g.sim.Frame()
}

// Unload releases GPU resources. The simulation is closed by its owner.
func (g *Game) Unload() {
	g.particles.Unload()
	g.debug.Unload()
}
