package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/embers/ui"
)

// Draw renders the frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.glow.Draw(g.screenW, g.screenH)
	g.particles.Draw(g.sim.Packed())

	g.drawOverlays()

	rl.EndDrawing()
}

// drawOverlays renders every enabled overlay. The menu is drawn last so its
// buttons sit above the panels.
func (g *Game) drawOverlays() {
	if g.overlays.IsEnabled(ui.OverlayDebug) {
		g.drawDebug()
	}
	if g.overlays.IsEnabled(ui.OverlayStats) {
		g.hud.Draw(g.hudData())
		g.hud.DrawClock(g.screenW, g.screenH, time.Now())
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.sim.Perf().Stats())
	}
	if g.overlays.IsEnabled(ui.OverlayHelp) {
		g.help.Draw(g.screenW, g.screenH, g.overlays)
	}
	if g.overlays.IsEnabled(ui.OverlayMenu) {
		if a := g.menu.Draw(g.screenW, g.sim.Regime().Mode(), g.sim.UsingCamera(), g.sim.HasCamera()); a != ui.ActionNone {
			g.pending = a
		}
	}
}

// drawDebug shows the capture preview and hand skeleton on the camera path,
// or the spawn-weight heatmap of the current image.
func (g *Game) drawDebug() {
	if g.sim.UsingCamera() {
		snap := g.sim.Snapshot()
		g.debug.DrawCapture(snap, g.screenH)
		g.debug.DrawHand(snap, g.canvas)
		return
	}
	if lib := g.sim.Library(); lib != nil && lib.Field() != nil {
		f := lib.Field()
		w, h := f.Size()
		g.debug.DrawWeights(f.Probabilities(), w, h, g.screenH)
	}
}

func (g *Game) hudData() ui.HUDData {
	snap := g.sim.Snapshot()
	d := ui.HUDData{
		Mode:     g.sim.Regime().Mode(),
		Regime:   g.sim.Regime().Regime(),
		Live:     g.sim.Engine().Count(),
		Capacity: g.sim.Engine().Capacity(),
		Camera:   g.sim.UsingCamera(),
		FPS:      rl.GetFPS(),

		HandDetected: snap.Gesture.Detected,
		HandOpen:     snap.Gesture.Open,
		Confidence:   snap.Confidence,
	}
	if lib := g.sim.Library(); lib != nil {
		d.ImageName = lib.Name()
		d.ImageIdx = lib.Index()
		d.ImageN = lib.Count()
	}
	return d
}
