package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/embers/regime"
	"github.com/pthm-cable/embers/ui"
	"github.com/pthm-cable/embers/viewport"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Overlay toggles
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		if g.overlays.IsEnabled(ui.OverlayMenu) {
			g.overlays.SetEnabled(ui.OverlayMenu, false)
		} else {
			g.quit = true
		}
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.sim.CycleMode()
	}

	if rl.IsKeyPressed(rl.KeyC) {
		g.toggleCamera()
	}

	if rl.IsKeyPressed(rl.KeyLeft) {
		g.stepImage(-1)
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		g.stepImage(1)
	}

	if rl.IsKeyPressed(rl.KeyS) {
		name := fmt.Sprintf("embers-%06d.png", g.sim.Frame())
		rl.TakeScreenshot(name)
		slog.Info("screenshot_saved", "file", name)
	}
}

// applyAction performs a menu request.
func (g *Game) applyAction(a ui.MenuAction) {
	switch a {
	case ui.ActionModeAuto:
		g.sim.SetMode(regime.Auto)
	case ui.ActionModeCalm:
		g.sim.SetMode(regime.ForceCalm)
	case ui.ActionModeEnergized:
		g.sim.SetMode(regime.ForceEnergized)
	case ui.ActionToggleCamera:
		g.toggleCamera()
	case ui.ActionPrevImage:
		g.stepImage(-1)
	case ui.ActionNextImage:
		g.stepImage(1)
	case ui.ActionToggleDebug:
		g.overlays.Toggle(ui.OverlayDebug)
	case ui.ActionToggleHelp:
		g.overlays.Toggle(ui.OverlayHelp)
	case ui.ActionQuit:
		g.quit = true
	}
}

func (g *Game) toggleCamera() {
	on := g.sim.ToggleCamera()
	slog.Info("source_changed", "camera", on)
}

// stepImage moves the image library by d, keeping the current field on failure.
func (g *Game) stepImage(d int) {
	var err error
	if d < 0 {
		err = g.sim.PrevImage()
	} else {
		err = g.sim.NextImage()
	}
	if err != nil {
		slog.Warn("image_load_failed", "error", err)
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == g.screenW && h == g.screenH {
		return
	}
	g.screenW = w
	g.screenH = h
	g.canvas = viewport.New(float32(w), float32(h))
	g.particles.Resize(w, h)
	g.perfPanel.SetPosition(16, h-220)
}
