package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/embers/regime"
	"github.com/pthm-cable/embers/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Mode      regime.Mode
	Regime    regime.Regime
	Live      int
	Capacity  int
	Camera    bool
	ImageName string
	ImageIdx  int
	ImageN    int
	FPS       int32

	HandDetected bool
	HandOpen     bool
	Confidence   float64
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    260,
	}
}

// Draw renders the stats panel in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x, y := r.Theme.Padding, r.Theme.Padding
	height := r.Theme.LineHeight*6 + r.Theme.Padding*2
	r.DrawPanel(x-4, y-4, h.width, height)

	regimeColor := r.Theme.Calm
	if data.Regime == regime.Energized {
		regimeColor = r.Theme.Energized
	}
	y = r.DrawLabelValue(x, y, "Mode", data.Mode.String())
	y = r.DrawLabelValueColor(x, y, "Regime", data.Regime.String(), regimeColor)
	y = r.DrawCapacityBar(x, y, "Particles", data.Live, data.Capacity, h.width-8)

	if data.Camera {
		y = r.DrawLabelValue(x, y, "Source", "camera")
		hand := "none"
		if data.HandDetected {
			hand = "closed"
			if data.HandOpen {
				hand = "open"
			}
		}
		y = r.DrawLabelValue(x, y, "Hand", hand)
		r.DrawBar(x, y, "Confidence", float32(data.Confidence), h.width-8)
	} else {
		name := data.ImageName
		if name == "" {
			name = "(none)"
		}
		y = r.DrawLabelValue(x, y, "Source", "image")
		y = r.DrawLabelValue(x, y, "Image", fmt.Sprintf("%s [%d/%d]", name, data.ImageIdx+1, data.ImageN))
		r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	}
}

// DrawClock renders the wall clock in the bottom-right corner.
func (h *HUD) DrawClock(screenW, screenH int32, now time.Time) {
	text := now.Format("15:04:05 MST")
	width := rl.MeasureText(text, h.renderer.Theme.FontSize)
	rl.DrawText(text, screenW-width-10, screenH-22, h.renderer.Theme.FontSize, h.renderer.Theme.MutedColor)
}

// MenuAction is a request raised by a menu button.
type MenuAction uint8

const (
	ActionNone MenuAction = iota
	ActionModeAuto
	ActionModeCalm
	ActionModeEnergized
	ActionToggleCamera
	ActionPrevImage
	ActionNextImage
	ActionToggleDebug
	ActionToggleHelp
	ActionQuit
)

// Menu renders the raygui control menu.
type Menu struct {
	renderer *Renderer
	width    int32
}

// NewMenu creates a menu panel.
func NewMenu() *Menu {
	return &Menu{
		renderer: NewRenderer(),
		width:    220,
	}
}

// Draw renders the menu at the right edge of the screen and returns the
// action of the button pressed this frame, if any.
func (m *Menu) Draw(screenW int32, mode regime.Mode, camera, hasCamera bool) MenuAction {
	r := m.renderer
	pad := r.Theme.Padding
	bh := float32(r.Theme.ButtonHeight)
	rows := int32(9)
	height := rows*(r.Theme.ButtonHeight+6) + r.Theme.LineHeight*3 + pad*2

	x := screenW - m.width - pad
	y := pad
	r.DrawPanel(x, y, m.width, height)

	bx := float32(x + pad)
	bw := float32(m.width - pad*2)
	half := (bw - 6) / 2
	cy := float32(y + pad)

	action := ActionNone
	button := func(rect rl.Rectangle, label string, a MenuAction) {
		if gui.Button(rect, label) {
			action = a
		}
	}

	r.DrawSectionHeader(int32(bx), int32(cy), "Mode")
	cy += float32(r.Theme.LineHeight)
	for _, item := range []struct {
		mode regime.Mode
		text string
		act  MenuAction
	}{
		{regime.Auto, "Auto", ActionModeAuto},
		{regime.ForceCalm, "Calm", ActionModeCalm},
		{regime.ForceEnergized, "Energized", ActionModeEnergized},
	} {
		label := item.text
		if item.mode == mode {
			label = "> " + label
		}
		button(rl.Rectangle{X: bx, Y: cy, Width: bw, Height: bh}, label, item.act)
		cy += bh + 6
	}

	r.DrawSectionHeader(int32(bx), int32(cy), "Source")
	cy += float32(r.Theme.LineHeight)
	camLabel := "Camera: off"
	if camera {
		camLabel = "Camera: on"
	}
	if hasCamera {
		button(rl.Rectangle{X: bx, Y: cy, Width: bw, Height: bh}, camLabel, ActionToggleCamera)
	} else {
		rl.DrawText("Camera: unavailable", int32(bx), int32(cy)+6, r.Theme.FontSize, r.Theme.MutedColor)
	}
	cy += bh + 6
	if !camera {
		button(rl.Rectangle{X: bx, Y: cy, Width: half, Height: bh}, "< Prev", ActionPrevImage)
		button(rl.Rectangle{X: bx + half + 6, Y: cy, Width: half, Height: bh}, "Next >", ActionNextImage)
	}
	cy += bh + 6

	r.DrawSectionHeader(int32(bx), int32(cy), "View")
	cy += float32(r.Theme.LineHeight)
	button(rl.Rectangle{X: bx, Y: cy, Width: half, Height: bh}, "Debug", ActionToggleDebug)
	button(rl.Rectangle{X: bx + half + 6, Y: cy, Width: half, Height: bh}, "Help", ActionToggleHelp)
	cy += bh + 6

	cy += 6
	button(rl.Rectangle{X: bx, Y: cy, Width: bw, Height: bh}, "Quit", ActionQuit)

	return action
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y
	height := int32(len(telemetry.Phases)+3)*14 + 20
	p.renderer.DrawPanel(x-6, y-6, 250, height)

	rl.DrawText("Frame Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Frame: %s (%.0f fps)", stats.AvgFrameDuration.Round(time.Microsecond), stats.FPS), x, y, 12, p.renderer.Theme.SectionHeader)
	y += 14
	rl.DrawText(fmt.Sprintf("Render: %s", stats.RenderDuration.Round(time.Microsecond)), x, y, 12, p.renderer.Theme.LabelColor)
	y += 16

	for _, ph := range telemetry.Phases {
		pct := stats.PhasePct[ph]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", ph.String(), stats.PhaseAvg[ph].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
