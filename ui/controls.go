package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// KeyBinding is one fixed key shown in the help panel.
type KeyBinding struct {
	Key    string
	Action string
}

// DefaultBindings lists the non-overlay keys handled by the game loop.
var DefaultBindings = []KeyBinding{
	{Key: "Space", Action: "Cycle mode"},
	{Key: "Left/Right", Action: "Previous/next image"},
	{Key: "C", Action: "Toggle camera"},
	{Key: "S", Action: "Screenshot"},
	{Key: "F11", Action: "Fullscreen"},
	{Key: "Esc", Action: "Close menu / quit"},
}

// HelpPanel renders the key bindings and overlay toggles.
type HelpPanel struct {
	renderer *Renderer
	width    int32
}

// NewHelpPanel creates a help panel.
func NewHelpPanel(width int32) *HelpPanel {
	return &HelpPanel{
		renderer: NewRenderer(),
		width:    width,
	}
}

// Draw renders the panel centered on the screen.
func (p *HelpPanel) Draw(screenW, screenH int32, overlays *OverlayRegistry) {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	rows := int32(len(DefaultBindings) + len(overlays.All()) + 3)
	height := rows*lineHeight + padding*2
	x := (screenW - p.width) / 2
	y := (screenH - height) / 2

	r.DrawPanel(x, y, p.width, height)
	y += padding

	y = r.DrawSectionHeader(x+padding, y, "Controls")
	for _, b := range DefaultBindings {
		p.drawLine(x+padding, y, b.Key, b.Action, false)
		y += lineHeight
	}

	y += lineHeight / 2
	y = r.DrawSectionHeader(x+padding, y, "Overlays")
	for _, desc := range overlays.All() {
		p.drawLine(x+padding, y, desc.KeyLabel, desc.Name, overlays.IsEnabled(desc.ID))
		y += lineHeight
	}
}

// drawLine draws a key label and action, with a status square for toggles.
func (p *HelpPanel) drawLine(x, y int32, key, action string, enabled bool) {
	r := p.renderer
	width := p.width - r.Theme.Padding*2

	nameColor := r.Theme.LabelColor
	if enabled {
		rl.DrawRectangle(x, y+3, 8, 8, r.Theme.BarFillLow)
		nameColor = r.Theme.ValueColor
	}
	rl.DrawText(action, x+14, y, r.Theme.FontSize, nameColor)

	keyText := fmt.Sprintf("[%s]", key)
	keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
	rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, r.Theme.MutedColor)
}
