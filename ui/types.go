// Package ui draws the heads-up display, the mode menu and the help panel.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	MutedColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	BarFillLow    rl.Color
	BarFillMedium rl.Color
	BarFillHigh   rl.Color
	Calm          rl.Color
	Energized     rl.Color
	Padding       int32
	LineHeight    int32
	LabelWidth    int32
	BarHeight     int32
	ButtonHeight  int32
	FontSize      int32
	HeaderSize    int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 14, G: 12, B: 12, A: 220},
		PanelBorder:   rl.Color{R: 90, G: 70, B: 50, A: 255},
		SectionHeader: rl.Color{R: 200, G: 168, B: 78, A: 255},
		LabelColor:    rl.Color{R: 180, G: 180, B: 180, A: 200},
		ValueColor:    rl.Color{R: 230, G: 225, B: 215, A: 255},
		MutedColor:    rl.Color{R: 160, G: 150, B: 130, A: 180},
		BarBg:         rl.Color{R: 40, G: 36, B: 34, A: 255},
		BarFill:       rl.Color{R: 200, G: 140, B: 70, A: 255},
		BarFillLow:    rl.Color{R: 100, G: 200, B: 100, A: 255},
		BarFillMedium: rl.Color{R: 200, G: 180, B: 100, A: 255},
		BarFillHigh:   rl.Color{R: 220, G: 90, B: 60, A: 255},
		Calm:          rl.Color{R: 150, G: 150, B: 210, A: 255},
		Energized:     rl.Color{R: 255, G: 140, B: 40, A: 255},
		Padding:       10,
		LineHeight:    18,
		LabelWidth:    80,
		BarHeight:     12,
		ButtonHeight:  24,
		FontSize:      12,
		HeaderSize:    14,
	}
}
