// Density field preview tool - interactive tuning of the image spawn weights.
//
// Usage: go run ./cmd/densitypreview [-images dir] [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/density"
	"github.com/pthm-cable/embers/imagesource"
	"github.com/pthm-cable/embers/viewport"
)

const (
	windowWidth  = 1200
	windowHeight = 720
	previewW     = 800
	previewH     = 450
	panelWidth   = windowWidth - previewW - 30
	sampleCount  = 6000
)

// heatStops are the heatmap gradient anchors from empty to densest.
var heatStops = []colorful.Color{
	{R: 0.02, G: 0.02, B: 0.05},
	{R: 0.45, G: 0.05, B: 0.10},
	{R: 0.95, G: 0.40, B: 0.05},
	{R: 1.00, G: 0.90, B: 0.55},
}

// slider describes one tunable density parameter.
type slider struct {
	label    string
	min, max float32
	format   string
	value    func(*config.DensityConfig) *float64
}

var sliders = []slider{
	{"Edge weight (Canny)", 0, 1, "%.2f", func(c *config.DensityConfig) *float64 { return &c.EdgeWeight }},
	{"Gradient weight (Sobel)", 0, 1, "%.2f", func(c *config.DensityConfig) *float64 { return &c.GradientWeight }},
	{"Brightness weight", 0, 1, "%.2f", func(c *config.DensityConfig) *float64 { return &c.BrightnessWeight }},
	{"Brightness floor", 0, 0.2, "%.3f", func(c *config.DensityConfig) *float64 { return &c.BrightnessFloor }},
	{"Canny low", 0, 255, "%.0f", func(c *config.DensityConfig) *float64 { return &c.CannyLow }},
	{"Canny high", 0, 255, "%.0f", func(c *config.DensityConfig) *float64 { return &c.CannyHigh }},
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	imagesDir := flag.String("images", "", "Directory of still images (empty = use config)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	icfg := cfg.Images
	if *imagesDir != "" {
		icfg.Dir = *imagesDir
	}

	canvas := viewport.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32)
	params := cfg.Density
	lib, err := imagesource.New(icfg, canvas, params, rand.NewPCG(1, 2))
	if err != nil && (lib == nil || lib.Field() == nil) {
		slog.Error("no usable images", "dir", icfg.Dir, "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Density Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	palette := buildPalette(256)
	heat := newHeatmap()
	defer heat.unload()
	heat.update(lib.Field(), palette)

	seeds := make([]density.Seed, sampleCount)
	showSamples := false
	needsRebuild := false
	status := ""

	for !rl.WindowShouldClose() {
		if needsRebuild {
			if params.CannyHigh < params.CannyLow {
				params.CannyHigh = params.CannyLow
			}
			if err := lib.Reload(params); err != nil {
				status = err.Error()
			} else {
				status = ""
				heat.update(lib.Field(), palette)
			}
			needsRebuild = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Preview
		dst := rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH}
		if showSamples {
			drawSamples(lib.Field(), seeds, dst)
		} else {
			heat.draw(dst)
		}
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		// Stats
		f := lib.Field()
		w, h := f.Size()
		probs := f.Probabilities()
		var maxP float64
		for _, p := range probs {
			maxP = max(maxP, p)
		}
		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("%s [%d/%d]  grid %dx%d", lib.Name(), lib.Index()+1, lib.Count(), w, h), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Max p: %.5f  Uniform fallback: %v", maxP, f.Uniform()), 15, statsY+20, 16, rl.DarkGray)
		if status != "" {
			rl.DrawText(status, 15, statsY+40, 16, rl.Maroon)
		}

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Density Weights", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			v := s.value(&params)
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				float32(*v), s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *v), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != float32(*v) {
				*v = float64(next)
				needsRebuild = true
			}
			panelY += 35
		}

		// Process width is an integer slider
		rl.DrawText("Process width (grid columns)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		pw := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "",
			float32(params.ProcessWidth), 40, 480,
		)
		rl.DrawText(fmt.Sprintf("%d", params.ProcessWidth), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(pw) != params.ProcessWidth {
			params.ProcessWidth = int(pw)
			needsRebuild = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "< Prev") {
			reportErr(lib.Prev(), &status)
			heat.update(lib.Field(), palette)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Next >") {
			reportErr(lib.Next(), &status)
			heat.update(lib.Field(), palette)
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(showSamples, "Weights", "Samples")) {
			showSamples = !showSamples
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = cfg.Density
			needsRebuild = true
		}
		panelY += 50

		// Output YAML
		out := yamlSnippet(params)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 22
		rl.DrawText(out, int32(panelX), int32(panelY), 12, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(out)
		}

		rl.EndDrawing()
	}
}

func reportErr(err error, status *string) {
	if err != nil {
		*status = err.Error()
		return
	}
	*status = ""
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// yamlSnippet renders the density section as it would appear in config.yaml.
func yamlSnippet(params config.DensityConfig) string {
	out, err := yaml.Marshal(map[string]config.DensityConfig{"density": params})
	if err != nil {
		return err.Error()
	}
	return string(out)
}

// buildPalette samples the heat gradient into n colors, blending in HCL so
// the ramp stays perceptually even.
func buildPalette(n int) []color.RGBA {
	pal := make([]color.RGBA, n)
	segs := len(heatStops) - 1
	for i := range pal {
		t := float64(i) / float64(n-1) * float64(segs)
		k := min(int(t), segs-1)
		c := heatStops[k].BlendHcl(heatStops[k+1], t-float64(k)).Clamped()
		r, g, b := c.RGB255()
		pal[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return pal
}

// heatmap holds the texture for the probability view.
type heatmap struct {
	tex    rl.Texture2D
	w, h   int
	pixels []color.RGBA
	loaded bool
}

func newHeatmap() *heatmap {
	return &heatmap{}
}

// update redraws the texture from f, scaling against the largest probability.
func (m *heatmap) update(f *density.Field, palette []color.RGBA) {
	if f == nil {
		return
	}
	w, h := f.Size()
	if !m.loaded || w != m.w || h != m.h {
		m.unload()
		img := rl.GenImageColor(w, h, rl.Black)
		m.tex = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		m.w, m.h = w, h
		m.pixels = make([]color.RGBA, w*h)
		m.loaded = true
	}

	probs := f.Probabilities()
	var maxP float64
	for _, p := range probs {
		maxP = max(maxP, p)
	}
	last := len(palette) - 1
	for i, p := range probs {
		idx := 0
		if maxP > 0 {
			idx = int(p / maxP * float64(last))
		}
		m.pixels[i] = palette[idx]
	}
	rl.UpdateTexture(m.tex, m.pixels)
}

func (m *heatmap) draw(dst rl.Rectangle) {
	if !m.loaded {
		return
	}
	rl.DrawRectangleRec(dst, rl.Black)
	fit := fitRect(dst, float32(m.w), float32(m.h))
	rl.DrawTexturePro(
		m.tex,
		rl.Rectangle{X: 0, Y: 0, Width: float32(m.w), Height: float32(m.h)},
		fit,
		rl.Vector2{X: 0, Y: 0},
		0,
		rl.White,
	)
}

func (m *heatmap) unload() {
	if m.loaded {
		rl.UnloadTexture(m.tex)
		m.loaded = false
	}
}

// drawSamples draws a fresh batch of seeds from f into dst, mapping NDC onto
// the preview rectangle.
func drawSamples(f *density.Field, seeds []density.Seed, dst rl.Rectangle) {
	rl.DrawRectangleRec(dst, rl.Black)
	if f == nil {
		return
	}
	f.Draw(seeds)
	c := viewport.New(dst.Width, dst.Height)
	for _, s := range seeds {
		px, py := c.FromNDC(s.X, s.Y)
		rl.DrawPixelV(rl.Vector2{X: dst.X + px, Y: dst.Y + py}, rl.Color{
			R: uint8(s.R * 255),
			G: uint8(s.G * 255),
			B: uint8(s.B * 255),
			A: 255,
		})
	}
}

// fitRect letterboxes a w x h raster inside dst.
func fitRect(dst rl.Rectangle, w, h float32) rl.Rectangle {
	r := viewport.New(dst.Width, dst.Height).FitRect(int(w), int(h))
	return rl.Rectangle{X: dst.X + r.X, Y: dst.Y + r.Y, Width: r.W, Height: r.H}
}
