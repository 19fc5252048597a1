package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/embers/capture"
	"github.com/pthm-cable/embers/gesture"
	"github.com/pthm-cable/embers/viewport"
)

// handBones lists the landmark pairs drawn for the hand skeleton.
var handBones = [...][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 4}, // thumb
	{0, 5}, {5, 6}, {6, 7}, {7, 8}, // index
	{5, 9}, {9, 10}, {10, 11}, {11, 12}, // middle
	{9, 13}, {13, 14}, {14, 15}, {15, 16}, // ring
	{13, 17}, {17, 18}, {18, 19}, {19, 20}, // pinky
	{0, 17},
}

// Preview panel size in pixels.
const (
	previewW = 160
	previewH = 120
)

// DebugRenderer draws the capture preview, the spawn-weight heatmap and the
// hand skeleton.
type DebugRenderer struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA
	hasTex     bool
}

// NewDebugRenderer creates a debug renderer. Textures are created lazily on
// the first draw so it is safe to construct before the window exists.
func NewDebugRenderer() *DebugRenderer {
	return &DebugRenderer{}
}

// ensure (re)creates the preview texture for a w x h grid.
func (d *DebugRenderer) ensure(w, h int) {
	if d.hasTex && d.texW == w && d.texH == h {
		return
	}
	if d.hasTex {
		rl.UnloadTexture(d.tex)
	}
	img := rl.GenImageColor(w, h, rl.Black)
	d.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(d.tex, rl.FilterPoint)
	d.texW, d.texH = w, h
	d.pixels = make([]color.RGBA, w*h)
	d.hasTex = true
}

// DrawCapture draws the snapshot's color grid in the bottom-left corner,
// mirrored to match the particle mapping.
func (d *DebugRenderer) DrawCapture(snap *capture.Snapshot, screenH int32) {
	w, h := snap.Width, snap.Height
	if w <= 0 || h <= 0 || len(snap.RGB) < w*h*3 {
		return
	}
	d.ensure(w, h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			i := row*w + col
			d.pixels[row*w+(w-1-col)] = color.RGBA{
				R: channel(snap.RGB[i*3]),
				G: channel(snap.RGB[i*3+1]),
				B: channel(snap.RGB[i*3+2]),
				A: 204,
			}
		}
	}
	d.drawPanel(screenH)
}

// DrawWeights draws a spawn probability grid as a heatmap in the bottom-left
// corner. Each cell is scaled against the largest probability.
func (d *DebugRenderer) DrawWeights(probs []float64, w, h int, screenH int32) {
	if w <= 0 || h <= 0 || len(probs) < w*h {
		return
	}
	d.ensure(w, h)
	var maxP float64
	for _, p := range probs[:w*h] {
		if p > maxP {
			maxP = p
		}
	}
	for i, p := range probs[:w*h] {
		var t float32
		if maxP > 0 {
			t = float32(p / maxP)
		}
		d.pixels[i] = color.RGBA{R: channel(t * 1.5), G: channel(t*1.5 - 0.5), B: channel(t*3 - 2), A: 204}
	}
	d.drawPanel(screenH)
}

func (d *DebugRenderer) drawPanel(screenH int32) {
	rl.UpdateTexture(d.tex, d.pixels)
	src := rl.NewRectangle(0, 0, float32(d.texW), float32(d.texH))
	dst := rl.NewRectangle(0, float32(screenH)-previewH, previewW, previewH)
	rl.DrawTexturePro(d.tex, src, dst, rl.Vector2{}, 0, rl.White)
	rl.DrawRectangleLinesEx(dst, 1, rl.Color{R: 120, G: 120, B: 140, A: 200})
}

// DrawHand draws the hand skeleton on the canvas. Landmarks are in NDC.
// Green marks an open palm, orange any other pose.
func (d *DebugRenderer) DrawHand(snap *capture.Snapshot, canvas viewport.Canvas) {
	g := &snap.Gesture
	if !g.Detected || len(g.Landmarks) < gesture.LandmarkCount {
		return
	}
	col := rl.Color{R: 255, G: 140, B: 40, A: 217}
	if g.Open {
		col = rl.Color{R: 60, G: 230, B: 90, A: 217}
	}
	point := func(i int) rl.Vector2 {
		x, y := canvas.FromNDC(g.Landmarks[i].X, g.Landmarks[i].Y)
		return rl.Vector2{X: x, Y: y}
	}
	for _, b := range handBones {
		rl.DrawLineEx(point(b[0]), point(b[1]), 2, col)
	}
	for i := 0; i < gesture.LandmarkCount; i++ {
		rl.DrawCircleV(point(i), 3, col)
	}

	// Palm center
	px, py := canvas.FromNDC(g.X, g.Y)
	rl.DrawCircleLines(int32(px), int32(py), 10, rl.White)
}

// Unload frees resources.
func (d *DebugRenderer) Unload() {
	if d.hasTex {
		rl.UnloadTexture(d.tex)
		d.hasTex = false
	}
}
