// Package viewport maps between normalized device coordinates and canvas pixels.
package viewport

import "math"

// Canvas is a fixed-size drawing surface in pixels, origin top-left.
type Canvas struct {
	W, H float32
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X, Y, W, H float32
}

// Fit is the placement of a source raster on a canvas: the letterboxed rectangle
// plus the grid cell footprint used when mapping grid cells back to the canvas.
type Fit struct {
	Canvas Canvas
	Rect   Rect

	// Cell size in canvas pixels; independent per axis.
	CellW, CellH float32
}

// New creates a canvas, clamping degenerate sizes to one pixel.
func New(w, h float32) Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Canvas{W: w, H: h}
}

// FitRect returns the largest rectangle with the source aspect ratio that fits
// inside the canvas, centered. Sizes are truncated to whole pixels.
func (c Canvas) FitRect(srcW, srcH int) Rect {
	if srcW <= 0 || srcH <= 0 {
		return Rect{W: c.W, H: c.H}
	}
	scale := math.Min(float64(c.W)/float64(srcW), float64(c.H)/float64(srcH))
	// Nudge before truncating so exact ratios like 1280/1920 survive rounding error.
	fw := float32(math.Max(1, math.Floor(float64(srcW)*scale+1e-6)))
	fh := float32(math.Max(1, math.Floor(float64(srcH)*scale+1e-6)))
	return Rect{
		X: (c.W - fw) / 2,
		Y: (c.H - fh) / 2,
		W: fw,
		H: fh,
	}
}

// FitGrid places a gridW x gridH grid covering a source of srcW x srcH pixels.
func (c Canvas) FitGrid(srcW, srcH, gridW, gridH int) Fit {
	r := c.FitRect(srcW, srcH)
	if gridW < 1 {
		gridW = 1
	}
	if gridH < 1 {
		gridH = 1
	}
	return Fit{
		Canvas: c,
		Rect:   r,
		CellW:  r.W / float32(gridW),
		CellH:  r.H / float32(gridH),
	}
}

// CellCenter returns the canvas pixel at the center of grid cell (row, col).
func (f Fit) CellCenter(row, col int) (px, py float32) {
	px = f.Rect.X + float32(col)*f.CellW + f.CellW*0.5
	py = f.Rect.Y + float32(row)*f.CellH + f.CellH*0.5
	return px, py
}

// ToNDC converts canvas pixels (origin top-left, y down) to normalized device
// coordinates (origin center, y up).
func (c Canvas) ToNDC(px, py float32) (nx, ny float32) {
	nx = (px/c.W)*2 - 1
	ny = 1 - (py/c.H)*2
	return nx, ny
}

// FromNDC converts normalized device coordinates to canvas pixels.
func (c Canvas) FromNDC(nx, ny float32) (px, py float32) {
	px = (nx + 1) * 0.5 * c.W
	py = (1 - ny) * 0.5 * c.H
	return px, py
}

// Scale returns the factor converting a length on canvas c to canvas dst,
// preserving aspect by using the smaller axis ratio.
func (c Canvas) Scale(dst Canvas) float32 {
	sx := dst.W / c.W
	sy := dst.H / c.H
	if sy < sx {
		return sy
	}
	return sx
}

// Contains reports whether an NDC point lies on the canvas, with a margin in NDC units.
func Contains(nx, ny, margin float32) bool {
	return absf(nx) <= 1+margin && absf(ny) <= 1+margin
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
