// Package density turns images and live capture grids into spawn distributions.
//
// A field is a grid of non-negative weights normalized to a probability
// distribution, paired with a same-resolution RGB color map and the geometry
// that places grid cells on the canvas in normalized device coordinates.
// Fields are read-only after construction apart from the sampling RNG.
package density

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"

	"golang.org/x/image/draw"

	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/viewport"
)

// Kind identifies where a field's weights come from.
type Kind uint8

const (
	KindImage Kind = iota
	KindCamera
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindCamera:
		return "camera"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Seed is one spawn sample: a position in NDC and the base color found there.
type Seed struct {
	X, Y    float32
	R, G, B float32
}

// Field is an image-driven spawn distribution.
type Field struct {
	w, h    int
	weights []float64 // combined feature weights before normalization
	colors  []float32 // RGB per cell, [0,1]
	fit     viewport.Fit

	sampler sampler
	rng     *rand.Rand
}

// ErrEmptyImage is returned when the source image has no pixels.
var ErrEmptyImage = errors.New("density: image has no pixels")

// Build processes a decoded image into a spawn distribution fitted to canvas.
// src drives both cell sampling and sub-cell jitter.
func Build(img image.Image, canvas viewport.Canvas, cfg config.DensityConfig, src rand.Source) (*Field, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}

	fitRect := canvas.FitRect(b.Dx(), b.Dy())
	gw := cfg.ProcessWidth
	gh := int(float32(gw) * fitRect.H / fitRect.W)
	if gh < 1 {
		gh = 1
	}

	proc := image.NewRGBA(image.Rect(0, 0, gw, gh))
	draw.CatmullRom.Scale(proc, proc.Bounds(), img, b, draw.Src, nil)

	n := gw * gh
	gray := make([]float64, n)
	colors := make([]float32, n*3)
	grayscale(proc, gray, colors)

	gx := make([]float64, n)
	gy := make([]float64, n)
	sobel(gray, gw, gh, gx, gy)

	grad := make([]float64, n)
	gradientMagnitude(gx, gy, grad)

	edges := make([]float64, n)
	canny(gx, gy, gw, gh, cfg.CannyLow, cfg.CannyHigh, edges, make([]float64, n), make([]uint8, n), nil)

	weights := make([]float64, n)
	for i := range weights {
		bright := gray[i] / 255
		if bright < cfg.BrightnessFloor {
			bright = cfg.BrightnessFloor
		}
		weights[i] = cfg.EdgeWeight*edges[i] + cfg.GradientWeight*grad[i] + cfg.BrightnessWeight*bright
	}

	return newField(gw, gh, weights, colors, canvas.FitGrid(b.Dx(), b.Dy(), gw, gh), cfg.MinTotalWeight, src), nil
}

// FromWeights builds a field directly from a weight grid and optional color map.
// A nil colors slice yields white. Negative weights are treated as zero.
func FromWeights(w, h int, weights []float64, colors []float32, fit viewport.Fit, minTotal float64, src rand.Source) (*Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("density: grid must be positive, got %dx%d", w, h)
	}
	if len(weights) != w*h {
		return nil, fmt.Errorf("density: expected %d weights, got %d", w*h, len(weights))
	}
	if colors != nil && len(colors) != w*h*3 {
		return nil, fmt.Errorf("density: expected %d color values, got %d", w*h*3, len(colors))
	}

	ws := make([]float64, len(weights))
	for i, v := range weights {
		if v > 0 {
			ws[i] = v
		}
	}
	cs := make([]float32, w*h*3)
	if colors != nil {
		copy(cs, colors)
	} else {
		for i := range cs {
			cs[i] = 1
		}
	}
	return newField(w, h, ws, cs, fit, minTotal, src), nil
}

func newField(w, h int, weights []float64, colors []float32, fit viewport.Fit, minTotal float64, src rand.Source) *Field {
	return &Field{
		w:       w,
		h:       h,
		weights: weights,
		colors:  colors,
		fit:     fit,
		sampler: newSampler(weights, minTotal, src),
		rng:     rand.New(src),
	}
}

// Kind reports KindImage.
func (f *Field) Kind() Kind { return KindImage }

// Size returns the grid dimensions.
func (f *Field) Size() (w, h int) { return f.w, f.h }

// Fit returns the canvas placement geometry.
func (f *Field) Fit() viewport.Fit { return f.fit }

// Probabilities returns the normalized distribution, row-major. Callers must not modify it.
func (f *Field) Probabilities() []float64 { return f.sampler.probs }

// Weights returns the raw combined feature weights. Callers must not modify it.
func (f *Field) Weights() []float64 { return f.weights }

// Uniform reports whether the field fell back to a uniform distribution.
func (f *Field) Uniform() bool { return f.sampler.uniform }

// Sample draws n cells i.i.d. with replacement, appending row and column
// indices to rows and cols.
func (f *Field) Sample(n int, rows, cols []int) ([]int, []int) {
	for k := 0; k < n; k++ {
		idx := f.sampler.draw()
		rows = append(rows, idx/f.w)
		cols = append(cols, idx%f.w)
	}
	return rows, cols
}

// GridToScreen maps cells to NDC with uniform jitter inside each cell footprint.
// xs and ys must be at least len(rows) long.
func (f *Field) GridToScreen(rows, cols []int, xs, ys []float32) {
	for k := range rows {
		xs[k], ys[k] = f.cellToNDC(rows[k], cols[k])
	}
}

func (f *Field) cellToNDC(row, col int) (float32, float32) {
	px, py := f.fit.CellCenter(row, col)
	px += (f.rng.Float32() - 0.5) * f.fit.CellW
	py += (f.rng.Float32() - 0.5) * f.fit.CellH
	return f.fit.Canvas.ToNDC(px, py)
}

// SampleColor looks up the base color of each cell, clamping indices to the grid.
func (f *Field) SampleColor(rows, cols []int, r, g, b []float32) {
	for k := range rows {
		r[k], g[k], b[k] = f.color(rows[k], cols[k])
	}
}

func (f *Field) color(row, col int) (float32, float32, float32) {
	row = clampInt(row, 0, f.h-1)
	col = clampInt(col, 0, f.w-1)
	i := (row*f.w + col) * 3
	return f.colors[i], f.colors[i+1], f.colors[i+2]
}

// Draw fills dst with spawn seeds. It does not allocate.
func (f *Field) Draw(dst []Seed) {
	for k := range dst {
		idx := f.sampler.draw()
		row, col := idx/f.w, idx%f.w
		s := &dst[k]
		s.X, s.Y = f.cellToNDC(row, col)
		s.R, s.G, s.B = f.color(row, col)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
