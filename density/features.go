package density

import (
	"image"
	"math"
)

// grayscale converts an RGBA raster to luma in [0, 255] using BT.601 weights,
// and writes the color map scaled to [0, 1] (3 floats per pixel).
func grayscale(img *image.RGBA, gray []float64, colors []float32) {
	b := img.Bounds()
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			bl := float64(row[x*4+2])
			i := y*w + x
			gray[i] = 0.299*r + 0.587*g + 0.114*bl
			colors[i*3] = float32(r / 255)
			colors[i*3+1] = float32(g / 255)
			colors[i*3+2] = float32(bl / 255)
		}
	}
}

// reflect101 mirrors an out-of-range index without repeating the border pixel.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// sobel computes 3x3 Sobel derivatives of gray into gx and gy.
func sobel(gray []float64, w, h int, gx, gy []float64) {
	at := func(x, y int) float64 {
		return gray[reflect101(y, h)*w+reflect101(x, w)]
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)
			i := y*w + x
			gx[i] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy[i] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
}

// gradientMagnitude writes the L2 Sobel magnitude normalized by its maximum.
// A flat image yields an all-zero map.
func gradientMagnitude(gx, gy, out []float64) {
	var peak float64
	for i := range out {
		m := math.Hypot(gx[i], gy[i])
		out[i] = m
		if m > peak {
			peak = m
		}
	}
	if peak <= 0 {
		return
	}
	inv := 1 / peak
	for i := range out {
		out[i] *= inv
	}
}

// Edge classification during Canny hysteresis.
const (
	edgeNone uint8 = iota
	edgeWeak
	edgeStrong
)

// tan22 is tan(22.5°), the sector boundary for gradient direction quantization.
const tan22 = 0.41421356237309503

// canny writes a binary edge map (0 or 1) using L1 gradient magnitude,
// non-maximum suppression and double-threshold hysteresis.
// scratch must hold w*h values; class and stack are reused buffers.
func canny(gx, gy []float64, w, h int, low, high float64, out, scratch []float64, class []uint8, stack []int) []int {
	mag := scratch
	for i := range mag {
		mag[i] = math.Abs(gx[i]) + math.Abs(gy[i])
	}
	magAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	stack = stack[:0]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			class[i] = edgeNone
			out[i] = 0
			m := mag[i]
			if m <= low {
				continue
			}

			// Neighbours along the gradient direction
			ax, ay := math.Abs(gx[i]), math.Abs(gy[i])
			var n1, n2 float64
			switch {
			case ay <= ax*tan22:
				n1, n2 = magAt(x-1, y), magAt(x+1, y)
			case ay >= ax/tan22:
				n1, n2 = magAt(x, y-1), magAt(x, y+1)
			case (gx[i] > 0) == (gy[i] > 0):
				n1, n2 = magAt(x-1, y-1), magAt(x+1, y+1)
			default:
				n1, n2 = magAt(x+1, y-1), magAt(x-1, y+1)
			}
			if m < n1 || m <= n2 {
				continue
			}

			if m > high {
				class[i] = edgeStrong
				stack = append(stack, i)
			} else {
				class[i] = edgeWeak
			}
		}
	}

	// Grow strong edges through 8-connected weak pixels
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out[i] = 1
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if class[j] == edgeWeak {
					class[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}
	return stack
}
