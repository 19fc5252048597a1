package systems

// PackStride is the number of float32 values per particle in the packed
// buffer: x, y, r, g, b, alpha, size.
const PackStride = 7

// Offsets into one packed particle record.
const (
	PackX = iota
	PackY
	PackR
	PackG
	PackB
	PackAlpha
	PackSize
)

// Pack writes the live particles into the engine-owned render buffer and
// returns it, PackStride floats per particle. The slice is reused and only
// valid until the next call.
func (e *Engine) Pack() []float32 {
	n := e.count
	buf := e.packed[:n*PackStride]
	for i := 0; i < n; i++ {
		ratio := e.Life[i] / e.MaxLife[i]
		rec := buf[i*PackStride : i*PackStride+PackStride : i*PackStride+PackStride]
		rec[PackX] = e.PosX[i]
		rec[PackY] = e.PosY[i]
		rec[PackR] = e.ColR[i]
		rec[PackG] = e.ColG[i]
		rec[PackB] = e.ColB[i]
		rec[PackAlpha] = e.alpha(ratio)
		rec[PackSize] = e.size(ratio)
	}
	return buf
}

// alpha fades in over the first part of life, peaks at the fade peak, then
// fades out linearly to zero at death.
func (e *Engine) alpha(ratio float32) float32 {
	peak := e.cfg.fadePeak
	if ratio > peak {
		return clamp01((1 - ratio) / (1 - peak))
	}
	return clamp01(ratio / peak)
}

// size grows from the minimum at spawn to the maximum at death.
func (e *Engine) size(ratio float32) float32 {
	return e.cfg.sizeMin + (1-clamp01(ratio))*(e.cfg.sizeMax-e.cfg.sizeMin)
}
