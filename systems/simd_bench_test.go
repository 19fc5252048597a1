package systems

import (
	"fmt"
	"testing"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/embers/density"
	"github.com/pthm-cable/embers/regime"
)

// fullEngine returns an engine filled to n live particles.
func fullEngine(b *testing.B, n int) *Engine {
	e := newTestEngine(b, n)
	var src Source = whiteSource(density.KindImage)
	for e.Count() < n {
		e.Spawn(src, regime.Energized, 1000)
	}
	return e
}

// Benchmark vertical integration with a scalar loop
func BenchmarkAxpyScalar(b *testing.B) {
	for _, size := range []int{10000, 25000} {
		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			pos := make([]float32, size)
			vel := make([]float32, size)
			for i := range vel {
				vel[i] = float32(i) * 0.0001
			}
			dt := float32(1.0 / 60)

			b.ResetTimer()
			for n := 0; n < b.N; n++ {
				for i := range pos {
					pos[i] += vel[i] * dt
				}
			}
		})
	}
}

// Benchmark vertical integration with blas32
func BenchmarkAxpyBLAS(b *testing.B) {
	for _, size := range []int{10000, 25000} {
		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			pos := make([]float32, size)
			vel := make([]float32, size)
			for i := range vel {
				vel[i] = float32(i) * 0.0001
			}
			dt := float32(1.0 / 60)
			vp := blas32.Vector{N: size, Inc: 1, Data: pos}
			vv := blas32.Vector{N: size, Inc: 1, Data: vel}

			b.ResetTimer()
			for n := 0; n < b.N; n++ {
				blas32.Axpy(dt, vv, vp)
			}
		})
	}
}

func BenchmarkIntegrate(b *testing.B) {
	e := fullEngine(b, 25000)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		e.Integrate(1.0/60, regime.Energized)
		// Keep everyone alive
		if n%60 == 59 {
			for i := range e.Life[:e.Count()] {
				e.Life[i] = e.MaxLife[i]
			}
		}
	}
}

func BenchmarkSpawn(b *testing.B) {
	e := newTestEngine(b, 25000)
	var src Source = whiteSource(density.KindImage)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if e.Free() < 150 {
			e.Reset()
		}
		e.Spawn(src, regime.Calm, 150)
	}
}

func BenchmarkCompact(b *testing.B) {
	e := fullEngine(b, 25000)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		b.StopTimer()
		e.Reset()
		for e.Count() < e.Capacity() {
			e.Spawn(whiteSource(density.KindImage), regime.Energized, 1000)
		}
		// Kill roughly one in ten
		for i := 0; i < e.Count(); i += 10 {
			e.Life[i] = 0
		}
		b.StartTimer()
		e.Compact()
	}
}

func BenchmarkPack(b *testing.B) {
	e := fullEngine(b, 25000)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		e.Pack()
	}
}

func BenchmarkFrame(b *testing.B) {
	e := newTestEngine(b, 25000)
	var src Source = whiteSource(density.KindImage)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		e.Spawn(src, regime.Energized, 150)
		e.Integrate(1.0/60, regime.Energized)
		e.Compact()
		e.Pack()
	}
}
