package density

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// sampler draws flat cell indices from a normalized weight grid.
// Both the image field and the camera field sample through it.
type sampler struct {
	probs    []float64
	cat      distuv.Categorical
	minTotal float64
	uniform  bool
}

// newSampler normalizes weights into probs, falling back to uniform when the
// total is not positive or is below minTotal. weights is left untouched.
func newSampler(weights []float64, minTotal float64, src rand.Source) sampler {
	s := sampler{
		probs:    make([]float64, len(weights)),
		minTotal: minTotal,
	}
	s.normalize(weights)
	s.cat = distuv.NewCategorical(s.probs, src)
	return s
}

// reweight replaces the distribution in place without allocating.
func (s *sampler) reweight(weights []float64) {
	s.normalize(weights)
	s.cat.ReweightAll(s.probs)
}

func (s *sampler) normalize(weights []float64) {
	total := floats.Sum(weights)
	if !(total > 0) || total < s.minTotal || len(weights) == 0 {
		s.uniform = true
		for i := range s.probs {
			s.probs[i] = 1 / float64(len(s.probs))
		}
		return
	}
	s.uniform = false
	floats.ScaleTo(s.probs, 1/total, weights)
}

// draw returns one flat cell index.
func (s *sampler) draw() int {
	return int(s.cat.Rand())
}
