// Package gesture smooths raw hand landmarks into a per-frame open-palm signal.
package gesture

import "github.com/pthm-cable/embers/config"

// LandmarkCount is the number of landmarks in a hand skeleton.
const LandmarkCount = 21

// Landmark indices used by the open-palm rule.
const (
	Wrist     = 0
	ThumbMCP  = 2
	ThumbTip  = 4
	IndexMCP  = 5
	IndexTip  = 8
	MiddleMCP = 9
	MiddleTip = 12
	RingMCP   = 13
	RingTip   = 16
	PinkyMCP  = 17
	PinkyTip  = 20
)

// Point is a landmark in normalized image coordinates (origin top-left, [0,1]),
// or in NDC once converted by the tracker.
type Point struct {
	X, Y float32
}

// Fingers records which fingers the detector saw extended.
type Fingers struct {
	Thumb, Index, Middle, Ring, Pinky bool
}

// All reports whether every finger is extended.
func (f Fingers) All() bool {
	return f.Thumb && f.Index && f.Middle && f.Ring && f.Pinky
}

// Signal is the per-frame hand-gesture contract consumed by the simulation.
// X and Y are the palm center in NDC, mirrored horizontally.
type Signal struct {
	Detected  bool
	Open      bool
	X, Y      float32
	Landmarks []Point // NDC, LandmarkCount entries when detected
	Fingers   Fingers
}

// CopyTo copies s into dst, reusing dst's landmark storage.
func (s *Signal) CopyTo(dst *Signal) {
	lm := append(dst.Landmarks[:0], s.Landmarks...)
	*dst = *s
	dst.Landmarks = lm
}

// Tracker applies exponential smoothing to the raw open-palm classification.
// It is not safe for concurrent use.
type Tracker struct {
	decay      float64
	threshold  float64
	confidence float64
	landmarks  []Point
}

// NewTracker creates a tracker from the gesture config.
func NewTracker(cfg config.GestureConfig) *Tracker {
	return &Tracker{
		decay:     cfg.Decay,
		threshold: cfg.Threshold,
		landmarks: make([]Point, 0, LandmarkCount),
	}
}

// Confidence returns the smoothed open-palm confidence in [0,1].
func (t *Tracker) Confidence() float64 { return t.confidence }

// Reset clears the smoothed confidence.
func (t *Tracker) Reset() { t.confidence = 0 }

// Update folds one detector result into the tracker. landmarks are in
// normalized image coordinates; a result with fewer than LandmarkCount points
// counts as no detection. The returned Landmarks slice is owned by the tracker
// and valid until the next call.
func (t *Tracker) Update(landmarks []Point, ok bool) Signal {
	if !ok || len(landmarks) < LandmarkCount {
		t.confidence *= t.decay
		return Signal{}
	}

	fingers := Classify(landmarks)
	var raw float64
	if fingers.All() {
		raw = 1
	}
	t.confidence = t.confidence*t.decay + raw*(1-t.decay)

	t.landmarks = t.landmarks[:0]
	for _, p := range landmarks[:LandmarkCount] {
		t.landmarks = append(t.landmarks, toNDC(p))
	}

	palm := toNDC(Point{
		X: (landmarks[Wrist].X + landmarks[MiddleMCP].X) / 2,
		Y: (landmarks[Wrist].Y + landmarks[MiddleMCP].Y) / 2,
	})
	return Signal{
		Detected:  true,
		Open:      t.confidence > t.threshold,
		X:         palm.X,
		Y:         palm.Y,
		Landmarks: t.landmarks,
		Fingers:   fingers,
	}
}

// Classify applies the open-palm rule: each finger tip above its MCP joint
// (smaller y in image coordinates) and the thumb tip farther from the wrist
// in x than the thumb MCP.
func Classify(lm []Point) Fingers {
	return Fingers{
		Thumb:  absf(lm[ThumbTip].X-lm[Wrist].X) > absf(lm[ThumbMCP].X-lm[Wrist].X),
		Index:  lm[IndexTip].Y < lm[IndexMCP].Y,
		Middle: lm[MiddleTip].Y < lm[MiddleMCP].Y,
		Ring:   lm[RingTip].Y < lm[RingMCP].Y,
		Pinky:  lm[PinkyTip].Y < lm[PinkyMCP].Y,
	}
}

// toNDC maps normalized image coordinates to mirrored NDC.
func toNDC(p Point) Point {
	return Point{X: 1 - 2*p.X, Y: 1 - 2*p.Y}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
