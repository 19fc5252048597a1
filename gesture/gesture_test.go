package gesture

import (
	"math"
	"testing"

	"github.com/pthm-cable/embers/config"
)

func init() {
	config.MustInit("")
}

// openHand returns landmarks for an upright open palm in image coordinates.
func openHand() []Point {
	lm := make([]Point, LandmarkCount)
	lm[Wrist] = Point{0.5, 0.9}
	lm[ThumbMCP] = Point{0.45, 0.8}
	lm[ThumbTip] = Point{0.3, 0.7}
	for _, f := range [][2]int{{IndexMCP, IndexTip}, {MiddleMCP, MiddleTip}, {RingMCP, RingTip}, {PinkyMCP, PinkyTip}} {
		lm[f[0]] = Point{0.5, 0.6}
		lm[f[1]] = Point{0.5, 0.3}
	}
	return lm
}

// fist returns the same hand with every finger curled.
func fist() []Point {
	lm := openHand()
	lm[ThumbTip] = Point{0.48, 0.75}
	for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
		lm[tip].Y = 0.7
	}
	return lm
}

func TestClassifyOpenPalm(t *testing.T) {
	if f := Classify(openHand()); !f.All() {
		t.Errorf("expected all fingers extended, got %+v", f)
	}

	f := Classify(fist())
	if f.Index || f.Middle || f.Ring || f.Pinky || f.Thumb {
		t.Errorf("expected no fingers extended for a fist, got %+v", f)
	}

	lm := openHand()
	lm[RingTip].Y = 0.65
	f = Classify(lm)
	if f.All() || f.Ring {
		t.Errorf("expected curled ring finger to break the open palm, got %+v", f)
	}
}

func TestTrackerSmoothing(t *testing.T) {
	tr := NewTracker(config.Cfg().Gesture)

	expected := []struct {
		confidence float64
		open       bool
	}{
		{0.3, false},
		{0.51, true},
		{0.657, true},
	}
	for i, e := range expected {
		sig := tr.Update(openHand(), true)
		if math.Abs(tr.Confidence()-e.confidence) > 1e-9 {
			t.Errorf("frame %d: expected confidence %v, got %v", i, e.confidence, tr.Confidence())
		}
		if sig.Open != e.open {
			t.Errorf("frame %d: expected open=%v, got %v", i, e.open, sig.Open)
		}
		if !sig.Detected {
			t.Errorf("frame %d: expected detected", i)
		}
	}
}

func TestTrackerDecaysWithoutHand(t *testing.T) {
	tr := NewTracker(config.Cfg().Gesture)
	tr.Update(openHand(), true)
	tr.Update(openHand(), true)

	sig := tr.Update(nil, false)
	if sig.Detected || sig.Open {
		t.Errorf("expected empty signal without a hand, got %+v", sig)
	}
	if math.Abs(tr.Confidence()-0.51*0.7) > 1e-9 {
		t.Errorf("expected confidence %v, got %v", 0.51*0.7, tr.Confidence())
	}

	// A closed hand also decays toward zero
	tr.Update(fist(), true)
	if math.Abs(tr.Confidence()-0.51*0.7*0.7) > 1e-9 {
		t.Errorf("expected confidence %v, got %v", 0.51*0.7*0.7, tr.Confidence())
	}
}

func TestTrackerRejectsShortSkeleton(t *testing.T) {
	tr := NewTracker(config.Cfg().Gesture)
	sig := tr.Update(openHand()[:10], true)
	if sig.Detected {
		t.Error("expected a partial skeleton to count as no detection")
	}
	if tr.Confidence() != 0 {
		t.Errorf("expected confidence to stay 0, got %v", tr.Confidence())
	}
}

func TestTrackerPalmNDC(t *testing.T) {
	tr := NewTracker(config.Cfg().Gesture)
	lm := openHand()
	sig := tr.Update(lm, true)

	// Palm center (0.5, 0.75) mirrors to (0, -0.5)
	if math.Abs(float64(sig.X)) > 1e-6 || math.Abs(float64(sig.Y+0.5)) > 1e-6 {
		t.Errorf("expected palm at (0, -0.5), got (%v, %v)", sig.X, sig.Y)
	}
	if len(sig.Landmarks) != LandmarkCount {
		t.Fatalf("expected %d landmarks, got %d", LandmarkCount, len(sig.Landmarks))
	}
	thumb := sig.Landmarks[ThumbTip]
	if math.Abs(float64(thumb.X-0.4)) > 1e-6 || math.Abs(float64(thumb.Y+0.4)) > 1e-6 {
		t.Errorf("expected thumb tip at (0.4, -0.4), got (%v, %v)", thumb.X, thumb.Y)
	}
}

func TestSignalCopyTo(t *testing.T) {
	tr := NewTracker(config.Cfg().Gesture)
	sig := tr.Update(openHand(), true)

	var dst Signal
	sig.CopyTo(&dst)
	if !dst.Detected || len(dst.Landmarks) != LandmarkCount {
		t.Fatalf("expected copied signal, got %+v", dst)
	}

	// Later tracker updates must not leak into the copy
	before := dst.Landmarks[0]
	lm := openHand()
	lm[Wrist] = Point{0.1, 0.1}
	tr.Update(lm, true)
	if dst.Landmarks[0] != before {
		t.Errorf("expected copy to be independent, wrist moved to %+v", dst.Landmarks[0])
	}
}
