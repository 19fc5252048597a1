package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseSpawn)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseIntegrate)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration")
	}
	if stats.PhaseAvg[PhaseSpawn] <= 0 {
		t.Error("expected spawn phase to be tracked")
	}
	if stats.PhaseAvg[PhaseIntegrate] <= 0 {
		t.Error("expected integrate phase to be tracked")
	}
	if stats.PhaseAvg[PhasePack] != 0 {
		t.Errorf("expected untouched pack phase to stay zero, got %v", stats.PhaseAvg[PhasePack])
	}
	if stats.MinFrameDuration > stats.AvgFrameDuration || stats.AvgFrameDuration > stats.MaxFrameDuration {
		t.Errorf("expected min <= avg <= max, got %v %v %v", stats.MinFrameDuration, stats.AvgFrameDuration, stats.MaxFrameDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseCompact)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration after window filled")
	}
	if stats.FramesPerSecond <= 0 {
		t.Error("expected positive frames per second")
	}
}

// spin busy-waits for d. time.Sleep cannot resolve microsecond phases on
// coarse timers.
func spin(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseRegime)
		spin(20 * time.Microsecond)
		pc.StartPhase(PhaseSpawn)
		spin(2 * time.Millisecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct[PhaseRegime]
	slowPct := stats.PhasePct[PhaseSpawn]
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 || row.SpawnPct != slowPct || row.RegimePct != fastPct {
		t.Errorf("unexpected CSV row %+v", row)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgFrameDuration != 0 {
		t.Error("expected zero avg frame duration for empty collector")
	}
	for ph, pct := range stats.PhasePct {
		if pct != 0 {
			t.Errorf("expected zero share for %s, got %v", Phase(ph), pct)
		}
	}
}

func TestPerfCollector_NoAllocs(t *testing.T) {
	pc := NewPerfCollector(10)
	allocs := testing.AllocsPerRun(100, func() {
		pc.StartFrame()
		pc.StartPhase(PhaseSnapshot)
		pc.StartPhase(PhasePack)
		pc.EndFrame()
	})
	if allocs != 0 {
		t.Errorf("expected no allocations per frame, got %v", allocs)
	}
}

func TestPerfCollector_RenderTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.RenderDuration < 15*time.Millisecond {
		t.Errorf("expected render duration >= 15ms, got %v", stats.RenderDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with 16ms frames, got %v", stats.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseSnapshot.String() != "snapshot" || PhasePack.String() != "pack" {
		t.Errorf("unexpected phase names %s, %s", PhaseSnapshot, PhasePack)
	}
	if Phase(200).String() != "unknown" {
		t.Errorf("expected unknown, got %s", Phase(200))
	}
}
