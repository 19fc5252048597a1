package simulation

import (
	"log/slog"

	"github.com/pthm-cable/embers/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.now) {
		return
	}
	s.writeWindow(s.collector.Flush(s.frame, s.now, s.regime.Mode(), s.regime.Regime()))
}

// writeWindow reports one finished stats window to the log, CSV output and
// the stats callback, then runs bookmark detection on it.
func (s *Simulation) writeWindow(stats telemetry.WindowStats) {
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
	}
	if s.logStats || s.cfg.Telemetry.PerfLog {
		perfStats.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}
