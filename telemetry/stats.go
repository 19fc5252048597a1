package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`
	Frames           int     `csv:"frames"`

	// Controller state at window end
	Mode   string `csv:"mode"`
	Regime string `csv:"regime"`

	// Live particles: count at window end and per-frame distribution
	Live     int     `csv:"live"`
	LiveMean float64 `csv:"live_mean"`
	LiveP10  float64 `csv:"live_p10"`
	LiveP50  float64 `csv:"live_p50"`
	LiveP90  float64 `csv:"live_p90"`

	// Lifecycle events during window
	Spawned        int `csv:"spawned"`
	Dropped        int `csv:"dropped"` // Spawn requests refused at capacity
	Expired        int `csv:"expired"`
	Bursts         int `csv:"bursts"`
	BurstParticles int `csv:"burst_particles"`

	// Regime
	Energizes     int     `csv:"energizes"`
	CalmDowns     int     `csv:"calm_downs"`
	EnergizedFrac float64 `csv:"energized_frac"` // Share of frames spent energized
}

// Summarize returns the mean and the 10th, 50th and 90th percentiles of
// values using the empirical quantile. values is sorted in place.
// Returns zeros for an empty slice.
func Summarize(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)
	slices.Sort(values)
	p10 = stat.Quantile(0.10, stat.Empirical, values, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, values, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.String("mode", s.Mode),
		slog.String("regime", s.Regime),
		slog.Int("live", s.Live),
		slog.Float64("live_mean", s.LiveMean),
		slog.Float64("live_p10", s.LiveP10),
		slog.Float64("live_p50", s.LiveP50),
		slog.Float64("live_p90", s.LiveP90),
		slog.Int("spawned", s.Spawned),
		slog.Int("dropped", s.Dropped),
		slog.Int("expired", s.Expired),
		slog.Int("bursts", s.Bursts),
		slog.Int("burst_particles", s.BurstParticles),
		slog.Int("energizes", s.Energizes),
		slog.Int("calm_downs", s.CalmDowns),
		slog.Float64("energized_frac", s.EnergizedFrac),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"mode", s.Mode,
		"regime", s.Regime,
		"live", s.Live,
		"live_p50", s.LiveP50,
		"spawned", s.Spawned,
		"dropped", s.Dropped,
		"expired", s.Expired,
		"bursts", s.Bursts,
		"energizes", s.Energizes,
		"calm_downs", s.CalmDowns,
		"energized_frac", s.EnergizedFrac,
	)
}
