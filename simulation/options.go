package simulation

import (
	"github.com/pthm-cable/embers/capture"
	"github.com/pthm-cable/embers/imagesource"
	"github.com/pthm-cable/embers/telemetry"
)

// Options configures a Simulation beyond the loaded config.
type Options struct {
	Seed           uint64
	LogStats       bool
	StatsWindowSec float64 // Overrides telemetry.stats_window when > 0
	OutputDir      string  // Empty disables CSV output

	Library   *imagesource.Library // Still images; may be nil
	Capturer  *capture.Capturer    // Live frames; may be nil
	UseCamera bool                 // Start on the camera path when a capturer is set

	StatsCallback func(telemetry.WindowStats)
}
