package simulation

import (
	"context"
	"log/slog"
)

// RunHeadless steps sim at the fixed rate as fast as possible until ctx is
// done or maxFrames steps have run (0 = unlimited). It never touches raylib.
func RunHeadless(ctx context.Context, sim *Simulation, maxFrames int64) {
	slog.Info("starting headless simulation",
		"max_frames", maxFrames,
		"camera", sim.UsingCamera(),
	)

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("headless run interrupted", "frame", sim.Frame())
			return
		}

		sim.Step(DT)

		if maxFrames > 0 && sim.Frame() >= maxFrames {
			slog.Info("max frames reached", "frame", sim.Frame(), "sim_time", sim.Now())
			return
		}
	}
}
