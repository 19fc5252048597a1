package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/embers/capture"
	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/game"
	"github.com/pthm-cable/embers/imagesource"
	"github.com/pthm-cable/embers/simulation"
	"github.com/pthm-cable/embers/viewport"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	imagesDir := flag.String("images", "", "Directory of still images (empty = use config)")
	framesDir := flag.String("frames", "", "Directory of frames replayed as the camera feed")
	useCamera := flag.Bool("camera", false, "Start on the camera path when -frames is set")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *imagesDir != "" {
		cfg.Images.Dir = *imagesDir
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	canvas := viewport.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32)
	library, err := imagesource.New(cfg.Images, canvas, cfg.Density, rand.NewPCG(rngSeed, rngSeed^0x9e3779b97f4a7c15))
	switch {
	case errors.Is(err, imagesource.ErrNoImages):
		slog.Warn("no images found", "dir", cfg.Images.Dir)
	case err != nil:
		slog.Warn("image library unavailable", "dir", cfg.Images.Dir, "error", err)
	}

	var capturer *capture.Capturer
	if *framesDir != "" {
		capturer, err = startCapture(ctx, cfg, *framesDir)
		if err != nil {
			slog.Error("failed to start capture", "dir", *framesDir, "error", err)
			os.Exit(1)
		}
	}

	opts := simulation.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Library:        library,
		Capturer:       capturer,
		UseCamera:      *useCamera,
	}
	sim, err := simulation.NewSimulation(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		if capturer != nil {
			capturer.Stop()
		}
		os.Exit(1)
	}
	defer func() {
		if err := sim.Close(); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	var imageCount int
	if library != nil {
		imageCount = library.Count()
	}
	slog.Info("starting",
		"seed", rngSeed,
		"headless", *headless,
		"images", imageCount,
		"camera", sim.UsingCamera(),
	)

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		simulation.RunHeadless(ctx, sim, *maxFrames)
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Embers")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGame(sim)
	defer g.Unload()

	for !g.ShouldClose() && ctx.Err() == nil {
		g.Update()
		g.Draw()

		if *maxFrames > 0 && g.Frame() >= *maxFrames {
			break
		}
	}
}

// startCapture replays a frame directory as the camera feed.
func startCapture(ctx context.Context, cfg *config.Config, dir string) (*capture.Capturer, error) {
	src, err := capture.LoadSequence(dir, cfg.Images.Extensions, cfg.Capture.FrameRate, true)
	if err != nil {
		return nil, err
	}
	c, err := capture.New(src, capture.NoDetector{}, cfg.Capture, cfg.Gesture)
	if err != nil {
		src.Close()
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		c.Stop()
		return nil, err
	}
	return c, nil
}
