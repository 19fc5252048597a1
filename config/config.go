// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Density   DensityConfig   `yaml:"density"`
	Particles ParticlesConfig `yaml:"particles"`
	Regime    RegimeConfig    `yaml:"regime"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Capture   CaptureConfig   `yaml:"capture"`
	Images    ImagesConfig    `yaml:"images"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. Width and Height also define the
// canvas the density field is fitted onto.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DensityConfig controls how a still image becomes a spawn distribution.
type DensityConfig struct {
	ProcessWidth     int     `yaml:"process_width"`     // Grid columns; rows follow the aspect ratio
	EdgeWeight       float64 `yaml:"edge_weight"`       // Weight of the Canny edge map
	GradientWeight   float64 `yaml:"gradient_weight"`   // Weight of the normalized Sobel magnitude
	BrightnessWeight float64 `yaml:"brightness_weight"` // Weight of the floored brightness
	BrightnessFloor  float64 `yaml:"brightness_floor"`  // Minimum brightness so black cells keep a tiny probability
	CannyLow         float64 `yaml:"canny_low"`         // Hysteresis low threshold (0-255 gradient units)
	CannyHigh        float64 `yaml:"canny_high"`        // Hysteresis high threshold
	MinTotalWeight   float64 `yaml:"min_total_weight"`  // Below this total the field falls back to uniform
	BrightnessMix    float64 `yaml:"brightness_mix"`    // Camera field: brightness share of the weight
	MotionMix        float64 `yaml:"motion_mix"`        // Camera field: motion share of the weight
}

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Kinematics holds the spawn velocity and lifetime ranges for one regime.
type Kinematics struct {
	VelX Range `yaml:"vel_x"`
	VelY Range `yaml:"vel_y"`
	Life Range `yaml:"life"`
}

// SourceProfile pairs calm and energized kinematics for one spawn source kind.
type SourceProfile struct {
	Calm      Kinematics `yaml:"calm"`
	Energized Kinematics `yaml:"energized"`
}

// RGB is a color with channels in [0, 1].
type RGB struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
}

// ParticlesConfig holds particle engine parameters.
type ParticlesConfig struct {
	Capacity    int `yaml:"capacity"`     // Maximum live particles
	SpawnBudget int `yaml:"spawn_budget"` // New particles per frame
	BurstSize   int `yaml:"burst_size"`   // Particles per gesture burst

	Image  SourceProfile `yaml:"image"`  // Kinematics for image-driven spawning
	Camera SourceProfile `yaml:"camera"` // Kinematics for camera-driven spawning

	WobbleFrequency float64 `yaml:"wobble_frequency"` // Radians per second of the horizontal wobble
	WobbleCalm      float64 `yaml:"wobble_calm"`      // Wobble amplitude in the calm regime
	WobbleEnergized float64 `yaml:"wobble_energized"` // Wobble amplitude in the energized regime
	FadePeak        float64 `yaml:"fade_peak"`        // Life fraction at which alpha peaks
	SizeMin         float64 `yaml:"size_min"`         // Point size at spawn
	SizeMax         float64 `yaml:"size_max"`         // Point size at death

	// Energized palette
	SparkChance float64 `yaml:"spark_chance"`
	Spark       RGB     `yaml:"spark"`
	WarmGain    RGB     `yaml:"warm_gain"` // Per-channel multiplier
	WarmBias    float64 `yaml:"warm_bias"` // Added to red before the gain clamp

	// Calm palette
	DesaturateMin   float64 `yaml:"desaturate_min"`
	DesaturateMax   float64 `yaml:"desaturate_max"`
	ChannelFloor    float64 `yaml:"channel_floor"` // Minimum channel value after desaturation
	AccentChance    float64 `yaml:"accent_chance"` // Chance of each accent color
	AccentPrimary   RGB     `yaml:"accent_primary"`
	AccentSecondary RGB     `yaml:"accent_secondary"`

	// Gesture burst
	Burst            Kinematics `yaml:"burst"`
	BurstSpread      float64    `yaml:"burst_spread"` // Half-width of the burst cluster in NDC
	BurstSparkChance float64    `yaml:"burst_spark_chance"`
	BurstFrom        RGB        `yaml:"burst_from"`
	BurstTo          RGB        `yaml:"burst_to"`
	BurstSpark       RGB        `yaml:"burst_spark"`

	// Distance recolor
	RecolorRadius float64 `yaml:"recolor_radius"` // Distance at which the gradient reaches RecolorFar
	RecolorNear   RGB     `yaml:"recolor_near"`
	RecolorFar    RGB     `yaml:"recolor_far"`
}

// RegimeConfig holds the calm/energized state machine parameters.
type RegimeConfig struct {
	EnterThreshold    float64 `yaml:"enter_threshold"`    // Motion above this energizes
	ExitThreshold     float64 `yaml:"exit_threshold"`     // Motion below this may calm down
	Cooldown          float64 `yaml:"cooldown"`           // Seconds since last high signal before calming
	CalmDuration      float64 `yaml:"calm_duration"`      // Clock-driven calm phase, seconds
	EnergizedDuration float64 `yaml:"energized_duration"` // Clock-driven energized phase, seconds
}

// GestureConfig holds the hand-signal smoothing contract.
type GestureConfig struct {
	Decay     float64 `yaml:"decay"`     // confidence = confidence*Decay + raw*(1-Decay)
	Threshold float64 `yaml:"threshold"` // Open when confidence exceeds this
}

// CaptureConfig holds live capture parameters.
type CaptureConfig struct {
	GridWidth   int     `yaml:"grid_width"`   // Brightness/motion grid columns
	GridHeight  int     `yaml:"grid_height"`  // Brightness/motion grid rows
	StopTimeout float64 `yaml:"stop_timeout"` // Seconds to wait for the capture goroutine on shutdown
	FrameRate   float64 `yaml:"frame_rate"`   // Replay rate for sequence sources
}

// ImagesConfig holds still-image library settings.
type ImagesConfig struct {
	Dir        string   `yaml:"dir"`
	Preferred  string   `yaml:"preferred"`  // File name to start on when present
	Extensions []string `yaml:"extensions"` // Lower-case extensions including the dot
}

// TelemetryConfig holds stats and perf collection settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Stats window size in seconds
	PerfWindow  int     `yaml:"perf_window"`  // Frames averaged by the perf collector
	PerfLog     bool    `yaml:"perf_log"`     // Log perf stats at each window boundary
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	ScreenW32   float32 // Screen.Width as float32
	ScreenH32   float32 // Screen.Height as float32
	CycleLength float64 // Regime.CalmDuration + Regime.EnergizedDuration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
// Tests use it to tweak values without touching the global config.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every malformed value in the configuration.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Screen.Width > 0 && c.Screen.Height > 0, "screen: size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)

	errs = append(errs, c.Density.Validate())
	errs = append(errs, c.Particles.Validate())
	errs = append(errs, c.Regime.Validate())
	errs = append(errs, c.Gesture.Validate())

	check(c.Capture.GridWidth > 0 && c.Capture.GridHeight > 0, "capture: grid must be positive, got %dx%d", c.Capture.GridWidth, c.Capture.GridHeight)
	check(c.Capture.StopTimeout >= 0, "capture: stop_timeout must not be negative, got %v", c.Capture.StopTimeout)
	check(c.Capture.FrameRate > 0, "capture: frame_rate must be positive, got %v", c.Capture.FrameRate)
	check(c.Telemetry.StatsWindow >= 0, "telemetry: stats_window must not be negative, got %v", c.Telemetry.StatsWindow)

	return errors.Join(errs...)
}

// Validate checks the density section.
func (d DensityConfig) Validate() error {
	var errs []error
	if d.ProcessWidth <= 0 {
		errs = append(errs, fmt.Errorf("density: process_width must be positive, got %d", d.ProcessWidth))
	}
	if d.EdgeWeight < 0 || d.GradientWeight < 0 || d.BrightnessWeight < 0 {
		errs = append(errs, errors.New("density: feature weights must not be negative"))
	}
	if d.BrightnessMix < 0 || d.MotionMix < 0 {
		errs = append(errs, errors.New("density: camera mix weights must not be negative"))
	}
	if d.BrightnessFloor < 0 || d.BrightnessFloor > 1 {
		errs = append(errs, fmt.Errorf("density: brightness_floor must be in [0,1], got %v", d.BrightnessFloor))
	}
	if !(d.MinTotalWeight > 0) {
		errs = append(errs, fmt.Errorf("density: min_total_weight must be positive, got %v", d.MinTotalWeight))
	}
	if d.CannyLow < 0 || d.CannyHigh < d.CannyLow {
		errs = append(errs, fmt.Errorf("density: canny thresholds must satisfy 0 <= low <= high, got %v/%v", d.CannyLow, d.CannyHigh))
	}
	return errors.Join(errs...)
}

// Validate checks the particles section.
func (p ParticlesConfig) Validate() error {
	var errs []error
	if p.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("particles: capacity must be positive, got %d", p.Capacity))
	}
	if p.SpawnBudget < 0 {
		errs = append(errs, fmt.Errorf("particles: spawn_budget must not be negative, got %d", p.SpawnBudget))
	}
	if p.BurstSize < 0 {
		errs = append(errs, fmt.Errorf("particles: burst_size must not be negative, got %d", p.BurstSize))
	}
	if p.FadePeak <= 0 || p.FadePeak >= 1 {
		errs = append(errs, fmt.Errorf("particles: fade_peak must be in (0,1), got %v", p.FadePeak))
	}
	if p.DesaturateMin > p.DesaturateMax {
		errs = append(errs, errors.New("particles: desaturate_min exceeds desaturate_max"))
	}
	if p.RecolorRadius <= 0 {
		errs = append(errs, fmt.Errorf("particles: recolor_radius must be positive, got %v", p.RecolorRadius))
	}
	for name, k := range map[string]Kinematics{
		"image.calm":       p.Image.Calm,
		"image.energized":  p.Image.Energized,
		"camera.calm":      p.Camera.Calm,
		"camera.energized": p.Camera.Energized,
		"burst":            p.Burst,
	} {
		if err := k.validate(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (k Kinematics) validate(name string) error {
	if k.VelX.Min > k.VelX.Max || k.VelY.Min > k.VelY.Max || k.Life.Min > k.Life.Max {
		return fmt.Errorf("particles: %s has an inverted range", name)
	}
	if k.Life.Min <= 0 {
		return fmt.Errorf("particles: %s life must be positive, got %v", name, k.Life.Min)
	}
	return nil
}

// Validate checks the regime section.
func (r RegimeConfig) Validate() error {
	var errs []error
	if r.ExitThreshold > r.EnterThreshold {
		errs = append(errs, fmt.Errorf("regime: exit_threshold %v exceeds enter_threshold %v", r.ExitThreshold, r.EnterThreshold))
	}
	if r.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("regime: cooldown must not be negative, got %v", r.Cooldown))
	}
	if r.CalmDuration < 0 || r.EnergizedDuration < 0 {
		errs = append(errs, fmt.Errorf("regime: durations must not be negative, got calm=%v energized=%v", r.CalmDuration, r.EnergizedDuration))
	} else if r.CalmDuration+r.EnergizedDuration <= 0 {
		errs = append(errs, errors.New("regime: cycle length must be positive"))
	}
	return errors.Join(errs...)
}

// Validate checks the gesture section.
func (g GestureConfig) Validate() error {
	if g.Decay < 0 || g.Decay >= 1 {
		return fmt.Errorf("gesture: decay must be in [0,1), got %v", g.Decay)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.CycleLength = c.Regime.CalmDuration + c.Regime.EnergizedDuration
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
