// Package capture runs live frame acquisition on its own goroutine and
// publishes brightness, motion and gesture data as a lock-guarded snapshot.
//
// The frame loop never touches capture state directly. Once per frame it
// copies the latest snapshot into buffers it owns, so producer and consumer
// run at independent rates and dropped capture frames go unnoticed.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/gesture"
)

// FrameSource yields camera frames. ReadFrame blocks until a frame is
// available or ctx is done; io.EOF ends capture.
type FrameSource interface {
	ReadFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// HandDetector finds one hand skeleton in a frame, returning landmarks in
// normalized image coordinates.
type HandDetector interface {
	Detect(img image.Image) ([]gesture.Point, bool)
}

// NoDetector never finds a hand.
type NoDetector struct{}

// Detect implements HandDetector.
func (NoDetector) Detect(image.Image) ([]gesture.Point, bool) { return nil, false }

// Snapshot is one published capture state. Grids are row-major, Width x Height.
type Snapshot struct {
	Width, Height int
	Brightness    []float32 // gray/255
	Motion        []float32 // |gray - previous gray|/255
	RGB           []float32 // 3 per cell, [0,1]
	AvgMotion     float64   // mean of Motion
	Gesture       gesture.Signal
	Confidence    float64 // smoothed open-palm confidence
	Frame         uint64  // frames published so far; 0 before the first
}

// copyTo deep-copies s into dst, reusing dst's buffers.
func (s *Snapshot) copyTo(dst *Snapshot) {
	dst.Width = s.Width
	dst.Height = s.Height
	dst.Brightness = append(dst.Brightness[:0], s.Brightness...)
	dst.Motion = append(dst.Motion[:0], s.Motion...)
	dst.RGB = append(dst.RGB[:0], s.RGB...)
	dst.AvgMotion = s.AvgMotion
	s.Gesture.CopyTo(&dst.Gesture)
	dst.Confidence = s.Confidence
	dst.Frame = s.Frame
}

// ErrStopTimeout is returned by Stop when the capture goroutine does not
// exit within the configured timeout.
var ErrStopTimeout = errors.New("capture: goroutine did not stop in time")

// Capturer owns the capture goroutine.
type Capturer struct {
	src     FrameSource
	det     HandDetector
	tracker *gesture.Tracker
	w, h    int
	timeout time.Duration

	// Capture goroutine only
	small    *image.RGBA
	prevGray []float32
	hasPrev  bool
	work     Snapshot

	mu     sync.Mutex
	latest Snapshot

	cancel context.CancelFunc
	done   chan struct{}
	err    error // loop exit error, read after done closes
}

// New creates a capturer. det may be nil for no hand detection.
func New(src FrameSource, det HandDetector, cfg config.CaptureConfig, gcfg config.GestureConfig) (*Capturer, error) {
	if src == nil {
		return nil, errors.New("capture: nil frame source")
	}
	if cfg.GridWidth <= 0 || cfg.GridHeight <= 0 {
		return nil, fmt.Errorf("capture: grid must be positive, got %dx%d", cfg.GridWidth, cfg.GridHeight)
	}
	if err := gcfg.Validate(); err != nil {
		return nil, err
	}
	if det == nil {
		det = NoDetector{}
	}

	w, h := cfg.GridWidth, cfg.GridHeight
	newGrid := func(n int) Snapshot {
		return Snapshot{
			Width:      w,
			Height:     h,
			Brightness: make([]float32, n),
			Motion:     make([]float32, n),
			RGB:        make([]float32, n*3),
		}
	}
	return &Capturer{
		src:      src,
		det:      det,
		tracker:  gesture.NewTracker(gcfg),
		w:        w,
		h:        h,
		timeout:  time.Duration(cfg.StopTimeout * float64(time.Second)),
		small:    image.NewRGBA(image.Rect(0, 0, w, h)),
		prevGray: make([]float32, w*h),
		work:     newGrid(w * h),
		latest:   newGrid(w * h),
	}, nil
}

// Start launches the capture goroutine. It must be called at most once.
func (c *Capturer) Start(ctx context.Context) error {
	if c.done != nil {
		return errors.New("capture: already started")
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx)
	slog.Info("capture_started", "grid_w", c.w, "grid_h", c.h)
	return nil
}

func (c *Capturer) run(ctx context.Context) {
	defer close(c.done)
	for {
		img, err := c.src.ReadFrame(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			c.err = err
			slog.Warn("capture_frame_failed", "error", err)
			return
		}
		if img == nil || img.Bounds().Empty() {
			continue
		}
		c.process(img)
	}
}

// process turns one frame into grids and publishes them.
func (c *Capturer) process(img image.Image) {
	landmarks, ok := c.det.Detect(img)
	sig := c.tracker.Update(landmarks, ok)

	draw.ApproxBiLinear.Scale(c.small, c.small.Bounds(), img, img.Bounds(), draw.Src, nil)

	s := &c.work
	var total float64
	for y := 0; y < c.h; y++ {
		row := c.small.Pix[y*c.small.Stride:]
		for x := 0; x < c.w; x++ {
			r := float32(row[x*4])
			g := float32(row[x*4+1])
			b := float32(row[x*4+2])
			i := y*c.w + x
			gray := (0.299*r + 0.587*g + 0.114*b) / 255

			var m float32
			if c.hasPrev {
				m = gray - c.prevGray[i]
				if m < 0 {
					m = -m
				}
			}
			c.prevGray[i] = gray
			total += float64(m)

			s.Brightness[i] = gray
			s.Motion[i] = m
			s.RGB[i*3] = r / 255
			s.RGB[i*3+1] = g / 255
			s.RGB[i*3+2] = b / 255
		}
	}
	c.hasPrev = true
	s.AvgMotion = total / float64(c.w*c.h)
	s.Gesture = sig
	s.Confidence = c.tracker.Confidence()
	s.Frame++

	c.mu.Lock()
	s.copyTo(&c.latest)
	c.mu.Unlock()
}

// Snapshot copies the latest published data into dst. It reports false
// until the first frame has been published.
func (c *Capturer) Snapshot(dst *Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest.copyTo(dst)
	return c.latest.Frame > 0
}

// Stop cancels the capture goroutine, waits up to the stop timeout for it to
// exit, and closes the frame source.
func (c *Capturer) Stop() error {
	if c.done == nil {
		return c.src.Close()
	}
	c.cancel()

	var errs []error
	select {
	case <-c.done:
		if c.err != nil {
			errs = append(errs, c.err)
		}
	case <-time.After(c.timeout):
		errs = append(errs, ErrStopTimeout)
	}
	if err := c.src.Close(); err != nil {
		errs = append(errs, fmt.Errorf("capture: closing source: %w", err))
	}
	slog.Info("capture_stopped", "frames", c.frames())
	return errors.Join(errs...)
}

func (c *Capturer) frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest.Frame
}

// Done is closed when the capture goroutine exits.
func (c *Capturer) Done() <-chan struct{} { return c.done }
