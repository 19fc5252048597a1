package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// SequenceSource replays a fixed list of frames at a steady rate, standing in
// for a camera in headless runs and tests.
type SequenceSource struct {
	frames   []image.Image
	interval time.Duration
	loop     bool

	next  int
	due   time.Time
	timer *time.Timer
}

// NewSequenceSource replays frames at fps. When loop is false ReadFrame
// returns io.EOF after the last frame.
func NewSequenceSource(frames []image.Image, fps float64, loop bool) (*SequenceSource, error) {
	if len(frames) == 0 {
		return nil, errors.New("capture: sequence has no frames")
	}
	if fps <= 0 {
		return nil, fmt.Errorf("capture: frame rate must be positive, got %v", fps)
	}
	return &SequenceSource{
		frames:   frames,
		interval: time.Duration(float64(time.Second) / fps),
		loop:     loop,
	}, nil
}

// LoadSequence decodes every file in dir with one of the given extensions,
// in name order. Files that fail to decode are skipped.
func LoadSequence(dir string, extensions []string, fps float64, loop bool) (*SequenceSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("capture: reading frame dir: %w", err)
	}

	var frames []image.Image
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		img, err := decodeFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		frames = append(frames, img)
	}
	return NewSequenceSource(frames, fps, loop)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// Len returns the number of frames in the sequence.
func (s *SequenceSource) Len() int { return len(s.frames) }

// ReadFrame implements FrameSource. The first frame is returned immediately;
// later frames wait for their slot.
func (s *SequenceSource) ReadFrame(ctx context.Context) (image.Image, error) {
	if s.next >= len(s.frames) {
		if !s.loop {
			return nil, io.EOF
		}
		s.next = 0
	}

	now := time.Now()
	if s.due.IsZero() {
		s.due = now
	}
	if wait := s.due.Sub(now); wait > 0 {
		if s.timer == nil {
			s.timer = time.NewTimer(wait)
		} else {
			s.timer.Reset(wait)
		}
		select {
		case <-ctx.Done():
			s.timer.Stop()
			return nil, ctx.Err()
		case <-s.timer.C:
		}
	}

	img := s.frames[s.next]
	s.next++
	s.due = s.due.Add(s.interval)
	return img, nil
}

// Close implements FrameSource.
func (s *SequenceSource) Close() error {
	if s.timer != nil {
		s.timer.Stop()
	}
	return nil
}
