package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSequenceSourceOrderAndEOF(t *testing.T) {
	frames := []image.Image{solid(color.Black), solid(color.White)}
	s, err := NewSequenceSource(frames, 1000, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i, want := range frames {
		got, err := s.ReadFrame(ctx)
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("frame %d: frames out of order", i)
		}
	}
	if _, err := s.ReadFrame(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after the last frame, got %v", err)
	}
}

func TestSequenceSourceLoops(t *testing.T) {
	frames := []image.Image{solid(color.Black)}
	s, err := NewSequenceSource(frames, 1000, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := s.ReadFrame(context.Background()); err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
	}
}

func TestSequenceSourceHonorsContext(t *testing.T) {
	s, err := NewSequenceSource([]image.Image{solid(color.Black)}, 0.5, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// First frame is immediate, the second is two seconds out
	if _, err := s.ReadFrame(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.ReadFrame(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestNewSequenceSourceRejectsBadInput(t *testing.T) {
	if _, err := NewSequenceSource(nil, 30, false); err == nil {
		t.Error("expected error for empty sequence")
	}
	if _, err := NewSequenceSource([]image.Image{solid(color.Black)}, 0, false); err == nil {
		t.Error("expected error for zero frame rate")
	}
}

func TestLoadSequence(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.png"} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, solid(color.White)); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSequence(dir, []string{".png"}, 30, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 decodable frames, got %d", s.Len())
	}

	if _, err := LoadSequence(t.TempDir(), []string{".png"}, 30, false); err == nil {
		t.Error("expected error for a directory without frames")
	}
}
