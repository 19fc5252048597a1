// Package imagesource walks a directory of still images and turns the current
// one into a density field.
package imagesource

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/pthm-cable/embers/config"
	"github.com/pthm-cable/embers/density"
	"github.com/pthm-cable/embers/viewport"
)

// ErrNoImages is returned when the library has nothing to load.
var ErrNoImages = errors.New("imagesource: no images")

// Library is an ordered set of image files with one current density field.
type Library struct {
	paths  []string
	index  int // cursor, advances past files that fail to load
	loaded int // index of the image behind field
	canvas viewport.Canvas
	cfg    config.DensityConfig
	src    rand.Source

	field *density.Field
	name  string
}

// New scans cfg.Dir for images with a configured extension, sorted by name,
// and loads the preferred image or else the first one that decodes.
// An empty directory yields a library with no field and ErrNoImages.
func New(cfg config.ImagesConfig, canvas viewport.Canvas, dcfg config.DensityConfig, src rand.Source) (*Library, error) {
	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("imagesource: reading %s: %w", cfg.Dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(cfg.Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			paths = append(paths, filepath.Join(cfg.Dir, e.Name()))
		}
	}
	slices.Sort(paths)

	return NewFromPaths(paths, cfg.Preferred, canvas, dcfg, src)
}

// NewFromPaths builds a library over an explicit file list.
func NewFromPaths(paths []string, preferred string, canvas viewport.Canvas, dcfg config.DensityConfig, src rand.Source) (*Library, error) {
	l := &Library{
		paths:  paths,
		canvas: canvas,
		cfg:    dcfg,
		src:    src,
	}
	if len(paths) == 0 {
		return l, ErrNoImages
	}

	if preferred != "" {
		for i, p := range paths {
			if strings.EqualFold(filepath.Base(p), preferred) {
				l.index = i
				break
			}
		}
	}

	// Start on the first image that loads, beginning at the preferred one
	var errs []error
	for range paths {
		err := l.load()
		if err == nil {
			return l, nil
		}
		errs = append(errs, err)
		l.index = (l.index + 1) % len(paths)
	}
	return l, errors.Join(errs...)
}

// Next advances to the next image, wrapping around. On failure the previous
// field stays current and the error is returned; the next step moves past
// the broken file.
func (l *Library) Next() error { return l.step(1) }

// Prev moves to the previous image, wrapping around.
func (l *Library) Prev() error { return l.step(-1) }

func (l *Library) step(d int) error {
	if len(l.paths) == 0 {
		return ErrNoImages
	}
	n := len(l.paths)
	l.index = ((l.index+d)%n + n) % n
	return l.load()
}

// Reload rebuilds the current field, for example after the density config changed.
func (l *Library) Reload(cfg config.DensityConfig) error {
	l.cfg = cfg
	if len(l.paths) == 0 {
		return ErrNoImages
	}
	l.index = l.loaded
	return l.load()
}

func (l *Library) load() error {
	path := l.paths[l.index]
	img, err := decodeFile(path)
	if err != nil {
		slog.Warn("image_load_failed", "path", path, "error", err)
		return fmt.Errorf("imagesource: %s: %w", filepath.Base(path), err)
	}
	f, err := density.Build(img, l.canvas, l.cfg, l.src)
	if err != nil {
		slog.Warn("image_load_failed", "path", path, "error", err)
		return fmt.Errorf("imagesource: %s: %w", filepath.Base(path), err)
	}

	l.field = f
	l.loaded = l.index
	l.name = filepath.Base(path)
	w, h := f.Size()
	slog.Info("image_loaded", "name", l.name, "grid_w", w, "grid_h", h, "uniform", f.Uniform())
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	return img, nil
}

// Field returns the current density field, or nil if nothing has loaded.
func (l *Library) Field() *density.Field { return l.field }

// Name returns the file name of the loaded image, or "(no images)".
func (l *Library) Name() string {
	if l.field == nil {
		return "(no images)"
	}
	return l.name
}

// Count returns the number of images in the library.
func (l *Library) Count() int { return len(l.paths) }

// Index returns the position of the image behind Field and Name. After a
// failed step it still points at the last image that loaded.
func (l *Library) Index() int { return l.loaded }
