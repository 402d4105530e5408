// Package contour follows the boundary of a thresholded region from a seed
// found along a search ray, recording the boundary pixels in order together
// with the net rotation of the walk.
package contour

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
)

var (
	// ErrInvalidDirection is returned for a search direction that is not cardinal.
	ErrInvalidDirection = errors.New("invalid search direction")
	// ErrNoContourFound is returned when the seed scan leaves the image.
	ErrNoContourFound = errors.New("no contour found")
	// ErrTraceLimit is returned when a trace does not close within its step budget.
	ErrTraceLimit = errors.New("contour trace did not close")
)

const initialCapacity = 1000

// Config selects the traced region.
type Config struct {
	Polarity     pixbuf.Color
	Threshold    uint8
	Connectivity pixbuf.Connectivity
}

// DefaultConfig traces 8-connected high regions at threshold 128.
func DefaultConfig() Config {
	return Config{
		Polarity:     pixbuf.ColorHigh,
		Threshold:    128,
		Connectivity: pixbuf.Eight,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Polarity.Valid() {
		return fmt.Errorf("%w: %v", pixbuf.ErrInvalidPolarity, c.Polarity)
	}
	if !c.Connectivity.Valid() {
		return fmt.Errorf("%w: %d", pixbuf.ErrInvalidConnectivity, int(c.Connectivity))
	}
	return nil
}

// Result is a closed boundary.
type Result struct {
	// Points holds the boundary in walking order, starting at the seed. Its
	// colour tag is Surrounded.
	Points     *pointset.PointSet
	Rotation   Rotation
	Surrounded pixbuf.Color
	// Turns is the net number of 90° turns; right turns count +1.
	Turns        int
	Connectivity pixbuf.Connectivity
}

// Tracer follows region boundaries with a fixed configuration.
type Tracer struct {
	cfg      Config
	logger   *slog.Logger
	observer Observer
}

// New validates cfg and returns a Tracer.
func New(cfg Config, opts ...Option) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, pixbuf.WrapOp("new tracer", err)
	}
	t := &Tracer{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Config returns the tracer configuration.
func (t *Tracer) Config() Config { return t.cfg }

// FindContour is a convenience wrapper around New and (*Tracer).FindContour.
func FindContour(src Source, start pointset.Point, dir Direction, cfg Config) (*Result, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return t.FindContour(src, start, dir)
}

// FindContour scans from start towards dir for the first target pixel whose
// predecessor on the ray is not a target, then walks the boundary of that
// region with the non-target side on its left until it is back on the seed
// facing the initial direction.
//
// A net rotation of +4 means the walk went clockwise around the target
// region, which therefore is the surrounded colour. -4 means the walk went
// anticlockwise around a hole, so the opposite colour is surrounded. Any other
// value yields a valid, unclassified result.
func (t *Tracer) FindContour(src Source, start pointset.Point, dir Direction) (res *Result, err error) {
	begin := time.Now()
	stats := Stats{}
	defer func() {
		stats.Duration = time.Since(begin)
		if t.observer != nil {
			t.observer.ObserveContour(stats, err)
		}
	}()

	if err = t.validateSource(src, dir); err != nil {
		return nil, pixbuf.WrapOp("find contour", err)
	}

	fill, clean := src.Background(t.cfg.Polarity, t.cfg.Threshold)
	if src.Border() == 0 {
		src.AddBorder(1, fill)
		defer src.RemoveBorder()
	} else {
		clean = false
	}

	fg, err := src.Foreground(t.cfg.Polarity, t.cfg.Threshold)
	if err != nil {
		return nil, pixbuf.WrapOp("find contour", err)
	}
	bounds := src.Bounds()
	target := func(p pointset.Point) bool {
		return fg(p.X, p.Y)
	}
	if !clean {
		// The border may hold target pixels; confine the walk to the visible area.
		target = func(p pointset.Point) bool {
			return inside(p, bounds) && fg(p.X, p.Y)
		}
	}

	seed, found := findSeed(target, bounds, start, dir)
	if !found {
		return nil, pixbuf.WrapOp("find contour",
			fmt.Errorf("%w: from %v towards %v", ErrNoContourFound, start, dir))
	}

	t.logger.Debug("Tracing contour",
		"start", start.String(),
		"direction", dir.String(),
		"seed", seed.String(),
		"polarity", t.cfg.Polarity.String(),
		"connectivity", int(t.cfg.Connectivity))

	limit := 4*(bounds.Dx()+2)*(bounds.Dy()+2) + 8
	w := walker{target: target, eight: t.cfg.Connectivity == pixbuf.Eight}
	pts, turns, iterations, closed := w.walk(seed, dir.Left(), limit)
	stats.Iterations = iterations
	stats.Turns = turns
	stats.Points = pts.Len()
	if !closed {
		return nil, pixbuf.WrapOp("find contour",
			fmt.Errorf("%w: %d iterations from seed %v", ErrTraceLimit, iterations, seed))
	}

	res = &Result{
		Points:       pts,
		Turns:        turns,
		Connectivity: t.cfg.Connectivity,
	}
	switch turns {
	case 4:
		res.Rotation = Clockwise
		res.Surrounded = t.cfg.Polarity
	case -4:
		res.Rotation = Anticlockwise
		res.Surrounded = t.cfg.Polarity.Opposite()
	default:
		res.Rotation = Unclassified
		res.Surrounded = pixbuf.ColorUndefined
		t.logger.Warn("Contour closed with unexpected rotation",
			"seed", seed.String(),
			"turns", turns,
			"points", pts.Len())
	}
	pts.SetColor(res.Surrounded)
	stats.Rotation = res.Rotation

	t.logger.Debug("Contour traced",
		"points", pts.Len(),
		"turns", turns,
		"rotation", res.Rotation.String(),
		"surrounded", res.Surrounded.String(),
		"iterations", iterations)
	return res, nil
}

func (t *Tracer) validateSource(src Source, dir Direction) error {
	if src == nil || src.Empty() {
		return pixbuf.ErrEmptySource
	}
	if d := src.Depth(); d != pixbuf.Depth1 && d != pixbuf.Depth8 {
		return fmt.Errorf("%w: %v", pixbuf.ErrUnsupportedDepth, d)
	}
	if !dir.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidDirection, dir)
	}
	return nil
}

func inside(p pointset.Point, r image.Rectangle) bool {
	return p.X >= r.Min.X && p.Y >= r.Min.Y && p.X < r.Max.X && p.Y < r.Max.Y
}

// findSeed walks from start towards dir and returns the first target pixel
// whose predecessor is not a target. The predecessor of start lies one step
// behind it and may be in the border.
func findSeed(target func(pointset.Point) bool, bounds image.Rectangle, start pointset.Point, dir Direction) (pointset.Point, bool) {
	if !inside(start, bounds) {
		return pointset.Point{}, false
	}
	prev := target(dir.Opposite().Step(start))
	for p := start; inside(p, bounds); p = dir.Step(p) {
		cur := target(p)
		if cur && !prev {
			return p, true
		}
		prev = cur
	}
	return pointset.Point{}, false
}
