// Package labeling groups the foreground pixels of a buffer into connected
// components ("blobs") with a single raster scan.
package labeling

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pixgroup/internal/mempool"
	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
)

var (
	// ErrMaskTooLarge is returned when a mask exceeds the source in either dimension.
	ErrMaskTooLarge = errors.New("mask larger than source")
	// ErrInvalidSizeRange is returned for a negative MaxSize or one below MinSize.
	ErrInvalidSizeRange = errors.New("invalid blob size range")
)

const noLabel int32 = -1

// Config selects which pixels are foreground and which components are kept.
type Config struct {
	Polarity     pixbuf.Color
	Threshold    uint8
	Connectivity pixbuf.Connectivity
	// MinSize discards smaller components. Values below 1 are treated as 1.
	MinSize int
	// MaxSize discards larger components. Zero means unlimited.
	MaxSize int
	// AttachColors samples the source colour of every blob pixel.
	AttachColors bool
}

// DefaultConfig returns high polarity, threshold 128, 8-connectivity and no
// size filtering.
func DefaultConfig() Config {
	return Config{
		Polarity:     pixbuf.ColorHigh,
		Threshold:    128,
		Connectivity: pixbuf.Eight,
		MinSize:      1,
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
	if c.MaxSize < 0 || (c.MaxSize > 0 && c.MaxSize < c.MinSize) {
		return fmt.Errorf("%w: min %d, max %d", ErrInvalidSizeRange, c.MinSize, c.MaxSize)
	}
	return nil
}

// Labeler runs labeling passes with a fixed configuration. It holds no
// per-call state and may be shared between goroutines as long as each call
// uses its own source.
type Labeler struct {
	cfg      Config
	logger   *slog.Logger
	observer Observer
}

// New validates cfg and returns a Labeler.
func New(cfg Config, opts ...Option) (*Labeler, error) {
	if cfg.MinSize < 1 {
		cfg.MinSize = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, pixbuf.WrapOp("new labeler", err)
	}
	l := &Labeler{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Config returns the effective configuration.
func (l *Labeler) Config() Config { return l.cfg }

// DeriveBlobs is a convenience wrapper around New and (*Labeler).DeriveBlobs.
func DeriveBlobs(src Source, cfg Config) ([]*pointset.PointSet, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return l.DeriveBlobs(src)
}

// DeriveBlobs returns every connected component of foreground pixels whose
// size lies within the configured range. Blobs are ordered by their first
// pixel in raster order and tagged with the configured polarity. The source
// origin is reset to (0, 0) during the scan and restored before returning;
// output points use the caller's coordinates.
func (l *Labeler) DeriveBlobs(src Source) ([]*pointset.PointSet, error) {
	return l.derive("derive blobs", src, nil)
}

// DeriveBlobsMasked is like DeriveBlobs but only considers pixels where mask
// has a non-zero intensity at the same array position. Pixels beyond the mask
// extent are ignored.
func (l *Labeler) DeriveBlobsMasked(src, mask Source) ([]*pointset.PointSet, error) {
	if mask == nil || mask.Empty() {
		return nil, pixbuf.WrapOp("derive blobs masked", fmt.Errorf("mask: %w", pixbuf.ErrEmptySource))
	}
	return l.derive("derive blobs masked", src, mask)
}

func (l *Labeler) derive(op string, src, mask Source) (blobs []*pointset.PointSet, err error) {
	start := time.Now()
	stats := Stats{}
	defer func() {
		stats.Duration = time.Since(start)
		if l.observer != nil {
			l.observer.ObserveLabeling(stats, err)
		}
	}()

	if err = l.validateSource(src, mask); err != nil {
		return nil, pixbuf.WrapOp(op, err)
	}
	stats.Width, stats.Height = src.Width(), src.Height()

	l.logger.Debug("Deriving blobs",
		"op", op,
		"width", stats.Width,
		"height", stats.Height,
		"depth", src.Depth().String(),
		"polarity", l.cfg.Polarity.String(),
		"threshold", l.cfg.Threshold,
		"connectivity", int(l.cfg.Connectivity))

	origin := src.Origin()
	src.SetOrigin(image.Point{})
	defer src.SetOrigin(origin)
	if mask != nil {
		maskOrigin := mask.Origin()
		mask.SetOrigin(image.Point{})
		defer mask.SetOrigin(maskOrigin)
	}

	fg, err := l.foreground(src, mask)
	if err != nil {
		return nil, pixbuf.WrapOp(op, err)
	}

	w, h := stats.Width, stats.Height
	next := mempool.GetInt32(w*h, noLabel)
	defer mempool.PutInt32(next)

	table := scan(fg, w, h, l.cfg.Connectivity == pixbuf.Eight, next)
	stats.Labels = table.len()
	stats.Merges = table.merges

	blobs = l.collect(table, w, origin, &stats)

	l.logger.Debug("Blobs derived",
		"op", op,
		"labels", stats.Labels,
		"merges", stats.Merges,
		"components", stats.Components,
		"kept", stats.Kept,
		"discarded", stats.Discarded)

	if l.cfg.AttachColors && len(blobs) > 0 {
		// Colours are sampled with the caller's origin, matching the output points.
		src.SetOrigin(origin)
		for _, b := range blobs {
			if err = b.AttachColors(src); err != nil {
				return nil, pixbuf.WrapOp(op, err)
			}
		}
	}
	return blobs, nil
}

func (l *Labeler) validateSource(src, mask Source) error {
	if src == nil || src.Empty() {
		return pixbuf.ErrEmptySource
	}
	if d := src.Depth(); d != pixbuf.Depth1 && d != pixbuf.Depth8 {
		return fmt.Errorf("%w: %v", pixbuf.ErrUnsupportedDepth, d)
	}
	if mask != nil && (mask.Width() > src.Width() || mask.Height() > src.Height()) {
		return fmt.Errorf("%w: mask %dx%d, source %dx%d",
			ErrMaskTooLarge, mask.Width(), mask.Height(), src.Width(), src.Height())
	}
	return nil
}

func (l *Labeler) foreground(src, mask Source) (pixbuf.Predicate, error) {
	fg, err := src.Foreground(l.cfg.Polarity, l.cfg.Threshold)
	if err != nil {
		return nil, err
	}
	if mask == nil {
		return fg, nil
	}
	enabled, err := mask.Foreground(pixbuf.ColorHigh, 1)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	mw, mh := mask.Width(), mask.Height()
	return func(x, y int) bool {
		return x < mw && y < mh && enabled(x, y) && fg(x, y)
	}, nil
}

// scan labels every foreground pixel of a w×h raster. The row arrays are
// padded by one cell on each side so that pixel x lives at index x+1.
func scan(fg pixbuf.Predicate, w, h int, eight bool, next []int32) *labelTable {
	rows := mempool.GetInt32Multiple([]int{w + 2, w + 2}, noLabel)
	defer mempool.PutInt32Multiple(rows)
	prev, cur := rows[0], rows[1]

	table := newLabelTable(next, 64)
	resolve := func(l int32) int32 {
		if l == noLabel {
			return noLabel
		}
		return table.find(l)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg(x, y) {
				cur[x+1] = noLabel
				continue
			}
			pix := int32(y*w + x)

			west := resolve(cur[x])
			north := resolve(prev[x+1])
			var nw, ne int32 = noLabel, noLabel
			if eight {
				nw = resolve(prev[x])
				ne = resolve(prev[x+2])
			}

			l := west
			if l == noLabel {
				for _, cand := range [...]int32{nw, north, ne} {
					if cand != noLabel {
						l = cand
						break
					}
				}
			}
			if l == noLabel {
				l = table.newLabel(pix)
			} else {
				table.appendPixel(l, pix)
			}

			// Roots may change as sets are joined, so re-resolve each neighbour.
			for _, o := range [...]int32{north, nw, ne} {
				if o != noLabel {
					l = table.union(table.find(l), table.find(o))
				}
			}
			cur[x+1] = l
		}
		prev, cur = cur, prev
	}
	return table
}

// collect flattens every surviving component into a point set. Components are
// visited in order of their lowest label id, which is their first pixel in
// raster order.
func (l *Labeler) collect(table *labelTable, w int, origin image.Point, stats *Stats) []*pointset.PointSet {
	var blobs []*pointset.PointSet
	seen := make([]bool, table.len())
	for id := int32(0); id < int32(table.len()); id++ {
		root := table.find(id)
		if seen[root] {
			continue
		}
		seen[root] = true
		stats.Components++

		n := int(table.count[root])
		if n < l.cfg.MinSize || (l.cfg.MaxSize > 0 && n > l.cfg.MaxSize) {
			stats.Discarded++
			continue
		}

		ps := pointset.NewWithCapacity(n)
		table.chain(root, func(pix int32) {
			ax, ay := int(pix)%w, int(pix)/w
			ps.AppendUnchecked(pointset.Pt(ax-origin.X, ay-origin.Y))
		})
		ps.RecomputeBoundaries()
		ps.SetColor(l.cfg.Polarity)
		blobs = append(blobs, ps)
		stats.Kept++
	}
	return blobs
}
