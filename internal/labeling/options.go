package labeling

import (
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
)

// Source is the pixel buffer a labeling pass reads. *pixbuf.Buffer satisfies it.
type Source interface {
	Width() int
	Height() int
	Depth() pixbuf.Depth
	Empty() bool
	Origin() image.Point
	SetOrigin(image.Point)
	Foreground(polarity pixbuf.Color, threshold uint8) (pixbuf.Predicate, error)
	Sample(x, y int) uint32
}

// Stats summarises one labeling call.
type Stats struct {
	Width      int
	Height     int
	Labels     int // provisional labels created
	Merges     int
	Components int
	Kept       int
	Discarded  int
	Duration   time.Duration
}

// Observer receives the outcome of every labeling call.
type Observer interface {
	ObserveLabeling(stats Stats, err error)
}

// Option configures a Labeler.
type Option func(*Labeler)

// WithLogger sets the logger used for debug output. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Labeler) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithObserver registers an observer, typically a metrics collector.
func WithObserver(o Observer) Option {
	return func(l *Labeler) {
		l.observer = o
	}
}
