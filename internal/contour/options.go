package contour

import (
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
)

// Source is the pixel buffer a trace reads. The tracer may add a temporary
// border, which is removed before FindContour returns. *pixbuf.Buffer
// satisfies it.
type Source interface {
	Width() int
	Height() int
	Depth() pixbuf.Depth
	Empty() bool
	Border() int
	Bounds() image.Rectangle
	AddBorder(n int, fill uint32)
	RemoveBorder()
	Background(polarity pixbuf.Color, threshold uint8) (uint32, bool)
	Foreground(polarity pixbuf.Color, threshold uint8) (pixbuf.Predicate, error)
}

// Stats summarises one trace.
type Stats struct {
	Points     int
	Turns      int
	Rotation   Rotation
	Iterations int
	Duration   time.Duration
}

// Observer receives the outcome of every trace.
type Observer interface {
	ObserveContour(stats Stats, err error)
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithObserver registers an observer, typically a metrics collector.
func WithObserver(o Observer) Option {
	return func(t *Tracer) {
		t.observer = o
	}
}
