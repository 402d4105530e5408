package pixbuf

import (
	"fmt"
	"strings"
)

// Depth is the number of bits used to store one pixel.
type Depth int

const (
	Depth1  Depth = 1
	Depth8  Depth = 8
	Depth24 Depth = 24
)

// Valid reports whether d is one of the supported storage depths.
func (d Depth) Valid() bool {
	return d == Depth1 || d == Depth8 || d == Depth24
}

// bytesPerPixel returns the storage width of one pixel. 1-bit pixels occupy a full byte.
func (d Depth) bytesPerPixel() int {
	if d == Depth24 {
		return 3
	}
	return 1
}

func (d Depth) String() string {
	return fmt.Sprintf("%d-bit", int(d))
}

// ParseDepth converts a bit count into a Depth.
func ParseDepth(bits int) (Depth, error) {
	d := Depth(bits)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d (must be 1, 8 or 24)", ErrUnsupportedDepth, bits)
	}
	return d, nil
}

// Color classifies a pixel value as belonging to the high or the low side of a
// threshold. It doubles as the polarity selecting which side is foreground and
// as the colour tag carried by point sets.
type Color int

const (
	ColorUndefined Color = iota
	ColorHigh
	ColorLow
)

func (c Color) String() string {
	switch c {
	case ColorHigh:
		return "high"
	case ColorLow:
		return "low"
	default:
		return "undefined"
	}
}

// Opposite returns the other polarity. ColorUndefined stays undefined.
func (c Color) Opposite() Color {
	switch c {
	case ColorHigh:
		return ColorLow
	case ColorLow:
		return ColorHigh
	default:
		return ColorUndefined
	}
}

// Valid reports whether c can be used as a polarity.
func (c Color) Valid() bool {
	return c == ColorHigh || c == ColorLow
}

// ParseColor parses "high" or "low" (case-insensitive).
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ColorHigh, nil
	case "low":
		return ColorLow, nil
	default:
		return ColorUndefined, fmt.Errorf("%w: %q (must be high or low)", ErrInvalidPolarity, s)
	}
}

// Connectivity is the neighbour adjacency rule used when grouping pixels.
type Connectivity int

const (
	Four  Connectivity = 4
	Eight Connectivity = 8
)

// Valid reports whether c is 4 or 8.
func (c Connectivity) Valid() bool {
	return c == Four || c == Eight
}

func (c Connectivity) String() string {
	return fmt.Sprintf("%d-connected", int(c))
}

// ParseConnectivity converts 4 or 8 into a Connectivity.
func ParseConnectivity(n int) (Connectivity, error) {
	c := Connectivity(n)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d (must be 4 or 8)", ErrInvalidConnectivity, n)
	}
	return c, nil
}
