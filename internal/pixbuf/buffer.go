// Package pixbuf provides the rectangular pixel container the pixel-group
// algorithms read from: 1, 8 or 24 bit pixels, a movable coordinate origin and
// an optional border of padding pixels around the visible area.
package pixbuf

import (
	"fmt"
	"image"
)

// Predicate reports whether the pixel at (x, y) belongs to the foreground.
// Coordinates are user coordinates relative to the buffer origin.
type Predicate func(x, y int) bool

// Buffer is a rectangular pixel buffer.
//
// User coordinates are array coordinates minus the origin, so a buffer with
// origin (2, 3) exposes its top-left pixel at (-2, -3). Pixels within the
// border can be read and written with coordinates down to -Border() and up to
// Width()+Border()-1 (before origin adjustment).
type Buffer struct {
	width  int
	height int
	depth  Depth
	border int
	origin image.Point
	stride int // pixels per stored row, including both borders
	pix    []uint8
}

// New allocates a zeroed buffer of the given size and depth.
func New(width, height int, depth Depth) (*Buffer, error) {
	if !depth.Valid() {
		return nil, &OpError{Op: "new", Err: fmt.Errorf("%w: %d", ErrUnsupportedDepth, int(depth))}
	}
	if width < 0 || height < 0 {
		return nil, &OpError{Op: "new", Err: fmt.Errorf("invalid dimensions %dx%d", width, height)}
	}
	return &Buffer{
		width:  width,
		height: height,
		depth:  depth,
		stride: width,
		pix:    make([]uint8, width*height*depth.bytesPerPixel()),
	}, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(width, height int, depth Depth) *Buffer {
	b, err := New(width, height, depth)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Buffer) Width() int   { return b.width }
func (b *Buffer) Height() int  { return b.height }
func (b *Buffer) Depth() Depth { return b.depth }
func (b *Buffer) Border() int  { return b.border }

// Empty reports whether the buffer holds no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.width == 0 || b.height == 0
}

// Origin returns the array position of user coordinate (0, 0).
func (b *Buffer) Origin() image.Point { return b.origin }

// SetOrigin moves the coordinate origin.
func (b *Buffer) SetOrigin(p image.Point) { b.origin = p }

// Bounds returns the visible area in user coordinates, border excluded.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(-b.origin.X, -b.origin.Y, b.width-b.origin.X, b.height-b.origin.Y)
}

// Readable reports whether (x, y) lies within the visible area or the border.
func (b *Buffer) Readable(x, y int) bool {
	ax, ay := x+b.origin.X, y+b.origin.Y
	return ax >= -b.border && ay >= -b.border && ax < b.width+b.border && ay < b.height+b.border
}

func (b *Buffer) offset(x, y int) int {
	ax := x + b.origin.X + b.border
	ay := y + b.origin.Y + b.border
	return (ay*b.stride + ax) * b.depth.bytesPerPixel()
}

// At returns the raw stored value at (x, y): 0/1 for 1-bit buffers, 0-255 for
// 8-bit buffers and 0xRRGGBB for 24-bit buffers. It panics outside Readable.
func (b *Buffer) At(x, y int) uint32 {
	off := b.offset(x, y)
	if b.depth == Depth24 {
		return uint32(b.pix[off])<<16 | uint32(b.pix[off+1])<<8 | uint32(b.pix[off+2])
	}
	return uint32(b.pix[off])
}

// Sample returns the colour at (x, y). It is the same value as At.
func (b *Buffer) Sample(x, y int) uint32 {
	return b.At(x, y)
}

// Set stores v at (x, y). Values are truncated to the buffer depth; any
// non-zero value sets a 1-bit pixel.
func (b *Buffer) Set(x, y int, v uint32) {
	off := b.offset(x, y)
	switch b.depth {
	case Depth1:
		if v != 0 {
			b.pix[off] = 1
		} else {
			b.pix[off] = 0
		}
	case Depth8:
		b.pix[off] = uint8(v)
	case Depth24:
		b.pix[off] = uint8(v >> 16)
		b.pix[off+1] = uint8(v >> 8)
		b.pix[off+2] = uint8(v)
	}
}

// Fill sets every visible pixel to v. The border is left untouched.
func (b *Buffer) Fill(v uint32) {
	r := b.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Set(x, y, v)
		}
	}
}

// Intensity returns the 8-bit equivalent grey value at (x, y).
func (b *Buffer) Intensity(x, y int) uint8 {
	off := b.offset(x, y)
	switch b.depth {
	case Depth1:
		if b.pix[off] != 0 {
			return 255
		}
		return 0
	case Depth24:
		return luma(b.pix[off], b.pix[off+1], b.pix[off+2])
	default:
		return b.pix[off]
	}
}

// luma uses the ITU-R 601 weights.
func luma(r, g, bl uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(bl) + 500) / 1000)
}

// IsForeground reports whether (x, y) is foreground for the given polarity and
// threshold. High polarity selects values >= threshold, low polarity values
// below it. 1-bit buffers always use a threshold of 1.
func (b *Buffer) IsForeground(x, y int, polarity Color, threshold uint8) bool {
	if b.depth == Depth1 {
		threshold = 1
	}
	var v uint8
	if b.depth == Depth24 {
		v = b.Intensity(x, y)
	} else {
		v = b.pix[b.offset(x, y)]
	}
	return (v >= threshold) == (polarity == ColorHigh)
}

// Foreground returns a predicate equivalent to IsForeground with the depth
// dispatch resolved once.
func (b *Buffer) Foreground(polarity Color, threshold uint8) (Predicate, error) {
	if !polarity.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolarity, polarity)
	}
	high := polarity == ColorHigh
	switch b.depth {
	case Depth1:
		return func(x, y int) bool {
			return (b.pix[b.offset(x, y)] != 0) == high
		}, nil
	case Depth8:
		return func(x, y int) bool {
			return (b.pix[b.offset(x, y)] >= threshold) == high
		}, nil
	case Depth24:
		return func(x, y int) bool {
			off := b.offset(x, y)
			return (luma(b.pix[off], b.pix[off+1], b.pix[off+2]) >= threshold) == high
		}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDepth, b.depth)
	}
}

// Background returns a raw value that is never foreground for the given
// polarity and threshold, and whether such a value exists.
func (b *Buffer) Background(polarity Color, threshold uint8) (uint32, bool) {
	if b.depth == Depth1 {
		if polarity == ColorHigh {
			return 0, true
		}
		return 1, true
	}
	if polarity == ColorHigh {
		if threshold == 0 {
			return 0, false
		}
		return 0, true
	}
	if b.depth == Depth24 {
		return 0xFFFFFF, true
	}
	return 255, true
}

// AddBorder surrounds the visible area with n padding pixels set to fill. A
// buffer that already has a border of at least n pixels is left unchanged.
func (b *Buffer) AddBorder(n int, fill uint32) {
	if n <= b.border {
		return
	}
	b.rebuild(n, fill)
}

// RemoveBorder drops any border, keeping the visible pixels.
func (b *Buffer) RemoveBorder() {
	if b.border == 0 {
		return
	}
	b.rebuild(0, 0)
}

func (b *Buffer) rebuild(border int, fill uint32) {
	bpp := b.depth.bytesPerPixel()
	stride := b.width + 2*border
	rows := b.height + 2*border
	pix := make([]uint8, stride*rows*bpp)

	nb := &Buffer{width: b.width, height: b.height, depth: b.depth, border: border, stride: stride, pix: pix}
	if border > 0 {
		for y := -border; y < b.height+border; y++ {
			for x := -border; x < b.width+border; x++ {
				nb.Set(x, y, fill)
			}
		}
	}
	rowBytes := b.width * bpp
	for y := 0; y < b.height; y++ {
		src := ((y+b.border)*b.stride + b.border) * bpp
		dst := ((y+border)*stride + border) * bpp
		copy(pix[dst:dst+rowBytes], b.pix[src:src+rowBytes])
	}
	b.border = border
	b.stride = stride
	b.pix = pix
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.pix = append([]uint8(nil), b.pix...)
	return &c
}
