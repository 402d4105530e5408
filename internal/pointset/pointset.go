// Package pointset stores groups of pixel coordinates together with their
// bounding extremes and, optionally, the colour sampled at each coordinate.
package pointset

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrColorMode       = errors.New("cannot mix coloured and uncoloured points")
	ErrEmptySet        = errors.New("point set is empty")
	ErrColorsAttached  = errors.New("colours already attached")
)

// Point is an integer pixel coordinate.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Sampler is the colour source used by AttachColors.
type Sampler interface {
	Sample(x, y int) uint32
}

// PointSet is an ordered, growable list of points. Points keep their
// insertion order. The four extremes are kept current by Append, Insert and
// the Remove methods; AppendUnchecked skips that bookkeeping and must be
// followed by RecomputeBoundaries.
//
// Ties between extremes are broken on the other axis so that the extremes only
// depend on the set's contents: Top is the smallest Y (then smallest X),
// Bottom the largest Y (then largest X), Left the smallest X (then smallest Y)
// and Right the largest X (then largest Y).
type PointSet struct {
	pts    []Point
	colors []uint32
	// colored is set once the first coloured point is stored or colours are attached.
	colored bool
	color   pixbuf.Color

	top, bottom, left, right Point
}

// New returns an empty set.
func New() *PointSet {
	s := &PointSet{}
	s.resetBoundaries()
	return s
}

// NewWithCapacity returns an empty set with room for n points.
func NewWithCapacity(n int) *PointSet {
	s := New()
	if n > 0 {
		s.pts = make([]Point, 0, n)
	}
	return s
}

// FromPoints builds a set holding pts in order.
func FromPoints(pts ...Point) *PointSet {
	s := NewWithCapacity(len(pts))
	for _, p := range pts {
		s.AppendUnchecked(p)
	}
	s.RecomputeBoundaries()
	return s
}

func (s *PointSet) resetBoundaries() {
	s.top = Point{X: math.MaxInt, Y: math.MaxInt}
	s.bottom = Point{X: math.MinInt, Y: math.MinInt}
	s.left = Point{X: math.MaxInt, Y: math.MaxInt}
	s.right = Point{X: math.MinInt, Y: math.MinInt}
}

func moreTop(p, q Point) bool    { return p.Y < q.Y || (p.Y == q.Y && p.X < q.X) }
func moreBottom(p, q Point) bool { return p.Y > q.Y || (p.Y == q.Y && p.X > q.X) }
func moreLeft(p, q Point) bool   { return p.X < q.X || (p.X == q.X && p.Y < q.Y) }
func moreRight(p, q Point) bool  { return p.X > q.X || (p.X == q.X && p.Y > q.Y) }

func (s *PointSet) extend(p Point) {
	if moreTop(p, s.top) {
		s.top = p
	}
	if moreBottom(p, s.bottom) {
		s.bottom = p
	}
	if moreLeft(p, s.left) {
		s.left = p
	}
	if moreRight(p, s.right) {
		s.right = p
	}
}

// Len returns the number of points.
func (s *PointSet) Len() int { return len(s.pts) }

// At returns the i-th point. It panics when i is out of range.
func (s *PointSet) At(i int) Point { return s.pts[i] }

// Points returns a copy of the points in insertion order.
func (s *PointSet) Points() []Point {
	return append([]Point(nil), s.pts...)
}

// HasColors reports whether a colour is stored for every point.
func (s *PointSet) HasColors() bool { return s.colored }

// Colors returns a copy of the per-point colours, or nil when none are attached.
func (s *PointSet) Colors() []uint32 {
	if !s.colored {
		return nil
	}
	return append([]uint32(nil), s.colors...)
}

// ColorAt returns the colour stored for the i-th point.
func (s *PointSet) ColorAt(i int) (uint32, error) {
	if !s.colored {
		return 0, ErrColorMode
	}
	if i < 0 || i >= len(s.colors) {
		return 0, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(s.colors))
	}
	return s.colors[i], nil
}

// Color returns the colour classification tag.
func (s *PointSet) Color() pixbuf.Color { return s.color }

// SetColor sets the colour classification tag.
func (s *PointSet) SetColor(c pixbuf.Color) { s.color = c }

func (s *PointSet) Top() Point    { return s.top }
func (s *PointSet) Bottom() Point { return s.bottom }
func (s *PointSet) Left() Point   { return s.left }
func (s *PointSet) Right() Point  { return s.right }

// Bounds returns the enclosing rectangle with an exclusive maximum. An empty
// set yields the zero rectangle.
func (s *PointSet) Bounds() image.Rectangle {
	if len(s.pts) == 0 {
		return image.Rectangle{}
	}
	return image.Rect(s.left.X, s.top.Y, s.right.X+1, s.bottom.Y+1)
}

// Centroid returns the mean position of the points.
func (s *PointSet) Centroid() (float64, float64, error) {
	if len(s.pts) == 0 {
		return 0, 0, ErrEmptySet
	}
	xs := make([]float64, len(s.pts))
	ys := make([]float64, len(s.pts))
	for i, p := range s.pts {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}
	return stat.Mean(xs, nil), stat.Mean(ys, nil), nil
}

// Append adds p at the end and updates the extremes.
func (s *PointSet) Append(p Point) error {
	if s.colored {
		return ErrColorMode
	}
	s.pts = append(s.pts, p)
	s.extend(p)
	return nil
}

// AppendWithColor adds p and its colour. The set must be empty or already
// hold colours.
func (s *PointSet) AppendWithColor(p Point, c uint32) error {
	if !s.colored && len(s.pts) > 0 {
		return ErrColorMode
	}
	s.colored = true
	s.pts = append(s.pts, p)
	s.colors = append(s.colors, c)
	s.extend(p)
	return nil
}

// Insert places p at index, shifting later points up. index may equal Len.
func (s *PointSet) Insert(index int, p Point) error {
	if s.colored {
		return ErrColorMode
	}
	if index < 0 || index > len(s.pts) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.pts))
	}
	s.pts = append(s.pts, Point{})
	copy(s.pts[index+1:], s.pts[index:])
	s.pts[index] = p
	s.extend(p)
	return nil
}

// Grow ensures room for n more points without reallocating.
func (s *PointSet) Grow(n int) {
	if n <= 0 || cap(s.pts)-len(s.pts) >= n {
		return
	}
	grown := make([]Point, len(s.pts), len(s.pts)+n)
	copy(grown, s.pts)
	s.pts = grown
}

// AppendUnchecked adds p to an uncoloured set without maintaining the
// extremes. Call RecomputeBoundaries once the bulk insertion is done. It
// panics on a coloured set, which would otherwise lose the one colour per
// point pairing.
func (s *PointSet) AppendUnchecked(p Point) {
	if s.colored {
		panic("pointset: AppendUnchecked on a coloured set")
	}
	s.pts = append(s.pts, p)
}

// RemoveFast removes the point at index by moving the last point into its
// slot. Order is not preserved.
func (s *PointSet) RemoveFast(index int) error {
	if index < 0 || index >= len(s.pts) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.pts))
	}
	removed := s.pts[index]
	last := len(s.pts) - 1
	s.pts[index] = s.pts[last]
	s.pts = s.pts[:last]
	if s.colored {
		s.colors[index] = s.colors[last]
		s.colors = s.colors[:last]
	}
	s.afterRemove(removed)
	return nil
}

// RemoveOrdered removes the point at index and shifts later points down.
func (s *PointSet) RemoveOrdered(index int) error {
	if index < 0 || index >= len(s.pts) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.pts))
	}
	removed := s.pts[index]
	s.pts = append(s.pts[:index], s.pts[index+1:]...)
	if s.colored {
		s.colors = append(s.colors[:index], s.colors[index+1:]...)
	}
	s.afterRemove(removed)
	return nil
}

// afterRemove rescans only the axes whose cached extreme was the removed point.
func (s *PointSet) afterRemove(removed Point) {
	if len(s.pts) == 0 {
		s.resetBoundaries()
		return
	}
	if removed == s.top {
		s.top = s.scan(moreTop)
	}
	if removed == s.bottom {
		s.bottom = s.scan(moreBottom)
	}
	if removed == s.left {
		s.left = s.scan(moreLeft)
	}
	if removed == s.right {
		s.right = s.scan(moreRight)
	}
}

func (s *PointSet) scan(better func(p, q Point) bool) Point {
	best := s.pts[0]
	for _, p := range s.pts[1:] {
		if better(p, best) {
			best = p
		}
	}
	return best
}

// RecomputeBoundaries rescans every point to rebuild the four extremes.
func (s *PointSet) RecomputeBoundaries() {
	s.resetBoundaries()
	for _, p := range s.pts {
		s.extend(p)
	}
}

// Contains returns the index of the first point equal to p.
func (s *PointSet) Contains(p Point) (int, bool) {
	for i, q := range s.pts {
		if q == p {
			return i, true
		}
	}
	return -1, false
}

// AttachColors samples src at every point and stores the result alongside.
func (s *PointSet) AttachColors(src Sampler) error {
	if len(s.pts) == 0 {
		return ErrEmptySet
	}
	if s.colored {
		return ErrColorsAttached
	}
	s.colors = make([]uint32, len(s.pts))
	for i, p := range s.pts {
		s.colors[i] = src.Sample(p.X, p.Y)
	}
	s.colored = true
	return nil
}

// Clone returns a deep copy.
func (s *PointSet) Clone() *PointSet {
	c := *s
	c.pts = append([]Point(nil), s.pts...)
	if s.colors != nil {
		c.colors = append([]uint32(nil), s.colors...)
	}
	return &c
}
