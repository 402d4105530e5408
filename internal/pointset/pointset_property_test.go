package pointset

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func zipPoints(xs, ys []int) []Point {
	n := min(len(xs), len(ys))
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Pt(xs[i], ys[i])
	}
	return pts
}

func sameExtremes(a, b *PointSet) bool {
	return a.Top() == b.Top() && a.Bottom() == b.Bottom() &&
		a.Left() == b.Left() && a.Right() == b.Right()
}

// TestRemove_MatchesRecompute verifies that incrementally maintained extremes
// equal a full rescan after any sequence of removals.
func TestRemove_MatchesRecompute(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("extremes after removals equal recomputed extremes", prop.ForAll(
		func(xs, ys, removals []int, ordered bool) bool {
			s := FromPoints(zipPoints(xs, ys)...)
			for _, r := range removals {
				if s.Len() == 0 {
					break
				}
				idx := r % s.Len()
				var err error
				if ordered {
					err = s.RemoveOrdered(idx)
				} else {
					err = s.RemoveFast(idx)
				}
				if err != nil {
					return false
				}
				check := s.Clone()
				check.RecomputeBoundaries()
				if !sameExtremes(s, check) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-8, 8)),
		gen.SliceOf(gen.IntRange(-8, 8)),
		gen.SliceOf(gen.IntRange(0, 64)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestAppend_OrderIndependentExtremes verifies that extremes depend only on
// the set's contents.
func TestAppend_OrderIndependentExtremes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("reversed insertion yields the same extremes", prop.ForAll(
		func(xs, ys []int) bool {
			pts := zipPoints(xs, ys)
			fwd := FromPoints(pts...)
			rev := New()
			for i := len(pts) - 1; i >= 0; i-- {
				if err := rev.Append(pts[i]); err != nil {
					return false
				}
			}
			return sameExtremes(fwd, rev) && fwd.Bounds() == rev.Bounds()
		},
		gen.SliceOf(gen.IntRange(-5, 5)),
		gen.SliceOf(gen.IntRange(-5, 5)),
	))

	properties.TestingRun(t)
}
