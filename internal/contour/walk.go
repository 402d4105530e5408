package contour

import (
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
)

// walker follows a boundary keeping non-target pixels on its left. At every
// step it looks at the pixel ahead (A) and the pixel diagonally ahead on the
// left (L).
//
// 4-connected:
//
//	A not target          turn right
//	A target, L not       step to A
//	A and L target        step to A, step to L, turn left
//
// 8-connected:
//
//	L target              step to L, turn left
//	A target              step to A
//	otherwise             turn right
type walker struct {
	target func(pointset.Point) bool
	eight  bool
}

// walk starts on seed facing dir and stops once it is back on seed facing
// dir. It returns the visited points without the closing duplicate of the
// seed, the net number of turns, the iterations used and whether the walk
// closed within limit iterations.
func (w walker) walk(seed pointset.Point, dir Direction, limit int) (*pointset.PointSet, int, int, bool) {
	pts := pointset.NewWithCapacity(min(initialCapacity, limit))
	record := pts.AppendUnchecked
	record(seed)

	p, d, turns := seed, dir, 0
	for i := 1; i <= limit; i++ {
		ahead := d.Step(p)
		diag := d.Left().Step(ahead)

		if w.eight {
			switch {
			case w.target(diag):
				p, d = diag, d.Left()
				turns--
				record(p)
			case w.target(ahead):
				p = ahead
				record(p)
			default:
				d = d.Right()
				turns++
			}
		} else {
			switch {
			case !w.target(ahead):
				d = d.Right()
				turns++
			case !w.target(diag):
				p = ahead
				record(p)
			default:
				record(ahead)
				p, d = diag, d.Left()
				turns--
				record(p)
			}
		}

		if p == seed && d == dir {
			if last := pts.Len() - 1; last > 0 && pts.At(last) == seed {
				_ = pts.RemoveFast(last)
			}
			pts.RecomputeBoundaries()
			return pts, turns, i, true
		}
	}
	pts.RecomputeBoundaries()
	return pts, turns, limit, false
}
