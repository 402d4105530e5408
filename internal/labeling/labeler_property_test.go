package labeling

import (
	"testing"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
	"github.com/MeKo-Tech/pixgroup/internal/testutil"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// floodComponents labels foreground pixels with a breadth-first flood fill
// and returns the component id of every foreground pixel and the size of
// every component.
func floodComponents(buf *pixbuf.Buffer, eight bool) (map[pointset.Point]int, []int) {
	ids := make(map[pointset.Point]int)
	var sizes []int
	offsets := []pointset.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	if eight {
		offsets = append(offsets, pointset.Point{X: 1, Y: 1}, pointset.Point{X: 1, Y: -1},
			pointset.Point{X: -1, Y: 1}, pointset.Point{X: -1, Y: -1})
	}
	fg := func(p pointset.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < buf.Width() && p.Y < buf.Height() &&
			buf.IsForeground(p.X, p.Y, pixbuf.ColorHigh, 128)
	}
	for y := range buf.Height() {
		for x := range buf.Width() {
			start := pointset.Pt(x, y)
			if _, done := ids[start]; done || !fg(start) {
				continue
			}
			id := len(sizes)
			sizes = append(sizes, 0)
			queue := []pointset.Point{start}
			ids[start] = id
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				sizes[id]++
				for _, o := range offsets {
					q := pointset.Pt(p.X+o.X, p.Y+o.Y)
					if _, done := ids[q]; done || !fg(q) {
						continue
					}
					ids[q] = id
					queue = append(queue, q)
				}
			}
		}
	}
	return ids, sizes
}

func connectivity(eight bool) pixbuf.Connectivity {
	if eight {
		return pixbuf.Eight
	}
	return pixbuf.Four
}

// TestDeriveBlobs_PartitionProperty verifies that without size filtering the
// blobs are exactly the flood-fill components.
func TestDeriveBlobs_PartitionProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("blobs partition the foreground into components", prop.ForAll(
		func(w, h int, seed uint64, density int, eight bool) bool {
			buf := testutil.RandomBuffer(w, h, seed, density)
			c := DefaultConfig()
			c.Connectivity = connectivity(eight)

			blobs, err := DeriveBlobs(buf, c)
			if err != nil {
				return false
			}
			ids, sizes := floodComponents(buf, eight)
			if len(blobs) != len(sizes) {
				return false
			}

			seen := make(map[pointset.Point]bool)
			usedIDs := make(map[int]bool)
			for _, b := range blobs {
				first, ok := ids[b.At(0)]
				if !ok || usedIDs[first] || b.Len() != sizes[first] {
					return false
				}
				usedIDs[first] = true
				for _, p := range b.Points() {
					if seen[p] || ids[p] != first {
						return false
					}
					if _, fg := ids[p]; !fg {
						return false
					}
					seen[p] = true
				}
			}
			return len(seen) == len(ids)
		},
		gen.IntRange(1, 24),
		gen.IntRange(1, 24),
		gen.UInt64(),
		gen.IntRange(0, 100),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestDeriveBlobs_IdempotenceProperty verifies that labeling the same buffer
// twice yields identical blobs.
func TestDeriveBlobs_IdempotenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("repeated labeling is identical", prop.ForAll(
		func(w, h int, seed uint64, density int, eight bool) bool {
			buf := testutil.RandomBuffer(w, h, seed, density)
			c := DefaultConfig()
			c.Connectivity = connectivity(eight)

			a, errA := DeriveBlobs(buf, c)
			b, errB := DeriveBlobs(buf, c)
			if errA != nil || errB != nil || len(a) != len(b) {
				return false
			}
			for i := range a {
				pa, pb := a[i].Points(), b[i].Points()
				if len(pa) != len(pb) {
					return false
				}
				for j := range pa {
					if pa[j] != pb[j] {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 20),
		gen.UInt64(),
		gen.IntRange(0, 100),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestDeriveBlobs_MinSizeProperty verifies that the size filter keeps exactly
// the components at or above the minimum.
func TestDeriveBlobs_MinSizeProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("kept blobs are exactly the large components", prop.ForAll(
		func(w, h int, seed uint64, density, minSize int) bool {
			buf := testutil.RandomBuffer(w, h, seed, density)
			c := DefaultConfig()
			c.Connectivity = pixbuf.Four
			c.MinSize = minSize

			blobs, err := DeriveBlobs(buf, c)
			if err != nil {
				return false
			}
			_, sizes := floodComponents(buf, false)
			want := 0
			for _, s := range sizes {
				if s >= minSize {
					want++
				}
			}
			for _, b := range blobs {
				if b.Len() < minSize {
					return false
				}
			}
			return len(blobs) == want
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 20),
		gen.UInt64(),
		gen.IntRange(20, 70),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}

// TestDeriveBlobs_BoundsProperty verifies that blob extremes match a rescan.
func TestDeriveBlobs_BoundsProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("blob extremes equal recomputed extremes", prop.ForAll(
		func(w, h int, seed uint64) bool {
			buf := testutil.RandomBuffer(w, h, seed, 55)
			blobs, err := DeriveBlobs(buf, DefaultConfig())
			if err != nil {
				return false
			}
			for _, b := range blobs {
				check := pointset.FromPoints(b.Points()...)
				if check.Top() != b.Top() || check.Bottom() != b.Bottom() ||
					check.Left() != b.Left() || check.Right() != b.Right() {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 16),
		gen.IntRange(1, 16),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
