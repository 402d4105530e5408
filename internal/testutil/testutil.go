// Package testutil builds pixel buffers and image files for tests.
package testutil

import (
	"math/rand/v2"
	"os"
	"testing"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
)

// CreateTempDir returns a directory removed when t ends.
func CreateTempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// EnsureDir creates path and its parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o750)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// RandomBuffer builds a w×h 8-bit buffer where roughly density percent of the
// pixels are 255 and the rest 0. The same seed yields the same buffer.
func RandomBuffer(w, h int, seed uint64, density int) *pixbuf.Buffer {
	rng := rand.New(rand.NewPCG(seed, 0x5eed))
	buf := pixbuf.MustNew(w, h, pixbuf.Depth8)
	for y := range h {
		for x := range w {
			if rng.IntN(100) < density {
				buf.Set(x, y, 255)
			}
		}
	}
	return buf
}
