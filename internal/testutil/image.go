package testutil

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// Foreground and Background are the runes recognised in ASCII art rows.
const (
	Foreground = '#'
	Background = '.'
)

// ParseArt converts rows of ASCII art into a buffer. '#' becomes 255 (1 for
// 1-bit buffers), '.' becomes 0 and digits 0-9 become 0, 28, ..., 252 so
// that thresholds can be exercised. Rows must have equal length.
func ParseArt(depth pixbuf.Depth, rows ...string) (*pixbuf.Buffer, error) {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	buf, err := pixbuf.New(width, len(rows), depth)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has length %d, want %d", y, len(row), width)
		}
		for x, r := range row {
			v, err := artValue(r)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", y, x, err)
			}
			if depth == pixbuf.Depth24 {
				v *= 0x010101
			}
			buf.Set(x, y, v)
		}
	}
	return buf, nil
}

func artValue(r rune) (uint32, error) {
	switch {
	case r == Foreground:
		return 255, nil
	case r == Background:
		return 0, nil
	case r >= '0' && r <= '9':
		return uint32(r-'0') * 28, nil
	default:
		return 0, fmt.Errorf("unexpected rune %q", r)
	}
}

// Art is ParseArt for tests; it fails the test on malformed input.
func Art(t *testing.T, depth pixbuf.Depth, rows ...string) *pixbuf.Buffer {
	t.Helper()
	buf, err := ParseArt(depth, rows...)
	require.NoError(t, err)
	return buf
}

// ArtImage converts ASCII art into a grey image, for writing input files.
func ArtImage(t *testing.T, rows ...string) *image.Gray {
	t.Helper()
	return grayImage(Art(t, pixbuf.Depth8, rows...))
}

func grayImage(buf *pixbuf.Buffer) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, buf.Width(), buf.Height()))
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(buf.At(x, y))})
		}
	}
	return img
}

// SaveArt writes ASCII art as an image file at path. It is the variant of
// WriteArt for callers without a *testing.T, such as godog steps.
func SaveArt(path string, rows ...string) error {
	buf, err := ParseArt(pixbuf.Depth8, rows...)
	if err != nil {
		return err
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return imaging.Save(grayImage(buf), path)
}

// RenderArt draws the visible area of buf as ASCII art using the foreground
// test for the given polarity and threshold. Useful in failure messages.
func RenderArt(buf *pixbuf.Buffer, polarity pixbuf.Color, threshold uint8) string {
	var sb strings.Builder
	r := buf.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if buf.IsForeground(x, y, polarity, threshold) {
				sb.WriteRune(Foreground)
			} else {
				sb.WriteRune(Background)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SaveImage saves an image to the specified path. The format follows the extension.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	require.NoError(t, EnsureDir(dir), "Failed to create directory %s", dir)
	require.NoError(t, imaging.Save(img, path), "Failed to save image %s", path)
}

// WriteArt renders ASCII art into an image file at dir/name and returns its path.
func WriteArt(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	SaveImage(t, ArtImage(t, rows...), path)
	return path
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	img, err := imaging.Open(path)
	require.NoError(t, err, "Failed to open image file %s", path)
	return img
}
