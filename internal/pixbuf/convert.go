package pixbuf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists the file extensions Load accepts.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// FromImage converts img into a buffer of the requested depth. For 1-bit
// buffers, pixels whose grey value is at or above level become 1.
func FromImage(img image.Image, depth Depth, level uint8) (*Buffer, error) {
	if img == nil {
		return nil, &OpError{Op: "convert", Err: errors.New("input image is nil")}
	}
	r := img.Bounds()
	buf, err := New(r.Dx(), r.Dy(), depth)
	if err != nil {
		return nil, err
	}
	if buf.Empty() {
		return buf, nil
	}

	switch depth {
	case Depth1:
		bin := segment.Threshold(img, level)
		copyGray(buf, bin, func(v uint8) uint32 {
			if v != 0 {
				return 1
			}
			return 0
		})
	case Depth8:
		gray := effect.Grayscale(img)
		copyGray(buf, gray, func(v uint8) uint32 { return uint32(v) })
	case Depth24:
		nrgba := imaging.Clone(img)
		nb := nrgba.Bounds()
		for y := 0; y < buf.height; y++ {
			for x := 0; x < buf.width; x++ {
				c := nrgba.NRGBAAt(nb.Min.X+x, nb.Min.Y+y)
				buf.Set(x, y, uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B))
			}
		}
	}
	return buf, nil
}

// copyGray reads g through the grey colour model, so both *image.Gray and the
// grey-valued *image.RGBA that effect.Grayscale returns are accepted.
func copyGray(buf *Buffer, g image.Image, conv func(uint8) uint32) {
	gb := g.Bounds()
	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			v := color.GrayModel.Convert(g.At(gb.Min.X+x, gb.Min.Y+y)).(color.Gray).Y
			buf.Set(x, y, conv(v))
		}
	}
}

// Load decodes the image at path and converts it with FromImage.
func Load(path string, depth Depth, level uint8) (*Buffer, error) {
	if path == "" {
		return nil, &OpError{Op: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		return nil, &OpError{Op: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &OpError{Op: "load", Err: err}
	}
	return FromImage(img, depth, level)
}

// ToImage renders the visible area into a standard image with its top-left
// pixel at (0, 0). 1-bit pixels map to black and white.
func (b *Buffer) ToImage() image.Image {
	if b.depth == Depth24 {
		out := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				v := b.At(x-b.origin.X, y-b.origin.Y)
				out.SetNRGBA(x, y, color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff})
			}
		}
		return out
	}
	out := image.NewGray(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			out.SetGray(x, y, color.Gray{Y: b.Intensity(x-b.origin.X, y-b.origin.Y)})
		}
	}
	return out
}
