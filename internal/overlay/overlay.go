// Package overlay draws labeling and contour results on top of an image.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/MeKo-Tech/pixgroup/internal/contour"
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// fillAlpha is the opacity used for blob pixels.
const fillAlpha = 0.45

// ParseColor parses a #RRGGBB or #RGB colour.
func ParseColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

// toColorful converts c, returning ok=false for a nil or fully transparent colour.
func toColorful(c color.Color) (colorful.Color, bool) {
	if c == nil {
		return colorful.Color{}, false
	}
	return colorful.MakeColor(c)
}

// RenderBlobs fills every blob's pixels and outlines its bounding box. With
// a nil colour each blob gets its own colour from a warm palette.
func RenderBlobs(img image.Image, blobs []*pointset.PointSet, c color.Color) image.Image {
	dc := gg.NewContextForImage(img)
	if len(blobs) == 0 {
		return dc.Image()
	}

	fixed, ok := toColorful(c)
	var palette []colorful.Color
	if !ok {
		palette = colorful.FastWarmPalette(len(blobs))
	}

	dc.SetLineWidth(1)
	for i, blob := range blobs {
		col := fixed
		if palette != nil {
			col = palette[i]
		}

		dc.SetRGBA(col.R, col.G, col.B, fillAlpha)
		for j := range blob.Len() {
			p := blob.At(j)
			dc.DrawRectangle(float64(p.X), float64(p.Y), 1, 1)
		}
		dc.Fill()

		b := blob.Bounds()
		dc.SetRGB(col.R, col.G, col.B)
		dc.DrawRectangle(float64(b.Min.X)+0.5, float64(b.Min.Y)+0.5, float64(b.Dx()-1), float64(b.Dy()-1))
		dc.Stroke()
	}
	return dc.Image()
}

// RenderContour strokes the traced boundary through pixel centres and marks
// its first point.
func RenderContour(img image.Image, res *contour.Result, c color.Color) image.Image {
	dc := gg.NewContextForImage(img)
	if res == nil || res.Points.Len() == 0 {
		return dc.Image()
	}

	col, ok := toColorful(c)
	if !ok {
		col = colorful.Color{G: 1}
	}
	dc.SetRGB(col.R, col.G, col.B)
	dc.SetLineWidth(1)

	for i := range res.Points.Len() {
		p := res.Points.At(i)
		dc.LineTo(float64(p.X)+0.5, float64(p.Y)+0.5)
	}
	dc.ClosePath()
	dc.Stroke()

	seed := res.Points.At(0)
	dc.DrawCircle(float64(seed.X)+0.5, float64(seed.Y)+0.5, 1.5)
	dc.Fill()
	return dc.Image()
}

// SavePNG writes img as a PNG file.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save overlay %s: %w", path, err)
	}
	return nil
}
