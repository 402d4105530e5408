// Package report renders labeling and contour results for the CLI.
package report

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/pixgroup/internal/contour"
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
	"gonum.org/v1/gonum/stat"
)

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

func boxOf(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Blob summarises one connected component.
type Blob struct {
	Index    int              `json:"index" yaml:"index"`
	Size     int              `json:"size" yaml:"size"`
	Color    string           `json:"color" yaml:"color"`
	Box      Box              `json:"box" yaml:"box"`
	Centroid [2]float64       `json:"centroid" yaml:"centroid"`
	Points   []pointset.Point `json:"points,omitempty" yaml:"points,omitempty"`
	Samples  []uint32         `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// BlobResult holds the blobs found in one image.
type BlobResult struct {
	File   string `json:"file" yaml:"file"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Blobs  []Blob `json:"blobs" yaml:"blobs"`
}

// NewBlobResult summarises blobs. Pixel lists are included when withPoints
// is set.
func NewBlobResult(file string, width, height int, blobs []*pointset.PointSet, withPoints bool) BlobResult {
	res := BlobResult{File: file, Width: width, Height: height, Blobs: make([]Blob, 0, len(blobs))}
	for i, ps := range blobs {
		b := Blob{
			Index: i,
			Size:  ps.Len(),
			Color: ps.Color().String(),
			Box:   boxOf(ps.Bounds()),
		}
		if cx, cy, err := ps.Centroid(); err == nil {
			b.Centroid = [2]float64{cx, cy}
		}
		if withPoints {
			b.Points = ps.Points()
			if ps.HasColors() {
				b.Samples = ps.Colors()
			}
		}
		res.Blobs = append(res.Blobs, b)
	}
	return res
}

// Sizes returns the pixel count of every blob.
func (r BlobResult) Sizes() []float64 {
	sizes := make([]float64, len(r.Blobs))
	for i, b := range r.Blobs {
		sizes[i] = float64(b.Size)
	}
	return sizes
}

// SizeStats returns the mean and standard deviation of the blob sizes.
func (r BlobResult) SizeStats() (mean, stddev float64) {
	sizes := r.Sizes()
	switch len(sizes) {
	case 0:
		return 0, 0
	case 1:
		return sizes[0], 0
	}
	return stat.MeanStdDev(sizes, nil)
}

// ContourResult describes one traced boundary.
type ContourResult struct {
	File         string           `json:"file" yaml:"file"`
	Start        pointset.Point   `json:"start" yaml:"start"`
	Direction    string           `json:"direction" yaml:"direction"`
	Rotation     string           `json:"rotation" yaml:"rotation"`
	Surrounded   string           `json:"surrounded" yaml:"surrounded"`
	Turns        int              `json:"turns" yaml:"turns"`
	Connectivity int              `json:"connectivity" yaml:"connectivity"`
	Length       int              `json:"length" yaml:"length"`
	Box          Box              `json:"box" yaml:"box"`
	Points       []pointset.Point `json:"points" yaml:"points"`
}

// NewContourResult summarises a trace started at start towards dir.
func NewContourResult(file string, start pointset.Point, dir contour.Direction, res *contour.Result) ContourResult {
	return ContourResult{
		File:         file,
		Start:        start,
		Direction:    dir.String(),
		Rotation:     res.Rotation.String(),
		Surrounded:   res.Surrounded.String(),
		Turns:        res.Turns,
		Connectivity: int(res.Connectivity),
		Length:       res.Points.Len(),
		Box:          boxOf(res.Points.Bounds()),
		Points:       res.Points.Points(),
	}
}

func (b Box) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", b.W, b.H, b.X, b.Y)
}
