package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for an output format other than text, json, csv or yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "csv", "yaml"}

// FormatBlobs writes the blob results in the given format. An empty format
// means text.
func FormatBlobs(w io.Writer, results []BlobResult, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		return blobsText(w, results)
	case "json":
		return writeJSON(w, struct {
			Images []BlobResult `json:"images"`
		}{results})
	case "yaml":
		return writeYAML(w, struct {
			Images []BlobResult `yaml:"images"`
		}{results})
	case "csv":
		return blobsCSV(w, results)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// FormatContour writes a single contour result in the given format.
func FormatContour(w io.Writer, result ContourResult, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		return contourText(w, result)
	case "json":
		return writeJSON(w, result)
	case "yaml":
		return writeYAML(w, result)
	case "csv":
		return contourCSV(w, result)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func blobsText(w io.Writer, results []BlobResult) error {
	var out strings.Builder
	for i, res := range results {
		if i > 0 {
			out.WriteString("\n")
		}
		mean, sd := res.SizeStats()
		fmt.Fprintf(&out, "# %s (%dx%d)\n", res.File, res.Width, res.Height)
		fmt.Fprintf(&out, "blobs: %d, mean size %.1f, stddev %.1f\n", len(res.Blobs), mean, sd)
		for _, b := range res.Blobs {
			fmt.Fprintf(&out, "%4d  size=%-6d box=%-16s centroid=(%.2f,%.2f) color=%s\n",
				b.Index, b.Size, b.Box, b.Centroid[0], b.Centroid[1], b.Color)
		}
	}
	_, err := io.WriteString(w, out.String())
	return err
}

func blobsCSV(w io.Writer, results []BlobResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"file", "blob_index", "size", "x", "y", "width", "height", "centroid_x", "centroid_y", "color",
	}); err != nil {
		return err
	}
	for _, res := range results {
		for _, b := range res.Blobs {
			if err := writer.Write([]string{
				res.File,
				strconv.Itoa(b.Index),
				strconv.Itoa(b.Size),
				strconv.Itoa(b.Box.X),
				strconv.Itoa(b.Box.Y),
				strconv.Itoa(b.Box.W),
				strconv.Itoa(b.Box.H),
				fmt.Sprintf("%.3f", b.Centroid[0]),
				fmt.Sprintf("%.3f", b.Centroid[1]),
				b.Color,
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func contourText(w io.Writer, r ContourResult) error {
	var out strings.Builder
	fmt.Fprintf(&out, "# %s from %s heading %s\n", r.File, r.Start, r.Direction)
	fmt.Fprintf(&out, "rotation: %s (turns %+d), surrounded: %s, %d-connected\n",
		r.Rotation, r.Turns, r.Surrounded, r.Connectivity)
	fmt.Fprintf(&out, "length: %d, box: %s\n", r.Length, r.Box)
	for i, p := range r.Points {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(p.String())
	}
	out.WriteString("\n")
	_, err := io.WriteString(w, out.String())
	return err
}

func contourCSV(w io.Writer, r ContourResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"file", "index", "x", "y"}); err != nil {
		return err
	}
	for i, p := range r.Points {
		if err := writer.Write([]string{r.File, strconv.Itoa(i), strconv.Itoa(p.X), strconv.Itoa(p.Y)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
