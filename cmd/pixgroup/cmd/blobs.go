package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/pixgroup/internal/batch"
	"github.com/MeKo-Tech/pixgroup/internal/labeling"
	"github.com/MeKo-Tech/pixgroup/internal/overlay"
	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
	"github.com/MeKo-Tech/pixgroup/internal/report"
	"github.com/spf13/cobra"
)

const (
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
)

// newBlobsCommand creates the blobs command.
func (a *app) newBlobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blobs <image|directory>...",
		Short: "Find connected groups of foreground pixels in images",
		Long: `Label the connected foreground regions (blobs) of one or more images.

A pixel is foreground when its grey value is at or above the threshold
(high polarity) or below it (low polarity). Directories are searched for
supported images. Images are processed concurrently and reported in
argument order.

Supported formats: JPEG, PNG, GIF, BMP, TIFF

Examples:
  pixgroup blobs scan.png
  pixgroup blobs scans/ --recursive --min-size 20 --format csv
  pixgroup blobs scans/ --include 'page_*.png' --exclude '*_draft*'
  pixgroup blobs page.png --polarity low --threshold 100 --overlay-dir out/`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         a.runBlobs,
	}

	f := cmd.Flags()
	f.String("polarity", "high", "foreground polarity: high (value >= threshold) or low (value < threshold)")
	f.Int("threshold", 128, "foreground threshold (0..255)")
	f.Int("connectivity", 8, "pixel connectivity: 4 or 8")
	f.Int("min-size", 1, "discard blobs with fewer pixels")
	f.Int("max-size", 0, "discard blobs with more pixels (0 = unlimited)")
	f.Bool("attach-colors", false, "sample the source value of every blob pixel")
	f.StringP("format", "f", "text", "output format (text, json, csv, yaml)")
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.String("overlay-dir", "", "directory to write overlay images (filled blobs and boxes)")
	f.String("blob-color", "#FF0000", "overlay colour (#RRGGBB); empty uses one colour per blob")
	f.String("mask", "", "mask image; only pixels where the mask is non-zero are labeled")
	f.BoolP("recursive", "r", false, "search directories recursively")
	f.StringSlice("include", nil, "file name patterns to take from directories (default: all supported images)")
	f.StringSlice("exclude", nil, "file name patterns to skip")
	f.Int("workers", 0, "number of images processed concurrently (0 = number of CPUs)")

	a.bind(cmd, f,
		"labeling.polarity", "polarity",
		"labeling.threshold", "threshold",
		"labeling.connectivity", "connectivity",
		"labeling.min_size", "min-size",
		"labeling.max_size", "max-size",
		"labeling.attach_colors", "attach-colors",
		"output.format", "format",
		"output.file", "output",
		"output.overlay_dir", "overlay-dir",
		"output.blob_color", "blob-color",
	)
	return cmd
}

// runBlobs labels every input image.
func (a *app) runBlobs(cmd *cobra.Command, args []string) error {
	cfg := a.cfg

	lcfg, err := cfg.ToLabelingConfig()
	if err != nil {
		return err
	}
	depth, err := cfg.InputDepth()
	if err != nil {
		return err
	}
	level := uint8(cfg.Input.BinarizeLevel)

	var filter batch.Filter
	filter.Recursive, _ = cmd.Flags().GetBool("recursive")
	filter.Include, _ = cmd.Flags().GetStringSlice("include")
	filter.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
	workers, _ := cmd.Flags().GetInt("workers")
	maskPath, _ := cmd.Flags().GetString("mask")

	files, err := filter.Discover(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no input images found")
	}

	var mask *pixbuf.Buffer
	if maskPath != "" {
		mask, err = pixbuf.Load(maskPath, pixbuf.Depth8, level)
		if err != nil {
			return fmt.Errorf("failed to load mask %s: %w", maskPath, err)
		}
	}

	var blobColor color.Color
	if cfg.Output.BlobColor != "" {
		c, err := overlay.ParseColor(cfg.Output.BlobColor)
		if err != nil {
			return err
		}
		blobColor = c
	}

	overlayDir := cfg.Output.OverlayDir
	if overlayDir != "" {
		if err := os.MkdirAll(overlayDir, 0o750); err != nil {
			return fmt.Errorf("failed to create overlay directory: %w", err)
		}
	}

	collector := a.newCollector()
	defer a.flushMetrics(collector)

	opts := []labeling.Option{labeling.WithLogger(a.logger)}
	if collector != nil {
		opts = append(opts, labeling.WithObserver(collector))
	}
	labeler, err := labeling.New(lcfg, opts...)
	if err != nil {
		return err
	}

	withPoints := cfg.Output.Format == outputFormatJSON || cfg.Output.Format == outputFormatYAML
	a.logger.Info("Processing images", "count", len(files), "connectivity", int(lcfg.Connectivity))

	results, err := batch.Map(cmd.Context(), files, workers, func(_ context.Context, path string) (report.BlobResult, error) {
		buf, err := pixbuf.Load(path, depth, level)
		if err != nil {
			return report.BlobResult{}, fmt.Errorf("failed to load %s: %w", path, err)
		}

		var blobs []*pointset.PointSet
		if mask != nil {
			// Labeling moves the mask origin, so each image gets its own copy.
			blobs, err = labeler.DeriveBlobsMasked(buf, mask.Clone())
		} else {
			blobs, err = labeler.DeriveBlobs(buf)
		}
		if err != nil {
			return report.BlobResult{}, fmt.Errorf("labeling failed for %s: %w", path, err)
		}
		a.logger.Info("Image processed", "file", path, "blobs", len(blobs))

		if overlayDir != "" {
			outPath := overlayPath(overlayDir, path, "blobs")
			if err := overlay.SavePNG(outPath, overlay.RenderBlobs(buf.ToImage(), blobs, blobColor)); err != nil {
				return report.BlobResult{}, err
			}
			a.logger.Debug("Saved overlay", "file", outPath)
		}

		return report.NewBlobResult(path, buf.Width(), buf.Height(), blobs, withPoints), nil
	})
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := report.FormatBlobs(&out, results, cfg.Output.Format); err != nil {
		return fmt.Errorf("format %s failed: %w", cfg.Output.Format, err)
	}
	return writeOutput(cmd, cfg.Output.File, out.Bytes())
}

// overlayPath returns dir/<image base name>_<suffix>.png.
func overlayPath(dir, imagePath, suffix string) string {
	base := filepath.Base(imagePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"_"+suffix+".png")
}
