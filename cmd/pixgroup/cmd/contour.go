package cmd

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/MeKo-Tech/pixgroup/internal/contour"
	"github.com/MeKo-Tech/pixgroup/internal/overlay"
	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/MeKo-Tech/pixgroup/internal/pointset"
	"github.com/MeKo-Tech/pixgroup/internal/report"
	"github.com/spf13/cobra"
)

// newContourCommand creates the contour command.
func (a *app) newContourCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contour <image>",
		Short: "Trace the boundary of the first region met from a start point",
		Long: `Walk from (x, y) in the given direction until the first foreground pixel and
trace the boundary of its region, keeping the background on the left.

A clockwise trace is the outer boundary of a region; an anticlockwise
trace is the boundary of a hole inside it.

Examples:
  pixgroup contour scan.png --x 40 --y 0
  pixgroup contour scan.png --x 0 --y 12 --direction east --connectivity 4 --format json
  pixgroup contour scan.png --x 40 --y 0 --overlay trace.png`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         a.runContour,
	}

	f := cmd.Flags()
	f.Int("x", 0, "start column")
	f.Int("y", 0, "start row")
	f.StringP("direction", "d", "south", "search direction: north, east, south or west")
	f.String("polarity", "high", "target polarity: high (value >= threshold) or low (value < threshold)")
	f.Int("threshold", 128, "target threshold (0..255)")
	f.Int("connectivity", 8, "pixel connectivity: 4 or 8")
	f.StringP("format", "f", "text", "output format (text, json, csv, yaml)")
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.String("overlay", "", "write an overlay image of the traced contour to this file")
	f.String("contour-color", "#00FF00", "overlay colour (#RRGGBB)")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	a.bind(cmd, f,
		"contour.direction", "direction",
		"contour.polarity", "polarity",
		"contour.threshold", "threshold",
		"contour.connectivity", "connectivity",
		"output.format", "format",
		"output.file", "output",
		"output.contour_color", "contour-color",
	)
	return cmd
}

// runContour traces one contour.
func (a *app) runContour(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	path := args[0]

	ccfg, err := cfg.ToContourConfig()
	if err != nil {
		return err
	}
	dir, err := cfg.ContourDirection()
	if err != nil {
		return err
	}
	depth, err := cfg.InputDepth()
	if err != nil {
		return err
	}

	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	overlayFile, _ := cmd.Flags().GetString("overlay")
	start := pointset.Pt(x, y)

	buf, err := pixbuf.Load(path, depth, uint8(cfg.Input.BinarizeLevel))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	collector := a.newCollector()
	defer a.flushMetrics(collector)

	opts := []contour.Option{contour.WithLogger(a.logger)}
	if collector != nil {
		opts = append(opts, contour.WithObserver(collector))
	}
	tracer, err := contour.New(ccfg, opts...)
	if err != nil {
		return err
	}

	res, err := tracer.FindContour(buf, start, dir)
	if err != nil {
		return fmt.Errorf("contour tracing failed for %s: %w", path, err)
	}
	a.logger.Info("Contour traced", "file", path, "points", res.Points.Len(), "rotation", res.Rotation.String())

	if overlayFile != "" {
		var c color.Color
		if cfg.Output.ContourColor != "" {
			col, err := overlay.ParseColor(cfg.Output.ContourColor)
			if err != nil {
				return err
			}
			c = col
		}
		if err := overlay.SavePNG(overlayFile, overlay.RenderContour(buf.ToImage(), res, c)); err != nil {
			return err
		}
		a.logger.Debug("Saved overlay", "file", overlayFile)
	}

	var out bytes.Buffer
	if err := report.FormatContour(&out, report.NewContourResult(path, start, dir, res), cfg.Output.Format); err != nil {
		return fmt.Errorf("format %s failed: %w", cfg.Output.Format, err)
	}
	return writeOutput(cmd, cfg.Output.File, out.Bytes())
}
