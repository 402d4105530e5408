package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/pixgroup/internal/contour"
	"github.com/MeKo-Tech/pixgroup/internal/labeling"
	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	lab := labeling.DefaultConfig()
	con := contour.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Labeling: LabelingConfig{
			Polarity:     lab.Polarity.String(),
			Threshold:    int(lab.Threshold),
			Connectivity: int(lab.Connectivity),
			MinSize:      lab.MinSize,
			MaxSize:      lab.MaxSize,
			AttachColors: lab.AttachColors,
		},
		Contour: ContourConfig{
			Polarity:     con.Polarity.String(),
			Threshold:    int(con.Threshold),
			Connectivity: int(con.Connectivity),
			Direction:    contour.South.String(),
		},
		Input: InputConfig{
			Depth:         int(pixbuf.Depth8),
			BinarizeLevel: 128,
		},
		Output: OutputConfig{
			Format:       "text",
			BlobColor:    "#FF0000",
			ContourColor: "#00FF00",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	// Validate output format
	validFormats := []string{"text", "json", "csv", "yaml"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if _, err := c.ToLabelingConfig(); err != nil {
		return err
	}
	if _, err := c.ToContourConfig(); err != nil {
		return err
	}
	if _, err := c.ContourDirection(); err != nil {
		return fmt.Errorf("invalid contour.direction: %w", err)
	}

	if _, err := pixbuf.ParseDepth(c.Input.Depth); err != nil {
		return fmt.Errorf("invalid input.depth: %w", err)
	}
	if err := validateLevel(c.Input.BinarizeLevel, "input.binarize_level"); err != nil {
		return err
	}

	// Validate overlay colours
	if err := validateColor(c.Output.BlobColor, "output.blob_color"); err != nil {
		return err
	}
	if err := validateColor(c.Output.ContourColor, "output.contour_color"); err != nil {
		return err
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return fmt.Errorf("invalid metrics configuration: metrics.textfile is required when metrics are enabled")
	}

	return nil
}

// ToLabelingConfig converts the config to the labeling package configuration.
func (c *Config) ToLabelingConfig() (labeling.Config, error) {
	l := c.Labeling
	cfg := labeling.DefaultConfig()

	pol, err := pixbuf.ParseColor(l.Polarity)
	if err != nil {
		return cfg, fmt.Errorf("invalid labeling.polarity: %w", err)
	}
	if err := validateLevel(l.Threshold, "labeling.threshold"); err != nil {
		return cfg, err
	}
	conn, err := pixbuf.ParseConnectivity(l.Connectivity)
	if err != nil {
		return cfg, fmt.Errorf("invalid labeling.connectivity: %w", err)
	}
	if l.MinSize < 0 {
		return cfg, fmt.Errorf("invalid labeling.min_size: %d (must not be negative)", l.MinSize)
	}

	cfg.Polarity = pol
	cfg.Threshold = uint8(l.Threshold)
	cfg.Connectivity = conn
	cfg.MinSize = l.MinSize
	cfg.MaxSize = l.MaxSize
	cfg.AttachColors = l.AttachColors
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid labeling sizes: %w", err)
	}
	return cfg, nil
}

// ToContourConfig converts the config to the contour package configuration.
func (c *Config) ToContourConfig() (contour.Config, error) {
	cc := c.Contour
	cfg := contour.DefaultConfig()

	pol, err := pixbuf.ParseColor(cc.Polarity)
	if err != nil {
		return cfg, fmt.Errorf("invalid contour.polarity: %w", err)
	}
	if err := validateLevel(cc.Threshold, "contour.threshold"); err != nil {
		return cfg, err
	}
	conn, err := pixbuf.ParseConnectivity(cc.Connectivity)
	if err != nil {
		return cfg, fmt.Errorf("invalid contour.connectivity: %w", err)
	}

	cfg.Polarity = pol
	cfg.Threshold = uint8(cc.Threshold)
	cfg.Connectivity = conn
	return cfg, nil
}

// ContourDirection parses the configured search direction.
func (c *Config) ContourDirection() (contour.Direction, error) {
	return contour.ParseDirection(c.Contour.Direction)
}

// InputDepth returns the configured buffer depth.
func (c *Config) InputDepth() (pixbuf.Depth, error) {
	return pixbuf.ParseDepth(c.Input.Depth)
}

// Helper functions

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validateLevel validates that a grey level lies between 0 and 255.
func validateLevel(value int, name string) error {
	if value < 0 || value > 255 {
		return fmt.Errorf("invalid %s: %d (must be between 0 and 255)", name, value)
	}
	return nil
}

// validateColor validates a #RRGGBB colour. Empty means "use the default".
func validateColor(value, name string) error {
	if value == "" {
		return nil
	}
	if _, err := colorful.Hex(value); err != nil {
		return fmt.Errorf("invalid %s: %q (must be #RRGGBB)", name, value)
	}
	return nil
}
