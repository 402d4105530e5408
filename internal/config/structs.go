//nolint:lll
package config

// Config represents the complete configuration for the pixgroup tool.
// It includes settings for all commands (blobs, contour) and supports
// loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Blob labeling (blobs command)
	Labeling LabelingConfig `mapstructure:"labeling" yaml:"labeling" json:"labeling"`

	// Contour tracing (contour command)
	Contour ContourConfig `mapstructure:"contour" yaml:"contour" json:"contour"`

	// Image decoding
	Input InputConfig `mapstructure:"input" yaml:"input" json:"input"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Metrics export
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// LabelingConfig contains connected-component labeling settings.
type LabelingConfig struct {
	Polarity     string `mapstructure:"polarity" yaml:"polarity" json:"polarity"`
	Threshold    int    `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Connectivity int    `mapstructure:"connectivity" yaml:"connectivity" json:"connectivity"`
	MinSize      int    `mapstructure:"min_size" yaml:"min_size" json:"min_size"`
	MaxSize      int    `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
	AttachColors bool   `mapstructure:"attach_colors" yaml:"attach_colors" json:"attach_colors"`
}

// ContourConfig contains contour tracing settings.
type ContourConfig struct {
	Polarity     string `mapstructure:"polarity" yaml:"polarity" json:"polarity"`
	Threshold    int    `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Connectivity int    `mapstructure:"connectivity" yaml:"connectivity" json:"connectivity"`
	Direction    string `mapstructure:"direction" yaml:"direction" json:"direction"`
}

// InputConfig controls how image files are converted into pixel buffers.
type InputConfig struct {
	// Depth is the buffer depth in bits: 1, 8 or 24.
	Depth int `mapstructure:"depth" yaml:"depth" json:"depth"`
	// BinarizeLevel is the grey level at or above which a pixel is set when
	// decoding into a 1-bit buffer.
	BinarizeLevel int `mapstructure:"binarize_level" yaml:"binarize_level" json:"binarize_level"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format" json:"format"`
	File         string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir   string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	BlobColor    string `mapstructure:"blob_color" yaml:"blob_color" json:"blob_color"`
	ContourColor string `mapstructure:"contour_color" yaml:"contour_color" json:"contour_color"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Textfile string `mapstructure:"textfile" yaml:"textfile" json:"textfile"`
}
