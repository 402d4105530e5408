package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/pixgroup/internal/config"
	"github.com/MeKo-Tech/pixgroup/internal/metrics"
	"github.com/MeKo-Tech/pixgroup/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBinding ties a configuration key to a command-line flag.
type flagBinding struct {
	key  string
	flag *pflag.Flag
}

// app holds the state shared by the commands of one root command.
type app struct {
	loader   *config.Loader
	cfgFile  string
	cfg      *config.Config
	logger   *slog.Logger
	bindings map[*cobra.Command][]flagBinding
}

// NewRootCommand builds the pixgroup command tree. Every call returns an
// independent tree with its own configuration state.
func NewRootCommand() *cobra.Command {
	a := &app{
		loader:   config.NewLoader(viper.New()),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		bindings: make(map[*cobra.Command][]flagBinding),
	}

	rootCmd := &cobra.Command{
		Use:   "pixgroup",
		Short: "Group image pixels into connected blobs and trace region contours",
		Long: `pixgroup finds connected groups of foreground pixels (blobs) in 1-bit and
8-bit images and traces the boundary of a region starting from a point.

This tool provides:
- Scanline connected-component labeling with 4- or 8-connectivity
- Size filtering and masked labeling
- Contour tracing with winding classification (outer boundary or hole)
- Text, JSON, CSV and YAML output plus PNG overlays
- Prometheus textfile metrics

Examples:
  pixgroup blobs scan.png
  pixgroup blobs pages/ --min-size 20 --format json
  pixgroup contour scan.png --x 10 --y 0 --direction south`,
		Version:           version.String(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup(true),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Global flags that apply to all commands
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/pixgroup, /etc/pixgroup)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Int("depth", 8, "buffer depth used when decoding images (1, 8 or 24 bits)")
	pf.Int("binarize-level", 128, "grey level at or above which a pixel is set when decoding 1-bit buffers")
	pf.String("metrics-textfile", "", "write Prometheus metrics to this file after the run")

	a.bind(rootCmd, pf,
		"verbose", "verbose",
		"log_level", "log-level",
		"input.depth", "depth",
		"input.binarize_level", "binarize-level",
		"metrics.textfile", "metrics-textfile",
	)

	rootCmd.AddCommand(a.newBlobsCommand(), a.newContourCommand(), a.newConfigCommand())
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// bind records key/flag-name pairs for cmd. The bindings are applied to the
// loader's viper instance just before cmd runs, so commands sharing a key do
// not override each other.
func (a *app) bind(cmd *cobra.Command, fs *pflag.FlagSet, pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		f := fs.Lookup(pairs[i+1])
		if f == nil {
			panic(fmt.Sprintf("failed to bind flag %s: not defined", pairs[i+1]))
		}
		a.bindings[cmd] = append(a.bindings[cmd], flagBinding{key: pairs[i], flag: f})
	}
}

// setup binds the flags of the executing command, loads the configuration and
// installs the logger.
func (a *app) setup(validate bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		v := a.loader.Viper()
		for _, c := range []*cobra.Command{cmd.Root(), cmd} {
			for _, b := range a.bindings[c] {
				if err := v.BindPFlag(b.key, b.flag); err != nil {
					return fmt.Errorf("failed to bind flag %s: %w", b.flag.Name, err)
				}
			}
		}

		var err error
		if validate {
			a.cfg, err = a.loader.Load(a.cfgFile)
		} else {
			a.cfg, err = a.loader.LoadUnvalidated(a.cfgFile)
		}
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		a.logger = newLogger(cmd.ErrOrStderr(), a.cfg)
		return nil
	}
}

// newLogger sets up structured logging at the configured level.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var logLevel slog.Level

	// Check verbose flag first
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// newCollector returns a metrics collector when metrics export is configured.
func (a *app) newCollector() *metrics.Collector {
	if !a.cfg.Metrics.Enabled && a.cfg.Metrics.Textfile == "" {
		return nil
	}
	return metrics.NewCollector("pixgroup")
}

// flushMetrics writes the collector to the configured textfile.
func (a *app) flushMetrics(c *metrics.Collector) {
	if c == nil {
		return
	}
	if err := c.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Error("Failed to write metrics", "error", err)
		return
	}
	a.logger.Debug("Metrics written", "file", a.cfg.Metrics.Textfile)
}

// writeOutput writes rendered results to the configured output file or to stdout.
func writeOutput(cmd *cobra.Command, outputFile string, data []byte) error {
	if outputFile == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("failed to write final output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(outputFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile); err != nil {
		return err
	}
	return nil
}
