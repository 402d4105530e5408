// Package metrics collects Prometheus metrics for labeling and contour calls.
package metrics

import (
	"fmt"

	"github.com/MeKo-Tech/pixgroup/internal/contour"
	"github.com/MeKo-Tech/pixgroup/internal/labeling"
	"github.com/MeKo-Tech/pixgroup/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Collector records labeling and contour calls on its own registry. It
// implements labeling.Observer and contour.Observer.
type Collector struct {
	registry *prometheus.Registry

	// Labeling metrics
	labelingCalls    *prometheus.CounterVec
	labelingDuration prometheus.Histogram
	labelingBlobs    *prometheus.CounterVec
	labelingMerges   prometheus.Counter

	// Contour metrics
	contourCalls    *prometheus.CounterVec
	contourDuration prometheus.Histogram
	contourPoints   prometheus.Histogram
	contourRotation *prometheus.CounterVec
}

var (
	_ labeling.Observer = (*Collector)(nil)
	_ contour.Observer  = (*Collector)(nil)
)

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "build_info",
		Help:        "Build metadata of the running binary, always 1",
		ConstLabels: version.Labels(),
	}).Set(1)

	return &Collector{
		registry: reg,

		labelingCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "labeling_calls_total",
				Help:      "Total number of blob labeling calls",
			},
			[]string{"status"}, // status: success, error
		),
		labelingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "labeling_duration_seconds",
				Help:      "Blob labeling duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		labelingBlobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "labeling_blobs_total",
				Help:      "Total number of blobs found",
			},
			[]string{"outcome"}, // outcome: kept, discarded
		),
		labelingMerges: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "labeling_merges_total",
				Help:      "Total number of label merges",
			},
		),

		contourCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contour_calls_total",
				Help:      "Total number of contour tracing calls",
			},
			[]string{"status"},
		),
		contourDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "contour_duration_seconds",
				Help:      "Contour tracing duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		contourPoints: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "contour_points",
				Help:      "Number of points in a traced contour",
				Buckets:   []float64{1, 4, 16, 64, 256, 1024, 4096, 16384, 65536},
			},
		),
		contourRotation: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contour_rotation_total",
				Help:      "Traced contours by winding",
			},
			[]string{"rotation"}, // rotation: clockwise, anticlockwise, unclassified
		),
	}
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveLabeling records one labeling call.
func (c *Collector) ObserveLabeling(stats labeling.Stats, err error) {
	if err != nil {
		c.labelingCalls.WithLabelValues(statusError).Inc()
		return
	}
	c.labelingCalls.WithLabelValues(statusSuccess).Inc()
	c.labelingDuration.Observe(stats.Duration.Seconds())
	c.labelingBlobs.WithLabelValues("kept").Add(float64(stats.Kept))
	c.labelingBlobs.WithLabelValues("discarded").Add(float64(stats.Discarded))
	c.labelingMerges.Add(float64(stats.Merges))
}

// ObserveContour records one contour call.
func (c *Collector) ObserveContour(stats contour.Stats, err error) {
	if err != nil {
		c.contourCalls.WithLabelValues(statusError).Inc()
		return
	}
	c.contourCalls.WithLabelValues(statusSuccess).Inc()
	c.contourDuration.Observe(stats.Duration.Seconds())
	c.contourPoints.Observe(float64(stats.Points))
	c.contourRotation.WithLabelValues(stats.Rotation.String()).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
