// Package telemetry publishes bandwidth measurements as Prometheus metrics
// written to a node-exporter textfile, so a cluster monitoring agent can
// pick them up next to its regular samplers.
package telemetry

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weiihann/bwprobe/harness"
)

const namespace = "bwprobe"

// Exporter collects measurements on a private registry.
type Exporter struct {
	registry     *prometheus.Registry
	bandwidth    *prometheus.GaugeVec
	elapsed      *prometheus.GaugeVec
	measurements *prometheus.CounterVec
}

// NewExporter creates an Exporter. constLabels (for example job_id and
// user_id of the batch job being profiled) are attached to every series.
func NewExporter(constLabels map[string]string) (*Exporter, error) {
	labels := prometheus.Labels(constLabels)

	e := &Exporter{
		registry: prometheus.NewRegistry(),
		bandwidth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "bandwidth_gbps",
			Help:        "Achieved memory bandwidth of the latest measurement, in GB/s.",
			ConstLabels: labels,
		}, []string{"kernel", "n"}),
		elapsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "elapsed_seconds",
			Help:        "Duration of the timed region of the latest measurement.",
			ConstLabels: labels,
		}, []string{"kernel", "n"}),
		measurements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "measurements_total",
			Help:        "Number of measurements taken.",
			ConstLabels: labels,
		}, []string{"kernel"}),
	}

	for _, c := range []prometheus.Collector{e.bandwidth, e.elapsed, e.measurements} {
		if err := e.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return e, nil
}

// Observe records m.
func (e *Exporter) Observe(m harness.Measurement) {
	kernel := m.Kernel.String()
	n := strconv.Itoa(m.N)

	e.bandwidth.WithLabelValues(kernel, n).Set(m.BandwidthGBps)
	e.elapsed.WithLabelValues(kernel, n).Set(m.ElapsedSeconds())
	e.measurements.WithLabelValues(kernel).Inc()
}

// Gatherer exposes the registry holding the exporter's series.
func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}

// WriteTextfile writes all series to path in the text exposition format.
// The file is replaced atomically.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.Gatherer()); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}

	return nil
}
