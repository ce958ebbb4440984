package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/signalsfoundry/gw-detectability/core"
)

// EngineCollector bundles Prometheus metrics for detectability runs. It
// satisfies core.MetricsRecorder so it can be handed straight to
// core.WithMetricsRecorder.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	Runs                *prometheus.CounterVec
	RunDurations        *prometheus.HistogramVec
	Sources             *prometheus.CounterVec
	Rejected            *prometheus.CounterVec
	HarmonicEvaluations prometheus.Counter
	Detections          prometheus.Counter
	ForegroundBins      prometheus.Gauge
}

// NewEngineCollector registers engine metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gw_runs_total",
		Help: "Completed engine runs, labeled by operation (snr, psd, foreground).",
	}, []string{"operation"}), "gw_runs_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gw_run_duration_seconds",
		Help:    "Engine run latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"operation"}), "gw_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	sources, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gw_sources_total",
		Help: "Sources evaluated, labeled by operation and regime (circular, eccentric).",
	}, []string{"operation", "regime"}), "gw_sources_total")
	if err != nil {
		return nil, err
	}

	rejected, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gw_sources_rejected_total",
		Help: "Non-physical sources dropped under the skip policy, labeled by operation.",
	}, []string{"operation"}), "gw_sources_rejected_total")
	if err != nil {
		return nil, err
	}

	evals, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gw_harmonic_evaluations_total",
		Help: "Noise-curve evaluations performed for eccentric-source harmonics.",
	}), "gw_harmonic_evaluations_total")
	if err != nil {
		return nil, err
	}

	detections, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gw_snr_detections_total",
		Help: "Sources reported with SNR above threshold.",
	}), "gw_snr_detections_total")
	if err != nil {
		return nil, err
	}

	bins, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gw_foreground_bins",
		Help: "Number of frequency bins in the most recent foreground spectrum.",
	}), "gw_foreground_bins")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:            gatherer,
		Runs:                runs,
		RunDurations:        durations,
		Sources:             sources,
		Rejected:            rejected,
		HarmonicEvaluations: evals,
		Detections:          detections,
		ForegroundBins:      bins,
	}, nil
}

// RecordRun folds one engine run summary into the collectors.
func (c *EngineCollector) RecordRun(s core.RunStats) {
	if c == nil {
		return
	}
	op := s.Operation
	if op == "" {
		op = "unknown"
	}
	c.Runs.WithLabelValues(op).Inc()
	c.RunDurations.WithLabelValues(op).Observe(s.Duration.Seconds())
	if s.Circular > 0 {
		c.Sources.WithLabelValues(op, string(core.RegimeCircular)).Add(float64(s.Circular))
	}
	if s.Eccentric > 0 {
		c.Sources.WithLabelValues(op, string(core.RegimeEccentric)).Add(float64(s.Eccentric))
	}
	if s.Rejected > 0 {
		c.Rejected.WithLabelValues(op).Add(float64(s.Rejected))
	}
	if s.HarmonicEvaluations > 0 {
		c.HarmonicEvaluations.Add(float64(s.HarmonicEvaluations))
	}
	if s.Detections > 0 {
		c.Detections.Add(float64(s.Detections))
	}
	if op == "foreground" {
		c.ForegroundBins.Set(float64(s.Bins))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
