package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/signalsfoundry/gw-detectability/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/gw-detectability/core"

// NoiseCurve is a detector sensitivity model: it maps a frequency [Hz] to
// a noise amplitude spectral density [1/sqrt(Hz)]. Implementations must
// return a *NoiseDomainError for frequencies outside Domain rather than
// extrapolating.
type NoiseCurve interface {
	ASD(freq float64) (float64, error)
	Domain() (min, max float64)
}

// RejectPolicy decides what happens to a batch containing a non-physical
// source.
type RejectPolicy int

const (
	// RejectFail aborts the whole call on the first invalid source.
	RejectFail RejectPolicy = iota
	// RejectSkip drops invalid sources, reports them in the result and
	// carries on with the rest of the catalog.
	RejectSkip
)

func (p RejectPolicy) String() string {
	switch p {
	case RejectFail:
		return "fail"
	case RejectSkip:
		return "skip"
	default:
		return fmt.Sprintf("RejectPolicy(%d)", int(p))
	}
}

// ParseRejectPolicy maps "fail" or "skip" to a RejectPolicy.
func ParseRejectPolicy(s string) (RejectPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return RejectFail, nil
	case "skip":
		return RejectSkip, nil
	default:
		return RejectFail, fmt.Errorf("unknown reject policy %q", s)
	}
}

// RunStats summarises one engine call for metrics.
type RunStats struct {
	Operation           string
	Duration            time.Duration
	Circular            int
	Eccentric           int
	Rejected            int
	HarmonicEvaluations int
	Detections          int
	Bins                int
}

// MetricsRecorder receives a summary after every engine call.
type MetricsRecorder interface {
	RecordRun(stats RunStats)
}

// Engine evaluates SNR, PSD and foreground tables for binary catalogs
// against a fixed noise curve. It holds no mutable state and may be shared
// between goroutines.
type Engine struct {
	noise     NoiseCurve
	nHarmonic int
	tobs      float64
	policy    RejectPolicy
	log       logging.Logger
	metrics   MetricsRecorder
}

// EngineOption customises Engine construction.
type EngineOption func(*Engine)

// WithHarmonics sets the harmonic count N; eccentric sources are expanded
// into harmonics 1..N-1.
func WithHarmonics(n int) EngineOption {
	return func(e *Engine) {
		e.nHarmonic = n
	}
}

// WithObservationTime sets the observation time in seconds.
func WithObservationTime(tobs float64) EngineOption {
	return func(e *Engine) {
		e.tobs = tobs
	}
}

// WithRejectPolicy selects how non-physical sources are handled.
func WithRejectPolicy(p RejectPolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithMetricsRecorder attaches an optional recorder for run summaries.
func WithMetricsRecorder(m MetricsRecorder) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine builds an Engine around curve. Defaults: DefaultHarmonics,
// DefaultObservationTime, RejectFail, no logging, no metrics.
func NewEngine(curve NoiseCurve, opts ...EngineOption) (*Engine, error) {
	if curve == nil {
		return nil, fmt.Errorf("NewEngine: noise curve is nil")
	}
	e := &Engine{
		noise:     curve,
		nHarmonic: DefaultHarmonics,
		tobs:      DefaultObservationTime,
		policy:    RejectFail,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.nHarmonic < 2 {
		return nil, fmt.Errorf("NewEngine: harmonic count %d must be at least 2", e.nHarmonic)
	}
	if !positiveFinite(e.tobs) {
		return nil, fmt.Errorf("NewEngine: %w", &DomainError{Index: -1, Field: "tobs", Value: e.tobs})
	}
	if e.policy != RejectFail && e.policy != RejectSkip {
		return nil, fmt.Errorf("NewEngine: unknown reject policy %v", e.policy)
	}
	if e.log == nil {
		e.log = logging.Noop()
	}
	return e, nil
}

// Harmonics returns the configured harmonic count N.
func (e *Engine) Harmonics() int { return e.nHarmonic }

// ObservationTime returns Tobs in seconds.
func (e *Engine) ObservationTime() float64 { return e.tobs }

// prepared is the validated, classified view of a catalog shared by the
// SNR and PSD passes. strain is indexed by catalog position; entries for
// rejected sources are zero and never read.
type prepared struct {
	part     Partition
	strain   []StrainSample
	rejected []Rejection
}

func (e *Engine) prepare(ctx context.Context, op string, binaries []Binary) (*prepared, error) {
	valid := make([]int, 0, len(binaries))
	p := &prepared{
		strain:   make([]StrainSample, len(binaries)),
		rejected: []Rejection{},
	}
	for i, b := range binaries {
		if err := b.Validate(i); err != nil {
			if e.policy == RejectFail {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			e.log.Debug(ctx, "rejecting source",
				logging.String("operation", op),
				logging.Int("index", i),
				logging.String("error", err.Error()),
			)
			p.rejected = append(p.rejected, Rejection{Index: i, Err: err})
			continue
		}
		h0 := strain(b.ChirpMass(), b.Porb, b.Dist)
		p.strain[i] = StrainSample{H0: h0, H0Squared: h0 * h0}
		valid = append(valid, i)
	}
	if len(p.rejected) > 0 {
		e.log.Warn(ctx, "dropped non-physical sources",
			logging.String("operation", op),
			logging.Int("rejected", len(p.rejected)),
		)
	}
	p.part = classifyIndices(binaries, valid)
	return p, nil
}

// noisePower returns noise(f)^2, enforcing the curve's domain even when the
// implementation itself would extrapolate.
func (e *Engine) noisePower(f float64) (float64, error) {
	lo, hi := e.noise.Domain()
	if math.IsNaN(f) || f < lo || f > hi {
		return 0, &NoiseDomainError{Freq: f, Min: lo, Max: hi}
	}
	asd, err := e.noise.ASD(f)
	if err != nil {
		return 0, err
	}
	if !positiveFinite(asd) {
		return 0, &NoiseDomainError{Freq: f, Min: lo, Max: hi}
	}
	return asd * asd, nil
}

func (e *Engine) record(stats RunStats) {
	if e.metrics != nil {
		e.metrics.RecordRun(stats)
	}
}

func startSpan(ctx context.Context, name string, sources int, extra ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, len(extra)+1)
	attrs = append(attrs, attribute.Int("gw.sources", sources))
	attrs = append(attrs, extra...)
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}
