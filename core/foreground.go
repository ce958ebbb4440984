package core

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/signalsfoundry/gw-detectability/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/floats"
)

// Frequency band covered by the foreground spectrum, [min, max) Hz.
const (
	ForegroundMinFreq = 5e-4
	ForegroundMaxFreq = 1e-2
)

// ForegroundSpectrum is the binned confusion foreground: one entry per
// frequency bin, keyed by the bin's left edge.
type ForegroundSpectrum []FrequencyPowerSample

// Powers returns the PSD column.
func (s ForegroundSpectrum) Powers() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.PSD
	}
	return out
}

// TotalPower sums PSD over all bins.
func (s ForegroundSpectrum) TotalPower() float64 {
	return floats.Sum(s.Powers())
}

// ForegroundBinEdges returns the left bin edges ForegroundMinFreq + k/tobs
// for every k whose edge lies below ForegroundMaxFreq.
func ForegroundBinEdges(tobs float64) ([]float64, error) {
	if !positiveFinite(tobs) {
		return nil, &DomainError{Index: -1, Field: "tobs", Value: tobs}
	}
	width := 1 / tobs
	n := int(math.Ceil((ForegroundMaxFreq - ForegroundMinFreq) / width))
	edges := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		edge := ForegroundMinFreq + float64(k)*width
		if edge >= ForegroundMaxFreq {
			break
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// Foreground bins samples into 1/tobs-wide frequency bins spanning
// [ForegroundMinFreq, ForegroundMaxFreq) and sums power per bin. A sample
// lands in the bin with the greatest left edge at or below its frequency;
// samples outside the band are dropped. Empty bins report zero power.
func Foreground(samples []FrequencyPowerSample, tobs float64) (ForegroundSpectrum, error) {
	edges, err := ForegroundBinEdges(tobs)
	if err != nil {
		return nil, err
	}
	power := make([]float64, len(edges))
	for _, s := range samples {
		k := binIndex(edges, s.Freq)
		if k < 0 {
			continue
		}
		power[k] += s.PSD
	}
	out := make(ForegroundSpectrum, len(edges))
	for k, edge := range edges {
		out[k] = FrequencyPowerSample{Freq: edge, PSD: power[k]}
	}
	return out, nil
}

// binIndex returns the bin for f, or -1 when f is outside the band.
func binIndex(edges []float64, f float64) int {
	if len(edges) == 0 || !(f >= ForegroundMinFreq && f < ForegroundMaxFreq) {
		return -1
	}
	return sort.Search(len(edges), func(i int) bool { return edges[i] > f }) - 1
}

// Foreground bins samples with the engine's observation time.
func (e *Engine) Foreground(ctx context.Context, samples []FrequencyPowerSample) (ForegroundSpectrum, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "gw.Foreground", len(samples))
	defer span.End()

	spectrum, err := Foreground(samples, e.tobs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("gw.bins", len(spectrum)))
	e.log.Info(ctx, "computed foreground",
		logging.Int("samples", len(samples)),
		logging.Int("bins", len(spectrum)),
	)
	e.record(RunStats{
		Operation: "foreground",
		Duration:  time.Since(start),
		Bins:      len(spectrum),
	})
	return spectrum, nil
}
