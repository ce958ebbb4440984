package core

import (
	"context"
	"time"

	"github.com/signalsfoundry/gw-detectability/internal/logging"
	"gonum.org/v1/gonum/floats"
)

// FrequencyPowerSample is a single (frequency [Hz], power) contribution.
type FrequencyPowerSample struct {
	Freq float64 `json:"freq" parquet:"freq"`
	PSD  float64 `json:"PSD" parquet:"PSD"`
}

// PSDResult holds one sample per circular source followed by N-1 samples
// per eccentric source (source-major, harmonic-minor). Nothing is
// thresholded.
type PSDResult struct {
	Samples  []FrequencyPowerSample
	Rejected []Rejection
}

// PSD returns the per-source, per-harmonic power contributions of a
// catalog. The noise curve is not consulted.
func (e *Engine) PSD(ctx context.Context, binaries []Binary) (*PSDResult, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "gw.PSD", len(binaries))
	defer span.End()

	p, err := e.prepare(ctx, "psd", binaries)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	nh := e.nHarmonic - 1
	samples := make([]FrequencyPowerSample, 0, len(p.part.Circular)+nh*len(p.part.Eccentric))

	for _, i := range p.part.Circular {
		samples = append(samples, FrequencyPowerSample{
			Freq: 2 / binaries[i].Porb,
			PSD:  p.strain[i].H0Squared * e.tobs / 4,
		})
	}

	for _, i := range p.part.Eccentric {
		b := binaries[i]
		power := HarmonicWeights(b.Ecc, e.nHarmonic)
		floats.Scale(p.strain[i].H0Squared*e.tobs, power)
		for k, f := range HarmonicFrequencies(b.Porb, e.nHarmonic) {
			samples = append(samples, FrequencyPowerSample{Freq: f, PSD: power[k]})
		}
	}

	e.log.Info(ctx, "computed PSD table",
		logging.Int("sources", len(binaries)),
		logging.Int("circular", len(p.part.Circular)),
		logging.Int("eccentric", len(p.part.Eccentric)),
		logging.Int("rejected", len(p.rejected)),
		logging.Int("samples", len(samples)),
	)
	e.record(RunStats{
		Operation: "psd",
		Duration:  time.Since(start),
		Circular:  len(p.part.Circular),
		Eccentric: len(p.part.Eccentric),
		Rejected:  len(p.rejected),
	})
	return &PSDResult{Samples: samples, Rejected: p.rejected}, nil
}
