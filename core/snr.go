package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/gw-detectability/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/floats"
)

// SNRRow is one detectable source: its GW frequency (n=2 for circular
// sources, the peak frequency for eccentric ones) and its SNR.
type SNRRow struct {
	GWFreq float64 `json:"gw_freq" parquet:"gw_freq"`
	SNR    float64 `json:"SNR" parquet:"SNR"`
}

// SNRResult is the SNR table for a catalog. Rows keeps catalog order and
// only holds sources with SNR > SNRThreshold; it is empty, never nil, when
// nothing is detectable. Rejected lists sources dropped under RejectSkip.
type SNRResult struct {
	Rows     []SNRRow
	Rejected []Rejection
}

// SNR evaluates every source against the noise curve. Circular sources are
// evaluated at 2/porb; eccentric sources sum power over harmonics
// 1..N-1 before taking the square root.
func (e *Engine) SNR(ctx context.Context, binaries []Binary) (*SNRResult, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "gw.SNR", len(binaries),
		attribute.Int("gw.harmonics", e.nHarmonic),
	)
	defer span.End()

	p, err := e.prepare(ctx, "snr", binaries)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	snr := make([]float64, len(binaries))
	freq := make([]float64, len(binaries))

	if err := e.circularSNR(binaries, p, snr, freq); err != nil {
		span.RecordError(err)
		return nil, err
	}

	evals := 0
	if len(p.part.Eccentric) > 0 {
		evals, err = e.eccentricSNR(binaries, p, snr, freq)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	// Both regimes wrote into position-indexed slices; walk positions in
	// order to keep catalog order.
	res := &SNRResult{Rows: make([]SNRRow, 0), Rejected: p.rejected}
	rejected := 0
	for i := range binaries {
		if rejected < len(p.rejected) && p.rejected[rejected].Index == i {
			rejected++
			continue
		}
		if snr[i] > SNRThreshold {
			res.Rows = append(res.Rows, SNRRow{GWFreq: freq[i], SNR: snr[i]})
		}
	}

	span.SetAttributes(attribute.Int("gw.detections", len(res.Rows)))
	e.log.Info(ctx, "computed SNR table",
		logging.Int("sources", len(binaries)),
		logging.Int("circular", len(p.part.Circular)),
		logging.Int("eccentric", len(p.part.Eccentric)),
		logging.Int("rejected", len(p.rejected)),
		logging.Int("detections", len(res.Rows)),
	)
	e.record(RunStats{
		Operation:           "snr",
		Duration:            time.Since(start),
		Circular:            len(p.part.Circular),
		Eccentric:           len(p.part.Eccentric),
		Rejected:            len(p.rejected),
		HarmonicEvaluations: evals,
		Detections:          len(res.Rows),
	})
	return res, nil
}

// circularSNR fills snr and freq for circular sources:
// SNR^2 = h0^2 * Tobs/4 / noise(2/porb)^2.
func (e *Engine) circularSNR(binaries []Binary, p *prepared, snr, freq []float64) error {
	for _, i := range p.part.Circular {
		f := 2 / binaries[i].Porb
		np, err := e.noisePower(f)
		if err != nil {
			return fmt.Errorf("snr: source %d: %w", i, err)
		}
		snr[i] = math.Sqrt(p.strain[i].H0Squared * 0.25 * e.tobs / np)
		freq[i] = f
	}
	return nil
}

// eccentricSNR fills snr and freq for eccentric sources and returns the
// number of noise-curve evaluations performed.
func (e *Engine) eccentricSNR(binaries []Binary, p *prepared, snr, freq []float64) (int, error) {
	evals := 0
	ratio := make([]float64, e.nHarmonic-1)
	for _, i := range p.part.Eccentric {
		b := binaries[i]
		weights := HarmonicWeights(b.Ecc, e.nHarmonic)
		freqs := HarmonicFrequencies(b.Porb, e.nHarmonic)
		for k, f := range freqs {
			np, err := e.noisePower(f)
			if err != nil {
				return evals, fmt.Errorf("snr: source %d harmonic %d: %w", i, k+1, err)
			}
			ratio[k] = weights[k] / np
			evals++
		}
		snr[i] = math.Sqrt(p.strain[i].H0Squared * e.tobs * floats.Sum(ratio))
		freq[i] = PeakGWFrequency(b.M1, b.M2, b.Ecc, b.Porb)
	}
	return evals, nil
}
