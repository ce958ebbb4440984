package core

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestForegroundBinEdgesDefaultMission(t *testing.T) {
	edges, err := ForegroundBinEdges(DefaultObservationTime)
	if err != nil {
		t.Fatalf("ForegroundBinEdges: %v", err)
	}
	if len(edges) != 1199163 {
		t.Fatalf("bins = %d, want 1199163", len(edges))
	}
	if edges[0] != ForegroundMinFreq {
		t.Fatalf("first edge = %v, want %v", edges[0], ForegroundMinFreq)
	}
	if last := edges[len(edges)-1]; last >= ForegroundMaxFreq {
		t.Fatalf("last edge %v not below %v", last, ForegroundMaxFreq)
	}
}

func TestForegroundBinEdgesRejectsBadTobs(t *testing.T) {
	for _, tobs := range []float64{0, -1, math.Inf(1), math.NaN()} {
		if _, err := ForegroundBinEdges(tobs); !errors.Is(err, ErrDomain) {
			t.Errorf("tobs=%v: err = %v, want ErrDomain", tobs, err)
		}
	}
}

func TestForegroundAssignsLeftClosedBins(t *testing.T) {
	const tobs = 1000 // 1 mHz bins
	edges, err := ForegroundBinEdges(tobs)
	if err != nil {
		t.Fatalf("ForegroundBinEdges: %v", err)
	}
	if len(edges) != 10 {
		t.Fatalf("bins = %d, want 10", len(edges))
	}

	samples := []FrequencyPowerSample{
		{Freq: ForegroundMinFreq, PSD: 1},
		{Freq: edges[1] - 1e-9, PSD: 2},
		{Freq: edges[3], PSD: 4},
		{Freq: 9.99e-3, PSD: 8},
		{Freq: 4.99e-4, PSD: 100},
		{Freq: ForegroundMaxFreq, PSD: 100},
		{Freq: 0.5, PSD: 100},
		{Freq: math.NaN(), PSD: 100},
	}
	spectrum, err := Foreground(samples, tobs)
	if err != nil {
		t.Fatalf("Foreground: %v", err)
	}
	want := []float64{3, 0, 0, 4, 0, 0, 0, 0, 0, 8}
	for k, bin := range spectrum {
		if bin.Freq != edges[k] {
			t.Errorf("bin %d freq = %v, want edge %v", k, bin.Freq, edges[k])
		}
		if bin.PSD != want[k] {
			t.Errorf("bin %d PSD = %v, want %v", k, bin.PSD, want[k])
		}
	}
}

func TestForegroundConservesInBandPower(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	samples := make([]FrequencyPowerSample, 5000)
	inBand := 0.0
	for i := range samples {
		f := math.Pow(10, -4+rng.Float64()*2.5) // 1e-4 .. ~3e-2 Hz
		p := rng.Float64() * 1e-40
		samples[i] = FrequencyPowerSample{Freq: f, PSD: p}
		if f >= ForegroundMinFreq && f < ForegroundMaxFreq {
			inBand += p
		}
	}
	spectrum, err := Foreground(samples, 1e5)
	if err != nil {
		t.Fatalf("Foreground: %v", err)
	}
	if got := spectrum.TotalPower(); math.Abs(got-inBand) > 1e-9*inBand {
		t.Fatalf("binned power = %v, want %v", got, inBand)
	}
}

func TestForegroundEmptyInput(t *testing.T) {
	spectrum, err := Foreground(nil, 1000)
	if err != nil {
		t.Fatalf("Foreground: %v", err)
	}
	if len(spectrum) != 10 {
		t.Fatalf("bins = %d, want 10", len(spectrum))
	}
	if spectrum.TotalPower() != 0 {
		t.Fatalf("total power = %v, want 0", spectrum.TotalPower())
	}
}

func TestEngineForegroundFromPSD(t *testing.T) {
	rec := &recorder{}
	e := newTestEngine(t, WithObservationTime(1e4), WithMetricsRecorder(rec))
	bins := []Binary{referenceBinary(0), referenceBinary(0.6)}

	psd, err := e.PSD(context.Background(), bins)
	if err != nil {
		t.Fatalf("PSD: %v", err)
	}
	spectrum, err := e.Foreground(context.Background(), psd.Samples)
	if err != nil {
		t.Fatalf("Foreground: %v", err)
	}

	// Every harmonic of a 1000 s orbit up to n=9 lies in [1e-3, 9e-3] Hz.
	total := 0.0
	for _, s := range psd.Samples {
		total += s.PSD
	}
	if got := spectrum.TotalPower(); math.Abs(got-total) > 1e-12*total {
		t.Fatalf("foreground power = %v, want %v", got, total)
	}
	last := rec.runs[len(rec.runs)-1]
	if last.Operation != "foreground" || last.Bins != len(spectrum) {
		t.Fatalf("unexpected run stats: %+v", last)
	}
}
