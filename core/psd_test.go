package core

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestPSDCircularSource(t *testing.T) {
	e := newTestEngine(t)
	b := referenceBinary(0)
	res, err := e.PSD(context.Background(), []Binary{b})
	if err != nil {
		t.Fatalf("PSD: %v", err)
	}
	if len(res.Samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(res.Samples))
	}
	s, _ := Strain(b.ChirpMass(), b.Porb, b.Dist)
	got := res.Samples[0]
	if got.Freq != 0.002 {
		t.Fatalf("freq = %v, want 0.002", got.Freq)
	}
	if want := s.H0Squared * DefaultObservationTime / 4; got.PSD != want {
		t.Fatalf("PSD = %v, want %v", got.PSD, want)
	}
}

func TestPSDEccentricScenario(t *testing.T) {
	e := newTestEngine(t)
	b := referenceBinary(0.9)
	res, err := e.PSD(context.Background(), []Binary{b})
	if err != nil {
		t.Fatalf("PSD: %v", err)
	}
	if len(res.Samples) != 9 {
		t.Fatalf("samples = %d, want 9", len(res.Samples))
	}
	s, _ := Strain(b.ChirpMass(), b.Porb, b.Dist)
	weights := HarmonicWeights(0.9, 10)
	total := 0.0
	for i, sample := range res.Samples {
		n := i + 1
		if want := float64(n) / 1000; sample.Freq != want {
			t.Errorf("sample %d freq = %v, want %v", i, sample.Freq, want)
		}
		want := s.H0Squared * DefaultObservationTime * weights[i]
		if math.Abs(sample.PSD-want) > 1e-12*want {
			t.Errorf("sample %d PSD = %v, want %v", i, sample.PSD, want)
		}
		total += sample.PSD
	}
	// Less power than a circular source would put into its single sample.
	if circular := s.H0Squared * DefaultObservationTime / 4; total >= circular {
		t.Fatalf("eccentric power %v should be below circular %v", total, circular)
	}
}

func TestPSDBroadcastsStrainPerSource(t *testing.T) {
	e := newTestEngine(t, WithHarmonics(4))
	near := referenceBinary(0.5)
	far := referenceBinary(0.5)
	far.Dist *= 10
	res, err := e.PSD(context.Background(), []Binary{near, far, referenceBinary(0)})
	if err != nil {
		t.Fatalf("PSD: %v", err)
	}
	// 1 circular sample first, then 3 harmonics per eccentric source.
	if len(res.Samples) != 7 {
		t.Fatalf("samples = %d, want 7", len(res.Samples))
	}
	for k := 0; k < 3; k++ {
		n, f := res.Samples[1+k], res.Samples[4+k]
		if n.Freq != f.Freq {
			t.Fatalf("harmonic %d frequency mismatch: %v vs %v", k+1, n.Freq, f.Freq)
		}
		if ratio := n.PSD / f.PSD; math.Abs(ratio-100) > 1e-9 {
			t.Fatalf("harmonic %d near/far power ratio = %v, want 100", k+1, ratio)
		}
	}
}

func TestPSDDoesNotConsultNoiseCurve(t *testing.T) {
	calls := 0
	e, err := NewEngine(flatCurve{asd: 1e-20, min: 1, max: 2, calls: &calls})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := e.PSD(context.Background(), []Binary{referenceBinary(0), referenceBinary(0.6)}); err != nil {
		t.Fatalf("PSD: %v", err)
	}
	if calls != 0 {
		t.Fatalf("noise curve evaluated %d times, want 0", calls)
	}
}

func TestPSDEmptyCatalog(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.PSD(context.Background(), []Binary{})
	if err != nil {
		t.Fatalf("PSD: %v", err)
	}
	if res.Samples == nil || len(res.Samples) != 0 {
		t.Fatalf("samples = %#v, want empty", res.Samples)
	}
}

func TestPSDRejectPolicies(t *testing.T) {
	bad := referenceBinary(0.2)
	bad.Dist = -1
	bins := []Binary{bad, referenceBinary(0)}

	if _, err := newTestEngine(t).PSD(context.Background(), bins); !errors.Is(err, ErrDomain) {
		t.Fatalf("fail policy err = %v, want ErrDomain", err)
	}

	res, err := newTestEngine(t, WithRejectPolicy(RejectSkip)).PSD(context.Background(), bins)
	if err != nil {
		t.Fatalf("skip policy: %v", err)
	}
	if len(res.Samples) != 1 || len(res.Rejected) != 1 || res.Rejected[0].Index != 0 {
		t.Fatalf("unexpected skip result: %+v", res)
	}
}
