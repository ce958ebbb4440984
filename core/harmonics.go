package core

import "math"

// PetersG returns g(n, e), the fraction of GW power an eccentric Keplerian
// orbit radiates into the n-th orbital harmonic (Peters & Mathews 1963).
// g(2, 0) = 1 and g(n, 0) = 0 for every other n.
//
// Invalid eccentricities are not rejected here; they propagate as whatever
// the Bessel evaluation yields (NaN for NaN input).
func PetersG(n int, ecc float64) float64 {
	if n < 1 {
		return 0
	}
	nf := float64(n)
	x := nf * ecc

	jm2 := math.Jn(n-2, x)
	jm1 := math.Jn(n-1, x)
	j0 := math.Jn(n, x)
	jp1 := math.Jn(n+1, x)
	jp2 := math.Jn(n+2, x)

	a := jm2 - 2*ecc*jm1 + 2/nf*j0 + 2*ecc*jp1 - jp2
	b := jm2 - 2*j0 + jp2

	return math.Pow(nf, 4) / 32 * (a*a + (1-ecc*ecc)*b*b + 4/(3*nf*nf)*j0*j0)
}

// HarmonicWeights returns g(n, e)/n^2 for n = 1 .. nHarmonic-1; entry i
// holds harmonic i+1. nHarmonic < 2 gives an empty table.
func HarmonicWeights(ecc float64, nHarmonic int) []float64 {
	if nHarmonic < 2 {
		return []float64{}
	}
	out := make([]float64, nHarmonic-1)
	for i := range out {
		n := i + 1
		out[i] = PetersG(n, ecc) / float64(n*n)
	}
	return out
}

// HarmonicFrequencies returns the GW frequencies n/porb for
// n = 1 .. nHarmonic-1, aligned with HarmonicWeights.
func HarmonicFrequencies(porb float64, nHarmonic int) []float64 {
	if nHarmonic < 2 {
		return []float64{}
	}
	out := make([]float64, nHarmonic-1)
	for i := range out {
		out[i] = float64(i+1) / porb
	}
	return out
}

// EnhancementFactor is the Peters & Mathews F(e), the closed form of
// the sum of g(n, e) over all harmonics.
func EnhancementFactor(ecc float64) float64 {
	e2 := ecc * ecc
	return (1 + 73.0/24.0*e2 + 37.0/96.0*e2*e2) / math.Pow(1-e2, 3.5)
}
