package core

import "math"

// StrainSample holds the characteristic strain amplitude of one source and
// its square.
type StrainSample struct {
	H0        float64
	H0Squared float64
}

// Strain computes h0 = 8G/c^2 * (Mc/d) * (G/c^3 * 2pi/porb * Mc)^(2/3) for
// a source with chirp mass mChirp [kg], orbital period porb [s] and
// distance dist [m].
func Strain(mChirp, porb, dist float64) (StrainSample, error) {
	switch {
	case !positiveFinite(mChirp):
		return StrainSample{}, &DomainError{Index: -1, Field: "m_chirp", Value: mChirp}
	case !positiveFinite(porb):
		return StrainSample{}, &DomainError{Index: -1, Field: "porb", Value: porb}
	case !positiveFinite(dist):
		return StrainSample{}, &DomainError{Index: -1, Field: "dist", Value: dist}
	}
	h0 := strain(mChirp, porb, dist)
	return StrainSample{H0: h0, H0Squared: h0 * h0}, nil
}

// StrainAll computes strain for every binary, failing on the first
// non-physical source.
func StrainAll(binaries []Binary) ([]StrainSample, error) {
	out := make([]StrainSample, len(binaries))
	for i, b := range binaries {
		if err := b.Validate(i); err != nil {
			return nil, err
		}
		h0 := strain(b.ChirpMass(), b.Porb, b.Dist)
		out[i] = StrainSample{H0: h0, H0Squared: h0 * h0}
	}
	return out, nil
}

func strain(mChirp, porb, dist float64) float64 {
	return 8 * G / (C * C) * mChirp / dist *
		math.Pow(G/(C*C*C)*2*math.Pi/porb*mChirp, 2.0/3.0)
}
