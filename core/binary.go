package core

import "math"

// Binary is one row of an input catalog. All quantities are SI: masses in
// kg, orbital period in s, distance in m. Binaries are treated as
// read-only once ingested.
type Binary struct {
	M1   float64 `json:"m1" parquet:"m1"`
	M2   float64 `json:"m2" parquet:"m2"`
	Porb float64 `json:"porb" parquet:"porb"`
	Ecc  float64 `json:"ecc" parquet:"ecc"`
	Dist float64 `json:"dist" parquet:"dist"`
}

// Validate checks that b describes a physical system. index is reported
// back in the DomainError so callers can locate the row.
func (b Binary) Validate(index int) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"m1", b.M1},
		{"m2", b.M2},
		{"porb", b.Porb},
		{"dist", b.Dist},
	} {
		if !positiveFinite(f.v) {
			return &DomainError{Index: index, Field: f.name, Value: f.v}
		}
	}
	if !(b.Ecc >= 0 && b.Ecc < 1) {
		return &DomainError{Index: index, Field: "ecc", Value: b.Ecc}
	}
	return nil
}

// ChirpMass returns the binary's chirp mass in kg.
func (b Binary) ChirpMass() float64 { return ChirpMass(b.M1, b.M2) }

// ChirpMass computes (m1*m2)^(3/5)/(m1+m2)^(1/5) in the units of mass
// supplied.
func ChirpMass(m1, m2 float64) float64 {
	return math.Pow(m1*m2, 3.0/5.0) / math.Pow(m1+m2, 1.0/5.0)
}

// PeakGWFrequency returns the frequency (Hz) at which an eccentric binary
// radiates most of its GW power. The separation follows from Kepler's third
// law; the (1+e)^1.1954 scaling is the Wen (2003) fit.
func PeakGWFrequency(m1, m2, ecc, porb float64) float64 {
	mtot := m1 + m2
	sep := math.Cbrt(G / (4 * math.Pi * math.Pi) * porb * porb * mtot)
	return math.Sqrt(G*mtot) / math.Pi * math.Pow(1+ecc, 1.1954) /
		math.Pow(sep*(1-ecc)*(1-ecc), 1.5)
}

// Eccentricities pulls the ecc column out of a catalog.
func Eccentricities(binaries []Binary) []float64 {
	out := make([]float64, len(binaries))
	for i, b := range binaries {
		out[i] = b.Ecc
	}
	return out
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
