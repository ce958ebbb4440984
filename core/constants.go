package core

// Physical constants in SI units. These are the CODATA-era values the
// population-synthesis catalogs were produced with; keep them in sync with
// the catalog producer rather than updating to newer releases.
const (
	G         = 6.67384e-11   // m^3 kg^-1 s^-2
	C         = 2.99792458e8  // m s^-1
	Parsec    = 3.08567758e16 // m
	Rsun      = 6.955e8       // m
	Msun      = 1.9891e30     // kg
	Day       = 86400.0       // s
	SecInYear = 3.15569e7     // s

	DayInYear = 365.242
	RsunInAU  = 215.0954

	// GeoMass converts kilograms to metres (G/c^2).
	GeoMass = G / (C * C)
)

// DefaultObservationTime is the nominal four-year LISA mission in seconds.
const DefaultObservationTime = 4 * SecInYear

// DefaultHarmonics is the harmonic count used when none is configured.
// Harmonics 1..DefaultHarmonics-1 are evaluated for eccentric sources.
const DefaultHarmonics = 10

// SNRThreshold is the minimum SNR (exclusive) for a source to be reported.
const SNRThreshold = 1.0
