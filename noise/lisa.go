// Package noise provides detector sensitivity curves for the
// detectability engine.
package noise

import (
	"math"

	"github.com/signalsfoundry/gw-detectability/core"
)

// Default LISA configuration: 2.5 million km arms, sky-averaged response.
const (
	LISAArmLength = 2.5e9 // m
	LISAMinFreq   = 1e-5  // Hz
	LISAMaxFreq   = 1.0   // Hz
)

// LISA is the analytic sky-averaged LISA sensitivity of Robson, Cornish &
// Liu (2019) without the galactic confusion term, which the engine
// computes separately as the foreground.
type LISA struct {
	ArmLength float64
	MinFreq   float64
	MaxFreq   float64
}

// NewLISA returns the default 2.5 Gm LISA curve valid on [1e-5, 1] Hz.
func NewLISA() *LISA {
	return &LISA{
		ArmLength: LISAArmLength,
		MinFreq:   LISAMinFreq,
		MaxFreq:   LISAMaxFreq,
	}
}

// Domain returns the frequency range the curve is defined on.
func (l *LISA) Domain() (float64, float64) { return l.MinFreq, l.MaxFreq }

// ASD returns sqrt(Sn(f)) in 1/sqrt(Hz).
func (l *LISA) ASD(f float64) (float64, error) {
	if math.IsNaN(f) || f < l.MinFreq || f > l.MaxFreq {
		return 0, &core.NoiseDomainError{Freq: f, Min: l.MinFreq, Max: l.MaxFreq}
	}
	return math.Sqrt(l.psd(f)), nil
}

func (l *LISA) psd(f float64) float64 {
	arm := l.ArmLength
	fStar := core.C / (2 * math.Pi * arm)

	// Optical metrology and test-mass acceleration noise.
	pOMS := 1.5e-11 * 1.5e-11 * (1 + math.Pow(2e-3/f, 4))
	pAcc := 3e-15 * 3e-15 * (1 + math.Pow(0.4e-3/f, 2)) * (1 + math.Pow(f/8e-3, 4))

	cosTerm := math.Cos(f / fStar)
	w4 := math.Pow(2*math.Pi*f, 4)

	return 10 / (3 * arm * arm) *
		(pOMS + 2*(1+cosTerm*cosTerm)*pAcc/w4) *
		(1 + 0.6*(f/fStar)*(f/fStar))
}

var _ core.NoiseCurve = (*LISA)(nil)
