package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain marks non-physical input: non-positive masses, period,
	// distance or observation time, or an eccentricity outside [0,1).
	ErrDomain = errors.New("non-physical input")
	// ErrNoiseDomain marks a frequency the noise curve cannot evaluate.
	ErrNoiseDomain = errors.New("frequency outside noise curve domain")
)

// DomainError reports a single non-physical input value. Index is the
// position of the offending source in the catalog, or -1 when the value is
// not tied to a source (e.g. the observation time).
type DomainError struct {
	Index int
	Field string
	Value float64
}

func (e *DomainError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s=%g", ErrDomain, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: source %d: %s=%g", ErrDomain, e.Index, e.Field, e.Value)
}

// Is lets errors.Is(err, ErrDomain) match any DomainError.
func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// NoiseDomainError reports a noise-curve query outside [Min, Max] or a
// curve value that is not a finite positive amplitude.
type NoiseDomainError struct {
	Freq     float64
	Min, Max float64
}

func (e *NoiseDomainError) Error() string {
	return fmt.Sprintf("%s: f=%g Hz not in [%g, %g] Hz", ErrNoiseDomain, e.Freq, e.Min, e.Max)
}

func (e *NoiseDomainError) Is(target error) bool { return target == ErrNoiseDomain }

// Rejection records a source dropped under RejectSkip.
type Rejection struct {
	Index int
	Err   error
}
