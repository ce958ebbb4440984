package noise

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/signalsfoundry/gw-detectability/core"
	"gonum.org/v1/gonum/interp"
)

var (
	ErrTooFewPoints   = errors.New("noise table needs at least two points")
	ErrBadFrequency   = errors.New("noise table frequencies must be positive and finite")
	ErrNotIncreasing  = errors.New("noise table frequencies must be strictly increasing")
	ErrNonPositiveASD = errors.New("noise table values must be positive and finite")
)

// Tabulated is a noise curve interpolated piecewise-linearly in
// log10(f)-log10(ASD) space. It is built once and is read-only afterwards.
type Tabulated struct {
	minFreq, maxFreq float64
	fit              interp.PiecewiseLinear
}

// NewTabulated fits a curve through (freqs[i], asd[i]). freqs must be
// strictly increasing and every value positive and finite.
func NewTabulated(freqs, asd []float64) (*Tabulated, error) {
	if len(freqs) != len(asd) {
		return nil, fmt.Errorf("noise table: %d frequencies but %d values", len(freqs), len(asd))
	}
	if len(freqs) < 2 {
		return nil, ErrTooFewPoints
	}
	xs := make([]float64, len(freqs))
	ys := make([]float64, len(asd))
	for i := range freqs {
		if !(freqs[i] > 0) || math.IsInf(freqs[i], 1) {
			return nil, fmt.Errorf("noise table row %d: frequency %g: %w", i, freqs[i], ErrBadFrequency)
		}
		if i > 0 && !(freqs[i] > freqs[i-1]) {
			return nil, fmt.Errorf("noise table row %d: %w", i, ErrNotIncreasing)
		}
		if !(asd[i] > 0) || math.IsInf(asd[i], 1) {
			return nil, fmt.Errorf("noise table row %d: value %g: %w", i, asd[i], ErrNonPositiveASD)
		}
		xs[i] = math.Log10(freqs[i])
		ys[i] = math.Log10(asd[i])
	}
	t := &Tabulated{minFreq: freqs[0], maxFreq: freqs[len(freqs)-1]}
	if err := t.fit.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("noise table: %w", err)
	}
	return t, nil
}

// Domain returns the tabulated frequency range.
func (t *Tabulated) Domain() (float64, float64) { return t.minFreq, t.maxFreq }

// ASD interpolates the table at f. Frequencies outside the table are
// rejected rather than extrapolated.
func (t *Tabulated) ASD(f float64) (float64, error) {
	if math.IsNaN(f) || f < t.minFreq || f > t.maxFreq {
		return 0, &core.NoiseDomainError{Freq: f, Min: t.minFreq, Max: t.maxFreq}
	}
	return math.Pow(10, t.fit.Predict(math.Log10(f))), nil
}

// Sample evaluates curve at n log-spaced frequencies across [lo, hi] and
// returns the result as a Tabulated curve, e.g. to freeze an analytic
// model into an interpolant.
func Sample(curve core.NoiseCurve, lo, hi float64, n int) (*Tabulated, error) {
	if n < 2 || !(lo > 0) || !(hi > lo) {
		return nil, fmt.Errorf("noise sample: invalid grid [%g, %g] with %d points", lo, hi, n)
	}
	freqs := make([]float64, n)
	asd := make([]float64, n)
	step := (math.Log10(hi) - math.Log10(lo)) / float64(n-1)
	for i := range freqs {
		f := math.Pow(10, math.Log10(lo)+float64(i)*step)
		if i == n-1 {
			f = hi
		}
		v, err := curve.ASD(f)
		if err != nil {
			return nil, fmt.Errorf("noise sample: %w", err)
		}
		freqs[i] = f
		asd[i] = v
	}
	// Guard against pow rounding collapsing neighbouring points.
	for i := 1; i < n; i++ {
		if freqs[i] <= freqs[i-1] {
			return nil, fmt.Errorf("noise sample: grid too dense for [%g, %g]", lo, hi)
		}
	}
	return NewTabulated(freqs, asd)
}

// LoadCSV reads a two-column (frequency [Hz], ASD [1/sqrt(Hz)]) table.
// Blank lines and lines starting with '#' are skipped, as is a leading
// header row whose first field is not numeric.
func LoadCSV(r io.Reader) (*Tabulated, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var freqs, asd []float64
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("noise table: %w", err)
		}
		line++
		if len(rec) < 2 {
			return nil, fmt.Errorf("noise table row %d: want 2 columns, got %d", line, len(rec))
		}
		f, ferr := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		v, verr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if ferr != nil || verr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("noise table row %d: non-numeric value", line)
		}
		freqs = append(freqs, f)
		asd = append(asd, v)
	}
	return NewTabulated(freqs, asd)
}

var _ core.NoiseCurve = (*Tabulated)(nil)
