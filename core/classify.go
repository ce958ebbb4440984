package core

// CircularEccentricityMax is the largest eccentricity for which a source is
// treated as circular and evaluated at the single n=2 harmonic.
const CircularEccentricityMax = 0.1

// Regime names the harmonic treatment a source receives.
type Regime string

const (
	RegimeCircular  Regime = "circular"
	RegimeEccentric Regime = "eccentric"
)

// Partition splits catalog positions by regime. Both slices are in
// ascending catalog order and together cover every classified index once.
type Partition struct {
	Circular  []int
	Eccentric []int
}

// Len returns the number of classified sources.
func (p Partition) Len() int { return len(p.Circular) + len(p.Eccentric) }

// ClassifyEccentricity reports the regime of a single eccentricity.
func ClassifyEccentricity(ecc float64) Regime {
	if ecc > CircularEccentricityMax {
		return RegimeEccentric
	}
	return RegimeCircular
}

// Classify partitions eccentricities into circular (ecc <= 0.1) and
// eccentric (ecc > 0.1) index sets.
func Classify(eccs []float64) Partition {
	p := Partition{
		Circular:  make([]int, 0, len(eccs)),
		Eccentric: make([]int, 0),
	}
	for i, e := range eccs {
		if ClassifyEccentricity(e) == RegimeEccentric {
			p.Eccentric = append(p.Eccentric, i)
		} else {
			p.Circular = append(p.Circular, i)
		}
	}
	return p
}

// classifyIndices partitions only the given catalog positions.
func classifyIndices(binaries []Binary, indices []int) Partition {
	p := Partition{
		Circular:  make([]int, 0, len(indices)),
		Eccentric: make([]int, 0),
	}
	for _, i := range indices {
		if ClassifyEccentricity(binaries[i].Ecc) == RegimeEccentric {
			p.Eccentric = append(p.Eccentric, i)
		} else {
			p.Circular = append(p.Circular, i)
		}
	}
	return p
}
