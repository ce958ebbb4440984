package catalog

import (
	"fmt"
	"strings"

	"github.com/signalsfoundry/gw-detectability/core"
)

// Units are multiplicative factors that convert catalog columns to SI.
type Units struct {
	Mass     float64 // kg per catalog mass unit
	Period   float64 // s per catalog period unit
	Distance float64 // m per catalog distance unit
}

// SI leaves every column untouched.
var SI = Units{Mass: 1, Period: 1, Distance: 1}

var (
	massUnits = map[string]float64{
		"kg":   1,
		"msun": core.Msun,
	}
	periodUnits = map[string]float64{
		"s":   1,
		"hr":  3600,
		"day": core.Day,
		"yr":  core.SecInYear,
	}
	distanceUnits = map[string]float64{
		"m":    1,
		"rsun": core.Rsun,
		"pc":   core.Parsec,
		"kpc":  1e3 * core.Parsec,
		"mpc":  1e6 * core.Parsec,
	}
)

// ParseUnits resolves named units (kg|msun, s|hr|day|yr, m|rsun|pc|kpc|mpc).
// Empty names mean SI.
func ParseUnits(mass, period, distance string) (Units, error) {
	var u Units
	var err error
	if u.Mass, err = lookupUnit("mass", massUnits, mass, "kg"); err != nil {
		return Units{}, err
	}
	if u.Period, err = lookupUnit("period", periodUnits, period, "s"); err != nil {
		return Units{}, err
	}
	if u.Distance, err = lookupUnit("distance", distanceUnits, distance, "m"); err != nil {
		return Units{}, err
	}
	return u, nil
}

func lookupUnit(kind string, table map[string]float64, name, def string) (float64, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = def
	}
	v, ok := table[key]
	if !ok {
		return 0, fmt.Errorf("unknown %s unit %q", kind, name)
	}
	return v, nil
}

func (u Units) apply(r record) core.Binary {
	return core.Binary{
		M1:   r.M1 * u.Mass,
		M2:   r.M2 * u.Mass,
		Porb: r.Porb * u.Period,
		Ecc:  r.Ecc,
		Dist: r.Dist * u.Distance,
	}
}
