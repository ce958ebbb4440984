// Package catalog ingests binary catalogs (CSV, JSON or Parquet) into
// core.Binary rows in SI units.
package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	parquet "github.com/parquet-go/parquet-go"
	"github.com/signalsfoundry/gw-detectability/core"
)

// Format names a catalog encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// ParseFormat maps a name to a Format; an empty name infers it from path.
func ParseFormat(name, path string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch Format(key) {
	case FormatCSV, FormatJSON, FormatParquet:
		return Format(key), nil
	case "pq":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported catalog format %q", key)
	}
}

// Columns every catalog must provide.
var Columns = []string{"m1", "m2", "porb", "ecc", "dist"}

// Options control ingestion.
type Options struct {
	Units Units
	// Strict validates every row and fails on the first non-physical one
	// with a *core.DomainError carrying the row index. When false, rows pass
	// through untouched and the engine's reject policy decides.
	Strict bool
}

func (o Options) units() Units {
	if o.Units == (Units{}) {
		return SI
	}
	return o.Units
}

// record is the on-disk row shape before unit conversion.
type record struct {
	M1   float64 `json:"m1" parquet:"m1" validate:"gt=0"`
	M2   float64 `json:"m2" parquet:"m2" validate:"gt=0"`
	Porb float64 `json:"porb" parquet:"porb" validate:"gt=0"`
	Ecc  float64 `json:"ecc" parquet:"ecc" validate:"gte=0,lt=1"`
	Dist float64 `json:"dist" parquet:"dist" validate:"gt=0"`
}

var (
	vOnce sync.Once
	vInst *validator.Validate
)

func rowValidator() *validator.Validate {
	vOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// report json column names instead of Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		vInst = v
	})
	return vInst
}

func validateRecord(index int, r record) error {
	err := rowValidator().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		value, _ := fe.Value().(float64)
		return fmt.Errorf("catalog: %w", &core.DomainError{Index: index, Field: fe.Field(), Value: value})
	}
	return fmt.Errorf("catalog row %d: %w", index, err)
}

func convert(records []record, opts Options) ([]core.Binary, error) {
	u := opts.units()
	out := make([]core.Binary, len(records))
	for i, r := range records {
		out[i] = u.apply(r)
		if !opts.Strict {
			continue
		}
		if err := validateRecord(i, r); err != nil {
			return nil, err
		}
		// gt=0 lets +Inf through
		if err := out[i].Validate(i); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	return out, nil
}

// ReadCSV reads a catalog with a header row naming at least m1, m2, porb,
// ecc and dist (case-insensitive, any order). Other columns are ignored.
func ReadCSV(r io.Reader, opts Options) ([]core.Binary, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return []core.Binary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: read header: %w", err)
	}
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idx := make([]int, len(Columns))
	for i, col := range Columns {
		p, ok := pos[col]
		if !ok {
			return nil, fmt.Errorf("catalog: missing column %q", col)
		}
		idx[i] = p
	}

	var records []record
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: %w", row, err)
		}
		var vals [5]float64
		for i, p := range idx {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[p]), 64)
			if err != nil {
				return nil, fmt.Errorf("catalog row %d column %s: %w", row, Columns[i], err)
			}
			vals[i] = v
		}
		records = append(records, record{M1: vals[0], M2: vals[1], Porb: vals[2], Ecc: vals[3], Dist: vals[4]})
	}
	return convert(records, opts)
}

// ReadJSON reads a JSON array of {"m1","m2","porb","ecc","dist"} objects.
func ReadJSON(r io.Reader, opts Options) ([]core.Binary, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return []core.Binary{}, nil
		}
		return nil, fmt.Errorf("catalog: decode failed: %w", err)
	}
	return convert(records, opts)
}

// ReadParquet reads every row of a Parquet file with m1, m2, porb, ecc and
// dist double columns.
func ReadParquet(ra io.ReaderAt, opts Options) ([]core.Binary, error) {
	gr := parquet.NewGenericReader[record](ra)
	defer gr.Close()

	records := make([]record, 0, 1024)
	batch := make([]record, 1024)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			records = append(records, batch[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: parquet read: %w", err)
		}
	}
	return convert(records, opts)
}

// Open reads the catalog at path in the given format.
func Open(path string, format Format, opts Options) ([]core.Binary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		return ReadCSV(f, opts)
	case FormatJSON:
		return ReadJSON(f, opts)
	case FormatParquet:
		return ReadParquet(f, opts)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}
