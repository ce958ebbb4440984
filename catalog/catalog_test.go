package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	parquet "github.com/parquet-go/parquet-go"
	"github.com/signalsfoundry/gw-detectability/core"
	"github.com/stretchr/testify/require"
)

func TestReadCSVReordersColumnsAndIgnoresExtras(t *testing.T) {
	in := strings.Join([]string{
		"# generated by popsynth",
		"ID,Dist,ecc,PORB,m2,m1",
		"a,1000,0.0,3600,2,1",
		"b,2000,0.5,7200,4,3",
	}, "\n")

	got, err := ReadCSV(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Equal(t, []core.Binary{
		{M1: 1, M2: 2, Porb: 3600, Ecc: 0, Dist: 1000},
		{M1: 3, M2: 4, Porb: 7200, Ecc: 0.5, Dist: 2000},
	}, got)
}

func TestReadCSVAppliesUnits(t *testing.T) {
	units, err := ParseUnits("msun", "day", "kpc")
	require.NoError(t, err)

	got, err := ReadCSV(strings.NewReader("m1,m2,porb,ecc,dist\n0.5,0.5,1,0.2,1\n"), Options{Units: units})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.InDelta(t, 0.5*core.Msun, got[0].M1, 1)
	require.Equal(t, core.Day, got[0].Porb)
	require.Equal(t, 0.2, got[0].Ecc)
	require.InDelta(t, 1e3*core.Parsec, got[0].Dist, 1)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("m1,m2,porb,dist\n1,1,1,1\n"), Options{})
	require.ErrorContains(t, err, `missing column "ecc"`)
}

func TestReadCSVBadNumber(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("m1,m2,porb,ecc,dist\n1,1,x,0,1\n"), Options{})
	require.ErrorContains(t, err, "row 0 column porb")
}

func TestReadCSVEmpty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""), Options{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestStrictRejectsNonPhysicalRow(t *testing.T) {
	in := "m1,m2,porb,ecc,dist\n1,1,1,0,1\n1,1,1,1.0,1\n"

	_, err := ReadCSV(strings.NewReader(in), Options{Strict: true})
	require.ErrorIs(t, err, core.ErrDomain)
	var derr *core.DomainError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, 1, derr.Index)
	require.Equal(t, "ecc", derr.Field)
	require.Equal(t, 1.0, derr.Value)
}

func TestStrictRejectsInfiniteDistance(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("m1,m2,porb,ecc,dist\n1,1,1,0,+Inf\n"), Options{Strict: true})
	var derr *core.DomainError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, "dist", derr.Field)
}

func TestLenientPassesRowsThrough(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("m1,m2,porb,ecc,dist\n-1,1,1,0,1\n"), Options{})
	require.NoError(t, err)
	require.Equal(t, -1.0, got[0].M1)
}

func TestReadJSON(t *testing.T) {
	in := `[{"m1":1,"m2":2,"porb":3,"ecc":0.4,"dist":5}]`
	got, err := ReadJSON(strings.NewReader(in), Options{Strict: true})
	require.NoError(t, err)
	require.Equal(t, []core.Binary{{M1: 1, M2: 2, Porb: 3, Ecc: 0.4, Dist: 5}}, got)
}

func TestReadJSONStrictFieldName(t *testing.T) {
	in := `[{"m1":1,"m2":0,"porb":3,"ecc":0.4,"dist":5}]`
	_, err := ReadJSON(strings.NewReader(in), Options{Strict: true})
	var derr *core.DomainError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, "m2", derr.Field)
	require.Equal(t, 0, derr.Index)
}

func TestReadParquetRoundTrip(t *testing.T) {
	rows := []record{
		{M1: 1, M2: 2, Porb: 3, Ecc: 0, Dist: 4},
		{M1: 5, M2: 6, Porb: 7, Ecc: 0.9, Dist: 8},
	}
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[record](&buf)
	_, err := w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), Options{})
	require.NoError(t, err)
	require.Equal(t, []core.Binary{
		{M1: 1, M2: 2, Porb: 3, Ecc: 0, Dist: 4},
		{M1: 5, M2: 6, Porb: 7, Ecc: 0.9, Dist: 8},
	}, got)
}

func TestOpenDispatchesOnFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"m1":1,"m2":1,"porb":1,"ecc":0,"dist":1}]`), 0o644))

	format, err := ParseFormat("", path)
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	got, err := Open(path, format, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PARQUET", "x.csv")
	require.NoError(t, err)
	require.Equal(t, FormatParquet, f)

	_, err = ParseFormat("", "catalog.h5")
	require.Error(t, err)
}

func TestParseUnitsUnknown(t *testing.T) {
	_, err := ParseUnits("lb", "", "")
	require.ErrorContains(t, err, "unknown mass unit")

	u, err := ParseUnits("", "", "")
	require.NoError(t, err)
	require.Equal(t, SI, u)
}
