// Package tableio writes engine results as CSV or Parquet tables.
package tableio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	parquet "github.com/parquet-go/parquet-go"
	"github.com/signalsfoundry/gw-detectability/core"
)

// Column headers used by the CSV writers.
var (
	SNRHeader = []string{"gw_freq", "SNR"}
	PSDHeader = []string{"freq", "PSD"}
)

// Format names an output encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts csv or parquet.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatParquet:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", name)
	}
}

// Ext is the file extension for f.
func (f Format) Ext() string { return "." + string(f) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func writeRows(w io.Writer, header []string, n int, row func(i int) (float64, float64)) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, 2)
	for i := 0; i < n; i++ {
		a, b := row(i)
		rec[0], rec[1] = formatFloat(a), formatFloat(b)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSNRCSV writes the detectable-source table with a gw_freq,SNR header.
func WriteSNRCSV(w io.Writer, rows []core.SNRRow) error {
	return writeRows(w, SNRHeader, len(rows), func(i int) (float64, float64) {
		return rows[i].GWFreq, rows[i].SNR
	})
}

// WritePSDCSV writes per-source power samples with a freq,PSD header.
func WritePSDCSV(w io.Writer, samples []core.FrequencyPowerSample) error {
	return writeRows(w, PSDHeader, len(samples), func(i int) (float64, float64) {
		return samples[i].Freq, samples[i].PSD
	})
}

// WriteForegroundCSV writes a binned foreground spectrum; it shares the
// freq,PSD layout with WritePSDCSV.
func WriteForegroundCSV(w io.Writer, spectrum core.ForegroundSpectrum) error {
	return WritePSDCSV(w, spectrum)
}

// Compression returns the parquet codec option for name (snappy, zstd or
// gzip). Unknown and empty names fall back to snappy.
func Compression(name string) parquet.WriterOption {
	switch strings.ToLower(name) {
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "gzip", "gz":
		return parquet.Compression(&parquet.Gzip)
	default:
		return parquet.Compression(&parquet.Snappy)
	}
}

// WriteParquet writes rows as a single Parquet file. The schema comes from
// T's parquet struct tags.
func WriteParquet[T any](w io.Writer, rows []T, opts ...parquet.WriterOption) error {
	if len(opts) == 0 {
		opts = []parquet.WriterOption{Compression("")}
	}
	pw := parquet.NewGenericWriter[T](w, opts...)
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return fmt.Errorf("parquet write: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("parquet close: %w", err)
	}
	return nil
}

// SNR writes rows in format f.
func SNR(w io.Writer, f Format, rows []core.SNRRow) error {
	if f == FormatParquet {
		return WriteParquet(w, rows)
	}
	return WriteSNRCSV(w, rows)
}

// PSD writes samples in format f.
func PSD(w io.Writer, f Format, samples []core.FrequencyPowerSample) error {
	if f == FormatParquet {
		return WriteParquet(w, samples)
	}
	return WritePSDCSV(w, samples)
}

// Foreground writes spectrum in format f.
func Foreground(w io.Writer, f Format, spectrum core.ForegroundSpectrum) error {
	if f == FormatParquet {
		return WriteParquet(w, []core.FrequencyPowerSample(spectrum))
	}
	return WriteForegroundCSV(w, spectrum)
}
