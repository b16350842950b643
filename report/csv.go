package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/kernel"
)

// Sweep CSV column names.
const (
	ColTrial     = "Trial"
	ColN         = "N"
	ColRepeat    = "Repeat"
	ColElapsed   = "Elapsed"
	ColBandwidth = "Bandwidth_GBps"
	ColDotResult = "Dot_Result"
)

// MeasurementRecord formats m as a single-run row:
// mode,N,repeat,elapsed_seconds,bandwidth_GBps[,dot_result].
func MeasurementRecord(m harness.Measurement) []string {
	rec := []string{
		m.Kernel.String(),
		strconv.Itoa(m.N),
		strconv.Itoa(m.Repeat),
		formatElapsed(m.ElapsedSeconds()),
		formatFixed2(m.BandwidthGBps),
	}

	if m.Kernel == kernel.Dot {
		rec = append(rec, formatFixed2(m.DotResult))
	}

	return rec
}

// SweepHeader returns the sweep header for k. Dot_Result is only present
// for the dot kernel.
func SweepHeader(k kernel.Kernel) []string {
	h := []string{ColTrial, ColN, ColRepeat, ColElapsed, ColBandwidth}
	if k == kernel.Dot {
		h = append(h, ColDotResult)
	}

	return h
}

// SweepRecord formats one sweep row.
func SweepRecord(trial int, m harness.Measurement) []string {
	rec := []string{
		strconv.Itoa(trial),
		strconv.Itoa(m.N),
		strconv.Itoa(m.Repeat),
		formatElapsed(m.ElapsedSeconds()),
		formatFixed2(m.BandwidthGBps),
	}

	if m.Kernel == kernel.Dot {
		rec = append(rec, formatFixed2(m.DotResult))
	}

	return rec
}

// Stride CSV column names.
const (
	ColStride          = "Stride"
	ColStrideElapsed   = "Elapsed Time (s)"
	ColStrideBandwidth = "Bandwidth (GB/s)"
)

// StrideHeader returns the stride sweep header.
func StrideHeader() []string {
	return []string{ColStride, ColStrideElapsed, ColStrideBandwidth}
}

// StrideRecord formats one stride row: stride,elapsed_seconds,bandwidth_GBps.
func StrideRecord(m harness.StrideMeasurement) []string {
	return []string{
		strconv.Itoa(m.Stride),
		formatElapsed(m.ElapsedSeconds()),
		formatFixed2(m.BandwidthGBps),
	}
}

// ChaseRecord formats one pointer-chase row: N,elapsed_seconds.
func ChaseRecord(m harness.ChaseMeasurement) []string {
	return []string{strconv.Itoa(m.N), formatElapsed(m.ElapsedSeconds())}
}

func formatElapsed(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 6, 64)
}

func formatFixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// AppendFile is a CSV file opened for appending rows. It never writes a
// header.
type AppendFile struct {
	path string
	f    *os.File
}

// OpenAppend opens (creating if needed) path for appending.
func OpenAppend(path string) (*AppendFile, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}

	return &AppendFile{path: path, f: f}, nil
}

// Append writes one single-run row for m.
func (a *AppendFile) Append(m harness.Measurement) error {
	return a.write(MeasurementRecord(m))
}

// AppendChase writes one pointer-chase row for m.
func (a *AppendFile) AppendChase(m harness.ChaseMeasurement) error {
	return a.write(ChaseRecord(m))
}

func (a *AppendFile) write(rec []string) error {
	w := csv.NewWriter(a.f)
	if err := w.Write(rec); err != nil {
		return fmt.Errorf("write csv %s: %w", a.path, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv %s: %w", a.path, err)
	}

	return nil
}

// Close closes the file.
func (a *AppendFile) Close() error {
	return a.f.Close()
}

// table writes a header followed by rows, flushing after every record.
type table struct {
	w      *csv.Writer
	closer io.Closer
}

func newTable(w io.Writer, header []string) (*table, error) {
	t := &table{w: csv.NewWriter(w)}

	if err := t.writeRecord(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	return t, nil
}

func createTable(path string, header []string) (*table, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv %s: %w", path, err)
	}

	t, err := newTable(f, header)
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("csv %s: %w", path, err)
	}

	t.closer = f

	return t, nil
}

func (t *table) writeRecord(rec []string) error {
	if err := t.w.Write(rec); err != nil {
		return err
	}

	t.w.Flush()

	return t.w.Error()
}

// Close flushes and closes the underlying file, if the writer owns one.
func (t *table) Close() error {
	t.w.Flush()
	err := t.w.Error()

	if t.closer != nil {
		if cerr := t.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// SweepWriter writes a sweep CSV: one header, then one flushed row per
// trial.
type SweepWriter struct {
	*table
	kernel kernel.Kernel
}

// NewSweepWriter writes the header for k to w and returns a writer for the
// rows.
func NewSweepWriter(w io.Writer, k kernel.Kernel) (*SweepWriter, error) {
	t, err := newTable(w, SweepHeader(k))
	if err != nil {
		return nil, err
	}

	return &SweepWriter{table: t, kernel: k}, nil
}

// CreateSweep truncates or creates path and writes the header for k.
func CreateSweep(path string, k kernel.Kernel) (*SweepWriter, error) {
	t, err := createTable(path, SweepHeader(k))
	if err != nil {
		return nil, err
	}

	return &SweepWriter{table: t, kernel: k}, nil
}

// Write appends one row and flushes it.
func (s *SweepWriter) Write(trial int, m harness.Measurement) error {
	if m.Kernel != s.kernel {
		return fmt.Errorf("measurement kernel %v does not match sweep kernel %v",
			m.Kernel, s.kernel)
	}

	return s.writeRecord(SweepRecord(trial, m))
}

// StrideWriter writes a stride sweep CSV: one header, then one flushed row
// per stride.
type StrideWriter struct {
	*table
}

// NewStrideWriter writes the stride header to w.
func NewStrideWriter(w io.Writer) (*StrideWriter, error) {
	t, err := newTable(w, StrideHeader())
	if err != nil {
		return nil, err
	}

	return &StrideWriter{table: t}, nil
}

// CreateStride truncates or creates path and writes the stride header.
func CreateStride(path string) (*StrideWriter, error) {
	t, err := createTable(path, StrideHeader())
	if err != nil {
		return nil, err
	}

	return &StrideWriter{table: t}, nil
}

// WriteStride appends one row and flushes it.
func (s *StrideWriter) WriteStride(m harness.StrideMeasurement) error {
	return s.writeRecord(StrideRecord(m))
}
