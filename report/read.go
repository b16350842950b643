package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/weiihann/bwprobe/kernel"
)

// ErrMalformed is returned by ReadSweep for input that is not a sweep CSV.
var ErrMalformed = errors.New("malformed sweep csv")

// Row is one parsed sweep row.
type Row struct {
	Trial         int
	N             int
	Repeat        int
	Elapsed       float64
	BandwidthGBps float64
	DotResult     float64
}

// Sweep is a parsed sweep CSV. The kernel is inferred from the header:
// a Dot_Result column means dot, its absence means add.
type Sweep struct {
	Kernel kernel.Kernel
	Rows   []Row
}

// ReadSweep parses a CSV written by SweepWriter.
func ReadSweep(r io.Reader) (*Sweep, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var k kernel.Kernel

	switch {
	case slices.Equal(header, SweepHeader(kernel.Dot)):
		k = kernel.Dot
	case slices.Equal(header, SweepHeader(kernel.Add)):
		k = kernel.Add
	default:
		return nil, fmt.Errorf("%w: unexpected header %v", ErrMalformed, header)
	}

	sweep := &Sweep{Kernel: k}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}

		sweep.Rows = append(sweep.Rows, row)
	}

	return sweep, nil
}

func parseRow(rec []string) (Row, error) {
	var (
		row Row
		err error
	)

	if row.Trial, err = strconv.Atoi(rec[0]); err != nil {
		return row, fmt.Errorf("trial: %w", err)
	}
	if row.N, err = strconv.Atoi(rec[1]); err != nil {
		return row, fmt.Errorf("n: %w", err)
	}
	if row.Repeat, err = strconv.Atoi(rec[2]); err != nil {
		return row, fmt.Errorf("repeat: %w", err)
	}
	if row.Elapsed, err = strconv.ParseFloat(rec[3], 64); err != nil {
		return row, fmt.Errorf("elapsed: %w", err)
	}
	if row.BandwidthGBps, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return row, fmt.Errorf("bandwidth: %w", err)
	}

	if len(rec) > 5 {
		if row.DotResult, err = strconv.ParseFloat(rec[5], 64); err != nil {
			return row, fmt.Errorf("dot result: %w", err)
		}
	}

	return row, nil
}
