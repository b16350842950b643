// Package report writes probe measurements as CSV and turns sweep CSVs
// into per-size summary tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/weiihann/bwprobe/harness"
	"github.com/weiihann/bwprobe/kernel"
)

// Formats accepted by Write.
const (
	FormatMarkdown = "markdown"
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Write renders doc in the named format.
func Write(w io.Writer, format string, doc Document) error {
	switch format {
	case FormatMarkdown, "":
		return Generate(w, doc)
	case FormatTable:
		return GenerateTable(w, doc)
	case FormatJSON:
		return GenerateJSON(w, doc)
	case FormatYAML:
		return GenerateYAML(w, doc)
	default:
		return fmt.Errorf("unknown report format %q (use markdown, table, json or yaml)", format)
	}
}

// Generate writes a markdown table of per-size averages.
func Generate(w io.Writer, doc Document) error {
	if len(doc.Sizes) == 0 {
		return fmt.Errorf("no results to report")
	}

	peak := findPeak(doc.Sizes)
	dot := doc.Kernel == kernel.Dot.String()

	fmt.Fprintf(w, "## Bandwidth Sweep (%s)\n", doc.Kernel)
	fmt.Fprintln(w)

	if doc.Host.CPU != "" {
		fmt.Fprintf(w, "CPU: %s\n", doc.Host.CPU)
	}

	fmt.Fprintf(w, "Caches: L1d %s, L2 %s, L3 %s\n",
		formatBytes(doc.Host.Caches.L1D),
		formatBytes(doc.Host.Caches.L2),
		formatBytes(doc.Host.Caches.L3),
	)
	fmt.Fprintf(w, "Peak mean bandwidth: **%.2f GB/s**\n", peak)
	fmt.Fprintln(w)

	header := "| N | Working Set | Level | Repeat | Trials | Elapsed " +
		"| Mean GB/s | Min GB/s | Max GB/s | of Peak |"
	rule := "|---|-------------|-------|--------|--------|---------" +
		"|-----------|----------|----------|---------|"

	if dot {
		header += " Dot Result |"
		rule += "------------|"
	}

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, rule)

	for _, s := range doc.Sizes {
		fmt.Fprintf(w, "| %d | %s | %s | %d | %d | %s | %.2f | %.2f | %.2f | %s |",
			s.N,
			formatBytes(s.WorkingSetBytes),
			s.Level,
			s.Repeat,
			s.Trials,
			formatSeconds(s.MeanElapsed),
			s.MeanBandwidthGBps,
			s.MinBandwidthGBps,
			s.MaxBandwidthGBps,
			formatShare(s.MeanBandwidthGBps, peak),
		)

		if dot {
			fmt.Fprintf(w, " %.2f |", s.MeanDotResult)
		}

		fmt.Fprintln(w)
	}

	return nil
}

// GenerateTable writes the summary as a bordered terminal table.
func GenerateTable(w io.Writer, doc Document) error {
	if len(doc.Sizes) == 0 {
		return fmt.Errorf("no results to report")
	}

	re := lipgloss.NewRenderer(w)
	headerStyle := re.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := re.NewStyle().Padding(0, 1)
	titleStyle := re.NewStyle().Bold(true)

	peak := findPeak(doc.Sizes)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("N", "Working Set", "Level", "Repeat", "Trials",
			"Elapsed", "Mean GB/s", "Min GB/s", "Max GB/s", "of Peak").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	for _, s := range doc.Sizes {
		t.Row(
			strconv.Itoa(s.N),
			formatBytes(s.WorkingSetBytes),
			s.Level,
			strconv.Itoa(s.Repeat),
			strconv.Itoa(s.Trials),
			formatSeconds(s.MeanElapsed),
			fmt.Sprintf("%.2f", s.MeanBandwidthGBps),
			fmt.Sprintf("%.2f", s.MinBandwidthGBps),
			fmt.Sprintf("%.2f", s.MaxBandwidthGBps),
			formatShare(s.MeanBandwidthGBps, peak),
		)
	}

	fmt.Fprintln(w, titleStyle.Render("Bandwidth sweep ("+doc.Kernel+")"))
	fmt.Fprintln(w, t.Render())

	return nil
}

// GenerateJSON writes doc as indented JSON.
func GenerateJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// GenerateYAML writes doc as YAML.
func GenerateYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return err
	}

	return enc.Close()
}

// WriteMeasurement prints the plain-text summary of one probe.
func WriteMeasurement(w io.Writer, m harness.Measurement) {
	fmt.Fprintf(w, "Mode: %s | N = %d | Repeat = %d\n", m.Kernel, m.N, m.Repeat)
	fmt.Fprintf(w, "Elapsed Time: %.6f s | Bandwidth: %.2f GB/s\n",
		m.ElapsedSeconds(), m.BandwidthGBps)

	if m.Kernel == kernel.Dot {
		fmt.Fprintf(w, "Dot Product Result: %.2f\n", m.DotResult)
	}
}

// WriteStride prints the plain-text summary of one strided pass.
func WriteStride(w io.Writer, m harness.StrideMeasurement) {
	fmt.Fprintf(w, "Stride = %d, N = %s\n", m.Stride, humanize.Comma(int64(m.N)))
	fmt.Fprintf(w, "Elapsed time: %.6f sec\n", m.ElapsedSeconds())
	fmt.Fprintf(w, "Estimated Bandwidth: %.2f GB/s\n", m.BandwidthGBps)
}

// WriteChase prints the plain-text summary of one pointer chase.
func WriteChase(w io.Writer, m harness.ChaseMeasurement) {
	fmt.Fprintf(w, "Pointer Chase Test (N=%s)\n", humanize.Comma(int64(m.N)))
	fmt.Fprintf(w, "Elapsed time: %.6f sec | %.2f ns/load\n",
		m.ElapsedSeconds(), m.NanosPerLoad())
}

func formatSeconds(sec float64) string {
	switch {
	case sec < 1e-3:
		return fmt.Sprintf("%.2fµs", sec*1e6)
	case sec < 1:
		return fmt.Sprintf("%.2fms", sec*1e3)
	default:
		return fmt.Sprintf("%.2fs", sec)
	}
}

func formatBytes(b int64) string {
	if b <= 0 {
		return "-"
	}

	return humanize.IBytes(uint64(b))
}

func formatShare(v, peak float64) string {
	if peak <= 0 {
		return "-"
	}

	return fmt.Sprintf("%.0f%%", 100*v/peak)
}
