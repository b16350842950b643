package report

import (
	"math"
	"slices"

	"github.com/weiihann/bwprobe/hostinfo"
	"github.com/weiihann/bwprobe/kernel"
)

// SizeSummary aggregates all trials of one array size.
type SizeSummary struct {
	N                 int     `json:"n" yaml:"n"`
	Repeat            int     `json:"repeat" yaml:"repeat"`
	Trials            int     `json:"trials" yaml:"trials"`
	WorkingSetBytes   int64   `json:"working_set_bytes" yaml:"working_set_bytes"`
	Level             string  `json:"level" yaml:"level"`
	MeanElapsed       float64 `json:"mean_elapsed_seconds" yaml:"mean_elapsed_seconds"`
	MeanBandwidthGBps float64 `json:"mean_bandwidth_gbps" yaml:"mean_bandwidth_gbps"`
	MinBandwidthGBps  float64 `json:"min_bandwidth_gbps" yaml:"min_bandwidth_gbps"`
	MaxBandwidthGBps  float64 `json:"max_bandwidth_gbps" yaml:"max_bandwidth_gbps"`
	MeanDotResult     float64 `json:"mean_dot_result,omitempty" yaml:"mean_dot_result,omitempty"`
}

// Document is the full report: host, kernel and per-size summaries.
type Document struct {
	Kernel string        `json:"kernel" yaml:"kernel"`
	Host   hostinfo.Host `json:"host" yaml:"host"`
	Sizes  []SizeSummary `json:"sizes" yaml:"sizes"`
}

// NewDocument summarizes s for host.
func NewDocument(s *Sweep, host hostinfo.Host) Document {
	return Document{
		Kernel: s.Kernel.String(),
		Host:   host,
		Sizes:  Summarize(s, host.Caches),
	}
}

// Summarize groups rows by N, ascending, and averages each group. The
// working set counts both arrays.
func Summarize(s *Sweep, caches hostinfo.Caches) []SizeSummary {
	groups := make(map[int][]Row)
	for _, r := range s.Rows {
		groups[r.N] = append(groups[r.N], r)
	}

	sizes := make([]int, 0, len(groups))
	for n := range groups {
		sizes = append(sizes, n)
	}
	slices.Sort(sizes)

	out := make([]SizeSummary, 0, len(sizes))

	for _, n := range sizes {
		rows := groups[n]
		ws := int64(2 * n * 8)

		sum := SizeSummary{
			N:                n,
			Repeat:           rows[0].Repeat,
			Trials:           len(rows),
			WorkingSetBytes:  ws,
			Level:            caches.Level(ws),
			MinBandwidthGBps: math.Inf(1),
			MaxBandwidthGBps: math.Inf(-1),
		}

		var elapsed, bw, dot float64
		for _, r := range rows {
			elapsed += r.Elapsed
			bw += r.BandwidthGBps
			dot += r.DotResult
			sum.MinBandwidthGBps = math.Min(sum.MinBandwidthGBps, r.BandwidthGBps)
			sum.MaxBandwidthGBps = math.Max(sum.MaxBandwidthGBps, r.BandwidthGBps)
		}

		count := float64(len(rows))
		sum.MeanElapsed = elapsed / count
		sum.MeanBandwidthGBps = bw / count

		if s.Kernel == kernel.Dot {
			sum.MeanDotResult = dot / count
		}

		out = append(out, sum)
	}

	return out
}

func findPeak(sizes []SizeSummary) float64 {
	peak := 0.0
	for _, s := range sizes {
		if s.MeanBandwidthGBps > peak {
			peak = s.MeanBandwidthGBps
		}
	}

	return peak
}
