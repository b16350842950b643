// Package hostinfo describes the CPU the benchmark ran on, in particular
// its data cache sizes, so that results can be attributed to a level of
// the memory hierarchy.
package hostinfo

import (
	"github.com/klauspost/cpuid/v2"
)

// Caches holds per-core L1 data and L2 sizes and the shared L3 size, in
// bytes. A zero field is unknown.
type Caches struct {
	L1D int64 `json:"l1d_bytes" yaml:"l1d_bytes"`
	L2  int64 `json:"l2_bytes" yaml:"l2_bytes"`
	L3  int64 `json:"l3_bytes" yaml:"l3_bytes"`
}

// Host is a snapshot of the CPU identification.
type Host struct {
	CPU     string `json:"cpu" yaml:"cpu"`
	Logical int    `json:"logical_cores" yaml:"logical_cores"`
	Caches  Caches `json:"caches" yaml:"caches"`
}

// Detect reads the CPU brand and cache sizes via CPUID.
func Detect() Host {
	return Host{
		CPU:     cpuid.CPU.BrandName,
		Logical: cpuid.CPU.LogicalCores,
		Caches: Caches{
			L1D: known(cpuid.CPU.Cache.L1D),
			L2:  known(cpuid.CPU.Cache.L2),
			L3:  known(cpuid.CPU.Cache.L3),
		},
	}
}

func known(size int) int64 {
	if size <= 0 {
		return 0
	}

	return int64(size)
}

// Level returns the smallest cache level that holds workingSet bytes:
// "L1", "L2", "L3" or "DRAM". It returns "?" when no cache size is known.
func (c Caches) Level(workingSet int64) string {
	if c.L1D == 0 && c.L2 == 0 && c.L3 == 0 {
		return "?"
	}

	levels := []struct {
		name string
		size int64
	}{
		{"L1", c.L1D},
		{"L2", c.L2},
		{"L3", c.L3},
	}

	for _, l := range levels {
		if l.size > 0 && workingSet <= l.size {
			return l.name
		}
	}

	return "DRAM"
}
