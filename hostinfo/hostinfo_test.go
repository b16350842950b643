package hostinfo

import "testing"

func TestLevel(t *testing.T) {
	c := Caches{L1D: 32 << 10, L2: 1 << 20, L3: 32 << 20}

	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "L1"},
		{32 << 10, "L1"},
		{32<<10 + 1, "L2"},
		{1 << 20, "L2"},
		{8 << 20, "L3"},
		{64 << 20, "DRAM"},
	}

	for _, tt := range tests {
		if got := c.Level(tt.bytes); got != tt.want {
			t.Errorf("Level(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestLevelUnknown(t *testing.T) {
	if got := (Caches{}).Level(1024); got != "?" {
		t.Errorf("Level with no caches = %q, want ?", got)
	}

	// Missing L3 still classifies what fits in L2.
	c := Caches{L1D: 1024, L2: 4096}
	if got := c.Level(2048); got != "L2" {
		t.Errorf("Level(2048) = %q, want L2", got)
	}
	if got := c.Level(8192); got != "DRAM" {
		t.Errorf("Level(8192) = %q, want DRAM", got)
	}
}

func TestDetect(t *testing.T) {
	h := Detect()

	if h.Caches.L1D < 0 || h.Caches.L2 < 0 || h.Caches.L3 < 0 {
		t.Errorf("negative cache size: %+v", h.Caches)
	}
}
