package kernel

// StridedDaxpy computes y[i*stride] += alpha * x[i*stride] for i in [0, n).
// Only every stride-th element of x and y is touched.
func StridedDaxpy(alpha float64, x, y []float64, n, stride int) {
	if n <= 0 {
		return
	}

	last := (n - 1) * stride
	_, _ = x[last], y[last]

	for i := 0; i <= last; i += stride {
		y[i] += alpha * x[i]
	}
}

// Chase follows steps dependent loads through next, starting at index 0,
// and returns the index reached. Every load depends on the previous one, so
// the loop cannot be overlapped by the CPU and measures load latency.
func Chase(next []int64, steps int) int64 {
	var i int64
	for s := 0; s < steps; s++ {
		i = next[i]
	}

	return i
}
