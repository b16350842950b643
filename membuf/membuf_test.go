package membuf

import (
	"errors"
	"math"
	"testing"
)

func TestNewZeroed(t *testing.T) {
	v, err := New(4096)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer v.Close()

	if v.Len() != 4096 {
		t.Errorf("Len() = %d, want 4096", v.Len())
	}

	data := v.Float64s()
	for i, x := range data {
		if x != 0 {
			t.Fatalf("element %d = %v, want 0", i, x)
		}
	}

	data[0] = 1.5
	data[len(data)-1] = 2.5

	if v.Float64s()[0] != 1.5 || v.Float64s()[4095] != 2.5 {
		t.Error("writes through Float64s are not visible")
	}
}

func TestNewInvalidLength(t *testing.T) {
	for _, n := range []int{0, -1, math.MaxInt} {
		_, err := New(n)
		if !errors.Is(err, ErrAlloc) {
			t.Errorf("New(%d) error = %v, want ErrAlloc", n, err)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	v, err := New(16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := v.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	var nilVector *Vector
	if err := nilVector.Close(); err != nil {
		t.Errorf("Close on nil vector failed: %v", err)
	}
}

func TestUseAfterClosePanics(t *testing.T) {
	v, err := New(8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	v.Close()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on use after close")
		}
	}()

	_ = v.Float64s()
}

func TestInt64sAliasesMemory(t *testing.T) {
	v, err := New(64)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer v.Close()

	idx := v.Int64s()
	if len(idx) != 64 {
		t.Fatalf("len(Int64s()) = %d, want 64", len(idx))
	}

	for i, x := range idx {
		if x != 0 {
			t.Fatalf("element %d = %d, want 0", i, x)
		}
	}

	idx[3] = 42
	if got := v.Int64s()[3]; got != 42 {
		t.Errorf("Int64s()[3] = %d, want 42", got)
	}
	if v.Float64s()[3] == 0 {
		t.Error("int64 write not visible through Float64s")
	}
}

func TestLenAfterClose(t *testing.T) {
	v, err := New(8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	v.Close()

	if v.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", v.Len())
	}
}
