package raster

import (
	"errors"
	"testing"
)

func TestComposite_BandRouting(t *testing.T) {
	a := newTestRaster(t, 3, 4, 2, 8)
	b := newTestRaster(t, 3, 4, 2, 8)
	fillPattern(t, a)
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			_ = b.SetValues(row, col, []uint64{200, uint64(row + col)})
		}
	}

	c, err := NewComposite(a, b)
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}
	if c.NumberOfBands() != 4 {
		t.Fatalf("NumberOfBands: got %d, want 4", c.NumberOfBands())
	}

	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			for band := 0; band < 4; band++ {
				got, err := c.Value(row, col, band)
				if err != nil {
					t.Fatalf("Value failed: %v", err)
				}
				var want uint64
				if band < 2 {
					want, _ = a.Value(row, col, band)
				} else {
					want, _ = b.Value(row, col, band-2)
				}
				if got != want {
					t.Errorf("Value(%d,%d,%d) = %d, want %d", row, col, band, got, want)
				}
			}
		}
	}

	values, err := c.Values(2, 3)
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	want := []uint64{230, 231, 200, 5}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("Values[%d] = %d, want %d", i, values[i], want[i])
		}
	}
}

func TestComposite_Writes(t *testing.T) {
	a := newTestRaster(t, 2, 2, 1, 8)
	b := newTestRaster(t, 2, 2, 2, 8)
	c, err := NewComposite(a, b)
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}

	if err := c.SetValue(1, 0, 2, 42); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if v, _ := b.Value(1, 0, 1); v != 42 {
		t.Errorf("composite write not routed: got %d, want 42", v)
	}

	if err := c.SetValues(0, 1, []uint64{1, 2, 3}); err != nil {
		t.Fatalf("SetValues failed: %v", err)
	}
	if v, _ := a.Value(0, 1, 0); v != 1 {
		t.Errorf("source a: got %d, want 1", v)
	}
	if vs, _ := b.Values(0, 1); vs[0] != 2 || vs[1] != 3 {
		t.Errorf("source b: got %v, want [2 3]", vs)
	}

	if err := c.SetValues(0, 1, []uint64{1, 2}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("short SetValues: got %v, want ErrDimensionMismatch", err)
	}
	if err := c.SetValue(0, 0, 3, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("band past summed count: got %v, want ErrOutOfRange", err)
	}
}

func TestComposite_Addressing(t *testing.T) {
	a := newTestRaster(t, 3, 3, 1, 16)
	b := newTestRaster(t, 3, 3, 1, 16)
	fillPattern(t, a)
	fillPattern(t, b)
	c, err := NewComposite(a, b)
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}

	if v, _ := c.NearestValue(-4, 40, 1); v != 20 {
		t.Errorf("NearestValue: got %d, want 20", v)
	}
	if v, _ := c.BoxedValue(3, -1, 1); v != 10 {
		t.Errorf("BoxedValue: got %d, want 10", v)
	}
	vs, err := c.NearestValues(10, 10)
	if err != nil {
		t.Fatalf("NearestValues failed: %v", err)
	}
	if vs[0] != 220 || vs[1] != 220 {
		t.Errorf("NearestValues: got %v", vs)
	}
}

func TestNewComposite_Validation(t *testing.T) {
	base := newTestRaster(t, 3, 4, 1, 8)
	floating, _ := New(3, 4, 1, Floating, 8)

	tests := []struct {
		name    string
		sources []Raster
	}{
		{"no sources", nil},
		{"nil source", []Raster{base, nil}},
		{"row mismatch", []Raster{base, newTestRaster(t, 2, 4, 1, 8)}},
		{"column mismatch", []Raster{base, newTestRaster(t, 3, 5, 1, 8)}},
		{"resolution mismatch", []Raster{base, newTestRaster(t, 3, 4, 1, 16)}},
		{"format mismatch", []Raster{base, floating}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewComposite(tt.sources...)
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("got %v, want ErrDimensionMismatch", err)
			}
			if c != nil {
				t.Error("failed construction returned a composite")
			}
		})
	}
}

func TestComposite_Histograms(t *testing.T) {
	a := newTestRaster(t, 2, 2, 1, 8)
	b := newTestRaster(t, 2, 2, 2, 8)
	_ = b.SetValue(0, 0, 1, 7)
	c, err := NewComposite(a, b)
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}

	hs, err := c.Histograms()
	if err != nil {
		t.Fatalf("Histograms failed: %v", err)
	}
	if len(hs) != 3 {
		t.Fatalf("got %d histograms, want 3", len(hs))
	}
	if hs[2].Count(7) != 1 || hs[0].Count(0) != 4 {
		t.Errorf("unexpected histograms: %v", hs)
	}

	h, err := c.Histogram(2)
	if err != nil {
		t.Fatalf("Histogram failed: %v", err)
	}
	if !h.Equal(hs[2]) {
		t.Error("Histogram(2) differs from Histograms()[2]")
	}
}

func TestComposite_FloatingHistogramUnsupported(t *testing.T) {
	a, _ := New(2, 2, 1, Floating, 32)
	b, _ := New(2, 2, 1, Floating, 32)
	c, err := NewComposite(a, b)
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}
	if _, err := c.Histogram(1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("got %v, want ErrUnsupported", err)
	}
}

func TestComposite_Readability(t *testing.T) {
	a := newTestRaster(t, 2, 2, 1, 8)
	e := newTestEntity(2, 2, 1, 8)
	e.writable = false
	p, err := NewProxy(e)
	if err != nil {
		t.Fatalf("NewProxy failed: %v", err)
	}
	c, err := NewComposite(a, p)
	if err != nil {
		t.Fatalf("NewComposite failed: %v", err)
	}
	if !c.IsReadable() || c.IsWritable() {
		t.Errorf("readable=%v writable=%v, want true and false", c.IsReadable(), c.IsWritable())
	}
	if err := c.SetValue(0, 0, 0, 1); !errors.Is(err, ErrNotWritable) {
		t.Errorf("got %v, want ErrNotWritable", err)
	}
	if v, _ := a.Value(0, 0, 0); v != 0 {
		t.Error("rejected write reached a source")
	}
}
