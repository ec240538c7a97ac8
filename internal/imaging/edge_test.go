package imaging

import (
	"errors"
	"testing"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// stepRaster is dark left of column 10 and bright from column 10 on.
func stepRaster(t *testing.T, opts ...raster.Option) *raster.Memory {
	t.Helper()
	r, err := raster.New(20, 20, 1, raster.Integer, 8, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for row := 0; row < 20; row++ {
		for col := 10; col < 20; col++ {
			_ = r.SetValue(row, col, 0, 255)
		}
	}
	return r
}

func TestEdgeDetect(t *testing.T) {
	gt := raster.NewGeoTransform(0, 0, 1)
	r := stepRaster(t, raster.WithMapper(gt))

	edges, err := EdgeDetect(r, 0, 50, 150)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}
	if edges.NumberOfRows() != 20 || edges.NumberOfColumns() != 20 || edges.NumberOfBands() != 1 {
		t.Fatalf("shape: got %dx%dx%d", edges.NumberOfRows(), edges.NumberOfColumns(), edges.NumberOfBands())
	}
	if edges.RadiometricResolutions()[0] != 1 || edges.Storage() != raster.Uint8 {
		t.Errorf("edge raster: resolution %d storage %v", edges.RadiometricResolutions()[0], edges.Storage())
	}
	if edges.Mapper() == nil {
		t.Error("edge raster lost the mapper")
	}

	for row := 1; row < 19; row++ {
		left, _ := edges.Value(row, 9, 0)
		right, _ := edges.Value(row, 10, 0)
		if left+right == 0 {
			t.Errorf("row %d: no edge at the step", row)
		}
		for _, col := range []int{2, 5, 14, 17} {
			if v, _ := edges.Value(row, col, 0); v != 0 {
				t.Errorf("(%d,%d): got %d, want no edge", row, col, v)
			}
		}
	}
	// Border rows are never edges
	if v, _ := edges.Value(0, 10, 0); v != 0 {
		t.Error("border cell marked as edge")
	}

	h, err := edges.Histogram(0)
	if err != nil {
		t.Fatalf("Histogram failed: %v", err)
	}
	if n := h.Count(1); n < 18 || n > 36 {
		t.Errorf("edge cells: got %d, want one or two per inner row", n)
	}
}

func TestEdgeDetect_Uniform(t *testing.T) {
	r, _ := raster.New(8, 8, 1, raster.Integer, 8)
	edges, err := EdgeDetect(r, 0, 50, 150)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}
	if edges.Allocated(0) {
		t.Error("uniform raster produced edges")
	}
}

func TestEdgeDetect_Invalid(t *testing.T) {
	r := stepRaster(t)
	if _, err := EdgeDetect(r, 1, 50, 150); !errors.Is(err, raster.ErrOutOfRange) {
		t.Errorf("bad band: got %v, want ErrOutOfRange", err)
	}
	if _, err := EdgeDetect(r, 0, 200, 100); err == nil {
		t.Error("low threshold above high should fail")
	}
}
