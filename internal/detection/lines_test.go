package detection

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// rowLine returns the cells of row from column c1 to c2 inclusive
func rowLine(row, c1, c2 int) []Point {
	return block(row, c1, 1, c2-c1+1)
}

// columnLine returns the cells of column from row r1 to r2 inclusive
func columnLine(column, r1, r2 int) []Point {
	return block(r1, column, r2-r1+1, 1)
}

func findLine(lines []Line, angle float64) *Line {
	for i := range lines {
		if lines[i].AngleDegrees == angle {
			return &lines[i]
		}
	}
	return nil
}

func TestLines(t *testing.T) {
	cells := append(columnLine(5, 2, 17), rowLine(15, 8, 18)...)
	r := createMask(t, 20, 20, cells)

	result, err := Lines(r, 0, 8)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("Count: got %d, want 2: %+v", result.Count, result.Lines)
	}

	vertical := findLine(result.Lines, 90)
	if vertical == nil {
		t.Fatalf("vertical line not found: %+v", result.Lines)
	}
	if vertical.Start != (Point{2, 5}) || vertical.End != (Point{17, 5}) || vertical.Length != 15 {
		t.Errorf("vertical: got %+v", *vertical)
	}

	horizontal := findLine(result.Lines, 0)
	if horizontal == nil {
		t.Fatalf("horizontal line not found: %+v", result.Lines)
	}
	if horizontal.Start != (Point{15, 8}) || horizontal.End != (Point{15, 18}) || horizontal.Length != 10 {
		t.Errorf("horizontal: got %+v", *horizontal)
	}
	if horizontal.Thickness != 1 || vertical.Thickness != 1 {
		t.Errorf("thickness: got %d and %d, want 1", horizontal.Thickness, vertical.Thickness)
	}
	if vertical.Path != nil {
		t.Error("unmapped raster should have no path")
	}
}

func TestLines_Diagonal(t *testing.T) {
	var cells []Point
	for i := 0; i < 15; i++ {
		cells = append(cells, Point{i, i})
	}
	r := createMask(t, 20, 20, cells)

	result, err := Lines(r, 0, 10)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Count: got %d, want 1: %+v", result.Count, result.Lines)
	}
	l := result.Lines[0]
	if l.AngleDegrees != 45 || l.Start != (Point{0, 0}) || l.End != (Point{14, 14}) || l.Length != 19.8 {
		t.Errorf("diagonal: got %+v", l)
	}
}

func TestLines_MinLength(t *testing.T) {
	r := createMask(t, 20, 20, rowLine(10, 2, 8))

	result, err := Lines(r, 0, 10)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("short line reported: %+v", result.Lines)
	}
}

func TestLines_Path(t *testing.T) {
	r := createMask(t, 20, 20, columnLine(5, 2, 17), raster.WithMapper(raster.NewGeoTransform(100, 200, 10)))

	result, err := Lines(r, 0, 8)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Count: got %d, want 1", result.Count)
	}
	want := orb.LineString{{155, 175}, {155, 25}}
	if !result.Lines[0].Path.Equal(want) {
		t.Errorf("path: got %v, want %v", result.Lines[0].Path, want)
	}
}

func TestLines_ThickLine(t *testing.T) {
	r := createMask(t, 20, 30, block(9, 2, 3, 25))

	result, err := Lines(r, 0, 10)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Count: got %d, want 1: %+v", result.Count, result.Lines)
	}
	if l := result.Lines[0]; l.Thickness != 3 {
		t.Errorf("thickness: got %d, want 3", l.Thickness)
	}
}

func TestLines_Empty(t *testing.T) {
	r := createMask(t, 10, 10, nil)

	result, err := Lines(r, 0, 5)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if result.Count != 0 || result.Lines == nil {
		t.Errorf("empty band: got %+v", result)
	}
}

func TestLines_Invalid(t *testing.T) {
	r := createMask(t, 10, 10, nil)

	if _, err := Lines(r, 0, 0); err == nil {
		t.Error("expected error for min length 0")
	}
	if _, err := Lines(r, 2, 5); !errors.Is(err, raster.ErrOutOfRange) {
		t.Errorf("got %v, want ErrOutOfRange", err)
	}
}

func TestEstimateLineThickness(t *testing.T) {
	set := make([][]bool, 10)
	for y := range set {
		set[y] = make([]bool, 10)
		for x := 3; x < 5; x++ {
			set[y][x] = true
		}
	}

	tests := []struct {
		name       string
		start, end Point
		want       int
	}{
		{"two columns wide", Point{0, 3}, Point{9, 3}, 2},
		{"zero length", Point{4, 4}, Point{4, 4}, 1},
		{"nothing across", Point{5, 0}, Point{5, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimateLineThickness(set, tt.start, tt.end); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
