package imaging

import (
	"fmt"
	"math"

	"github.com/paulmach/orb/planar"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// Cell is a grid position.
type Cell struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// DistanceResult contains measurement information
type DistanceResult struct {
	DistanceCells float64 `json:"distance_cells"`
	DeltaRows     int     `json:"delta_rows"`
	DeltaColumns  int     `json:"delta_columns"`
	AngleDegrees  float64 `json:"angle_degrees"`
	// DistanceMap is the planar distance between cell centers in map units,
	// present when the raster has a coordinate mapper.
	DistanceMap *float64 `json:"distance_map,omitempty"`
}

// MeasureDistance calculates the distance between two cells of r.
//
// The angle is measured from the column axis toward increasing rows, so 0 is
// rightward and 90 is downward.
func MeasureDistance(r raster.Raster, a, b Cell) (*DistanceResult, error) {
	for _, c := range []Cell{a, b} {
		if c.Row < 0 || c.Row >= r.NumberOfRows() || c.Column < 0 || c.Column >= r.NumberOfColumns() {
			return nil, fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", c.Row, c.Column, r.NumberOfRows(), r.NumberOfColumns(), raster.ErrOutOfRange)
		}
	}

	deltaR := b.Row - a.Row
	deltaC := b.Column - a.Column

	distance := math.Sqrt(float64(deltaR*deltaR + deltaC*deltaC))
	angle := math.Atan2(float64(deltaR), float64(deltaC)) * 180 / math.Pi

	result := &DistanceResult{
		DistanceCells: math.Round(distance*100) / 100,
		DeltaRows:     deltaR,
		DeltaColumns:  deltaC,
		AngleDegrees:  math.Round(angle*10) / 10,
	}

	if m := r.Mapper(); m != nil {
		pa := m.MapCoordinate(float64(a.Row)+0.5, float64(a.Column)+0.5)
		pb := m.MapCoordinate(float64(b.Row)+0.5, float64(b.Column)+0.5)
		d := planar.Distance(pa, pb)
		result.DistanceMap = &d
	}
	return result, nil
}

// CompareResult contains window comparison information
type CompareResult struct {
	Similarity     float64 `json:"similarity"`
	CellsDifferent int     `json:"cells_different"`
	TotalCells     int     `json:"total_cells"`
	SameSize       bool    `json:"same_size"`
	MeanAbsDiff    float64 `json:"mean_abs_diff"`
}

// CompareWindows compares one band of two windows of r cell by cell, over the
// overlap of their sizes. A cell differs when its values are not equal.
func CompareWindows(r raster.Raster, band int, w1, w2 Window) (*CompareResult, error) {
	v1, err := raster.NewMasked(r, w1.Row, w1.Column, w1.Rows, w1.Columns)
	if err != nil {
		return nil, fmt.Errorf("first window: %w", err)
	}
	v2, err := raster.NewMasked(r, w2.Row, w2.Column, w2.Rows, w2.Columns)
	if err != nil {
		return nil, fmt.Errorf("second window: %w", err)
	}

	rows := min(w1.Rows, w2.Rows)
	columns := min(w1.Columns, w2.Columns)
	total := rows * columns

	result := &CompareResult{
		TotalCells: total,
		SameSize:   w1.Rows == w2.Rows && w1.Columns == w2.Columns,
		Similarity: 1,
	}
	if total == 0 {
		return result, nil
	}

	var sumDiff float64
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			a, err := v1.FloatValue(row, col, band)
			if err != nil {
				return nil, err
			}
			b, err := v2.FloatValue(row, col, band)
			if err != nil {
				return nil, err
			}
			if a != b {
				result.CellsDifferent++
			}
			sumDiff += math.Abs(a - b)
		}
	}

	result.Similarity = math.Round((1-float64(result.CellsDifferent)/float64(total))*1000) / 1000
	result.MeanAbsDiff = math.Round(sumDiff/float64(total)*100) / 100
	return result, nil
}
