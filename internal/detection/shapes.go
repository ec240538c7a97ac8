package detection

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// Bounds is a rectangular window of cells.
//
// (Row, Column) is the top-left cell; the window spans Rows rows and
// Columns columns from there.
type Bounds struct {
	Row     int `json:"row"`
	Column  int `json:"column"`
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Point is a cell position.
type Point struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Region is a connected group of non-zero cells.
type Region struct {
	// Bounds is the smallest window enclosing every cell of the region.
	Bounds Bounds `json:"bounds"`

	// Cells is the number of cells in the region.
	Cells int `json:"cells"`

	// CentroidRow and CentroidColumn are the mean cell position.
	CentroidRow    float64 `json:"centroid_row"`
	CentroidColumn float64 `json:"centroid_column"`

	// FillRatio is Cells divided by the area of Bounds (0.0 to 1.0).
	// A solid axis-aligned rectangle scores 1.0.
	FillRatio float64 `json:"fill_ratio"`

	// Envelope is the map extent of Bounds. Nil for unmapped rasters.
	Envelope *orb.Bound `json:"envelope,omitempty"`
}

// RegionsResult contains all regions found in a band.
type RegionsResult struct {
	// Regions is sorted by cell count, largest first.
	Regions []Region `json:"regions"`

	// Count is the number of regions.
	Count int `json:"count"`
}

// Regions finds the 8-connected groups of non-zero cells in one band of r.
//
// Parameters:
//   - r: Source raster. Must be readable.
//   - band: Band to scan.
//   - minCells: Regions with fewer cells are dropped. Values below 1 keep
//     every region.
//
// Typical input is a 1-bit mask such as the output of edge detection or a
// thresholded band, but any non-zero value counts as set.
//
// # Algorithm
//
//  1. Mask: read the band once and mark non-zero cells
//  2. Labeling: iterative flood fill groups connected cells
//  3. Measurement: bounds, centroid and fill ratio per group
//  4. Georeferencing: when r has a mapper, the map envelope of the bounds
func Regions(r raster.Raster, band, minCells int) (*RegionsResult, error) {
	set, err := bandMask(r, band)
	if err != nil {
		return nil, err
	}
	rows, columns := r.NumberOfRows(), r.NumberOfColumns()

	regions := make([]Region, 0)
	for _, cells := range findRegions(set, rows, columns) {
		if len(cells) < minCells {
			continue
		}
		reg := measure(cells)
		if r.Mapper() != nil {
			view, err := raster.NewMasked(r, reg.Bounds.Row, reg.Bounds.Column, reg.Bounds.Rows, reg.Bounds.Columns)
			if err != nil {
				return nil, err
			}
			env, err := raster.Envelope(view)
			if err != nil {
				return nil, err
			}
			reg.Envelope = &env
		}
		regions = append(regions, reg)
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Cells > regions[j].Cells
	})

	return &RegionsResult{
		Regions: regions,
		Count:   len(regions),
	}, nil
}

func measure(cells []Point) Region {
	minRow, minCol := math.MaxInt, math.MaxInt
	maxRow, maxCol := math.MinInt, math.MinInt
	var sumRow, sumCol int
	for _, p := range cells {
		minRow = min(minRow, p.Row)
		maxRow = max(maxRow, p.Row)
		minCol = min(minCol, p.Column)
		maxCol = max(maxCol, p.Column)
		sumRow += p.Row
		sumCol += p.Column
	}

	b := Bounds{Row: minRow, Column: minCol, Rows: maxRow - minRow + 1, Columns: maxCol - minCol + 1}
	n := float64(len(cells))
	return Region{
		Bounds:         b,
		Cells:          len(cells),
		CentroidRow:    math.Round(float64(sumRow)/n*100) / 100,
		CentroidColumn: math.Round(float64(sumCol)/n*100) / 100,
		FillRatio:      math.Round(n/float64(b.Rows*b.Columns)*1000) / 1000,
	}
}

// bandMask reads one band of r and marks its non-zero cells.
func bandMask(r raster.Raster, band int) ([][]bool, error) {
	if band < 0 || band >= r.NumberOfBands() {
		return nil, fmt.Errorf("band %d outside [0,%d): %w", band, r.NumberOfBands(), raster.ErrOutOfRange)
	}
	floating := r.Format() == raster.Floating
	rows, columns := r.NumberOfRows(), r.NumberOfColumns()

	set := make([][]bool, rows)
	for row := 0; row < rows; row++ {
		set[row] = make([]bool, columns)
		for col := 0; col < columns; col++ {
			if floating {
				v, err := r.FloatValue(row, col, band)
				if err != nil {
					return nil, err
				}
				set[row][col] = v != 0
				continue
			}
			v, err := r.Value(row, col, band)
			if err != nil {
				return nil, err
			}
			set[row][col] = v != 0
		}
	}
	return set, nil
}

// findRegions groups the set cells into 8-connected components, in scan
// order of their first cell.
func findRegions(set [][]bool, rows, columns int) [][]Point {
	visited := make([][]bool, rows)
	for row := range visited {
		visited[row] = make([]bool, columns)
	}

	regions := make([][]Point, 0)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			if set[row][col] && !visited[row][col] {
				regions = append(regions, floodFill(set, visited, row, col, rows, columns))
			}
		}
	}
	return regions
}

// floodFill collects the component containing (startRow, startColumn).
//
// Uses a stack rather than recursion so large regions cannot overflow the
// goroutine stack.
func floodFill(set, visited [][]bool, startRow, startColumn, rows, columns int) []Point {
	var cells []Point
	stack := []Point{{Row: startRow, Column: startColumn}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.Row < 0 || p.Row >= rows || p.Column < 0 || p.Column >= columns {
			continue
		}
		if visited[p.Row][p.Column] || !set[p.Row][p.Column] {
			continue
		}

		visited[p.Row][p.Column] = true
		cells = append(cells, p)

		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				stack = append(stack, Point{Row: p.Row + dr, Column: p.Column + dc})
			}
		}
	}
	return cells
}
