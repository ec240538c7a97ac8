package imaging

import (
	"fmt"
	"math"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// EdgeDetect runs Canny-style edge detection over one band of r and returns
// the result as a new single-band, 1-bit Integer raster: 1 marks an edge
// cell, 0 a non-edge cell. The edge raster shares r's mapper.
//
// Band values are normalized to [0, 1] first (Integer bands by their
// radiometric resolution, Floating bands by their minimum and maximum), so
// thresholdLow and thresholdHigh are on a 0-255 scale regardless of the
// band's width.
//
// # Algorithm
//
//  1. Gaussian blur: 5x5 kernel to reduce noise
//  2. Gradient computation: Sobel operators for row and column gradients
//  3. Non-maximum suppression: keep only local maxima across the gradient
//  4. Hysteresis thresholding: cells above thresholdHigh are strong edges,
//     cells between the thresholds are kept only next to a strong edge
//
// Kernels read past the grid edge through nearest addressing, which
// replicates the border cells.
func EdgeDetect(r raster.Raster, band, thresholdLow, thresholdHigh int) (*raster.Memory, error) {
	if thresholdLow > thresholdHigh {
		return nil, fmt.Errorf("invalid thresholds: low %d above high %d", thresholdLow, thresholdHigh)
	}
	rows, columns := r.NumberOfRows(), r.NumberOfColumns()

	norm, err := normalizeBand(r, band)
	if err != nil {
		return nil, err
	}

	grid, err := raster.New(rows, columns, 1, raster.Floating, 64)
	if err != nil {
		return nil, err
	}
	if err := writeGrid(grid, norm); err != nil {
		return nil, err
	}

	blurred, err := convolve(grid, gaussianKernel, 273)
	if err != nil {
		return nil, err
	}
	gradR, err := convolve(blurred, sobelRows, 1)
	if err != nil {
		return nil, err
	}
	gradC, err := convolve(blurred, sobelColumns, 1)
	if err != nil {
		return nil, err
	}

	magnitude := make([][]float64, rows)
	direction := make([][]float64, rows)
	for row := 0; row < rows; row++ {
		magnitude[row] = make([]float64, columns)
		direction[row] = make([]float64, columns)
		for col := 0; col < columns; col++ {
			gr, _ := gradR.FloatValue(row, col, 0)
			gc, _ := gradC.FloatValue(row, col, 0)
			magnitude[row][col] = math.Hypot(gc, gr)
			direction[row][col] = math.Atan2(gr, gc)
		}
	}

	suppressed := suppress(magnitude, direction)

	opts := []raster.Option{}
	if m := r.Mapper(); m != nil {
		opts = append(opts, raster.WithMapper(m))
	}
	edges, err := raster.New(rows, columns, 1, raster.Integer, 1, opts...)
	if err != nil {
		return nil, err
	}

	low := float64(thresholdLow) / 255.0
	high := float64(thresholdHigh) / 255.0
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			val := suppressed[row][col]
			if val < low {
				continue
			}
			if val < high && !strongNeighbor(suppressed, row, col, high) {
				continue
			}
			if err := edges.SetValue(row, col, 0, 1); err != nil {
				return nil, err
			}
		}
	}
	return edges, nil
}

var gaussianKernel = [][]float64{
	{1, 4, 7, 4, 1},
	{4, 16, 26, 16, 4},
	{7, 26, 41, 26, 7},
	{4, 16, 26, 16, 4},
	{1, 4, 7, 4, 1},
}

var sobelColumns = [][]float64{
	{-1, 0, 1},
	{-2, 0, 2},
	{-1, 0, 1},
}

var sobelRows = [][]float64{
	{-1, -2, -1},
	{0, 0, 0},
	{1, 2, 1},
}

// normalizeBand returns band of r scaled to [0, 1].
func normalizeBand(r raster.Raster, band int) ([][]float64, error) {
	if band < 0 || band >= r.NumberOfBands() {
		return nil, fmt.Errorf("band %d of %d: %w", band, r.NumberOfBands(), raster.ErrOutOfRange)
	}
	rows, columns := r.NumberOfRows(), r.NumberOfColumns()
	out := make([][]float64, rows)
	lo, hi := math.Inf(1), math.Inf(-1)
	for row := 0; row < rows; row++ {
		out[row] = make([]float64, columns)
		for col := 0; col < columns; col++ {
			v, err := r.FloatValue(row, col, band)
			if err != nil {
				return nil, err
			}
			out[row][col] = v
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}

	span := hi - lo
	if r.Format() == raster.Integer {
		lo, span = 0, math.Exp2(float64(r.RadiometricResolutions()[band]))-1
	}
	for row := range out {
		for col := range out[row] {
			if span > 0 && !math.IsInf(span, 0) {
				out[row][col] = math.Min((out[row][col]-lo)/span, 1)
			} else {
				out[row][col] = 0
			}
		}
	}
	return out, nil
}

func writeGrid(r *raster.Memory, values [][]float64) error {
	for row, line := range values {
		for col, v := range line {
			if err := r.SetFloatValue(row, col, 0, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// convolve applies a square kernel to band 0 of r, dividing by sum.
func convolve(r raster.Raster, kernel [][]float64, sum float64) (*raster.Memory, error) {
	rows, columns := r.NumberOfRows(), r.NumberOfColumns()
	out, err := raster.New(rows, columns, 1, raster.Floating, 64)
	if err != nil {
		return nil, err
	}
	half := len(kernel) / 2
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			var acc float64
			for kr := -half; kr <= half; kr++ {
				for kc := -half; kc <= half; kc++ {
					v, err := r.NearestFloatValue(row+kr, col+kc, 0)
					if err != nil {
						return nil, err
					}
					acc += v * kernel[kr+half][kc+half]
				}
			}
			if err := out.SetFloatValue(row, col, 0, acc/sum); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// suppress thins edges to one cell by keeping only local maxima along the
// gradient direction. Border cells are never edges.
func suppress(magnitude, direction [][]float64) [][]float64 {
	rows := len(magnitude)
	out := make([][]float64, rows)
	for row := range out {
		columns := len(magnitude[row])
		out[row] = make([]float64, columns)
		if row == 0 || row == rows-1 {
			continue
		}
		for col := 1; col < columns-1; col++ {
			angle := direction[row][col]
			mag := magnitude[row][col]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[row][col-1], magnitude[row][col+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[row-1][col+1], magnitude[row+1][col-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[row-1][col], magnitude[row+1][col]
			default:
				n1, n2 = magnitude[row-1][col-1], magnitude[row+1][col+1]
			}

			if mag >= n1 && mag >= n2 {
				out[row][col] = mag
			}
		}
	}
	return out
}

func strongNeighbor(s [][]float64, row, col int, high float64) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			r := raster.NearestIndex(row+dr, len(s))
			c := raster.NearestIndex(col+dc, len(s[r]))
			if s[r][c] >= high {
				return true
			}
		}
	}
	return false
}
