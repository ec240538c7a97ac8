package raster

import (
	"fmt"
	"math"
)

// Raster is the addressing contract shared by in-memory, composite, masked
// and proxy rasters.
//
// Exact operations fail with ErrOutOfRange when the row, column or band is
// outside the grid. Nearest operations clamp row and column to the grid edge
// and only validate the band. Boxed operations wrap row and column
// periodically (see BoxedIndex). Every read fails with ErrNotReadable on an
// unreadable raster and every write with ErrNotWritable on an unwritable one,
// before any index is examined.
//
// Integer rasters truncate written values to their storage width. Float
// accessors on Integer rasters clamp to the unsigned domain; integer accessors
// on Floating rasters truncate toward zero.
type Raster interface {
	Format() Format
	NumberOfRows() int
	NumberOfColumns() int
	// NumberOfBands is the spectral resolution.
	NumberOfBands() int
	// RadiometricResolutions returns one bit width per band.
	RadiometricResolutions() []int
	// SpectralRanges returns one entry per band; nil entries are undefined.
	SpectralRanges() []*SpectralRange
	// Mapper returns nil when no coordinate mapping is defined.
	Mapper() CoordinateMapper

	IsReadable() bool
	IsWritable() bool

	Value(row, column, band int) (uint64, error)
	SetValue(row, column, band int, v uint64) error
	Values(row, column int) ([]uint64, error)
	SetValues(row, column int, values []uint64) error
	NearestValue(row, column, band int) (uint64, error)
	NearestValues(row, column int) ([]uint64, error)
	BoxedValue(row, column, band int) (uint64, error)
	BoxedValues(row, column int) ([]uint64, error)

	FloatValue(row, column, band int) (float64, error)
	SetFloatValue(row, column, band int, v float64) error
	FloatValues(row, column int) ([]float64, error)
	SetFloatValues(row, column int, values []float64) error
	NearestFloatValue(row, column, band int) (float64, error)
	NearestFloatValues(row, column int) ([]float64, error)
	BoxedFloatValue(row, column, band int) (float64, error)
	BoxedFloatValues(row, column int) ([]float64, error)

	// Histogram returns the value frequency table of an Integer band.
	Histogram(band int) (*Histogram, error)
	// Histograms returns every band's histogram in band order.
	Histograms() ([]*Histogram, error)
}

// SpectralRange is the wavelength interval, in micrometres, a band records.
type SpectralRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MaxResolution returns the widest band resolution of r, or 0 for a raster
// without bands.
func MaxResolution(r Raster) int {
	max := 0
	for _, res := range r.RadiometricResolutions() {
		if res > max {
			max = res
		}
	}
	return max
}

// extent validates indices against a rows×columns×bands grid.
type extent struct {
	rows, columns, bands int
}

func (e extent) checkCell(row, column int) error {
	if row < 0 || row >= e.rows {
		return rowError(row, e.rows)
	}
	if column < 0 || column >= e.columns {
		return columnError(column, e.columns)
	}
	return nil
}

func (e extent) checkBand(band int) error {
	if band < 0 || band >= e.bands {
		return bandError(band, e.bands)
	}
	return nil
}

func (e extent) check(row, column, band int) error {
	if err := e.checkCell(row, column); err != nil {
		return err
	}
	return e.checkBand(band)
}

// checkSize rejects negative dimensions and grids whose cell count does not
// fit in an int.
func checkSize(rows, columns, bands int) error {
	if rows < 0 || columns < 0 || bands < 0 {
		return fmt.Errorf("raster size %dx%dx%d: %w", rows, columns, bands, ErrOutOfRange)
	}
	if columns != 0 && rows > math.MaxInt/columns {
		return fmt.Errorf("raster size %dx%d overflows the cell count: %w", rows, columns, ErrOutOfRange)
	}
	return nil
}

// nearest clamps row and column onto the grid.
func (e extent) nearest(row, column int) (int, int, error) {
	if e.rows == 0 || e.columns == 0 {
		return 0, 0, e.checkCell(row, column)
	}
	return NearestIndex(row, e.rows), NearestIndex(column, e.columns), nil
}

// boxed wraps row and column; results still outside the grid are errors.
func (e extent) boxed(row, column int) (int, int, error) {
	r, c := BoxedIndex(row, e.rows), BoxedIndex(column, e.columns)
	if err := e.checkCell(r, c); err != nil {
		return 0, 0, err
	}
	return r, c, nil
}

// NearestIndex clamps i to [0, n-1].
func NearestIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// BoxedIndex applies the periodic wrap used by boxed addressing: an index
// past the far edge maps to its distance past that edge (i-n), any other
// index maps to its magnitude. This is not a modulo: 2n maps to n, and -1
// maps to 1 rather than n-1.
func BoxedIndex(i, n int) int {
	if i >= n {
		return i - n
	}
	if i < 0 {
		return -i
	}
	return i
}
