package raster

import "fmt"

// IntegerBand addresses one band of an Integer raster by (row, column).
// It holds no state besides the raster and band index and must not outlive
// the raster.
type IntegerBand struct {
	raster Raster
	index  int
}

// NewIntegerBand returns the view of band index of r. It fails with
// ErrOutOfRange for an invalid index and ErrUnsupported for a Floating raster.
func NewIntegerBand(r Raster, index int) (*IntegerBand, error) {
	if err := checkBandOf(r, index); err != nil {
		return nil, err
	}
	if r.Format() != Integer {
		return nil, fmt.Errorf("integer band of a %v raster: %w", r.Format(), ErrUnsupported)
	}
	return &IntegerBand{raster: r, index: index}, nil
}

func (b *IntegerBand) Raster() Raster       { return b.raster }
func (b *IntegerBand) Index() int           { return b.index }
func (b *IntegerBand) NumberOfRows() int    { return b.raster.NumberOfRows() }
func (b *IntegerBand) NumberOfColumns() int { return b.raster.NumberOfColumns() }

func (b *IntegerBand) RadiometricResolution() int {
	return b.raster.RadiometricResolutions()[b.index]
}

func (b *IntegerBand) SpectralRange() *SpectralRange {
	return b.raster.SpectralRanges()[b.index]
}

func (b *IntegerBand) Value(row, column int) (uint64, error) {
	return b.raster.Value(row, column, b.index)
}

func (b *IntegerBand) SetValue(row, column int, v uint64) error {
	return b.raster.SetValue(row, column, b.index, v)
}

func (b *IntegerBand) NearestValue(row, column int) (uint64, error) {
	return b.raster.NearestValue(row, column, b.index)
}

func (b *IntegerBand) BoxedValue(row, column int) (uint64, error) {
	return b.raster.BoxedValue(row, column, b.index)
}

func (b *IntegerBand) Histogram() (*Histogram, error) {
	return b.raster.Histogram(b.index)
}

// FloatBand addresses one band of a Floating raster by (row, column).
type FloatBand struct {
	raster Raster
	index  int
}

// NewFloatBand returns the view of band index of r. It fails with
// ErrOutOfRange for an invalid index and ErrUnsupported for an Integer raster.
func NewFloatBand(r Raster, index int) (*FloatBand, error) {
	if err := checkBandOf(r, index); err != nil {
		return nil, err
	}
	if r.Format() != Floating {
		return nil, fmt.Errorf("float band of an %v raster: %w", r.Format(), ErrUnsupported)
	}
	return &FloatBand{raster: r, index: index}, nil
}

func (b *FloatBand) Raster() Raster       { return b.raster }
func (b *FloatBand) Index() int           { return b.index }
func (b *FloatBand) NumberOfRows() int    { return b.raster.NumberOfRows() }
func (b *FloatBand) NumberOfColumns() int { return b.raster.NumberOfColumns() }

func (b *FloatBand) RadiometricResolution() int {
	return b.raster.RadiometricResolutions()[b.index]
}

func (b *FloatBand) SpectralRange() *SpectralRange {
	return b.raster.SpectralRanges()[b.index]
}

func (b *FloatBand) Value(row, column int) (float64, error) {
	return b.raster.FloatValue(row, column, b.index)
}

func (b *FloatBand) SetValue(row, column int, v float64) error {
	return b.raster.SetFloatValue(row, column, b.index, v)
}

func (b *FloatBand) NearestValue(row, column int) (float64, error) {
	return b.raster.NearestFloatValue(row, column, b.index)
}

func (b *FloatBand) BoxedValue(row, column int) (float64, error) {
	return b.raster.BoxedFloatValue(row, column, b.index)
}

func checkBandOf(r Raster, band int) error {
	if band < 0 || band >= r.NumberOfBands() {
		return bandError(band, r.NumberOfBands())
	}
	return nil
}

// IntegerBand returns the view of one band of an Integer raster.
func (m *Memory) IntegerBand(index int) (*IntegerBand, error) {
	return NewIntegerBand(m, index)
}

// FloatBand returns the view of one band of a Floating raster.
func (m *Memory) FloatBand(index int) (*FloatBand, error) {
	return NewFloatBand(m, index)
}
