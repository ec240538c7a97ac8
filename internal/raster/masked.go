package raster

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Masked presents a sub-rectangle of a source raster. Cell (0,0) of the view
// is cell (rowOffset, columnOffset) of the source; reads and writes go
// straight through to the source.
type Masked struct {
	extent
	source       Raster
	rowOffset    int
	columnOffset int
	mapper       CoordinateMapper
	corners      orb.Ring
}

// NewMasked returns the rows×columns view of source starting at (row, column).
// It fails with ErrOutOfRange when the start lies outside the source or the
// view extends past the source's far edge.
func NewMasked(source Raster, row, column, rows, columns int) (*Masked, error) {
	if source == nil {
		return nil, fmt.Errorf("masked view of nil source: %w", ErrOutOfRange)
	}
	sr, sc := source.NumberOfRows(), source.NumberOfColumns()
	if row < 0 || row >= sr {
		return nil, fmt.Errorf("mask start: %w", rowError(row, sr))
	}
	if column < 0 || column >= sc {
		return nil, fmt.Errorf("mask start: %w", columnError(column, sc))
	}
	if rows < 0 || columns < 0 || row+rows > sr || column+columns > sc {
		return nil, fmt.Errorf("mask %dx%d at (%d,%d) exceeds source %dx%d: %w", rows, columns, row, column, sr, sc, ErrOutOfRange)
	}

	m := &Masked{
		extent:       extent{rows: rows, columns: columns, bands: source.NumberOfBands()},
		source:       source,
		rowOffset:    row,
		columnOffset: column,
		mapper:       translateMapper(source.Mapper(), row, column),
	}
	logger().Debug("raster: masked view created", "row", row, "column", column, "rows", rows, "columns", columns)
	return m, nil
}

func (m *Masked) Format() Format                   { return m.source.Format() }
func (m *Masked) NumberOfRows() int                { return m.rows }
func (m *Masked) NumberOfColumns() int             { return m.columns }
func (m *Masked) NumberOfBands() int               { return m.bands }
func (m *Masked) RadiometricResolutions() []int    { return m.source.RadiometricResolutions() }
func (m *Masked) SpectralRanges() []*SpectralRange { return m.source.SpectralRanges() }
func (m *Masked) Mapper() CoordinateMapper         { return m.mapper }
func (m *Masked) IsReadable() bool                 { return m.source.IsReadable() }
func (m *Masked) IsWritable() bool                 { return m.source.IsWritable() }

// Source returns the raster behind the view.
func (m *Masked) Source() Raster { return m.source }

// Offset returns the source cell of the view's (0,0).
func (m *Masked) Offset() (row, column int) { return m.rowOffset, m.columnOffset }

func (m *Masked) readable() error {
	if !m.source.IsReadable() {
		return ErrNotReadable
	}
	return nil
}

func (m *Masked) writable() error {
	if !m.source.IsWritable() {
		return ErrNotWritable
	}
	return nil
}

func (m *Masked) Value(row, column, band int) (uint64, error) {
	if err := m.readable(); err != nil {
		return 0, err
	}
	if err := m.check(row, column, band); err != nil {
		return 0, err
	}
	return m.source.Value(row+m.rowOffset, column+m.columnOffset, band)
}

func (m *Masked) SetValue(row, column, band int, v uint64) error {
	if err := m.writable(); err != nil {
		return err
	}
	if err := m.check(row, column, band); err != nil {
		return err
	}
	return m.source.SetValue(row+m.rowOffset, column+m.columnOffset, band, v)
}

func (m *Masked) Values(row, column int) ([]uint64, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	if err := m.checkCell(row, column); err != nil {
		return nil, err
	}
	return m.source.Values(row+m.rowOffset, column+m.columnOffset)
}

func (m *Masked) SetValues(row, column int, values []uint64) error {
	if err := m.writable(); err != nil {
		return err
	}
	if err := m.checkCell(row, column); err != nil {
		return err
	}
	if len(values) != m.bands {
		return countError(len(values), m.bands)
	}
	return m.source.SetValues(row+m.rowOffset, column+m.columnOffset, values)
}

// NearestValue clamps to the view's edges, not the source's.
func (m *Masked) NearestValue(row, column, band int) (uint64, error) {
	if err := m.readable(); err != nil {
		return 0, err
	}
	if err := m.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := m.nearest(row, column)
	if err != nil {
		return 0, err
	}
	return m.source.Value(r+m.rowOffset, c+m.columnOffset, band)
}

func (m *Masked) NearestValues(row, column int) ([]uint64, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	r, c, err := m.nearest(row, column)
	if err != nil {
		return nil, err
	}
	return m.source.Values(r+m.rowOffset, c+m.columnOffset)
}

// BoxedValue wraps within the view's extent.
func (m *Masked) BoxedValue(row, column, band int) (uint64, error) {
	if err := m.readable(); err != nil {
		return 0, err
	}
	if err := m.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := m.boxed(row, column)
	if err != nil {
		return 0, err
	}
	return m.source.Value(r+m.rowOffset, c+m.columnOffset, band)
}

func (m *Masked) BoxedValues(row, column int) ([]uint64, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	r, c, err := m.boxed(row, column)
	if err != nil {
		return nil, err
	}
	return m.source.Values(r+m.rowOffset, c+m.columnOffset)
}

func (m *Masked) FloatValue(row, column, band int) (float64, error) {
	if err := m.readable(); err != nil {
		return 0, err
	}
	if err := m.check(row, column, band); err != nil {
		return 0, err
	}
	return m.source.FloatValue(row+m.rowOffset, column+m.columnOffset, band)
}

func (m *Masked) SetFloatValue(row, column, band int, v float64) error {
	if err := m.writable(); err != nil {
		return err
	}
	if err := m.check(row, column, band); err != nil {
		return err
	}
	return m.source.SetFloatValue(row+m.rowOffset, column+m.columnOffset, band, v)
}

func (m *Masked) FloatValues(row, column int) ([]float64, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	if err := m.checkCell(row, column); err != nil {
		return nil, err
	}
	return m.source.FloatValues(row+m.rowOffset, column+m.columnOffset)
}

func (m *Masked) SetFloatValues(row, column int, values []float64) error {
	if err := m.writable(); err != nil {
		return err
	}
	if err := m.checkCell(row, column); err != nil {
		return err
	}
	if len(values) != m.bands {
		return countError(len(values), m.bands)
	}
	return m.source.SetFloatValues(row+m.rowOffset, column+m.columnOffset, values)
}

func (m *Masked) NearestFloatValue(row, column, band int) (float64, error) {
	if err := m.readable(); err != nil {
		return 0, err
	}
	if err := m.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := m.nearest(row, column)
	if err != nil {
		return 0, err
	}
	return m.source.FloatValue(r+m.rowOffset, c+m.columnOffset, band)
}

func (m *Masked) NearestFloatValues(row, column int) ([]float64, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	r, c, err := m.nearest(row, column)
	if err != nil {
		return nil, err
	}
	return m.source.FloatValues(r+m.rowOffset, c+m.columnOffset)
}

func (m *Masked) BoxedFloatValue(row, column, band int) (float64, error) {
	if err := m.readable(); err != nil {
		return 0, err
	}
	if err := m.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := m.boxed(row, column)
	if err != nil {
		return 0, err
	}
	return m.source.FloatValue(r+m.rowOffset, c+m.columnOffset, band)
}

func (m *Masked) BoxedFloatValues(row, column int) ([]float64, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	r, c, err := m.boxed(row, column)
	if err != nil {
		return nil, err
	}
	return m.source.FloatValues(r+m.rowOffset, c+m.columnOffset)
}

// Histogram scans the masked window of the source on every call. Any
// histogram the source has cached is ignored.
func (m *Masked) Histogram(band int) (*Histogram, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	if m.Format() == Floating {
		return nil, fmt.Errorf("histogram of a floating raster: %w", ErrUnsupported)
	}
	if err := m.checkBand(band); err != nil {
		return nil, err
	}
	res := m.source.RadiometricResolutions()[band]
	return scanHistogram(res, m.rows, m.columns, func(row, column int) (uint64, error) {
		return m.source.Value(row+m.rowOffset, column+m.columnOffset, band)
	})
}

func (m *Masked) Histograms() ([]*Histogram, error) {
	out := make([]*Histogram, m.bands)
	for band := range out {
		h, err := m.Histogram(band)
		if err != nil {
			return nil, err
		}
		out[band] = h
	}
	return out, nil
}

// BoundingCoordinates returns the view's corner coordinates as a closed ring.
func (m *Masked) BoundingCoordinates() (orb.Ring, error) {
	if m.mapper == nil {
		return nil, ErrNoMapper
	}
	if m.corners == nil {
		m.corners = cornerRing(m.mapper, m.rows, m.columns)
	}
	return append(orb.Ring(nil), m.corners...), nil
}
