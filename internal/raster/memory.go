package raster

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Memory is an in-memory raster. Each band is backed by one plane whose
// element type is selected from the widest requested radiometric resolution.
// Planes are allocated on the first non-zero write unless the raster was
// built WithEagerPlanes.
//
// Memory is not safe for concurrent use.
type Memory struct {
	extent
	format      Format
	storage     Storage
	resolutions []int
	ranges      []*SpectralRange
	mapper      CoordinateMapper
	planes      []plane
	histograms  *histogramCache
	corners     orb.Ring
}

// New creates a rows×columns raster of bands bands. Every band gets the given
// radiometric resolution unless WithResolutions overrides it.
//
// New fails with ErrOutOfRange for negative dimensions, a cell count that
// overflows int, or a resolution outside [1, 64], and with
// ErrDimensionMismatch when per-band options do not have one entry per band.
func New(rows, columns, bands int, format Format, resolution int, opts ...Option) (*Memory, error) {
	if err := checkSize(rows, columns, bands); err != nil {
		return nil, err
	}
	if format != Integer && format != Floating {
		return nil, fmt.Errorf("raster format %v: %w", format, ErrUnsupported)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	resolutions := o.resolutions
	if resolutions == nil {
		resolutions = make([]int, bands)
		for i := range resolutions {
			resolutions[i] = resolution
		}
	} else {
		if len(resolutions) != bands {
			return nil, fmt.Errorf("resolutions: %w", countError(len(resolutions), bands))
		}
		resolutions = append([]int(nil), resolutions...)
	}
	widest := 0
	for band, res := range resolutions {
		if res < 1 || res > 64 {
			return nil, fmt.Errorf("band %d resolution %d outside [1,64]: %w", band, res, ErrOutOfRange)
		}
		if res > widest {
			widest = res
		}
	}

	ranges := make([]*SpectralRange, bands)
	if o.ranges != nil {
		if len(o.ranges) != bands {
			return nil, fmt.Errorf("spectral ranges: %w", countError(len(o.ranges), bands))
		}
		copy(ranges, o.ranges)
	}

	m := &Memory{
		extent:      extent{rows: rows, columns: columns, bands: bands},
		format:      format,
		storage:     SelectStorage(format, widest),
		resolutions: resolutions,
		ranges:      ranges,
		mapper:      o.mapper,
		planes:      make([]plane, bands),
		histograms:  newHistogramCache(bands),
	}
	for i := range m.planes {
		m.planes[i] = m.storage.newPlane(rows * columns)
		if o.eager {
			m.planes[i].allocate()
		}
	}
	return m, nil
}

func (m *Memory) Format() Format           { return m.format }
func (m *Memory) NumberOfRows() int        { return m.rows }
func (m *Memory) NumberOfColumns() int     { return m.columns }
func (m *Memory) NumberOfBands() int       { return m.bands }
func (m *Memory) Mapper() CoordinateMapper { return m.mapper }

// Storage returns the element type backing the planes.
func (m *Memory) Storage() Storage { return m.storage }

// IsReadable is always true for in-memory rasters.
func (m *Memory) IsReadable() bool { return true }

// IsWritable is always true for in-memory rasters.
func (m *Memory) IsWritable() bool { return true }

func (m *Memory) RadiometricResolutions() []int {
	return append([]int(nil), m.resolutions...)
}

func (m *Memory) SpectralRanges() []*SpectralRange {
	return append([]*SpectralRange(nil), m.ranges...)
}

// Allocated reports whether the band's plane holds storage.
func (m *Memory) Allocated(band int) bool {
	return band >= 0 && band < m.bands && m.planes[band].allocated()
}

func (m *Memory) index(row, column int) int { return row*m.columns + column }

func (m *Memory) Value(row, column, band int) (uint64, error) {
	if err := m.check(row, column, band); err != nil {
		return 0, err
	}
	return m.planes[band].get(m.index(row, column)), nil
}

func (m *Memory) SetValue(row, column, band int, v uint64) error {
	if err := m.check(row, column, band); err != nil {
		return err
	}
	m.write(m.index(row, column), band, v)
	return nil
}

func (m *Memory) write(i, band int, v uint64) {
	p := m.planes[band]
	prev := p.get(i)
	p.set(i, v)
	m.histograms.observe(band, prev, p.get(i))
}

func (m *Memory) writeFloat(i, band int, v float64) {
	p := m.planes[band]
	prev := p.get(i)
	p.setFloat(i, v)
	m.histograms.observe(band, prev, p.get(i))
}

func (m *Memory) Values(row, column int) ([]uint64, error) {
	if err := m.checkCell(row, column); err != nil {
		return nil, err
	}
	return m.cell(row, column), nil
}

func (m *Memory) cell(row, column int) []uint64 {
	i := m.index(row, column)
	out := make([]uint64, m.bands)
	for band, p := range m.planes {
		out[band] = p.get(i)
	}
	return out
}

func (m *Memory) SetValues(row, column int, values []uint64) error {
	if err := m.checkCell(row, column); err != nil {
		return err
	}
	if len(values) != m.bands {
		return countError(len(values), m.bands)
	}
	i := m.index(row, column)
	for band, v := range values {
		m.write(i, band, v)
	}
	return nil
}

func (m *Memory) NearestValue(row, column, band int) (uint64, error) {
	if err := m.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := m.nearest(row, column)
	if err != nil {
		return 0, err
	}
	return m.planes[band].get(m.index(r, c)), nil
}

func (m *Memory) NearestValues(row, column int) ([]uint64, error) {
	r, c, err := m.nearest(row, column)
	if err != nil {
		return nil, err
	}
	return m.cell(r, c), nil
}

func (m *Memory) BoxedValue(row, column, band int) (uint64, error) {
	if err := m.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := m.boxed(row, column)
	if err != nil {
		return 0, err
	}
	return m.planes[band].get(m.index(r, c)), nil
}

func (m *Memory) BoxedValues(row, column int) ([]uint64, error) {
	r, c, err := m.boxed(row, column)
	if err != nil {
		return nil, err
	}
	return m.cell(r, c), nil
}

func (m *Memory) FloatValue(row, column, band int) (float64, error) {
	if err := m.check(row, column, band); err != nil {
		return 0, err
	}
	return m.planes[band].getFloat(m.index(row, column)), nil
}

func (m *Memory) SetFloatValue(row, column, band int, v float64) error {
	if err := m.check(row, column, band); err != nil {
		return err
	}
	m.writeFloat(m.index(row, column), band, v)
	return nil
}

func (m *Memory) FloatValues(row, column int) ([]float64, error) {
	if err := m.checkCell(row, column); err != nil {
		return nil, err
	}
	return m.floatCell(row, column), nil
}

func (m *Memory) floatCell(row, column int) []float64 {
	i := m.index(row, column)
	out := make([]float64, m.bands)
	for band, p := range m.planes {
		out[band] = p.getFloat(i)
	}
	return out
}

func (m *Memory) SetFloatValues(row, column int, values []float64) error {
	if err := m.checkCell(row, column); err != nil {
		return err
	}
	if len(values) != m.bands {
		return countError(len(values), m.bands)
	}
	i := m.index(row, column)
	for band, v := range values {
		m.writeFloat(i, band, v)
	}
	return nil
}

func (m *Memory) NearestFloatValue(row, column, band int) (float64, error) {
	if err := m.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := m.nearest(row, column)
	if err != nil {
		return 0, err
	}
	return m.planes[band].getFloat(m.index(r, c)), nil
}

func (m *Memory) NearestFloatValues(row, column int) ([]float64, error) {
	r, c, err := m.nearest(row, column)
	if err != nil {
		return nil, err
	}
	return m.floatCell(r, c), nil
}

func (m *Memory) BoxedFloatValue(row, column, band int) (float64, error) {
	if err := m.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := m.boxed(row, column)
	if err != nil {
		return 0, err
	}
	return m.planes[band].getFloat(m.index(r, c)), nil
}

func (m *Memory) BoxedFloatValues(row, column int) ([]float64, error) {
	r, c, err := m.boxed(row, column)
	if err != nil {
		return nil, err
	}
	return m.floatCell(r, c), nil
}

// Histogram returns a snapshot of the band's histogram. The first call scans
// the plane; later writes patch the cached table in place.
func (m *Memory) Histogram(band int) (*Histogram, error) {
	if m.format == Floating {
		return nil, fmt.Errorf("histogram of a floating raster: %w", ErrUnsupported)
	}
	if err := m.checkBand(band); err != nil {
		return nil, err
	}
	return m.histograms.get(band, func() (*Histogram, error) {
		h := newHistogram(m.resolutions[band])
		p := m.planes[band]
		n := m.rows * m.columns
		if !p.allocated() {
			if n > 0 {
				h.add(0, int64(n))
			}
			return h, nil
		}
		for i := 0; i < n; i++ {
			h.add(p.get(i), 1)
		}
		return h, nil
	})
}

func (m *Memory) Histograms() ([]*Histogram, error) {
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

// Clone returns an independent copy of the planes. Histograms are not
// copied; the mapper is shared.
func (m *Memory) Clone() *Memory {
	c := &Memory{
		extent:      m.extent,
		format:      m.format,
		storage:     m.storage,
		resolutions: m.RadiometricResolutions(),
		ranges:      m.SpectralRanges(),
		mapper:      m.mapper,
		planes:      make([]plane, len(m.planes)),
		histograms:  newHistogramCache(m.bands),
	}
	for i, p := range m.planes {
		c.planes[i] = p.clone()
	}
	return c
}

// BoundingCoordinates returns the grid's four corner coordinates as a closed
// ring. The ring is computed once.
func (m *Memory) BoundingCoordinates() (orb.Ring, error) {
	if m.mapper == nil {
		return nil, ErrNoMapper
	}
	if m.corners == nil {
		m.corners = cornerRing(m.mapper, m.rows, m.columns)
	}
	return append(orb.Ring(nil), m.corners...), nil
}

// Envelope returns the geographic bound of the grid.
func (m *Memory) Envelope() (orb.Bound, error) {
	ring, err := m.BoundingCoordinates()
	if err != nil {
		return orb.Bound{}, err
	}
	return ring.Bound(), nil
}
