package raster

import (
	"errors"
	"fmt"
)

// bandRef locates a logical band inside a composite's sources.
type bandRef struct {
	source int
	band   int
}

// Composite presents the bands of several rasters as one raster. Sources must
// share row count, column count, radiometric resolution and format. Logical
// bands are numbered by walking the sources in order.
//
// Composite holds its sources by reference and must not outlive them.
type Composite struct {
	extent
	format  Format
	sources []Raster
	refs    []bandRef
}

// NewComposite concatenates the bands of sources. It fails with
// ErrDimensionMismatch when no source is given, a source is nil, or sources
// disagree on shape, resolution or format.
func NewComposite(sources ...Raster) (*Composite, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("composite without sources: %w", ErrDimensionMismatch)
	}
	for i, s := range sources {
		if s == nil {
			return nil, fmt.Errorf("composite source %d is nil: %w", i, ErrDimensionMismatch)
		}
	}

	first := sources[0]
	resolution := MaxResolution(first)
	for i, s := range sources[1:] {
		switch {
		case s.NumberOfRows() != first.NumberOfRows():
			return nil, fmt.Errorf("composite source %d has %d rows, want %d: %w", i+1, s.NumberOfRows(), first.NumberOfRows(), ErrDimensionMismatch)
		case s.NumberOfColumns() != first.NumberOfColumns():
			return nil, fmt.Errorf("composite source %d has %d columns, want %d: %w", i+1, s.NumberOfColumns(), first.NumberOfColumns(), ErrDimensionMismatch)
		case MaxResolution(s) != resolution:
			return nil, fmt.Errorf("composite source %d has resolution %d, want %d: %w", i+1, MaxResolution(s), resolution, ErrDimensionMismatch)
		case s.Format() != first.Format():
			return nil, fmt.Errorf("composite source %d is %v, want %v: %w", i+1, s.Format(), first.Format(), ErrDimensionMismatch)
		}
	}

	var refs []bandRef
	for i, s := range sources {
		for b := 0; b < s.NumberOfBands(); b++ {
			refs = append(refs, bandRef{source: i, band: b})
		}
	}

	c := &Composite{
		extent:  extent{rows: first.NumberOfRows(), columns: first.NumberOfColumns(), bands: len(refs)},
		format:  first.Format(),
		sources: append([]Raster(nil), sources...),
		refs:    refs,
	}
	logger().Debug("raster: composite created", "sources", len(sources), "bands", len(refs))
	return c, nil
}

func (c *Composite) Format() Format       { return c.format }
func (c *Composite) NumberOfRows() int    { return c.rows }
func (c *Composite) NumberOfColumns() int { return c.columns }
func (c *Composite) NumberOfBands() int   { return c.bands }

// Sources returns the underlying rasters in band order.
func (c *Composite) Sources() []Raster { return append([]Raster(nil), c.sources...) }

// Mapper returns the mapper of the first source that has one.
func (c *Composite) Mapper() CoordinateMapper {
	for _, s := range c.sources {
		if m := s.Mapper(); m != nil {
			return m
		}
	}
	return nil
}

func (c *Composite) IsReadable() bool {
	for _, s := range c.sources {
		if !s.IsReadable() {
			return false
		}
	}
	return true
}

func (c *Composite) IsWritable() bool {
	for _, s := range c.sources {
		if !s.IsWritable() {
			return false
		}
	}
	return true
}

func (c *Composite) RadiometricResolutions() []int {
	out := make([]int, 0, c.bands)
	for _, s := range c.sources {
		out = append(out, s.RadiometricResolutions()...)
	}
	return out
}

func (c *Composite) SpectralRanges() []*SpectralRange {
	out := make([]*SpectralRange, 0, c.bands)
	for _, s := range c.sources {
		out = append(out, s.SpectralRanges()...)
	}
	return out
}

// route resolves a logical band to its source and local band.
func (c *Composite) route(band int) (Raster, int) {
	ref := c.refs[band]
	return c.sources[ref.source], ref.band
}

func (c *Composite) readable() error {
	if !c.IsReadable() {
		return ErrNotReadable
	}
	return nil
}

func (c *Composite) writable() error {
	if !c.IsWritable() {
		return ErrNotWritable
	}
	return nil
}

func (c *Composite) Value(row, column, band int) (uint64, error) {
	if err := c.readable(); err != nil {
		return 0, err
	}
	if err := c.check(row, column, band); err != nil {
		return 0, err
	}
	s, b := c.route(band)
	return s.Value(row, column, b)
}

func (c *Composite) SetValue(row, column, band int, v uint64) error {
	if err := c.writable(); err != nil {
		return err
	}
	if err := c.check(row, column, band); err != nil {
		return err
	}
	s, b := c.route(band)
	return s.SetValue(row, column, b, v)
}

func (c *Composite) Values(row, column int) ([]uint64, error) {
	if err := c.readable(); err != nil {
		return nil, err
	}
	if err := c.checkCell(row, column); err != nil {
		return nil, err
	}
	return c.gather(func(s Raster) ([]uint64, error) { return s.Values(row, column) })
}

func (c *Composite) gather(read func(Raster) ([]uint64, error)) ([]uint64, error) {
	out := make([]uint64, 0, c.bands)
	for _, s := range c.sources {
		vs, err := read(s)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

func (c *Composite) gatherFloat(read func(Raster) ([]float64, error)) ([]float64, error) {
	out := make([]float64, 0, c.bands)
	for _, s := range c.sources {
		vs, err := read(s)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

// SetValues writes every source's slice of values. All indices and the value
// count are validated before the first source is touched.
func (c *Composite) SetValues(row, column int, values []uint64) error {
	if err := c.writable(); err != nil {
		return err
	}
	if err := c.checkCell(row, column); err != nil {
		return err
	}
	if len(values) != c.bands {
		return countError(len(values), c.bands)
	}
	offset := 0
	for _, s := range c.sources {
		n := s.NumberOfBands()
		if err := s.SetValues(row, column, values[offset:offset+n]); err != nil {
			return err
		}
		offset += n
	}
	return nil
}

func (c *Composite) NearestValue(row, column, band int) (uint64, error) {
	if err := c.readable(); err != nil {
		return 0, err
	}
	if err := c.checkBand(band); err != nil {
		return 0, err
	}
	s, b := c.route(band)
	return s.NearestValue(row, column, b)
}

func (c *Composite) NearestValues(row, column int) ([]uint64, error) {
	if err := c.readable(); err != nil {
		return nil, err
	}
	return c.gather(func(s Raster) ([]uint64, error) { return s.NearestValues(row, column) })
}

func (c *Composite) BoxedValue(row, column, band int) (uint64, error) {
	if err := c.readable(); err != nil {
		return 0, err
	}
	if err := c.checkBand(band); err != nil {
		return 0, err
	}
	s, b := c.route(band)
	return s.BoxedValue(row, column, b)
}

func (c *Composite) BoxedValues(row, column int) ([]uint64, error) {
	if err := c.readable(); err != nil {
		return nil, err
	}
	return c.gather(func(s Raster) ([]uint64, error) { return s.BoxedValues(row, column) })
}

func (c *Composite) FloatValue(row, column, band int) (float64, error) {
	if err := c.readable(); err != nil {
		return 0, err
	}
	if err := c.check(row, column, band); err != nil {
		return 0, err
	}
	s, b := c.route(band)
	return s.FloatValue(row, column, b)
}

func (c *Composite) SetFloatValue(row, column, band int, v float64) error {
	if err := c.writable(); err != nil {
		return err
	}
	if err := c.check(row, column, band); err != nil {
		return err
	}
	s, b := c.route(band)
	return s.SetFloatValue(row, column, b, v)
}

func (c *Composite) FloatValues(row, column int) ([]float64, error) {
	if err := c.readable(); err != nil {
		return nil, err
	}
	if err := c.checkCell(row, column); err != nil {
		return nil, err
	}
	return c.gatherFloat(func(s Raster) ([]float64, error) { return s.FloatValues(row, column) })
}

func (c *Composite) SetFloatValues(row, column int, values []float64) error {
	if err := c.writable(); err != nil {
		return err
	}
	if err := c.checkCell(row, column); err != nil {
		return err
	}
	if len(values) != c.bands {
		return countError(len(values), c.bands)
	}
	offset := 0
	for _, s := range c.sources {
		n := s.NumberOfBands()
		if err := s.SetFloatValues(row, column, values[offset:offset+n]); err != nil {
			return err
		}
		offset += n
	}
	return nil
}

func (c *Composite) NearestFloatValue(row, column, band int) (float64, error) {
	if err := c.readable(); err != nil {
		return 0, err
	}
	if err := c.checkBand(band); err != nil {
		return 0, err
	}
	s, b := c.route(band)
	return s.NearestFloatValue(row, column, b)
}

func (c *Composite) NearestFloatValues(row, column int) ([]float64, error) {
	if err := c.readable(); err != nil {
		return nil, err
	}
	return c.gatherFloat(func(s Raster) ([]float64, error) { return s.NearestFloatValues(row, column) })
}

func (c *Composite) BoxedFloatValue(row, column, band int) (float64, error) {
	if err := c.readable(); err != nil {
		return 0, err
	}
	if err := c.checkBand(band); err != nil {
		return 0, err
	}
	s, b := c.route(band)
	return s.BoxedFloatValue(row, column, b)
}

func (c *Composite) BoxedFloatValues(row, column int) ([]float64, error) {
	if err := c.readable(); err != nil {
		return nil, err
	}
	return c.gatherFloat(func(s Raster) ([]float64, error) { return s.BoxedFloatValues(row, column) })
}

// Histogram delegates to the source owning band.
func (c *Composite) Histogram(band int) (*Histogram, error) {
	if err := c.readable(); err != nil {
		return nil, err
	}
	if err := c.checkBand(band); err != nil {
		return nil, err
	}
	s, b := c.route(band)
	h, err := s.Histogram(b)
	if err != nil {
		return nil, fmt.Errorf("composite band %d: %w", band, unsupportedSource(err))
	}
	return h, nil
}

// Histograms concatenates the sources' histograms in logical band order.
func (c *Composite) Histograms() ([]*Histogram, error) {
	if err := c.readable(); err != nil {
		return nil, err
	}
	out := make([]*Histogram, 0, c.bands)
	for i, s := range c.sources {
		hs, err := s.Histograms()
		if err != nil {
			return nil, fmt.Errorf("composite source %d: %w", i, unsupportedSource(err))
		}
		out = append(out, hs...)
	}
	return out, nil
}

// unsupportedSource keeps the kind of a source error that already has one and
// reports anything else as unsupported.
func unsupportedSource(err error) error {
	if errors.Is(err, ErrUnsupported) || errors.Is(err, ErrOutOfRange) || errors.Is(err, ErrDimensionMismatch) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnsupported, err)
}
