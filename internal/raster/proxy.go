package raster

import "fmt"

// Order is a physical storage order an entity may prefer.
type Order uint8

const (
	// RowColumnBand stores all bands of a cell contiguously (pixel
	// interleaved).
	RowColumnBand Order = iota
	// RowBandColumn stores each row band by band (line interleaved).
	RowBandColumn
	// BandRowColumn stores each band as a whole plane (band sequential).
	BandRowColumn
)

func (o Order) String() string {
	switch o {
	case RowColumnBand:
		return "row-column-band"
	case RowBandColumn:
		return "row-band-column"
	case BandRowColumn:
		return "band-row-column"
	default:
		return fmt.Sprintf("Order(%d)", uint8(o))
	}
}

// Entity is an external store exposing per-cell reads and writes. Its values
// and their semantics belong to the entity; a Proxy only validates and
// forwards.
type Entity interface {
	Format() Format
	NumberOfRows() int
	NumberOfColumns() int
	NumberOfBands() int
	RadiometricResolutions() []int
	// SupportedOrders lists the physical orders the entity serves, preferred
	// order first.
	SupportedOrders() []Order
	IsReadable() bool
	IsWritable() bool

	ReadValue(row, column, band int) (uint64, error)
	WriteValue(row, column, band int, v uint64) error
	ReadFloatValue(row, column, band int) (float64, error)
	WriteFloatValue(row, column, band int, v float64) error
}

// SequentialEntity is implemented by entities that read and write all bands
// of a cell in one call.
type SequentialEntity interface {
	Entity
	ReadValues(row, column int) ([]uint64, error)
	WriteValues(row, column int, values []uint64) error
	ReadFloatValues(row, column int) ([]float64, error)
	WriteFloatValues(row, column int, values []float64) error
}

// MappedEntity is implemented by entities that carry a coordinate mapper.
type MappedEntity interface {
	Mapper() CoordinateMapper
}

// HistogramEntity is implemented by entities that answer histogram queries
// themselves.
type HistogramEntity interface {
	Histogram(band int) (*Histogram, error)
}

// Proxy presents an Entity through the Raster contract. Bounds, readability
// and writability are checked exactly as for in-memory rasters before any
// call reaches the entity.
type Proxy struct {
	extent
	entity     Entity
	sequential SequentialEntity
	mapper     CoordinateMapper
	ranges     []*SpectralRange
	histograms *histogramCache
}

// NewProxy wraps entity. Multi-band reads and writes use the entity's batch
// calls when it implements SequentialEntity and prefers RowColumnBand order;
// otherwise they fall back to one call per band.
func NewProxy(entity Entity, opts ...Option) (*Proxy, error) {
	if entity == nil {
		return nil, fmt.Errorf("proxy of nil entity: %w", ErrUnsupported)
	}
	rows, columns, bands := entity.NumberOfRows(), entity.NumberOfColumns(), entity.NumberOfBands()
	if err := checkSize(rows, columns, bands); err != nil {
		return nil, fmt.Errorf("entity: %w", err)
	}
	if n := len(entity.RadiometricResolutions()); n != bands {
		return nil, fmt.Errorf("entity resolutions: %w", countError(n, bands))
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	ranges := make([]*SpectralRange, bands)
	if o.ranges != nil {
		if len(o.ranges) != bands {
			return nil, fmt.Errorf("spectral ranges: %w", countError(len(o.ranges), bands))
		}
		copy(ranges, o.ranges)
	}
	mapper := o.mapper
	if mapper == nil {
		if me, ok := entity.(MappedEntity); ok {
			mapper = me.Mapper()
		}
	}

	p := &Proxy{
		extent:     extent{rows: rows, columns: columns, bands: bands},
		entity:     entity,
		mapper:     mapper,
		ranges:     ranges,
		histograms: newHistogramCache(bands),
	}
	if se, ok := entity.(SequentialEntity); ok {
		if orders := entity.SupportedOrders(); len(orders) > 0 && orders[0] == RowColumnBand {
			p.sequential = se
		}
	}
	logger().Debug("raster: proxy created", "rows", rows, "columns", columns, "bands", bands, "sequential", p.sequential != nil)
	return p, nil
}

func (p *Proxy) Format() Format                   { return p.entity.Format() }
func (p *Proxy) NumberOfRows() int                { return p.rows }
func (p *Proxy) NumberOfColumns() int             { return p.columns }
func (p *Proxy) NumberOfBands() int               { return p.bands }
func (p *Proxy) RadiometricResolutions() []int    { return p.entity.RadiometricResolutions() }
func (p *Proxy) SpectralRanges() []*SpectralRange { return append([]*SpectralRange(nil), p.ranges...) }
func (p *Proxy) Mapper() CoordinateMapper         { return p.mapper }
func (p *Proxy) IsReadable() bool                 { return p.entity.IsReadable() }
func (p *Proxy) IsWritable() bool                 { return p.entity.IsWritable() }

// Entity returns the wrapped entity.
func (p *Proxy) Entity() Entity { return p.entity }

// Sequential reports whether multi-band calls use the entity's batch path.
func (p *Proxy) Sequential() bool { return p.sequential != nil }

func (p *Proxy) readable() error {
	if !p.entity.IsReadable() {
		return ErrNotReadable
	}
	return nil
}

func (p *Proxy) writable() error {
	if !p.entity.IsWritable() {
		return ErrNotWritable
	}
	return nil
}

func (p *Proxy) Value(row, column, band int) (uint64, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	if err := p.check(row, column, band); err != nil {
		return 0, err
	}
	return p.entity.ReadValue(row, column, band)
}

func (p *Proxy) SetValue(row, column, band int, v uint64) error {
	if err := p.writable(); err != nil {
		return err
	}
	if err := p.check(row, column, band); err != nil {
		return err
	}
	return p.write(row, column, band, v)
}

// write forwards one value and patches a materialized histogram from what the
// entity reports before and after.
func (p *Proxy) write(row, column, band int, v uint64) error {
	if !p.tracking(band) {
		return p.entity.WriteValue(row, column, band, v)
	}
	prev, err := p.entity.ReadValue(row, column, band)
	if err != nil {
		return err
	}
	if err := p.entity.WriteValue(row, column, band, v); err != nil {
		return err
	}
	p.observe(row, column, band, prev)
	return nil
}

func (p *Proxy) writeFloat(row, column, band int, v float64) error {
	if !p.tracking(band) {
		return p.entity.WriteFloatValue(row, column, band, v)
	}
	prev, err := p.entity.ReadValue(row, column, band)
	if err != nil {
		return err
	}
	if err := p.entity.WriteFloatValue(row, column, band, v); err != nil {
		return err
	}
	p.observe(row, column, band, prev)
	return nil
}

func (p *Proxy) tracking(band int) bool {
	return p.histograms.bands[band] != nil && p.entity.IsReadable()
}

// observe patches the band's histogram, dropping it when the entity cannot
// report the stored value.
func (p *Proxy) observe(row, column, band int, prev uint64) {
	next, err := p.entity.ReadValue(row, column, band)
	if err != nil {
		logger().Warn("raster: proxy histogram dropped", "band", band, "err", err)
		p.histograms.bands[band] = nil
		return
	}
	p.histograms.observe(band, prev, next)
}

func (p *Proxy) Values(row, column int) ([]uint64, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	if err := p.checkCell(row, column); err != nil {
		return nil, err
	}
	return p.cell(row, column)
}

func (p *Proxy) cell(row, column int) ([]uint64, error) {
	if p.sequential != nil {
		return p.sequential.ReadValues(row, column)
	}
	out := make([]uint64, p.bands)
	for band := range out {
		v, err := p.entity.ReadValue(row, column, band)
		if err != nil {
			return nil, err
		}
		out[band] = v
	}
	return out, nil
}

func (p *Proxy) floatCell(row, column int) ([]float64, error) {
	if p.sequential != nil {
		return p.sequential.ReadFloatValues(row, column)
	}
	out := make([]float64, p.bands)
	for band := range out {
		v, err := p.entity.ReadFloatValue(row, column, band)
		if err != nil {
			return nil, err
		}
		out[band] = v
	}
	return out, nil
}

func (p *Proxy) anyTracking() bool {
	for band := range p.histograms.bands {
		if p.tracking(band) {
			return true
		}
	}
	return false
}

func (p *Proxy) SetValues(row, column int, values []uint64) error {
	if err := p.writable(); err != nil {
		return err
	}
	if err := p.checkCell(row, column); err != nil {
		return err
	}
	if len(values) != p.bands {
		return countError(len(values), p.bands)
	}
	if p.sequential != nil && !p.anyTracking() {
		return p.sequential.WriteValues(row, column, values)
	}
	for band, v := range values {
		if err := p.write(row, column, band, v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Proxy) NearestValue(row, column, band int) (uint64, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	if err := p.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := p.nearest(row, column)
	if err != nil {
		return 0, err
	}
	return p.entity.ReadValue(r, c, band)
}

func (p *Proxy) NearestValues(row, column int) ([]uint64, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	r, c, err := p.nearest(row, column)
	if err != nil {
		return nil, err
	}
	return p.cell(r, c)
}

func (p *Proxy) BoxedValue(row, column, band int) (uint64, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	if err := p.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := p.boxed(row, column)
	if err != nil {
		return 0, err
	}
	return p.entity.ReadValue(r, c, band)
}

func (p *Proxy) BoxedValues(row, column int) ([]uint64, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	r, c, err := p.boxed(row, column)
	if err != nil {
		return nil, err
	}
	return p.cell(r, c)
}

func (p *Proxy) FloatValue(row, column, band int) (float64, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	if err := p.check(row, column, band); err != nil {
		return 0, err
	}
	return p.entity.ReadFloatValue(row, column, band)
}

func (p *Proxy) SetFloatValue(row, column, band int, v float64) error {
	if err := p.writable(); err != nil {
		return err
	}
	if err := p.check(row, column, band); err != nil {
		return err
	}
	return p.writeFloat(row, column, band, v)
}

func (p *Proxy) FloatValues(row, column int) ([]float64, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	if err := p.checkCell(row, column); err != nil {
		return nil, err
	}
	return p.floatCell(row, column)
}

func (p *Proxy) SetFloatValues(row, column int, values []float64) error {
	if err := p.writable(); err != nil {
		return err
	}
	if err := p.checkCell(row, column); err != nil {
		return err
	}
	if len(values) != p.bands {
		return countError(len(values), p.bands)
	}
	if p.sequential != nil && !p.anyTracking() {
		return p.sequential.WriteFloatValues(row, column, values)
	}
	for band, v := range values {
		if err := p.writeFloat(row, column, band, v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Proxy) NearestFloatValue(row, column, band int) (float64, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	if err := p.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := p.nearest(row, column)
	if err != nil {
		return 0, err
	}
	return p.entity.ReadFloatValue(r, c, band)
}

func (p *Proxy) NearestFloatValues(row, column int) ([]float64, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	r, c, err := p.nearest(row, column)
	if err != nil {
		return nil, err
	}
	return p.floatCell(r, c)
}

func (p *Proxy) BoxedFloatValue(row, column, band int) (float64, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	if err := p.checkBand(band); err != nil {
		return 0, err
	}
	r, c, err := p.boxed(row, column)
	if err != nil {
		return 0, err
	}
	return p.entity.ReadFloatValue(r, c, band)
}

func (p *Proxy) BoxedFloatValues(row, column int) ([]float64, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	r, c, err := p.boxed(row, column)
	if err != nil {
		return nil, err
	}
	return p.floatCell(r, c)
}

// Histogram asks the entity when it implements HistogramEntity. Otherwise
// the first call scans the entity and later writes through the proxy patch
// the cached table.
func (p *Proxy) Histogram(band int) (*Histogram, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	if p.Format() == Floating {
		return nil, fmt.Errorf("histogram of a floating raster: %w", ErrUnsupported)
	}
	if err := p.checkBand(band); err != nil {
		return nil, err
	}
	if he, ok := p.entity.(HistogramEntity); ok {
		h, err := he.Histogram(band)
		if err != nil {
			return nil, fmt.Errorf("entity histogram: %w", unsupportedSource(err))
		}
		return h, nil
	}
	return p.histograms.get(band, func() (*Histogram, error) {
		res := p.entity.RadiometricResolutions()[band]
		return scanHistogram(res, p.rows, p.columns, func(row, column int) (uint64, error) {
			return p.entity.ReadValue(row, column, band)
		})
	})
}

func (p *Proxy) Histograms() ([]*Histogram, error) {
	out := make([]*Histogram, p.bands)
	for band := range out {
		h, err := p.Histogram(band)
		if err != nil {
			return nil, err
		}
		out[band] = h
	}
	return out, nil
}
