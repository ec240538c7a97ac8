package raster

// Option configures raster construction.
type Option func(*options)

type options struct {
	mapper      CoordinateMapper
	ranges      []*SpectralRange
	resolutions []int
	eager       bool
}

// WithMapper attaches a coordinate mapper.
func WithMapper(m CoordinateMapper) Option {
	return func(o *options) {
		o.mapper = m
	}
}

// WithSpectralRanges sets one spectral range per band. Nil entries leave a
// band's range undefined.
func WithSpectralRanges(ranges ...*SpectralRange) Option {
	return func(o *options) {
		o.ranges = ranges
	}
}

// WithResolutions sets per-band radiometric resolutions, overriding the
// uniform resolution passed to New.
func WithResolutions(resolutions ...int) Option {
	return func(o *options) {
		o.resolutions = resolutions
	}
}

// WithEagerPlanes allocates every band plane at construction instead of on
// the first non-zero write.
func WithEagerPlanes() Option {
	return func(o *options) {
		o.eager = true
	}
}

// Factory creates in-memory rasters with shared defaults. Code that needs
// rasters takes a Factory explicitly; there is no package-level default.
type Factory struct {
	// Eager allocates planes at construction.
	Eager bool
	// Mapper is attached to rasters created without WithMapper.
	Mapper CoordinateMapper
}

// Create builds a raster with the factory defaults applied before opts.
func (f Factory) Create(rows, columns, bands int, format Format, resolution int, opts ...Option) (*Memory, error) {
	defaults := make([]Option, 0, 2+len(opts))
	if f.Eager {
		defaults = append(defaults, WithEagerPlanes())
	}
	if f.Mapper != nil {
		defaults = append(defaults, WithMapper(f.Mapper))
	}
	return New(rows, columns, bands, format, resolution, append(defaults, opts...)...)
}
