// Package raster provides multi-band, multi-precision in-memory rasters and
// views composed over them.
//
// A raster is a rows×columns grid in which every cell holds one value per
// band. Values are addressed by (row, column, band) with (0,0) at the
// upper-left cell; rows increase downward and columns rightward.
//
// # Storage
//
// Memory rasters store each band in a flat row-major plane. The element type
// is chosen once per raster by SelectStorage from the widest requested
// radiometric resolution:
//   - Integer: uint8, uint16, uint32 or uint64, the narrowest that holds the
//     resolution
//   - Floating: float32, or float64 for resolutions above 32 bits
//
// Planes are allocated on the first non-zero write; an unallocated plane reads
// as zero. Writing a value wider than the storage keeps its low bits.
//
// # Addressing
//
// Every raster supports four addressing modes:
//   - Exact: Value/SetValue fail with ErrOutOfRange outside the grid
//   - Coordinate: ValueAt and friends resolve a geographic orb.Point through
//     the raster's CoordinateMapper first
//   - Nearest: NearestValue clamps row and column to the grid edge
//   - Boxed: BoxedValue wraps with BoxedIndex, an asymmetric periodic wrap
//
// # Views
//
// Composite concatenates the bands of several same-shaped rasters. Masked
// presents a sub-rectangle of a raster with translated indices and mapper.
// Proxy forwards to an external Entity. IntegerBand and FloatBand address a
// single band. All of them implement or delegate to the Raster contract and
// hold their sources by reference.
//
// # Histograms
//
// Histogram is defined for Integer rasters only. Memory and Proxy rasters
// compute a band's histogram on first request and patch it on every later
// write; they never rescan. Masked views rescan their window on every call.
//
// # Errors
//
// Failures wrap one of ErrOutOfRange, ErrDimensionMismatch or ErrUnsupported.
// Use errors.Is to tell bad input from unsupported configuration. A failed
// call leaves the raster unchanged.
//
// # Thread Safety
//
// Rasters are not safe for concurrent use. Callers that share a raster across
// goroutines must synchronize access themselves.
package raster
