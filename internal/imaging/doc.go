// Package imaging moves pixels between image files and rasters, and provides
// the display-oriented operations the MCP server exposes on top of them.
//
// Decoded images become Integer rasters with one band per channel
// (FromImage, LoadRaster); single bands go back out as grayscale PNG or TIFF
// (BandImage, ExportBand). Everything else works on any raster.Raster:
// color sampling over three bands, window rendering, distance measurement,
// window comparison and edge detection.
//
// # Coordinate System
//
// Grid positions are (row, column) pairs, 0-based, with row 0 at the top of
// the image and column 0 at its left edge. Image x corresponds to column and
// image y to row. Windows are given by their top-left cell and their size in
// rows and columns.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The operations themselves
// hold no state, but rasters are not synchronized: callers must not run an
// operation on a raster that another goroutine is writing.
//
// # Color Representation
//
// Colors are returned in several formats:
//   - Values: the raw band values
//   - Hex: 6-character format "#RRGGBB"
//   - RGB: 8-bit components (0-255), scaled by band resolution
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Error Handling
//
// Index errors from the raster package are wrapped, so errors.Is against
// raster.ErrOutOfRange and friends keeps working. File I/O and encoding
// failures are returned with context.
package imaging
