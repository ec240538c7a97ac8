// Package detection finds structure in raster bands.
//
// Both detectors treat a band as a mask: any non-zero cell is set. They are
// meant to run on the 1-bit output of edge detection or on a thresholded
// band, but accept any readable raster.
//
//   - Regions: 8-connected groups of set cells, with bounds, centroid and
//     fill ratio. A solid axis-aligned rectangle has a fill ratio of 1.
//   - Lines: straight segments found with a Hough transform, with endpoints,
//     length, angle and thickness.
//
// # Coordinate System
//
// Results use grid indices: row 0 is the top row and column 0 the leftmost
// column. When the raster carries a coordinate mapper, regions also report
// their map envelope and lines the map path between their end cells.
//
// # Performance Considerations
//
// Each call reads the band once. The Hough accumulator holds 180 angles per
// distance bin, so line detection is proportional to the number of set cells
// times 180. Masking the raster to a window of interest first keeps both
// detectors cheap on large rasters.
package detection
