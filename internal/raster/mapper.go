package raster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CoordinateMapper converts between geographic coordinates and fractional
// (row, column) grid positions. Implementations must be immutable; rasters
// share them by reference.
type CoordinateMapper interface {
	// MapCoordinate returns the geographic coordinate of a grid position.
	MapCoordinate(row, column float64) orb.Point
	// MapRaster returns the grid position of a geographic coordinate.
	MapRaster(p orb.Point) (row, column float64)
}

// Translator is implemented by mappers that can produce a copy shifted by a
// geographic offset.
type Translator interface {
	Translate(dx, dy float64) CoordinateMapper
}

// GeoTransform is an affine mapper in GDAL geotransform order:
//
//	X = T[0] + column*T[1] + row*T[2]
//	Y = T[3] + column*T[4] + row*T[5]
type GeoTransform [6]float64

// NewGeoTransform returns a north-up transform with the given top-left origin
// and square cell size.
func NewGeoTransform(originX, originY, cellSize float64) GeoTransform {
	return GeoTransform{originX, cellSize, 0, originY, 0, -cellSize}
}

// MapCoordinate implements CoordinateMapper.
func (t GeoTransform) MapCoordinate(row, column float64) orb.Point {
	return orb.Point{
		t[0] + column*t[1] + row*t[2],
		t[3] + column*t[4] + row*t[5],
	}
}

// MapRaster implements CoordinateMapper. A degenerate transform maps every
// coordinate to NaN, which no grid accepts.
func (t GeoTransform) MapRaster(p orb.Point) (row, column float64) {
	det := t[1]*t[5] - t[2]*t[4]
	if det == 0 {
		return math.NaN(), math.NaN()
	}
	dx := p[0] - t[0]
	dy := p[1] - t[3]
	column = (dx*t[5] - dy*t[2]) / det
	row = (dy*t[1] - dx*t[4]) / det
	return row, column
}

// Translate implements Translator.
func (t GeoTransform) Translate(dx, dy float64) CoordinateMapper {
	t[0] += dx
	t[3] += dy
	return t
}

func (t GeoTransform) String() string {
	return fmt.Sprintf("GeoTransform(%g, %g, %g, %g, %g, %g)", t[0], t[1], t[2], t[3], t[4], t[5])
}

// offsetMapper shifts grid positions for mappers that cannot translate
// themselves.
type offsetMapper struct {
	source      CoordinateMapper
	row, column float64
}

func (m offsetMapper) MapCoordinate(row, column float64) orb.Point {
	return m.source.MapCoordinate(row+m.row, column+m.column)
}

func (m offsetMapper) MapRaster(p orb.Point) (row, column float64) {
	row, column = m.source.MapRaster(p)
	return row - m.row, column - m.column
}

// translateMapper derives the mapper of a view whose (0,0) cell is the
// source's (row, column) cell.
func translateMapper(m CoordinateMapper, row, column int) CoordinateMapper {
	if m == nil {
		return nil
	}
	if row == 0 && column == 0 {
		return m
	}
	if t, ok := m.(Translator); ok {
		origin := m.MapCoordinate(0, 0)
		shifted := m.MapCoordinate(float64(row), float64(column))
		return t.Translate(shifted[0]-origin[0], shifted[1]-origin[1])
	}
	return offsetMapper{source: m, row: float64(row), column: float64(column)}
}

// cornerRing returns the four corner coordinates of a rows×columns grid,
// counterclockwise for a north-up mapper, as a closed ring.
func cornerRing(m CoordinateMapper, rows, columns int) orb.Ring {
	r, c := float64(rows), float64(columns)
	ring := orb.Ring{
		m.MapCoordinate(0, 0),
		m.MapCoordinate(r, 0),
		m.MapCoordinate(r, c),
		m.MapCoordinate(0, c),
	}
	return append(ring, ring[0])
}

// locate maps p to the grid cell containing it.
func locate(m CoordinateMapper, p orb.Point) (row, column int, err error) {
	if m == nil {
		return 0, 0, ErrNoMapper
	}
	fr, fc := m.MapRaster(p)
	if math.IsNaN(fr) || math.IsNaN(fc) || math.IsInf(fr, 0) || math.IsInf(fc, 0) {
		return 0, 0, fmt.Errorf("coordinate %v has no grid position: %w", p, ErrOutOfRange)
	}
	return floorIndex(fr), floorIndex(fc), nil
}

// floorIndex floors f to an int, saturating at ±math.MaxInt.
func floorIndex(f float64) int {
	f = math.Floor(f)
	if f >= math.MaxInt {
		return math.MaxInt
	}
	if f <= -math.MaxInt {
		return -math.MaxInt
	}
	return int(f)
}
