package raster

import "github.com/paulmach/orb"

// Coordinate-flavored operations resolve p to a (row, column) cell through
// r's mapper and then behave like the indexed operation. They fail with
// ErrNoMapper when r has no mapper; exact variants fail with ErrOutOfRange
// when p falls outside the grid.

// Locate returns the cell of r containing p.
func Locate(r Raster, p orb.Point) (row, column int, err error) {
	return locate(r.Mapper(), p)
}

// Coordinate returns the geographic coordinate of the upper-left corner of a
// cell of r.
func Coordinate(r Raster, row, column int) (orb.Point, error) {
	m := r.Mapper()
	if m == nil {
		return orb.Point{}, ErrNoMapper
	}
	return m.MapCoordinate(float64(row), float64(column)), nil
}

// BoundingCoordinates returns the corner coordinates of r as a closed ring.
func BoundingCoordinates(r Raster) (orb.Ring, error) {
	if b, ok := r.(interface{ BoundingCoordinates() (orb.Ring, error) }); ok {
		return b.BoundingCoordinates()
	}
	m := r.Mapper()
	if m == nil {
		return nil, ErrNoMapper
	}
	return cornerRing(m, r.NumberOfRows(), r.NumberOfColumns()), nil
}

// Envelope returns the geographic bound of r.
func Envelope(r Raster) (orb.Bound, error) {
	ring, err := BoundingCoordinates(r)
	if err != nil {
		return orb.Bound{}, err
	}
	return ring.Bound(), nil
}

func ValueAt(r Raster, p orb.Point, band int) (uint64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return 0, err
	}
	return r.Value(row, column, band)
}

func SetValueAt(r Raster, p orb.Point, band int, v uint64) error {
	row, column, err := Locate(r, p)
	if err != nil {
		return err
	}
	return r.SetValue(row, column, band, v)
}

func ValuesAt(r Raster, p orb.Point) ([]uint64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return nil, err
	}
	return r.Values(row, column)
}

func SetValuesAt(r Raster, p orb.Point, values []uint64) error {
	row, column, err := Locate(r, p)
	if err != nil {
		return err
	}
	return r.SetValues(row, column, values)
}

func NearestValueAt(r Raster, p orb.Point, band int) (uint64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return 0, err
	}
	return r.NearestValue(row, column, band)
}

func NearestValuesAt(r Raster, p orb.Point) ([]uint64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return nil, err
	}
	return r.NearestValues(row, column)
}

func BoxedValueAt(r Raster, p orb.Point, band int) (uint64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return 0, err
	}
	return r.BoxedValue(row, column, band)
}

func BoxedValuesAt(r Raster, p orb.Point) ([]uint64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return nil, err
	}
	return r.BoxedValues(row, column)
}

func FloatValueAt(r Raster, p orb.Point, band int) (float64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return 0, err
	}
	return r.FloatValue(row, column, band)
}

func SetFloatValueAt(r Raster, p orb.Point, band int, v float64) error {
	row, column, err := Locate(r, p)
	if err != nil {
		return err
	}
	return r.SetFloatValue(row, column, band, v)
}

func FloatValuesAt(r Raster, p orb.Point) ([]float64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return nil, err
	}
	return r.FloatValues(row, column)
}

func SetFloatValuesAt(r Raster, p orb.Point, values []float64) error {
	row, column, err := Locate(r, p)
	if err != nil {
		return err
	}
	return r.SetFloatValues(row, column, values)
}

func NearestFloatValueAt(r Raster, p orb.Point, band int) (float64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return 0, err
	}
	return r.NearestFloatValue(row, column, band)
}

func BoxedFloatValueAt(r Raster, p orb.Point, band int) (float64, error) {
	row, column, err := Locate(r, p)
	if err != nil {
		return 0, err
	}
	return r.BoxedFloatValue(row, column, band)
}
