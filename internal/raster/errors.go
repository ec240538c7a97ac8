package raster

import (
	"errors"
	"fmt"
)

// Error kinds returned by raster operations. Callers discriminate with
// errors.Is; every returned error wraps exactly one of the three base kinds.
var (
	// ErrOutOfRange reports a row, column or band index outside its valid
	// interval, or a construction parameter outside its domain.
	ErrOutOfRange = errors.New("index out of range")

	// ErrDimensionMismatch reports a value slice whose length differs from
	// the band count, or sources that disagree on shape or format.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnsupported reports an operation the raster's configuration cannot
	// serve.
	ErrUnsupported = errors.New("unsupported operation")
)

var (
	ErrNoMapper    = fmt.Errorf("%w: coordinate mapping not defined", ErrUnsupported)
	ErrNotReadable = fmt.Errorf("%w: raster is not readable", ErrUnsupported)
	ErrNotWritable = fmt.Errorf("%w: raster is not writable", ErrUnsupported)
)

func rowError(row, rows int) error {
	return fmt.Errorf("row %d outside [0,%d): %w", row, rows, ErrOutOfRange)
}

func columnError(column, columns int) error {
	return fmt.Errorf("column %d outside [0,%d): %w", column, columns, ErrOutOfRange)
}

func bandError(band, bands int) error {
	return fmt.Errorf("band %d outside [0,%d): %w", band, bands, ErrOutOfRange)
}

func countError(got, want int) error {
	return fmt.Errorf("got %d band values, want %d: %w", got, want, ErrDimensionMismatch)
}
