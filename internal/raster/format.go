package raster

import "fmt"

// Format is the value domain of a raster, fixed at construction.
type Format uint8

const (
	// Integer rasters store unsigned integer values.
	Integer Format = iota
	// Floating rasters store IEEE 754 values.
	Floating
)

func (f Format) String() string {
	switch f {
	case Integer:
		return "integer"
	case Floating:
		return "floating"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat accepts the names produced by Format.String.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "integer", "int", "":
		return Integer, nil
	case "floating", "float":
		return Floating, nil
	}
	return Integer, fmt.Errorf("unknown raster format %q", s)
}

// Storage is the concrete element type of a raster's value planes.
type Storage uint8

const (
	Uint8 Storage = iota
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

// Bits returns the storage width in bits.
func (s Storage) Bits() int {
	switch s {
	case Uint8:
		return 8
	case Uint16:
		return 16
	case Uint32, Float32:
		return 32
	default:
		return 64
	}
}

// Format returns the value domain served by the storage.
func (s Storage) Format() Format {
	if s == Float32 || s == Float64 {
		return Floating
	}
	return Integer
}

func (s Storage) String() string {
	switch s {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Storage(%d)", uint8(s))
	}
}

// SelectStorage picks the narrowest storage whose width is at least the
// requested radiometric resolution. Integer resolutions beyond every narrower
// width land on Uint64; floating rasters use Float32 unless the resolution
// exceeds 32 bits.
func SelectStorage(format Format, resolution int) Storage {
	if format == Floating {
		if resolution > 32 {
			return Float64
		}
		return Float32
	}
	switch {
	case resolution <= 8:
		return Uint8
	case resolution <= 16:
		return Uint16
	case resolution <= 32:
		return Uint32
	default:
		return Uint64
	}
}

// newPlane returns an unallocated plane of n cells for the storage.
func (s Storage) newPlane(n int) plane {
	switch s {
	case Uint8:
		return &intPlane[uint8]{n: n}
	case Uint16:
		return &intPlane[uint16]{n: n}
	case Uint32:
		return &intPlane[uint32]{n: n}
	case Uint64:
		return &intPlane[uint64]{n: n}
	case Float32:
		return &floatPlane[float32]{n: n}
	default:
		return &floatPlane[float64]{n: n}
	}
}
