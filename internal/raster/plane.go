package raster

import "math"

// plane stores one band's values in row-major order. An unallocated plane
// reads as zero everywhere and allocates itself on the first non-zero write.
// Indices are not checked here; callers validate row, column and band first.
type plane interface {
	allocated() bool
	allocate()
	get(i int) uint64
	set(i int, v uint64)
	getFloat(i int) float64
	setFloat(i int, v float64)
	clone() plane
}

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type float interface {
	~float32 | ~float64
}

// intPlane backs Integer rasters. Writes keep the low bits that fit T.
type intPlane[T unsigned] struct {
	n    int
	data []T
}

func (p *intPlane[T]) allocated() bool { return p.data != nil }

func (p *intPlane[T]) allocate() {
	if p.data == nil {
		p.data = make([]T, p.n)
		logger().Debug("raster: plane allocated", "cells", p.n, "storage", storageOf[T]())
	}
}

func (p *intPlane[T]) get(i int) uint64 {
	if p.data == nil {
		return 0
	}
	return uint64(p.data[i])
}

func (p *intPlane[T]) set(i int, v uint64) {
	if p.data == nil {
		if v == 0 {
			return
		}
		p.allocate()
	}
	p.data[i] = T(v)
}

func (p *intPlane[T]) getFloat(i int) float64 {
	return float64(p.get(i))
}

func (p *intPlane[T]) setFloat(i int, v float64) {
	p.set(i, floatToUint(v))
}

func (p *intPlane[T]) clone() plane {
	c := &intPlane[T]{n: p.n}
	if p.data != nil {
		c.data = make([]T, len(p.data))
		copy(c.data, p.data)
	}
	return c
}

// floatPlane backs Floating rasters.
type floatPlane[T float] struct {
	n    int
	data []T
}

func (p *floatPlane[T]) allocated() bool { return p.data != nil }

func (p *floatPlane[T]) allocate() {
	if p.data == nil {
		p.data = make([]T, p.n)
		logger().Debug("raster: plane allocated", "cells", p.n, "storage", storageOf[T]())
	}
}

func (p *floatPlane[T]) get(i int) uint64 {
	return floatToUint(p.getFloat(i))
}

func (p *floatPlane[T]) set(i int, v uint64) {
	p.setFloat(i, float64(v))
}

func (p *floatPlane[T]) getFloat(i int) float64 {
	if p.data == nil {
		return 0
	}
	return float64(p.data[i])
}

func (p *floatPlane[T]) setFloat(i int, v float64) {
	if p.data == nil {
		if v == 0 {
			return
		}
		p.allocate()
	}
	p.data[i] = T(v)
}

func (p *floatPlane[T]) clone() plane {
	c := &floatPlane[T]{n: p.n}
	if p.data != nil {
		c.data = make([]T, len(p.data))
		copy(c.data, p.data)
	}
	return c
}

// floatToUint clamps v to the uint64 domain and truncates toward zero.
// NaN maps to zero.
func floatToUint(v float64) uint64 {
	if !(v > 0) {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}

func storageOf[T unsigned | float]() Storage {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		return Uint64
	}
}
