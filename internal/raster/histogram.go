package raster

import (
	"fmt"
	"sort"
)

// denseHistogramLimit is the widest resolution that gets a dense table.
// Wider resolutions count into a map keyed by value.
const denseHistogramLimit = 16

// Histogram is the value frequency table of one band.
//
// Values inside [0, 2^resolution) are counted in a dense table when the
// resolution is at most 16 bits. Every other value, including values above
// the resolution that the storage width still admits, is counted in a sparse
// map, so the total always equals the number of cells.
type Histogram struct {
	resolution int
	dense      []int64
	sparse     map[uint64]int64
}

func newHistogram(resolution int) *Histogram {
	h := &Histogram{resolution: resolution}
	if resolution <= denseHistogramLimit {
		h.dense = make([]int64, 1<<uint(resolution))
	}
	return h
}

// Resolution returns the radiometric resolution the histogram was built for.
func (h *Histogram) Resolution() int { return h.resolution }

// Count returns the number of cells holding v.
func (h *Histogram) Count(v uint64) int64 {
	if v < uint64(len(h.dense)) {
		return h.dense[v]
	}
	return h.sparse[v]
}

// Total returns the number of counted cells.
func (h *Histogram) Total() int64 {
	var total int64
	for _, c := range h.dense {
		total += c
	}
	for _, c := range h.sparse {
		total += c
	}
	return total
}

// Dense returns a copy of the dense table indexed by value, or nil when the
// resolution is too wide for one.
func (h *Histogram) Dense() []int64 {
	if h.dense == nil {
		return nil
	}
	out := make([]int64, len(h.dense))
	copy(out, h.dense)
	return out
}

// Bucket is one non-empty histogram entry.
type Bucket struct {
	Value uint64 `json:"value"`
	Count int64  `json:"count"`
}

// Buckets returns the non-empty entries in ascending value order.
func (h *Histogram) Buckets() []Bucket {
	var out []Bucket
	for v, c := range h.dense {
		if c != 0 {
			out = append(out, Bucket{Value: uint64(v), Count: c})
		}
	}
	start := len(out)
	for v, c := range h.sparse {
		if c != 0 {
			out = append(out, Bucket{Value: v, Count: c})
		}
	}
	tail := out[start:]
	sort.Slice(tail, func(i, j int) bool { return tail[i].Value < tail[j].Value })
	return out
}

// Equal reports whether two histograms count the same values.
func (h *Histogram) Equal(o *Histogram) bool {
	if h == nil || o == nil {
		return h == o
	}
	if h.resolution != o.resolution {
		return false
	}
	for _, b := range h.Buckets() {
		if o.Count(b.Value) != b.Count {
			return false
		}
	}
	return h.Total() == o.Total()
}

func (h *Histogram) String() string {
	return fmt.Sprintf("Histogram(resolution=%d, buckets=%d, total=%d)", h.resolution, len(h.Buckets()), h.Total())
}

func (h *Histogram) add(v uint64, n int64) {
	if v < uint64(len(h.dense)) {
		h.dense[v] += n
		return
	}
	if h.sparse == nil {
		h.sparse = make(map[uint64]int64)
	}
	h.sparse[v] += n
	if h.sparse[v] == 0 {
		delete(h.sparse, v)
	}
}

// move patches the table for one cell changing from prev to next.
func (h *Histogram) move(prev, next uint64) {
	if prev == next {
		return
	}
	h.add(prev, -1)
	h.add(next, 1)
}

func (h *Histogram) clone() *Histogram {
	c := &Histogram{resolution: h.resolution, dense: h.Dense()}
	if h.sparse != nil {
		c.sparse = make(map[uint64]int64, len(h.sparse))
		for v, n := range h.sparse {
			c.sparse[v] = n
		}
	}
	return c
}

// histogramCache holds the lazily materialized histograms of a raster's
// bands. A nil entry has not been computed and is never patched.
type histogramCache struct {
	bands []*Histogram
}

func newHistogramCache(bands int) *histogramCache {
	return &histogramCache{bands: make([]*Histogram, bands)}
}

// get returns a snapshot of the band's histogram, materializing it with
// build on first use.
func (c *histogramCache) get(band int, build func() (*Histogram, error)) (*Histogram, error) {
	if c.bands[band] == nil {
		h, err := build()
		if err != nil {
			return nil, err
		}
		c.bands[band] = h
		logger().Debug("raster: histogram materialized", "band", band, "resolution", h.resolution)
	}
	return c.bands[band].clone(), nil
}

// observe patches an already materialized histogram; it is a no-op otherwise.
func (c *histogramCache) observe(band int, prev, next uint64) {
	if h := c.bands[band]; h != nil {
		h.move(prev, next)
	}
}

// scanHistogram counts values read through at over a rows×columns window.
func scanHistogram(resolution, rows, columns int, at func(row, column int) (uint64, error)) (*Histogram, error) {
	h := newHistogram(resolution)
	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			v, err := at(r, c)
			if err != nil {
				return nil, err
			}
			h.add(v, 1)
		}
	}
	return h, nil
}
