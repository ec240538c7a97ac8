package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// Registry holds the rasters a client has created, keyed by an opaque handle.
//
// Views (masked and composite rasters) keep their sources alive on their own;
// releasing a source handle only removes the handle.
type Registry struct {
	mu      sync.RWMutex
	rasters map[string]*entry
}

type entry struct {
	raster  raster.Raster
	kind    string
	created time.Time
}

// RasterSummary describes a registered raster.
type RasterSummary struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Format      string    `json:"format"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	Bands       int       `json:"bands"`
	Resolutions []int     `json:"resolutions"`
	Readable    bool      `json:"readable"`
	Writable    bool      `json:"writable"`
	Mapped      bool      `json:"mapped"`
	Created     time.Time `json:"created"`
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rasters: make(map[string]*entry)}
}

// Add registers r and returns its handle.
func (g *Registry) Add(r raster.Raster, kind string) string {
	id := uuid.NewString()
	g.mu.Lock()
	g.rasters[id] = &entry{raster: r, kind: kind, created: time.Now()}
	g.mu.Unlock()
	return id
}

// Get returns the raster registered under id.
func (g *Registry) Get(id string) (raster.Raster, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.rasters[id]
	if !ok {
		return nil, fmt.Errorf("unknown raster: %q", id)
	}
	return e.raster, nil
}

// Describe returns the summary of the raster registered under id.
func (g *Registry) Describe(id string) (*RasterSummary, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.rasters[id]
	if !ok {
		return nil, fmt.Errorf("unknown raster: %q", id)
	}
	return summarize(id, e), nil
}

// Release removes the handle id.
func (g *Registry) Release(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rasters[id]; !ok {
		return fmt.Errorf("unknown raster: %q", id)
	}
	delete(g.rasters, id)
	return nil
}

// List returns every registered raster, oldest first.
func (g *Registry) List() []RasterSummary {
	g.mu.RLock()
	out := make([]RasterSummary, 0, len(g.rasters))
	for id, e := range g.rasters {
		out = append(out, *summarize(id, e))
	}
	g.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of registered rasters.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rasters)
}

func summarize(id string, e *entry) *RasterSummary {
	r := e.raster
	return &RasterSummary{
		ID:          id,
		Kind:        e.kind,
		Format:      r.Format().String(),
		Rows:        r.NumberOfRows(),
		Columns:     r.NumberOfColumns(),
		Bands:       r.NumberOfBands(),
		Resolutions: r.RadiometricResolutions(),
		Readable:    r.IsReadable(),
		Writable:    r.IsWritable(),
		Mapped:      r.Mapper() != nil,
		Created:     e.created,
	}
}
