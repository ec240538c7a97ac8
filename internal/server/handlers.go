package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/ironsheep/raster-tools-mcp/internal/detection"
	"github.com/ironsheep/raster-tools-mcp/internal/imaging"
	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "raster_create", "raster_get_value").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// The error data carries the message and, for raster errors, its kind.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", toolErrorData(err))
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Raster Lifecycle
	case "raster_create":
		return s.handleRasterCreate(args)
	case "raster_load_image":
		return s.handleRasterLoadImage(args)
	case "raster_open_image":
		return s.handleRasterOpenImage(args)
	case "raster_info":
		return s.handleRasterInfo(args)
	case "raster_list":
		return s.rasters.List(), nil
	case "raster_release":
		return s.handleRasterRelease(args)
	case "raster_clone":
		return s.handleRasterClone(args)

	// Value Access
	case "raster_get_value":
		return s.handleRasterGetValue(args)
	case "raster_set_value":
		return s.handleRasterSetValue(args)
	case "raster_get_value_at":
		return s.handleRasterGetValueAt(args)
	case "raster_set_value_at":
		return s.handleRasterSetValueAt(args)

	// Views
	case "raster_mask":
		return s.handleRasterMask(args)
	case "raster_composite":
		return s.handleRasterComposite(args)
	case "raster_histogram":
		return s.handleRasterHistogram(args)

	// Display Operations
	case "raster_render":
		return s.handleRasterRender(args)
	case "raster_export_band":
		return s.handleRasterExportBand(args)
	case "raster_sample_color":
		return s.handleRasterSampleColor(args)
	case "raster_dominant_colors":
		return s.handleRasterDominantColors(args)

	// Analysis Operations
	case "raster_measure_distance":
		return s.handleRasterMeasureDistance(args)
	case "raster_compare_windows":
		return s.handleRasterCompareWindows(args)
	case "raster_edge_detect":
		return s.handleRasterEdgeDetect(args)
	case "raster_detect_regions":
		return s.handleRasterDetectRegions(args)
	case "raster_detect_lines":
		return s.handleRasterDetectLines(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// toolErrorData describes a tool failure for the client.
func toolErrorData(err error) map[string]string {
	data := map[string]string{"error": err.Error()}
	switch {
	case errors.Is(err, raster.ErrOutOfRange):
		data["kind"] = "out_of_range"
	case errors.Is(err, raster.ErrDimensionMismatch):
		data["kind"] = "dimension_mismatch"
	case errors.Is(err, raster.ErrUnsupported):
		data["kind"] = "unsupported"
	}
	return data
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decode unmarshals tool arguments, treating a missing payload as empty.
func decode(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	return json.Unmarshal(args, v)
}

type idArgs struct {
	ID string `json:"id"`
}

// rasterInfo is the description returned by every tool that creates or
// inspects a raster.
type rasterInfo struct {
	RasterSummary
	Storage        string                  `json:"storage,omitempty"`
	Allocated      []bool                  `json:"allocated,omitempty"`
	SpectralRanges []*raster.SpectralRange `json:"spectral_ranges"`
	Envelope       *orb.Bound              `json:"envelope,omitempty"`
	Corners        orb.Ring                `json:"corners,omitempty"`
}

func (s *Server) describe(id string) (*rasterInfo, error) {
	summary, err := s.rasters.Describe(id)
	if err != nil {
		return nil, err
	}
	r, _ := s.rasters.Get(id)

	info := &rasterInfo{
		RasterSummary:  *summary,
		SpectralRanges: r.SpectralRanges(),
	}
	if m, ok := r.(*raster.Memory); ok {
		info.Storage = m.Storage().String()
		info.Allocated = make([]bool, m.NumberOfBands())
		for b := range info.Allocated {
			info.Allocated[b] = m.Allocated(b)
		}
	}
	if ring, err := raster.BoundingCoordinates(r); err == nil {
		bound := ring.Bound()
		info.Envelope = &bound
		info.Corners = ring
	}
	return info, nil
}

func (s *Server) register(r raster.Raster, kind string) (interface{}, error) {
	return s.describe(s.rasters.Add(r, kind))
}

// === Raster Lifecycle Handlers ===

type rasterCreateArgs struct {
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	Bands       int      `json:"bands"`
	Format      string   `json:"format"`
	Resolution  int      `json:"resolution"`
	Resolutions []int    `json:"resolutions"`
	OriginX     float64  `json:"origin_x"`
	OriginY     float64  `json:"origin_y"`
	CellSize    *float64 `json:"cell_size"`
	Eager       bool     `json:"eager"`
}

func (s *Server) handleRasterCreate(args json.RawMessage) (interface{}, error) {
	var a rasterCreateArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	format, err := raster.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	var opts []raster.Option
	if a.Resolutions != nil {
		opts = append(opts, raster.WithResolutions(a.Resolutions...))
	}
	if a.CellSize != nil {
		opts = append(opts, raster.WithMapper(raster.NewGeoTransform(a.OriginX, a.OriginY, *a.CellSize)))
	}
	if a.Eager {
		opts = append(opts, raster.WithEagerPlanes())
	}

	r, err := s.factory.Create(a.Rows, a.Columns, a.Bands, format, a.Resolution, opts...)
	if err != nil {
		return nil, err
	}
	return s.register(r, "memory")
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleRasterLoadImage(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := imaging.LoadRaster(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	return s.register(r, "image")
}

func (s *Server) handleRasterOpenImage(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	p, err := raster.NewProxy(imaging.NewImageEntity(img))
	if err != nil {
		return nil, err
	}
	return s.register(p, "proxy")
}

func (s *Server) handleRasterInfo(args json.RawMessage) (interface{}, error) {
	var a idArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return s.describe(a.ID)
}

func (s *Server) handleRasterRelease(args json.RawMessage) (interface{}, error) {
	var a idArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if err := s.rasters.Release(a.ID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"released": a.ID}, nil
}

func (s *Server) handleRasterClone(args json.RawMessage) (interface{}, error) {
	var a idArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	m, ok := r.(*raster.Memory)
	if !ok {
		return nil, fmt.Errorf("clone of %T: %w", r, raster.ErrUnsupported)
	}
	return s.register(m.Clone(), "memory")
}

// === Value Access Handlers ===

// cellResult holds the values read from or written to one cell.
type cellResult struct {
	Row         int       `json:"row"`
	Column      int       `json:"column"`
	Band        *int      `json:"band,omitempty"`
	Values      []uint64  `json:"values,omitempty"`
	FloatValues []float64 `json:"float_values,omitempty"`
}

type getValueArgs struct {
	ID     string `json:"id"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Band   *int   `json:"band"`
	Mode   string `json:"mode"`
	Float  bool   `json:"float"`
}

func (s *Server) handleRasterGetValue(args json.RawMessage) (interface{}, error) {
	var a getValueArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return readCell(r, a.Row, a.Column, a.Band, a.Mode, a.Float)
}

type getValueAtArgs struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Band  *int    `json:"band"`
	Mode  string  `json:"mode"`
	Float bool    `json:"float"`
}

func (s *Server) handleRasterGetValueAt(args json.RawMessage) (interface{}, error) {
	var a getValueAtArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	row, column, err := raster.Locate(r, orb.Point{a.X, a.Y})
	if err != nil {
		return nil, err
	}
	return readCell(r, row, column, a.Band, a.Mode, a.Float)
}

type setValueArgs struct {
	ID     string        `json:"id"`
	Row    int           `json:"row"`
	Column int           `json:"column"`
	Band   *int          `json:"band"`
	Value  *json.Number  `json:"value"`
	Values []json.Number `json:"values"`
	Float  bool          `json:"float"`
}

func (s *Server) handleRasterSetValue(args json.RawMessage) (interface{}, error) {
	var a setValueArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	if err := writeCell(r, a.Row, a.Column, a.Band, a.Value, a.Values, a.Float); err != nil {
		return nil, err
	}
	return readCell(r, a.Row, a.Column, a.Band, "exact", a.Float)
}

type setValueAtArgs struct {
	ID     string        `json:"id"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Band   *int          `json:"band"`
	Value  *json.Number  `json:"value"`
	Values []json.Number `json:"values"`
	Float  bool          `json:"float"`
}

func (s *Server) handleRasterSetValueAt(args json.RawMessage) (interface{}, error) {
	var a setValueAtArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	row, column, err := raster.Locate(r, orb.Point{a.X, a.Y})
	if err != nil {
		return nil, err
	}
	if err := writeCell(r, row, column, a.Band, a.Value, a.Values, a.Float); err != nil {
		return nil, err
	}
	return readCell(r, row, column, a.Band, "exact", a.Float)
}

// readCell reads one band, or all bands when band is nil, in the given
// addressing mode.
func readCell(r raster.Raster, row, column int, band *int, mode string, float bool) (*cellResult, error) {
	res := &cellResult{Row: row, Column: column, Band: band}
	var err error
	switch mode {
	case "", "exact":
		if band == nil && float {
			res.FloatValues, err = r.FloatValues(row, column)
		} else if band == nil {
			res.Values, err = r.Values(row, column)
		} else if float {
			res.FloatValues, err = one(r.FloatValue(row, column, *band))
		} else {
			res.Values, err = one(r.Value(row, column, *band))
		}
	case "nearest":
		if band == nil && float {
			res.FloatValues, err = r.NearestFloatValues(row, column)
		} else if band == nil {
			res.Values, err = r.NearestValues(row, column)
		} else if float {
			res.FloatValues, err = one(r.NearestFloatValue(row, column, *band))
		} else {
			res.Values, err = one(r.NearestValue(row, column, *band))
		}
	case "boxed":
		if band == nil && float {
			res.FloatValues, err = r.BoxedFloatValues(row, column)
		} else if band == nil {
			res.Values, err = r.BoxedValues(row, column)
		} else if float {
			res.FloatValues, err = one(r.BoxedFloatValue(row, column, *band))
		} else {
			res.Values, err = one(r.BoxedValue(row, column, *band))
		}
	default:
		return nil, fmt.Errorf("unknown addressing mode: %s", mode)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func one[T any](v T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	return []T{v}, nil
}

// writeCell writes value to band, or values to every band when band is nil.
// Integer writes parse the numbers as unsigned integers so 64-bit values
// survive JSON.
func writeCell(r raster.Raster, row, column int, band *int, value *json.Number, values []json.Number, float bool) error {
	if band != nil {
		if value == nil {
			return fmt.Errorf("band %d given without value", *band)
		}
		if float {
			f, err := value.Float64()
			if err != nil {
				return err
			}
			return r.SetFloatValue(row, column, *band, f)
		}
		v, err := strconv.ParseUint(value.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("integer value %s: %w", value, err)
		}
		return r.SetValue(row, column, *band, v)
	}

	if values == nil {
		return fmt.Errorf("either band and value or values is required")
	}
	if float {
		fs := make([]float64, len(values))
		for i, n := range values {
			f, err := n.Float64()
			if err != nil {
				return err
			}
			fs[i] = f
		}
		return r.SetFloatValues(row, column, fs)
	}
	vs := make([]uint64, len(values))
	for i, n := range values {
		v, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("integer value %s: %w", n, err)
		}
		vs[i] = v
	}
	return r.SetValues(row, column, vs)
}

// === View Handlers ===

type maskArgs struct {
	ID      string `json:"id"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

func (s *Server) handleRasterMask(args json.RawMessage) (interface{}, error) {
	var a maskArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	m, err := raster.NewMasked(r, a.Row, a.Column, a.Rows, a.Columns)
	if err != nil {
		return nil, err
	}
	return s.register(m, "masked")
}

type compositeArgs struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleRasterComposite(args json.RawMessage) (interface{}, error) {
	var a compositeArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	sources := make([]raster.Raster, 0, len(a.IDs))
	for _, id := range a.IDs {
		r, err := s.rasters.Get(id)
		if err != nil {
			return nil, err
		}
		sources = append(sources, r)
	}
	c, err := raster.NewComposite(sources...)
	if err != nil {
		return nil, err
	}
	return s.register(c, "composite")
}

type histogramArgs struct {
	ID   string `json:"id"`
	Band *int   `json:"band"`
}

// histogramResult is the frequency table of one band, non-zero buckets only.
type histogramResult struct {
	Band       int             `json:"band"`
	Resolution int             `json:"resolution"`
	Total      int64           `json:"total"`
	Buckets    []raster.Bucket `json:"buckets"`
}

func newHistogramResult(band int, h *raster.Histogram) histogramResult {
	return histogramResult{
		Band:       band,
		Resolution: h.Resolution(),
		Total:      h.Total(),
		Buckets:    h.Buckets(),
	}
}

func (s *Server) handleRasterHistogram(args json.RawMessage) (interface{}, error) {
	var a histogramArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	if a.Band != nil {
		h, err := r.Histogram(*a.Band)
		if err != nil {
			return nil, err
		}
		return newHistogramResult(*a.Band, h), nil
	}
	hs, err := r.Histograms()
	if err != nil {
		return nil, err
	}
	out := make([]histogramResult, len(hs))
	for b, h := range hs {
		out[b] = newHistogramResult(b, h)
	}
	return out, nil
}

// === Display Handlers ===

type renderArgs struct {
	ID     string          `json:"id"`
	Bands  []int           `json:"bands"`
	Region string          `json:"region"`
	Window *imaging.Window `json:"window"`
	Scale  float64         `json:"scale"`
}

func (s *Server) handleRasterRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if len(a.Bands) == 0 {
		a.Bands = []int{0}
	}
	if a.Region == "" {
		a.Region = "all"
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	w := a.Window
	if w == nil {
		region, err := imaging.RegionWindow(r.NumberOfRows(), r.NumberOfColumns(), a.Region)
		if err != nil {
			return nil, err
		}
		w = &region
	}
	return imaging.RenderRegion(r, a.Bands, *w, a.Scale)
}

type exportArgs struct {
	ID     string `json:"id"`
	Band   int    `json:"band"`
	Format string `json:"format"`
}

func (s *Server) handleRasterExportBand(args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return imaging.ExportBand(r, a.Band, a.Format)
}

// rgbBands returns the three bands to read as red, green and blue.
func rgbBands(bands []int) ([3]int, error) {
	if len(bands) == 0 {
		return [3]int{0, 1, 2}, nil
	}
	if len(bands) != 3 {
		return [3]int{}, fmt.Errorf("need 3 bands for color, got %d", len(bands))
	}
	return [3]int{bands[0], bands[1], bands[2]}, nil
}

type sampleColorArgs struct {
	ID     string `json:"id"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Bands  []int  `json:"bands"`
}

func (s *Server) handleRasterSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	bands, err := rgbBands(a.Bands)
	if err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(r, a.Row, a.Column, bands)
}

type dominantColorsArgs struct {
	ID     string          `json:"id"`
	Bands  []int           `json:"bands"`
	Count  int             `json:"count"`
	Window *imaging.Window `json:"window"`
}

func (s *Server) handleRasterDominantColors(args json.RawMessage) (interface{}, error) {
	var a dominantColorsArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	bands, err := rgbBands(a.Bands)
	if err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return imaging.DominantColors(r, bands, a.Count, a.Window)
}

// === Analysis Handlers ===

type measureArgs struct {
	ID      string `json:"id"`
	Row1    int    `json:"row1"`
	Column1 int    `json:"column1"`
	Row2    int    `json:"row2"`
	Column2 int    `json:"column2"`
}

func (s *Server) handleRasterMeasureDistance(args json.RawMessage) (interface{}, error) {
	var a measureArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return imaging.MeasureDistance(r, imaging.Cell{Row: a.Row1, Column: a.Column1}, imaging.Cell{Row: a.Row2, Column: a.Column2})
}

type compareArgs struct {
	ID      string         `json:"id"`
	Band    int            `json:"band"`
	Window1 imaging.Window `json:"window1"`
	Window2 imaging.Window `json:"window2"`
}

func (s *Server) handleRasterCompareWindows(args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return imaging.CompareWindows(r, a.Band, a.Window1, a.Window2)
}

type edgeDetectArgs struct {
	ID            string `json:"id"`
	Band          int    `json:"band"`
	ThresholdLow  *int   `json:"threshold_low"`
	ThresholdHigh *int   `json:"threshold_high"`
}

func (s *Server) handleRasterEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	low, high := 50, 150
	if a.ThresholdLow != nil {
		low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		high = *a.ThresholdHigh
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	edges, err := imaging.EdgeDetect(r, a.Band, low, high)
	if err != nil {
		return nil, err
	}
	return s.register(edges, "edges")
}

type detectRegionsArgs struct {
	ID       string `json:"id"`
	Band     int    `json:"band"`
	MinCells *int   `json:"min_cells"`
}

func (s *Server) handleRasterDetectRegions(args json.RawMessage) (interface{}, error) {
	var a detectRegionsArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	minCells := 1
	if a.MinCells != nil {
		minCells = *a.MinCells
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return detection.Regions(r, a.Band, minCells)
}

type detectLinesArgs struct {
	ID        string `json:"id"`
	Band      int    `json:"band"`
	MinLength *int   `json:"min_length"`
}

func (s *Server) handleRasterDetectLines(args json.RawMessage) (interface{}, error) {
	var a detectLinesArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	minLength := 10
	if a.MinLength != nil {
		minLength = *a.MinLength
	}
	r, err := s.rasters.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return detection.Lines(r, a.Band, minLength)
}
