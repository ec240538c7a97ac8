package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func schema(properties map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func propDefault(typ, description string, def interface{}) map[string]interface{} {
	p := prop(typ, description)
	p["default"] = def
	return p
}

func arrayProp(itemType, description string) map[string]interface{} {
	p := prop("array", description)
	p["items"] = map[string]interface{}{"type": itemType}
	return p
}

var (
	idProp     = prop("string", "Raster handle returned by a creating tool")
	rowProp    = prop("integer", "Row index (0-based, from top)")
	columnProp = prop("integer", "Column index (0-based, from left)")
	modeProp   = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"exact", "nearest", "boxed"},
		"description": "Addressing mode: exact fails outside the grid, nearest clamps to the edge, boxed wraps periodically. Default exact",
		"default":     "exact",
	}
	windowProp = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"row":     map[string]interface{}{"type": "integer"},
			"column":  map[string]interface{}{"type": "integer"},
			"rows":    map[string]interface{}{"type": "integer"},
			"columns": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"row", "column", "rows", "columns"},
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Raster Lifecycle
		{
			Name:        "raster_create",
			Description: "Create an empty in-memory raster. Values start at zero; band planes are allocated on the first non-zero write.",
			InputSchema: schema(map[string]interface{}{
				"rows":    prop("integer", "Number of rows"),
				"columns": prop("integer", "Number of columns"),
				"bands":   prop("integer", "Number of bands"),
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"integer", "floating"},
					"description": "Value format. Default integer",
					"default":     "integer",
				},
				"resolution":  prop("integer", "Radiometric resolution in bits (1-64) for every band"),
				"resolutions": arrayProp("integer", "Optional per-band resolutions, overriding resolution"),
				"origin_x":    prop("number", "Optional map X of the top-left corner; attaches a north-up mapper together with origin_y and cell_size"),
				"origin_y":    prop("number", "Optional map Y of the top-left corner"),
				"cell_size":   prop("number", "Optional cell size in map units"),
				"eager":       propDefault("boolean", "Allocate every band plane immediately", false),
			}, "rows", "columns", "bands", "resolution"),
		},
		{
			Name:        "raster_load_image",
			Description: "Decode an image file (PNG, JPEG, GIF, TIFF) and copy its channels into a new raster, one band per channel.",
			InputSchema: schema(map[string]interface{}{
				"path": prop("string", "Absolute path to the image file"),
			}, "path"),
		},
		{
			Name:        "raster_open_image",
			Description: "Open an image file as a read-only proxy raster that reads pixels on demand without copying them.",
			InputSchema: schema(map[string]interface{}{
				"path": prop("string", "Absolute path to the image file"),
			}, "path"),
		},
		{
			Name:        "raster_info",
			Description: "Describe a raster: shape, format, resolutions, storage and geographic envelope.",
			InputSchema: schema(map[string]interface{}{"id": idProp}, "id"),
		},
		{
			Name:        "raster_list",
			Description: "List all rasters held by the server.",
			InputSchema: schema(map[string]interface{}{}),
		},
		{
			Name:        "raster_release",
			Description: "Release a raster handle.",
			InputSchema: schema(map[string]interface{}{"id": idProp}, "id"),
		},
		{
			Name:        "raster_clone",
			Description: "Deep-copy an in-memory raster into a new, independent raster.",
			InputSchema: schema(map[string]interface{}{"id": idProp}, "id"),
		},

		// Value Access
		{
			Name:        "raster_get_value",
			Description: "Read the value of one band, or of all bands when band is omitted, at a cell.",
			InputSchema: schema(map[string]interface{}{
				"id":     idProp,
				"row":    rowProp,
				"column": columnProp,
				"band":   prop("integer", "Optional band index; all bands when omitted"),
				"mode":   modeProp,
				"float":  propDefault("boolean", "Read through the floating-point accessors", false),
			}, "id", "row", "column"),
		},
		{
			Name:        "raster_set_value",
			Description: "Write one band (value) or all bands (values) at a cell.",
			InputSchema: schema(map[string]interface{}{
				"id":     idProp,
				"row":    rowProp,
				"column": columnProp,
				"band":   prop("integer", "Band index, required with value"),
				"value":  prop("number", "Value for a single band"),
				"values": arrayProp("number", "One value per band"),
				"float":  propDefault("boolean", "Write through the floating-point accessors", false),
			}, "id", "row", "column"),
		},
		{
			Name:        "raster_get_value_at",
			Description: "Read band values at a geographic coordinate of a mapped raster.",
			InputSchema: schema(map[string]interface{}{
				"id":    idProp,
				"x":     prop("number", "Map X coordinate"),
				"y":     prop("number", "Map Y coordinate"),
				"band":  prop("integer", "Optional band index; all bands when omitted"),
				"mode":  modeProp,
				"float": propDefault("boolean", "Read through the floating-point accessors", false),
			}, "id", "x", "y"),
		},
		{
			Name:        "raster_set_value_at",
			Description: "Write band values at a geographic coordinate of a mapped raster.",
			InputSchema: schema(map[string]interface{}{
				"id":     idProp,
				"x":      prop("number", "Map X coordinate"),
				"y":      prop("number", "Map Y coordinate"),
				"band":   prop("integer", "Band index, required with value"),
				"value":  prop("number", "Value for a single band"),
				"values": arrayProp("number", "One value per band"),
				"float":  propDefault("boolean", "Write through the floating-point accessors", false),
			}, "id", "x", "y"),
		},

		// Views
		{
			Name:        "raster_mask",
			Description: "Create a view onto a rectangular window of a raster. Reads and writes go through to the source.",
			InputSchema: schema(map[string]interface{}{
				"id":      idProp,
				"row":     prop("integer", "Top row of the window in the source"),
				"column":  prop("integer", "Left column of the window in the source"),
				"rows":    prop("integer", "Window height"),
				"columns": prop("integer", "Window width"),
			}, "id", "row", "column", "rows", "columns"),
		},
		{
			Name:        "raster_composite",
			Description: "Stack the bands of several same-sized rasters into one raster, in the order given.",
			InputSchema: schema(map[string]interface{}{
				"ids": arrayProp("string", "Raster handles, first raster's bands first"),
			}, "ids"),
		},
		{
			Name:        "raster_histogram",
			Description: "Return the value frequency table of an integer band, or of all bands when band is omitted.",
			InputSchema: schema(map[string]interface{}{
				"id":   idProp,
				"band": prop("integer", "Optional band index"),
			}, "id"),
		},

		// Display Operations
		{
			Name:        "raster_render",
			Description: "Render a window of one band (grayscale) or three bands (RGB) as a base64-encoded PNG.",
			InputSchema: schema(map[string]interface{}{
				"id":    idProp,
				"bands": arrayProp("integer", "One or three band indices. Default [0]"),
				"region": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"all", "top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
					"description": "Named region; ignored when window is given. Default all",
					"default":     "all",
				},
				"window": windowProp,
				"scale":  propDefault("number", "Optional scale factor (e.g., 2.0 to double size)", 1.0),
			}, "id"),
		},
		{
			Name:        "raster_export_band",
			Description: "Export one band as a grayscale PNG or TIFF image, base64-encoded.",
			InputSchema: schema(map[string]interface{}{
				"id":   idProp,
				"band": prop("integer", "Band index"),
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"png", "tiff"},
					"description": "Output format. Default png",
					"default":     "png",
				},
			}, "id", "band"),
		},
		{
			Name:        "raster_sample_color",
			Description: "Read three bands of a cell as an RGB color (hex, RGB, HSL).",
			InputSchema: schema(map[string]interface{}{
				"id":     idProp,
				"row":    rowProp,
				"column": columnProp,
				"bands":  arrayProp("integer", "Red, green and blue band indices. Default [0,1,2]"),
			}, "id", "row", "column"),
		},
		{
			Name:        "raster_dominant_colors",
			Description: "Find the most common display colors of three bands, optionally within a window.",
			InputSchema: schema(map[string]interface{}{
				"id":     idProp,
				"bands":  arrayProp("integer", "Red, green and blue band indices. Default [0,1,2]"),
				"count":  propDefault("integer", "Number of colors to return", 5),
				"window": windowProp,
			}, "id"),
		},

		// Analysis Operations
		{
			Name:        "raster_measure_distance",
			Description: "Measure the distance and angle between two cells, in cells and, for mapped rasters, in map units.",
			InputSchema: schema(map[string]interface{}{
				"id":      idProp,
				"row1":    prop("integer", "First cell row"),
				"column1": prop("integer", "First cell column"),
				"row2":    prop("integer", "Second cell row"),
				"column2": prop("integer", "Second cell column"),
			}, "id", "row1", "column1", "row2", "column2"),
		},
		{
			Name:        "raster_compare_windows",
			Description: "Compare one band of two windows cell by cell.",
			InputSchema: schema(map[string]interface{}{
				"id":      idProp,
				"band":    propDefault("integer", "Band index", 0),
				"window1": windowProp,
				"window2": windowProp,
			}, "id", "window1", "window2"),
		},
		{
			Name:        "raster_edge_detect",
			Description: "Run Canny edge detection on a band and register the 1-bit edge mask as a new raster.",
			InputSchema: schema(map[string]interface{}{
				"id":             idProp,
				"band":           propDefault("integer", "Band index", 0),
				"threshold_low":  propDefault("integer", "Low threshold (0-255)", 50),
				"threshold_high": propDefault("integer", "High threshold (0-255)", 150),
			}, "id"),
		},

		// Detection Operations
		{
			Name:        "raster_detect_regions",
			Description: "Find 8-connected regions of non-zero cells in a band. Run on a raster_edge_detect output or any mask band.",
			InputSchema: schema(map[string]interface{}{
				"id":        idProp,
				"band":      propDefault("integer", "Band index", 0),
				"min_cells": propDefault("integer", "Smallest region to report, in cells", 1),
			}, "id"),
		},
		{
			Name:        "raster_detect_lines",
			Description: "Find straight lines of non-zero cells in a band using a Hough transform. Returns endpoints, angle and thickness for each line.",
			InputSchema: schema(map[string]interface{}{
				"id":         idProp,
				"band":       propDefault("integer", "Band index", 0),
				"min_length": propDefault("integer", "Shortest line to report, in cells", 10),
			}, "id"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
