// Package server implements the MCP (Model Context Protocol) server for raster tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the raster store
// through the MCP protocol. Clients create, load and view rasters, receive an
// opaque handle for each, and pass that handle to every later tool call.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Raster Lifecycle:
//   - raster_create: Empty in-memory raster, optionally north-up mapped
//   - raster_load_image: Copy an image file's channels into a raster
//   - raster_open_image: Read-only proxy raster over an image file
//   - raster_info, raster_list: Describe registered rasters
//   - raster_release: Drop a handle
//   - raster_clone: Deep copy of an in-memory raster
//
// Value Access:
//   - raster_get_value, raster_set_value: Cell access in exact, nearest or boxed mode
//   - raster_get_value_at, raster_set_value_at: The same through the raster's mapper
//
// Views:
//   - raster_mask: Window onto a raster
//   - raster_composite: Band stack of same-sized rasters
//   - raster_histogram: Value frequency tables
//
// Display and Analysis:
//   - raster_render, raster_export_band: PNG and TIFF output
//   - raster_sample_color, raster_dominant_colors: Band triplets as colors
//   - raster_measure_distance, raster_compare_windows, raster_edge_detect
//   - raster_detect_regions, raster_detect_lines: Structure in a mask band
//
// # Handles
//
// Every raster a tool produces is held in a [Registry] under a random UUID.
// Views hold their sources directly, so releasing a source handle does not
// invalidate masks or composites built on it.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the Go error string under "error" and, for raster failures, a
//     "kind" of out_of_range, dimension_mismatch or unsupported
//
// # Usage
//
//	srv := server.New(raster.Factory{})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
