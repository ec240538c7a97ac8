package server

import (
	"testing"

	"github.com/ironsheep/raster-tools-mcp/internal/imaging"
	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"raster_create",
		"raster_load_image",
		"raster_open_image",
		"raster_info",
		"raster_list",
		"raster_release",
		"raster_clone",
		"raster_get_value",
		"raster_set_value",
		"raster_get_value_at",
		"raster_set_value_at",
		"raster_mask",
		"raster_composite",
		"raster_histogram",
		"raster_render",
		"raster_export_band",
		"raster_sample_color",
		"raster_dominant_colors",
		"raster_measure_distance",
		"raster_compare_windows",
		"raster_edge_detect",
		"raster_detect_regions",
		"raster_detect_lines",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Tool %s defined twice", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be declared
			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required parameter %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredID(t *testing.T) {
	// Tools operating on an existing raster take its handle
	withoutID := map[string]bool{
		"raster_create":     true,
		"raster_load_image": true,
		"raster_open_image": true,
		"raster_list":       true,
		"raster_composite":  true,
	}

	for _, tool := range GetToolDefinitions() {
		if withoutID[tool.Name] {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}

			hasID := false
			for _, r := range required {
				if r == "id" {
					hasID = true
					break
				}
			}
			if !hasID {
				t.Error("Tool should require 'id' parameter")
			}
		})
	}
}

func TestToolDefinitions_ModeEnum(t *testing.T) {
	for _, name := range []string{"raster_get_value", "raster_get_value_at"} {
		tool := findTool(t, name)
		props := tool.InputSchema["properties"].(map[string]interface{})

		mode, ok := props["mode"].(map[string]interface{})
		if !ok {
			t.Fatalf("%s: mode property should exist and be a map", name)
		}
		enum, ok := mode["enum"].([]string)
		if !ok || len(enum) != 3 {
			t.Fatalf("%s: mode enum: got %v", name, mode["enum"])
		}
		if enum[0] != "exact" || enum[1] != "nearest" || enum[2] != "boxed" {
			t.Errorf("%s: mode enum: got %v", name, enum)
		}
	}
}

func TestToolDefinitions_RenderRegions(t *testing.T) {
	tool := findTool(t, "raster_render")

	props, ok := tool.InputSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties should be a map")
	}
	regionProp, ok := props["region"].(map[string]interface{})
	if !ok {
		t.Fatal("region property should exist and be a map")
	}
	enum, ok := regionProp["enum"].([]string)
	if !ok {
		t.Fatal("region should have enum")
	}

	// Every advertised region must be accepted by the renderer
	for _, region := range enum {
		if _, err := imaging.RegionWindow(10, 10, region); err != nil {
			t.Errorf("region %q rejected: %v", region, err)
		}
	}
}

func TestToolDefinitions_CreateFormats(t *testing.T) {
	tool := findTool(t, "raster_create")
	props := tool.InputSchema["properties"].(map[string]interface{})
	format := props["format"].(map[string]interface{})

	for _, name := range format["enum"].([]string) {
		if _, err := raster.ParseFormat(name); err != nil {
			t.Errorf("format %q rejected: %v", name, err)
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"raster_create":          {"eager": false},
		"raster_get_value":       {"mode": "exact", "float": false},
		"raster_render":          {"region": "all", "scale": 1.0},
		"raster_export_band":     {"format": "png"},
		"raster_dominant_colors": {"count": 5},
		"raster_compare_windows": {"band": 0},
		"raster_edge_detect":     {"band": 0, "threshold_low": 50, "threshold_high": 150},
		"raster_detect_regions":  {"band": 0, "min_cells": 1},
		"raster_detect_lines":    {"band": 0, "min_length": 10},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for toolName, expectedDefaults := range toolDefaults {
		tool, ok := toolMap[toolName]
		if !ok {
			t.Errorf("Tool %s not found", toolName)
			continue
		}

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expectedDefault := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}

			actualDefault, ok := param["default"]
			if !ok {
				t.Errorf("%s.%s: missing default value", toolName, paramName)
				continue
			}
			if actualDefault != expectedDefault {
				t.Errorf("%s.%s: default got %v (%T), want %v (%T)",
					toolName, paramName, actualDefault, actualDefault, expectedDefault, expectedDefault)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(raster.Factory{})
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}

// Every listed tool must be dispatched; an unknown name yields "unknown tool".
func TestToolDefinitions_Dispatched(t *testing.T) {
	s := New(raster.Factory{})
	for _, tool := range GetToolDefinitions() {
		_, err := s.executeTool(tool.Name, []byte(`{}`))
		if err != nil && err.Error() == "unknown tool: "+tool.Name {
			t.Errorf("tool %s is listed but not dispatched", tool.Name)
		}
	}
}

func findTool(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("%s tool not found", name)
	return Tool{}
}
