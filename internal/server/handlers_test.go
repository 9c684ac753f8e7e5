package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/fern-ppm/internal/ppm"
	"github.com/ironsheep/fern-ppm/internal/raster"
)

// createTestPPMFile writes a width×height PPM where pixel (row, col) is
// (row, col, 7) and returns its path.
func createTestPPMFile(t *testing.T, width, height int) string {
	t.Helper()

	r := raster.New(width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			p, _ := r.Pixel(row, col)
			*p = raster.Pixel{R: uint8(row), G: uint8(col), B: 7}
		}
	}

	path := filepath.Join(t.TempDir(), "test.ppm")
	if err := ppm.WriteFile(r, path); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleToolsCall returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

func TestHandleToolsCall_PPMInfo(t *testing.T) {
	s := newTestServer()
	path := createTestPPMFile(t, 20, 10)

	var info ppm.Info
	decodeResult(t, callTool(t, s, "ppm_info", map[string]interface{}{"path": path}), &info)

	if info.Width != 20 || info.Height != 10 || info.Maxval != 255 {
		t.Errorf("unexpected info: %+v", info)
	}
	if want := int64(len(ppm.Header(20, 10)) + 20*10*3); info.FileSizeBytes != want {
		t.Errorf("file size: got %d, want %d", info.FileSizeBytes, want)
	}
}

func TestHandleToolsCall_SamplePixel(t *testing.T) {
	s := newTestServer()
	path := createTestPPMFile(t, 20, 10)

	var sample PixelSample
	decodeResult(t, callTool(t, s, "ppm_sample_pixel", map[string]interface{}{
		"path": path,
		"row":  3,
		"col":  12,
	}), &sample)

	if sample.RGB != (raster.Pixel{R: 3, G: 12, B: 7}) {
		t.Errorf("RGB: got %+v, want {3 12 7}", sample.RGB)
	}
	if sample.Hex != "#030C07" {
		t.Errorf("Hex: got %s, want #030C07", sample.Hex)
	}
}

func TestHandleToolsCall_SamplePixel_OutOfBounds(t *testing.T) {
	s := newTestServer()
	path := createTestPPMFile(t, 4, 4)

	for _, rc := range [][2]int{{4, 0}, {0, 4}, {-1, 0}} {
		resp := callTool(t, s, "ppm_sample_pixel", map[string]interface{}{
			"path": path,
			"row":  rc[0],
			"col":  rc[1],
		})
		if resp.Error == nil {
			t.Fatalf("(%d,%d): expected error", rc[0], rc[1])
		}
		if resp.Error.Code != -32000 {
			t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
		}
		if data, _ := resp.Error.Data.(string); !strings.Contains(data, "outside 4x4 raster") {
			t.Errorf("error data: got %q", data)
		}
	}
}

func TestHandleToolsCall_FernRender(t *testing.T) {
	s := newTestServer()
	path := filepath.Join(t.TempDir(), "fern.ppm")

	var res FernRenderResult
	decodeResult(t, callTool(t, s, "fern_render", map[string]interface{}{
		"path":       path,
		"width":      30,
		"height":     60,
		"iterations": 5000,
		"seed":       0,
		"policy":     "stddev",
	}), &res)

	if res.Width != 30 || res.Height != 60 || res.Format != "ppm" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Policy != "stddev" || res.Seed != 0 || res.Iterations != 5000 {
		t.Errorf("unexpected render settings: %+v", res)
	}
	if res.Stats.Sum != 5000 || res.Stats.N != 1800 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
	if res.Visits != 5000 {
		t.Errorf("visits: got %d, want 5000", res.Visits)
	}

	if _, err := ppm.Stat(path); err != nil {
		t.Errorf("output is not a valid PPM: %v", err)
	}
}

func TestHandleToolsCall_FernRender_EvictsCache(t *testing.T) {
	s := newTestServer()
	path := createTestPPMFile(t, 4, 4)

	// Prime the cache with the test image.
	callTool(t, s, "ppm_sample_pixel", map[string]interface{}{"path": path, "row": 0, "col": 0})

	decodeResult(t, callTool(t, s, "fern_render", map[string]interface{}{
		"path":       path,
		"width":      8,
		"height":     16,
		"iterations": 100,
	}), &FernRenderResult{})

	resp := callTool(t, s, "ppm_sample_pixel", map[string]interface{}{"path": path, "row": 15, "col": 7})
	if resp.Error != nil {
		t.Errorf("sample after render should see the new 8x16 file: %+v", resp.Error)
	}
}

func TestHandleToolsCall_FernRender_PNG(t *testing.T) {
	s := newTestServer()
	path := filepath.Join(t.TempDir(), "fern.out")

	var res FernRenderResult
	decodeResult(t, callTool(t, s, "fern_render", map[string]interface{}{
		"path":       path,
		"width":      10,
		"height":     20,
		"iterations": 1000,
		"format":     "png",
		"scale":      2.0,
	}), &res)

	if res.Format != "png" || res.Width != 20 || res.Height != 40 {
		t.Errorf("unexpected result: %+v", res)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Error("output is not a PNG file")
	}
}

func TestHandleToolsCall_FernRender_Errors(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"unknown policy", map[string]interface{}{"path": filepath.Join(dir, "a.ppm"), "policy": "gamma"}},
		{"unknown format", map[string]interface{}{"path": filepath.Join(dir, "b.ppm"), "format": "webp"}},
		{"negative width", map[string]interface{}{"path": filepath.Join(dir, "c.ppm"), "width": -5}},
		{"too many iterations", map[string]interface{}{"path": filepath.Join(dir, "d.ppm"), "iterations": maxIterations + 1}},
		{"missing directory", map[string]interface{}{"path": filepath.Join(dir, "no", "e.ppm"), "iterations": 10}},
		{"overflowing size", map[string]interface{}{"path": filepath.Join(dir, "f.ppm"), "width": 1 << 32, "height": 1 << 32}},
		{"too many pixels", map[string]interface{}{"path": filepath.Join(dir, "g.ppm"), "width": 100000, "height": 100000}},
		{"width above cap", map[string]interface{}{"path": filepath.Join(dir, "h.ppm"), "width": maxPixels + 1, "height": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "fern_render", tt.args)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_GradientRender(t *testing.T) {
	s := newTestServer()
	path := filepath.Join(t.TempDir(), "test.ppm")

	decodeResult(t, callTool(t, s, "gradient_render", map[string]interface{}{"path": path}), &struct{}{})

	var sample PixelSample
	decodeResult(t, callTool(t, s, "ppm_sample_pixel", map[string]interface{}{
		"path": path,
		"row":  50,
		"col":  99,
	}), &sample)

	if sample.RGB != (raster.Pixel{R: 100}) {
		t.Errorf("RGB: got %+v, want {100 0 0}", sample.RGB)
	}
}

func TestHandleToolsCall_GradientRender_TooLarge(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()

	tests := []struct {
		name          string
		width, height int
	}{
		{"overflowing size", 1 << 32, 1 << 32},
		{"too many pixels", 100000, 100000},
		{"just over cap", maxPixels/1024 + 1, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "big.ppm")
			resp := callTool(t, s, "gradient_render", map[string]interface{}{
				"path":   path,
				"width":  tt.width,
				"height": tt.height,
			})
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
			if data, _ := resp.Error.Data.(string); !strings.Contains(data, "exceeds the limit") {
				t.Errorf("error data: got %q", data)
			}
			if _, err := os.Stat(path); err == nil {
				t.Error("no file should be written")
			}
		})
	}
}

func TestCheckPixels(t *testing.T) {
	tests := []struct {
		width, height int
		wantErr       bool
	}{
		{maxPixels, 1, false},
		{1, maxPixels, false},
		{1 << 13, 1 << 13, false},
		{maxPixels + 1, 1, true},
		{1, maxPixels + 1, true},
		{1 << 32, 1 << 32, true},
		{0, 1 << 40, true},
		{0, 0, false},
		{-5, 10, false},
	}

	for _, tt := range tests {
		if err := checkPixels(tt.width, tt.height); (err != nil) != tt.wantErr {
			t.Errorf("checkPixels(%d, %d): got %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
		}
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer()

	for _, tool := range []string{"ppm_info", "ppm_sample_pixel"} {
		resp := callTool(t, s, tool, map[string]interface{}{"path": "/nonexistent/image.ppm"})
		if resp.Error == nil {
			t.Errorf("%s: expected error for missing file", tool)
		}
	}
}

func TestHandleToolsCall_NotPPM(t *testing.T) {
	s := newTestServer()
	path := filepath.Join(t.TempDir(), "text.ppm")
	if err := os.WriteFile(path, []byte("P3\n1 1\n255\n0 0 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	resp := callTool(t, s, "ppm_info", map[string]interface{}{"path": path})
	if resp.Error == nil {
		t.Fatal("expected error for plain PPM")
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer()

	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid json}`),
	})
	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_MissingArguments(t *testing.T) {
	s := newTestServer()

	for _, tool := range GetToolDefinitions() {
		if _, err := s.executeTool(tool.Name, nil); err == nil {
			t.Errorf("%s: expected error without arguments", tool.Name)
		}
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer()

	for _, tool := range GetToolDefinitions() {
		if _, err := s.executeTool(tool.Name, json.RawMessage(`{"path": 5}`)); err == nil {
			t.Errorf("%s: expected error for mistyped arguments", tool.Name)
		}
	}
}
