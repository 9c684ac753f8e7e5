package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/fern-ppm/internal/export"
	"github.com/ironsheep/fern-ppm/internal/histogram"
	"github.com/ironsheep/fern-ppm/internal/normalize"
	"github.com/ironsheep/fern-ppm/internal/ppm"
	"github.com/ironsheep/fern-ppm/internal/raster"
	"github.com/ironsheep/fern-ppm/internal/render"
)

// Tool argument defaults
const (
	defaultFernWidth    = 500
	defaultFernHeight   = 1000
	defaultIterations   = 1000000
	defaultGradientSize = 100
	defaultSeed         = 1
)

// Caps on a single render call to keep tool calls bounded.
const (
	maxIterations = 100000000
	maxPixels     = 1 << 26
)

var errNoPath = errors.New("path is required")

// ToolCallParams represents the parameters for a tools/call request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "fern_render", "ppm_info").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
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
	// Rendering
	case "fern_render":
		return s.handleFernRender(args)
	case "gradient_render":
		return s.handleGradientRender(args)

	// PPM Inspection
	case "ppm_info":
		return s.handlePPMInfo(args)
	case "ppm_sample_pixel":
		return s.handlePPMSamplePixel(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating missing arguments as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Rendering Handlers ===

type fernRenderArgs struct {
	Path       string  `json:"path"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Iterations int     `json:"iterations"`
	Seed       *uint64 `json:"seed"`
	Policy     string  `json:"policy"`
	Flip       *bool   `json:"flip"`
	Format     string  `json:"format"`
	Scale      float64 `json:"scale"`
}

// FernRenderResult is returned by fern_render.
type FernRenderResult struct {
	export.Result
	Iterations int             `json:"iterations"`
	Seed       uint64          `json:"seed"`
	Policy     string          `json:"policy"`
	Stats      histogram.Stats `json:"stats"`
	Visits     uint64          `json:"visits"`
	ElapsedMS  int64           `json:"elapsed_ms"`
}

func (s *Server) handleFernRender(args json.RawMessage) (interface{}, error) {
	var a fernRenderArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errNoPath
	}
	if a.Width == 0 {
		a.Width = defaultFernWidth
	}
	if a.Height == 0 {
		a.Height = defaultFernHeight
	}
	if a.Iterations == 0 {
		a.Iterations = defaultIterations
	}
	if a.Iterations > maxIterations {
		return nil, fmt.Errorf("iterations %d exceed the limit of %d", a.Iterations, maxIterations)
	}
	if err := checkPixels(a.Width, a.Height); err != nil {
		return nil, err
	}
	seed := uint64(defaultSeed)
	if a.Seed != nil {
		seed = *a.Seed
	}
	if a.Policy == "" {
		a.Policy = "modulo"
	}
	flip := true
	if a.Flip != nil {
		flip = *a.Flip
	}

	policy, err := normalize.ByName(a.Policy)
	if err != nil {
		return nil, err
	}
	opts, err := exportOptions(a.Format, flip, a.Scale)
	if err != nil {
		return nil, err
	}

	res, err := render.Fern(s.logger, render.Options{
		Width:      a.Width,
		Height:     a.Height,
		Iterations: a.Iterations,
		Seed:       seed,
		Policy:     policy,
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.save(res.Raster, a.Path, opts)
	if err != nil {
		return nil, err
	}

	return &FernRenderResult{
		Result:     *saved,
		Iterations: a.Iterations,
		Seed:       seed,
		Policy:     res.Policy,
		Stats:      res.Stats,
		Visits:     res.Visits,
		ElapsedMS:  res.Elapsed.Milliseconds(),
	}, nil
}

type gradientRenderArgs struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

func (s *Server) handleGradientRender(args json.RawMessage) (interface{}, error) {
	var a gradientRenderArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errNoPath
	}
	if a.Width == 0 {
		a.Width = defaultGradientSize
	}
	if a.Height == 0 {
		a.Height = defaultGradientSize
	}
	if err := checkPixels(a.Width, a.Height); err != nil {
		return nil, err
	}

	opts, err := exportOptions(a.Format, false, 1)
	if err != nil {
		return nil, err
	}

	r, err := render.Gradient(a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	return s.save(r, a.Path, opts)
}

// checkPixels rejects sizes above maxPixels, and any single dimension above
// it even when the other is zero. Negative sizes are left to the renderers.
func checkPixels(width, height int) error {
	if width > maxPixels || height > maxPixels || (width > 0 && height > maxPixels/width) {
		return fmt.Errorf("image %dx%d exceeds the limit of %d pixels", width, height, maxPixels)
	}
	return nil
}

func exportOptions(format string, flip bool, scale float64) (export.Options, error) {
	opts := export.Options{FlipVertical: flip, Scale: scale}
	if format != "" {
		f, err := export.ParseFormat(format)
		if err != nil {
			return export.Options{}, err
		}
		opts.Format = f
	}
	return opts, nil
}

// save writes r and drops any cached copy of the old file.
func (s *Server) save(r *raster.Raster, path string, opts export.Options) (*export.Result, error) {
	s.cache.Evict(path)
	res, err := export.Save(r, path, opts)
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved", "path", res.Path, "format", res.Format, "width", res.Width, "height", res.Height)
	return res, nil
}

// === PPM Inspection Handlers ===

type ppmPathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handlePPMInfo(args json.RawMessage) (interface{}, error) {
	var a ppmPathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errNoPath
	}
	return ppm.Stat(a.Path)
}

type ppmSamplePixelArgs struct {
	Path string `json:"path"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// PixelSample is returned by ppm_sample_pixel.
type PixelSample struct {
	Row int          `json:"row"`
	Col int          `json:"col"`
	RGB raster.Pixel `json:"rgb"`
	Hex string       `json:"hex"`
}

func (s *Server) handlePPMSamplePixel(args json.RawMessage) (interface{}, error) {
	var a ppmSamplePixelArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errNoPath
	}

	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	p, err := r.Pixel(a.Row, a.Col)
	if err != nil {
		return nil, err
	}
	return &PixelSample{Row: a.Row, Col: a.Col, RGB: *p, Hex: p.Hex()}, nil
}
