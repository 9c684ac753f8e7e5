package server

import (
	"github.com/ironsheep/fern-ppm/internal/export"
	"github.com/ironsheep/fern-ppm/internal/normalize"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func formatNames() []string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Rendering
		{
			Name:        "fern_render",
			Description: "Render the Barnsley fern with the chaos game and write it to a file. Returns the output dimensions and the histogram statistics used for normalization.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path of the output file. The format follows the extension unless 'format' is given."),
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Image width in pixels (default 500)",
						"default":     defaultFernWidth,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Image height in pixels (default 1000)",
						"default":     defaultFernHeight,
					},
					"iterations": map[string]interface{}{
						"type":        "integer",
						"description": "Number of chaos game iterations (default 1000000)",
						"default":     defaultIterations,
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Random seed. Equal seeds give identical images (default 1)",
						"default":     1,
					},
					"policy": map[string]interface{}{
						"type":        "string",
						"enum":        normalize.Names(),
						"description": "Normalization policy (default modulo)",
						"default":     "modulo",
					},
					"flip": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the fern upright (default true)",
						"default":     true,
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        formatNames(),
						"description": "Output format. Default: from the file extension",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "gradient_render",
			Description: "Write the red test gradient (red = row * 2) to a file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path of the output file"),
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Image width in pixels (default 100)",
						"default":     defaultGradientSize,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Image height in pixels (default 100)",
						"default":     defaultGradientSize,
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        formatNames(),
						"description": "Output format. Default: from the file extension",
					},
				},
				"required": []string{"path"},
			},
		},

		// PPM Inspection
		{
			Name:        "ppm_info",
			Description: "Read the header of a binary PPM (P6) file and return its width, height, maxval and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the PPM file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ppm_sample_pixel",
			Description: "Get the exact RGB value of one pixel of a binary PPM (P6) file. Row 0 is the first row in the file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the PPM file"),
					"row": map[string]interface{}{
						"type":        "integer",
						"description": "Row (0-based, from the top of the file)",
					},
					"col": map[string]interface{}{
						"type":        "integer",
						"description": "Column (0-based, from the left)",
					},
				},
				"required": []string{"path", "row", "col"},
			},
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
