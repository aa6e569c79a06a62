package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// styleProperties returns the schema of the arguments every rendering tool
// accepts, plus extra.
func styleProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Path to the source image. Defaults to the image passed to the last image_load",
		},
		"preset": map[string]interface{}{
			"type":        "string",
			"description": "Named parameter set to start from (see presets_list)",
			"default":     "default",
		},
		"saturation": map[string]interface{}{
			"type":        "number",
			"description": "Saturation multiplier, 0 (grayscale) to 3",
			"minimum":     0,
			"maximum":     3,
		},
		"levels": map[string]interface{}{
			"type":        "integer",
			"description": "Color levels per channel for posterization, at least 1",
			"minimum":     1,
		},
		"smooth_strength": map[string]interface{}{
			"type":        "number",
			"description": "Spatial extent of the edge-preserving smoothing, 0 to 200",
			"minimum":     0,
			"maximum":     200,
		},
		"edge_strength": map[string]interface{}{
			"type":        "number",
			"description": "Color-difference tolerance of the smoothing, 0 to 2. Larger values blur across more edges",
			"minimum":     0,
			"maximum":     2,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. Sets this as the active image for subsequent rendering tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (PNG, JPEG, GIF, BMP or WEBP)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "presets_list",
			Description: "List the named style presets and their parameters.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_stylize",
			Description: "Render the anime-style filter synchronously and return the result as base64. Explicit parameters override the preset.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": styleProperties(map[string]interface{}{
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Output encoding",
						"enum":        []string{"png", "jpeg", "bmp"},
						"default":     "png",
					},
					"quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG quality 1-100",
						"default":     85,
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale the source to fit this size before rendering. 0 keeps full size",
						"default":     0,
					},
				}),
			},
		},
		{
			Name:        "preview_submit",
			Description: "Queue a debounced preview render and return its request id immediately. Only the latest submission is rendered; poll preview_latest for the result.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": styleProperties(nil),
			},
		},
		{
			Name:        "preview_latest",
			Description: "Return the most recent completed preview as a base64 JPEG, with worker statistics.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_export",
			Description: "Render at full resolution and save to a file. Paths without a .png, .jpg or .jpeg extension get .png appended.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": styleProperties(map[string]interface{}{
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Destination file path",
					},
					"quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG quality 1-100",
						"default":     85,
					},
				}),
				"required": []string{"output"},
			},
		},
		{
			Name:        "image_palette",
			Description: "Render the filter and report the dominant colors of the result, most common first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": styleProperties(map[string]interface{}{
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return (1-32)",
						"default":     8,
					},
				}),
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
