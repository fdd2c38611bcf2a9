package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func windowProperties() (size, positions map[string]interface{}) {
	size = map[string]interface{}{
		"type":        "integer",
		"description": "Side length of each square window in pixels. Defaults to the server's configured size",
	}
	positions = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "integer"},
		"description": "Flat x1,y1,x2,y2,... list of window anchors. Defaults to the server's configured windows",
	}
	return size, positions
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	size, positions := windowProperties()

	return []Tool{
		{
			Name:        "alveoli_count_image",
			Description: "Count alveoli in one image: every subsample window is segmented and counted, and the per-window counts are summed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"size":      size,
					"positions": positions,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "alveoli_count_region",
			Description: "Count alveoli in a single square window of an image and report the tissue area and the areas of the retained structures.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate of the window (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate of the window (0-based)",
					},
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Side length of the window in pixels",
					},
				},
				"required": []string{"path", "x", "y", "size"},
			},
		},
		{
			Name:        "alveoli_window_overlay",
			Description: "Draw the subsample windows with their indices on the image and return it as base64-encoded PNG, to check window placement against the tissue.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"size":      size,
					"positions": positions,
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex (e.g. #FFFF00). Default yellow",
						"default":     "#FFFF00",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "alveoli_compare",
			Description: "Count every *_<condition>_*.tif image of two conditions in a directory, drop zero counts, and compare the condition means with a two-sample t-test.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory containing the image tiles",
					},
					"group1": map[string]interface{}{
						"type":        "string",
						"description": "First condition name as it appears in file names",
					},
					"group2": map[string]interface{}{
						"type":        "string",
						"description": "Second condition name as it appears in file names",
					},
				},
				"required": []string{"image_dir", "group1", "group2"},
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
