package server

import (
	"github.com/ironsheep/image-mosaic/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func libraryProperties() map[string]interface{} {
	return map[string]interface{}{
		"tile_dir": map[string]interface{}{
			"type":        "string",
			"description": "Directory scanned (non-recursively) for PNG tile images",
		},
		"thumb_dir": map[string]interface{}{
			"type":        "string",
			"description": "Directory receiving the tile thumbnails. Default \"output\"",
			"default":     "output",
		},
		"tile_size": map[string]interface{}{
			"type":        "integer",
			"description": "Larger side of each tile thumbnail in pixels. Default 30",
			"default":     30,
		},
		"resampler": resamplerProperty(),
	}
}

func resamplerProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Resampling filter. Default \"lanczos\"",
		"enum":        imaging.ResamplerNames(),
		"default":     imaging.ResamplerLanczos,
	}
}

// withLibrary merges the tile library properties into props.
func withLibrary(props map[string]interface{}) map[string]interface{} {
	for k, v := range libraryProperties() {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Single images
		{
			Name:        "mosaic_average_color",
			Description: "Compute the average RGB color of an image, ignoring fully transparent pixels. This is the color a tile is matched by.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mosaic_thumbnail",
			Description: "Resize an image so that its larger side equals max_dimension, keeping the aspect ratio, and save it as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Larger side of the thumbnail in pixels. Default 30",
						"default":     30,
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write the thumbnail to. Default \"output\"",
						"default":     "output",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "File name stem. Defaults to the average color as r_g_b",
					},
					"resampler": resamplerProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Tile libraries
		{
			Name:        "mosaic_build_library",
			Description: "Build the tile library for a directory of PNG tiles: average color and thumbnail per tile. Libraries are cached per tile_dir, thumb_dir and tile_size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withLibrary(map[string]interface{}{
					"refresh": map[string]interface{}{
						"type":        "boolean",
						"description": "Rebuild even if the library is cached",
						"default":     false,
					},
				}),
				"required": []string{"tile_dir"},
			},
		},
		{
			Name:        "mosaic_nearest_tile",
			Description: "Find the library tile whose average color is nearest (Euclidean RGB distance) to a color. Ties go to the earliest tile.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withLibrary(map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Query color as hex, e.g. \"#ff8800\"",
					},
				}),
				"required": []string{"tile_dir", "color"},
			},
		},

		// Composition
		{
			Name:        "mosaic_compose",
			Description: "Build a photomosaic: resize the source so its larger side is source_size, replace every pixel by the nearest tile scaled by ratio, and write the result as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withLibrary(map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image (.png, .jpg or .jpeg)",
					},
					"source_size": map[string]interface{}{
						"type":        "integer",
						"description": "Larger side of the resized source in pixels. Default 100",
						"default":     100,
					},
					"ratio": map[string]interface{}{
						"type":        "integer",
						"description": "Output pixels per source pixel. Default 10",
						"default":     10,
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Output PNG path. Default \"output.png\"",
						"default":     "output.png",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Goroutines used for matching. Default 1",
						"default":     1,
					},
				}),
				"required": []string{"tile_dir", "source"},
			},
		},

		// Server state
		{
			Name:        "mosaic_clear_cache",
			Description: "Drop every cached tile library, e.g. after tiles were added or thumbnails deleted.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
				"required":   []string{},
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
