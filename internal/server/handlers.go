package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image-mosaic/internal/imaging"
	"github.com/ironsheep/image-mosaic/internal/library"
	"github.com/ironsheep/image-mosaic/internal/match"
	"github.com/ironsheep/image-mosaic/internal/mosaic"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mosaic_compose").
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
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.WithError(err).WithField("tool", params.Name).Debug("Tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads the tile library from cache as needed
//  4. Calls the appropriate imaging/library/mosaic function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Single images
	case "mosaic_average_color":
		return s.handleAverageColor(args)
	case "mosaic_thumbnail":
		return s.handleThumbnail(args)

	// Tile libraries
	case "mosaic_build_library":
		return s.handleBuildLibrary(args)
	case "mosaic_nearest_tile":
		return s.handleNearestTile(args)

	// Composition
	case "mosaic_compose":
		return s.handleCompose(args)

	// Server state
	case "mosaic_clear_cache":
		return s.handleClearCache(args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return fmt.Errorf("missing arguments")
	}
	return json.Unmarshal(args, v)
}

// === Single Image Handlers ===

type averageColorArgs struct {
	Path string `json:"path"`
}

// AverageColorResult is returned by mosaic_average_color.
type AverageColorResult struct {
	Path          string        `json:"path"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Color         imaging.Color `json:"color"`
	Hex           string        `json:"hex"`
	CountedPixels int           `json:"counted_pixels"`
	TotalPixels   int           `json:"total_pixels"`
}

func (s *Server) handleAverageColor(args json.RawMessage) (interface{}, error) {
	var a averageColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	img, err := imaging.Open(a.Path)
	if err != nil {
		return nil, err
	}
	stats := imaging.AverageColorStats(img)
	return &AverageColorResult{
		Path:          a.Path,
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Color:         stats.Color,
		Hex:           stats.Color.Hex(),
		CountedPixels: stats.Counted,
		TotalPixels:   stats.Total,
	}, nil
}

type thumbnailArgs struct {
	Path         string `json:"path"`
	MaxDimension int    `json:"max_dimension"`
	OutputDir    string `json:"output_dir"`
	Name         string `json:"name"`
	Resampler    string `json:"resampler"`
}

// ThumbnailResult is returned by mosaic_thumbnail.
type ThumbnailResult struct {
	Path   string        `json:"path"`
	Output string        `json:"output"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Color  imaging.Color `json:"color"`
	Hex    string        `json:"hex"`
}

func (s *Server) handleThumbnail(args json.RawMessage) (interface{}, error) {
	var a thumbnailArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.MaxDimension == 0 {
		a.MaxDimension = library.DefaultThumbSize
	}
	if a.OutputDir == "" {
		a.OutputDir = library.DefaultThumbDir
	}
	resampler, err := imaging.ResamplerByName(a.Resampler)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Open(a.Path)
	if err != nil {
		return nil, err
	}
	c := imaging.AverageColor(img)
	thumb, err := imaging.Thumbnail(img, a.MaxDimension, resampler)
	if err != nil {
		return nil, err
	}

	name := a.Name
	if name == "" {
		name = c.Key()
	}
	out, err := imaging.SaveNamed(thumb, name, a.OutputDir)
	if err != nil {
		return nil, err
	}
	return &ThumbnailResult{
		Path:   a.Path,
		Output: out,
		Width:  thumb.Bounds().Dx(),
		Height: thumb.Bounds().Dy(),
		Color:  c,
		Hex:    c.Hex(),
	}, nil
}

// === Tile Library Handlers ===

// libraryArgs are shared by every tool that needs a tile library.
type libraryArgs struct {
	TileDir   string `json:"tile_dir"`
	ThumbDir  string `json:"thumb_dir"`
	TileSize  int    `json:"tile_size"`
	Resampler string `json:"resampler"`
}

func (a libraryArgs) key() (libraryKey, error) {
	if a.TileDir == "" {
		return libraryKey{}, fmt.Errorf("tile_dir is required")
	}
	k := libraryKey{TileDir: a.TileDir, ThumbDir: a.ThumbDir, TileSize: a.TileSize, Resampler: a.Resampler}
	if k.ThumbDir == "" {
		k.ThumbDir = library.DefaultThumbDir
	}
	if k.TileSize == 0 {
		k.TileSize = library.DefaultThumbSize
	}
	if k.TileSize < 0 {
		return libraryKey{}, fmt.Errorf("tile_size must be positive, got %d", k.TileSize)
	}
	if k.Resampler == "" {
		k.Resampler = imaging.ResamplerLanczos
	}
	if _, err := imaging.ResamplerByName(k.Resampler); err != nil {
		return libraryKey{}, err
	}
	return k, nil
}

type buildLibraryArgs struct {
	libraryArgs
	Refresh bool `json:"refresh"`
}

// TileInfo describes one library tile.
type TileInfo struct {
	Index int           `json:"index"`
	Path  string        `json:"path"`
	Color imaging.Color `json:"color"`
	Hex   string        `json:"hex"`

	// Decoded reports whether a composition has already loaded the
	// thumbnail bitmap.
	Decoded bool `json:"decoded"`
}

// LibraryResult is returned by mosaic_build_library.
type LibraryResult struct {
	TileDir  string     `json:"tile_dir"`
	ThumbDir string     `json:"thumb_dir"`
	TileSize int        `json:"tile_size"`
	Count    int        `json:"count"`
	Cached   bool       `json:"cached"`
	Tiles    []TileInfo `json:"tiles"`
}

func tileInfo(lib *library.Library, i int) TileInfo {
	e := lib.Entry(i)
	return TileInfo{Index: i, Path: e.Path, Color: e.Color, Hex: e.Color.Hex(), Decoded: lib.Cached(i)}
}

func (s *Server) handleBuildLibrary(args json.RawMessage) (interface{}, error) {
	var a buildLibraryArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	key, err := a.key()
	if err != nil {
		return nil, err
	}
	if a.Refresh {
		s.libraries.Evict(key)
	}
	lib, cached, err := s.libraries.Load(key)
	if err != nil {
		return nil, err
	}

	tiles := make([]TileInfo, lib.Len())
	for i := range tiles {
		tiles[i] = tileInfo(lib, i)
	}
	return &LibraryResult{
		TileDir:  key.TileDir,
		ThumbDir: key.ThumbDir,
		TileSize: key.TileSize,
		Count:    lib.Len(),
		Cached:   cached,
		Tiles:    tiles,
	}, nil
}

type nearestTileArgs struct {
	libraryArgs
	Color string `json:"color"`
}

// NearestTileResult is returned by mosaic_nearest_tile.
type NearestTileResult struct {
	Query    imaging.Color `json:"query"`
	Tile     TileInfo      `json:"tile"`
	Distance float64       `json:"distance"`
}

func (s *Server) handleNearestTile(args json.RawMessage) (interface{}, error) {
	var a nearestTileArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	key, err := a.key()
	if err != nil {
		return nil, err
	}
	if a.Color == "" {
		return nil, fmt.Errorf("color is required")
	}
	q, err := imaging.ParseHex(a.Color)
	if err != nil {
		return nil, err
	}

	lib, _, err := s.libraries.Load(key)
	if err != nil {
		return nil, err
	}
	i, err := lib.Match(q)
	if err != nil {
		return nil, err
	}
	tile := tileInfo(lib, i)
	return &NearestTileResult{
		Query:    q,
		Tile:     tile,
		Distance: match.Distance(q, tile.Color),
	}, nil
}

// === Composition Handler ===

type composeArgs struct {
	libraryArgs
	Source     string `json:"source"`
	SourceSize int    `json:"source_size"`
	Ratio      int    `json:"ratio"`
	Output     string `json:"output"`
	Workers    int    `json:"workers"`
}

// ComposeResult is returned by mosaic_compose.
type ComposeResult struct {
	*mosaic.Result
	LibraryCached bool `json:"library_cached"`
}

func (s *Server) handleCompose(args json.RawMessage) (interface{}, error) {
	var a composeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	key, err := a.key()
	if err != nil {
		return nil, err
	}

	cfg := mosaic.DefaultConfig()
	cfg.TileDir = key.TileDir
	cfg.ThumbDir = key.ThumbDir
	cfg.ThumbSize = key.TileSize
	cfg.SourcePath = a.Source
	if a.SourceSize != 0 {
		cfg.SourceSize = a.SourceSize
	}
	if a.Ratio != 0 {
		cfg.Ratio = a.Ratio
	}
	if a.Output != "" {
		cfg.OutputPath = a.Output
	}
	if a.Workers != 0 {
		cfg.Workers = a.Workers
	}
	// Tiles and source go through the same filter.
	cfg.Resampler = key.Resampler

	// Reject bad requests before touching the tile directory.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !imaging.IsSourceFile(cfg.SourcePath) {
		return nil, &mosaic.InvalidExtensionError{Path: cfg.SourcePath}
	}

	lib, cached, err := s.libraries.Load(key)
	if err != nil {
		return nil, err
	}
	p := &mosaic.Pipeline{Config: cfg, Logger: s.logger, Library: lib}
	result, err := p.Run(context.Background())
	if err != nil {
		return nil, err
	}
	return &ComposeResult{Result: result, LibraryCached: cached}, nil
}

// === Server State Handler ===

// ClearCacheResult is returned by mosaic_clear_cache.
type ClearCacheResult struct {
	Cleared int `json:"cleared"`
}

func (s *Server) handleClearCache(args json.RawMessage) (interface{}, error) {
	n := s.libraries.Len()
	s.libraries.Clear()
	s.logger.WithField("libraries", n).Info("Library cache cleared")
	return &ClearCacheResult{Cleared: n}, nil
}
