// Package server implements the MCP (Model Context Protocol) server for the
// mosaic tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the color
// averaging, thumbnailing, tile matching and composition steps as individual
// tools, so that a client can inspect a tile library before composing with it.
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
// Single images:
//   - mosaic_average_color: Average color of the visible pixels
//   - mosaic_thumbnail: Aspect-preserving resize saved as PNG
//
// Tile libraries:
//   - mosaic_build_library: Index a tile directory
//   - mosaic_nearest_tile: Nearest tile for a hex color
//
// Composition:
//   - mosaic_compose: Full pipeline from source image to mosaic PNG
//
// Server state:
//   - mosaic_clear_cache: Drop all cached libraries
//
// # Library Caching
//
// Built libraries are cached by tile directory, thumbnail directory, tile
// size and resampler for the lifetime of the server process. A cached library
// also keeps its decoded thumbnails, so repeated compositions skip both the
// directory scan and the decoding. Changes to the tile directory are not
// noticed until mosaic_build_library is called with refresh set, or the cache
// is dropped with mosaic_clear_cache.
//
// Libraries that differ only in resampler write the same thumbnail file
// names; give each its own thumb_dir to keep both sets on disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
