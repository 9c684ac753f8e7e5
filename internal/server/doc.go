// Package server implements a JSON-RPC 2.0 tool server for rendering and
// inspecting PPM images.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0, following the MCP
// (Model Context Protocol) tool conventions:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Rendering:
//   - fern_render: Chaos-game render of the Barnsley fern to a file
//   - gradient_render: Red test gradient to a file
//
// PPM Inspection:
//   - ppm_info: Header fields and file size
//   - ppm_sample_pixel: RGB value at (row, col)
//
// # Raster Caching
//
// Decoded PPM files are cached by path for ppm_sample_pixel. The render
// tools evict the output path before writing, so a sample taken after a
// render always sees the new file.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (invalid params) or
//     -32601 (unknown method)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(logger, version)
//	if err := srv.Run(); err != nil {
//	    return err
//	}
package server
