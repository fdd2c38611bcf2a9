// Package server implements an MCP (Model Context Protocol) server exposing
// the alveoli counting pipeline as tools.
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
//   - alveoli_count_image: per-window and total count of one image
//   - alveoli_count_region: count, tissue area and structure areas of one window
//   - alveoli_window_overlay: subsample windows drawn on the image, as base64 PNG
//   - alveoli_compare: cohort summaries of two conditions and their t-test
//
// Tools that take windows default to the windows the server was started
// with; size and positions arguments override them per call.
//
// # Image Caching
//
// Images are cached by path for the lifetime of the process, so repeated
// calls on the same tile decode it once. alveoli_compare reads its images
// directly and does not fill the cache.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data. Malformed tools/call parameters
// return -32602 and unknown methods -32601.
package server
