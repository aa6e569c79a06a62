// Package server exposes the anime filter over MCP (Model Context Protocol).
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line:
//   - Input: JSON-RPC requests on stdin
//   - Output: JSON-RPC responses and notifications on stdout
//
// Logs go to stderr so they never interleave with the protocol stream.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load an image, report its metadata and make it the active source
//   - presets_list: Named parameter sets
//   - image_stylize: Synchronous render returned as base64
//   - preview_submit: Queue a debounced preview render
//   - preview_latest: Most recent completed preview
//   - image_export: Full-resolution render written to disk
//   - image_palette: Dominant colors of a render
//
// Rendering tools take a preset name (default "default") and optional
// saturation, levels, smooth_strength and edge_strength overrides. When path
// is omitted the image from the last image_load is used.
//
// # Previews
//
// preview_submit returns a request id at once. A single worker renders only
// the newest submission after the debounce interval and sends a
// notifications/preview_ready message when it publishes a result.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses:
//   - -32700: the line is not valid JSON
//   - -32601: unknown method
//   - -32602: unknown tool, malformed arguments, unknown preset or levels < 1
//   - -32000: any other tool failure, such as an unreadable image
//
// # Usage
//
//	srv := server.New(server.Options{Presets: preset.Builtin()})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
