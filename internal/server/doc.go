// Package server exposes a scanpad editing session over MCP (Model Context
// Protocol).
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Requests are handled one at a time, in arrival order. Text recognition
// keeps running between requests; poll it with ocr_status or pass
// "wait": true to ocr_start.
//
// # Available Tools
//
// Session:
//   - image_load: Load an image file into the workspace
//   - workspace_state: Describe the session
//   - tool_select: Activate a tool (action tools run immediately)
//   - pointer_event: Feed pointer down/move/up to the crop tool
//
// Transforms:
//   - image_crop: Crop to a rectangle
//   - image_crop_region: Crop to a named region (top-left, center, ...)
//   - image_rotate: Rotate 90° clockwise
//   - image_clarify: Brighten
//   - image_reset: Discard all edits
//
// Inspection:
//   - image_preview: PNG of the surface, the working image or the camera
//   - image_sample_color: Colour at a pixel
//
// Capture:
//   - scan_start, scan_capture, scan_cancel
//
// Recognition and export:
//   - ocr_start, ocr_status
//   - export_document, export_text
//
// # Notifications
//
// User-visible failures (no image, OCR unavailable, camera denied, OCR
// failed, image busy) are sent once as a "notifications/message"
// notification at level "error", in addition to failing the tool call
// that caused them. Recognition failures have no tool call to fail and
// are only notified.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Logs go to the configured logrus logger, never to the protocol stream.
package server
