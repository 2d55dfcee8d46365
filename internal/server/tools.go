package server

import "github.com/ironsheep/scanpad/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func coordProperties() map[string]interface{} {
	return map[string]interface{}{
		"x1": map[string]interface{}{
			"type":        "integer",
			"description": "First corner X coordinate (0-based)",
		},
		"y1": map[string]interface{}{
			"type":        "integer",
			"description": "First corner Y coordinate (0-based)",
		},
		"x2": map[string]interface{}{
			"type":        "integer",
			"description": "Opposite corner X coordinate",
		},
		"y2": map[string]interface{}{
			"type":        "integer",
			"description": "Opposite corner Y coordinate",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "image_load",
			Description: "Load an image file into the workspace, replacing any previous image and its edits. Returns the image format and dimensions plus the session state.",
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
			Name:        "workspace_state",
			Description: "Describe the session: active tool, image dimensions, crop selection, capture state, recognition progress and the latest artifacts.",
			InputSchema: noArgs(),
		},
		{
			Name:        "tool_select",
			Description: "Activate a toolbar tool. Action tools (rotate, clarify, scan, reset, recognize, export) run immediately; crop arms pointer_event dragging.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tool": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"none", "crop", "rotate", "clarify", "scan", "reset", "recognize", "ocr", "export", "save"},
						"description": "Tool to activate",
					},
				},
				"required": []string{"tool"},
			},
		},
		{
			Name:        "pointer_event",
			Description: "Feed a pointer event to the crop tool. down starts a selection, move updates the outline, up commits it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"down", "move", "up"},
						"description": "Event type",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate in image pixels (ignored for up)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate in image pixels (ignored for up)",
					},
				},
				"required": []string{"type"},
			},
		},

		// Transforms
		{
			Name:        "image_crop",
			Description: "Crop the working image to the rectangle spanned by two corners. The rectangle is clamped to the image; one entirely outside leaves the image unchanged.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": coordProperties(),
				"required":   []string{"x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "image_crop_region",
			Description: "Crop the working image to a named region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        imaging.RegionNames,
						"description": "Region to keep",
					},
				},
				"required": []string{"region"},
			},
		},
		{
			Name:        "image_rotate",
			Description: "Rotate the working image 90 degrees clockwise.",
			InputSchema: noArgs(),
		},
		{
			Name:        "image_clarify",
			Description: "Brighten the working image by the configured factor. Repeated calls compound.",
			InputSchema: noArgs(),
		},
		{
			Name:        "image_reset",
			Description: "Discard every edit and restore the image as loaded or captured.",
			InputSchema: noArgs(),
		},

		// Inspection
		{
			Name:        "image_preview",
			Description: "Render a PNG preview as base64. surface is what the user sees, including any crop outline; current is the working image; camera is the live capture frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"surface", "current", "camera"},
						"description": "What to render (default: surface)",
					},
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Longest side of the returned PNG in pixels (default: 512, 0 for full size)",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"properties":  coordProperties(),
						"description": "Surface region to read instead of the whole surface",
					},
				},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a pixel of the working image. Returns hex, RGBA and HSL values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate",
					},
				},
				"required": []string{"x", "y"},
			},
		},

		// Capture
		{
			Name:        "scan_start",
			Description: "Open the capture device and show its frames. Denial is reported as an error notification.",
			InputSchema: noArgs(),
		},
		{
			Name:        "scan_capture",
			Description: "Load the current camera frame as the new image and release the device.",
			InputSchema: noArgs(),
		},
		{
			Name:        "scan_cancel",
			Description: "Abandon a pending or live capture without touching the image.",
			InputSchema: noArgs(),
		},

		// Recognition and export
		{
			Name:        "ocr_start",
			Description: "Start text recognition over the working image. Edits are rejected until it settles. The recognized text is offered as a text artifact.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"wait": map[string]interface{}{
						"type":        "boolean",
						"description": "Block until recognition settles (default: false)",
					},
				},
			},
		},
		{
			Name:        "ocr_status",
			Description: "Report recognition status and progress percent, with the text once done.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"include_regions": map[string]interface{}{
						"type":        "boolean",
						"description": "Include word bounding boxes and confidences (default: false)",
					},
				},
			},
		},
		{
			Name:        "export_document",
			Description: "Package the working image into a one-page PDF and offer it as a download.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"include_data": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the PDF bytes as base64 (default: false)",
					},
				},
			},
		},
		{
			Name:        "export_text",
			Description: "Offer text as a plain-text download. Defaults to the last recognized text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to export (default: last recognized text)",
					},
					"include_data": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the file bytes as base64 (default: false)",
					},
				},
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
