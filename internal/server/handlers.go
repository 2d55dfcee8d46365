package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	dimaging "github.com/disintegration/imaging"

	"github.com/ironsheep/scanpad/internal/export"
	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/ocr"
	"github.com/ironsheep/scanpad/internal/recognition"
	"github.com/ironsheep/scanpad/internal/workspace"
)

// defaultPreviewSize bounds the longest side of a preview unless the
// caller asks otherwise.
const defaultPreviewSize = 512

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_crop").
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session
	case "image_load":
		return s.handleImageLoad(args)
	case "workspace_state":
		return s.editor.State(), nil
	case "tool_select":
		return s.handleToolSelect(args)
	case "pointer_event":
		return s.handlePointerEvent(args)

	// Transforms
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_crop_region":
		return s.handleImageCropRegion(args)
	case "image_rotate":
		return s.stateAfter(s.editor.Rotate())
	case "image_clarify":
		return s.stateAfter(s.editor.Clarify())
	case "image_reset":
		return s.stateAfter(s.editor.Reset())

	// Inspection
	case "image_preview":
		return s.handleImagePreview(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Capture
	case "scan_start":
		return s.stateAfter(s.editor.StartScan(s.ctx))
	case "scan_capture":
		return s.stateAfter(s.editor.CaptureStill())
	case "scan_cancel":
		return map[string]interface{}{
			"cancelled": s.editor.CancelScan(),
			"capture":   s.editor.CaptureState().String(),
		}, nil

	// Recognition and export
	case "ocr_start":
		return s.handleOCRStart(args)
	case "ocr_status":
		return s.handleOCRStatus(args)
	case "export_document":
		return s.handleExportDocument(args)
	case "export_text":
		return s.handleExportText(args)

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

// decodeArgs unmarshals tool arguments. Tools without required arguments
// may be called with none at all.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// stateAfter reports the session state once an edit has run.
func (s *Server) stateAfter(err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return s.editor.State(), nil
}

// === Session Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	info, err := s.editor.LoadFile(a.Path)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"image": info,
		"state": s.editor.State(),
	}, nil
}

type toolSelectArgs struct {
	Tool string `json:"tool"`
}

func (s *Server) handleToolSelect(args json.RawMessage) (interface{}, error) {
	var a toolSelectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	tool, err := workspace.ParseTool(a.Tool)
	if err != nil {
		return nil, err
	}
	return s.stateAfter(s.editor.SelectTool(s.ctx, tool))
}

type pointerEventArgs struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handlePointerEvent(args json.RawMessage) (interface{}, error) {
	var a pointerEventArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p := image.Pt(a.X, a.Y)
	switch a.Type {
	case "down":
		s.editor.PointerDown(p)
	case "move":
		s.editor.PointerMove(p)
	case "up":
		if err := s.editor.PointerUp(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown pointer event type: %q (want down, move or up)", a.Type)
	}
	return s.editor.State(), nil
}

// === Transform Handlers ===

type imageCropArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	r := imaging.SelectionRect(image.Pt(a.X1, a.Y1), image.Pt(a.X2, a.Y2))
	return s.stateAfter(s.editor.Crop(r))
}

type imageCropRegionArgs struct {
	Region string `json:"region"`
}

func (s *Server) handleImageCropRegion(args json.RawMessage) (interface{}, error) {
	var a imageCropRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.stateAfter(s.editor.CropRegion(a.Region))
}

// === Inspection Handlers ===

type imagePreviewArgs struct {
	Source  string `json:"source"`
	MaxSize int    `json:"max_size"`
	Region  *struct {
		X1 int `json:"x1"`
		Y1 int `json:"y1"`
		X2 int `json:"x2"`
		Y2 int `json:"y2"`
	} `json:"region"`
}

// PreviewResult is a PNG rendering returned by image_preview.
type PreviewResult struct {
	Source      string `json:"source"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) handleImagePreview(args json.RawMessage) (interface{}, error) {
	var a imagePreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Source == "" {
		a.Source = "surface"
	}
	if a.MaxSize == 0 {
		a.MaxSize = defaultPreviewSize
	}

	var buf *imaging.Buffer
	var err error
	switch a.Source {
	case "surface":
		if a.Region != nil {
			r := imaging.SelectionRect(image.Pt(a.Region.X1, a.Region.Y1), image.Pt(a.Region.X2, a.Region.Y2))
			buf, err = s.editor.ReadSurface(r)
		} else {
			buf = s.raster.Thumbnail(a.MaxSize)
		}
	case "current":
		buf = s.editor.Current()
	case "camera":
		buf, err = s.editor.ScanPreview()
	default:
		return nil, fmt.Errorf("unknown preview source: %q (want surface, current or camera)", a.Source)
	}
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, workspace.ErrNoImage
	}

	buf, err = fitBuffer(buf, a.MaxSize)
	if err != nil {
		return nil, err
	}

	var png bytes.Buffer
	if err := imaging.EncodePNG(&png, buf); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return &PreviewResult{
		Source:      a.Source,
		Width:       buf.Width(),
		Height:      buf.Height(),
		ImageBase64: base64.StdEncoding.EncodeToString(png.Bytes()),
	}, nil
}

// fitBuffer scales buf down so neither side exceeds maxDim.
func fitBuffer(buf *imaging.Buffer, maxDim int) (*imaging.Buffer, error) {
	if maxDim <= 0 || (buf.Width() <= maxDim && buf.Height() <= maxDim) {
		return buf, nil
	}
	return imaging.FromImage(dimaging.Fit(buf.NRGBA(), maxDim, maxDim, dimaging.Lanczos))
}

type imageSampleColorArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cur := s.editor.Current()
	if cur == nil {
		return nil, workspace.ErrNoImage
	}
	return imaging.SampleColor(cur, a.X, a.Y)
}

// === Recognition Handlers ===

type ocrStartArgs struct {
	Wait bool `json:"wait"`
}

func (s *Server) handleOCRStart(args json.RawMessage) (interface{}, error) {
	var a ocrStartArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.editor.Recognize(); err != nil {
		return nil, err
	}
	if a.Wait {
		if err := s.editor.WaitRecognition(s.ctx); err != nil {
			return nil, err
		}
	}
	return s.editor.Recognition(), nil
}

type ocrStatusArgs struct {
	IncludeRegions bool `json:"include_regions"`
}

// OCRStatusResult reports recognition progress and, once done, its output.
type OCRStatusResult struct {
	recognition.Snapshot
	WordCount int              `json:"word_count,omitempty"`
	Regions   []ocr.TextRegion `json:"regions,omitempty"`
	Artifact  *artifactView    `json:"artifact,omitempty"`
}

func (s *Server) handleOCRStatus(args json.RawMessage) (interface{}, error) {
	var a ocrStatusArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out := &OCRStatusResult{Snapshot: s.editor.Recognition()}
	if out.Status == recognition.StatusDone {
		if res := s.editor.RecognitionResult(); res != nil {
			out.WordCount = len(res.Regions)
			if a.IncludeRegions {
				out.Regions = res.Regions
			}
		}
		out.Artifact = newArtifactView(s.editor.LastText(), false)
	}
	return out, nil
}

// === Export Handlers ===

// artifactView describes an artifact, optionally with its bytes inline.
type artifactView struct {
	*export.Artifact
	Size       int    `json:"size"`
	DataBase64 string `json:"data_base64,omitempty"`
}

func newArtifactView(a *export.Artifact, includeData bool) *artifactView {
	if a == nil {
		return nil
	}
	v := &artifactView{Artifact: a, Size: a.Size()}
	if includeData {
		v.DataBase64 = base64.StdEncoding.EncodeToString(a.Data)
	}
	return v
}

type exportDocumentArgs struct {
	IncludeData bool `json:"include_data"`
}

func (s *Server) handleExportDocument(args json.RawMessage) (interface{}, error) {
	var a exportDocumentArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	art, err := s.editor.ExportDocument()
	if err != nil {
		return nil, err
	}
	return newArtifactView(art, a.IncludeData), nil
}

type exportTextArgs struct {
	Text        *string `json:"text"`
	IncludeData bool    `json:"include_data"`
}

func (s *Server) handleExportText(args json.RawMessage) (interface{}, error) {
	var a exportTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	var text string
	if a.Text != nil {
		text = *a.Text
	} else {
		res := s.editor.RecognitionResult()
		if res == nil {
			return nil, errors.New("no recognized text; pass text or run ocr_start first")
		}
		text = res.Text
	}
	art, err := s.editor.ExportText(text)
	if err != nil {
		return nil, err
	}
	return newArtifactView(art, a.IncludeData), nil
}
