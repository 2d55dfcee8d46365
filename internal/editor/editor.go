package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scanpad/internal/canvas"
	"github.com/ironsheep/scanpad/internal/capture"
	"github.com/ironsheep/scanpad/internal/export"
	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/logging"
	"github.com/ironsheep/scanpad/internal/ocr"
	"github.com/ironsheep/scanpad/internal/recognition"
	"github.com/ironsheep/scanpad/internal/workspace"
)

// Options wires an Editor to its collaborators. Zero fields get working
// defaults: an in-memory raster, a silent notifier, a memory sink, a PDF
// pipeline and no capture device or OCR engine.
type Options struct {
	Surface  Surface
	Notifier Notifier
	Sink     export.Sink
	Pipeline *export.Pipeline
	Device   capture.Device
	Engine   ocr.Engine
	Logger   *logrus.Logger

	// BrightnessFactor is the Clarify multiplier; 0 means the default 1.1.
	BrightnessFactor float64
	Language         string

	// OnProgress receives recognition progress increases.
	OnProgress func(progress float64)

	// Context bounds background recognition passes.
	Context context.Context
}

// Editor is one editing session.
type Editor struct {
	mu     sync.Mutex
	ws     *workspace.Workspace
	crop   workspace.CropSession
	tool   workspace.Tool
	scan   *capture.Session
	job    *recognition.Job
	runCtx context.Context

	surface  Surface
	notifier Notifier
	sink     export.Sink
	pipeline *export.Pipeline
	device   capture.Device
	logger   *logrus.Logger
	factor   float64

	artMu        sync.Mutex
	lastDocument *export.Artifact
	lastText     *export.Artifact
}

// New returns an editor with an empty workspace.
func New(opts Options) *Editor {
	logger := logging.OrDiscard(opts.Logger)

	e := &Editor{
		ws:       workspace.New(),
		runCtx:   opts.Context,
		surface:  opts.Surface,
		notifier: opts.Notifier,
		sink:     opts.Sink,
		pipeline: opts.Pipeline,
		device:   opts.Device,
		logger:   logger,
		factor:   opts.BrightnessFactor,
	}
	if e.runCtx == nil {
		e.runCtx = context.Background()
	}
	if e.surface == nil {
		e.surface = canvas.NewRaster(canvas.DefaultOverlayStyle)
	}
	if e.notifier == nil {
		e.notifier = discardNotifier{}
	}
	if e.sink == nil {
		e.sink = &export.MemorySink{}
	}
	if e.pipeline == nil {
		e.pipeline = export.NewPipeline(export.NewPDFPackager(logger))
	}
	if e.factor == 0 {
		e.factor = imaging.DefaultBrightnessFactor
	}

	language := opts.Language
	if language == "" {
		language = ocr.DefaultLanguage
	}
	jobOpts := []recognition.Option{
		recognition.WithLanguage(language),
		recognition.WithLogger(logger),
		recognition.WithCompletionHandler(e.recognitionDone),
	}
	if opts.OnProgress != nil {
		jobOpts = append(jobOpts, recognition.WithProgressListener(opts.OnProgress))
	}
	e.job = recognition.NewJob(opts.Engine, jobOpts...)

	return e
}

// fail reports user-visible errors to the notifier and returns err.
func (e *Editor) fail(err error) error {
	if err != nil && IsUserVisible(err) {
		e.logger.WithError(err).Warn("Operation failed")
		e.notifier.Notify(err)
	}
	return err
}

// redrawLocked sizes the surface to the current image and draws it.
func (e *Editor) redrawLocked() {
	cur := e.ws.Current()
	if cur == nil {
		return
	}
	e.surface.SetDimensions(cur.Width(), cur.Height())
	e.surface.DrawBuffer(cur)
}

// abortDragLocked drops an in-progress crop drag and clears its overlay.
func (e *Editor) abortDragLocked() {
	if e.crop.Cancel() {
		e.logger.Debug("Crop drag cancelled")
		e.redrawLocked()
	}
}

// Workspace returns the underlying workspace.
func (e *Editor) Workspace() *workspace.Workspace {
	return e.ws
}

// Current returns the working image, or nil.
func (e *Editor) Current() *imaging.Buffer {
	return e.ws.Current()
}

// Tool returns the active tool.
func (e *Editor) Tool() workspace.Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// Load makes buf the session's image, replacing any previous one.
func (e *Editor) Load(buf *imaging.Buffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ws.Load(buf); err != nil {
		return err
	}
	e.crop.Cancel()
	e.redrawLocked()
	e.logger.WithFields(logrus.Fields{
		"width":  buf.Width(),
		"height": buf.Height(),
	}).Info("Image loaded")
	return nil
}

// LoadFile decodes an image file and loads it.
func (e *Editor) LoadFile(path string) (*imaging.ImageInfo, error) {
	buf, info, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	if err := e.Load(buf); err != nil {
		return nil, err
	}
	return info, nil
}

// SelectTool makes tool the active one. Any crop drag in progress is
// abandoned and leaving Scan cancels a pending or live capture. Action
// tools then run their action at once; Crop only arms the pointer.
func (e *Editor) SelectTool(ctx context.Context, tool workspace.Tool) error {
	e.mu.Lock()
	prev := e.tool
	e.abortDragLocked()
	if prev == workspace.ToolScan && tool != workspace.ToolScan {
		e.cancelScanLocked()
	}
	e.tool = tool
	e.mu.Unlock()

	e.logger.WithField("tool", tool.String()).Debug("Tool selected")

	switch tool {
	case workspace.ToolRotate:
		return e.Rotate()
	case workspace.ToolClarify:
		return e.Clarify()
	case workspace.ToolScan:
		return e.StartScan(ctx)
	case workspace.ToolReset:
		return e.Reset()
	case workspace.ToolRecognize:
		return e.Recognize()
	case workspace.ToolExport:
		_, err := e.ExportDocument()
		return err
	}
	return nil
}

// PointerDown starts a crop drag at p when the Crop tool is active and an
// image is loaded. It is ignored otherwise.
func (e *Editor) PointerDown(p image.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tool != workspace.ToolCrop || !e.ws.HasImage() {
		return
	}
	e.crop.Begin(p)
}

// PointerMove updates the drag and redraws the image with the selection
// outline. The image itself is not modified.
func (e *Editor) PointerMove(p image.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.crop.Move(p) {
		return
	}
	r, ok := e.crop.Preview()
	if !ok {
		return
	}
	if cur := e.ws.Current(); cur != nil {
		e.surface.DrawBuffer(cur)
		e.surface.DrawOverlayRect(r)
	}
}

// PointerUp ends the drag. A positive-area selection is clamped to the
// image and committed; anything else just clears the outline.
func (e *Editor) PointerUp() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.crop.Dragging() {
		return nil
	}
	r, ok := e.crop.End()
	if !ok {
		e.redrawLocked()
		return nil
	}
	return e.cropLocked(r)
}

// Crop commits r, in image coordinates, as if it had been dragged.
func (e *Editor) Crop(r image.Rectangle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ws.HasImage() {
		return nil
	}
	e.abortDragLocked()
	return e.cropLocked(r)
}

func (e *Editor) cropLocked(r image.Rectangle) error {
	err := e.ws.Update(func(b *imaging.Buffer) (*imaging.Buffer, error) {
		return imaging.Crop(b, r)
	})
	if errors.Is(err, imaging.ErrEmptyRegion) {
		// Selection entirely outside the image.
		e.redrawLocked()
		return nil
	}
	if err != nil {
		e.redrawLocked()
		return e.fail(err)
	}
	e.redrawLocked()
	e.logCurrent("Image cropped")
	return nil
}

// CropRegion crops the current image to a named region such as
// "top-left" or "center". It does nothing without an image.
func (e *Editor) CropRegion(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ws.HasImage() {
		return nil
	}
	e.abortDragLocked()
	err := e.ws.Update(func(b *imaging.Buffer) (*imaging.Buffer, error) {
		return imaging.CropRegion(b, name)
	})
	if err != nil {
		return e.fail(err)
	}
	e.redrawLocked()
	e.logCurrent("Image cropped to region")
	return nil
}

// Rotate turns the current image 90° clockwise. It does nothing without
// an image.
func (e *Editor) Rotate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ws.HasImage() {
		return nil
	}
	e.abortDragLocked()
	err := e.ws.Update(func(b *imaging.Buffer) (*imaging.Buffer, error) {
		return imaging.Rotate90(b), nil
	})
	if err != nil {
		return e.fail(err)
	}
	e.redrawLocked()
	e.logCurrent("Image rotated")
	return nil
}

// Clarify brightens the current image in place. Repeated calls compound.
// It does nothing without an image.
func (e *Editor) Clarify() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ws.HasImage() {
		return nil
	}
	e.abortDragLocked()
	err := e.ws.MutateCurrentInPlace(func(b *imaging.Buffer) error {
		return imaging.Brighten(b, e.factor)
	})
	if err != nil {
		return e.fail(err)
	}
	e.redrawLocked()
	e.logger.WithField("factor", e.factor).Debug("Image clarified")
	return nil
}

// Reset discards every edit since the image was loaded.
func (e *Editor) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.crop.Cancel()
	if err := e.ws.Reset(); err != nil {
		e.redrawLocked()
		return e.fail(err)
	}
	e.redrawLocked()
	e.logCurrent("Image reset")
	return nil
}

// StartScan opens the capture device and activates the Scan tool. It is a
// no-op while a capture is already pending or live. The editor lock is not
// held while the device is being asked.
func (e *Editor) StartScan(ctx context.Context) error {
	e.mu.Lock()
	if e.scan != nil && !e.scan.State().Terminal() {
		e.mu.Unlock()
		return nil
	}
	e.abortDragLocked()
	session := capture.NewSession(e.device, e.ws, e.logger)
	e.scan = session
	e.tool = workspace.ToolScan
	e.mu.Unlock()

	return e.fail(session.Start(ctx))
}

// ScanPreview returns a live frame. It never touches the workspace.
func (e *Editor) ScanPreview() (*imaging.Buffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scan == nil {
		return nil, capture.ErrNotLive
	}
	return e.scan.Preview()
}

// CaptureStill loads the current camera frame as the new image and
// releases the device.
func (e *Editor) CaptureStill() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scan == nil {
		return capture.ErrNotLive
	}
	if err := e.scan.CaptureStill(); err != nil {
		return e.fail(err)
	}
	e.crop.Cancel()
	e.redrawLocked()
	e.logCurrent("Captured frame loaded")
	return nil
}

// CancelScan abandons a pending or live capture. It reports whether one
// was active.
func (e *Editor) CancelScan() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelScanLocked()
}

func (e *Editor) cancelScanLocked() bool {
	if e.scan == nil {
		return false
	}
	return e.scan.Cancel()
}

// CaptureState returns the state of the latest capture session.
func (e *Editor) CaptureState() capture.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scan == nil {
		return capture.StateInactive
	}
	return e.scan.State()
}

// Recognize starts text recognition over the current image and returns
// at once. While it runs, edits to the image are rejected. A second call
// during a run does nothing. On success the text is offered as an artifact.
func (e *Editor) Recognize() error {
	_, err := e.job.Start(e.runCtx, e.ws)
	return e.fail(err)
}

func (e *Editor) recognitionDone(o recognition.Outcome) {
	if o.Status != recognition.StatusDone {
		e.fail(o.Err)
		return
	}
	a := e.pipeline.ExportText(o.Result.Text)
	if err := e.sink.Offer(a); err != nil {
		e.logger.WithError(err).Error("Offering recognized text failed")
		return
	}
	e.artMu.Lock()
	e.lastText = a
	e.artMu.Unlock()
	e.logger.WithFields(logrus.Fields{
		"job_id":   o.RunID,
		"artifact": a.Filename,
	}).Info("Recognized text ready")
}

// WaitRecognition blocks until the current recognition settles.
func (e *Editor) WaitRecognition(ctx context.Context) error {
	return e.job.Wait(ctx)
}

// Recognition returns the recognition job state.
func (e *Editor) Recognition() recognition.Snapshot {
	return e.job.Snapshot()
}

// RecognitionResult returns the word-level result of the last successful
// recognition, or nil.
func (e *Editor) RecognitionResult() *ocr.Result {
	return e.job.Result()
}

// ExportDocument packages the current image as a document and offers it.
func (e *Editor) ExportDocument() (*export.Artifact, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, err := e.pipeline.ExportDocument(e.ws.Current())
	if err != nil {
		return nil, e.fail(err)
	}
	if err := e.sink.Offer(a); err != nil {
		return nil, fmt.Errorf("offer %s: %w", a.Filename, err)
	}
	e.artMu.Lock()
	e.lastDocument = a
	e.artMu.Unlock()
	e.logger.WithFields(logrus.Fields{
		"artifact": a.Filename,
		"bytes":    a.Size(),
	}).Info("Document exported")
	return a, nil
}

// ExportText packages text as a plain-text artifact and offers it.
func (e *Editor) ExportText(text string) (*export.Artifact, error) {
	a := e.pipeline.ExportText(text)
	if err := e.sink.Offer(a); err != nil {
		return nil, fmt.Errorf("offer %s: %w", a.Filename, err)
	}
	e.artMu.Lock()
	e.lastText = a
	e.artMu.Unlock()
	return a, nil
}

// LastDocument returns the most recent document artifact, or nil.
func (e *Editor) LastDocument() *export.Artifact {
	e.artMu.Lock()
	defer e.artMu.Unlock()
	return e.lastDocument
}

// LastText returns the most recent text artifact, or nil.
func (e *Editor) LastText() *export.Artifact {
	e.artMu.Lock()
	defer e.artMu.Unlock()
	return e.lastText
}

// ReadSurface copies a region of the rendering surface, overlay included.
func (e *Editor) ReadSurface(r image.Rectangle) (*imaging.Buffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.ReadRegion(r)
}

func (e *Editor) logCurrent(msg string) {
	cur := e.ws.Current()
	if cur == nil {
		return
	}
	e.logger.WithFields(logrus.Fields{
		"width":  cur.Width(),
		"height": cur.Height(),
	}).Info(msg)
}
