package editor

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/scanpad/internal/canvas"
	"github.com/ironsheep/scanpad/internal/capture"
	"github.com/ironsheep/scanpad/internal/export"
	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/ocr"
)

// recordingNotifier collects notified errors.
type recordingNotifier struct {
	mu   sync.Mutex
	errs []error
}

func (n *recordingNotifier) Notify(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
}

func (n *recordingNotifier) all() []error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]error(nil), n.errs...)
}

type fakeStream struct {
	mu    sync.Mutex
	frame image.Image
	stops int
}

func (s *fakeStream) FrameSize() (int, int) {
	b := s.frame.Bounds()
	return b.Dx(), b.Dy()
}

func (s *fakeStream) ReadFrame() (image.Image, error) { return s.frame, nil }

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *fakeStream) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

type fakeDevice struct {
	stream *fakeStream
	err    error
}

func (d *fakeDevice) RequestStream(context.Context) (capture.Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

// fakeEngine blocks until release is closed, then returns text or err.
type fakeEngine struct {
	mu      sync.Mutex
	calls   int
	text    string
	err     error
	release chan struct{}
}

func newFakeEngine(text string) *fakeEngine {
	return &fakeEngine{text: text, release: make(chan struct{})}
}

func (e *fakeEngine) Recognize(ctx context.Context, img image.Image, language string, onProgress ocr.ProgressFunc) (*ocr.Result, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	onProgress(ocr.Progress{Phase: ocr.PhaseRecognizing, Fraction: 0.5})
	<-e.release
	if e.err != nil {
		return nil, e.err
	}
	return &ocr.Result{Text: e.text}, nil
}

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// createPatternBuffer gives every pixel a distinct colour so crops and
// rotations can be checked exactly.
func createPatternBuffer(t *testing.T, w, h int) *imaging.Buffer {
	t.Helper()
	b, err := imaging.NewBuffer(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.NRGBA().SetNRGBA(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), uint8(x + y), 255})
		}
	}
	return b
}

type fixture struct {
	editor   *Editor
	surface  *canvas.Raster
	notifier *recordingNotifier
	sink     *export.MemorySink
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		surface:  canvas.NewRaster(canvas.DefaultOverlayStyle),
		notifier: &recordingNotifier{},
		sink:     &export.MemorySink{},
	}
	opts.Surface = f.surface
	opts.Notifier = f.notifier
	opts.Sink = f.sink
	f.editor = New(opts)
	return f
}

func (f *fixture) load(t *testing.T, w, h int) *imaging.Buffer {
	t.Helper()
	buf := createPatternBuffer(t, w, h)
	require.NoError(t, f.editor.Load(buf))
	return buf
}

func (f *fixture) drag(t *testing.T, from, to image.Point) error {
	t.Helper()
	f.editor.PointerDown(from)
	f.editor.PointerMove(to)
	return f.editor.PointerUp()
}
