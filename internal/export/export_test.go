package export

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/scanpad/internal/config"
	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/workspace"
)

func createTestBuffer(t *testing.T, w, h int) *imaging.Buffer {
	t.Helper()
	b, err := imaging.NewBuffer(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.NRGBA().SetNRGBA(x, y, color.NRGBA{uint8(x * 8), uint8(y * 8), 200, 255})
		}
	}
	return b
}

type recordingPackager struct {
	page PageFormat
	err  error
}

func (p *recordingPackager) Encode(buf *imaging.Buffer, page PageFormat) ([]byte, error) {
	p.page = page
	if p.err != nil {
		return nil, p.err
	}
	return []byte("doc"), nil
}

func TestPDFPackager_Encode(t *testing.T) {
	data, err := NewPDFPackager(nil).Encode(createTestBuffer(t, 32, 24), DefaultPageFormat)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "output must be a PDF")
	assert.Contains(t, string(data), "/Subtype /Image")
	assert.True(t, bytes.Contains(data, []byte("%%EOF")))
}

func TestPDFPackager_Landscape(t *testing.T) {
	page := DefaultPageFormat
	page.Orientation = "L"
	page.Width, page.Height = 250, 180
	data, err := NewPDFPackager(nil).Encode(createTestBuffer(t, 10, 10), page)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFPackager_NilBuffer(t *testing.T) {
	_, err := NewPDFPackager(nil).Encode(nil, DefaultPageFormat)
	assert.Error(t, err)
}

func TestPipeline_ExportDocument(t *testing.T) {
	packager := &recordingPackager{}
	p := NewPipeline(packager)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	a, err := p.ExportDocument(createTestBuffer(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "scan.pdf", a.Filename)
	assert.Equal(t, MIMEDocument, a.MIMEType)
	assert.Equal(t, []byte("doc"), a.Data)
	assert.Equal(t, fixed, a.CreatedAt)
	assert.Equal(t, DefaultPageFormat, packager.page)
	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err)
}

func TestPipeline_ExportDocumentNoImage(t *testing.T) {
	_, err := NewPipeline(&recordingPackager{}).ExportDocument(nil)
	assert.ErrorIs(t, err, workspace.ErrNoImage)
}

func TestPipeline_ExportDocumentPackagerError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewPipeline(&recordingPackager{err: boom}).ExportDocument(createTestBuffer(t, 2, 2))
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_ExportText(t *testing.T) {
	p := NewPipeline(&recordingPackager{})
	for _, text := range []string{"", "hello\nworld", "grüße"} {
		a := p.ExportText(text)
		assert.Equal(t, "ocr-result.txt", a.Filename)
		assert.Equal(t, MIMEText, a.MIMEType)
		assert.Equal(t, text, string(a.Data))
		assert.Equal(t, len(text), a.Size())
	}
}

func TestPipeline_FromConfig(t *testing.T) {
	cfg := config.Default().Export
	cfg.DocumentName = "page.pdf"
	cfg.TextName = "page.txt"
	cfg.Page.X = 20
	packager := &recordingPackager{}
	p := NewPipelineFromConfig(cfg, packager)

	doc, err := p.ExportDocument(createTestBuffer(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, "page.pdf", doc.Filename)
	assert.Equal(t, 20.0, packager.page.X)
	assert.Equal(t, "page.txt", p.ExportText("x").Filename)
}

func TestPipeline_IDsUnique(t *testing.T) {
	p := NewPipeline(&recordingPackager{})
	assert.NotEqual(t, p.ExportText("a").ID, p.ExportText("a").ID)
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := DirSink{Dir: dir}
	a := NewPipeline(&recordingPackager{}).ExportText("recognized")

	require.NoError(t, sink.Offer(a))
	data, err := os.ReadFile(filepath.Join(dir, "ocr-result.txt"))
	require.NoError(t, err)
	assert.Equal(t, "recognized", string(data))

	a2 := NewPipeline(&recordingPackager{}).ExportText("second")
	require.NoError(t, sink.Offer(a2))
	data, err = os.ReadFile(sink.Path(a2))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data), "later artifacts replace earlier ones")
}

func TestDirSink_StripsDirectories(t *testing.T) {
	sink := DirSink{Dir: t.TempDir()}
	a := &Artifact{Filename: "../../escape.txt"}
	assert.Equal(t, filepath.Join(sink.Dir, "escape.txt"), sink.Path(a))
}

func TestMemorySink(t *testing.T) {
	var sink MemorySink
	assert.Nil(t, sink.Last())

	p := NewPipeline(&recordingPackager{})
	a := p.ExportText("one")
	b := p.ExportText("two")
	require.NoError(t, sink.Offer(a))
	require.NoError(t, sink.Offer(b))

	assert.Len(t, sink.Artifacts(), 2)
	assert.Same(t, b, sink.Last())
	got, ok := sink.Get(a.ID)
	assert.True(t, ok)
	assert.Same(t, a, got)
	_, ok = sink.Get("missing")
	assert.False(t, ok)
}
