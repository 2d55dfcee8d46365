package export

import (
	"fmt"
	"time"

	"github.com/ironsheep/scanpad/internal/config"
	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/workspace"
)

// Default artifact names.
const (
	DefaultDocumentName = "scan.pdf"
	DefaultTextName     = "ocr-result.txt"
)

// Pipeline produces document and text artifacts.
type Pipeline struct {
	packager     Packager
	page         PageFormat
	documentName string
	textName     string
	now          func() time.Time
}

// NewPipeline returns a pipeline with the default names and page format.
func NewPipeline(packager Packager) *Pipeline {
	return &Pipeline{
		packager:     packager,
		page:         DefaultPageFormat,
		documentName: DefaultDocumentName,
		textName:     DefaultTextName,
		now:          time.Now,
	}
}

// NewPipelineFromConfig applies the export settings.
func NewPipelineFromConfig(cfg config.ExportConfig, packager Packager) *Pipeline {
	p := NewPipeline(packager)
	p.page = PageFormatFromConfig(cfg.Page)
	if cfg.DocumentName != "" {
		p.documentName = cfg.DocumentName
	}
	if cfg.TextName != "" {
		p.textName = cfg.TextName
	}
	return p
}

// ExportDocument packages buf into a document. It fails with
// workspace.ErrNoImage when buf is nil.
func (p *Pipeline) ExportDocument(buf *imaging.Buffer) (*Artifact, error) {
	if buf == nil {
		return nil, workspace.ErrNoImage
	}
	data, err := p.packager.Encode(buf, p.page)
	if err != nil {
		return nil, fmt.Errorf("export document: %w", err)
	}
	return newArtifact(p.documentName, MIMEDocument, data, p.now()), nil
}

// ExportText wraps text, which may be empty, as a plain-text artifact.
func (p *Pipeline) ExportText(text string) *Artifact {
	return newArtifact(p.textName, MIMEText, []byte(text), p.now())
}
