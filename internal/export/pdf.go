package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scanpad/internal/config"
	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/logging"
)

// PageFormat fixes the document page and the image placement on it.
type PageFormat struct {
	Orientation string // "P" or "L"
	Unit        string // "mm", "pt", "cm" or "in"
	Size        string // "A4", "Letter", ...
	X, Y        float64
	Width       float64
	Height      float64
}

// DefaultPageFormat is an A4 portrait page with the image at (10,10)
// sized 180x250 mm.
var DefaultPageFormat = PageFormat{
	Orientation: "P",
	Unit:        "mm",
	Size:        "A4",
	X:           10,
	Y:           10,
	Width:       180,
	Height:      250,
}

// PageFormatFromConfig converts the page settings.
func PageFormatFromConfig(cfg config.PageConfig) PageFormat {
	return PageFormat{
		Orientation: cfg.Orientation,
		Unit:        cfg.Unit,
		Size:        cfg.Size,
		X:           cfg.X,
		Y:           cfg.Y,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}
}

// Packager turns a buffer into document bytes.
type Packager interface {
	Encode(buf *imaging.Buffer, page PageFormat) ([]byte, error)
}

// PDFPackager writes single-page PDFs with fpdf.
type PDFPackager struct {
	logger *logrus.Logger
}

// NewPDFPackager returns a PDF packager.
func NewPDFPackager(logger *logrus.Logger) *PDFPackager {
	return &PDFPackager{logger: logging.OrDiscard(logger)}
}

// Encode embeds buf as a lossless PNG on one page.
func (p *PDFPackager) Encode(buf *imaging.Buffer, page PageFormat) ([]byte, error) {
	if buf == nil {
		return nil, imaging.ErrInvalidDimensions
	}

	var png bytes.Buffer
	if err := imaging.EncodePNG(&png, buf); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}

	pdf := fpdf.New(page.Orientation, page.Unit, page.Size, "")
	pdf.SetCreator("scanpad", false)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", opts, &png)
	pdf.ImageOptions("page", page.X, page.Y, page.Width, page.Height, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"width":  buf.Width(),
		"height": buf.Height(),
		"bytes":  out.Len(),
	}).Debug("PDF encoded")
	return out.Bytes(), nil
}
