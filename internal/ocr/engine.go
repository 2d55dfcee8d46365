package ocr

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/scanpad/internal/config"
)

// Progress phases reported by engines.
const (
	PhaseInitializing    = "initializing api"
	PhaseLoadingLanguage = "loading language"
	PhaseRecognizing     = "recognizing text"
)

// DefaultLanguage is used when no language is given.
const DefaultLanguage = "eng"

// ErrUnavailable is returned when this build has no OCR engine.
var ErrUnavailable = errors.New("tesseract OCR is not available in this build")

// Progress is one progress report from an engine.
type Progress struct {
	Phase    string  `json:"phase"`
	Fraction float64 `json:"fraction"`
}

// ProgressFunc receives progress reports. It may be nil.
type ProgressFunc func(Progress)

// Engine recognizes text in an image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, language string, onProgress ProgressFunc) (*Result, error)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion is a recognized word with its location and confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is between 0 and 1.
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result is the outcome of one recognition pass.
type Result struct {
	// Text is all recognized text with the engine's spacing and newlines.
	Text string `json:"text"`

	// Regions holds word boxes. It may be empty even when Text is not.
	Regions []TextRegion `json:"regions"`
}

// Info describes the OCR subsystem.
type Info struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Error          string `json:"error,omitempty"`
	Backend        string `json:"backend"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}

// NewEngine returns the Tesseract engine configured by cfg, or
// ErrUnavailable.
func NewEngine(cfg config.OCRConfig) (Engine, error) {
	t, err := NewTesseract(cfg.TessdataPrefix)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func report(fn ProgressFunc, phase string, fraction float64) {
	if fn != nil {
		fn(Progress{Phase: phase, Fraction: fraction})
	}
}
