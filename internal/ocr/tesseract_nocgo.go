//go:build !cgo

package ocr

import (
	"context"
	"image"
)

const backendName = "none (built without cgo)"

// Tesseract is unavailable in builds without cgo.
type Tesseract struct{}

// NewTesseract always fails with ErrUnavailable in this build.
func NewTesseract(string) (*Tesseract, error) {
	return nil, ErrUnavailable
}

// Recognize always fails with ErrUnavailable.
func (*Tesseract) Recognize(context.Context, image.Image, string, ProgressFunc) (*Result, error) {
	return nil, ErrUnavailable
}

// Info reports that OCR is unavailable.
func (*Tesseract) Info() Info {
	return Info{
		Available: false,
		Error:     ErrUnavailable.Error(),
		Backend:   backendName,
	}
}
