//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

const backendName = "gosseract"

// Tesseract runs gosseract. Each Recognize call uses its own client, so a
// Tesseract may be shared.
type Tesseract struct {
	tessdataPrefix string
}

// NewTesseract returns an engine that loads language data from
// tessdataPrefix. An empty prefix leaves the lookup to Tesseract.
func NewTesseract(tessdataPrefix string) (*Tesseract, error) {
	return &Tesseract{tessdataPrefix: tessdataPrefix}, nil
}

// Recognize performs OCR on img and returns its text and word boxes.
//
// If word-level bounding box extraction fails (which can happen with some
// Tesseract configurations), the text is still returned with an empty
// Regions slice.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, language string, onProgress ProgressFunc) (*Result, error) {
	if language == "" {
		language = DefaultLanguage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(onProgress, PhaseInitializing, 0)
	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	report(onProgress, PhaseInitializing, 1)

	report(onProgress, PhaseLoadingLanguage, 0)
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	// Tesseract reads encoded images, so hand it a lossless PNG.
	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(encoded.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	report(onProgress, PhaseLoadingLanguage, 1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(onProgress, PhaseRecognizing, 0)
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	report(onProgress, PhaseRecognizing, 0.9)

	// Get word-level bounding boxes
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	regions := make([]TextRegion, 0, len(boxes))
	if err == nil {
		for _, box := range boxes {
			if box.Word == "" {
				continue
			}
			regions = append(regions, TextRegion{
				Text:       box.Word,
				Confidence: float64(box.Confidence) / 100.0,
				Bounds: Bounds{
					X1: box.Box.Min.X,
					Y1: box.Box.Min.Y,
					X2: box.Box.Max.X,
					Y2: box.Box.Max.Y,
				},
			})
		}
	}
	report(onProgress, PhaseRecognizing, 1)

	return &Result{
		Text:    text,
		Regions: regions,
	}, nil
}

// Info returns information about OCR availability.
func (t *Tesseract) Info() Info {
	client := gosseract.NewClient()
	defer client.Close()

	return Info{
		Available:      true,
		Version:        client.Version(),
		Backend:        backendName,
		TessdataPrefix: t.tessdataPrefix,
	}
}
