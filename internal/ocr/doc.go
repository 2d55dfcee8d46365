// Package ocr recognizes text in images using Tesseract.
//
// The Engine interface is what the rest of scanpad depends on. Tesseract
// implements it through gosseract/v2 when built with cgo; without cgo
// NewTesseract reports ErrUnavailable and callers treat OCR as missing.
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Language data is looked up in the tessdata prefix from configuration,
// falling back to Tesseract's own TESSDATA_PREFIX handling.
//
// # Progress
//
// Recognize reports {Phase, Fraction} tuples while it works. Phases arrive
// in order: "initializing api", "loading language", "recognizing text".
// Only the last one describes recognition progress; the fraction of the
// others is informational.
package ocr
