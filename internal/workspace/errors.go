package workspace

import "errors"

// User-visible error kinds. Callers match them with errors.Is.
var (
	// ErrNoImage means the operation needs a loaded image and none is present.
	ErrNoImage = errors.New("no image loaded")

	// ErrEngineUnavailable means no OCR engine is configured.
	ErrEngineUnavailable = errors.New("OCR engine unavailable")

	// ErrDeviceDenied means the capture device was refused or is missing.
	ErrDeviceDenied = errors.New("camera access denied or not available")

	// ErrEngineFailure means the OCR engine reported a recognition failure.
	ErrEngineFailure = errors.New("text recognition failed")

	// ErrBusy means the current image is held by a running recognition and
	// cannot be modified until it settles.
	ErrBusy = errors.New("image is in use by text recognition")

	// ErrInvalidBuffer means a nil or empty buffer was offered as an image.
	ErrInvalidBuffer = errors.New("invalid image buffer")
)
