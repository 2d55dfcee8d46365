//go:build !camera

package capture

import (
	"context"
	"errors"
)

// ErrCameraUnsupported is returned when scanpad was built without the
// "camera" build tag.
var ErrCameraUnsupported = errors.New("camera support not compiled in (build with -tags camera)")

// CameraDevice opens a local camera through OpenCV. This build has no
// OpenCV, so every request is refused.
type CameraDevice struct {
	ID int
}

// RequestStream always fails in this build.
func (CameraDevice) RequestStream(context.Context) (Stream, error) {
	return nil, ErrCameraUnsupported
}
