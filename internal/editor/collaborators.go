package editor

import (
	"errors"
	"image"

	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/workspace"
)

// Surface is the rendering surface the editor draws on.
type Surface interface {
	SetDimensions(w, h int)
	DrawBuffer(buf *imaging.Buffer)
	ReadRegion(r image.Rectangle) (*imaging.Buffer, error)
	DrawOverlayRect(r image.Rectangle)
}

// Notifier shows failures to the user. Notify may be called from the
// recognition goroutine.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(error)

// Notify calls f(err).
func (f NotifierFunc) Notify(err error) { f(err) }

type discardNotifier struct{}

func (discardNotifier) Notify(error) {}

// userVisible are the error kinds reported through the Notifier.
var userVisible = []error{
	workspace.ErrNoImage,
	workspace.ErrEngineUnavailable,
	workspace.ErrDeviceDenied,
	workspace.ErrEngineFailure,
	workspace.ErrBusy,
}

// IsUserVisible reports whether err is one of the kinds shown to the user.
func IsUserVisible(err error) bool {
	for _, kind := range userVisible {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
