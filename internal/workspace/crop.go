package workspace

import (
	"image"

	"github.com/ironsheep/scanpad/internal/imaging"
)

// CropState is the phase of a CropSession.
type CropState int

const (
	CropIdle CropState = iota
	CropDragging
)

func (s CropState) String() string {
	if s == CropDragging {
		return "dragging"
	}
	return "idle"
}

// CropSession turns one pointer drag into a crop rectangle.
//
// Idle → Dragging on Begin; Move updates the cursor; End returns the
// rectangle to commit (if it has positive area) and always returns to Idle.
// Cancel abandons the drag without producing a rectangle.
//
// The zero value is an idle session. A CropSession is not safe for
// concurrent use; the editor serialises pointer events.
type CropSession struct {
	state     CropState
	anchor    image.Point
	cursor    image.Point
	hasCursor bool
}

// Begin starts a drag at p. Calling Begin while already dragging starts
// over with a fresh anchor, so a lost pointer-up can never wedge the
// session.
func (s *CropSession) Begin(p image.Point) {
	s.state = CropDragging
	s.anchor = p
	s.cursor = image.Point{}
	s.hasCursor = false
}

// Move records the pointer position. It reports whether a drag is in
// progress, in which case the caller should redraw the preview.
func (s *CropSession) Move(p image.Point) bool {
	if s.state != CropDragging {
		return false
	}
	s.cursor = p
	s.hasCursor = true
	return true
}

// Preview returns the rectangle spanned by the drag so far.
func (s *CropSession) Preview() (image.Rectangle, bool) {
	if s.state != CropDragging || !s.hasCursor {
		return image.Rectangle{}, false
	}
	return imaging.SelectionRect(s.anchor, s.cursor), true
}

// End finishes the drag. It returns the selection rectangle and true only
// when both corners are known and the rectangle has positive area. The
// rectangle is in pointer coordinates and still needs clamping to the
// image.
func (s *CropSession) End() (image.Rectangle, bool) {
	r, ok := s.Preview()
	s.clear()
	if !ok || r.Empty() {
		return image.Rectangle{}, false
	}
	return r, true
}

// Cancel abandons any drag in progress. It reports whether one was active.
func (s *CropSession) Cancel() bool {
	was := s.state == CropDragging
	s.clear()
	return was
}

// Dragging reports whether a drag is in progress.
func (s *CropSession) Dragging() bool {
	return s.state == CropDragging
}

// State returns the current phase.
func (s *CropSession) State() CropState {
	return s.state
}

func (s *CropSession) clear() {
	*s = CropSession{}
}
