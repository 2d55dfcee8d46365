package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

var (
	// ErrEmptyRegion is returned when a crop region has no area once it is
	// clamped to the buffer.
	ErrEmptyRegion = errors.New("crop region has zero area")

	// ErrUnknownRegion is returned by CropRegion for an unrecognised name.
	ErrUnknownRegion = errors.New("unknown region")
)

// RegionNames lists the named regions accepted by CropRegion.
var RegionNames = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// SelectionRect converts two drag points into a rectangle anchored at their
// component-wise minimum, sized by their absolute difference. The result
// does not depend on which point came first.
func SelectionRect(a, b image.Point) image.Rectangle {
	x, y := min(a.X, b.X), min(a.Y, b.Y)
	w, h := abs(b.X-a.X), abs(b.Y-a.Y)
	return image.Rect(x, y, x+w, y+h)
}

// ClampRect limits r to bounds. A rectangle entirely outside bounds
// collapses to an empty rectangle; no error is ever raised.
func ClampRect(r, bounds image.Rectangle) image.Rectangle {
	return r.Canon().Intersect(bounds)
}

// Crop copies the region r out of b into a new buffer.
//
// The region is clamped to the buffer bounds first, so a selection dragged
// past the edge still crops whatever part of it overlaps the image. Crop
// returns ErrEmptyRegion if nothing overlaps.
func Crop(b *Buffer, r image.Rectangle) (*Buffer, error) {
	clamped := ClampRect(r, b.Bounds())
	if clamped.Empty() {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d) within %dx%d",
			ErrEmptyRegion, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, b.Width(), b.Height())
	}
	return wrap(imaging.Crop(b.img, clamped)), nil
}

// RegionRect resolves a named region of a w×h image.
func RegionRect(w, h int, region string) (image.Rectangle, error) {
	midX := w / 2
	midY := h / 2

	var x1, y1, x2, y2 int

	switch region {
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		// Center 50% of the image
		qW := w / 4
		qH := h / 4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return image.Rectangle{}, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}

	return image.Rect(x1, y1, x2, y2), nil
}

// CropRegion crops a named region such as "top-left" or "center".
func CropRegion(b *Buffer, region string) (*Buffer, error) {
	r, err := RegionRect(b.Width(), b.Height(), region)
	if err != nil {
		return nil, err
	}
	return Crop(b, r)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
