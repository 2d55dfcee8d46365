// Package canvas provides an in-memory raster that stands in for the
// editor's rendering surface.
package canvas

import (
	"image"
	"image/color"
	"io"
	"sync"

	"golang.org/x/image/draw"

	"github.com/ironsheep/scanpad/internal/imaging"
)

// OverlayStyle describes the dashed crop outline.
type OverlayStyle struct {
	Color color.NRGBA
	Width int
	Dash  int // dash and gap length in pixels; 0 draws a solid line
}

// DefaultOverlayStyle is a cyan dashed outline two pixels wide.
var DefaultOverlayStyle = OverlayStyle{
	Color: color.NRGBA{R: 0, G: 255, B: 255, A: 255},
	Width: 2,
	Dash:  6,
}

// Raster is an RGBA surface. Drawing operations never allocate a new
// surface except SetDimensions, which clears it.
//
// Raster is safe for concurrent use.
type Raster struct {
	mu    sync.Mutex
	img   *image.NRGBA
	style OverlayStyle
}

// NewRaster returns an empty 0x0 raster.
func NewRaster(style OverlayStyle) *Raster {
	if style.Width <= 0 {
		style.Width = 1
	}
	if style.Dash < 0 {
		style.Dash = 0
	}
	return &Raster{
		img:   image.NewNRGBA(image.Rect(0, 0, 0, 0)),
		style: style,
	}
}

// SetDimensions resizes the surface and clears it to transparent.
func (r *Raster) SetDimensions(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.img = image.NewNRGBA(image.Rect(0, 0, w, h))
}

// Size returns the surface dimensions.
func (r *Raster) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.img.Rect.Dx(), r.img.Rect.Dy()
}

// DrawBuffer copies buf onto the surface at the origin. Pixels outside the
// surface are dropped.
func (r *Raster) DrawBuffer(buf *imaging.Buffer) {
	if buf == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	draw.Draw(r.img, buf.Bounds(), buf.NRGBA(), image.Point{}, draw.Src)
}

// ReadRegion copies the given area of the surface into a new buffer. The
// rectangle is clamped to the surface.
func (r *Raster) ReadRegion(rect image.Rectangle) (*imaging.Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, err := imaging.FromImage(r.img)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(src, rect)
}

// DrawOverlayRect strokes rect with the overlay style. The stroke is
// centred on the rectangle's edges and clipped to the surface.
func (r *Raster) DrawOverlayRect(rect image.Rectangle) {
	rect = rect.Canon()
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.style.Width
	lo := -w / 2
	hi := lo + w
	stroke := func(x, y int) {
		for dy := lo; dy < hi; dy++ {
			for dx := lo; dx < hi; dx++ {
				// SetNRGBA ignores points outside the surface.
				r.img.SetNRGBA(x+dx, y+dy, r.style.Color)
			}
		}
	}

	// Walk the perimeter clockwise so the dash pattern runs continuously.
	t := 0
	for x := rect.Min.X; x < rect.Max.X; x++ {
		if r.dashOn(t) {
			stroke(x, rect.Min.Y)
		}
		t++
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		if r.dashOn(t) {
			stroke(rect.Max.X, y)
		}
		t++
	}
	for x := rect.Max.X; x > rect.Min.X; x-- {
		if r.dashOn(t) {
			stroke(x, rect.Max.Y)
		}
		t++
	}
	for y := rect.Max.Y; y > rect.Min.Y; y-- {
		if r.dashOn(t) {
			stroke(rect.Min.X, y)
		}
		t++
	}
}

func (r *Raster) dashOn(t int) bool {
	if r.style.Dash == 0 {
		return true
	}
	return (t/r.style.Dash)%2 == 0
}

// Snapshot returns a copy of the surface.
func (r *Raster) Snapshot() *imaging.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.img.Rect.Empty() {
		return nil
	}
	buf, err := imaging.FromImage(r.img)
	if err != nil {
		return nil
	}
	return buf
}

// Thumbnail returns the surface scaled to fit within maxDim on its longest
// side. Surfaces already small enough are returned unscaled.
func (r *Raster) Thumbnail(maxDim int) *imaging.Buffer {
	snap := r.Snapshot()
	if snap == nil || maxDim <= 0 {
		return snap
	}
	w, h := snap.Width(), snap.Height()
	if w <= maxDim && h <= maxDim {
		return snap
	}
	var tw, th int
	if w >= h {
		tw, th = maxDim, h*maxDim/w
	} else {
		tw, th = w*maxDim/h, maxDim
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, snap.NRGBA(), snap.Bounds(), draw.Src, nil)
	out, err := imaging.FromImage(dst)
	if err != nil {
		return nil
	}
	return out
}

// EncodePNG writes the surface as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	snap := r.Snapshot()
	if snap == nil {
		return imaging.ErrInvalidDimensions
	}
	return imaging.EncodePNG(w, snap)
}
