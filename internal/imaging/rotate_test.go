package imaging

import (
	"image/color"
	"testing"
)

func TestRotate90_Dimensions(t *testing.T) {
	b := createGradientBuffer(t, 10, 20)

	r := Rotate90(b)
	if r.Width() != 20 || r.Height() != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", r.Width(), r.Height())
	}
	if len(r.Pix()) != 20*10*4 {
		t.Errorf("pixel length: got %d", len(r.Pix()))
	}
}

func TestRotate90_Clockwise(t *testing.T) {
	b := createGradientBuffer(t, 3, 2)
	r := Rotate90(b)

	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			want := b.NRGBA().NRGBAAt(y, b.Height()-1-x)
			if got := r.NRGBA().NRGBAAt(x, y); got != want {
				t.Errorf("dst(%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}

	// Top-left corner moves to the top-right corner.
	if r.NRGBA().NRGBAAt(r.Width()-1, 0) != b.NRGBA().NRGBAAt(0, 0) {
		t.Error("top-left pixel should end up top-right after a clockwise turn")
	}
}

func TestRotate90_FourTurnsRoundTrip(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 7}, {10, 20}, {13, 5}}

	for _, s := range sizes {
		b := createGradientBuffer(t, s[0], s[1])
		r := b
		for i := 0; i < 4; i++ {
			r = Rotate90(r)
		}
		if !r.Equal(b) {
			t.Errorf("%dx%d: four rotations did not reproduce the input", s[0], s[1])
		}
	}
}

func TestRotate90_DoesNotTouchInput(t *testing.T) {
	b := createSolidBuffer(t, 4, 2, color.NRGBA{9, 9, 9, 9})
	before := b.Clone()
	_ = Rotate90(b)
	if !b.Equal(before) {
		t.Error("Rotate90 modified its input")
	}
}
