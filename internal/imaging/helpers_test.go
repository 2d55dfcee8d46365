package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createSolidBuffer creates a buffer filled with one colour.
func createSolidBuffer(t *testing.T, width, height int, c color.NRGBA) *Buffer {
	t.Helper()
	b, err := NewBuffer(width, height)
	if err != nil {
		t.Fatalf("NewBuffer(%d,%d) failed: %v", width, height, err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.NRGBA().SetNRGBA(x, y, c)
		}
	}
	return b
}

// createPatternBuffer creates a buffer with different colors in each quadrant
func createPatternBuffer(t *testing.T, width, height int) *Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	b, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	return b
}

// createGradientBuffer gives every pixel a distinct value so that pixel
// moves are detectable.
func createGradientBuffer(t *testing.T, width, height int) *Buffer {
	t.Helper()
	b, err := NewBuffer(width, height)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.NRGBA().SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x*7 + y*3), uint8(200 + (x+y)%50)})
		}
	}
	return b
}
