package imaging

import "github.com/disintegration/imaging"

// Rotate90 rotates b a quarter turn clockwise into a new buffer.
//
// The output is exactly Height()×Width() of the input and destination
// pixel (x,y) is source pixel (y, H-1-x). Samples are copied, never
// resampled, so four rotations return the original buffer.
func Rotate90(b *Buffer) *Buffer {
	// imaging counts rotations counter-clockwise; 270 CCW is 90 CW.
	return wrap(imaging.Rotate270(b.img))
}
