package imaging

import (
	"errors"
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/math/f64"
	"github.com/anthonynsimon/bild/parallel"
)

// DefaultBrightnessFactor is the gain applied by one "clarify" step.
const DefaultBrightnessFactor = 1.1

// ErrInvalidFactor is returned for a negative, NaN or infinite gain.
var ErrInvalidFactor = errors.New("brightness factor must be a finite non-negative number")

// Brighten multiplies the R, G and B channels of every pixel by factor in
// place, rounding half to even and clamping to [0,255]. Alpha is left alone.
//
// Repeated calls compound, and channels that hit 255 stay there: there is no
// gamma handling and no way back short of reloading the original.
func Brighten(b *Buffer, factor float64) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFactor, factor)
	}

	pix := b.img.Pix
	stride := b.img.Stride
	width := b.Width()

	var lut [256]uint8
	for v := range lut {
		lut[v] = uint8(f64.Clamp(math.RoundToEven(float64(v)*factor), 0, 255))
	}

	parallel.Line(b.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			row := pix[y*stride : y*stride+width*4]
			for i := 0; i < len(row); i += 4 {
				row[i] = lut[row[i]]
				row[i+1] = lut[row[i+1]]
				row[i+2] = lut[row[i+2]]
			}
		}
	})
	return nil
}
