package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"

	"github.com/disintegration/imaging"
)

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", or "unknown".
	// Detection is based on the encoded content, not the file name.
	Format string `json:"format"`

	// HasAlpha reports whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the encoded input in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Decode reads one still image and converts it into a Buffer.
//
// EXIF orientation is honoured for JPEG input so that camera photos load
// upright. Supported formats are PNG, JPEG, and GIF (first frame).
func Decode(r io.Reader) (*Buffer, *ImageInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		format = "unknown"
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, nil, err
	}

	return buf, &ImageInfo{
		Width:         buf.Width(),
		Height:        buf.Height(),
		Format:        format,
		HasAlpha:      hasAlpha(buf),
		FileSizeBytes: int64(len(data)),
	}, nil
}

// Load opens and decodes an image file.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a valid PNG, JPEG, or GIF image
func Load(path string) (*Buffer, *ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// EncodePNG writes the buffer as a lossless PNG.
func EncodePNG(w io.Writer, b *Buffer) error {
	if err := imaging.Encode(w, b.img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

func hasAlpha(b *Buffer) bool {
	pix := b.Pix()
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xff {
			return true
		}
	}
	return false
}
