package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/ironsheep/scanpad/internal/imaging"
)

// Stream is an open capture device. The session that obtained it owns it
// exclusively.
type Stream interface {
	// FrameSize returns the native frame dimensions.
	FrameSize() (width, height int)
	// ReadFrame grabs the latest frame.
	ReadFrame() (image.Image, error)
	// Stop releases the device.
	Stop() error
}

// Device grants streams.
type Device interface {
	RequestStream(ctx context.Context) (Stream, error)
}

// ErrNoDevice is returned by NoDevice.
var ErrNoDevice = errors.New("no capture device configured")

// NoDevice refuses every request.
type NoDevice struct{}

// RequestStream always fails.
func (NoDevice) RequestStream(context.Context) (Stream, error) {
	return nil, ErrNoDevice
}

// FileDevice serves a still image from disk as if it were a camera. The
// file is re-read on every frame.
type FileDevice struct {
	Path string
}

// RequestStream checks the file is readable and decodes it once to learn
// the frame size.
func (d FileDevice) RequestStream(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Path == "" {
		return nil, fmt.Errorf("file device: no frame path")
	}
	if _, err := os.Stat(d.Path); err != nil {
		return nil, fmt.Errorf("file device: %w", err)
	}
	buf, _, err := imaging.Load(d.Path)
	if err != nil {
		return nil, fmt.Errorf("file device: %w", err)
	}
	return &fileStream{path: d.Path, width: buf.Width(), height: buf.Height()}, nil
}

type fileStream struct {
	path    string
	width   int
	height  int
	stopped bool
}

func (s *fileStream) FrameSize() (int, int) {
	return s.width, s.height
}

func (s *fileStream) ReadFrame() (image.Image, error) {
	if s.stopped {
		return nil, fmt.Errorf("file device: stream stopped")
	}
	buf, _, err := imaging.Load(s.path)
	if err != nil {
		return nil, err
	}
	return buf.NRGBA(), nil
}

func (s *fileStream) Stop() error {
	s.stopped = true
	return nil
}
