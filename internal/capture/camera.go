//go:build camera

package capture

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// CameraDevice opens a local camera through OpenCV.
type CameraDevice struct {
	ID int
}

// RequestStream opens the camera.
func (d CameraDevice) RequestStream(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vc, err := gocv.OpenVideoCapture(d.ID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", d.ID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("camera %d not available", d.ID)
	}
	return &cameraStream{vc: vc, mat: gocv.NewMat()}, nil
}

type cameraStream struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

func (s *cameraStream) FrameSize() (int, int) {
	return int(s.vc.Get(gocv.VideoCaptureFrameWidth)), int(s.vc.Get(gocv.VideoCaptureFrameHeight))
}

func (s *cameraStream) ReadFrame() (image.Image, error) {
	if ok := s.vc.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, fmt.Errorf("camera returned no frame")
	}
	return s.mat.ToImage()
}

func (s *cameraStream) Stop() error {
	s.mat.Close()
	return s.vc.Close()
}
