package capture

import (
	"fmt"

	"github.com/ironsheep/scanpad/internal/config"
)

// NewDevice builds the device named by the capture settings.
func NewDevice(cfg config.CaptureConfig) (Device, error) {
	switch cfg.Device {
	case config.DeviceFile:
		return FileDevice{Path: cfg.FramePath}, nil
	case config.DeviceCamera:
		return CameraDevice{ID: cfg.CameraID}, nil
	case config.DeviceNone, "":
		return NoDevice{}, nil
	}
	return nil, fmt.Errorf("unknown capture device %q", cfg.Device)
}
