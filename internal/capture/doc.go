// Package capture hands a frame from a capture device over to the
// workspace.
//
// A Session requests a stream from a Device, shows live frames while the
// stream is open and, on CaptureStill, loads one frame at the device's
// native resolution into its Target. Whatever the exit path (capture,
// cancel or error), the stream is stopped exactly once.
//
//	Inactive → Requesting → Live | Denied
//	Live → Captured | Cancelled
//
// Devices provided here are FileDevice (a still image standing in for a
// camera), NoDevice (always denied) and CameraDevice (OpenCV; only built
// with the "camera" build tag).
package capture
