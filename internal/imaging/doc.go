// Package imaging provides the raster buffer and pixel transforms used by the
// scan workspace.
//
// A Buffer is a single RGBA8 raster snapshot backed by a non-premultiplied
// *image.NRGBA whose origin is always (0,0) and whose stride is exactly
// width*4. Dimension-changing edits (crop, rotate) always produce a new
// Buffer; dimension-preserving filters (brightness) mutate the buffer they
// are given.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// A Buffer carries no lock. Transforms that return a new Buffer only read
// their input and may run concurrently with other readers. Brighten writes
// the buffer in place and must not run concurrently with any reader of the
// same buffer; the workspace package enforces that rule.
//
// # Lossless Transforms
//
// Crop and Rotate90 copy samples byte for byte; no resampling or colour
// conversion happens, so four rotations reproduce the input exactly.
// Brighten is intentionally lossy: channels are scaled, rounded and clamped.
package imaging
