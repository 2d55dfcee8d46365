// Package editor coordinates one scan-editing session.
//
// An Editor owns the workspace, the crop drag, the active tool, the capture
// session and the recognition job, and is the only object the outer
// surfaces talk to. Handlers run one at a time under the editor's lock;
// only device acquisition and text recognition run outside it.
//
// User-visible failures (no image, OCR unavailable, camera denied, OCR
// failed, image busy) are delivered to the Notifier exactly once and also
// returned. Conditions the editor recovers from locally, such as a
// zero-area crop or a drag interrupted by a tool switch, are not errors.
package editor
