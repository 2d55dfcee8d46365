// Package workspace holds the image state of one editing session.
//
// A Workspace owns two buffers: the original, set once per load or capture
// and never changed afterwards, and the current buffer that every tool
// edits. Either both are present or neither is.
//
// The package also defines the error kinds shared by the tools, the Tool
// enumeration and the CropSession state machine that turns a pointer drag
// into a crop rectangle.
//
// # Recognition Hold
//
// Acquire hands a snapshot of the current buffer to a long-running reader
// (text recognition) and holds the workspace until the returned release
// func runs. While held, every operation that would write the current
// buffer fails with ErrBusy. Loading a new image is still allowed because
// the reader works on its own snapshot.
package workspace
