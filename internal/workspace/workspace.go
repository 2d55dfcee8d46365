package workspace

import (
	"fmt"
	"sync"

	"github.com/ironsheep/scanpad/internal/imaging"
)

// Workspace holds the original and current image of one session.
//
// Workspace is safe for concurrent use.
type Workspace struct {
	mu       sync.Mutex
	original *imaging.Buffer
	current  *imaging.Buffer
	holds    int
}

// New returns an empty workspace.
func New() *Workspace {
	return &Workspace{}
}

// Load replaces any previous image. original becomes buf and current an
// independent copy of it. There is no confirmation step.
func (w *Workspace) Load(buf *imaging.Buffer) error {
	if buf == nil || buf.Width() <= 0 || buf.Height() <= 0 {
		return ErrInvalidBuffer
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.original = buf
	w.current = buf.Clone()
	return nil
}

// Reset discards all edits by copying original back into current.
func (w *Workspace) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.original == nil {
		return ErrNoImage
	}
	if w.holds > 0 {
		return fmt.Errorf("reset: %w", ErrBusy)
	}
	w.current = w.original.Clone()
	return nil
}

// ReplaceCurrent swaps in a new current buffer, typically the result of a
// crop or rotation.
func (w *Workspace) ReplaceCurrent(buf *imaging.Buffer) error {
	if buf == nil || buf.Width() <= 0 || buf.Height() <= 0 {
		return ErrInvalidBuffer
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return ErrNoImage
	}
	if w.holds > 0 {
		return ErrBusy
	}
	w.current = buf
	return nil
}

// MutateCurrentInPlace runs fn on the current buffer. fn must not change
// the buffer's dimensions.
func (w *Workspace) MutateCurrentInPlace(fn func(*imaging.Buffer) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return ErrNoImage
	}
	if w.holds > 0 {
		return ErrBusy
	}
	return fn(w.current)
}

// Update derives a new current buffer from the existing one and swaps it in
// under a single lock, so no hold can start between the read and the write.
func (w *Workspace) Update(fn func(*imaging.Buffer) (*imaging.Buffer, error)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return ErrNoImage
	}
	if w.holds > 0 {
		return ErrBusy
	}
	next, err := fn(w.current)
	if err != nil {
		return err
	}
	if next == nil {
		return ErrInvalidBuffer
	}
	w.current = next
	return nil
}

// Acquire returns a private copy of the current buffer and holds the
// workspace against writes until release is called. release is idempotent.
func (w *Workspace) Acquire() (*imaging.Buffer, func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil, nil, ErrNoImage
	}
	w.holds++
	snapshot := w.current.Clone()

	var once sync.Once
	release := func() {
		once.Do(func() {
			w.mu.Lock()
			w.holds--
			w.mu.Unlock()
		})
	}
	return snapshot, release, nil
}

// Current returns the working buffer, or nil when nothing is loaded. The
// buffer must be treated as read-only; write through the workspace methods.
func (w *Workspace) Current() *imaging.Buffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Original returns the buffer as it was loaded, or nil.
func (w *Workspace) Original() *imaging.Buffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.original
}

// HasImage reports whether an image is loaded.
func (w *Workspace) HasImage() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current != nil
}

// Busy reports whether a reader currently holds the workspace.
func (w *Workspace) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.holds > 0
}
