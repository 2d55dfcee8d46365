package workspace

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/scanpad/internal/imaging"
)

func newTestBuffer(t *testing.T, w, h int) *imaging.Buffer {
	t.Helper()
	b, err := imaging.NewBuffer(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.NRGBA().SetNRGBA(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 90, 255})
		}
	}
	return b
}

func TestWorkspace_EmptyState(t *testing.T) {
	ws := New()
	assert.False(t, ws.HasImage())
	assert.Nil(t, ws.Current())
	assert.Nil(t, ws.Original())
	assert.False(t, ws.Busy())
}

func TestWorkspace_Load(t *testing.T) {
	ws := New()
	buf := newTestBuffer(t, 4, 3)

	require.NoError(t, ws.Load(buf))
	assert.True(t, ws.HasImage())
	assert.Same(t, buf, ws.Original())
	assert.NotSame(t, buf, ws.Current(), "current must be a copy of the original")
	assert.True(t, buf.Equal(ws.Current()))
}

func TestWorkspace_LoadReplacesPreviousImage(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Load(newTestBuffer(t, 4, 3)))
	next := newTestBuffer(t, 7, 2)
	require.NoError(t, ws.Load(next))

	assert.Same(t, next, ws.Original())
	assert.Equal(t, 7, ws.Current().Width())
}

func TestWorkspace_LoadRejectsNil(t *testing.T) {
	ws := New()
	assert.ErrorIs(t, ws.Load(nil), ErrInvalidBuffer)
	assert.False(t, ws.HasImage())
}

func TestWorkspace_ResetWithoutImage(t *testing.T) {
	ws := New()
	assert.ErrorIs(t, ws.Reset(), ErrNoImage)
}

func TestWorkspace_ResetRestoresOriginal(t *testing.T) {
	ws := New()
	buf := newTestBuffer(t, 10, 20)
	require.NoError(t, ws.Load(buf))
	pristine := buf.Clone()

	require.NoError(t, ws.Update(func(b *imaging.Buffer) (*imaging.Buffer, error) {
		return imaging.Rotate90(b), nil
	}))
	require.NoError(t, ws.MutateCurrentInPlace(func(b *imaging.Buffer) error {
		return imaging.Brighten(b, 1.1)
	}))
	require.NoError(t, ws.Update(func(b *imaging.Buffer) (*imaging.Buffer, error) {
		return imaging.Crop(b, image.Rect(1, 1, 5, 5))
	}))
	require.False(t, pristine.Equal(ws.Current()))

	require.NoError(t, ws.Reset())
	assert.True(t, pristine.Equal(ws.Current()), "reset must restore the loaded pixels")
	assert.True(t, pristine.Equal(ws.Original()), "original must never be mutated")
	assert.NotSame(t, ws.Original(), ws.Current())
}

func TestWorkspace_ReplaceCurrent(t *testing.T) {
	ws := New()
	assert.ErrorIs(t, ws.ReplaceCurrent(newTestBuffer(t, 2, 2)), ErrNoImage)

	require.NoError(t, ws.Load(newTestBuffer(t, 4, 4)))
	assert.ErrorIs(t, ws.ReplaceCurrent(nil), ErrInvalidBuffer)

	next := newTestBuffer(t, 2, 2)
	require.NoError(t, ws.ReplaceCurrent(next))
	assert.Same(t, next, ws.Current())
}

func TestWorkspace_MutateCurrentInPlace(t *testing.T) {
	ws := New()
	called := false
	err := ws.MutateCurrentInPlace(func(*imaging.Buffer) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrNoImage)
	assert.False(t, called)

	require.NoError(t, ws.Load(newTestBuffer(t, 3, 3)))
	boom := errors.New("boom")
	assert.ErrorIs(t, ws.MutateCurrentInPlace(func(*imaging.Buffer) error { return boom }), boom)
}

func TestWorkspace_UpdateKeepsCurrentOnError(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Load(newTestBuffer(t, 3, 3)))
	before := ws.Current()

	err := ws.Update(func(b *imaging.Buffer) (*imaging.Buffer, error) {
		return imaging.Crop(b, image.Rect(10, 10, 20, 20))
	})
	assert.ErrorIs(t, err, imaging.ErrEmptyRegion)
	assert.Same(t, before, ws.Current())

	assert.ErrorIs(t, ws.Update(func(*imaging.Buffer) (*imaging.Buffer, error) { return nil, nil }), ErrInvalidBuffer)
}

func TestWorkspace_AcquireBlocksWriters(t *testing.T) {
	ws := New()
	_, _, err := ws.Acquire()
	assert.ErrorIs(t, err, ErrNoImage)

	require.NoError(t, ws.Load(newTestBuffer(t, 5, 5)))
	snapshot, release, err := ws.Acquire()
	require.NoError(t, err)
	assert.True(t, ws.Busy())
	assert.True(t, snapshot.Equal(ws.Current()))
	assert.NotSame(t, snapshot, ws.Current())

	assert.ErrorIs(t, ws.ReplaceCurrent(newTestBuffer(t, 2, 2)), ErrBusy)
	assert.ErrorIs(t, ws.MutateCurrentInPlace(func(*imaging.Buffer) error { return nil }), ErrBusy)
	assert.ErrorIs(t, ws.Update(func(b *imaging.Buffer) (*imaging.Buffer, error) { return b, nil }), ErrBusy)
	assert.ErrorIs(t, ws.Reset(), ErrBusy)

	release()
	release()
	assert.False(t, ws.Busy(), "double release must not underflow the hold count")
	assert.NoError(t, ws.Reset())
}

func TestWorkspace_LoadAllowedWhileHeld(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Load(newTestBuffer(t, 5, 5)))
	snapshot, release, err := ws.Acquire()
	require.NoError(t, err)
	defer release()

	before := snapshot.Clone()
	require.NoError(t, ws.Load(newTestBuffer(t, 8, 8)))
	assert.True(t, before.Equal(snapshot), "snapshot must not follow later loads")
}

func TestWorkspace_ConcurrentAccess(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Load(newTestBuffer(t, 16, 16)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ws.MutateCurrentInPlace(func(b *imaging.Buffer) error { return imaging.Brighten(b, 1.01) })
		}()
		go func() {
			defer wg.Done()
			if _, release, err := ws.Acquire(); err == nil {
				release()
			}
		}()
	}
	wg.Wait()
	assert.False(t, ws.Busy())
}
