package recognition

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/ocr"
	"github.com/ironsheep/scanpad/internal/workspace"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeEngine replays scripted progress reports and then waits for release
// before returning.
type fakeEngine struct {
	mu       sync.Mutex
	calls    int
	reports  []ocr.Progress
	text     string
	err      error
	release  chan struct{}
	started  chan struct{}
	language string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		release: make(chan struct{}),
		started: make(chan struct{}, 8),
	}
}

func (e *fakeEngine) Recognize(ctx context.Context, img image.Image, language string, onProgress ocr.ProgressFunc) (*ocr.Result, error) {
	e.mu.Lock()
	e.calls++
	e.language = language
	reports := e.reports
	e.mu.Unlock()

	e.started <- struct{}{}
	for _, p := range reports {
		onProgress(p)
	}
	<-e.release
	if e.err != nil {
		return nil, e.err
	}
	return &ocr.Result{Text: e.text}, nil
}

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func loadedWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws := workspace.New()
	buf, err := imaging.NewBuffer(8, 8)
	require.NoError(t, err)
	require.NoError(t, ws.Load(buf))
	return ws
}

func waitSettled(t *testing.T, j *Job) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	require.NoError(t, j.Wait(ctx))
}

func TestJob_NoEngine(t *testing.T) {
	j := NewJob(nil)
	started, err := j.Start(context.Background(), loadedWorkspace(t))
	assert.ErrorIs(t, err, workspace.ErrEngineUnavailable)
	assert.False(t, started)
	assert.Equal(t, StatusIdle, j.Status())
	assert.Empty(t, j.RunID(), "no job is created")
	assert.False(t, j.Available())
}

func TestJob_NoImage(t *testing.T) {
	j := NewJob(newFakeEngine())
	_, err := j.Start(context.Background(), workspace.New())
	assert.ErrorIs(t, err, workspace.ErrNoImage)
	assert.Equal(t, StatusIdle, j.Status())
}

func TestJob_Completes(t *testing.T) {
	engine := newFakeEngine()
	engine.text = "hello"
	ws := loadedWorkspace(t)

	var outcomes []Outcome
	j := NewJob(engine, WithLanguage("deu"), WithCompletionHandler(func(o Outcome) {
		outcomes = append(outcomes, o)
	}))

	started, err := j.Start(context.Background(), ws)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, StatusRunning, j.Status())
	assert.True(t, ws.Busy(), "workspace is held while running")

	_, ok := j.Text()
	assert.False(t, ok)

	close(engine.release)
	waitSettled(t, j)

	assert.Equal(t, StatusDone, j.Status())
	assert.Equal(t, 1.0, j.Progress())
	text, ok := j.Text()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)
	assert.NoError(t, j.Err())
	assert.False(t, ws.Busy())
	assert.Equal(t, "deu", engine.language)

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusDone, outcomes[0].Status)
	assert.Equal(t, "hello", outcomes[0].Result.Text)
	assert.Equal(t, j.RunID(), outcomes[0].RunID)
}

func TestJob_Failure(t *testing.T) {
	engine := newFakeEngine()
	engine.err = errors.New("bad scan")
	ws := loadedWorkspace(t)

	var outcome Outcome
	j := NewJob(engine, WithCompletionHandler(func(o Outcome) { outcome = o }))
	_, err := j.Start(context.Background(), ws)
	require.NoError(t, err)

	close(engine.release)
	waitSettled(t, j)

	assert.Equal(t, StatusFailed, j.Status())
	assert.ErrorIs(t, j.Err(), workspace.ErrEngineFailure)
	assert.Nil(t, j.Result())
	_, ok := j.Text()
	assert.False(t, ok)
	assert.False(t, ws.Busy())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Nil(t, outcome.Result, "no artifact material on failure")
	assert.ErrorIs(t, outcome.Err, workspace.ErrEngineFailure)
	assert.Equal(t, "failed", j.Snapshot().Status.String())
	assert.NotEmpty(t, j.Snapshot().Error)
}

func TestJob_SingleFlight(t *testing.T) {
	engine := newFakeEngine()
	engine.reports = []ocr.Progress{{Phase: ocr.PhaseRecognizing, Fraction: 0.4}}
	ws := loadedWorkspace(t)
	j := NewJob(engine)

	_, err := j.Start(context.Background(), ws)
	require.NoError(t, err)
	<-engine.started
	require.Eventually(t, func() bool { return j.Progress() == 0.4 }, timeout, tick)
	id := j.RunID()

	started, err := j.Start(context.Background(), ws)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 0.4, j.Progress(), "a second start must not reset progress")
	assert.Equal(t, id, j.RunID())

	close(engine.release)
	waitSettled(t, j)
	assert.Equal(t, 1, engine.callCount())
}

func TestJob_RestartAfterDone(t *testing.T) {
	engine := newFakeEngine()
	close(engine.release)
	ws := loadedWorkspace(t)
	j := NewJob(engine)

	_, err := j.Start(context.Background(), ws)
	require.NoError(t, err)
	waitSettled(t, j)
	first := j.RunID()

	started, err := j.Start(context.Background(), ws)
	require.NoError(t, err)
	assert.True(t, started)
	waitSettled(t, j)
	assert.NotEqual(t, first, j.RunID())
	assert.Equal(t, 2, engine.callCount())
}

func TestJob_ProgressMonotonicAndFiltered(t *testing.T) {
	engine := newFakeEngine()
	engine.reports = []ocr.Progress{
		{Phase: ocr.PhaseInitializing, Fraction: 0.9},
		{Phase: ocr.PhaseRecognizing, Fraction: 0.2},
		{Phase: ocr.PhaseLoadingLanguage, Fraction: 1},
		{Phase: ocr.PhaseRecognizing, Fraction: 0.5},
		{Phase: ocr.PhaseRecognizing, Fraction: 0.3},
		{Phase: ocr.PhaseRecognizing, Fraction: -1},
		{Phase: ocr.PhaseRecognizing, Fraction: 7},
	}

	var mu sync.Mutex
	var seen []float64
	j := NewJob(engine, WithProgressListener(func(p float64) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}))

	_, err := j.Start(context.Background(), loadedWorkspace(t))
	require.NoError(t, err)
	<-engine.started
	require.Eventually(t, func() bool { return j.Progress() == 1 }, timeout, tick)
	assert.Equal(t, StatusRunning, j.Status())

	close(engine.release)
	waitSettled(t, j)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{0.2, 0.5, 1}, seen)
}

func TestJob_WorkspaceWritesRejectedWhileRunning(t *testing.T) {
	engine := newFakeEngine()
	ws := loadedWorkspace(t)
	before := ws.Current()
	j := NewJob(engine)

	_, err := j.Start(context.Background(), ws)
	require.NoError(t, err)

	err = ws.Update(func(b *imaging.Buffer) (*imaging.Buffer, error) { return imaging.Rotate90(b), nil })
	assert.ErrorIs(t, err, workspace.ErrBusy)
	assert.Same(t, before, ws.Current())

	close(engine.release)
	waitSettled(t, j)
	assert.NoError(t, ws.Reset())
}

func TestJob_WaitWithoutStart(t *testing.T) {
	j := NewJob(newFakeEngine())
	assert.NoError(t, j.Wait(context.Background()))
}

func TestJob_WaitHonoursContext(t *testing.T) {
	engine := newFakeEngine()
	j := NewJob(engine)
	_, err := j.Start(context.Background(), loadedWorkspace(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, j.Wait(ctx), context.Canceled)

	close(engine.release)
	waitSettled(t, j)
}

func TestJob_SnapshotPercent(t *testing.T) {
	engine := newFakeEngine()
	engine.reports = []ocr.Progress{{Phase: ocr.PhaseRecognizing, Fraction: 0.426}}
	j := NewJob(engine)
	_, err := j.Start(context.Background(), loadedWorkspace(t))
	require.NoError(t, err)
	<-engine.started
	require.Eventually(t, func() bool { return j.Progress() > 0 }, timeout, tick)

	s := j.Snapshot()
	assert.Equal(t, StatusRunning, s.Status)
	assert.Equal(t, 43, s.Percent)
	assert.Empty(t, s.Text)

	close(engine.release)
	waitSettled(t, j)
	assert.Equal(t, 100, j.Snapshot().Percent)
}
