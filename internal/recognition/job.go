// Package recognition runs OCR over the workspace in the background.
//
// A Job is single-flight: while one pass is Running, further Start calls
// are no-ops. The pass works on a private snapshot of the current image
// and holds the workspace against writes until it settles.
package recognition

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/logging"
	"github.com/ironsheep/scanpad/internal/ocr"
	"github.com/ironsheep/scanpad/internal/workspace"
)

// Status is the phase of a Job.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for _, c := range []Status{StatusIdle, StatusRunning, StatusDone, StatusFailed} {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown recognition status: %q", text)
}

// Source hands out a snapshot of the image to recognize and holds it
// against writes until release is called. *workspace.Workspace is a Source.
type Source interface {
	Acquire() (snapshot *imaging.Buffer, release func(), err error)
}

// Outcome is delivered to the completion handler when a pass settles.
type Outcome struct {
	RunID  string
	Status Status
	Result *ocr.Result
	Err    error
}

// Snapshot is a point-in-time view of a Job.
type Snapshot struct {
	RunID    string  `json:"run_id,omitempty"`
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
	Percent  int     `json:"percent"`
	Text     string  `json:"text,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Option configures a Job.
type Option func(*Job)

// WithLanguage sets the recognition language.
func WithLanguage(language string) Option {
	return func(j *Job) { j.language = language }
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(j *Job) { j.logger = logging.OrDiscard(logger) }
}

// WithProgressListener registers fn to receive every progress increase.
// fn runs on the recognition goroutine.
func WithProgressListener(fn func(progress float64)) Option {
	return func(j *Job) { j.listeners = append(j.listeners, fn) }
}

// WithCompletionHandler registers fn to run once per pass when it settles.
// fn runs on the recognition goroutine after the workspace is released.
func WithCompletionHandler(fn func(Outcome)) Option {
	return func(j *Job) { j.onDone = append(j.onDone, fn) }
}

// Job drives OCR passes for one workspace.
type Job struct {
	engine    ocr.Engine
	language  string
	logger    *logrus.Logger
	listeners []func(float64)
	onDone    []func(Outcome)

	mu       sync.Mutex
	status   Status
	progress float64
	runID    string
	result   *ocr.Result
	err      error
	done     chan struct{}
}

// NewJob returns an idle job. engine may be nil, in which case Start
// always fails with workspace.ErrEngineUnavailable.
func NewJob(engine ocr.Engine, opts ...Option) *Job {
	j := &Job{
		engine:   engine,
		language: ocr.DefaultLanguage,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Start begins a recognition pass over a snapshot of src and returns
// immediately. It reports whether a new pass was started; false with a nil
// error means one is already running and nothing changed.
//
// With no engine it fails with workspace.ErrEngineUnavailable and no pass
// is created. With no image it fails with workspace.ErrNoImage.
func (j *Job) Start(ctx context.Context, src Source) (bool, error) {
	if j.engine == nil {
		return false, workspace.ErrEngineUnavailable
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status == StatusRunning {
		return false, nil
	}

	snapshot, release, err := src.Acquire()
	if err != nil {
		return false, err
	}

	j.status = StatusRunning
	j.progress = 0
	j.result = nil
	j.err = nil
	j.runID = uuid.NewString()
	j.done = make(chan struct{})

	j.logger.WithFields(logrus.Fields{
		"job_id": j.runID,
		"width":  snapshot.Width(),
		"height": snapshot.Height(),
	}).Info("Text recognition started")

	go j.run(ctx, j.runID, j.done, snapshot, release)
	return true, nil
}

func (j *Job) run(ctx context.Context, runID string, done chan struct{}, snapshot *imaging.Buffer, release func()) {
	result, err := j.engine.Recognize(ctx, snapshot.NRGBA(), j.language, j.progressFunc(runID))
	release()

	j.mu.Lock()
	outcome := Outcome{RunID: runID}
	if err != nil {
		j.status = StatusFailed
		j.err = fmt.Errorf("%w: %w", workspace.ErrEngineFailure, err)
		outcome.Err = j.err
		j.logger.WithField("job_id", runID).WithError(err).Warn("Text recognition failed")
	} else {
		if result == nil {
			result = &ocr.Result{}
		}
		j.status = StatusDone
		j.result = result
		if j.progress < 1 {
			j.progress = 1
		}
		outcome.Result = result
		j.logger.WithFields(logrus.Fields{
			"job_id": runID,
			"chars":  len(result.Text),
		}).Info("Text recognition finished")
	}
	outcome.Status = j.status
	j.mu.Unlock()

	for _, fn := range j.onDone {
		fn(outcome)
	}
	close(done)
}

// progressFunc keeps progress monotonic in [0,1]. Reports from phases
// other than recognition, from superseded runs or carrying NaN are
// dropped.
func (j *Job) progressFunc(runID string) ocr.ProgressFunc {
	return func(p ocr.Progress) {
		if p.Phase != ocr.PhaseRecognizing || math.IsNaN(p.Fraction) {
			return
		}
		f := math.Min(math.Max(p.Fraction, 0), 1)

		j.mu.Lock()
		if j.runID != runID || j.status != StatusRunning || f <= j.progress {
			j.mu.Unlock()
			return
		}
		j.progress = f
		j.mu.Unlock()

		j.logger.WithFields(logrus.Fields{
			"job_id":   runID,
			"phase":    p.Phase,
			"progress": f,
		}).Debug("Recognition progress")
		for _, fn := range j.listeners {
			fn(f)
		}
	}
}

// Wait blocks until the current pass settles and its completion handlers
// have run, or ctx ends. It returns nil
// immediately when no pass was ever started. The pass's own failure is
// reported by Err, not by Wait.
func (j *Job) Wait(ctx context.Context) error {
	j.mu.Lock()
	done := j.done
	j.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Progress returns the recognition progress in [0,1].
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// Text returns the recognized text once a pass is Done.
func (j *Job) Text() (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusDone {
		return "", false
	}
	return j.result.Text, true
}

// Result returns the full result of the last successful pass, or nil.
func (j *Job) Result() *ocr.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusDone {
		return nil
	}
	return j.result
}

// Err returns the failure of the last pass, wrapping
// workspace.ErrEngineFailure, or nil.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// RunID returns the id of the latest pass, or "" before the first.
func (j *Job) RunID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runID
}

// Available reports whether an engine is configured.
func (j *Job) Available() bool {
	return j.engine != nil
}

// Snapshot returns the job state in one consistent read.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := Snapshot{
		RunID:    j.runID,
		Status:   j.status,
		Progress: j.progress,
		Percent:  int(math.Round(j.progress * 100)),
	}
	if j.status == StatusDone {
		s.Text = j.result.Text
	}
	if j.err != nil {
		s.Error = j.err.Error()
	}
	return s
}
