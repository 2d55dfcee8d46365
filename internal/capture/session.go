package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scanpad/internal/imaging"
	"github.com/ironsheep/scanpad/internal/logging"
	"github.com/ironsheep/scanpad/internal/workspace"
)

// State is the phase of a capture session.
type State int

const (
	StateInactive State = iota
	StateRequesting
	StateLive
	StateDenied
	StateCaptured
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateRequesting:
		return "requesting"
	case StateLive:
		return "live"
	case StateDenied:
		return "denied"
	case StateCaptured:
		return "captured"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether the session has finished.
func (s State) Terminal() bool {
	return s == StateDenied || s == StateCaptured || s == StateCancelled
}

// ErrNotLive is returned by Preview and CaptureStill outside the Live state.
var ErrNotLive = errors.New("capture session is not live")

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("capture session already started")

// Target receives the captured frame.
type Target interface {
	Load(buf *imaging.Buffer) error
}

// Session is one scan: a device request, a live phase and a capture or
// cancel. Sessions are single use.
type Session struct {
	mu     sync.Mutex
	device Device
	target Target
	logger *logrus.Logger

	state    State
	stream   Stream
	released bool
}

// NewSession prepares a session that loads its frame into target.
func NewSession(device Device, target Target, logger *logrus.Logger) *Session {
	return &Session{
		device: device,
		target: target,
		logger: logging.OrDiscard(logger),
	}
}

// Start requests the device. On refusal the session ends in Denied and the
// returned error wraps workspace.ErrDeviceDenied. The target is never
// touched by Start.
//
// The session lock is not held while the device is being asked, so Cancel
// can end a pending request; a stream granted after that is stopped at
// once.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInactive {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	if s.device == nil {
		s.state = StateDenied
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", workspace.ErrDeviceDenied, ErrNoDevice)
	}
	s.state = StateRequesting
	s.mu.Unlock()

	stream, err := s.device.RequestStream(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.state == StateRequesting {
			s.state = StateDenied
		}
		s.logger.WithError(err).Warn("Capture device refused")
		return fmt.Errorf("%w: %w", workspace.ErrDeviceDenied, err)
	}

	s.stream = stream
	if s.state == StateCancelled {
		s.releaseLocked()
		return nil
	}

	s.state = StateLive
	w, h := stream.FrameSize()
	s.logger.WithFields(logrus.Fields{
		"width":  w,
		"height": h,
	}).Info("Capture stream live")
	return nil
}

// Preview grabs a live frame for display. The frame never enters the
// workspace.
func (s *Session) Preview() (*imaging.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLive {
		return nil, ErrNotLive
	}
	frame, err := s.stream.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read preview frame: %w", err)
	}
	return imaging.FromImage(frame)
}

// CaptureStill reads one frame, loads it into the target and releases the
// device. A failed read or load also releases the device and ends the
// session in Denied.
func (s *Session) CaptureStill() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLive {
		return ErrNotLive
	}
	defer s.releaseLocked()

	frame, err := s.stream.ReadFrame()
	if err != nil {
		s.state = StateDenied
		return fmt.Errorf("%w: read frame: %w", workspace.ErrDeviceDenied, err)
	}
	buf, err := imaging.FromImage(frame)
	if err != nil {
		s.state = StateDenied
		return fmt.Errorf("%w: %w", workspace.ErrDeviceDenied, err)
	}
	if err := s.target.Load(buf); err != nil {
		s.state = StateDenied
		return fmt.Errorf("load captured frame: %w", err)
	}

	s.state = StateCaptured
	s.logger.WithFields(logrus.Fields{
		"width":  buf.Width(),
		"height": buf.Height(),
	}).Info("Frame captured")
	return nil
}

// Cancel ends a requesting or live session and releases the device. It
// reports whether the session was active.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateRequesting, StateLive:
		s.state = StateCancelled
		s.releaseLocked()
		s.logger.Debug("Capture cancelled")
		return true
	}
	return false
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FrameSize returns the native frame size while a stream is open.
func (s *Session) FrameSize() (int, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil || s.released {
		return 0, 0, false
	}
	w, h := s.stream.FrameSize()
	return w, h, true
}

func (s *Session) releaseLocked() {
	if s.stream == nil || s.released {
		return
	}
	s.released = true
	if err := s.stream.Stop(); err != nil {
		s.logger.WithError(err).Warn("Stopping capture stream failed")
	}
}
