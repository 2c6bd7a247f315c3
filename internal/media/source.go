// Package media owns the single camera session of the kiosk.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"helmetkiosk/internal/logger"
)

var (
	// ErrCameraUnavailable is returned when the camera cannot be acquired.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrNoSession is returned when the camera is used while no session is active.
	ErrNoSession = errors.New("no active camera session")
)

// Device is an acquired camera. Closing it releases the hardware.
type Device interface {
	io.Closer
}

// Opener acquires the camera identified by device.
type Opener[D Device] func(ctx context.Context, device string) (D, error)

// Session describes the active camera session.
type Session struct {
	ID        string
	Device    string
	StartedAt time.Time
}

// Source holds at most one active camera session. Start, Stop and With are
// serialized on one mutex so a second Start never acquires a second device.
type Source[D Device] struct {
	mu      sync.Mutex
	device  string
	open    Opener[D]
	current D
	session Session
	active  bool
	logger  *logger.Logger
}

// NewSource creates an inactive Source for the given device identifier.
func NewSource[D Device](device string, open Opener[D], logger *logger.Logger) *Source[D] {
	return &Source[D]{
		device: device,
		open:   open,
		logger: logger,
	}
}

// Start acquires the camera. It is a no-op when a session is already active.
func (s *Source[D]) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.logger.Debug("Camera session %s already active", s.session.ID)
		return nil
	}

	dev, err := s.open(ctx, s.device)
	if err != nil {
		s.logger.Error("Failed to open camera %s: %v", s.device, err)
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	s.current = dev
	s.session = Session{
		ID:        uuid.NewString(),
		Device:    s.device,
		StartedAt: time.Now(),
	}
	s.active = true

	s.logger.WithFields(logger.Fields{"session": s.session.ID}).Info("Camera %s started", s.device)
	return nil
}

// Stop releases the device and clears the session. It is a no-op when no
// session is active.
func (s *Source[D]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	if err := s.current.Close(); err != nil {
		s.logger.Warning("Error closing camera %s: %v", s.device, err)
	}

	var zero D
	s.current = zero
	s.active = false
	s.logger.WithFields(logger.Fields{"session": s.session.ID}).Info("Camera %s stopped", s.device)
	s.session = Session{}
}

// Active reports whether a session is active.
func (s *Source[D]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Session returns the active session, if any.
func (s *Source[D]) Session() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.active
}

// With runs fn against the active device while holding the session, so Stop
// waits for an in-progress read to finish.
func (s *Source[D]) With(fn func(D) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return ErrNoSession
	}
	return fn(s.current)
}
