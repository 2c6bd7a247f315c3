// Package loop drives periodic detection submissions while the camera runs.
package loop

import (
	"context"
	"sync"
	"time"

	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/model"
	"helmetkiosk/internal/submission"
	"helmetkiosk/internal/task"
	"helmetkiosk/internal/timeutil"
)

// DetectEndpoint is the backend route receiving periodic frames.
const DetectEndpoint = "/detect"

// State of the capture loop.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// FrameSource produces one encoded frame per call.
type FrameSource interface {
	Capture(ctx context.Context) (*model.Frame, error)
}

// Submitter posts a frame to a backend endpoint.
type Submitter interface {
	Submit(ctx context.Context, endpoint string, frame *model.Frame, fields ...submission.Field) (*submission.Response, error)
}

// FrameListener is told about every frame that was captured.
type FrameListener func(frame *model.Frame)

// Loop captures and submits one frame per iteration, pausing a fixed delay
// after each iteration settles. Stop takes effect before the next iteration;
// an iteration already in flight is allowed to finish.
type Loop struct {
	mu       sync.Mutex
	state    State
	token    *task.Token
	done     chan struct{}
	interval time.Duration
	clock    timeutil.Clock
	source   FrameSource
	client   Submitter
	onFrame  FrameListener
	logger   *logger.Logger
}

// NewLoop creates a stopped Loop. onFrame may be nil.
func NewLoop(source FrameSource, client Submitter, interval time.Duration, clock timeutil.Clock, onFrame FrameListener, logger *logger.Logger) *Loop {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Loop{
		state:    Stopped,
		interval: interval,
		clock:    clock,
		source:   source,
		client:   client,
		onFrame:  onFrame,
		logger:   logger,
	}
}

// Start moves Stopped to Running and begins iterating. It reports false when
// the loop was already running. ctx bounds the loop's whole lifetime.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Running {
		return false
	}

	token := task.NewToken()
	done := make(chan struct{})
	previous := l.done

	l.state = Running
	l.token = token
	l.done = done

	repeater := &task.Repeater{
		Interval: l.interval,
		Mode:     task.FixedDelay,
		Clock:    l.clock,
		Fn: func(ctx context.Context, started func()) {
			_ = l.step(ctx, started)
		},
	}

	go func() {
		defer close(done)
		// a previous run may still be finishing its last submission
		if previous != nil {
			select {
			case <-previous:
			case <-ctx.Done():
				return
			}
		}
		repeater.Run(ctx, token)
	}()

	l.logger.Info("Capture loop started (every %s)", l.interval)
	return true
}

// Stop moves Running to Stopped. No iteration begins after Stop returns.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Stopped {
		return
	}

	l.token.Cancel()
	l.state = Stopped
	l.logger.Info("Capture loop stopped")
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Wait blocks until the goroutine of the last Start has exited.
func (l *Loop) Wait() {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Step runs exactly one iteration: capture, then submit to /detect. Errors
// are logged and returned but never stop the loop.
func (l *Loop) Step(ctx context.Context) error {
	return l.step(ctx, func() {})
}

// step releases started once the capture is over. A Stop racing the capture
// waits for it; the submission is in flight and is never waited for.
func (l *Loop) step(ctx context.Context, started func()) error {
	frame, err := l.source.Capture(ctx)
	started()
	if err != nil {
		l.logger.Warning("Capture failed, skipping iteration: %v", err)
		return err
	}

	if l.onFrame != nil {
		l.onFrame(frame)
	}

	resp, err := l.client.Submit(ctx, DetectEndpoint, frame)
	if err != nil {
		l.logger.Warning("Detection submission failed: %v", err)
		return err
	}

	if !resp.OK() {
		l.logger.Warning("Detection endpoint answered %d", resp.StatusCode)
	}
	return nil
}
