package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"helmetkiosk/internal/config"
	"helmetkiosk/internal/dto"
	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/loop"
	"helmetkiosk/internal/media"
	"helmetkiosk/internal/model"
	"helmetkiosk/internal/register"
	"helmetkiosk/internal/service/websocket"
	"helmetkiosk/internal/stats"
	"helmetkiosk/internal/timeutil"
	"helmetkiosk/internal/view"
)

// Camera is the media session the kiosk controls.
type Camera interface {
	Start(ctx context.Context) error
	Stop()
	Active() bool
	Session() (media.Session, bool)
}

// Backend is the detection backend as seen by the loop, the poller and
// registration.
type Backend interface {
	loop.Submitter
	stats.Fetcher
}

// Manager ties the camera session, the capture loop, the stats poller, the
// page router and registration together and publishes every change to
// connected viewers.
type Manager struct {
	camera           Camera
	loop             *loop.Loop
	poller           *stats.Poller
	router           *view.Router
	registration     *register.Action
	websocketService *websocket.HubService
	logger           *logger.Logger

	mu   sync.Mutex
	base context.Context
}

func NewManager(cfg *config.Config, camera Camera, frames loop.FrameSource, backend Backend,
	hub *websocket.HubService, clock timeutil.Clock, logger *logger.Logger) *Manager {
	m := &Manager{
		camera:           camera,
		router:           view.NewRouter(),
		registration:     register.NewAction(frames, backend, logger),
		websocketService: hub,
		logger:           logger,
		base:             context.Background(),
	}
	m.loop = loop.NewLoop(frames, backend, cfg.CaptureInterval, clock, m.SendToViewers, logger)
	m.poller = stats.NewPoller(backend, cfg.StatsInterval, clock, m.sendStats, logger)

	m.logger.Info("Manager ready - capture every %s, stats every %s", cfg.CaptureInterval, cfg.StatsInterval)
	return m
}

// Run polls stats until ctx is cancelled, then stops the camera. Loops
// started afterwards live as long as ctx.
func (m *Manager) Run(ctx context.Context) {
	m.mu.Lock()
	m.base = ctx
	m.mu.Unlock()

	m.poller.Run(ctx)

	m.StopCamera()
	m.loop.Wait()
}

func (m *Manager) lifetime() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.base
}

// StartCamera opens the camera and starts the capture loop. A failure to
// open the device aborts the start and raises an alert.
func (m *Manager) StartCamera(ctx context.Context) error {
	if err := m.camera.Start(ctx); err != nil {
		m.logger.Error("Failed to start camera: %v", err)
		m.alert(dto.AlertError, "Camera error: "+err.Error())
		m.sendCamera()
		return err
	}

	m.loop.Start(m.lifetime())
	m.sendCamera()
	return nil
}

// StopCamera stops the loop before releasing the device.
func (m *Manager) StopCamera() {
	m.loop.Stop()
	m.camera.Stop()
	m.sendCamera()
}

// Register submits one frame for name. The camera must be running.
func (m *Manager) Register(ctx context.Context, name string) (*register.Result, error) {
	if !m.camera.Active() {
		m.alert(dto.AlertError, "Start the camera before registering")
		return nil, media.ErrNoSession
	}

	result, err := m.registration.Register(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, register.ErrValidation):
			m.alert(dto.AlertError, register.PromptEnterName)
		default:
			m.alert(dto.AlertError, fmt.Sprintf("Registration failed: %v", err))
		}
		return nil, err
	}

	m.alert(dto.AlertInfo, result.Message)
	return result, nil
}

// ShowPage switches the visible page and tells viewers.
func (m *Manager) ShowPage(name string) (view.Page, error) {
	page, err := m.router.ShowPage(name)
	if err != nil {
		return "", err
	}
	m.publish(dto.EventPage, dto.PagePayload{Page: string(page)})
	return page, nil
}

// State returns everything a freshly connected viewer needs.
func (m *Manager) State() dto.KioskState {
	camera := m.cameraPayload()
	return dto.KioskState{
		Page:         string(m.router.Current()),
		CameraActive: camera.Active,
		SessionID:    camera.SessionID,
		Loop:         camera.Loop,
		Dashboard:    m.poller.Dashboard(),
	}
}

// Greeting is the encoded state event written to each new viewer.
func (m *Manager) Greeting() []byte {
	message, err := websocket.Encode(dto.EventState, m.State())
	if err != nil {
		m.logger.Error("Failed to encode state: %v", err)
		return nil
	}
	return message
}

// SendToViewers publishes a captured frame.
func (m *Manager) SendToViewers(frame *model.Frame) {
	m.publish(dto.EventFrame, dto.FramePayload{
		Image:  base64.StdEncoding.EncodeToString(frame.Data),
		Width:  frame.Width,
		Height: frame.Height,
	})
}

func (m *Manager) sendStats(snapshot dto.StatsSnapshot) {
	m.publish(dto.EventStats, snapshot.Render())
}

func (m *Manager) sendCamera() {
	m.publish(dto.EventCamera, m.cameraPayload())
}

func (m *Manager) cameraPayload() dto.CameraPayload {
	payload := dto.CameraPayload{
		Active: m.camera.Active(),
		Loop:   m.loop.State().String(),
	}
	if session, ok := m.camera.Session(); ok {
		payload.SessionID = session.ID
	}
	return payload
}

func (m *Manager) alert(level, message string) {
	m.publish(dto.EventAlert, dto.Alert{Level: level, Message: message})
}

func (m *Manager) publish(eventType string, data interface{}) {
	if m.websocketService == nil {
		return
	}
	_ = m.websocketService.Publish(eventType, data)
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}

// LoopState reports whether frames are being submitted.
func (m *Manager) LoopState() loop.State {
	return m.loop.State()
}

