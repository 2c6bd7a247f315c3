package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"helmetkiosk/internal/capture"
	"helmetkiosk/internal/config"
	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/media"
	"helmetkiosk/internal/media/webcam"
	"helmetkiosk/internal/route"
	"helmetkiosk/internal/service"
	"helmetkiosk/internal/service/websocket"
	"helmetkiosk/internal/submission"
	"helmetkiosk/internal/timeutil"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	capturer   *capture.Capturer
	hubService *websocket.HubService
	manager    *service.Manager
}

func NewApp(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	source := media.NewSource[*webcam.Camera](cfg.CameraDevice, webcam.Open, log)
	capturer := capture.NewCapturer(webcam.Feed{Source: source}, cfg.JPEGQuality, log)
	client := submission.NewClient(cfg.BackendURL, nil, log)
	hub := websocket.NewHubService(log)

	mng := service.NewManager(cfg, source, capturer, client, hub, timeutil.RealClock{}, log)

	return &App{
		config:     cfg,
		logger:     log,
		capturer:   capturer,
		hubService: hub,
		manager:    mng,
	}, nil
}

// Run serves the operator page and runs the background services until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: route.SetupRoutes(a.manager, a.logger),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hubService.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.manager.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.logger.Info("Helmet kiosk on http://localhost:%d, backend %s, camera %s",
			a.config.Port, a.config.BackendURL, a.config.CameraDevice)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	if cerr := a.capturer.Close(); cerr != nil {
		a.logger.Warning("Failed to release capture surface: %v", cerr)
	}
	a.logger.Info("Kiosk stopped")
	return err
}
