package route

import (
	"embed"
	"io/fs"
	"net/http"

	"helmetkiosk/internal/handler"
	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/middleware"
)

//go:embed static
var staticFiles embed.FS

// SetupRoutes registers the operator page, the kiosk API, the viewer
// websocket and the log endpoints.
func SetupRoutes(kiosk handler.Kiosk, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /{$}", http.FileServer(http.FS(static)))

	// Kiosk API
	mux.HandleFunc("/api/camera/start", handler.StartCameraHandler(kiosk, logger))
	mux.HandleFunc("/api/camera/stop", handler.StopCameraHandler(kiosk))
	mux.HandleFunc("/api/register", handler.RegisterHandler(kiosk, logger))
	mux.HandleFunc("/api/page", handler.ShowPageHandler(kiosk))
	mux.HandleFunc("GET /api/state", handler.StateHandler(kiosk))
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(kiosk, logger))

	// Log endpoints
	mux.HandleFunc("GET /logs/{level}", handler.ShowLogsHandler(logger))
	mux.HandleFunc("POST /logs/{level}/clear", handler.ClearLogsHandler(logger))

	return middleware.RequestLogging(logger, mux)
}
