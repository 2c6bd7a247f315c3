package handler

import (
	"net/http"

	"helmetkiosk/internal/logger"
)

// StartCameraHandler handles POST /api/camera/start. It opens the camera and
// starts submitting frames.
func StartCameraHandler(kiosk Kiosk, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}

		if err := kiosk.StartCamera(r.Context()); err != nil {
			logger.Warning("Camera start rejected: %v", err)
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, kiosk.State())
	}
}

// StopCameraHandler handles POST /api/camera/stop.
func StopCameraHandler(kiosk Kiosk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}

		kiosk.StopCamera()
		writeJSON(w, http.StatusOK, kiosk.State())
	}
}
