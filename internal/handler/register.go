package handler

import (
	"net/http"

	"helmetkiosk/internal/logger"
)

type registerResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RegisterHandler handles POST /api/register with form field "name".
func RegisterHandler(kiosk Kiosk, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}

		result, err := kiosk.Register(r.Context(), r.FormValue("name"))
		if err != nil {
			logger.Warning("Registration request failed: %v", err)
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, registerResponse{Name: result.Name, Message: result.Message})
	}
}
