package handler

import (
	"net/http"

	"helmetkiosk/internal/dto"
)

// ShowPageHandler handles POST /api/page?name=<page>.
func ShowPageHandler(kiosk Kiosk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}

		page, err := kiosk.ShowPage(r.URL.Query().Get("name"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dto.PagePayload{Page: string(page)})
	}
}

// StateHandler handles GET /api/state.
func StateHandler(kiosk Kiosk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, kiosk.State())
	}
}
