package handler

import (
	"context"
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"helmetkiosk/internal/dto"
	"helmetkiosk/internal/media"
	"helmetkiosk/internal/register"
	"helmetkiosk/internal/service/websocket"
	"helmetkiosk/internal/submission"
	"helmetkiosk/internal/view"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kiosk is the operator-facing surface of service.Manager.
type Kiosk interface {
	StartCamera(ctx context.Context) error
	StopCamera()
	Register(ctx context.Context, name string) (*register.Result, error)
	ShowPage(name string) (view.Page, error)
	State() dto.KioskState
	Greeting() []byte
	GetWebsocketService() *websocket.HubService
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps the kiosk's sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, register.ErrValidation), errors.Is(err, view.ErrUnknownPage):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, media.ErrCameraUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, register.ErrRegistrationRejected), errors.Is(err, submission.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
