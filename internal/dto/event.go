package dto

// Event types pushed to viewers over the websocket.
const (
	EventFrame  = "frame"
	EventStats  = "stats"
	EventPage   = "page"
	EventCamera = "camera"
	EventAlert  = "alert"
	EventState  = "state"
)

// Event is the envelope of every websocket message.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// FramePayload carries the latest captured frame as base64 JPEG.
type FramePayload struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PagePayload names the visible page.
type PagePayload struct {
	Page string `json:"page"`
}

// CameraPayload reports the camera session and capture loop state.
type CameraPayload struct {
	Active    bool   `json:"active"`
	SessionID string `json:"sessionId,omitempty"`
	Loop      string `json:"loop"`
}

// Alert levels.
const (
	AlertInfo  = "info"
	AlertError = "error"
)

// Alert is a one-shot message shown to the operator.
type Alert struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
