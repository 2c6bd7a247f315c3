package dto

// KioskState is the full operator-facing state pushed to new viewers and
// served by GET /api/state.
type KioskState struct {
	Page         string    `json:"page"`
	CameraActive bool      `json:"cameraActive"`
	SessionID    string    `json:"sessionId,omitempty"`
	Loop         string    `json:"loop"`
	Dashboard    Dashboard `json:"dashboard"`
}
