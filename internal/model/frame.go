package model

import "time"

// Frame is one encoded camera frame. It lives only for a single submission.
type Frame struct {
	Data       []byte    `json:"-"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CapturedAt time.Time `json:"capturedAt"`
}
