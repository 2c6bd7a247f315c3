// Package webcam adapts an OpenCV capture device to the media and capture
// packages.
package webcam

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"helmetkiosk/internal/media"
)

var errReadFailed = errors.New("camera returned no frame")

// Camera is an opened OpenCV video capture device.
type Camera struct {
	capture *gocv.VideoCapture
}

// Open acquires the device. Numeric identifiers select a local camera index;
// anything else is passed to OpenCV as a file or stream URL.
func Open(_ context.Context, device string) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open video capture: %w", err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video capture %s is not opened", device)
	}

	capture.Set(gocv.VideoCaptureBufferSize, 1)

	return &Camera{capture: capture}, nil
}

// Read grabs the latest frame into dst. OpenCV reallocates dst when the
// device resolution changes.
func (c *Camera) Read(dst *gocv.Mat) error {
	if ok := c.capture.Read(dst); !ok {
		return errReadFailed
	}
	return nil
}

// Close releases the device.
func (c *Camera) Close() error {
	return c.capture.Close()
}

// Feed reads frames from whichever camera session is currently active.
type Feed struct {
	Source *media.Source[*Camera]
}

// Read implements capture.Reader.
func (f Feed) Read(dst *gocv.Mat) error {
	return f.Source.With(func(c *Camera) error {
		return c.Read(dst)
	})
}
