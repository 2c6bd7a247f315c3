// Package capture turns the current camera frame into a JPEG.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/model"
)

// ErrEncodingFailed means the frame could not be turned into image data.
// The attempt is over; callers do not retry inline.
var ErrEncodingFailed = errors.New("frame encoding failed")

// Reader fills dst with the current frame.
type Reader interface {
	Read(dst *gocv.Mat) error
}

// Capturer draws frames onto one shared surface and encodes them as JPEG at
// a fixed quality.
type Capturer struct {
	mu      sync.Mutex
	reader  Reader
	surface gocv.Mat
	quality int
	logger  *logger.Logger
}

// NewCapturer creates a Capturer. Close must be called to release the surface.
func NewCapturer(reader Reader, quality int, logger *logger.Logger) *Capturer {
	return &Capturer{
		reader:  reader,
		surface: gocv.NewMat(),
		quality: quality,
		logger:  logger,
	}
}

// Capture reads and encodes one frame. Width and height are the source's
// dimensions at the time of the read.
func (c *Capturer) Capture(ctx context.Context) (*model.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.reader.Read(&c.surface); err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}

	if c.surface.Empty() {
		return nil, fmt.Errorf("%w: empty frame", ErrEncodingFailed)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.surface, []int{int(gocv.IMWriteJpegQuality), c.quality})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	defer buf.Close()

	encoded := buf.GetBytes()
	if len(encoded) == 0 {
		return nil, fmt.Errorf("%w: encoder produced no data", ErrEncodingFailed)
	}

	data := make([]byte, len(encoded))
	copy(data, encoded)

	c.logger.Debug("Captured %dx%d frame (%d bytes)", c.surface.Cols(), c.surface.Rows(), len(data))

	return &model.Frame{
		Data:       data,
		Width:      c.surface.Cols(),
		Height:     c.surface.Rows(),
		CapturedAt: time.Now(),
	}, nil
}

// Close releases the shared surface.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.Close()
}
