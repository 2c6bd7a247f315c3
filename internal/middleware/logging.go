package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"helmetkiosk/internal/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the viewer websocket upgrade through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestLogging logs every API request with its status and duration.
// Failed requests are logged as warnings.
func RequestLogging(logger *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := logger.WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": rec.status,
		})
		if rec.status >= http.StatusBadRequest {
			entry.Warning("Request failed in %s", time.Since(start))
			return
		}
		entry.Debug("Request served in %s", time.Since(start))
	})
}
