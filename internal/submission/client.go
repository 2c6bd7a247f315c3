// Package submission posts captured frames to the backend.
package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/model"
)

const (
	// ImageField is the multipart field carrying the encoded frame.
	ImageField = "image"

	imageFilename = "frame.jpg"
)

// ErrNetwork matches every *NetworkError via errors.Is.
var ErrNetwork = errors.New("network error")

// NetworkError is a transport failure talking to the backend.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// HTTPClient abstracts HTTP operations for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Field is an extra string field sent next to the image.
type Field struct {
	Name  string
	Value string
}

// Response is the backend's raw answer. The body is read fully so callers
// never have to close anything.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client talks to the backend. It imposes no timeout and never retries.
type Client struct {
	baseURL string
	http    HTTPClient
	logger  *logger.Logger
}

// NewClient creates a Client for the backend at baseURL. A nil httpClient
// selects an http.Client without timeout.
func NewClient(baseURL string, httpClient HTTPClient, logger *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}
}

// Submit posts frame under the "image" field, plus any extra fields, to
// endpoint. The response body is returned as-is; non-2xx is not an error here.
func (c *Client) Submit(ctx context.Context, endpoint string, frame *model.Frame, fields ...Field) (*Response, error) {
	body, contentType, err := encodeMultipart(frame, fields)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, endpoint)
}

// Get issues a GET against endpoint.
func (c *Client) Get(ctx context.Context, endpoint string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, endpoint)
}

func (c *Client) do(req *http.Request, endpoint string) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}

	c.logger.Debug("%s %s -> %d (%d bytes)", req.Method, endpoint, resp.StatusCode, len(data))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func encodeMultipart(frame *model.Frame, fields []Field) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, ImageField, imageFilename))
	header.Set("Content-Type", "image/jpeg")

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(frame.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write image part: %w", err)
	}

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
