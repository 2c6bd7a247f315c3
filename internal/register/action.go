// Package register associates one captured frame with a person's name.
package register

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/model"
	"helmetkiosk/internal/submission"
)

// RegisterEndpoint is the backend route for new faces.
const RegisterEndpoint = "/register"

const (
	// PromptEnterName is shown when the name is missing.
	PromptEnterName = "Enter name"
	// Confirmation is shown after the backend accepted the registration.
	Confirmation = "Registered!"
)

var (
	// ErrValidation is returned before any network call for invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrRegistrationRejected is returned when the backend answers non-2xx.
	ErrRegistrationRejected = errors.New("registration rejected")
)

// FrameSource produces one encoded frame.
type FrameSource interface {
	Capture(ctx context.Context) (*model.Frame, error)
}

// Submitter posts a frame with extra fields.
type Submitter interface {
	Submit(ctx context.Context, endpoint string, frame *model.Frame, fields ...submission.Field) (*submission.Response, error)
}

// Request is the user's input.
type Request struct {
	Name string `validate:"required"`
}

// Result is what the operator is told after a successful registration.
type Result struct {
	Name       string
	StatusCode int
	Message    string
}

// Action performs one registration per call. It keeps no record of
// registered users.
type Action struct {
	source   FrameSource
	client   Submitter
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAction(source FrameSource, client Submitter, logger *logger.Logger) *Action {
	return &Action{
		source:   source,
		client:   client,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register validates name, captures one frame and posts it with the name.
// Validation failures perform no capture and no network call.
func (a *Action) Register(ctx context.Context, name string) (*Result, error) {
	req := Request{Name: strings.TrimSpace(name)}
	if err := a.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, PromptEnterName)
	}

	frame, err := a.source.Capture(ctx)
	if err != nil {
		a.logger.Error("Registration capture for %q failed: %v", req.Name, err)
		return nil, fmt.Errorf("failed to capture frame: %w", err)
	}

	resp, err := a.client.Submit(ctx, RegisterEndpoint, frame, submission.Field{Name: "name", Value: req.Name})
	if err != nil {
		a.logger.Error("Registration of %q failed: %v", req.Name, err)
		return nil, err
	}

	if !resp.OK() {
		a.logger.Warning("Backend rejected registration of %q: %d %s", req.Name, resp.StatusCode, resp.Body)
		return nil, fmt.Errorf("%w: backend answered %d: %s", ErrRegistrationRejected, resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	a.logger.WithFields(logger.Fields{"name": req.Name}).Info("Registered face (%dx%d)", frame.Width, frame.Height)

	return &Result{
		Name:       req.Name,
		StatusCode: resp.StatusCode,
		Message:    Confirmation,
	}, nil
}
