package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"classtop/internal/infrastructure/errors"
	"classtop/internal/infrastructure/logging"
	"classtop/internal/services"
	"classtop/internal/types"
)

// Command names accepted by Dispatch
const (
	CmdSetupTopbarWindow    = "setup_topbar_window"
	CmdResizeTopbarWindow   = "resize_topbar_window"
	CmdToggleWindow         = "toggle_window"
	CmdToggleWindowDetailed = "toggle_window_detailed"
	CmdGreet                = "greet"
	CmdListMonitors         = "list_monitors"
)

// Names lists every command in a stable order
func Names() []string {
	return []string{
		CmdSetupTopbarWindow,
		CmdResizeTopbarWindow,
		CmdToggleWindow,
		CmdToggleWindowDetailed,
		CmdGreet,
		CmdListMonitors,
	}
}

// Dispatcher executes a named command with JSON-encoded parameters
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, params json.RawMessage) (any, error)
}

// SetupParams is the payload of setup_topbar_window
type SetupParams struct {
	Height uint32 `json:"height"`
}

// ResizeParams is the payload of resize_topbar_window
type ResizeParams struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// WindowParams is the payload of the toggle commands and list_monitors
type WindowParams struct {
	WindowName string `json:"window_name"`
}

// GreetParams is the payload of greet
type GreetParams struct {
	Name string `json:"name"`
}

// Options configures a Router
type Options struct {
	// TopbarName is the window targeted by setup and resize
	TopbarName string
	// DefaultHeight replaces a zero setup height
	DefaultHeight uint32
	// FocusFailureFatal makes toggle_window fail when the shown window cannot be focused
	FocusFailureFatal bool
}

// Router maps command names onto the topbar controller
type Router struct {
	controller *services.TopbarController
	opts       Options
	logger     logging.Logger
}

// NewRouter creates a Router over controller
func NewRouter(controller *services.TopbarController, opts Options, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if opts.TopbarName == "" {
		opts.TopbarName = "topbar"
	}
	return &Router{
		controller: controller,
		opts:       opts,
		logger:     logger,
	}
}

// TopbarName returns the window setup and resize act on
func (r *Router) TopbarName() string {
	return r.opts.TopbarName
}

// Greet returns the greeting fixture string
func (r *Router) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Rust!", name)
}

// SetupTopbarWindow sizes and places the topbar. A zero height uses the configured default.
func (r *Router) SetupTopbarWindow(ctx context.Context, height uint32) error {
	if height == 0 {
		height = r.opts.DefaultHeight
	}
	_, err := r.controller.Setup(ctx, r.opts.TopbarName, int(height), types.UnitDefault)
	if err != nil {
		r.logFailure(err, CmdSetupTopbarWindow, map[string]interface{}{"height": height})
	}
	return err
}

// ResizeTopbarWindow applies an explicit size and recenters the topbar
func (r *Router) ResizeTopbarWindow(ctx context.Context, width, height uint32) error {
	_, err := r.controller.Resize(ctx, r.opts.TopbarName, int(width), int(height), types.UnitDefault)
	if err != nil {
		r.logFailure(err, CmdResizeTopbarWindow, map[string]interface{}{"width": width, "height": height})
	}
	return err
}

// ToggleWindow flips visibility and returns the new state
func (r *Router) ToggleWindow(ctx context.Context, windowName string) (bool, error) {
	result, err := r.ToggleWindowDetailed(ctx, windowName)
	if err != nil {
		return false, err
	}
	if result.FocusErr != nil && r.opts.FocusFailureFatal {
		r.logFailure(result.FocusErr, CmdToggleWindow, nil)
		return result.Visible, result.FocusErr
	}
	return result.Visible, nil
}

// ToggleWindowDetailed flips visibility and reports the focus outcome separately
func (r *Router) ToggleWindowDetailed(ctx context.Context, windowName string) (types.ToggleResult, error) {
	result, err := r.controller.Toggle(ctx, windowName)
	if err != nil {
		r.logFailure(err, CmdToggleWindow, nil)
	}
	return result, err
}

// ListMonitors reports the monitors seen by windowName, or by the topbar when empty
func (r *Router) ListMonitors(ctx context.Context, windowName string) ([]types.Monitor, error) {
	if windowName == "" {
		windowName = r.opts.TopbarName
	}
	monitors, err := r.controller.Monitors(ctx, windowName)
	if err != nil {
		r.logFailure(err, CmdListMonitors, nil)
		return nil, err
	}
	return monitors, nil
}

// Dispatch decodes params for the named command and runs it
func (r *Router) Dispatch(ctx context.Context, name string, params json.RawMessage) (any, error) {
	switch name {
	case CmdSetupTopbarWindow:
		var p SetupParams
		if err := decodeParams(name, params, &p); err != nil {
			return nil, err
		}
		return nil, r.SetupTopbarWindow(ctx, p.Height)

	case CmdResizeTopbarWindow:
		var p ResizeParams
		if err := decodeParams(name, params, &p); err != nil {
			return nil, err
		}
		return nil, r.ResizeTopbarWindow(ctx, p.Width, p.Height)

	case CmdToggleWindow:
		p, err := decodeWindowParams(name, params, true)
		if err != nil {
			return nil, err
		}
		visible, err := r.ToggleWindow(ctx, p.WindowName)
		if err != nil {
			return nil, err
		}
		return visible, nil

	case CmdToggleWindowDetailed:
		p, err := decodeWindowParams(name, params, true)
		if err != nil {
			return nil, err
		}
		result, err := r.ToggleWindowDetailed(ctx, p.WindowName)
		if err != nil {
			return nil, err
		}
		return result, nil

	case CmdGreet:
		var p GreetParams
		if err := decodeParams(name, params, &p); err != nil {
			return nil, err
		}
		return r.Greet(p.Name), nil

	case CmdListMonitors:
		p, err := decodeWindowParams(name, params, false)
		if err != nil {
			return nil, err
		}
		return r.ListMonitors(ctx, p.WindowName)

	default:
		err := errors.NewWindowError(name, "", fmt.Errorf("unknown command: %s", name), errors.ErrCodeUnknownCommand)
		r.logFailure(err, name, nil)
		return nil, err
	}
}

func (r *Router) logFailure(err error, command string, context map[string]interface{}) {
	logging.LogCommandError(r.logger, err, command, context)
}

// decodeParams accepts an absent or null payload as the zero value
func decodeParams(command string, params json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewWindowError(command, "", fmt.Errorf("invalid params for %s: %w", command, err), errors.ErrCodeInvalidArgument)
	}
	return nil
}

func decodeWindowParams(command string, params json.RawMessage, required bool) (WindowParams, error) {
	var p WindowParams
	if err := decodeParams(command, params, &p); err != nil {
		return p, err
	}
	p.WindowName = strings.TrimSpace(p.WindowName)
	if required && p.WindowName == "" {
		return p, errors.NewWindowError(command, "", fmt.Errorf("%s requires window_name", command), errors.ErrCodeInvalidArgument)
	}
	return p, nil
}
