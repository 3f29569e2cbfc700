package services

import (
	"context"
	"strconv"
	"time"

	"classtop/internal/infrastructure/errors"
	"classtop/internal/infrastructure/logging"
	"classtop/internal/platform"
	"classtop/internal/types"
)

// Operation names used in errors and logs
const (
	OpSetup    = "setup_topbar_window"
	OpResize   = "resize_topbar_window"
	OpToggle   = "toggle_window"
	OpMonitors = "list_monitors"
)

// TopbarController computes and applies window geometry and visibility.
// It holds no state between calls and does not serialize concurrent calls
// on the same window.
type TopbarController struct {
	registry      platform.WindowRegistry
	selectMonitor platform.MonitorSelector
	unitMode      types.UnitMode
	focusRetry    *errors.RetryConfig
	logger        logging.Logger
}

// ControllerOption customizes a TopbarController
type ControllerOption func(*TopbarController)

// WithMonitorSelector replaces the default first-monitor selection
func WithMonitorSelector(sel platform.MonitorSelector) ControllerOption {
	return func(c *TopbarController) {
		if sel != nil {
			c.selectMonitor = sel
		}
	}
}

// WithUnitMode fixes the unit used when a call does not request one
func WithUnitMode(mode types.UnitMode) ControllerOption {
	return func(c *TopbarController) {
		c.unitMode = mode
	}
}

// WithFocusRetry retries a refused focus request after show. A nil config
// keeps the single attempt.
func WithFocusRetry(cfg *errors.RetryConfig) ControllerOption {
	return func(c *TopbarController) {
		c.focusRetry = cfg
	}
}

// NewTopbarController creates a controller over the given window registry
func NewTopbarController(registry platform.WindowRegistry, logger logging.Logger, opts ...ControllerOption) *TopbarController {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	c := &TopbarController{
		registry:      registry,
		selectMonitor: platform.SelectFirst,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Setup sizes the window to 60% of the monitor width and places it 20% from
// the left at the top edge. It returns nil geometry when no monitor is
// available, leaving the window at its default geometry.
func (c *TopbarController) Setup(ctx context.Context, name string, height int, mode types.UnitMode) (*types.Geometry, error) {
	start := time.Now()

	handle, err := c.resolve(ctx, OpSetup, name)
	if err != nil {
		return nil, err
	}

	monitor, ok := c.monitorFor(ctx, OpSetup, handle)
	if !ok {
		return nil, nil
	}

	geom := SetupGeometry(monitor, height, c.unitFor(handle, mode))
	if err := c.apply(ctx, OpSetup, handle, geom); err != nil {
		return nil, err
	}

	logging.LogCommand(c.logger, OpSetup, time.Since(start), geometryFields(name, monitor, geom))
	return &geom, nil
}

// Resize applies an explicit size and centers the window horizontally at the
// top edge. Widths larger than the screen produce a negative x unclamped.
func (c *TopbarController) Resize(ctx context.Context, name string, width, height int, mode types.UnitMode) (*types.Geometry, error) {
	start := time.Now()

	handle, err := c.resolve(ctx, OpResize, name)
	if err != nil {
		return nil, err
	}

	monitor, ok := c.monitorFor(ctx, OpResize, handle)
	if !ok {
		return nil, nil
	}

	geom := ResizeGeometry(monitor, width, height, c.unitFor(handle, mode))
	if err := c.apply(ctx, OpResize, handle, geom); err != nil {
		return nil, err
	}

	logging.LogCommand(c.logger, OpResize, time.Since(start), geometryFields(name, monitor, geom))
	return &geom, nil
}

// Toggle hides a visible window, or shows and focuses a hidden one.
// Visible in the result is the negation of the state read on entry. A focus
// failure after a successful show is reported in the result, not as the
// error, so callers can tell "now visible but unfocused" from "nothing happened".
func (c *TopbarController) Toggle(ctx context.Context, name string) (types.ToggleResult, error) {
	handle, err := c.resolve(ctx, OpToggle, name)
	if err != nil {
		return types.ToggleResult{}, err
	}

	wasVisible, err := handle.IsVisible(ctx)
	if err != nil {
		return types.ToggleResult{}, errors.NewWindowErrorWithContext(OpToggle, name, err,
			errors.ErrCodeVisibility, map[string]string{"step": "is_visible"})
	}

	if wasVisible {
		if err := handle.Hide(ctx); err != nil {
			return types.ToggleResult{}, errors.NewWindowErrorWithContext(OpToggle, name, err,
				errors.ErrCodeVisibility, map[string]string{"step": "hide"})
		}
		c.logger.Debug("Window hidden", "window", name)
		return types.ToggleResult{Visible: false}, nil
	}

	if err := handle.Show(ctx); err != nil {
		return types.ToggleResult{}, errors.NewWindowErrorWithContext(OpToggle, name, err,
			errors.ErrCodeVisibility, map[string]string{"step": "show"})
	}

	result := types.ToggleResult{Visible: true, Focused: true}
	if err := c.focus(ctx, handle); err != nil {
		result.Focused = false
		result.FocusErr = err
		result.FocusError = err.Error()
		c.logger.Warn("Window shown but focus was refused", "window", name, "error", err.Error())
	}

	c.logger.Debug("Window shown", "window", name, "focused", result.Focused)
	return result, nil
}

// Monitors lists the monitors visible to the named window
func (c *TopbarController) Monitors(ctx context.Context, name string) ([]types.Monitor, error) {
	handle, err := c.resolve(ctx, OpMonitors, name)
	if err != nil {
		return nil, err
	}

	monitors, err := handle.Monitors(ctx)
	if err != nil {
		return nil, errors.NewWindowError(OpMonitors, name, err, errors.ErrCodeMonitorUnavailable)
	}
	return monitors, nil
}

// focus requests input focus, retrying when configured
func (c *TopbarController) focus(ctx context.Context, handle platform.WindowHandle) error {
	attempt := func() error {
		if err := handle.Focus(ctx); err != nil {
			return errors.NewWindowErrorWithContext(OpToggle, handle.Name(), err,
				errors.ErrCodeFocus, map[string]string{"step": "focus"})
		}
		return nil
	}
	if c.focusRetry == nil {
		return attempt()
	}
	return errors.WithRetry(ctx, c.focusRetry, attempt)
}

// resolve looks up the window; absence is terminal for the call
func (c *TopbarController) resolve(ctx context.Context, op, name string) (platform.WindowHandle, error) {
	if c.registry != nil {
		if handle, ok := c.registry.FindWindow(ctx, name); ok {
			return handle, nil
		}
	}
	return nil, errors.NewWindowNotFound(op, name)
}

// monitorFor selects the monitor for geometry computation. A failed or empty
// monitor query is not an error: the caller skips geometry and succeeds.
func (c *TopbarController) monitorFor(ctx context.Context, op string, handle platform.WindowHandle) (types.Monitor, bool) {
	monitors, err := handle.Monitors(ctx)
	if err != nil {
		c.logger.Warn("Monitor query unavailable, keeping default geometry",
			"command", op,
			"window", handle.Name(),
			"error_code", errors.ErrCodeMonitorUnavailable.String(),
			"error", err.Error())
		return types.Monitor{}, false
	}

	monitor, ok := c.selectMonitor(monitors)
	if !ok {
		c.logger.Warn("No monitors reported, keeping default geometry",
			"command", op,
			"window", handle.Name(),
			"error_code", errors.ErrCodeMonitorUnavailable.String())
	}
	return monitor, ok
}

// unitFor resolves the unit: explicit request, then configured, then the backend's preference
func (c *TopbarController) unitFor(handle platform.WindowHandle, mode types.UnitMode) types.UnitMode {
	if mode != types.UnitDefault {
		return mode
	}
	if c.unitMode != types.UnitDefault {
		return c.unitMode
	}
	if p, ok := handle.(platform.UnitPreferrer); ok {
		return p.PreferredUnit()
	}
	return types.UnitLogical
}

// apply sets size then position; a size change is not reverted when positioning fails
func (c *TopbarController) apply(ctx context.Context, op string, handle platform.WindowHandle, geom types.Geometry) error {
	if err := handle.SetSize(ctx, geom.Width, geom.Height); err != nil {
		return errors.NewWindowErrorWithContext(op, handle.Name(), err, errors.ErrCodeGeometryApply,
			map[string]string{
				"step":   "set_size",
				"width":  strconv.Itoa(geom.Width),
				"height": strconv.Itoa(geom.Height),
			})
	}

	if err := handle.SetPosition(ctx, geom.X, geom.Y); err != nil {
		return errors.NewWindowErrorWithContext(op, handle.Name(), err, errors.ErrCodeGeometryApply,
			map[string]string{
				"step": "set_position",
				"x":    strconv.Itoa(geom.X),
				"y":    strconv.Itoa(geom.Y),
			})
	}
	return nil
}

func geometryFields(name string, monitor types.Monitor, geom types.Geometry) map[string]interface{} {
	return map[string]interface{}{
		"window":  name,
		"monitor": monitor.Name,
		"unit":    string(geom.Unit),
		"x":       geom.X,
		"y":       geom.Y,
		"width":   geom.Width,
		"height":  geom.Height,
	}
}
