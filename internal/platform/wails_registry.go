package platform

import (
	"context"
	"fmt"
	"sync"

	"classtop/internal/types"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// wailsCalls holds the Wails runtime entry points. Tests swap these out
// because the real functions abort the process without a Wails context.
type wailsCalls struct {
	screens     func(ctx context.Context) ([]runtime.Screen, error)
	setSize     func(ctx context.Context, width, height int)
	setPosition func(ctx context.Context, x, y int)
	show        func(ctx context.Context)
	hide        func(ctx context.Context)
	unminimise  func(ctx context.Context)
	minimised   func(ctx context.Context) bool
}

func defaultWailsCalls() wailsCalls {
	return wailsCalls{
		screens:     runtime.ScreenGetAll,
		setSize:     runtime.WindowSetSize,
		setPosition: runtime.WindowSetPosition,
		show:        runtime.WindowShow,
		hide:        runtime.WindowHide,
		unminimise:  runtime.WindowUnminimise,
		minimised:   runtime.WindowIsMinimised,
	}
}

// WailsRegistry exposes the single Wails application window under one logical name.
// The window is only resolvable between Attach and Detach.
type WailsRegistry struct {
	mu      sync.RWMutex
	ctx     context.Context
	name    string
	visible bool
	calls   wailsCalls
}

// NewWailsRegistry creates a registry for the Wails window registered as name
func NewWailsRegistry(name string, startVisible bool) *WailsRegistry {
	return &WailsRegistry{
		name:    name,
		visible: startVisible,
		calls:   defaultWailsCalls(),
	}
}

// Attach binds the registry to the Wails runtime context received at startup
func (r *WailsRegistry) Attach(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx = ctx
}

// Detach releases the runtime context at shutdown
func (r *WailsRegistry) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx = nil
}

// WindowName returns the logical name the Wails window answers to
func (r *WailsRegistry) WindowName() string {
	return r.name
}

// FindWindow resolves the Wails window when name matches and the runtime is attached
func (r *WailsRegistry) FindWindow(_ context.Context, name string) (WindowHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.ctx == nil || name != r.name {
		return nil, false
	}
	return &wailsWindow{registry: r}, true
}

func (r *WailsRegistry) runtimeContext() (context.Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ctx == nil {
		return nil, fmt.Errorf("wails runtime is not attached")
	}
	return r.ctx, nil
}

// HideWindow hides the Wails window and records it as hidden. The host's
// close button goes through here when closing should only hide.
func (r *WailsRegistry) HideWindow() error {
	rctx, err := r.runtimeContext()
	if err != nil {
		return err
	}
	r.calls.hide(rctx)
	r.setVisible(false)
	return nil
}

func (r *WailsRegistry) setVisible(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = v
}

// wailsWindow is a handle to the Wails application window.
// Wails setters take logical (device independent) pixels.
type wailsWindow struct {
	registry *WailsRegistry
}

func (w *wailsWindow) Name() string {
	return w.registry.name
}

func (w *wailsWindow) PreferredUnit() types.UnitMode {
	return types.UnitLogical
}

func (w *wailsWindow) Monitors(_ context.Context) ([]types.Monitor, error) {
	rctx, err := w.registry.runtimeContext()
	if err != nil {
		return nil, err
	}

	screens, err := w.registry.calls.screens(rctx)
	if err != nil {
		return nil, err
	}

	monitors := make([]types.Monitor, 0, len(screens))
	for i, s := range screens {
		monitors = append(monitors, monitorFromScreen(i, s))
	}
	return monitors, nil
}

// monitorFromScreen converts a Wails screen, deriving the scale factor from
// the ratio of physical to logical width
func monitorFromScreen(index int, s runtime.Screen) types.Monitor {
	logicalW, logicalH := s.Size.Width, s.Size.Height
	if logicalW == 0 {
		logicalW, logicalH = s.Width, s.Height
	}
	physicalW, physicalH := s.PhysicalSize.Width, s.PhysicalSize.Height
	if physicalW == 0 {
		physicalW, physicalH = logicalW, logicalH
	}

	scale := 1.0
	if logicalW > 0 {
		scale = float64(physicalW) / float64(logicalW)
	}

	return types.Monitor{
		Name:           fmt.Sprintf("screen-%d", index),
		PhysicalWidth:  physicalW,
		PhysicalHeight: physicalH,
		ScaleFactor:    scale,
		Primary:        s.IsPrimary,
	}
}

func (w *wailsWindow) SetSize(_ context.Context, width, height int) error {
	rctx, err := w.registry.runtimeContext()
	if err != nil {
		return err
	}
	w.registry.calls.setSize(rctx, width, height)
	return nil
}

func (w *wailsWindow) SetPosition(_ context.Context, x, y int) error {
	rctx, err := w.registry.runtimeContext()
	if err != nil {
		return err
	}
	w.registry.calls.setPosition(rctx, x, y)
	return nil
}

// IsVisible reports the tracked state; the Wails v2 runtime has no visibility
// query. A minimised window counts as hidden.
func (w *wailsWindow) IsVisible(_ context.Context) (bool, error) {
	rctx, err := w.registry.runtimeContext()
	if err != nil {
		return false, err
	}
	w.registry.mu.RLock()
	visible := w.registry.visible
	w.registry.mu.RUnlock()

	if visible && w.registry.calls.minimised(rctx) {
		return false, nil
	}
	return visible, nil
}

func (w *wailsWindow) Show(_ context.Context) error {
	rctx, err := w.registry.runtimeContext()
	if err != nil {
		return err
	}
	w.registry.calls.show(rctx)
	w.registry.setVisible(true)
	return nil
}

func (w *wailsWindow) Hide(_ context.Context) error {
	return w.registry.HideWindow()
}

func (w *wailsWindow) Focus(_ context.Context) error {
	rctx, err := w.registry.runtimeContext()
	if err != nil {
		return err
	}
	w.registry.calls.unminimise(rctx)
	w.registry.calls.show(rctx)
	w.registry.setVisible(true)
	return nil
}
