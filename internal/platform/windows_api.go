//go:build windows

package platform

import (
	"context"
	"fmt"
	"unsafe"

	"classtop/internal/types"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW         = user32.NewProc("FindWindowW")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procShowWindow          = user32.NewProc("ShowWindow")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procGetSystemMetrics    = user32.NewProc("GetSystemMetrics")
	procGetDpiForSystem     = user32.NewProc("GetDpiForSystem")
)

const (
	swHide = 0
	swShow = 5

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010

	smCxScreen = 0
	smCyScreen = 1

	defaultDPI = 96
)

// WindowsAPI resolves top-level windows by title through user32
type WindowsAPI struct {
	opts NativeOptions
}

// NewNativeRegistry creates the Win32 window registry
func NewNativeRegistry(opts NativeOptions) (NativeBackend, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("failed to load user32.dll: %w", err)
	}
	return &WindowsAPI{opts: opts}, nil
}

// Backend names the window system
func (w *WindowsAPI) Backend() string {
	return "win32"
}

// Close releases nothing; lazy DLL handles live for the process
func (w *WindowsAPI) Close() error {
	return nil
}

// FindWindow looks up a top-level window by its exact title
func (w *WindowsAPI) FindWindow(_ context.Context, name string) (WindowHandle, bool) {
	titlePtr, err := windows.UTF16PtrFromString(w.opts.titleFor(name))
	if err != nil {
		return nil, false
	}

	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 {
		return nil, false
	}
	return &win32Window{hwnd: hwnd, name: name}, true
}

// win32Window is a handle to a top-level HWND; setters take physical pixels
type win32Window struct {
	hwnd uintptr
	name string
}

func (w *win32Window) Name() string {
	return w.name
}

func (w *win32Window) PreferredUnit() types.UnitMode {
	return types.UnitPhysical
}

// Monitors reports the primary display only
func (w *win32Window) Monitors(_ context.Context) ([]types.Monitor, error) {
	cx, _, _ := procGetSystemMetrics.Call(smCxScreen)
	cy, _, _ := procGetSystemMetrics.Call(smCyScreen)
	if cx == 0 || cy == 0 {
		return nil, nil
	}

	dpi := uintptr(defaultDPI)
	if procGetDpiForSystem.Find() == nil {
		if d, _, _ := procGetDpiForSystem.Call(); d != 0 {
			dpi = d
		}
	}

	return []types.Monitor{{
		Name:           "primary",
		PhysicalWidth:  int(cx),
		PhysicalHeight: int(cy),
		ScaleFactor:    float64(dpi) / defaultDPI,
		Primary:        true,
	}}, nil
}

func (w *win32Window) setWindowPos(x, y, cx, cy int, flags uintptr) error {
	ret, _, callErr := procSetWindowPos.Call(
		w.hwnd,
		0,
		uintptr(x), uintptr(y),
		uintptr(cx), uintptr(cy),
		flags|swpNoZOrder|swpNoActivate,
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos failed: %w", callErr)
	}
	return nil
}

func (w *win32Window) SetSize(_ context.Context, width, height int) error {
	return w.setWindowPos(0, 0, width, height, swpNoMove)
}

func (w *win32Window) SetPosition(_ context.Context, x, y int) error {
	return w.setWindowPos(x, y, 0, 0, swpNoSize)
}

func (w *win32Window) IsVisible(_ context.Context) (bool, error) {
	ret, _, _ := procIsWindowVisible.Call(w.hwnd)
	return ret != 0, nil
}

// ShowWindow returns the previous visibility, not success, so its result is ignored
func (w *win32Window) Show(_ context.Context) error {
	procShowWindow.Call(w.hwnd, swShow)
	return nil
}

func (w *win32Window) Hide(_ context.Context) error {
	procShowWindow.Call(w.hwnd, swHide)
	return nil
}

func (w *win32Window) Focus(_ context.Context) error {
	ret, _, _ := procSetForegroundWindow.Call(w.hwnd)
	if ret == 0 {
		return fmt.Errorf("SetForegroundWindow refused for window %q", w.name)
	}
	return nil
}
