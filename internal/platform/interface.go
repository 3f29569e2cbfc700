package platform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"classtop/internal/types"
)

// ErrNativeUnsupported is returned when no native window backend exists for this OS
var ErrNativeUnsupported = errors.New("native window backend not supported on this platform")

// WindowHandle is an opaque reference to a window owned by the host
type WindowHandle interface {
	Name() string
	Monitors(ctx context.Context) ([]types.Monitor, error)
	SetSize(ctx context.Context, width, height int) error
	SetPosition(ctx context.Context, x, y int) error
	IsVisible(ctx context.Context) (bool, error)
	Show(ctx context.Context) error
	Hide(ctx context.Context) error
	Focus(ctx context.Context) error
}

// UnitPreferrer is implemented by handles whose setters expect a specific unit
type UnitPreferrer interface {
	PreferredUnit() types.UnitMode
}

// WindowRegistry resolves logical window names to handles
type WindowRegistry interface {
	FindWindow(ctx context.Context, name string) (WindowHandle, bool)
}

// NativeBackend is a WindowRegistry backed by the OS window system
type NativeBackend interface {
	WindowRegistry
	Backend() string
	Close() error
}

// NativeOptions configures the OS window backend
type NativeOptions struct {
	// Aliases maps logical names ("topbar", "main") to native window titles
	Aliases map[string]string
	// ScaleFactor is reported for monitors when the window system has no notion of one
	ScaleFactor float64
}

// titleFor returns the native title registered for a logical name
func (o NativeOptions) titleFor(name string) string {
	if title, ok := o.Aliases[name]; ok && title != "" {
		return title
	}
	return name
}

// MonitorSelector picks the monitor used for geometry computation
type MonitorSelector func(monitors []types.Monitor) (types.Monitor, bool)

// SelectFirst returns the first monitor in host-reported order
func SelectFirst(monitors []types.Monitor) (types.Monitor, bool) {
	if len(monitors) == 0 {
		return types.Monitor{}, false
	}
	return monitors[0], true
}

// SelectPrimary returns the first monitor flagged primary, else the first monitor
func SelectPrimary(monitors []types.Monitor) (types.Monitor, bool) {
	for _, m := range monitors {
		if m.Primary {
			return m, true
		}
	}
	return SelectFirst(monitors)
}

// SelectIndex returns the monitor at index, else the first monitor
func SelectIndex(index int) MonitorSelector {
	return func(monitors []types.Monitor) (types.Monitor, bool) {
		if index >= 0 && index < len(monitors) {
			return monitors[index], true
		}
		return SelectFirst(monitors)
	}
}

// ParseMonitorSelector accepts "first", "primary" or "index:N"
func ParseMonitorSelector(s string) (MonitorSelector, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	switch {
	case value == "" || value == "first":
		return SelectFirst, nil
	case value == "primary":
		return SelectPrimary, nil
	case strings.HasPrefix(value, "index:"):
		n, err := strconv.Atoi(strings.TrimPrefix(value, "index:"))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid monitor index in %q", s)
		}
		return SelectIndex(n), nil
	default:
		return nil, fmt.Errorf("unknown monitor selector %q (expected first, primary or index:N)", s)
	}
}
