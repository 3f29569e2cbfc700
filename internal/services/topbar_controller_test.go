package services

import (
	"context"
	"errors"
	"testing"
	"time"

	winerrors "classtop/internal/infrastructure/errors"
	"classtop/internal/platform"
	"classtop/internal/testutils"
	"classtop/internal/types"
)

var fullHD = types.Monitor{Name: "HDMI-1", PhysicalWidth: 1920, PhysicalHeight: 1080, ScaleFactor: 1}

func newController(windows ...*MockWindow) (*TopbarController, *MockRegistry) {
	registry := NewMockRegistry(windows...)
	return NewTopbarController(registry, testutils.SilentLogger{}), registry
}

func assertCalls(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func TestSetup_AppliesGeometry(t *testing.T) {
	topbar := NewMockWindow("topbar", true, fullHD)
	c, _ := newController(topbar)

	geom, err := c.Setup(context.Background(), "topbar", 48, types.UnitLogical)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if geom == nil {
		t.Fatal("Expected applied geometry")
	}

	if w, h := topbar.Size(); w != 1152 || h != 48 {
		t.Errorf("size = %dx%d, want 1152x48", w, h)
	}
	if x, y := topbar.Position(); x != 384 || y != 0 {
		t.Errorf("position = %d,%d, want 384,0", x, y)
	}
	assertCalls(t, topbar.Calls(), "monitors", "set_size", "set_position")
}

func TestResize_CentersWindow(t *testing.T) {
	topbar := NewMockWindow("topbar", true, fullHD)
	c, _ := newController(topbar)

	if _, err := c.Resize(context.Background(), "topbar", 800, 120, types.UnitPhysical); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}

	if w, h := topbar.Size(); w != 800 || h != 120 {
		t.Errorf("size = %dx%d, want 800x120", w, h)
	}
	if x, _ := topbar.Position(); x != 560 {
		t.Errorf("x = %d, want 560", x)
	}
}

func TestResize_WiderThanScreenIsNotClamped(t *testing.T) {
	topbar := NewMockWindow("topbar", true, fullHD)
	c, _ := newController(topbar)

	if _, err := c.Resize(context.Background(), "topbar", 2000, 40, types.UnitPhysical); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if x, _ := topbar.Position(); x != -40 {
		t.Errorf("x = %d, want -40", x)
	}
}

func TestSetupResize_WindowNotFound(t *testing.T) {
	other := NewMockWindow("main", true, fullHD)
	c, registry := newController(other)
	ctx := context.Background()

	_, err := c.Setup(ctx, "topbar", 48, types.UnitDefault)
	if !winerrors.IsWindowNotFound(err) {
		t.Errorf("Setup() error = %v, want WindowNotFound", err)
	}
	if err == nil || err.Error() != "Window not found" {
		t.Errorf("Expected caller-visible message %q, got %v", "Window not found", err)
	}

	_, err = c.Resize(ctx, "topbar", 800, 48, types.UnitDefault)
	if !winerrors.IsWindowNotFound(err) {
		t.Errorf("Resize() error = %v, want WindowNotFound", err)
	}

	if len(other.Calls()) != 0 {
		t.Errorf("Expected no calls on other windows, got %v", other.Calls())
	}
	assertCalls(t, registry.Lookups(), "topbar", "topbar")
}

func TestSetupResize_NoMonitorsIsNoop(t *testing.T) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		topbar := NewMockWindow("topbar", true)
		c, _ := newController(topbar)

		geom, err := c.Setup(ctx, "topbar", 48, types.UnitDefault)
		if err != nil || geom != nil {
			t.Fatalf("Setup() = %v, %v; want nil, nil", geom, err)
		}
		geom, err = c.Resize(ctx, "topbar", 800, 48, types.UnitDefault)
		if err != nil || geom != nil {
			t.Fatalf("Resize() = %v, %v; want nil, nil", geom, err)
		}
		assertCalls(t, topbar.Calls(), "monitors", "monitors")
	})

	t.Run("query failure", func(t *testing.T) {
		topbar := NewMockWindow("topbar", true, fullHD)
		topbar.SetMonitorError(errors.New("display server unavailable"))
		c, _ := newController(topbar)

		if _, err := c.Setup(ctx, "topbar", 48, types.UnitDefault); err != nil {
			t.Fatalf("Setup() error = %v, want nil", err)
		}
		assertCalls(t, topbar.Calls(), "monitors")
	})
}

func TestSetup_GeometryApplyErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("size failure", func(t *testing.T) {
		topbar := NewMockWindow("topbar", true, fullHD)
		topbar.SizeErr = errors.New("failed to resize: window is fixed-size")
		c, _ := newController(topbar)

		_, err := c.Setup(ctx, "topbar", 48, types.UnitDefault)
		if !winerrors.IsGeometryApply(err) {
			t.Fatalf("error = %v, want GeometryApply", err)
		}
		if err.Error() != "failed to resize: window is fixed-size" {
			t.Errorf("Expected backend message to pass through, got %q", err.Error())
		}
		assertCalls(t, topbar.Calls(), "monitors", "set_size")
	})

	t.Run("position failure keeps size", func(t *testing.T) {
		topbar := NewMockWindow("topbar", true, fullHD)
		topbar.PositionErr = errors.New("cannot move window")
		c, _ := newController(topbar)

		_, err := c.Resize(ctx, "topbar", 800, 48, types.UnitDefault)
		if !winerrors.IsGeometryApply(err) {
			t.Fatalf("error = %v, want GeometryApply", err)
		}
		if w, _ := topbar.Size(); w != 800 {
			t.Errorf("Expected size to remain applied, got width %d", w)
		}
	})
}

func TestUnitResolution(t *testing.T) {
	retina := types.Monitor{PhysicalWidth: 2880, ScaleFactor: 2}
	ctx := context.Background()

	tests := []struct {
		name      string
		opts      []ControllerOption
		preferred types.UnitMode
		request   types.UnitMode
		wantWidth int
	}{
		{"default is logical", nil, types.UnitDefault, types.UnitDefault, 864},
		{"backend preference", nil, types.UnitPhysical, types.UnitDefault, 1728},
		{"configured beats backend", []ControllerOption{WithUnitMode(types.UnitLogical)}, types.UnitPhysical, types.UnitDefault, 864},
		{"request beats configured", []ControllerOption{WithUnitMode(types.UnitLogical)}, types.UnitPhysical, types.UnitPhysical, 1728},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topbar := NewMockWindow("topbar", true, retina)
			topbar.SetPreferredUnit(tt.preferred)
			c := NewTopbarController(NewMockRegistry(topbar), testutils.SilentLogger{}, tt.opts...)

			geom, err := c.Setup(ctx, "topbar", 40, tt.request)
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if geom.Width != tt.wantWidth {
				t.Errorf("width = %d, want %d", geom.Width, tt.wantWidth)
			}
		})
	}
}

func TestMonitorSelectorOption(t *testing.T) {
	secondary := types.Monitor{Name: "DP-1", PhysicalWidth: 1280, ScaleFactor: 1}
	primary := types.Monitor{Name: "eDP-1", PhysicalWidth: 1920, ScaleFactor: 1, Primary: true}
	topbar := NewMockWindow("topbar", true, secondary, primary)

	c := NewTopbarController(NewMockRegistry(topbar), testutils.SilentLogger{}, WithMonitorSelector(platform.SelectPrimary))
	if _, err := c.Setup(context.Background(), "topbar", 48, types.UnitPhysical); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if w, _ := topbar.Size(); w != 1152 {
		t.Errorf("Expected primary monitor geometry, got width %d", w)
	}

	first := NewMockWindow("topbar", true, secondary, primary)
	c = NewTopbarController(NewMockRegistry(first), testutils.SilentLogger{}, WithMonitorSelector(nil))
	if _, err := c.Setup(context.Background(), "topbar", 48, types.UnitPhysical); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if w, _ := first.Size(); w != 768 {
		t.Errorf("Expected first monitor geometry, got width %d", w)
	}
}

func TestToggle_VisibleWindowHides(t *testing.T) {
	main := NewMockWindow("main", true)
	c, _ := newController(main)

	result, err := c.Toggle(context.Background(), "main")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if result.Visible {
		t.Error("Expected Visible=false after hiding")
	}
	if main.Visible() {
		t.Error("Expected window to be hidden")
	}
	assertCalls(t, main.Calls(), "is_visible", "hide")
}

func TestToggle_HiddenWindowShowsAndFocuses(t *testing.T) {
	main := NewMockWindow("main", false)
	c, _ := newController(main)

	result, err := c.Toggle(context.Background(), "main")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !result.Visible || !result.Focused {
		t.Errorf("result = %+v, want visible and focused", result)
	}
	if result.FocusErr != nil || result.FocusError != "" {
		t.Errorf("Expected no focus error, got %+v", result)
	}
	assertCalls(t, main.Calls(), "is_visible", "show", "focus")
}

func TestToggle_FocusFailureIsReportedSeparately(t *testing.T) {
	main := NewMockWindow("main", false)
	main.FocusErr = errors.New("focus stealing prevented")
	c, _ := newController(main)

	result, err := c.Toggle(context.Background(), "main")
	if err != nil {
		t.Fatalf("Toggle() error = %v, want nil", err)
	}
	if !result.Visible || result.Focused {
		t.Errorf("result = %+v, want visible but unfocused", result)
	}
	if !winerrors.IsFocus(result.FocusErr) {
		t.Errorf("FocusErr = %v, want FOCUS classification", result.FocusErr)
	}
	if result.FocusError != "focus stealing prevented" {
		t.Errorf("FocusError = %q", result.FocusError)
	}
	if !main.Visible() {
		t.Error("Expected show to remain applied")
	}
}

func TestToggle_FocusRetry(t *testing.T) {
	retry := &winerrors.RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        2 * time.Millisecond,
		BackoffFactor:   2,
		RetryableErrors: []winerrors.ErrorCode{winerrors.ErrCodeFocus},
	}

	tests := []struct {
		name        string
		failures    int
		wantFocused bool
		wantCalls   []string
	}{
		{"recovers on second attempt", 1, true, []string{"is_visible", "show", "focus", "focus"}},
		{"gives up after max attempts", 0, false, []string{"is_visible", "show", "focus", "focus", "focus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			main := NewMockWindow("main", false)
			main.FocusErr = errors.New("focus stealing prevented")
			main.FocusFailures = tt.failures

			c := NewTopbarController(NewMockRegistry(main), testutils.SilentLogger{}, WithFocusRetry(retry))
			result, err := c.Toggle(context.Background(), "main")
			if err != nil {
				t.Fatalf("Toggle() error = %v", err)
			}
			if result.Focused != tt.wantFocused {
				t.Errorf("Focused = %v, want %v", result.Focused, tt.wantFocused)
			}
			if !tt.wantFocused && result.FocusError != "focus stealing prevented" {
				t.Errorf("FocusError = %q", result.FocusError)
			}
			assertCalls(t, main.Calls(), tt.wantCalls...)
		})
	}
}

func TestToggle_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("not found performs no mutation", func(t *testing.T) {
		topbar := NewMockWindow("topbar", true)
		c, _ := newController(topbar)

		_, err := c.Toggle(ctx, "settings")
		if !winerrors.IsWindowNotFound(err) {
			t.Fatalf("error = %v, want WindowNotFound", err)
		}
		if len(topbar.Calls()) != 0 {
			t.Errorf("Expected no calls, got %v", topbar.Calls())
		}
	})

	t.Run("visibility read failure", func(t *testing.T) {
		w := NewMockWindow("main", true)
		w.VisibleErr = errors.New("bad window")
		c, _ := newController(w)

		if _, err := c.Toggle(ctx, "main"); !winerrors.IsVisibility(err) {
			t.Errorf("error = %v, want Visibility", err)
		}
	})

	t.Run("hide failure", func(t *testing.T) {
		w := NewMockWindow("main", true)
		w.HideErr = errors.New("cannot hide")
		c, _ := newController(w)

		_, err := c.Toggle(ctx, "main")
		if !winerrors.IsVisibility(err) || err.Error() != "cannot hide" {
			t.Errorf("error = %v, want Visibility passthrough", err)
		}
	})

	t.Run("show failure skips focus", func(t *testing.T) {
		w := NewMockWindow("main", false)
		w.ShowErr = errors.New("cannot show")
		c, _ := newController(w)

		if _, err := c.Toggle(ctx, "main"); !winerrors.IsVisibility(err) {
			t.Errorf("error = %v, want Visibility", err)
		}
		assertCalls(t, w.Calls(), "is_visible", "show")
	})
}

func TestMonitors(t *testing.T) {
	ctx := context.Background()
	topbar := NewMockWindow("topbar", true, fullHD)
	c, _ := newController(topbar)

	monitors, err := c.Monitors(ctx, "topbar")
	if err != nil || len(monitors) != 1 || monitors[0].Name != "HDMI-1" {
		t.Fatalf("Monitors() = %v, %v", monitors, err)
	}

	topbar.SetMonitorError(errors.New("no randr"))
	if _, err := c.Monitors(ctx, "topbar"); !winerrors.IsMonitorUnavailable(err) {
		t.Errorf("error = %v, want MonitorUnavailable", err)
	}

	if _, err := c.Monitors(ctx, "missing"); !winerrors.IsWindowNotFound(err) {
		t.Errorf("error = %v, want WindowNotFound", err)
	}
}

func TestNilRegistryReportsNotFound(t *testing.T) {
	c := NewTopbarController(nil, nil)
	if _, err := c.Toggle(context.Background(), "topbar"); !winerrors.IsWindowNotFound(err) {
		t.Errorf("error = %v, want WindowNotFound", err)
	}
}
