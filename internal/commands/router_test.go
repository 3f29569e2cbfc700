package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	winerrors "classtop/internal/infrastructure/errors"
	"classtop/internal/services"
	"classtop/internal/testutils"
	"classtop/internal/types"
)

var fullHD = types.Monitor{Name: "HDMI-1", PhysicalWidth: 1920, PhysicalHeight: 1080, ScaleFactor: 1}

func newRouter(fatal bool, windows ...*services.MockWindow) *Router {
	controller := services.NewTopbarController(services.NewMockRegistry(windows...), testutils.SilentLogger{})
	return NewRouter(controller, Options{
		TopbarName:        "topbar",
		DefaultHeight:     48,
		FocusFailureFatal: fatal,
	}, testutils.SilentLogger{})
}

func TestGreet(t *testing.T) {
	r := newRouter(true)

	got, err := r.Dispatch(context.Background(), CmdGreet, json.RawMessage(`{"name":"Ada"}`))
	if err != nil {
		t.Fatalf("Dispatch(greet) error = %v", err)
	}
	if got != "Hello, Ada! You've been greeted from Rust!" {
		t.Errorf("greet = %q", got)
	}
	if r.Greet("") != "Hello, ! You've been greeted from Rust!" {
		t.Errorf("empty greet = %q", r.Greet(""))
	}
}

func TestSetupTopbarWindow_ZeroHeightUsesDefault(t *testing.T) {
	topbar := services.NewMockWindow("topbar", true, fullHD)
	r := newRouter(true, topbar)

	if _, err := r.Dispatch(context.Background(), CmdSetupTopbarWindow, nil); err != nil {
		t.Fatalf("Dispatch(setup) error = %v", err)
	}
	if w, h := topbar.Size(); w != 1152 || h != 48 {
		t.Errorf("size = %dx%d, want 1152x48", w, h)
	}

	if _, err := r.Dispatch(context.Background(), CmdSetupTopbarWindow, json.RawMessage(`{"height":60}`)); err != nil {
		t.Fatalf("Dispatch(setup) error = %v", err)
	}
	if _, h := topbar.Size(); h != 60 {
		t.Errorf("height = %d, want 60", h)
	}
}

func TestResizeTopbarWindow(t *testing.T) {
	topbar := services.NewMockWindow("topbar", true, fullHD)
	r := newRouter(true, topbar)

	_, err := r.Dispatch(context.Background(), CmdResizeTopbarWindow, json.RawMessage(`{"width":800,"height":60}`))
	if err != nil {
		t.Fatalf("Dispatch(resize) error = %v", err)
	}
	if x, y := topbar.Position(); x != 560 || y != 0 {
		t.Errorf("position = %d,%d, want 560,0", x, y)
	}
}

func TestSetup_MissingTopbar(t *testing.T) {
	r := newRouter(true)

	err := r.SetupTopbarWindow(context.Background(), 48)
	if !winerrors.IsWindowNotFound(err) {
		t.Fatalf("Expected window not found, got %v", err)
	}
	if err.Error() != "Window not found" {
		t.Errorf("error string = %q", err.Error())
	}
}

func TestToggleWindow(t *testing.T) {
	main := services.NewMockWindow("main", true, fullHD)
	r := newRouter(true, main)
	ctx := context.Background()

	got, err := r.Dispatch(ctx, CmdToggleWindow, json.RawMessage(`{"window_name":"main"}`))
	if err != nil {
		t.Fatalf("first toggle error = %v", err)
	}
	if got != false || main.Visible() {
		t.Errorf("Expected hidden after first toggle, got %v", got)
	}

	got, err = r.Dispatch(ctx, CmdToggleWindow, json.RawMessage(`{"window_name":"main"}`))
	if err != nil {
		t.Fatalf("second toggle error = %v", err)
	}
	if got != true || !main.Visible() {
		t.Errorf("Expected visible after second toggle, got %v", got)
	}
}

func TestToggleWindow_FocusPolicy(t *testing.T) {
	focusErr := errors.New("focus refused")

	tests := []struct {
		name    string
		fatal   bool
		wantErr bool
	}{
		{"fatal policy surfaces focus failure", true, true},
		{"lenient policy reports success", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := services.NewMockWindow("main", false, fullHD)
			w.FocusErr = focusErr
			r := newRouter(tt.fatal, w)

			visible, err := r.ToggleWindow(context.Background(), "main")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToggleWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !winerrors.IsFocus(err) || err.Error() != "focus refused" {
					t.Errorf("Expected focus error with toolkit text, got %v", err)
				}
			}
			if !visible || !w.Visible() {
				t.Error("Expected window to be shown regardless of focus outcome")
			}
		})
	}
}

func TestToggleWindowDetailed_ReportsFocus(t *testing.T) {
	w := services.NewMockWindow("main", false, fullHD)
	w.FocusErr = errors.New("focus refused")
	r := newRouter(true, w)

	got, err := r.Dispatch(context.Background(), CmdToggleWindowDetailed, json.RawMessage(`{"window_name":"main"}`))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	result, ok := got.(types.ToggleResult)
	if !ok {
		t.Fatalf("result type = %T", got)
	}
	if !result.Visible || result.Focused || result.FocusError != "focus refused" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestListMonitors_DefaultsToTopbar(t *testing.T) {
	topbar := services.NewMockWindow("topbar", true, fullHD)
	r := newRouter(true, topbar)

	got, err := r.Dispatch(context.Background(), CmdListMonitors, nil)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	monitors, ok := got.([]types.Monitor)
	if !ok || len(monitors) != 1 || monitors[0].Name != "HDMI-1" {
		t.Errorf("monitors = %#v", got)
	}
}

func TestDispatch_Rejects(t *testing.T) {
	r := newRouter(true, services.NewMockWindow("topbar", true, fullHD))

	tests := []struct {
		name    string
		command string
		params  string
		check   func(error) bool
	}{
		{"unknown command", "explode", "", winerrors.IsUnknownCommand},
		{"malformed json", CmdResizeTopbarWindow, `{"width":`, winerrors.IsInvalidArgument},
		{"negative width", CmdResizeTopbarWindow, `{"width":-5,"height":10}`, winerrors.IsInvalidArgument},
		{"unknown field", CmdGreet, `{"nom":"Ada"}`, winerrors.IsInvalidArgument},
		{"toggle without name", CmdToggleWindow, `{}`, winerrors.IsInvalidArgument},
		{"toggle unknown window", CmdToggleWindow, `{"window_name":"ghost"}`, winerrors.IsWindowNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), tt.command, json.RawMessage(tt.params))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected classification for %v (code %s)", err, winerrors.CodeOf(err))
			}
		})
	}
}

func TestNames_AllDispatchable(t *testing.T) {
	r := newRouter(false, services.NewMockWindow("topbar", true, fullHD))

	for _, name := range Names() {
		params := json.RawMessage(`{"window_name":"topbar"}`)
		switch name {
		case CmdSetupTopbarWindow, CmdResizeTopbarWindow, CmdGreet:
			params = nil
		}
		if _, err := r.Dispatch(context.Background(), name, params); winerrors.IsUnknownCommand(err) {
			t.Errorf("%s not routed", name)
		}
	}
}
