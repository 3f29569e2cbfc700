package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"classtop/internal/commands"
	"classtop/internal/ipc"
	"classtop/internal/services"
	"classtop/internal/testutils"
	"classtop/internal/types"
)

func startServer(t *testing.T, windows ...*services.MockWindow) string {
	t.Helper()

	controller := services.NewTopbarController(services.NewMockRegistry(windows...), testutils.SilentLogger{})
	router := commands.NewRouter(controller, commands.Options{
		TopbarName:        "topbar",
		DefaultHeight:     48,
		FocusFailureFatal: true,
	}, testutils.SilentLogger{})

	socket := filepath.Join(t.TempDir(), "ctl.sock")
	srv := ipc.NewServer(socket, router, testutils.SilentLogger{})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(srv.Stop)
	return socket
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Commands(t *testing.T) {
	fullHD := types.Monitor{Name: "DP-1", PhysicalWidth: 1920, PhysicalHeight: 1080, ScaleFactor: 1, Primary: true}
	topbar := services.NewMockWindow("topbar", true, fullHD)
	socket := startServer(t, topbar)

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
	}{
		{"greet", []string{"greet", "Ada"}, 0, "Hello, Ada! You've been greeted from Rust!\n"},
		{"setup default height", []string{"setup"}, 0, ""},
		{"resize", []string{"resize", "800", "60"}, 0, ""},
		{"toggle hides", []string{"toggle", "topbar"}, 0, "hidden\n"},
		{"toggle shows", []string{"toggle", "topbar"}, 0, "visible\n"},
		{"monitors", []string{"monitors"}, 0, "0: DP-1 1920x1080 scale 1.00 logical 1920x1080 (primary)\n"},
		{"unknown window", []string{"toggle", "ghost"}, 1, ""},
		{"bad width", []string{"resize", "wide", "60"}, 2, ""},
		{"missing args", []string{"greet"}, 2, ""},
		{"unknown command", []string{"explode"}, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(append([]string{"--socket", socket}, tt.args...)...)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, stderr)
			}
			if stdout != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.wantStdout)
			}
		})
	}

	if x, _ := topbar.Position(); x != 560 {
		t.Errorf("Expected resize to center the topbar, x = %d", x)
	}
}

func TestRun_ToggleDetailed(t *testing.T) {
	socket := startServer(t, services.NewMockWindow("main", false))

	code, stdout, stderr := runCLI("--socket", socket, "toggle", "-detailed", "main")
	if code != 0 {
		t.Fatalf("exit code = %d (stderr %q)", code, stderr)
	}
	if !strings.Contains(stdout, `"visible": true`) || !strings.Contains(stdout, `"focused": true`) {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRun_ErrorsUseServerMessage(t *testing.T) {
	socket := startServer(t)

	code, _, stderr := runCLI("--socket", socket, "setup", "40")
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(stderr) != "Window not found" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_Usage(t *testing.T) {
	code, stdout, _ := runCLI()
	if code != 0 || !strings.Contains(stdout, "Usage: classtopctl") {
		t.Errorf("code = %d stdout = %q", code, stdout)
	}
}
