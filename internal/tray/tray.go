package tray

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"classtop/internal/commands"
	"classtop/internal/infrastructure/logging"
	"classtop/internal/platform"
	"classtop/internal/types"

	"fyne.io/systray"
)

// Menu entries
const (
	menuToggleTopbar = "toggle_topbar"
	menuToggleMain   = "toggle_main"
	menuQuit         = "quit"
)

const actionTimeout = 5 * time.Second

// Options configures the tray
type Options struct {
	Title      string
	Icon       []byte
	TopbarName string
	MainName   string
	// Windows, when set, is consulted at start; the main window entry is
	// only added when MainName resolves
	Windows platform.WindowRegistry
	// Quit is invoked from the Quit menu item
	Quit func()
}

// Tray is the system tray icon and its menu
type Tray struct {
	dispatcher commands.Dispatcher
	opts       Options
	logger     logging.Logger

	mu      sync.Mutex
	end     func()
	stopped chan struct{}
}

// New creates a tray that routes menu clicks through dispatcher
func New(dispatcher commands.Dispatcher, opts Options, logger logging.Logger) *Tray {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if opts.Title == "" {
		opts.Title = "ClassTop"
	}
	if opts.TopbarName == "" {
		opts.TopbarName = "topbar"
	}
	if opts.MainName == "" {
		opts.MainName = "main"
	}
	return &Tray{
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger,
	}
}

// Start registers the tray icon alongside the host event loop
func (t *Tray) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.end != nil {
		return
	}

	t.stopped = make(chan struct{})
	start, end := systray.RunWithExternalLoop(t.onReady, func() {
		t.logger.Debug("Tray exited")
	})
	t.end = end
	start()
}

// Stop removes the tray icon
func (t *Tray) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.end == nil {
		return
	}
	close(t.stopped)
	t.end()
	t.end = nil
}

// hasMainEntry reports whether the main window can be toggled from the tray
func (t *Tray) hasMainEntry(ctx context.Context) bool {
	if t.opts.Windows == nil {
		return true
	}
	if _, ok := t.opts.Windows.FindWindow(ctx, t.opts.MainName); !ok {
		t.logger.Info("Main window not resolvable, tray entry omitted", "window", t.opts.MainName)
		return false
	}
	return true
}

func (t *Tray) onReady() {
	if len(t.opts.Icon) > 0 {
		systray.SetIcon(t.opts.Icon)
	}
	systray.SetTitle(t.opts.Title)
	systray.SetTooltip(t.opts.Title)

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	withMain := t.hasMainEntry(ctx)
	cancel()

	topbar := systray.AddMenuItem("Show/Hide Topbar", "Toggle the topbar window")
	var mainClicked chan struct{}
	if withMain {
		mainClicked = systray.AddMenuItem("Show/Hide Main", "Toggle the main window").ClickedCh
	}
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit ClassTop")

	t.logger.Info("Tray ready", "main_entry", withMain)

	stopped := t.stopped
	go func() {
		for {
			select {
			case <-topbar.ClickedCh:
				t.handleMenuEvent(menuToggleTopbar)
			case <-mainClicked:
				t.handleMenuEvent(menuToggleMain)
			case <-quit.ClickedCh:
				t.handleMenuEvent(menuQuit)
			case <-stopped:
				return
			}
		}
	}()
}

// handleMenuEvent runs the action bound to a menu entry. Toggles use the
// detailed command so a refused focus is logged instead of failing.
func (t *Tray) handleMenuEvent(id string) {
	switch id {
	case menuToggleTopbar:
		t.toggle(t.opts.TopbarName)
	case menuToggleMain:
		t.toggle(t.opts.MainName)
	case menuQuit:
		t.logger.Info("Quit requested from tray")
		if t.opts.Quit != nil {
			t.opts.Quit()
		}
	default:
		t.logger.Warn("Unknown tray menu event", "id", id)
	}
}

func (t *Tray) toggle(window string) {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	params, _ := json.Marshal(commands.WindowParams{WindowName: window})
	out, err := t.dispatcher.Dispatch(ctx, commands.CmdToggleWindowDetailed, params)
	if err != nil {
		t.logger.Warn("Tray toggle failed", "window", window, "error", err.Error())
		return
	}

	if result, ok := out.(types.ToggleResult); ok && result.Visible && !result.Focused {
		t.logger.Warn("Tray toggle showed window without focus", "window", window, "error", result.FocusError)
	}
}
