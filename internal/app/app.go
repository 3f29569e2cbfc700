package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"classtop/internal/commands"
	"classtop/internal/config"
	winerrors "classtop/internal/infrastructure/errors"
	"classtop/internal/infrastructure/logging"
	"classtop/internal/ipc"
	"classtop/internal/runtimepath"
	"classtop/internal/services"
	"classtop/internal/tray"
	"classtop/internal/types"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

const (
	// shutdownTimeout bounds stopping the IPC server and tray
	shutdownTimeout = 5 * time.Second
	mainWindowName  = "main"
)

// App struct represents the main application
type App struct {
	ctx        context.Context
	cfg        *config.Config
	logger     logging.Logger
	registries registries
	router     *commands.Router
	ipcServer  *ipc.Server
	tray       *tray.Tray
	trayIcon   []byte
	quit       func(ctx context.Context)
	quitting   atomic.Bool
}

// Option customizes an App
type Option func(*App)

// WithTrayIcon sets the PNG shown in the system tray
func WithTrayIcon(icon []byte) Option {
	return func(a *App) {
		a.trayIcon = icon
	}
}

// NewApp creates a new App with its window backends and command router
func NewApp(cfg *config.Config, logger logging.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = logging.NewLeveledLogger(cfg.Level())
	}

	regs, err := buildRegistries(cfg, logger)
	if err != nil {
		return nil, err
	}

	controller := services.NewTopbarController(regs.lookup, logger,
		services.WithMonitorSelector(cfg.MonitorSelector()),
		services.WithUnitMode(cfg.Unit()),
		services.WithFocusRetry(winerrors.WithRetryLogging(cfg.FocusRetry(), logger, services.OpToggle)))

	router := commands.NewRouter(controller, commands.Options{
		TopbarName:        cfg.Topbar.Name,
		DefaultHeight:     cfg.Topbar.DefaultHeight,
		FocusFailureFatal: cfg.FocusFailureFatal,
	}, logger)

	a := &App{
		cfg:        cfg,
		logger:     logger,
		registries: regs,
		router:     router,
		quit:       runtime.Quit,
	}
	for _, opt := range opts {
		opt(a)
	}

	logger.Info("Window backend selected", "backend", regs.backendName(), "topbar", cfg.Topbar.Name)
	return a, nil
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.registries.wails.Attach(ctx)

	if a.cfg.IPC.Enabled {
		if err := a.startIPC(ctx); err != nil {
			// The window keeps working without the socket
			a.logger.Error("IPC server failed to start", "error", err.Error())
		}
	}

	if a.cfg.Tray.Enabled {
		a.tray = tray.New(a.router, tray.Options{
			Title:      "ClassTop",
			Icon:       a.trayIcon,
			TopbarName: a.cfg.Topbar.Name,
			MainName:   mainWindowName,
			Windows:    a.registries.lookup,
			Quit:       a.Quit,
		}, a.logger)
		a.tray.Start()
	}

	a.logger.Info("Application started", "backend", a.registries.backendName())
}

func (a *App) startIPC(ctx context.Context) error {
	socketPath, err := runtimepath.SocketPath(a.cfg.IPC.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	server := ipc.NewServer(socketPath, a.router, a.logger)
	if err := server.Start(ctx); err != nil {
		return err
	}
	a.ipcServer = server
	return nil
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {
	a.logger.Debug("Frontend ready")
}

// BeforeClose is called when the application is about to quit. With the tray
// enabled, closing hides the window instead and quitting goes through the tray.
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	if !a.cfg.Tray.Enabled || a.quitting.Load() {
		return false
	}
	if err := a.registries.wails.HideWindow(); err != nil {
		a.logger.Warn("Failed to hide window on close", "error", err.Error())
		return false
	}
	a.logger.Debug("Window hidden on close", "window", a.registries.wails.WindowName())
	return true
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Info("Starting application shutdown sequence")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if a.tray != nil {
			a.tray.Stop()
		}
		if a.ipcServer != nil {
			a.ipcServer.Stop()
		}
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		a.logger.Warn("Timed out stopping tray and IPC server")
	}

	a.registries.close(a.logger)
	a.logger.Info("Application shutdown completed")
}

// Quit asks the host to end the application
func (a *App) Quit() {
	if a.ctx == nil {
		return
	}
	a.quitting.Store(true)
	a.quit(a.ctx)
}

func (a *App) callContext() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Greet returns a greeting for name
func (a *App) Greet(name string) string {
	return a.router.Greet(name)
}

// SetupTopbarWindow sizes the topbar to 60% of the screen width, 20% from the
// left edge. A zero height uses the configured default.
func (a *App) SetupTopbarWindow(height uint32) error {
	return a.router.SetupTopbarWindow(a.callContext(), height)
}

// ResizeTopbarWindow sets the topbar size and centers it horizontally
func (a *App) ResizeTopbarWindow(width, height uint32) error {
	return a.router.ResizeTopbarWindow(a.callContext(), width, height)
}

// ToggleWindow shows or hides the named window and returns whether it is now visible
func (a *App) ToggleWindow(windowName string) (bool, error) {
	return a.router.ToggleWindow(a.callContext(), windowName)
}

// ToggleWindowDetailed is ToggleWindow with the focus outcome reported separately
func (a *App) ToggleWindowDetailed(windowName string) (types.ToggleResult, error) {
	return a.router.ToggleWindowDetailed(a.callContext(), windowName)
}

// ListMonitors returns the monitors visible to the named window, or the topbar when empty
func (a *App) ListMonitors(windowName string) ([]types.Monitor, error) {
	return a.router.ListMonitors(a.callContext(), windowName)
}
