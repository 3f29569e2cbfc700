package app

import (
	"fmt"

	"classtop/internal/config"
	"classtop/internal/infrastructure/logging"
	"classtop/internal/platform"
)

// newNativeRegistry is replaced in tests
var newNativeRegistry = platform.NewNativeRegistry

// registries holds the window backends selected for a run
type registries struct {
	lookup platform.WindowRegistry
	wails  *platform.WailsRegistry
	native platform.NativeBackend
}

func (r registries) backendName() string {
	if r.native != nil {
		return r.native.Backend()
	}
	return config.BackendWails
}

// buildRegistries selects window backends from the configured backend name.
// The Wails window always stays resolvable under the topbar name; native
// lookups are consulted first when a native backend is in use.
func buildRegistries(cfg *config.Config, logger logging.Logger) (registries, error) {
	wails := platform.NewWailsRegistry(cfg.Topbar.Name, !cfg.Topbar.StartHidden)
	regs := registries{lookup: wails, wails: wails}

	backend := cfg.BackendName()
	if backend == config.BackendWails {
		return regs, nil
	}

	native, err := newNativeRegistry(cfg.NativeOptions())
	if err != nil {
		if backend == config.BackendAuto {
			logger.Info("Native window backend unavailable, using Wails only", "error", err.Error())
			return regs, nil
		}
		return registries{}, fmt.Errorf("window backend %s unavailable: %w", backend, err)
	}

	if backend != config.BackendAuto && native.Backend() != backend {
		native.Close()
		return registries{}, fmt.Errorf("window backend %s is not supported on this platform (native backend is %s)", backend, native.Backend())
	}

	regs.native = native
	regs.lookup = platform.NewCompositeRegistry(native, wails)
	return regs, nil
}

func (r registries) close(logger logging.Logger) {
	if r.wails != nil {
		r.wails.Detach()
	}
	if r.native != nil {
		if err := r.native.Close(); err != nil {
			logger.Warn("Failed to close native window backend", "error", err.Error())
		}
	}
}
