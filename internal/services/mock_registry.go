package services

import (
	"context"
	"sync"

	"classtop/internal/platform"
	"classtop/internal/types"
)

// MockWindow implements platform.WindowHandle for testing
type MockWindow struct {
	mu         sync.Mutex
	name       string
	visible    bool
	unit       types.UnitMode
	monitors   []types.Monitor
	monitorErr error

	SizeErr     error
	PositionErr error
	VisibleErr  error
	ShowErr     error
	HideErr     error
	FocusErr    error
	// FocusFailures makes only the first N focus calls return FocusErr
	FocusFailures int

	calls      []string
	focusCalls int
	size       [2]int
	position   [2]int
}

// NewMockWindow creates a mock window with the given visibility and monitors
func NewMockWindow(name string, visible bool, monitors ...types.Monitor) *MockWindow {
	return &MockWindow{
		name:     name,
		visible:  visible,
		monitors: monitors,
	}
}

// SetMonitorError makes monitor queries fail
func (m *MockWindow) SetMonitorError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitorErr = err
}

// SetPreferredUnit makes the window advertise a unit preference
func (m *MockWindow) SetPreferredUnit(unit types.UnitMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unit = unit
}

// Calls returns the mutation and query calls made, in order
func (m *MockWindow) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Size returns the last applied size
func (m *MockWindow) Size() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size[0], m.size[1]
}

// Position returns the last applied position
func (m *MockWindow) Position() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position[0], m.position[1]
}

// Visible returns the current mock visibility
func (m *MockWindow) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

func (m *MockWindow) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *MockWindow) Name() string {
	return m.name
}

func (m *MockWindow) Monitors(ctx context.Context) ([]types.Monitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("monitors")
	if m.monitorErr != nil {
		return nil, m.monitorErr
	}
	return m.monitors, nil
}

func (m *MockWindow) SetSize(ctx context.Context, width, height int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("set_size")
	if m.SizeErr != nil {
		return m.SizeErr
	}
	m.size = [2]int{width, height}
	return nil
}

func (m *MockWindow) SetPosition(ctx context.Context, x, y int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("set_position")
	if m.PositionErr != nil {
		return m.PositionErr
	}
	m.position = [2]int{x, y}
	return nil
}

func (m *MockWindow) IsVisible(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("is_visible")
	if m.VisibleErr != nil {
		return false, m.VisibleErr
	}
	return m.visible, nil
}

func (m *MockWindow) Show(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("show")
	if m.ShowErr != nil {
		return m.ShowErr
	}
	m.visible = true
	return nil
}

func (m *MockWindow) Hide(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("hide")
	if m.HideErr != nil {
		return m.HideErr
	}
	m.visible = false
	return nil
}

func (m *MockWindow) Focus(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("focus")
	m.focusCalls++
	if m.FocusFailures > 0 && m.focusCalls > m.FocusFailures {
		return nil
	}
	return m.FocusErr
}

// mockUnitWindow adds a unit preference to a MockWindow
type mockUnitWindow struct {
	*MockWindow
}

func (m mockUnitWindow) PreferredUnit() types.UnitMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unit
}

// MockRegistry implements platform.WindowRegistry for testing
type MockRegistry struct {
	mu      sync.RWMutex
	windows map[string]*MockWindow
	lookups []string
}

// NewMockRegistry creates a registry holding the given windows
func NewMockRegistry(windows ...*MockWindow) *MockRegistry {
	r := &MockRegistry{windows: make(map[string]*MockWindow)}
	for _, w := range windows {
		r.windows[w.name] = w
	}
	return r
}

// Lookups returns the names passed to FindWindow
func (r *MockRegistry) Lookups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.lookups))
	copy(out, r.lookups)
	return out
}

// FindWindow implements platform.WindowRegistry
func (r *MockRegistry) FindWindow(ctx context.Context, name string) (platform.WindowHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, name)

	w, ok := r.windows[name]
	if !ok {
		return nil, false
	}

	w.mu.Lock()
	unit := w.unit
	w.mu.Unlock()
	if unit != types.UnitDefault {
		return mockUnitWindow{w}, true
	}
	return w, true
}
