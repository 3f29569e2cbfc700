//go:build linux

package platform

import (
	"context"
	"fmt"

	"classtop/internal/types"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

const (
	wmStateRemove = 0
	wmStateHidden = "_NET_WM_STATE_HIDDEN"

	// ICCCM IconicState, sent with WM_CHANGE_STATE
	iconicState = 3
	// pager/direct action source indication for EWMH client messages
	sourceIndication = 2
)

// X11Registry finds top-level windows through the EWMH client list
type X11Registry struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	opts NativeOptions
}

// NewNativeRegistry connects to the X server named by $DISPLAY
func NewNativeRegistry(opts NativeOptions) (NativeBackend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	return &X11Registry{
		xu:   xu,
		root: xu.RootWin(),
		opts: opts,
	}, nil
}

// Backend names the window system
func (r *X11Registry) Backend() string {
	return "x11"
}

// Close cleanly disconnects from the X11 server
func (r *X11Registry) Close() error {
	r.xu.Conn().Close()
	return nil
}

// FindWindow matches the alias-resolved title against _NET_WM_NAME, WM_NAME and WM_CLASS
func (r *X11Registry) FindWindow(_ context.Context, name string) (WindowHandle, bool) {
	title := r.opts.titleFor(name)

	clients, err := ewmh.ClientListGet(r.xu)
	if err != nil {
		return nil, false
	}

	for _, win := range clients {
		if r.matches(win, title) {
			return &x11Window{registry: r, id: win, name: name}, true
		}
	}
	return nil, false
}

func (r *X11Registry) matches(win xproto.Window, title string) bool {
	if n, err := ewmh.WmNameGet(r.xu, win); err == nil && n == title {
		return true
	}
	if n, err := icccm.WmNameGet(r.xu, win); err == nil && n == title {
		return true
	}
	if cls, err := icccm.WmClassGet(r.xu, win); err == nil && cls != nil {
		return cls.Instance == title || cls.Class == title
	}
	return false
}

// monitors lists active RandR CRTCs in physical pixels
func (r *X11Registry) monitors() ([]types.Monitor, error) {
	conn := r.xu.Conn()

	resources, err := randr.GetScreenResources(conn, r.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, r.root).Reply(); err == nil {
		primary = reply.Output
	}

	scale := r.opts.ScaleFactor
	if scale <= 0 {
		scale = 1
	}

	var monitors []types.Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		isPrimary := false
		for _, o := range info.Outputs {
			if primary != 0 && o == primary {
				isPrimary = true
			}
		}

		monitors = append(monitors, types.Monitor{
			Name:           name,
			PhysicalWidth:  int(info.Width),
			PhysicalHeight: int(info.Height),
			ScaleFactor:    scale,
			Primary:        isPrimary,
		})
	}

	return monitors, nil
}

// sendRootMessage delivers a client message to the root window, the way EWMH
// and ICCCM window-manager requests are made
func (r *X11Registry) sendRootMessage(win xproto.Window, atomName string, data []uint32) error {
	atom, err := xproto.InternAtom(r.xu.Conn(), false, uint16(len(atomName)), atomName).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}

	for len(data) < 5 {
		data = append(data, 0)
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}

	return xproto.SendEventChecked(
		r.xu.Conn(),
		false,
		r.root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// x11Window is a handle to a managed X11 client window; setters take physical pixels
type x11Window struct {
	registry *X11Registry
	id       xproto.Window
	name     string
}

func (w *x11Window) Name() string {
	return w.name
}

func (w *x11Window) PreferredUnit() types.UnitMode {
	return types.UnitPhysical
}

func (w *x11Window) Monitors(_ context.Context) ([]types.Monitor, error) {
	return w.registry.monitors()
}

func (w *x11Window) SetSize(_ context.Context, width, height int) error {
	if err := ewmh.ResizeWindow(w.registry.xu, w.id, width, height); err == nil {
		return nil
	}
	return xproto.ConfigureWindowChecked(w.registry.xu.Conn(), w.id,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)}).Check()
}

func (w *x11Window) SetPosition(_ context.Context, x, y int) error {
	if err := ewmh.MoveWindow(w.registry.xu, w.id, x, y); err == nil {
		return nil
	}
	// X11 carries coordinates as INT16 inside the uint32 value list
	return xproto.ConfigureWindowChecked(w.registry.xu.Conn(), w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))}).Check()
}

// IsVisible requires the window to be mapped and not iconified
func (w *x11Window) IsVisible(_ context.Context) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(w.registry.xu.Conn(), w.id).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to read window attributes: %w", err)
	}
	if attrs.MapState != xproto.MapStateViewable {
		return false, nil
	}

	states, err := ewmh.WmStateGet(w.registry.xu, w.id)
	if err != nil {
		return true, nil
	}
	for _, s := range states {
		if s == wmStateHidden {
			return false, nil
		}
	}
	return true, nil
}

func (w *x11Window) Show(_ context.Context) error {
	if err := xproto.MapWindowChecked(w.registry.xu.Conn(), w.id).Check(); err != nil {
		return fmt.Errorf("failed to map window: %w", err)
	}
	// Not every WM supports _NET_WM_STATE; mapping alone is enough there
	_ = ewmh.WmStateReq(w.registry.xu, w.id, wmStateRemove, wmStateHidden)
	return nil
}

// Hide iconifies instead of unmapping so the window stays in the client list
func (w *x11Window) Hide(_ context.Context) error {
	if err := w.registry.sendRootMessage(w.id, "WM_CHANGE_STATE", []uint32{iconicState}); err != nil {
		return fmt.Errorf("failed to iconify window: %w", err)
	}
	return nil
}

func (w *x11Window) Focus(_ context.Context) error {
	if err := w.registry.sendRootMessage(w.id, "_NET_ACTIVE_WINDOW", []uint32{sourceIndication}); err != nil {
		return fmt.Errorf("failed to activate window: %w", err)
	}
	return nil
}
