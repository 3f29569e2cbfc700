//go:build darwin

package platform

// NewNativeRegistry reports that macOS has no native backend; the Wails
// window registry is used instead
func NewNativeRegistry(opts NativeOptions) (NativeBackend, error) {
	// TODO: Implement using NSApplication window lookup once the app ships a second window on macOS
	return nil, ErrNativeUnsupported
}
