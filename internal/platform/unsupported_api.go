//go:build !linux && !windows && !darwin

package platform

// NewNativeRegistry reports that this OS has no native backend
func NewNativeRegistry(opts NativeOptions) (NativeBackend, error) {
	return nil, ErrNativeUnsupported
}
