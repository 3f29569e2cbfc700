package platform

import "context"

// CompositeRegistry consults each registry in order and returns the first match
type CompositeRegistry struct {
	registries []WindowRegistry
}

// NewCompositeRegistry creates a registry over the non-nil registries given
func NewCompositeRegistry(registries ...WindowRegistry) *CompositeRegistry {
	c := &CompositeRegistry{}
	for _, r := range registries {
		if r != nil {
			c.registries = append(c.registries, r)
		}
	}
	return c
}

// FindWindow returns the handle from the first registry that knows the name
func (c *CompositeRegistry) FindWindow(ctx context.Context, name string) (WindowHandle, bool) {
	for _, r := range c.registries {
		if handle, ok := r.FindWindow(ctx, name); ok {
			return handle, true
		}
	}
	return nil, false
}
