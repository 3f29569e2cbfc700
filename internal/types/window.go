package types

import (
	"fmt"
	"math"
	"strings"
)

// UnitMode selects the pixel unit used for geometry computation
type UnitMode string

const (
	// UnitDefault defers to the configured or backend-preferred unit
	UnitDefault UnitMode = ""
	// UnitLogical divides physical dimensions by the monitor scale factor
	UnitLogical UnitMode = "logical"
	// UnitPhysical uses raw physical pixels
	UnitPhysical UnitMode = "physical"
)

// ParseUnitMode converts a configuration string into a UnitMode
func ParseUnitMode(s string) (UnitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UnitDefault, nil
	case "logical":
		return UnitLogical, nil
	case "physical":
		return UnitPhysical, nil
	default:
		return UnitDefault, fmt.Errorf("unknown unit mode %q (expected logical or physical)", s)
	}
}

// Monitor is a read-only snapshot of a display as reported by the host
type Monitor struct {
	Name           string  `json:"name"`
	PhysicalWidth  int     `json:"physicalWidth"`
	PhysicalHeight int     `json:"physicalHeight"`
	ScaleFactor    float64 `json:"scaleFactor"`
	Primary        bool    `json:"primary"`
}

// EffectiveScale returns the scale factor, treating unusable values as 1
func (m Monitor) EffectiveScale() float64 {
	if m.ScaleFactor <= 0 || math.IsNaN(m.ScaleFactor) || math.IsInf(m.ScaleFactor, 0) {
		return 1
	}
	return m.ScaleFactor
}

// ScreenWidth returns the monitor width in the requested unit
func (m Monitor) ScreenWidth(mode UnitMode) float64 {
	if mode == UnitPhysical {
		return float64(m.PhysicalWidth)
	}
	return float64(m.PhysicalWidth) / m.EffectiveScale()
}

// ScreenHeight returns the monitor height in the requested unit
func (m Monitor) ScreenHeight(mode UnitMode) float64 {
	if mode == UnitPhysical {
		return float64(m.PhysicalHeight)
	}
	return float64(m.PhysicalHeight) / m.EffectiveScale()
}

// Geometry is a window rectangle in whichever unit the backend expects
type Geometry struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Unit   UnitMode `json:"unit"`
}

// ToggleResult reports the outcome of a visibility toggle.
// Visible is derived from the visibility observed before mutation.
type ToggleResult struct {
	Visible    bool   `json:"visible"`
	Focused    bool   `json:"focused"`
	FocusError string `json:"focusError,omitempty"`
	FocusErr   error  `json:"-"`
}
