package services

import (
	"math"

	"classtop/internal/types"
)

const (
	// topbarWidthRatio is the share of the screen width the topbar spans
	topbarWidthRatio = 0.6
	// topbarOffsetRatio is the left margin as a share of the screen width
	topbarOffsetRatio = 0.2
)

// SetupGeometry spans the topbar over the middle 60% of the monitor at the top edge
func SetupGeometry(monitor types.Monitor, height int, mode types.UnitMode) types.Geometry {
	screen := monitor.ScreenWidth(mode)
	return types.Geometry{
		X:      int(math.Round(screen * topbarOffsetRatio)),
		Y:      0,
		Width:  int(math.Round(screen * topbarWidthRatio)),
		Height: height,
		Unit:   mode,
	}
}

// ResizeGeometry centers a window of the given width at the top edge.
// A width wider than the screen yields a negative x.
func ResizeGeometry(monitor types.Monitor, width, height int, mode types.UnitMode) types.Geometry {
	screen := monitor.ScreenWidth(mode)
	return types.Geometry{
		X:      int(math.Round((screen - float64(width)) / 2)),
		Y:      0,
		Width:  width,
		Height: height,
		Unit:   mode,
	}
}
