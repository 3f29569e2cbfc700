package types

import (
	"math"
	"testing"
)

func TestParseUnitMode(t *testing.T) {
	tests := []struct {
		in      string
		want    UnitMode
		wantErr bool
	}{
		{"", UnitDefault, false},
		{"logical", UnitLogical, false},
		{" Physical ", UnitPhysical, false},
		{"points", UnitDefault, true},
	}

	for _, tt := range tests {
		got, err := ParseUnitMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseUnitMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseUnitMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonitor_ScreenDimensions(t *testing.T) {
	m := Monitor{PhysicalWidth: 3840, PhysicalHeight: 2160, ScaleFactor: 2}

	if got := m.ScreenWidth(UnitLogical); got != 1920 {
		t.Errorf("logical width = %v, want 1920", got)
	}
	if got := m.ScreenWidth(UnitPhysical); got != 3840 {
		t.Errorf("physical width = %v, want 3840", got)
	}
	if got := m.ScreenHeight(UnitLogical); got != 1080 {
		t.Errorf("logical height = %v, want 1080", got)
	}
	if got := m.ScreenHeight(UnitPhysical); got != 2160 {
		t.Errorf("physical height = %v, want 2160", got)
	}
}

func TestMonitor_EffectiveScale(t *testing.T) {
	for _, scale := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if got := (Monitor{ScaleFactor: scale}).EffectiveScale(); got != 1 {
			t.Errorf("EffectiveScale(%v) = %v, want 1", scale, got)
		}
	}
	if got := (Monitor{ScaleFactor: 1.25}).EffectiveScale(); got != 1.25 {
		t.Errorf("EffectiveScale(1.25) = %v", got)
	}
}
