package state

import "testing"

// =============================================================================
// Energy Level Tests
// =============================================================================

func TestEnergyLevelFromWire(t *testing.T) {
	tests := []struct {
		raw  int
		want EnergyLevel
	}{
		{0, EnergyNormal},
		{1, EnergyReduced},
		{2, EnergyStandby},
		{3, EnergyTiming},
		{7, EnergyParty},
		{11, EnergyHoliday},
		// Server quirks, kept as explicit overrides.
		{4, EnergyTiming},
		{5, EnergyTiming},
		{6, EnergyParty},
	}

	for _, tt := range tests {
		got, ok := EnergyLevelFromWire(tt.raw)
		if !ok {
			t.Errorf("EnergyLevelFromWire(%d) ok = false, want true", tt.raw)
		}
		if got != tt.want {
			t.Errorf("EnergyLevelFromWire(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestEnergyLevelFromWireUnknown(t *testing.T) {
	if _, ok := EnergyLevelFromWire(42); ok {
		t.Error("EnergyLevelFromWire(42) ok = true, want false")
	}
}

func TestVoteEnergy(t *testing.T) {
	tests := []struct {
		name   string
		levels []EnergyLevel
		want   EnergyLevel
	}{
		{"majority wins", []EnergyLevel{EnergyNormal, EnergyNormal, EnergyReduced}, EnergyNormal},
		{"tie breaks to declared order", []EnergyLevel{EnergyReduced, EnergyNormal}, EnergyNormal},
		{"single channel", []EnergyLevel{EnergyHoliday}, EnergyHoliday},
		{"no channels", nil, EnergyNormal},
		{"undeclared values do not vote", []EnergyLevel{4, 4, 4, EnergyStandby}, EnergyStandby},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := voteEnergy(tt.levels); got != tt.want {
				t.Errorf("voteEnergy(%v) = %v, want %v", tt.levels, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Operating Mode Tests
// =============================================================================

func TestClassifyOperatingMode(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want OperatingMode
	}{
		{"both flags", flags(true, true, false), ModeAuto},
		{"both flags manual", flags(true, true, true), ModeAuto},
		{"cooling only", flags(false, true, false), ModeCoolingOnly},
		{"cooling manual", flags(false, true, true), ModeCoolingManual},
		{"heating only", flags(true, false, false), ModeHeatingOnly},
		{"heating manual", flags(true, false, true), ModeHeatingManual},
		{"neither defaults to heating", flags(false, false, false), ModeHeatingOnly},
		{"neither manual", flags(false, false, true), ModeHeatingManual},
		{"nil input", nil, ModeUnknown},
		{"not a mapping", "heating", ModeUnknown},
		{"missing flag", map[string]any{"heating": true, "cooling": false}, ModeUnknown},
		{"non-bool flag", map[string]any{"heating": 1, "cooling": false, "manual": false}, ModeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyOperatingMode(tt.raw); got != tt.want {
				t.Errorf("ClassifyOperatingMode(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func flags(heating, cooling, manual bool) map[string]any {
	return map[string]any{"heating": heating, "cooling": cooling, "manual": manual}
}
