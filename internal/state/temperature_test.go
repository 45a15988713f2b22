package state

import "testing"

func TestWireToCelsius(t *testing.T) {
	tests := []struct {
		raw  int
		want float64
	}{
		{320, 0.0},
		{680, 20.0},
		{689, 20.5},
		{716, 22.0},
		{752, 24.0},
		{212, -6.0},
	}

	for _, tt := range tests {
		if got := WireToCelsius(tt.raw); got != tt.want {
			t.Errorf("WireToCelsius(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestWireToCelsiusHalfStep(t *testing.T) {
	tests := []struct {
		raw  int
		want float64
	}{
		{680, 20.0},
		{684, 20.0},
		{689, 20.5},
		{698, 21.0},
	}

	for _, tt := range tests {
		if got := WireToCelsiusHalfStep(tt.raw); got != tt.want {
			t.Errorf("WireToCelsiusHalfStep(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCelsiusToWire(t *testing.T) {
	tests := []struct {
		celsius float64
		want    int
	}{
		{0, 320},
		{20, 680},
		{20.5, 689},
		{22, 716},
	}

	for _, tt := range tests {
		if got := CelsiusToWire(tt.celsius); got != tt.want {
			t.Errorf("CelsiusToWire(%v) = %d, want %d", tt.celsius, got, tt.want)
		}
	}
}

// Round-tripping through Celsius and back stays within one wire unit
// over the plausible residential range.
func TestWireRoundTrip(t *testing.T) {
	for raw := 300; raw <= 1000; raw++ {
		back := CelsiusToWire(WireToCelsius(raw))
		diff := back - raw
		if diff < -1 || diff > 1 {
			t.Errorf("round trip of %d came back as %d", raw, back)
		}
	}
}
