package state

import "math"

// Wire temperatures are integers in tenths of a degree Fahrenheit.

// WireToCelsius converts a wire temperature to Celsius rounded to one
// decimal place, the form used for display reads.
func WireToCelsius(raw int) float64 {
	c := (float64(raw)/10 - 32) / 1.8
	return math.Round(c*10) / 10
}

// WireToCelsiusHalfStep converts a wire temperature to Celsius rounded
// to the nearest half degree, the form used when echoing setpoints.
func WireToCelsiusHalfStep(raw int) float64 {
	c := (float64(raw)/10 - 32) / 1.8
	return math.Round(c*2) / 2
}

// CelsiusToWire converts a Celsius value to the wire representation for
// outbound setpoint commands.
func CelsiusToWire(c float64) int {
	return int(math.Round(c*1.8*10 + 320))
}
