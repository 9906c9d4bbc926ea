package models

import "time"

// ForecastSample is one forecast entry: the predicted pressure at a point in
// time. OpenWeather delivers these at 3-hour granularity.
type ForecastSample struct {
	Time        time.Time `json:"time"`
	PressureHPa float64   `json:"pressure_hpa"`
}

// Valid reports whether the sample carries a usable pressure reading. A
// missing "main.pressure" field decodes to zero, which is not a physical
// atmospheric pressure.
func (s ForecastSample) Valid() bool {
	return s.PressureHPa > 0
}

// ForecastSeries is a chronological forecast, nearest reading first.
type ForecastSeries []ForecastSample

// Window returns the first n samples, or the whole series when it is shorter.
func (s ForecastSeries) Window(n int) ForecastSeries {
	if n >= len(s) {
		return s
	}
	return s[:n]
}
