package models

import (
	"fmt"
	"time"
)

// PressureAlert describes a forecast pressure drop exceeding the configured
// threshold. Created once per analysis, read-only afterwards, passed by value
// to every channel.
type PressureAlert struct {
	Triggered           bool      `json:"triggered"`
	CurrentPressureMmHg float64   `json:"current_pressure_mmhg"`
	MinPressureMmHg     float64   `json:"min_pressure_mmhg"`
	PressureDropMmHg    float64   `json:"pressure_drop_mmhg"`
	MinPressureTime     time.Time `json:"min_pressure_time"`
	ThresholdMmHg       float64   `json:"threshold_mmhg"`
}

// ExpectedAt formats the minimum-pressure timestamp for user-facing messages.
func (a PressureAlert) ExpectedAt() string {
	return a.MinPressureTime.Format("2006-01-02 15:04")
}

func (a PressureAlert) Summary() string {
	return fmt.Sprintf("%.1f mmHg drop expected", a.PressureDropMmHg)
}

// DispatchResult maps a channel name to whether its notification went out.
// One entry per enabled channel attempted; ordering carries no meaning.
type DispatchResult map[string]bool

// Succeeded counts the channels that delivered.
func (r DispatchResult) Succeeded() int {
	n := 0
	for _, ok := range r {
		if ok {
			n++
		}
	}
	return n
}
