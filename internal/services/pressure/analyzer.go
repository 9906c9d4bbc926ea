package pressure

import (
	"fmt"

	"github.com/pkg/errors"

	"pressure-monitor/internal/models"
	"pressure-monitor/pkg/observe"
)

const (
	DefaultWindowSize    = 8
	DefaultThresholdMmHg = 8.0
)

// Analyzer scans a bounded prefix of a forecast series and decides whether
// the predicted pressure drop warrants an alert.
type Analyzer struct {
	windowSize    int
	thresholdMmHg float64
	l             *observe.Logger
}

func NewAnalyzer(windowSize int, thresholdMmHg float64, l *observe.Logger) *Analyzer {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if thresholdMmHg <= 0 {
		thresholdMmHg = DefaultThresholdMmHg
	}

	return &Analyzer{
		windowSize:    windowSize,
		thresholdMmHg: thresholdMmHg,
		l:             l,
	}
}

// Analyze returns a PressureAlert when the drop from the current reading to
// the window minimum strictly exceeds the threshold, and nil otherwise.
// Malformed input fails closed: an empty series or an unusable first sample
// yields no alert, and a malformed mid-window sample is skipped. Ties keep
// the earliest-seen minimum.
func (a *Analyzer) Analyze(series models.ForecastSeries) *models.PressureAlert {
	if len(series) == 0 {
		a.l.Error(errors.New("cannot analyze pressure: forecast series is empty"))
		return nil
	}

	if !series[0].Valid() {
		a.l.Error(errors.New("cannot analyze pressure: first forecast sample has no pressure reading"))
		return nil
	}

	current := models.ToMmHg(series[0].PressureHPa)
	a.l.Info("current pressure", map[string]any{
		"mmhg": fmt.Sprintf("%.2f", current),
		"hpa":  series[0].PressureHPa,
	})

	minPressure := current
	minTime := series[0].Time

	for i, sample := range series.Window(a.windowSize) {
		if !sample.Valid() {
			a.l.Warning("skipping forecast sample without pressure reading", map[string]any{
				"index": i,
				"time":  sample.Time,
			})
			continue
		}

		mmhg := models.ToMmHg(sample.PressureHPa)
		if mmhg < minPressure {
			minPressure = mmhg
			minTime = sample.Time
		}

		a.l.Debug("forecast sample", map[string]any{
			"index": i,
			"mmhg":  fmt.Sprintf("%.2f", mmhg),
			"time":  sample.Time,
		})
	}

	drop := current - minPressure

	a.l.Info("pressure analysis complete", map[string]any{
		"min_mmhg":  fmt.Sprintf("%.2f", minPressure),
		"drop_mmhg": fmt.Sprintf("%.2f", drop),
	})

	if drop > a.thresholdMmHg {
		return &models.PressureAlert{
			Triggered:           true,
			CurrentPressureMmHg: current,
			MinPressureMmHg:     minPressure,
			PressureDropMmHg:    drop,
			MinPressureTime:     minTime,
			ThresholdMmHg:       a.thresholdMmHg,
		}
	}

	a.l.Info("pressure drop below threshold", map[string]any{
		"drop_mmhg":      fmt.Sprintf("%.2f", drop),
		"threshold_mmhg": a.thresholdMmHg,
	})

	return nil
}
