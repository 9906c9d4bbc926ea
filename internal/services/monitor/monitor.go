package monitor

import (
	"context"

	"pressure-monitor/internal/channels"
	"pressure-monitor/internal/repositories"
	"pressure-monitor/internal/services/pressure"
	"pressure-monitor/pkg/observe"
)

// Monitor sequences one monitoring cycle: fetch the forecast, analyze the
// pressure series, and fan any alert out to the notification channels. A
// failed fetch or a quiet forecast ends the cycle cleanly; only startup
// configuration problems are fatal, and those are handled before Run.
type Monitor struct {
	repo       repositories.ForecastRepository
	analyzer   *pressure.Analyzer
	dispatcher *Dispatcher
	channels   map[string]channels.Channel

	lat float64
	lon float64

	l *observe.Logger
}

func NewMonitor(
	repo repositories.ForecastRepository,
	analyzer *pressure.Analyzer,
	dispatcher *Dispatcher,
	chans map[string]channels.Channel,
	lat, lon float64,
	l *observe.Logger,
) *Monitor {
	return &Monitor{
		repo:       repo,
		analyzer:   analyzer,
		dispatcher: dispatcher,
		channels:   chans,
		lat:        lat,
		lon:        lon,
		l:          l,
	}
}

// Run executes a single cycle. It returns an error only when the cycle could
// not run at all; "no data" and "no alert" are successful completions.
func (m *Monitor) Run(ctx context.Context) error {
	m.l.Info("starting pressure monitoring check", map[string]any{
		"lat": m.lat,
		"lon": m.lon,
	})

	series, err := m.repo.FetchForecast(ctx, m.lat, m.lon)
	if err != nil {
		// No data this cycle; the next scheduled run will try again.
		m.l.Error(err)
		return nil
	}

	alert := m.analyzer.Analyze(series)
	if alert == nil {
		m.l.Info("no pressure alert conditions met")
		return nil
	}

	m.l.Warning("PRESSURE ALERT: "+alert.Summary(), map[string]any{
		"current_mmhg": alert.CurrentPressureMmHg,
		"min_mmhg":     alert.MinPressureMmHg,
		"expected_at":  alert.ExpectedAt(),
	})

	results := m.dispatcher.Dispatch(ctx, *alert, m.channels)

	for name, ok := range results {
		if !ok {
			m.l.Warning("notification channel failed", map[string]any{"channel": name})
		}
	}

	m.l.Info("pressure monitoring check complete", map[string]any{
		"notified": results.Succeeded(),
		"channels": len(results),
	})

	return nil
}
