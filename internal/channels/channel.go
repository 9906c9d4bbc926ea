package channels

import (
	"context"
	"net/http"
	"time"

	"pressure-monitor/config"
	"pressure-monitor/internal/models"
	"pressure-monitor/pkg/observe"
)

// DefaultTimeout bounds a single notification request when the channel
// config does not set its own.
const DefaultTimeout = 30 * time.Second

// HTTPClient is the transport dependency injected into channels.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Channel is a notification backend. FormatMessage renders the channel's
// wire payload for an alert; SendNotification delivers it and reports the
// outcome as an error, never a panic. The alert is passed by value and never
// mutated.
type Channel interface {
	Name() string
	ValidateConfig() error
	FormatMessage(alert models.PressureAlert) any
	SendNotification(ctx context.Context, alert models.PressureAlert) error
}

// Build constructs channels from the enabled config entries. A channel whose
// configuration fails validation is excluded with a logged diagnostic, so a
// single bad entry never blocks the rest.
func Build(cfgs []config.ChannelConfig, l *observe.Logger, httpClient HTTPClient) map[string]Channel {
	registered := make(map[string]Channel)

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}

		var ch Channel
		switch cfg.Kind {
		case config.ChannelKindIFTTT:
			ch = NewIFTTTChannel(cfg, l, httpClient)
		case config.ChannelKindTelegram:
			ch = NewTelegramChannel(cfg, l, httpClient)
		default:
			l.Warning("unknown channel kind, skipping", map[string]any{
				"name": cfg.Name,
				"kind": cfg.Kind,
			})
			continue
		}

		if err := ch.ValidateConfig(); err != nil {
			l.Error(err, map[string]any{"channel": ch.Name()})
			continue
		}

		l.Info("registered notification channel", map[string]any{"channel": ch.Name()})
		registered[ch.Name()] = ch
	}

	return registered
}

func timeoutOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(seconds) * time.Second
}
