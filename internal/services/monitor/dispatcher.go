package monitor

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"pressure-monitor/internal/channels"
	"pressure-monitor/internal/models"
	"pressure-monitor/pkg/observe"
)

// Dispatcher fans an alert out to every registered channel. Channels are
// independent and share no state, so delivery runs concurrently; each send is
// isolated, one channel failing or panicking never stops the others.
type Dispatcher struct {
	l *observe.Logger
}

func NewDispatcher(l *observe.Logger) *Dispatcher {
	return &Dispatcher{l: l}
}

// Dispatch attempts delivery on each channel exactly once and returns one
// boolean outcome per channel.
func (d *Dispatcher) Dispatch(ctx context.Context, alert models.PressureAlert, chans map[string]channels.Channel) models.DispatchResult {
	results := make(models.DispatchResult, len(chans))
	var mu sync.Mutex

	wg := sync.WaitGroup{}

	for name, ch := range chans {
		wg.Add(1)

		go func(name string, ch channels.Channel) {
			defer wg.Done()

			ok := d.send(ctx, ch, alert)

			mu.Lock()
			results[name] = ok
			mu.Unlock()
		}(name, ch)
	}

	wg.Wait()

	d.l.Info("dispatch complete", map[string]any{
		"channels":  len(results),
		"succeeded": results.Succeeded(),
	})

	return results
}

func (d *Dispatcher) send(ctx context.Context, ch channels.Channel, alert models.PressureAlert) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.l.Error(errors.Errorf("channel panicked during send: %v", r), map[string]any{
				"channel": ch.Name(),
			})
			ok = false
		}
	}()

	if err := ch.SendNotification(ctx, alert); err != nil {
		d.l.Error(errors.Wrap(err, "failed to send notification"), map[string]any{
			"channel": ch.Name(),
		})
		return false
	}

	return true
}
