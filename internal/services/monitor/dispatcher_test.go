package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressure-monitor/internal/channels"
	"pressure-monitor/internal/models"
	"pressure-monitor/pkg/observe"
)

// mockChannel implements channels.Channel for testing.
type mockChannel struct {
	name        string
	shouldFail  bool
	shouldPanic bool
	calls       int
}

func (m *mockChannel) Name() string { return m.name }

func (m *mockChannel) ValidateConfig() error { return nil }

func (m *mockChannel) FormatMessage(alert models.PressureAlert) any { return alert.Summary() }

func (m *mockChannel) SendNotification(ctx context.Context, alert models.PressureAlert) error {
	m.calls++
	if m.shouldPanic {
		panic("mock channel exploded")
	}
	if m.shouldFail {
		return errors.New("mock channel error")
	}
	return nil
}

func testAlert() models.PressureAlert {
	return models.PressureAlert{
		Triggered:           true,
		CurrentPressureMmHg: 760.0,
		MinPressureMmHg:     750.0,
		PressureDropMmHg:    10.0,
		MinPressureTime:     time.Date(2025, 1, 15, 18, 0, 0, 0, time.UTC),
		ThresholdMmHg:       8.0,
	}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	failing := &mockChannel{name: "failing", shouldFail: true}
	succeeding := &mockChannel{name: "succeeding"}

	d := NewDispatcher(observe.NewZapLogger("test-app"))

	results := d.Dispatch(context.Background(), testAlert(), map[string]channels.Channel{
		"failing":    failing,
		"succeeding": succeeding,
	})

	require.Len(t, results, 2)
	assert.False(t, results["failing"])
	assert.True(t, results["succeeding"])

	// Both attempted exactly once.
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, succeeding.calls)
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	panicking := &mockChannel{name: "panicking", shouldPanic: true}
	healthy := &mockChannel{name: "healthy"}

	d := NewDispatcher(observe.NewZapLogger("test-app"))

	results := d.Dispatch(context.Background(), testAlert(), map[string]channels.Channel{
		"panicking": panicking,
		"healthy":   healthy,
	})

	require.Len(t, results, 2)
	assert.False(t, results["panicking"])
	assert.True(t, results["healthy"])
	assert.Equal(t, 1, healthy.calls)
}

func TestDispatchAllSucceed(t *testing.T) {
	d := NewDispatcher(observe.NewZapLogger("test-app"))

	chans := map[string]channels.Channel{
		"a": &mockChannel{name: "a"},
		"b": &mockChannel{name: "b"},
		"c": &mockChannel{name: "c"},
	}

	results := d.Dispatch(context.Background(), testAlert(), chans)

	assert.Len(t, results, 3)
	assert.Equal(t, 3, results.Succeeded())
}

func TestDispatchNoChannels(t *testing.T) {
	d := NewDispatcher(observe.NewZapLogger("test-app"))

	results := d.Dispatch(context.Background(), testAlert(), map[string]channels.Channel{})

	assert.NotNil(t, results)
	assert.Len(t, results, 0)
}
