package channels

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressure-monitor/config"
	"pressure-monitor/internal/models"
	"pressure-monitor/pkg/observe"
)

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

func TestIFTTTChannelValidateConfig(t *testing.T) {
	l := observe.NewZapLogger("test-app")

	ch := NewIFTTTChannel(config.ChannelConfig{WebhookURL: "https://maker.ifttt.com/trigger/test"}, l, http.DefaultClient)
	assert.NoError(t, ch.ValidateConfig())

	ch = NewIFTTTChannel(config.ChannelConfig{WebhookURL: ""}, l, http.DefaultClient)
	assert.Error(t, ch.ValidateConfig())

	ch = NewIFTTTChannel(config.ChannelConfig{WebhookURL: "   "}, l, http.DefaultClient)
	assert.Error(t, ch.ValidateConfig())
}

func TestIFTTTChannelFormatMessage(t *testing.T) {
	ch := NewIFTTTChannel(config.ChannelConfig{WebhookURL: "https://example.com"}, observe.NewZapLogger("test-app"), http.DefaultClient)

	payload, ok := ch.FormatMessage(testAlert()).(IFTTTPayload)
	require.True(t, ok)

	assert.Equal(t, "Pressure Alert: 10.0 mmHg drop expected", payload.Value1)
	assert.Equal(t, "Current: 760.0 mmHg, Min: 750.0 mmHg", payload.Value2)
	assert.Equal(t, "Expected at: 2025-01-15 18:00", payload.Value3)
}

func TestIFTTTChannelSendNotificationSuccess(t *testing.T) {
	var gotPayload IFTTTPayload
	var gotContentType string

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	ch := NewIFTTTChannel(config.ChannelConfig{WebhookURL: mockServer.URL}, observe.NewZapLogger("test-app"), mockServer.Client())

	err := ch.SendNotification(context.Background(), testAlert())
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Contains(t, gotPayload.Value1, "10.0 mmHg drop")
	assert.Contains(t, gotPayload.Value2, "760.0 mmHg")
}

func TestIFTTTChannelSendNotificationNon2xx(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer mockServer.Close()

	ch := NewIFTTTChannel(config.ChannelConfig{WebhookURL: mockServer.URL}, observe.NewZapLogger("test-app"), mockServer.Client())

	err := ch.SendNotification(context.Background(), testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")
}

func TestIFTTTChannelSendNotificationTransportError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	mockServer.Close() // connection refused from here on

	ch := NewIFTTTChannel(config.ChannelConfig{WebhookURL: mockServer.URL}, observe.NewZapLogger("test-app"), http.DefaultClient)

	assert.Error(t, ch.SendNotification(context.Background(), testAlert()))
}

func TestBuildExcludesInvalidAndDisabledChannels(t *testing.T) {
	l := observe.NewZapLogger("test-app")

	cfgs := []config.ChannelConfig{
		{Name: "good-webhook", Kind: config.ChannelKindIFTTT, Enabled: true, WebhookURL: "https://example.com/hook"},
		{Name: "no-url", Kind: config.ChannelKindIFTTT, Enabled: true},
		{Name: "disabled", Kind: config.ChannelKindIFTTT, Enabled: false, WebhookURL: "https://example.com/hook"},
		{Name: "no-token", Kind: config.ChannelKindTelegram, Enabled: true, ChatID: "42"},
		{Name: "no-chat", Kind: config.ChannelKindTelegram, Enabled: true, BotToken: "token"},
		{Name: "good-bot", Kind: config.ChannelKindTelegram, Enabled: true, BotToken: "token", ChatID: "42"},
		{Name: "mystery", Kind: "pigeon", Enabled: true},
	}

	chans := Build(cfgs, l, http.DefaultClient)

	assert.Len(t, chans, 2)
	assert.Contains(t, chans, "good-webhook")
	assert.Contains(t, chans, "good-bot")
}
