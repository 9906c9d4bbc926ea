package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"pressure-monitor/config"
	"pressure-monitor/internal/models"
	"pressure-monitor/pkg/observe"
)

// IFTTTPayload is the webhook body IFTTT expects: three free-text values.
type IFTTTPayload struct {
	Value1 string `json:"value1"`
	Value2 string `json:"value2"`
	Value3 string `json:"value3"`
}

// IFTTTChannel delivers alerts to an IFTTT-style webhook URL.
type IFTTTChannel struct {
	name       string
	webhookURL string
	timeout    time.Duration

	httpClient HTTPClient
	l          *observe.Logger
}

func NewIFTTTChannel(cfg config.ChannelConfig, l *observe.Logger, httpClient HTTPClient) *IFTTTChannel {
	name := cfg.Name
	if name == "" {
		name = config.ChannelKindIFTTT
	}

	return &IFTTTChannel{
		name:       name,
		webhookURL: cfg.WebhookURL,
		timeout:    timeoutOrDefault(cfg.TimeoutSeconds),
		httpClient: httpClient,
		l:          l,
	}
}

func (c *IFTTTChannel) Name() string {
	return c.name
}

func (c *IFTTTChannel) ValidateConfig() error {
	if strings.TrimSpace(c.webhookURL) == "" {
		return errors.New("IFTTT webhook URL not configured")
	}
	return nil
}

func (c *IFTTTChannel) FormatMessage(alert models.PressureAlert) any {
	return IFTTTPayload{
		Value1: fmt.Sprintf("Pressure Alert: %s", alert.Summary()),
		Value2: fmt.Sprintf("Current: %.1f mmHg, Min: %.1f mmHg", alert.CurrentPressureMmHg, alert.MinPressureMmHg),
		Value3: fmt.Sprintf("Expected at: %s", alert.ExpectedAt()),
	}
}

// SendNotification POSTs the alert payload as JSON. Any transport error or
// non-2xx status is a failure; nothing escapes past this boundary.
func (c *IFTTTChannel) SendNotification(ctx context.Context, alert models.PressureAlert) error {
	body, err := json.Marshal(c.FormatMessage(alert))
	if err != nil {
		return errors.Wrap(err, "failed to marshal IFTTT payload")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create IFTTT request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.l.Info("sending IFTTT notification", map[string]any{"channel": c.name})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send IFTTT notification")
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("IFTTT webhook returned HTTP %d", resp.StatusCode)
	}

	c.l.Info("IFTTT notification sent successfully", map[string]any{"channel": c.name})

	return nil
}
