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

const (
	TelegramAPIBaseURL = "https://api.telegram.org"

	DefaultParseMode             = "HTML"
	DefaultDisableWebPagePreview = true
)

// TelegramPayload is the sendMessage request body.
type TelegramPayload struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramChannel delivers alerts through a Telegram bot.
type TelegramChannel struct {
	name                  string
	baseURL               string
	botToken              string
	chatID                string
	parseMode             string
	disableWebPagePreview bool
	timeout               time.Duration

	httpClient HTTPClient
	l          *observe.Logger
}

func NewTelegramChannel(cfg config.ChannelConfig, l *observe.Logger, httpClient HTTPClient) *TelegramChannel {
	name := cfg.Name
	if name == "" {
		name = config.ChannelKindTelegram
	}

	parseMode := cfg.ParseMode
	if parseMode == "" {
		parseMode = DefaultParseMode
	}

	disablePreview := DefaultDisableWebPagePreview
	if cfg.DisableWebPagePreview != nil {
		disablePreview = *cfg.DisableWebPagePreview
	}

	return &TelegramChannel{
		name:                  name,
		baseURL:               TelegramAPIBaseURL,
		botToken:              cfg.BotToken,
		chatID:                cfg.ChatID,
		parseMode:             parseMode,
		disableWebPagePreview: disablePreview,
		timeout:               timeoutOrDefault(cfg.TimeoutSeconds),
		httpClient:            httpClient,
		l:                     l,
	}
}

func (c *TelegramChannel) Name() string {
	return c.name
}

func (c *TelegramChannel) ValidateConfig() error {
	if strings.TrimSpace(c.botToken) == "" {
		return errors.New("Telegram bot token not configured")
	}
	if strings.TrimSpace(c.chatID) == "" {
		return errors.New("Telegram chat ID not configured")
	}
	return nil
}

func (c *TelegramChannel) FormatMessage(alert models.PressureAlert) any {
	text := fmt.Sprintf(
		"⚠️ <b>Pressure Alert</b> ⚠️\n\n"+
			"<b>Pressure drop:</b> %.1f mmHg\n"+
			"<b>Current pressure:</b> %.1f mmHg\n"+
			"<b>Minimum pressure:</b> %.1f mmHg\n"+
			"<b>Expected at:</b> <i>%s</i>\n"+
			"<b>Threshold:</b> %.1f mmHg",
		alert.PressureDropMmHg,
		alert.CurrentPressureMmHg,
		alert.MinPressureMmHg,
		alert.ExpectedAt(),
		alert.ThresholdMmHg,
	)

	return TelegramPayload{
		ChatID:                c.chatID,
		Text:                  text,
		ParseMode:             c.parseMode,
		DisableWebPagePreview: c.disableWebPagePreview,
	}
}

// SendNotification POSTs to <base>/bot<token>/sendMessage. Success requires
// both a 2xx transport status and ok=true in the response body: Telegram can
// answer HTTP 200 while rejecting the message at the API level.
func (c *TelegramChannel) SendNotification(ctx context.Context, alert models.PressureAlert) error {
	body, err := json.Marshal(c.FormatMessage(alert))
	if err != nil {
		return errors.Wrap(err, "failed to marshal Telegram payload")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create Telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.l.Info("sending Telegram notification", map[string]any{"channel": c.name})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send Telegram notification")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read Telegram response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("Telegram API returned HTTP %d", resp.StatusCode)
	}

	var apiResp telegramResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return errors.Wrap(err, "failed to parse Telegram response")
	}

	if !apiResp.Ok {
		return errors.Errorf("Telegram API rejected message: %s", apiResp.Description)
	}

	c.l.Info("Telegram notification sent successfully", map[string]any{"channel": c.name})

	return nil
}

// SetBaseURL overrides the API base, used by tests.
func (c *TelegramChannel) SetBaseURL(url string) {
	c.baseURL = url
}
