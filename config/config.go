package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "config/config.yaml"

var validate = validator.New()

type Config struct {
	AppName   string `envconfig:"APP_NAME" default:"pressure-monitor" yaml:"-"`
	AppEnv    string `envconfig:"APP_ENV" default:"development" yaml:"-"`
	SentryDSN string `envconfig:"SENTRY_DSN" yaml:"-"`

	OpenWeatherAPIKey string `envconfig:"OPENWEATHER_API_KEY" yaml:"-" validate:"required"`
	OpenWeatherAPIURL string `envconfig:"OPENWEATHER_API_URL" default:"https://api.openweathermap.org/data/2.5/forecast" yaml:"-"`

	// Coordinates is a "lat,lon" pair, e.g. "40.7128,-74.0060".
	Coordinates string `envconfig:"COORDINATES" yaml:"-" validate:"required"`

	PressureThresholdMmHg float64 `envconfig:"PRESSURE_THRESHOLD_MMHG" default:"8.0" yaml:"-" validate:"gt=0"`
	ForecastIntervals     int     `envconfig:"FORECAST_INTERVALS" default:"8" yaml:"-" validate:"gt=0"`

	MaxRetries        int `envconfig:"MAX_RETRIES" default:"10" yaml:"-" validate:"gt=0"`
	RetryDelaySeconds int `envconfig:"RETRY_DELAY_SECONDS" default:"60" yaml:"-" validate:"gte=0"`
	APITimeoutSeconds int `envconfig:"API_TIMEOUT_SECONDS" default:"30" yaml:"-" validate:"gt=0"`

	Channels []ChannelConfig `yaml:"channels"`
}

// ChannelConfig is one notification channel entry from the YAML file. Kind
// selects the implementation; the remaining fields are kind-specific.
type ChannelConfig struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Enabled bool   `yaml:"enabled"`

	WebhookURL string `yaml:"webhook_url,omitempty"`

	BotToken              string `yaml:"bot_token,omitempty"`
	ChatID                string `yaml:"chat_id,omitempty"`
	ParseMode             string `yaml:"parse_mode,omitempty"`
	DisableWebPagePreview *bool  `yaml:"disable_web_page_preview,omitempty"`

	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

const (
	ChannelKindIFTTT    = "ifttt"
	ChannelKindTelegram = "telegram"
)

func NewConfig() (*Config, error) {
	return NewConfigFromFile(DefaultConfigFile)
}

// NewConfigFromFile reads the YAML file first, then overrides scalar settings
// with environment variables, then validates the result.
func NewConfigFromFile(path string) (*Config, error) {
	var cnf Config

	if yamlData, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(yamlData, &cnf); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := envconfig.Process("", &cnf); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	// Channels may also come from bare environment variables when no YAML
	// file is present.
	if len(cnf.Channels) == 0 {
		cnf.Channels = channelsFromEnv()
	}

	if err := validate.Struct(&cnf); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if _, _, err := cnf.ParseCoordinates(); err != nil {
		return nil, err
	}

	return &cnf, nil
}

// channelsFromEnv builds channel entries from the flat environment variables
// the original deployment used.
func channelsFromEnv() []ChannelConfig {
	var channels []ChannelConfig

	if url := os.Getenv("IFTTT_WEBHOOK_URL"); url != "" {
		channels = append(channels, ChannelConfig{
			Name:       ChannelKindIFTTT,
			Kind:       ChannelKindIFTTT,
			Enabled:    true,
			WebhookURL: url,
		})
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		channels = append(channels, ChannelConfig{
			Name:     ChannelKindTelegram,
			Kind:     ChannelKindTelegram,
			Enabled:  true,
			BotToken: token,
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		})
	}

	return channels
}

// ParseCoordinates splits the Coordinates string into a lat, lon pair.
func (c *Config) ParseCoordinates() (float64, float64, error) {
	parts := strings.Split(c.Coordinates, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("COORDINATES must be in format 'lat,lon' (e.g., '40.7128,-74.0060')")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("COORDINATES must be in format 'lat,lon' (e.g., '40.7128,-74.0060')")
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("COORDINATES must be in format 'lat,lon' (e.g., '40.7128,-74.0060')")
	}

	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude must be between -90 and 90, got %f", lat)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude must be between -180 and 180, got %f", lon)
	}

	return lat, lon, nil
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// EnabledChannels returns the channel entries with the enable flag set.
func (c *Config) EnabledChannels() []ChannelConfig {
	var enabled []ChannelConfig
	for _, ch := range c.Channels {
		if ch.Enabled {
			enabled = append(enabled, ch)
		}
	}
	return enabled
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
