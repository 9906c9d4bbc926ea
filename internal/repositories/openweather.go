package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"pressure-monitor/internal/models"
	"pressure-monitor/pkg/observe"
)

const (
	OpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5/forecast"
)

// ErrMalformedPayload marks a 2xx response whose body could not be used.
// Unlike transport and status errors it is not retried: the upstream answered,
// the cycle just has no usable data.
var ErrMalformedPayload = errors.New("malformed forecast payload")

// OpenWeatherRepository fetches the 5-day/3-hour forecast with a bounded
// fixed-delay retry. The delay is constant on purpose: the API rate-limits on
// fixed windows, so a fixed pause with a high attempt cap rides out short
// outages within one scheduled run.
type OpenWeatherRepository struct {
	BaseURL    string
	APIKey     string
	MaxRetries int
	RetryDelay time.Duration

	httpClient HTTPClient
	sleep      func(ctx context.Context, d time.Duration) error
	l          *observe.Logger
}

func NewOpenWeatherRepository(apiKey string, maxRetries int, retryDelay time.Duration, l *observe.Logger, httpClient HTTPClient) (*OpenWeatherRepository, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if maxRetries < 1 {
		return nil, errors.New("max retries must be at least 1")
	}

	return &OpenWeatherRepository{
		BaseURL:    OpenWeatherBaseURL,
		APIKey:     apiKey,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
		httpClient: httpClient,
		sleep:      sleepContext,
		l:          l,
	}, nil
}

func (r *OpenWeatherRepository) Name() string {
	return "openweather"
}

type openWeatherResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Pressure float64 `json:"pressure"`
		} `json:"main"`
	} `json:"list"`
}

// FetchForecast issues one logical forecast request. Transport errors and
// non-2xx statuses are retried up to MaxRetries with a constant RetryDelay
// between attempts; exhaustion degrades to an error, never a panic. Attempts
// are stateless, nothing carries over between them.
func (r *OpenWeatherRepository) FetchForecast(ctx context.Context, lat, lon float64) (models.ForecastSeries, error) {
	var lastErr error

	for attempt := 1; attempt <= r.MaxRetries; attempt++ {
		r.l.Info("fetching weather forecast", map[string]any{
			"attempt": fmt.Sprintf("%d/%d", attempt, r.MaxRetries),
			"lat":     lat,
			"lon":     lon,
		})

		series, err := r.fetchOnce(ctx, lat, lon)
		if err == nil {
			r.l.Info("successfully fetched weather forecast", map[string]any{
				"samples": len(series),
			})
			return series, nil
		}

		if errors.Is(err, ErrMalformedPayload) {
			r.l.Error(err, map[string]any{"attempt": attempt})
			return nil, err
		}

		lastErr = err
		r.l.Error(errors.Wrapf(err, "API request failed (attempt %d/%d)", attempt, r.MaxRetries))

		if attempt < r.MaxRetries {
			r.l.Info("retrying forecast request", map[string]any{
				"delay": r.RetryDelay.String(),
			})
			if err := r.sleep(ctx, r.RetryDelay); err != nil {
				return nil, err
			}
		}
	}

	r.l.Error(errors.New("max retries reached, will try again at next scheduled run"))

	return nil, errors.Wrap(lastErr, "max retries reached")
}

func (r *OpenWeatherRepository) fetchOnce(ctx context.Context, lat, lon float64) (models.ForecastSeries, error) {
	url := fmt.Sprintf("%s?lat=%f&lon=%f&appid=%s&units=metric", r.BaseURL, lat, lon, r.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error (status %d): %s", resp.StatusCode, resp.Status)
	}

	var response openWeatherResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}

	if len(response.List) == 0 {
		return nil, errors.Wrap(ErrMalformedPayload, "no forecast entries in response")
	}

	series := make(models.ForecastSeries, 0, len(response.List))
	for _, item := range response.List {
		series = append(series, models.ForecastSample{
			Time:        time.Unix(item.Dt, 0).UTC(),
			PressureHPa: item.Main.Pressure,
		})
	}

	return series, nil
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
